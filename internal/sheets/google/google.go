// Package google mirrors orders into a Google Sheets spreadsheet. The sheet
// is a flat table: one order per row, one column per bread variant. Column A
// holds the order ID so updates and deletes can find their row.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"padaria/internal/core"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Auth: GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS.
// Optional: GOOGLE_SHEET_NAME (default "Pedidos").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Pedidos"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "scope", gsheet.SpreadsheetsScope)
	return service, nil
}

// orderRow flattens an order to the sheet's column layout.
func orderRow(o core.Order) []any {
	row := []any{o.ID, o.RequestDate, o.ClientName}
	for _, v := range core.Variants() {
		row = append(row, o.Quantities.Get(v))
	}
	return row
}

// rowRange covers one full order row: three fixed columns plus one per
// variant, so the span tracks the variant set.
func (c *Client) rowRange(row int) string {
	end := columnLetter(3 + len(core.Variants()))
	return fmt.Sprintf("%s!A%d:%s%d", c.sheetName, row, end, row)
}

// columnLetter converts a 1-based column number to its A1 letter form.
func columnLetter(n int) string {
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+n%26)) + s
		n /= 26
	}
	return s
}

// UpsertOrder writes the order to its existing row, or appends a new one.
func (c *Client) UpsertOrder(ctx context.Context, o core.Order) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, o.ID)
	if err != nil {
		return err
	}
	if row == 0 {
		// Append after the last populated row.
		rng := fmt.Sprintf("%s!A:A", c.sheetName)
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("get sheet dimensions for %s: %w", c.sheetName, err)
		}
		row = len(resp.Values) + 1
	}

	dataRange := c.rowRange(row)
	vr := &gsheet.ValueRange{Values: [][]any{orderRow(o)}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update row %d in sheet %s: %w", row, c.sheetName, err)
	}

	slog.InfoContext(ctx, "Mirrored order to sheet",
		"order_id", o.ID, "sheet", c.sheetName, "row", row)
	return nil
}

// RemoveOrder blanks out the row holding the order, if present.
func (c *Client) RemoveOrder(ctx context.Context, id string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	row, err := c.findRow(ctx, id)
	if err != nil {
		return err
	}
	if row == 0 {
		return nil // already absent
	}

	dataRange := c.rowRange(row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, dataRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear row %d in sheet %s: %w", row, c.sheetName, err)
	}

	slog.InfoContext(ctx, "Removed order from sheet",
		"order_id", id, "sheet", c.sheetName, "row", row)
	return nil
}

// findRow returns the 1-based row whose column A equals id, or 0.
func (c *Client) findRow(ctx context.Context, id string) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", rng, err)
	}
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1, nil
		}
	}
	return 0, nil
}
