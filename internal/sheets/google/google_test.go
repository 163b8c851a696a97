package google

import (
	"context"
	"os"
	"testing"

	"padaria/internal/core"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("NewFromEnv should fail without GOOGLE_SPREADSHEET_ID")
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-123")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("NewFromEnv should fail without credentials")
	}
}

func TestNewFromEnv_UnreadableCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-123")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/nonexistent/creds.json")

	if _, err := os.Stat("/nonexistent/creds.json"); err == nil {
		t.Skip("unexpected credentials file present")
	}

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("NewFromEnv should fail when the credentials file cannot be read")
	}
}

func TestOrderRow(t *testing.T) {
	o := core.Order{
		ID:          "abc",
		ClientName:  "Ana",
		RequestDate: "2024-01-10",
		Quantities: core.Quantities{
			core.Hamburger: 10,
			core.Bisnaga:   5,
		},
	}

	row := orderRow(o)

	want := []any{"abc", "2024-01-10", "Ana", 10, 0, 5, 0}
	if len(row) != len(want) {
		t.Fatalf("row has %d columns, want %d", len(row), len(want))
	}
	for i := range want {
		if row[i] != want[i] {
			t.Errorf("row[%d] = %v, want %v", i, row[i], want[i])
		}
	}
}

func TestRowRange(t *testing.T) {
	c := &Client{sheetName: "Pedidos"}

	// Three fixed columns plus the four variants end at column G; the span
	// must widen with the variant set rather than stay pinned there.
	wantEnd := columnLetter(3 + len(core.Variants()))
	want := "Pedidos!A5:" + wantEnd + "5"
	if got := c.rowRange(5); got != want {
		t.Errorf("rowRange(5) = %q, want %q", got, want)
	}
	if len(core.Variants()) == 4 && c.rowRange(2) != "Pedidos!A2:G2" {
		t.Errorf("rowRange(2) = %q, want Pedidos!A2:G2", c.rowRange(2))
	}
}

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "A"},
		{7, "G"},
		{26, "Z"},
		{27, "AA"},
		{52, "AZ"},
		{53, "BA"},
	}
	for _, tt := range tests {
		if got := columnLetter(tt.n); got != tt.want {
			t.Errorf("columnLetter(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestClient_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "sheet-123", sheetName: "Pedidos"}
	ctx := context.Background()

	if err := c.UpsertOrder(ctx, core.Order{ID: "x"}); err == nil {
		t.Error("UpsertOrder should fail without an initialized service")
	}
	if err := c.RemoveOrder(ctx, "x"); err == nil {
		t.Error("RemoveOrder should fail without an initialized service")
	}
}
