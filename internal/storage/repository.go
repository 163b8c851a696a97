package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"padaria/internal/core"
	"padaria/internal/store"
)

// Repository persists orders and clients in SQLite.
type Repository struct {
	db      *sql.DB
	queries *Queries
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// runs pending migrations.
func NewSQLiteRepository(dbPath string) (*Repository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db, queries: New(db)}, nil
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) ListOrders(ctx context.Context) ([]core.Order, error) {
	rows, err := r.queries.SelectOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	items, err := r.queries.SelectAllItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	byOrder := make(map[string]core.Quantities, len(rows))
	for _, item := range items {
		q := byOrder[item.OrderID]
		if q == nil {
			q = core.Quantities{}
			byOrder[item.OrderID] = q
		}
		q[core.Variant(item.Variant)] = item.Quantity
	}

	orders := make([]core.Order, 0, len(rows))
	for _, row := range rows {
		q := byOrder[row.ID]
		if q == nil {
			q = core.Quantities{}
		}
		orders = append(orders, core.Order{
			ID:          row.ID,
			ClientName:  row.ClientName,
			RequestDate: row.RequestDate,
			Quantities:  q,
		})
	}
	return orders, nil
}

func (r *Repository) GetOrder(ctx context.Context, id string) (core.Order, error) {
	row, err := r.queries.GetOrder(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Order{}, store.ErrOrderNotFound
	}
	if err != nil {
		return core.Order{}, fmt.Errorf("get order: %w", err)
	}
	items, err := r.queries.SelectItems(ctx, id)
	if err != nil {
		return core.Order{}, fmt.Errorf("get order items: %w", err)
	}
	q := core.Quantities{}
	for _, item := range items {
		q[core.Variant(item.Variant)] = item.Quantity
	}
	return core.Order{ID: row.ID, ClientName: row.ClientName, RequestDate: row.RequestDate, Quantities: q}, nil
}

func (r *Repository) CreateOrder(ctx context.Context, o core.Order) (core.Order, error) {
	if err := o.Validate(); err != nil {
		return core.Order{}, err
	}
	o.ID = uuid.NewString()
	o.Quantities = o.Quantities.Clone().Normalize()

	if err := r.writeOrder(ctx, o, false); err != nil {
		return core.Order{}, fmt.Errorf("create order: %w", err)
	}
	slog.InfoContext(ctx, "order created", "order_id", o.ID, "client", o.ClientName, "date", o.RequestDate)
	return o, nil
}

func (r *Repository) UpdateOrder(ctx context.Context, o core.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	o.Quantities = o.Quantities.Clone().Normalize()

	if err := r.writeOrder(ctx, o, true); err != nil {
		if errors.Is(err, store.ErrOrderNotFound) {
			return store.ErrOrderNotFound
		}
		return fmt.Errorf("update order: %w", err)
	}
	slog.InfoContext(ctx, "order updated", "order_id", o.ID)
	return nil
}

func (r *Repository) writeOrder(ctx context.Context, o core.Order, update bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	row := OrderRow{ID: o.ID, ClientName: o.ClientName, RequestDate: o.RequestDate}
	if update {
		affected, err := r.queries.UpdateOrder(ctx, tx, row)
		if err != nil {
			return err
		}
		if affected == 0 {
			return store.ErrOrderNotFound
		}
	} else {
		if err := r.queries.InsertOrder(ctx, tx, row); err != nil {
			return err
		}
	}

	items := make([]ItemRow, 0, len(o.Quantities))
	for variant, qty := range o.Quantities {
		items = append(items, ItemRow{OrderID: o.ID, Variant: string(variant), Quantity: qty})
	}
	if err := r.queries.ReplaceOrderItems(ctx, tx, o.ID, items); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *Repository) DeleteOrder(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteOrder(ctx, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if affected == 0 {
		return store.ErrOrderNotFound
	}
	slog.InfoContext(ctx, "order deleted", "order_id", id)
	return nil
}

// ImportOrders decodes each raw record and stores the decodable ones,
// returning how many were accepted. A record only needs a string client name
// and a string request date; an unparsable date is stored as-is and simply
// falls into no report bucket. The strict date check stays with the
// order-entry form.
func (r *Repository) ImportOrders(ctx context.Context, raw []map[string]any) (int, error) {
	accepted := 0
	for _, record := range raw {
		o, ok := core.DecodeOrder(record)
		if !ok {
			continue
		}
		if o.ID == "" {
			o.ID = uuid.NewString()
		}
		o.Quantities = o.Quantities.Clone().Normalize()
		if err := r.writeOrder(ctx, o, false); err != nil {
			slog.WarnContext(ctx, "import skipped record", "error", err)
			continue
		}
		accepted++
	}
	slog.InfoContext(ctx, "orders imported", "accepted", accepted, "total", len(raw))
	return accepted, nil
}

func (r *Repository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.queries.SelectClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients := make([]core.Client, 0, len(rows))
	for _, row := range rows {
		clients = append(clients, core.Client{ID: row.ID, Name: row.Name})
	}
	return clients, nil
}

func (r *Repository) CreateClient(ctx context.Context, name string) (core.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Client{}, core.ErrEmptyClientName
	}

	exists, err := r.queries.ClientExists(ctx, name)
	if err != nil {
		return core.Client{}, fmt.Errorf("check client: %w", err)
	}
	if exists {
		return core.Client{}, store.ErrClientExists
	}

	c := core.Client{ID: uuid.NewString(), Name: name}
	if err := r.queries.InsertClient(ctx, ClientRow{ID: c.ID, Name: c.Name}); err != nil {
		// Concurrent insert between the check and the write.
		if isUniqueViolation(err) {
			return core.Client{}, store.ErrClientExists
		}
		return core.Client{}, fmt.Errorf("create client: %w", err)
	}
	slog.InfoContext(ctx, "client created", "client_id", c.ID, "name", c.Name)
	return c, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// PendingSyncOrders returns up to limit orders awaiting a mirror sync.
func (r *Repository) PendingSyncOrders(ctx context.Context, limit int) ([]core.Order, error) {
	rows, err := r.queries.SelectPendingSync(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("pending sync orders: %w", err)
	}
	orders := make([]core.Order, 0, len(rows))
	for _, row := range rows {
		o, err := r.GetOrder(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *Repository) MarkOrderSynced(ctx context.Context, id string) error {
	if err := r.queries.SetSyncStatus(ctx, id, "synced"); err != nil {
		return fmt.Errorf("mark order synced: %w", err)
	}
	return nil
}

func (r *Repository) MarkOrderSyncError(ctx context.Context, id string) error {
	if err := r.queries.SetSyncStatus(ctx, id, "error"); err != nil {
		return fmt.Errorf("mark order sync error: %w", err)
	}
	return nil
}
