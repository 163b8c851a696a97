package storage

import (
	"context"
	"database/sql"
	"time"
)

// Queries wraps the raw SQL the repository needs. Methods either run inside
// the transaction they are handed or directly on the pool.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// OrderRow mirrors one row of the orders table.
type OrderRow struct {
	ID          string
	ClientName  string
	RequestDate string
	SyncStatus  string
	UpdatedAt   time.Time
}

// ItemRow mirrors one row of order_items.
type ItemRow struct {
	OrderID  string
	Variant  string
	Quantity int
}

// ClientRow mirrors one row of clients.
type ClientRow struct {
	ID   string
	Name string
}

func (q *Queries) InsertOrder(ctx context.Context, tx *sql.Tx, row OrderRow) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO orders (id, client_name, request_date, sync_status) VALUES (?, ?, ?, 'pending')`,
		row.ID, row.ClientName, row.RequestDate)
	return err
}

func (q *Queries) UpdateOrder(ctx context.Context, tx *sql.Tx, row OrderRow) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET client_name = ?, request_date = ?, sync_status = 'pending', updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		row.ClientName, row.RequestDate, row.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) DeleteOrder(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (q *Queries) ReplaceOrderItems(ctx context.Context, tx *sql.Tx, orderID string, items []ItemRow) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = ?`, orderID); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, variant, quantity) VALUES (?, ?, ?)`,
			orderID, item.Variant, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func (q *Queries) SelectOrders(ctx context.Context) ([]OrderRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, client_name, request_date, sync_status, updated_at FROM orders`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRow
	for rows.Next() {
		var r OrderRow
		if err := rows.Scan(&r.ID, &r.ClientName, &r.RequestDate, &r.SyncStatus, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) GetOrder(ctx context.Context, id string) (OrderRow, error) {
	var r OrderRow
	err := q.db.QueryRowContext(ctx,
		`SELECT id, client_name, request_date, sync_status, updated_at FROM orders WHERE id = ?`, id).
		Scan(&r.ID, &r.ClientName, &r.RequestDate, &r.SyncStatus, &r.UpdatedAt)
	return r, err
}

func (q *Queries) SelectAllItems(ctx context.Context) ([]ItemRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT order_id, variant, quantity FROM order_items`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemRow
	for rows.Next() {
		var r ItemRow
		if err := rows.Scan(&r.OrderID, &r.Variant, &r.Quantity); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) SelectItems(ctx context.Context, orderID string) ([]ItemRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT order_id, variant, quantity FROM order_items WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemRow
	for rows.Next() {
		var r ItemRow
		if err := rows.Scan(&r.OrderID, &r.Variant, &r.Quantity); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) InsertClient(ctx context.Context, row ClientRow) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO clients (id, name) VALUES (?, ?)`, row.ID, row.Name)
	return err
}

func (q *Queries) SelectClients(ctx context.Context) ([]ClientRow, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT id, name FROM clients ORDER BY name COLLATE NOCASE`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ClientRow
	for rows.Next() {
		var r ClientRow
		if err := rows.Scan(&r.ID, &r.Name); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) ClientExists(ctx context.Context, name string) (bool, error) {
	var n int
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM clients WHERE name = ? COLLATE NOCASE`, name).Scan(&n)
	return n > 0, err
}

func (q *Queries) SelectPendingSync(ctx context.Context, limit int) ([]OrderRow, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT id, client_name, request_date, sync_status, updated_at
		 FROM orders WHERE sync_status = 'pending' ORDER BY updated_at LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderRow
	for rows.Next() {
		var r OrderRow
		if err := rows.Scan(&r.ID, &r.ClientName, &r.RequestDate, &r.SyncStatus, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (q *Queries) SetSyncStatus(ctx context.Context, id, status string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE orders SET sync_status = ? WHERE id = ?`, status, id)
	return err
}
