// Package store declares the ports the order store exposes to the rest of
// the application. Backends (memory, sqlite) implement them; the report,
// listing and finance packages only ever see the snapshot they return.
package store

import (
	"context"
	"errors"

	"padaria/internal/core"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrClientExists  = errors.New("client already registered")
)

type (
	// OrderLister returns the full order snapshot. Callers must not rely
	// on its ordering; the listing view-model sorts explicitly.
	OrderLister interface {
		ListOrders(ctx context.Context) ([]core.Order, error)
	}

	// OrderWriter creates an order, assigning its ID.
	OrderWriter interface {
		CreateOrder(ctx context.Context, o core.Order) (core.Order, error)
	}

	// OrderUpdater replaces every field of the order identified by o.ID.
	OrderUpdater interface {
		UpdateOrder(ctx context.Context, o core.Order) error
	}

	OrderDeleter interface {
		DeleteOrder(ctx context.Context, id string) error
	}

	// OrderImporter accepts raw JSON-like records, silently dropping any
	// without a string clientName and a string requestDate, and reports
	// how many were accepted.
	OrderImporter interface {
		ImportOrders(ctx context.Context, records []map[string]any) (int, error)
	}

	ClientLister interface {
		ListClients(ctx context.Context) ([]core.Client, error)
	}

	// ClientWriter registers a client. Names are unique case-insensitively;
	// duplicates fail with ErrClientExists.
	ClientWriter interface {
		CreateClient(ctx context.Context, name string) (core.Client, error)
	}
)
