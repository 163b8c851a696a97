// Package memory is the file-seeded in-memory order store. It mirrors the
// product's first iteration, where the whole order list lived in browser
// local storage: everything is held in RAM and flushed to one JSON file on
// every change.
package memory

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"padaria/internal/core"
	"padaria/internal/store"
)

type Store struct {
	mu      sync.Mutex
	path    string // empty means no persistence
	orders  []core.Order
	clients []core.Client
}

func New() *Store {
	return &Store{}
}

// NewFromFile loads a store from a JSON snapshot if one exists. Corrupted
// files or records never abort startup: invalid records are dropped and
// quantity fields coerced, the same recovery the browser iteration applied
// to local storage.
func NewFromFile(path string) *Store {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read order snapshot", "path", path, "error", err)
		}
		return s
	}
	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("Order snapshot is not a JSON array, starting empty", "path", path, "error", err)
		return s
	}
	for _, record := range raw {
		order, ok := core.DecodeOrder(record)
		if !ok {
			continue
		}
		if order.ID == "" {
			order.ID = uuid.NewString()
		}
		s.orders = append(s.orders, order)
	}
	slog.Info("Loaded order snapshot", "path", path, "orders", len(s.orders))
	return s
}

func (s *Store) ListOrders(_ context.Context) ([]core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(), nil
}

func (s *Store) CreateOrder(_ context.Context, o core.Order) (core.Order, error) {
	if err := o.Validate(); err != nil {
		return core.Order{}, err
	}
	o.ID = uuid.NewString()
	o.Quantities = o.Quantities.Clone().Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = append(s.orders, o)
	s.persistLocked()
	return o, nil
}

func (s *Store) UpdateOrder(_ context.Context, o core.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			o.Quantities = o.Quantities.Clone().Normalize()
			s.orders[i] = o
			s.persistLocked()
			return nil
		}
	}
	return store.ErrOrderNotFound
}

func (s *Store) DeleteOrder(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.orders {
		if s.orders[i].ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			s.persistLocked()
			return nil
		}
	}
	return store.ErrOrderNotFound
}

func (s *Store) ImportOrders(_ context.Context, records []map[string]any) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	accepted := 0
	for _, record := range records {
		order, ok := core.DecodeOrder(record)
		if !ok {
			continue
		}
		if order.ID == "" {
			order.ID = uuid.NewString()
		}
		s.orders = append(s.orders, order)
		accepted++
	}
	if accepted > 0 {
		s.persistLocked()
	}
	return accepted, nil
}

func (s *Store) ListClients(_ context.Context) ([]core.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Client, len(s.clients))
	copy(out, s.clients)
	return out, nil
}

func (s *Store) CreateClient(_ context.Context, name string) (core.Client, error) {
	c := core.Client{Name: strings.TrimSpace(name)}
	if err := c.Validate(); err != nil {
		return core.Client{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.clients {
		if strings.EqualFold(existing.Name, c.Name) {
			return core.Client{}, store.ErrClientExists
		}
	}
	c.ID = uuid.NewString()
	s.clients = append(s.clients, c)
	return c, nil
}

func (s *Store) snapshot() []core.Order {
	out := make([]core.Order, len(s.orders))
	for i, o := range s.orders {
		o.Quantities = o.Quantities.Clone()
		out[i] = o
	}
	return out
}

// persistLocked flushes the order list to disk. Failures are logged, never
// surfaced: losing a flush must not fail the mutation that caused it.
func (s *Store) persistLocked() {
	if s.path == "" {
		return
	}
	data, err := json.MarshalIndent(s.orders, "", "  ")
	if err != nil {
		slog.Warn("Failed to encode order snapshot", "error", err)
		return
	}
	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Warn("Failed to create snapshot directory", "dir", dir, "error", err)
			return
		}
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		slog.Warn("Failed to write order snapshot", "path", s.path, "error", err)
	}
}
