package services

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"padaria/internal/core"
	"padaria/internal/storage"
)

func newTestService(t *testing.T) *OrderService {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "padaria.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	svc := NewOrderService(repo, nil)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestNewOrderService(t *testing.T) {
	service := NewOrderService(nil, nil)

	if service == nil {
		t.Fatal("NewOrderService should return a non-nil service")
	}
	if service.amqpClient != nil {
		t.Error("NewOrderService should keep amqpClient nil when passed nil")
	}
}

func TestOrderService_CreateAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateOrder(ctx, core.Order{
		ClientName:  "Ana",
		RequestDate: "2024-01-10",
		Quantities:  core.Quantities{core.Hamburger: 10, core.Bisnaga: 5},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}
	if created.ID == "" {
		t.Error("CreateOrder should assign an ID")
	}

	orders, err := svc.ListOrders(ctx)
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("ListOrders() returned %d orders, want 1", len(orders))
	}
	if orders[0].Quantities.Get(core.Hamburger) != 10 {
		t.Errorf("hamburger quantity = %d, want 10", orders[0].Quantities.Get(core.Hamburger))
	}
}

func TestOrderService_ExportOrders(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateOrder(ctx, core.Order{
		ClientName:  "Bruno",
		RequestDate: "2024-02-01",
		Quantities:  core.Quantities{core.Baguette: 3},
	}); err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	now := time.Date(2024, 2, 2, 15, 0, 0, 0, time.UTC)
	payload, filename, err := svc.ExportOrders(ctx, now)
	if err != nil {
		t.Fatalf("ExportOrders() error = %v", err)
	}
	if filename != "backup_pedidos_2024-02-02.json" {
		t.Errorf("filename = %q, want backup_pedidos_2024-02-02.json", filename)
	}

	var decoded []map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("export payload is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("export has %d records, want 1", len(decoded))
	}
	if decoded[0]["clientName"] != "Bruno" {
		t.Errorf("clientName = %v, want Bruno", decoded[0]["clientName"])
	}
	if decoded[0]["baguettes"] != float64(3) {
		t.Errorf("baguettes = %v, want 3", decoded[0]["baguettes"])
	}
}

func TestOrderService_ImportRoundTrip(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	raw := []map[string]any{
		{"clientName": "Carla", "requestDate": "2024-03-05", "hamburgerBuns": float64(4)},
		{"clientName": "", "requestDate": "2024-03-05"},     // blank name dropped
		{"clientName": "Davi", "requestDate": "05/03/2024"}, // unparsable date still stored
		{"clientName": "Elisa", "requestDate": "2024-03-06", "baguettes": float64(-2)},
	}

	accepted, err := svc.ImportOrders(ctx, raw)
	if err != nil {
		t.Fatalf("ImportOrders() error = %v", err)
	}
	if accepted != 3 {
		t.Errorf("accepted = %d, want 3", accepted)
	}

	orders, err := svc.ListOrders(ctx)
	if err != nil {
		t.Fatalf("ListOrders() error = %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("ListOrders() returned %d orders, want 3", len(orders))
	}
	for _, o := range orders {
		if o.ClientName == "Elisa" && o.Quantities.Get(core.Baguette) != 0 {
			t.Errorf("negative quantity should be coerced to 0, got %d", o.Quantities.Get(core.Baguette))
		}
		if o.ClientName == "Davi" && o.RequestDate != "05/03/2024" {
			t.Errorf("unparsable date should be stored verbatim, got %q", o.RequestDate)
		}
	}
}

func TestOrderService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		service := &OrderService{}

		if err := service.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})
}
