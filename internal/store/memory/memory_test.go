package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"padaria/internal/core"
	"padaria/internal/store"
)

func TestCreateAssignsIDAndCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	created, err := s.CreateOrder(ctx, core.Order{
		ClientName:  "Ana",
		RequestDate: "2024-01-10",
		Quantities:  core.Quantities{core.Hamburger: 10},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("no ID assigned")
	}

	orders, err := s.ListOrders(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("len=%d, want 1", len(orders))
	}
	// The snapshot must be independent of store state.
	orders[0].Quantities[core.Hamburger] = 999
	again, _ := s.ListOrders(ctx)
	if again[0].Quantities.Get(core.Hamburger) != 10 {
		t.Fatal("snapshot mutation leaked into store")
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := New()
	if _, err := s.CreateOrder(context.Background(), core.Order{ClientName: "", RequestDate: "2024-01-10"}); err == nil {
		t.Fatal("blank client accepted")
	}
	if _, err := s.CreateOrder(context.Background(), core.Order{ClientName: "Ana", RequestDate: "bad"}); err == nil {
		t.Fatal("malformed date accepted")
	}
}

func TestUpdateReplacesAllFields(t *testing.T) {
	s := New()
	ctx := context.Background()
	created, _ := s.CreateOrder(ctx, core.Order{
		ClientName: "Ana", RequestDate: "2024-01-10",
		Quantities: core.Quantities{core.Hamburger: 10},
	})

	created.ClientName = "Ana Maria"
	created.Quantities = core.Quantities{core.Baguette: 2}
	if err := s.UpdateOrder(ctx, created); err != nil {
		t.Fatalf("update: %v", err)
	}

	orders, _ := s.ListOrders(ctx)
	if orders[0].ClientName != "Ana Maria" {
		t.Fatalf("client=%s", orders[0].ClientName)
	}
	if orders[0].Quantities.Get(core.Hamburger) != 0 || orders[0].Quantities.Get(core.Baguette) != 2 {
		t.Fatalf("quantities not replaced: %v", orders[0].Quantities)
	}

	missing := created
	missing.ID = "nope"
	if err := s.UpdateOrder(ctx, missing); err != store.ErrOrderNotFound {
		t.Fatalf("missing order: got %v", err)
	}
}

func TestDeleteOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	created, _ := s.CreateOrder(ctx, core.Order{ClientName: "Ana", RequestDate: "2024-01-10"})
	if err := s.DeleteOrder(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteOrder(ctx, created.ID); err != store.ErrOrderNotFound {
		t.Fatalf("second delete: got %v", err)
	}
}

func TestImportDropsInvalidRecords(t *testing.T) {
	s := New()
	records := []map[string]any{
		{"clientName": "X", "requestDate": "2024-01-01", "baguettes": float64(3)},
		{"clientName": float64(123), "requestDate": "bad"},
	}
	accepted, err := s.ImportOrders(context.Background(), records)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if accepted != 1 {
		t.Fatalf("accepted=%d, want 1", accepted)
	}
	orders, _ := s.ListOrders(context.Background())
	if len(orders) != 1 || orders[0].Quantities.Get(core.Baguette) != 3 {
		t.Fatalf("stored=%v", orders)
	}
}

func TestPersistAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	s := NewFromFile(path)
	ctx := context.Background()
	if _, err := s.CreateOrder(ctx, core.Order{
		ClientName: "Ana", RequestDate: "2024-01-10",
		Quantities: core.Quantities{core.Bisnaga: 5},
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	reloaded := NewFromFile(path)
	orders, _ := reloaded.ListOrders(ctx)
	if len(orders) != 1 {
		t.Fatalf("reloaded=%d orders, want 1", len(orders))
	}
	if orders[0].ClientName != "Ana" || orders[0].Quantities.Get(core.Bisnaga) != 5 {
		t.Fatalf("reloaded order=%+v", orders[0])
	}
}

func TestReloadSurvivesCorruptedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.json")
	if err := os.WriteFile(path, []byte(`{"not":"an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewFromFile(path)
	orders, err := s.ListOrders(context.Background())
	if err != nil || len(orders) != 0 {
		t.Fatalf("orders=%v err=%v, want empty and nil", orders, err)
	}
}

func TestClientNamesUniqueCaseInsensitive(t *testing.T) {
	s := New()
	ctx := context.Background()
	if _, err := s.CreateClient(ctx, "Ana"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := s.CreateClient(ctx, "  ana "); err != store.ErrClientExists {
		t.Fatalf("duplicate: got %v", err)
	}
	if _, err := s.CreateClient(ctx, "   "); err != core.ErrEmptyClientName {
		t.Fatalf("blank: got %v", err)
	}
}
