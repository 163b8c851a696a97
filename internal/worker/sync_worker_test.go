package worker

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"padaria/internal/amqp"
	"padaria/internal/core"
	"padaria/internal/storage"
)

type fakeMirror struct {
	upserts []core.Order
	removes []string
	fail    bool
}

func (f *fakeMirror) UpsertOrder(_ context.Context, o core.Order) error {
	if f.fail {
		return errors.New("sheet unavailable")
	}
	f.upserts = append(f.upserts, o)
	return nil
}

func (f *fakeMirror) RemoveOrder(_ context.Context, id string) error {
	if f.fail {
		return errors.New("sheet unavailable")
	}
	f.removes = append(f.removes, id)
	return nil
}

func newTestRepo(t *testing.T) *storage.Repository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "padaria.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestSyncWorker_HandleChangeMessage(t *testing.T) {
	repo := newTestRepo(t)
	mirror := &fakeMirror{}
	w := NewSyncWorker(repo, mirror, 10)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, core.Order{
		ClientName:  "Ana",
		RequestDate: "2024-01-10",
		Quantities:  core.Quantities{core.Hamburger: 10},
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	msg := amqp.NewOrderChangeMessage(created.ID, amqp.ActionCreated)
	if err := w.HandleChangeMessage(ctx, msg); err != nil {
		t.Fatalf("HandleChangeMessage() error = %v", err)
	}

	if len(mirror.upserts) != 1 {
		t.Fatalf("mirror received %d upserts, want 1", len(mirror.upserts))
	}
	if mirror.upserts[0].ClientName != "Ana" {
		t.Errorf("mirrored client = %q, want Ana", mirror.upserts[0].ClientName)
	}

	// After a successful mirror the order is no longer pending.
	pending, err := repo.PendingSyncOrders(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSyncOrders() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending count = %d, want 0", len(pending))
	}
}

func TestSyncWorker_HandleChangeMessage_Deleted(t *testing.T) {
	repo := newTestRepo(t)
	mirror := &fakeMirror{}
	w := NewSyncWorker(repo, mirror, 10)

	msg := amqp.NewOrderChangeMessage("gone-order", amqp.ActionDeleted)
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("HandleChangeMessage() error = %v", err)
	}

	if len(mirror.removes) != 1 || mirror.removes[0] != "gone-order" {
		t.Errorf("mirror removes = %v, want [gone-order]", mirror.removes)
	}
}

func TestSyncWorker_HandleChangeMessage_MissingOrder(t *testing.T) {
	repo := newTestRepo(t)
	mirror := &fakeMirror{}
	w := NewSyncWorker(repo, mirror, 10)

	msg := amqp.NewOrderChangeMessage("never-existed", amqp.ActionUpdated)
	if err := w.HandleChangeMessage(context.Background(), msg); err != nil {
		t.Fatalf("missing order should not fail the message, got: %v", err)
	}
	if len(mirror.upserts) != 0 {
		t.Error("missing order should not be mirrored")
	}
}

func TestSyncWorker_ProcessPendingOrders(t *testing.T) {
	repo := newTestRepo(t)
	mirror := &fakeMirror{}
	w := NewSyncWorker(repo, mirror, 10)
	ctx := context.Background()

	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		if _, err := repo.CreateOrder(ctx, core.Order{
			ClientName:  name,
			RequestDate: "2024-01-10",
			Quantities:  core.Quantities{core.Bisnaga: 2},
		}); err != nil {
			t.Fatalf("CreateOrder() error = %v", err)
		}
	}

	if err := w.ProcessPendingOrders(ctx); err != nil {
		t.Fatalf("ProcessPendingOrders() error = %v", err)
	}
	if len(mirror.upserts) != 3 {
		t.Fatalf("mirrored %d orders, want 3", len(mirror.upserts))
	}

	// A second pass finds nothing to do.
	mirror.upserts = nil
	if err := w.ProcessPendingOrders(ctx); err != nil {
		t.Fatalf("ProcessPendingOrders() second pass error = %v", err)
	}
	if len(mirror.upserts) != 0 {
		t.Errorf("second pass mirrored %d orders, want 0", len(mirror.upserts))
	}
}

func TestSyncWorker_MirrorFailureMarksError(t *testing.T) {
	repo := newTestRepo(t)
	mirror := &fakeMirror{fail: true}
	w := NewSyncWorker(repo, mirror, 10)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, core.Order{
		ClientName:  "Davi",
		RequestDate: "2024-01-10",
	})
	if err != nil {
		t.Fatalf("CreateOrder() error = %v", err)
	}

	msg := amqp.NewOrderChangeMessage(created.ID, amqp.ActionCreated)
	if err := w.HandleChangeMessage(ctx, msg); err == nil {
		t.Fatal("HandleChangeMessage should fail when the mirror write fails")
	}

	// The order left the pending set and is marked as errored.
	pending, err := repo.PendingSyncOrders(ctx, 10)
	if err != nil {
		t.Fatalf("PendingSyncOrders() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("pending count = %d, want 0 after error mark", len(pending))
	}
}
