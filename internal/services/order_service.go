package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"padaria/internal/amqp"
	"padaria/internal/core"
	"padaria/internal/storage"
)

// OrderService orchestrates order operations across SQLite and AMQP. Writes
// land in SQLite first; change notifications to the mirror worker are
// best-effort.
type OrderService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewOrderService(repo *storage.Repository, amqpClient *amqp.Client) *OrderService {
	return &OrderService{
		storage:    repo,
		amqpClient: amqpClient,
	}
}

func (s *OrderService) ListOrders(ctx context.Context) ([]core.Order, error) {
	return s.storage.ListOrders(ctx)
}

func (s *OrderService) CreateOrder(ctx context.Context, o core.Order) (core.Order, error) {
	created, err := s.storage.CreateOrder(ctx, o)
	if err != nil {
		return core.Order{}, err
	}

	s.publishChange(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, o core.Order) error {
	if err := s.storage.UpdateOrder(ctx, o); err != nil {
		return err
	}

	s.publishChange(ctx, o.ID, amqp.ActionUpdated)
	return nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	if err := s.storage.DeleteOrder(ctx, id); err != nil {
		return err
	}

	s.publishChange(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *OrderService) ImportOrders(ctx context.Context, raw []map[string]any) (int, error) {
	return s.storage.ImportOrders(ctx, raw)
}

// ExportOrders serializes every order to the backup wire format and returns
// the payload with a date-stamped filename.
func (s *OrderService) ExportOrders(ctx context.Context, now time.Time) ([]byte, string, error) {
	orders, err := s.storage.ListOrders(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("export orders: %w", err)
	}

	payload, err := json.MarshalIndent(orders, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal orders: %w", err)
	}

	filename := fmt.Sprintf("backup_pedidos_%s.json", core.FormatDay(now))
	return payload, filename, nil
}

func (s *OrderService) ListClients(ctx context.Context) ([]core.Client, error) {
	return s.storage.ListClients(ctx)
}

func (s *OrderService) CreateClient(ctx context.Context, name string) (core.Client, error) {
	return s.storage.CreateClient(ctx, name)
}

func (s *OrderService) publishChange(ctx context.Context, id, action string) {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping change message")
		return
	}

	if err := s.amqpClient.PublishOrderChange(ctx, id, action); err != nil {
		// Don't fail the request, the order is saved locally.
		slog.ErrorContext(ctx, "Failed to publish order change",
			"id", id, "action", action, "error", err)
	}
}

// Close closes both storage and AMQP connections
func (s *OrderService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close order service: %v", errs)
	}

	return nil
}
