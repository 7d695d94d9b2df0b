package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/mahendra-dev/backend-bangunan/internal/store"
)

// Handlers processes background tasks on the worker side.
type Handlers struct {
	Store *store.Store
	Redis *redis.Client
	Log   zerolog.Logger
}

// Register attaches all task handlers to the mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeOrderCreated, h.HandleOrderCreated)
	mux.HandleFunc(TypeCatalogPurge, h.HandleCatalogPurge)
}

// HandleOrderCreated decrements stock for the order lines and logs the event.
// Stock may go negative on oversell; the admin panel surfaces that instead of
// failing the order.
func (h *Handlers) HandleOrderCreated(ctx context.Context, t *asynq.Task) error {
	var payload OrderCreatedPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("order created payload: %w: %w", err, asynq.SkipRetry)
	}
	items, err := h.Store.ListOrderItems(ctx, payload.OrderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("order %s vanished: %w", payload.OrderID, asynq.SkipRetry)
		}
		return err
	}
	for _, it := range items {
		if _, err := h.Store.Pool.Exec(ctx,
			"UPDATE products SET stock = stock - $2, updated_at = now() WHERE id = $1",
			it.ProductID, it.Qty); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
	}
	h.Log.Info().
		Str("order_id", payload.OrderID.String()).
		Str("customer_id", payload.CustomerID.String()).
		Int64("total", payload.Total).
		Int("lines", len(items)).
		Msg("order processed")
	return nil
}

// HandleCatalogPurge drops every cached catalog response.
func (h *Handlers) HandleCatalogPurge(ctx context.Context, t *asynq.Task) error {
	var payload CatalogPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("catalog purge payload: %w: %w", err, asynq.SkipRetry)
	}
	if h.Redis == nil {
		return nil
	}
	iter := h.Redis.Scan(ctx, 0, "catalog:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan catalog keys: %w", err)
	}
	if len(keys) > 0 {
		if err := h.Redis.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("purge catalog keys: %w", err)
		}
	}
	h.Log.Info().Str("reason", payload.Reason).Int("keys", len(keys)).Msg("catalog cache purged")
	return nil
}
