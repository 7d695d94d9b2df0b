package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names routed through asynq.
const (
	TypeOrderCreated = "order:created"
	TypeCatalogPurge = "catalog:purge"
)

// OrderCreatedPayload notifies the worker about a freshly placed order.
type OrderCreatedPayload struct {
	OrderID    uuid.UUID `json:"order_id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Total      int64     `json:"total"`
}

// CatalogPurgePayload asks the worker to drop cached catalog responses.
type CatalogPurgePayload struct {
	Reason string `json:"reason"`
}

// Client enqueues background tasks. A nil Client drops enqueues silently so
// callers do not need to guard the optional queue.
type Client struct {
	A *asynq.Client
}

// NewClient builds a task client around an asynq connection.
func NewClient(a *asynq.Client) *Client {
	return &Client{A: a}
}

// EnqueueOrderCreated schedules post-checkout processing for an order.
func (c *Client) EnqueueOrderCreated(ctx context.Context, payload OrderCreatedPayload) error {
	if c == nil || c.A == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	t := asynq.NewTask(TypeOrderCreated, data)
	_, err = c.A.EnqueueContext(ctx, t, asynq.MaxRetry(5), asynq.Timeout(30*time.Second))
	return err
}

// EnqueueCatalogPurge schedules catalog cache invalidation.
func (c *Client) EnqueueCatalogPurge(ctx context.Context, reason string) error {
	if c == nil || c.A == nil {
		return nil
	}
	data, err := json.Marshal(CatalogPurgePayload{Reason: reason})
	if err != nil {
		return err
	}
	t := asynq.NewTask(TypeCatalogPurge, data)
	_, err = c.A.EnqueueContext(ctx, t, asynq.MaxRetry(3), asynq.Timeout(10*time.Second))
	return err
}
