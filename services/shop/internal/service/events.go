package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/cosmetics_shop/pkg/events"
	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/metrics"
	"github.com/google/uuid"
)

const (
	EventCartItemAdded      = "cart_item_added"
	EventCartItemUpdated    = "cart_item_updated"
	EventCartItemRemoved    = "cart_item_removed"
	EventOrderCreated       = "order_created"
	EventOrderStatusChanged = "order_status_changed"
)

type CartEvent struct {
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
	ItemID    uint      `json:"item_id"`
	ProductID uint      `json:"product_id,omitempty"`
	Quantity  int       `json:"quantity"`
	At        time.Time `json:"at"`
}

type OrderEventItem struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type OrderEvent struct {
	Type    string           `json:"type"`
	OrderID uint             `json:"order_id"`
	UserID  uuid.UUID        `json:"user_id"`
	Status  string           `json:"status"`
	Total   string           `json:"total,omitempty"`
	Items   []OrderEventItem `json:"items,omitempty"`
	At      time.Time        `json:"at"`
}

// publish never fails the caller; a lost event is logged and counted.
func publish(ctx context.Context, pub events.Publisher, topic, key string, event any) {
	if pub == nil {
		return
	}
	if err := pub.PublishEvent(ctx, topic, key, event); err != nil {
		metrics.SideEffectFailures.WithLabelValues("event").Inc()
		logging.FromContext(ctx).Warn("event_publish_failed",
			"topic", topic,
			"key", key,
			"error", err,
		)
	}
}
