package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/cosmetics_shop/pkg/events"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/repo"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/util"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Indexer StockIndexer
}

type OrderPage struct {
	Total int64
	Page  int
	Size  int
	Items []models.Order
}

func (s *OrderService) List(ctx context.Context, userID uuid.UUID, page, size int) (*OrderPage, error) {
	return s.list(ctx, &userID, page, size)
}

func (s *OrderService) ListAll(ctx context.Context, page, size int) (*OrderPage, error) {
	return s.list(ctx, nil, page, size)
}

func (s *OrderService) list(ctx context.Context, userID *uuid.UUID, page, size int) (*OrderPage, error) {
	offset, limit := util.Calculate(page, size)
	total, orders, err := s.Repo.ListOrders(ctx, userID, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return &OrderPage{Total: total, Page: offset/limit + 1, Size: limit, Items: orders}, nil
}

func (s *OrderService) Get(ctx context.Context, userID uuid.UUID, id uint) (*models.Order, error) {
	order, err := s.Repo.GetOrder(ctx, &userID, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// Cancel lets the owner withdraw an order that has not started processing.
func (s *OrderService) Cancel(ctx context.Context, userID uuid.UUID, id uint) (*models.Order, error) {
	return s.transition(ctx, &userID, id, models.OrderStatusCancelled, func(o *models.Order) error {
		if o.Status != models.OrderStatusPending {
			return conflictf("order %d cannot be cancelled in status %s", o.ID, o.Status)
		}
		return nil
	})
}

func (s *OrderService) UpdateStatus(ctx context.Context, id uint, next models.OrderStatus) (*models.Order, error) {
	if !next.Valid() {
		return nil, validationf("unknown order status %q", next)
	}
	return s.transition(ctx, nil, id, next, func(o *models.Order) error {
		if !o.Status.CanTransitionTo(next) {
			return conflictf("order %d cannot move from %s to %s", o.ID, o.Status, next)
		}
		return nil
	})
}

func (s *OrderService) transition(ctx context.Context, userID *uuid.UUID, id uint, next models.OrderStatus, check repo.TransitionCheck) (*models.Order, error) {
	order, err := s.Repo.TransitionOrder(ctx, userID, id, next, check)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, ErrOrderNotFound
	case errors.Is(err, repo.ErrStatusChanged):
		return nil, conflictf("order %d was modified concurrently, retry", id)
	case err != nil:
		var svcErr *Error
		if errors.As(err, &svcErr) {
			return nil, err
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	publish(ctx, s.Events, events.TopicOrder, itoa(order.ID), OrderEvent{
		Type:    EventOrderStatusChanged,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  string(order.Status),
		At:      time.Now().UTC(),
	})

	if next == models.OrderStatusCancelled {
		ids := make([]uint, 0, len(order.Items))
		for _, it := range order.Items {
			ids = append(ids, it.ProductID)
		}
		syncStock(ctx, s.Repo, s.Indexer, ids)
	}
	return order, nil
}
