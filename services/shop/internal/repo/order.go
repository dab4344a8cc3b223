package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrStatusChanged = errors.New("order status changed concurrently")

// TransitionCheck runs inside the status transaction against the locked-in
// snapshot of the order.
type TransitionCheck func(order *models.Order) error

func (r *GormRepo) ListOrders(ctx context.Context, userID *uuid.UUID, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	orders := make([]models.Order, 0, limit)
	err := q.Preload("Items").
		Order("created_at DESC").Order("id DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

func (r *GormRepo) GetOrder(ctx context.Context, userID *uuid.UUID, id uint) (*models.Order, error) {
	q := r.DB.WithContext(ctx).Preload("Items").Where("id = ?", id)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var order models.Order
	if err := q.Take(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionOrder moves an order to next with a compare-and-set on the
// current status. Cancelling returns every item's quantity to stock in the
// same transaction.
func (r *GormRepo) TransitionOrder(ctx context.Context, userID *uuid.UUID, id uint, next models.OrderStatus, check TransitionCheck) (*models.Order, error) {
	var order models.Order

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Preload("Items").Where("id = ?", id)
		if userID != nil {
			q = q.Where("user_id = ?", *userID)
		}
		if err := q.Take(&order).Error; err != nil {
			return err
		}
		if err := check(&order); err != nil {
			return err
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			Update("status", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusChanged
		}

		if next == models.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := restoreStock(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		order.Status = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}
