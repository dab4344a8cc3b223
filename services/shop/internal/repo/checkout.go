package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderLine struct {
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
}

type PlaceOrderParams struct {
	UserID         uuid.UUID
	AddressID      uint
	Lines          []OrderLine
	Total          decimal.Decimal
	IdempotencyKey string
	// RequestHash describes what a keyed checkout asked for; it is stored
	// with the order so a replay can tell a resend from a reused key.
	RequestHash string
	ClearCart   bool
}

// StockConflictError reports a product whose stock ran out between
// validation and the decrement.
type StockConflictError struct {
	ProductID uint
}

func (e *StockConflictError) Error() string {
	return fmt.Sprintf("insufficient stock for product id %d during processing", e.ProductID)
}

func (r *GormRepo) FindOrderByIdempotencyKey(ctx context.Context, userID uuid.UUID, key string) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items").
		Where("user_id = ? AND idempotency_key = ?", userID, key).
		Take(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// PlaceOrder writes the order, decrements stock and clears the cart in one
// transaction. When a keyed order loses a race to an identical request, the
// winner's order is returned with replayed set.
func (r *GormRepo) PlaceOrder(ctx context.Context, p PlaceOrderParams) (order *models.Order, replayed bool, err error) {
	o := models.Order{
		UserID:      p.UserID,
		AddressID:   p.AddressID,
		Status:      models.OrderStatusPending,
		TotalAmount: p.Total,
		RequestHash: p.RequestHash,
	}
	if p.IdempotencyKey != "" {
		key := p.IdempotencyKey
		o.IdempotencyKey = &key
	}

	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Create(&o).Error; err != nil {
			return err
		}

		items := make([]models.OrderItem, 0, len(p.Lines))
		for _, line := range p.Lines {
			ok, err := decrementStock(tx, line.ProductID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &StockConflictError{ProductID: line.ProductID}
			}

			item := models.OrderItem{
				OrderID:   o.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				UnitPrice: line.UnitPrice,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			items = append(items, item)
		}

		if p.ClearCart {
			var cart models.Cart
			err := tx.Where("user_id = ?", p.UserID).Take(&cart).Error
			switch {
			case err == nil:
				if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
					return err
				}
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return err
			}
		}

		o.Items = items
		return nil
	})
	if err != nil {
		if p.IdempotencyKey != "" {
			if existing, lookupErr := r.FindOrderByIdempotencyKey(ctx, p.UserID, p.IdempotencyKey); lookupErr == nil {
				return existing, true, nil
			}
		}
		return nil, false, err
	}
	return &o, false, nil
}
