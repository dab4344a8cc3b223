package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Skotchmaster/cosmetics_shop/pkg/events"
	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/repo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

type CartLine struct {
	ItemID    uint
	ProductID uint
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
	Stock     int
	IsValid   bool
	Error     string
}

type CartView struct {
	CartID  uint
	Items   []CartLine
	Total   decimal.Decimal
	IsValid bool
}

// lineStatus reports whether a cart line can be bought as it stands.
func lineStatus(l repo.CartLine) (bool, string) {
	if !l.IsActive {
		return false, MsgProductUnavailable
	}
	if l.Quantity > l.CurrentStock {
		return false, stockLimitMsg(l.CurrentStock)
	}
	return true, ""
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	view := &CartView{Items: []CartLine{}, Total: decimal.Zero, IsValid: true}

	cart, err := s.Repo.FindCart(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cart, err = s.Repo.EnsureCart(ctx, userID)
		if err != nil {
			logging.FromContext(ctx).Warn("cart_create_failed", "user_id", userID, "error", err)
			return view, nil
		}
		view.CartID = cart.ID
		return view, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find cart: %w", err)
	}
	view.CartID = cart.ID

	lines, err := s.Repo.CartLines(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart lines: %w", err)
	}

	for _, l := range lines {
		ok, msg := lineStatus(l)
		subtotal := l.PriceTo.Mul(decimal.NewFromInt(int64(l.Quantity)))
		view.Items = append(view.Items, CartLine{
			ItemID:    l.ItemID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.PriceTo,
			Subtotal:  subtotal,
			Stock:     l.CurrentStock,
			IsValid:   ok,
			Error:     msg,
		})
		view.Total = view.Total.Add(subtotal)
		view.IsValid = view.IsValid && ok
	}
	return view, nil
}

func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, productID uint, quantity int) (*models.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrNonPositiveQuantity
	}
	if productID == 0 {
		return nil, validationf("product id is required")
	}

	item, err := s.Repo.AddCartItem(ctx, userID, productID, quantity, func(p *models.Product, inCart int) error {
		if !p.IsActive {
			return ErrProductUnavailable
		}
		if inCart+quantity > p.CurrentStock {
			return conflictf("cannot add %d units: cart already has %d and only %d are in stock",
				quantity, inCart, p.CurrentStock)
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}

	publish(ctx, s.Events, events.TopicCart, userID.String(), CartEvent{
		Type:      EventCartItemAdded,
		UserID:    userID,
		ItemID:    item.ID,
		ProductID: productID,
		Quantity:  item.Quantity,
		At:        time.Now().UTC(),
	})
	return item, nil
}

// RemoveItem deletes the item only if it belongs to the user's cart.
// Removing an absent item is not an error.
func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID uint) error {
	n, err := s.Repo.RemoveCartItem(ctx, userID, itemID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	if n > 0 {
		publish(ctx, s.Events, events.TopicCart, userID.String(), CartEvent{
			Type:   EventCartItemRemoved,
			UserID: userID,
			ItemID: itemID,
			At:     time.Now().UTC(),
		})
	}
	return nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, itemID uint, quantity int) error {
	line, err := s.Repo.CartLine(ctx, userID, itemID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCartItemNotFound
	}
	if err != nil {
		return fmt.Errorf("load cart item: %w", err)
	}

	if quantity <= 0 {
		return s.RemoveItem(ctx, userID, itemID)
	}
	if quantity > line.CurrentStock {
		return conflictf("%s (requested %d)", stockLimitMsg(line.CurrentStock), quantity)
	}

	n, err := s.Repo.SetCartItemQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if n == 0 {
		return ErrCartItemNotFound
	}

	publish(ctx, s.Events, events.TopicCart, userID.String(), CartEvent{
		Type:      EventCartItemUpdated,
		UserID:    userID,
		ItemID:    itemID,
		ProductID: line.ProductID,
		Quantity:  quantity,
		At:        time.Now().UTC(),
	})
	return nil
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
