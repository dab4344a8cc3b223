package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Skotchmaster/cosmetics_shop/pkg/events"
	"github.com/Skotchmaster/cosmetics_shop/pkg/logging"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/metrics"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/repo"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Intent says where the items of a checkout come from: BuyNow or FromCart.
type Intent interface {
	mode() string
}

type BuyNow struct {
	ProductID uint
	Quantity  int
}

type FromCart struct{}

func (BuyNow) mode() string   { return metrics.ModeBuyNow }
func (FromCart) mode() string { return metrics.ModeCart }

type StockIndexer interface {
	SyncStock(ctx context.Context, products []models.Product) error
}

type CheckoutRequest struct {
	UserID         uuid.UUID
	AddressID      uint
	Intent         Intent
	IdempotencyKey string
}

type CheckoutResult struct {
	OrderID   uint
	CreatedAt time.Time
	Total     decimal.Decimal
	Replayed  bool
}

type CheckoutService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Indexer StockIndexer
}

func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (res *CheckoutResult, err error) {
	if req.Intent == nil {
		req.Intent = FromCart{}
	}
	mode := req.Intent.mode()
	started := time.Now()
	l := logging.FromContext(ctx).With("op", "checkout", "mode", mode)

	defer func() {
		switch {
		case err == nil && res.Replayed:
			metrics.ObserveCheckout(mode, metrics.ResultReplayed, started)
		case err == nil:
			metrics.ObserveCheckout(mode, metrics.ResultCreated, started)
		case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict), errors.Is(err, ErrNotFound):
			metrics.ObserveCheckout(mode, metrics.ResultRejected, started)
		default:
			metrics.ObserveCheckout(mode, metrics.ResultFailed, started)
		}
	}()

	hash := requestHash(req)
	if req.IdempotencyKey != "" {
		existing, err := s.Repo.FindOrderByIdempotencyKey(ctx, req.UserID, req.IdempotencyKey)
		switch {
		case err == nil:
			return replay(l, existing, hash)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, fmt.Errorf("idempotency lookup: %w", err)
		}
	}

	if req.AddressID == 0 {
		return nil, ErrAddressRequired
	}
	if _, err := s.Repo.GetAddress(ctx, req.UserID, req.AddressID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForeignAddress
		}
		return nil, fmt.Errorf("load address: %w", err)
	}

	lines, total, err := s.resolve(ctx, req.UserID, req.Intent)
	if err != nil {
		return nil, err
	}

	_, clearCart := req.Intent.(FromCart)
	order, replayed, err := s.Repo.PlaceOrder(ctx, repo.PlaceOrderParams{
		UserID:         req.UserID,
		AddressID:      req.AddressID,
		Lines:          lines,
		Total:          total,
		IdempotencyKey: req.IdempotencyKey,
		RequestHash:    hash,
		ClearCart:      clearCart,
	})
	if err != nil {
		var conflict *repo.StockConflictError
		if errors.As(err, &conflict) {
			metrics.StockConflicts.Inc()
			return nil, conflictf("%s", conflict.Error())
		}
		return nil, fmt.Errorf("place order: %w", err)
	}
	if replayed {
		return replay(l.With("reason", "concurrent duplicate"), order, hash)
	}

	l.Info("checkout_committed", "order_id", order.ID, "total", order.TotalAmount.StringFixed(2), "lines", len(lines))
	s.afterCommit(ctx, order)
	return resultOf(order, false), nil
}

// resolve turns an intent into priced order lines. Prices are read once
// here and frozen into the order.
func (s *CheckoutService) resolve(ctx context.Context, userID uuid.UUID, intent Intent) ([]repo.OrderLine, decimal.Decimal, error) {
	switch in := intent.(type) {
	case BuyNow:
		if in.Quantity <= 0 {
			return nil, decimal.Zero, ErrNonPositiveQuantity
		}
		p, err := s.Repo.GetProduct(ctx, in.ProductID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, decimal.Zero, ErrProductNotFound
		}
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("load product: %w", err)
		}
		if !p.IsActive {
			return nil, decimal.Zero, ErrProductUnavailable
		}
		if in.Quantity > p.CurrentStock {
			return nil, decimal.Zero, conflictf("%s: %s", p.Name, stockLimitMsg(p.CurrentStock))
		}
		line := repo.OrderLine{ProductID: p.ID, Quantity: in.Quantity, UnitPrice: p.PriceTo}
		return []repo.OrderLine{line}, p.PriceTo.Mul(decimal.NewFromInt(int64(in.Quantity))), nil

	case FromCart:
		cartLines, err := s.Repo.CartLines(ctx, userID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("load cart: %w", err)
		}
		if len(cartLines) == 0 {
			return nil, decimal.Zero, ErrCartEmpty
		}

		lines := make([]repo.OrderLine, 0, len(cartLines))
		total := decimal.Zero
		for _, cl := range cartLines {
			if ok, msg := lineStatus(cl); !ok {
				return nil, decimal.Zero, conflictf("%s: %s", lineLabel(cl), msg)
			}
			lines = append(lines, repo.OrderLine{ProductID: cl.ProductID, Quantity: cl.Quantity, UnitPrice: cl.PriceTo})
			total = total.Add(cl.PriceTo.Mul(decimal.NewFromInt(int64(cl.Quantity))))
		}
		return lines, total, nil

	default:
		return nil, decimal.Zero, validationf("unsupported checkout intent %T", intent)
	}
}

// requestHash identifies what a keyed checkout asked for. Cart contents are
// left out because the first checkout empties the cart.
func requestHash(req CheckoutRequest) string {
	switch in := req.Intent.(type) {
	case BuyNow:
		return fmt.Sprintf("buy_now:address=%d:product=%d:quantity=%d", req.AddressID, in.ProductID, in.Quantity)
	default:
		return fmt.Sprintf("cart:address=%d", req.AddressID)
	}
}

func replay(l *slog.Logger, order *models.Order, hash string) (*CheckoutResult, error) {
	if order.RequestHash != hash {
		l.Warn("checkout_key_reused", "order_id", order.ID)
		return nil, ErrIdempotencyKeyReuse
	}
	l.Info("checkout_replayed", "order_id", order.ID)
	return resultOf(order, true), nil
}

// lineLabel names a cart line in error messages; lines whose product row is
// gone carry no name.
func lineLabel(cl repo.CartLine) string {
	if cl.Name != "" {
		return cl.Name
	}
	return fmt.Sprintf("product %d", cl.ProductID)
}

func (s *CheckoutService) afterCommit(ctx context.Context, order *models.Order) {
	items := make([]OrderEventItem, 0, len(order.Items))
	ids := make([]uint, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, OrderEventItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
		})
		ids = append(ids, it.ProductID)
	}

	publish(ctx, s.Events, events.TopicOrder, itoa(order.ID), OrderEvent{
		Type:    EventOrderCreated,
		OrderID: order.ID,
		UserID:  order.UserID,
		Status:  string(order.Status),
		Total:   order.TotalAmount.StringFixed(2),
		Items:   items,
		At:      order.CreatedAt,
	})

	syncStock(ctx, s.Repo, s.Indexer, ids)
}

func syncStock(ctx context.Context, r *repo.GormRepo, indexer StockIndexer, ids []uint) {
	if indexer == nil || len(ids) == 0 {
		return
	}
	l := logging.FromContext(ctx)

	products, err := r.GetProductsByIDs(ctx, ids)
	if err == nil {
		err = indexer.SyncStock(ctx, products)
	}
	if err != nil {
		metrics.SideEffectFailures.WithLabelValues("stock_sync").Inc()
		l.Warn("stock_sync_failed", "products", ids, "error", err)
	}
}

func resultOf(o *models.Order, replayed bool) *CheckoutResult {
	return &CheckoutResult{
		OrderID:   o.ID,
		CreatedAt: o.CreatedAt,
		Total:     o.TotalAmount,
		Replayed:  replayed,
	}
}
