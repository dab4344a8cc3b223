package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/Skotchmaster/cosmetics_shop/pkg/events"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countOrders(t *testing.T, f *fixture) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.Order{}).Count(&n).Error)
	return n
}

func TestGetCart_UnavailableLineInvalidatesCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	a := testdb.Product(t, f.db, "A", "10.00", 5, true)
	b := testdb.Product(t, f.db, "B", "10.00", 0, true)

	_, err := f.cart.AddItem(ctx, user, a.ID, 3)
	require.NoError(t, err)
	cart, err := f.repo.EnsureCart(ctx, user)
	require.NoError(t, err)
	require.NoError(t, f.db.Create(&models.CartItem{CartID: cart.ID, ProductID: b.ID, Quantity: 1}).Error)

	view, err := f.cart.GetCart(ctx, user)
	require.NoError(t, err)
	assert.False(t, view.IsValid)
	require.Len(t, view.Items, 2)
	assert.Empty(t, view.Items[0].Error)
	assert.True(t, view.Items[0].IsValid)
	assert.Equal(t, "Apenas 0 un. disponíveis", view.Items[1].Error)
}

func TestCheckout_BuyNowInsufficientStock(t *testing.T) {
	f := newFixture(t)
	user := uuid.New()
	addr := testdb.Address(t, f.db, user, true)
	p := testdb.Product(t, f.db, "Kit", "20.00", 1, true)

	_, err := f.checkout.Checkout(context.Background(), CheckoutRequest{
		UserID:    user,
		AddressID: addr.ID,
		Intent:    BuyNow{ProductID: p.ID, Quantity: 2},
	})
	requireMessage(t, err, ErrConflict, "Kit: Apenas 1 un. disponíveis")
	assert.Zero(t, countOrders(t, f))
	assert.Equal(t, 1, testdb.Stock(t, f.db, p.ID))
	assert.Empty(t, f.pub.byTopic(events.TopicOrder))
}

func TestCheckout_BuyNowSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	addr := testdb.Address(t, f.db, user, true)
	p := testdb.Product(t, f.db, "Kit", "20.00", 10, true)
	other := testdb.Product(t, f.db, "Outro", "5.00", 10, true)

	_, err := f.cart.AddItem(ctx, user, other.ID, 1)
	require.NoError(t, err)

	res, err := f.checkout.Checkout(ctx, CheckoutRequest{
		UserID:    user,
		AddressID: addr.ID,
		Intent:    BuyNow{ProductID: p.ID, Quantity: 2},
	})
	require.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.NotZero(t, res.OrderID)
	assert.False(t, res.CreatedAt.IsZero())

	assert.EqualValues(t, 1, countOrders(t, f))
	order, err := f.orders.Get(ctx, user, res.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "40.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "20.00", order.Items[0].UnitPrice.StringFixed(2))

	assert.Equal(t, 8, testdb.Stock(t, f.db, p.ID))

	view, err := f.cart.GetCart(ctx, user)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, other.ID, view.Items[0].ProductID)

	orderEvents := f.pub.byTopic(events.TopicOrder)
	require.Len(t, orderEvents, 1)
	ev := orderEvents[0].event.(OrderEvent)
	assert.Equal(t, EventOrderCreated, ev.Type)
	assert.Equal(t, "40.00", ev.Total)

	require.Len(t, f.idx.synced, 1)
	assert.Equal(t, 8, f.idx.synced[0].CurrentStock)
}

func TestCheckout_FromCartSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	addr := testdb.Address(t, f.db, user, true)
	a := testdb.Product(t, f.db, "A", "12.50", 5, true)
	b := testdb.Product(t, f.db, "B", "7.25", 5, true)

	_, err := f.cart.AddItem(ctx, user, a.ID, 2)
	require.NoError(t, err)
	_, err = f.cart.AddItem(ctx, user, b.ID, 4)
	require.NoError(t, err)

	res, err := f.checkout.Checkout(ctx, CheckoutRequest{UserID: user, AddressID: addr.ID, Intent: FromCart{}})
	require.NoError(t, err)
	assert.Equal(t, "54.00", res.Total.StringFixed(2))

	view, err := f.cart.GetCart(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	assert.EqualValues(t, 1, countOrders(t, f))
	assert.Equal(t, 3, testdb.Stock(t, f.db, a.ID))
	assert.Equal(t, 1, testdb.Stock(t, f.db, b.ID))
}

func TestCheckout_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	addr := testdb.Address(t, f.db, user, true)
	foreign := testdb.Address(t, f.db, uuid.New(), true)
	p := testdb.Product(t, f.db, "P", "10.00", 5, true)
	off := testdb.Product(t, f.db, "Off", "10.00", 5, false)

	_, err := f.checkout.Checkout(ctx, CheckoutRequest{UserID: user, Intent: FromCart{}})
	requireMessage(t, err, ErrValidation, "shipping address is required")

	_, err = f.checkout.Checkout(ctx, CheckoutRequest{UserID: user, AddressID: foreign.ID, Intent: FromCart{}})
	requireMessage(t, err, ErrConflict, "invalid or foreign shipping address")

	_, err = f.checkout.Checkout(ctx, CheckoutRequest{UserID: user, AddressID: addr.ID, Intent: FromCart{}})
	requireMessage(t, err, ErrConflict, "cart is empty")

	_, err = f.checkout.Checkout(ctx, CheckoutRequest{UserID: user, AddressID: addr.ID, Intent: BuyNow{ProductID: p.ID, Quantity: 0}})
	requireMessage(t, err, ErrValidation, "quantity must be greater than zero")

	_, err = f.checkout.Checkout(ctx, CheckoutRequest{UserID: user, AddressID: addr.ID, Intent: BuyNow{ProductID: off.ID, Quantity: 1}})
	requireMessage(t, err, ErrConflict, "Produto indisponível")

	_, err = f.checkout.Checkout(ctx, CheckoutRequest{UserID: user, AddressID: addr.ID, Intent: BuyNow{ProductID: 404, Quantity: 1}})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.cart.AddItem(ctx, user, p.ID, 3)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&p).Update("current_stock", 2).Error)

	_, err = f.checkout.Checkout(ctx, CheckoutRequest{UserID: user, AddressID: addr.ID, Intent: FromCart{}})
	requireMessage(t, err, ErrConflict, "P: Apenas 2 un. disponíveis")

	assert.Zero(t, countOrders(t, f))
	assert.Equal(t, 2, testdb.Stock(t, f.db, p.ID))
}

func TestCheckout_IdempotencyKeyReplays(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	addr := testdb.Address(t, f.db, user, true)
	p := testdb.Product(t, f.db, "P", "10.00", 5, true)

	req := CheckoutRequest{
		UserID:         user,
		AddressID:      addr.ID,
		Intent:         BuyNow{ProductID: p.ID, Quantity: 1},
		IdempotencyKey: "double-submit",
	}

	first, err := f.checkout.Checkout(ctx, req)
	require.NoError(t, err)
	second, err := f.checkout.Checkout(ctx, req)
	require.NoError(t, err)

	assert.True(t, second.Replayed)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.EqualValues(t, 1, countOrders(t, f))
	assert.Equal(t, 4, testdb.Stock(t, f.db, p.ID))
	assert.Len(t, f.pub.byTopic(events.TopicOrder), 1)

	// another user may reuse the same key
	stranger := uuid.New()
	strangerAddr := testdb.Address(t, f.db, stranger, true)
	_, err = f.checkout.Checkout(ctx, CheckoutRequest{
		UserID:         stranger,
		AddressID:      strangerAddr.ID,
		Intent:         BuyNow{ProductID: p.ID, Quantity: 1},
		IdempotencyKey: "double-submit",
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, countOrders(t, f))
}

func TestCheckout_ParallelBuyNowSellsExactlyTheStock(t *testing.T) {
	f := newFixture(t)
	const stock, buyers = 5, 12
	p := testdb.Product(t, f.db, "Limitado", "99.00", stock, true)

	type buyer struct {
		id   uuid.UUID
		addr uint
	}
	all := make([]buyer, buyers)
	for i := range all {
		id := uuid.New()
		all[i] = buyer{id: id, addr: testdb.Address(t, f.db, id, true).ID}
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for _, b := range all {
		wg.Add(1)
		go func(b buyer) {
			defer wg.Done()
			_, err := f.checkout.Checkout(context.Background(), CheckoutRequest{
				UserID:    b.id,
				AddressID: b.addr,
				Intent:    BuyNow{ProductID: p.ID, Quantity: 1},
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrConflict)
		}(b)
	}
	wg.Wait()

	assert.Equal(t, stock, success)
	assert.Zero(t, testdb.Stock(t, f.db, p.ID))
	assert.EqualValues(t, stock, countOrders(t, f))
}

func TestCheckout_SideEffectFailuresDoNotFailRequest(t *testing.T) {
	f := newFixture(t)
	f.pub.err = assert.AnError
	f.idx.err = assert.AnError
	user := uuid.New()
	addr := testdb.Address(t, f.db, user, true)
	p := testdb.Product(t, f.db, "P", "10.00", 5, true)

	res, err := f.checkout.Checkout(context.Background(), CheckoutRequest{
		UserID:    user,
		AddressID: addr.ID,
		Intent:    BuyNow{ProductID: p.ID, Quantity: 1},
	})
	require.NoError(t, err)
	assert.NotZero(t, res.OrderID)
	assert.Equal(t, 4, testdb.Stock(t, f.db, p.ID))
}

func TestCheckout_StockTakenBetweenValidationAndCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	addr := testdb.Address(t, f.db, user, true)
	p := testdb.Product(t, f.db, "Máscara", "45.00", 4, true)

	ran := testdb.Interleave(t, f.db, "products", "UPDATE products SET current_stock = 1 WHERE id = ?", p.ID)

	_, err := f.checkout.Checkout(ctx, CheckoutRequest{
		UserID:    user,
		AddressID: addr.ID,
		Intent:    BuyNow{ProductID: p.ID, Quantity: 4},
	})
	require.True(t, ran())
	requireMessage(t, err, ErrConflict, fmt.Sprintf("insufficient stock for product id %d during processing", p.ID))

	assert.Zero(t, countOrders(t, f))
	assert.Equal(t, 4, testdb.Stock(t, f.db, p.ID))
	assert.Empty(t, f.pub.byTopic(events.TopicOrder))
}

func TestCheckout_IdempotencyKeyReusedForAnotherPurchase(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	addr := testdb.Address(t, f.db, user, true)
	a := testdb.Product(t, f.db, "A", "10.00", 5, true)
	b := testdb.Product(t, f.db, "B", "20.00", 5, true)

	first, err := f.checkout.Checkout(ctx, CheckoutRequest{
		UserID:         user,
		AddressID:      addr.ID,
		Intent:         BuyNow{ProductID: a.ID, Quantity: 1},
		IdempotencyKey: "k",
	})
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	_, err = f.checkout.Checkout(ctx, CheckoutRequest{
		UserID:         user,
		AddressID:      99999,
		Intent:         BuyNow{ProductID: b.ID, Quantity: 3},
		IdempotencyKey: "k",
	})
	requireMessage(t, err, ErrConflict, "idempotency key was already used for a different checkout")

	_, err = f.checkout.Checkout(ctx, CheckoutRequest{
		UserID:         user,
		AddressID:      addr.ID,
		Intent:         FromCart{},
		IdempotencyKey: "k",
	})
	assert.ErrorIs(t, err, ErrIdempotencyKeyReuse)

	assert.EqualValues(t, 1, countOrders(t, f))
	assert.Equal(t, 5, testdb.Stock(t, f.db, b.ID))
}

func TestCheckout_CartLineWithDeletedProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	user := uuid.New()
	addr := testdb.Address(t, f.db, user, true)
	p := testdb.Product(t, f.db, "Esfoliante", "33.00", 5, true)

	_, err := f.cart.AddItem(ctx, user, p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.db.Delete(&models.Product{}, p.ID).Error)

	_, err = f.checkout.Checkout(ctx, CheckoutRequest{UserID: user, AddressID: addr.ID, Intent: FromCart{}})
	requireMessage(t, err, ErrConflict, fmt.Sprintf("product %d: Produto indisponível", p.ID))
}
