package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/testdb"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func allowAll(*models.Product, int) error { return nil }

func TestAddCartItem_MergesExistingLine(t *testing.T) {
	db := testdb.New(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()
	user := uuid.New()
	p := testdb.Product(t, db, "Sérum", "59.90", 10, true)

	_, err := r.AddCartItem(ctx, user, p.ID, 2, allowAll)
	require.NoError(t, err)
	item, err := r.AddCartItem(ctx, user, p.ID, 3, allowAll)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	lines, err := r.CartLines(ctx, user)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.Equal(t, "Sérum", lines[0].Name)
	assert.True(t, decimal.RequireFromString("59.90").Equal(lines[0].PriceTo))
	assert.True(t, lines[0].IsActive)
}

func TestAddCartItem_CheckSeesCartQuantity(t *testing.T) {
	db := testdb.New(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()
	user := uuid.New()
	p := testdb.Product(t, db, "Batom", "25.00", 4, true)

	_, err := r.AddCartItem(ctx, user, p.ID, 2, allowAll)
	require.NoError(t, err)

	refuse := errors.New("refused")
	var seen int
	_, err = r.AddCartItem(ctx, user, p.ID, 3, func(_ *models.Product, inCart int) error {
		seen = inCart
		return refuse
	})
	require.ErrorIs(t, err, refuse)
	assert.Equal(t, 2, seen)

	lines, err := r.CartLines(ctx, user)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestCartItemMutations_AreOwnerScoped(t *testing.T) {
	db := testdb.New(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()
	owner, other := uuid.New(), uuid.New()
	p := testdb.Product(t, db, "Base", "80.00", 10, true)

	item, err := r.AddCartItem(ctx, owner, p.ID, 1, allowAll)
	require.NoError(t, err)

	n, err := r.SetCartItemQuantity(ctx, other, item.ID, 9)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.RemoveCartItem(ctx, other, item.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = r.CartLine(ctx, other, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	n, err = r.SetCartItemQuantity(ctx, owner, item.ID, 4)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	line, err := r.CartLine(ctx, owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, line.Quantity)

	n, err = r.RemoveCartItem(ctx, owner, item.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestPlaceOrder_RollsBackOnStockConflict(t *testing.T) {
	db := testdb.New(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()
	user := uuid.New()
	a := testdb.Product(t, db, "Creme", "10.00", 5, true)
	b := testdb.Product(t, db, "Tônico", "20.00", 1, true)
	addr := testdb.Address(t, db, user, true)

	_, err := r.AddCartItem(ctx, user, a.ID, 2, allowAll)
	require.NoError(t, err)

	_, _, err = r.PlaceOrder(ctx, PlaceOrderParams{
		UserID:    user,
		AddressID: addr.ID,
		Lines: []OrderLine{
			{ProductID: a.ID, Quantity: 2, UnitPrice: a.PriceTo},
			{ProductID: b.ID, Quantity: 2, UnitPrice: b.PriceTo},
		},
		Total:     decimal.RequireFromString("60.00"),
		ClearCart: true,
	})
	var conflict *StockConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, b.ID, conflict.ProductID)
	assert.Equal(t, "insufficient stock for product id 2 during processing", err.Error())

	assert.Equal(t, 5, testdb.Stock(t, db, a.ID))
	assert.Equal(t, 1, testdb.Stock(t, db, b.ID))

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	lines, err := r.CartLines(ctx, user)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestPlaceOrder_CommitsAndClearsCart(t *testing.T) {
	db := testdb.New(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()
	user := uuid.New()
	p := testdb.Product(t, db, "Máscara", "35.50", 3, true)
	addr := testdb.Address(t, db, user, true)

	_, err := r.AddCartItem(ctx, user, p.ID, 3, allowAll)
	require.NoError(t, err)

	order, replayed, err := r.PlaceOrder(ctx, PlaceOrderParams{
		UserID:    user,
		AddressID: addr.ID,
		Lines:     []OrderLine{{ProductID: p.ID, Quantity: 3, UnitPrice: p.PriceTo}},
		Total:     decimal.RequireFromString("106.50"),
		ClearCart: true,
	})
	require.NoError(t, err)
	assert.False(t, replayed)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)

	assert.Zero(t, testdb.Stock(t, db, p.ID))
	lines, err := r.CartLines(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestPlaceOrder_DuplicateKeyReturnsExistingOrder(t *testing.T) {
	db := testdb.New(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()
	user := uuid.New()
	p := testdb.Product(t, db, "Perfume", "199.00", 5, true)
	addr := testdb.Address(t, db, user, true)

	params := PlaceOrderParams{
		UserID:         user,
		AddressID:      addr.ID,
		Lines:          []OrderLine{{ProductID: p.ID, Quantity: 1, UnitPrice: p.PriceTo}},
		Total:          p.PriceTo,
		IdempotencyKey: "key-1",
	}

	first, replayed, err := r.PlaceOrder(ctx, params)
	require.NoError(t, err)
	assert.False(t, replayed)

	second, replayed, err := r.PlaceOrder(ctx, params)
	require.NoError(t, err)
	assert.True(t, replayed)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, testdb.Stock(t, db, p.ID))
}

func TestTransitionOrder_CancelRestoresStock(t *testing.T) {
	db := testdb.New(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()
	user := uuid.New()
	p := testdb.Product(t, db, "Esmalte", "12.00", 4, true)
	addr := testdb.Address(t, db, user, true)

	order, _, err := r.PlaceOrder(ctx, PlaceOrderParams{
		UserID:    user,
		AddressID: addr.ID,
		Lines:     []OrderLine{{ProductID: p.ID, Quantity: 3, UnitPrice: p.PriceTo}},
		Total:     decimal.RequireFromString("36.00"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, testdb.Stock(t, db, p.ID))

	stranger := uuid.New()
	_, err = r.TransitionOrder(ctx, &stranger, order.ID, models.OrderStatusCancelled, func(*models.Order) error { return nil })
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	cancelled, err := r.TransitionOrder(ctx, &user, order.ID, models.OrderStatusCancelled, func(*models.Order) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 4, testdb.Stock(t, db, p.ID))
}

func TestCreateAddress_FirstIsMainAndNewMainDemotes(t *testing.T) {
	db := testdb.New(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()
	user := uuid.New()

	first := &models.Address{UserID: user, Recipient: "A", Street: "S", Number: "1", City: "C", State: "SP", ZipCode: "1"}
	require.NoError(t, r.CreateAddress(ctx, first))
	assert.True(t, first.IsMain)

	second := &models.Address{UserID: user, Recipient: "B", Street: "S", Number: "2", City: "C", State: "SP", ZipCode: "2", IsMain: true}
	require.NoError(t, r.CreateAddress(ctx, second))

	list, err := r.ListAddresses(ctx, user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsMain)
	assert.False(t, list[1].IsMain)
}

func TestDecrementStock_LosesToWriterAfterRead(t *testing.T) {
	db := testdb.New(t)
	p := testdb.Product(t, db, "Batom", "29.90", 5, true)

	var seen models.Product
	require.NoError(t, db.Take(&seen, p.ID).Error)
	require.Equal(t, 5, seen.CurrentStock)

	ran := testdb.Interleave(t, db, "products", "UPDATE products SET current_stock = 0 WHERE id = ?", p.ID)

	err := db.Transaction(func(tx *gorm.DB) error {
		ok, err := decrementStock(tx, p.ID, 1)
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran())
	assert.Zero(t, testdb.Stock(t, db, p.ID))
}

func TestPlaceOrder_StockTakenAfterValidation(t *testing.T) {
	db := testdb.New(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()
	user := uuid.New()
	p := testdb.Product(t, db, "Perfume", "150.00", 3, true)
	addr := testdb.Address(t, db, user, true)

	ran := testdb.Interleave(t, db, "products", "UPDATE products SET current_stock = 1 WHERE id = ?", p.ID)

	_, _, err := r.PlaceOrder(ctx, PlaceOrderParams{
		UserID:    user,
		AddressID: addr.ID,
		Lines:     []OrderLine{{ProductID: p.ID, Quantity: 3, UnitPrice: p.PriceTo}},
		Total:     decimal.RequireFromString("450.00"),
	})
	var conflict *StockConflictError
	require.ErrorAs(t, err, &conflict)
	assert.True(t, ran())

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
	// the competing write rolled back with the transaction it ran in
	assert.Equal(t, 3, testdb.Stock(t, db, p.ID))
}

func TestAddresses_SingleMainPerUser(t *testing.T) {
	db := testdb.New(t)
	user := uuid.New()
	testdb.Address(t, db, user, true)

	dup := models.Address{UserID: user, Recipient: "B", Street: "S", Number: "2", City: "C", State: "SP", ZipCode: "2", IsMain: true}
	assert.ErrorIs(t, db.Create(&dup).Error, gorm.ErrDuplicatedKey)

	other := testdb.Address(t, db, uuid.New(), true)
	assert.True(t, other.IsMain)
	testdb.Address(t, db, user, false)
}

func TestCreateAddress_RetriesWhenMainTakenConcurrently(t *testing.T) {
	db := testdb.New(t)
	r := &GormRepo{DB: db}
	ctx := context.Background()
	user := uuid.New()

	ran := testdb.Interleave(t, db, "addresses",
		"INSERT INTO addresses (user_id, recipient, street, number, city, state, zip_code, is_main) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.String(), "X", "S", "9", "C", "SP", "9", true)

	a := &models.Address{UserID: user, Recipient: "A", Street: "S", Number: "1", City: "C", State: "SP", ZipCode: "1"}
	require.NoError(t, r.CreateAddress(ctx, a))
	assert.True(t, ran())

	list, err := r.ListAddresses(ctx, user)
	require.NoError(t, err)
	mains := 0
	for _, it := range list {
		if it.IsMain {
			mains++
		}
	}
	assert.Equal(t, 1, mains)
}
