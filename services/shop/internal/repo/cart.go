package repo

import (
	"context"
	"errors"

	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartLine is a cart item joined with the live state of its product.
// A product that no longer exists reads as inactive with zero stock.
type CartLine struct {
	ItemID       uint
	ProductID    uint
	Quantity     int
	Name         string
	PriceTo      decimal.Decimal
	CurrentStock int
	IsActive     bool
}

// AddCheck runs inside the add transaction with the product row and the
// quantity already in the cart.
type AddCheck func(product *models.Product, inCart int) error

func (r *GormRepo) FindCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Take(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *GormRepo) EnsureCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	return ensureCart(r.DB.WithContext(ctx), userID)
}

func ensureCart(db *gorm.DB, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	if err := db.Where(models.Cart{UserID: userID}).FirstOrCreate(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

func cartLinesQuery(db *gorm.DB, userID uuid.UUID) *gorm.DB {
	return db.Table("cart_items AS ci").
		Select(`ci.id AS item_id, ci.product_id, ci.quantity,
			COALESCE(p.name, '') AS name,
			COALESCE(p.price_to, 0) AS price_to,
			COALESCE(p.current_stock, 0) AS current_stock,
			COALESCE(p.is_active, false) AS is_active`).
		Joins("JOIN carts c ON c.id = ci.cart_id").
		Joins("LEFT JOIN products p ON p.id = ci.product_id").
		Where("c.user_id = ?", userID)
}

func (r *GormRepo) CartLines(ctx context.Context, userID uuid.UUID) ([]CartLine, error) {
	lines := make([]CartLine, 0)
	if err := cartLinesQuery(r.DB.WithContext(ctx), userID).Order("ci.id ASC").Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *GormRepo) CartLine(ctx context.Context, userID uuid.UUID, itemID uint) (*CartLine, error) {
	var lines []CartLine
	if err := cartLinesQuery(r.DB.WithContext(ctx), userID).Where("ci.id = ?", itemID).Scan(&lines).Error; err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &lines[0], nil
}

func (r *GormRepo) AddCartItem(ctx context.Context, userID uuid.UUID, productID uint, quantity int, check AddCheck) (*models.CartItem, error) {
	var item models.CartItem

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cart, err := ensureCart(tx, userID)
		if err != nil {
			return err
		}

		var product models.Product
		if err := tx.Where("id = ?", productID).Take(&product).Error; err != nil {
			return err
		}

		inCart := 0
		var existing models.CartItem
		err = tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).Take(&existing).Error
		switch {
		case err == nil:
			inCart = existing.Quantity
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return err
		}

		if err := check(&product, inCart); err != nil {
			return err
		}

		res := tx.Model(&models.CartItem{}).
			Where("cart_id = ? AND product_id = ?", cart.ID, productID).
			Update("quantity", gorm.Expr("quantity + ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).Take(&item).Error
		}

		item = models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func ownedItem(db *gorm.DB, userID uuid.UUID, itemID uint) *gorm.DB {
	return db.Where("id = ? AND cart_id IN (?)", itemID,
		db.Session(&gorm.Session{NewDB: true}).Model(&models.Cart{}).Select("id").Where("user_id = ?", userID))
}

func (r *GormRepo) SetCartItemQuantity(ctx context.Context, userID uuid.UUID, itemID uint, quantity int) (int64, error) {
	db := r.DB.WithContext(ctx)
	res := ownedItem(db.Model(&models.CartItem{}), userID, itemID).Update("quantity", quantity)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) RemoveCartItem(ctx context.Context, userID uuid.UUID, itemID uint) (int64, error) {
	db := r.DB.WithContext(ctx)
	res := ownedItem(db, userID, itemID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
