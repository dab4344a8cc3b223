package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID           uint                `gorm:"primaryKey;autoIncrement"                        json:"id"`
	Name         string              `gorm:"not null"                                        json:"name"`
	Description  string              `gorm:"not null;default:''"                             json:"description"`
	PriceFrom    decimal.NullDecimal `gorm:"type:numeric(12,2)"                              json:"price_from"`
	PriceTo      decimal.Decimal     `gorm:"type:numeric(12,2);not null"                     json:"price_to"`
	CurrentStock int                 `gorm:"not null;default:0;check:current_stock >= 0"     json:"current_stock"`
	IsActive     bool                `gorm:"not null;default:true"                           json:"is_active"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type Cart struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"        json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"  json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type CartItem struct {
	ID        uint `gorm:"primaryKey;autoIncrement"                    json:"id"`
	CartID    uint `gorm:"uniqueIndex:idx_cart_product;not null"       json:"cart_id"`
	ProductID uint `gorm:"uniqueIndex:idx_cart_product;not null"       json:"product_id"`
	Quantity  int  `gorm:"not null;check:quantity > 0"                 json:"quantity"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

type Address struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"  json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:idx_addresses_single_main,where:is_main = true" json:"user_id"`
	Recipient  string    `gorm:"not null"                  json:"recipient"`
	Street     string    `gorm:"not null"                  json:"street"`
	Number     string    `gorm:"not null"                  json:"number"`
	Complement string    `json:"complement"`
	District   string    `json:"district"`
	City       string    `gorm:"not null"                  json:"city"`
	State      string    `gorm:"not null"                  json:"state"`
	ZipCode    string    `gorm:"not null"                  json:"zip_code"`
	IsMain     bool      `gorm:"not null;default:false"    json:"is_main"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID             uint            `gorm:"primaryKey;autoIncrement"                                json:"id"`
	UserID         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_user_idem_key"  json:"user_id"`
	AddressID      uint            `gorm:"not null"                                                json:"address_id"`
	Status         OrderStatus     `gorm:"type:varchar(20);not null;index"                         json:"status"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null"                             json:"total_amount"`
	IdempotencyKey *string         `gorm:"type:varchar(255);uniqueIndex:idx_user_idem_key"         json:"-"`
	RequestHash    string          `gorm:"type:varchar(128);not null;default:''"                  json:"-"`
	Items          []OrderItem     `gorm:"constraint:OnDelete:CASCADE"                             json:"items,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"      json:"id"`
	OrderID   uint            `gorm:"index;not null"                json:"order_id"`
	ProductID uint            `gorm:"index;not null"                json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity > 0"   json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2);not null"   json:"unit_price"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

func All() []any {
	return []any{&Product{}, &Cart{}, &CartItem{}, &Address{}, &Order{}, &OrderItem{}}
}
