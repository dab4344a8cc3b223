package transport

import "time"

type MessageResponse struct {
	Message string `json:"message"`
}

type AddToCartRequest struct {
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type CartItemResponse struct {
	ItemID    uint    `json:"itemId"`
	ProductID uint    `json:"productId"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	Subtotal  float64 `json:"subtotal"`
	Stock     int     `json:"stock"`
	IsValid   bool    `json:"isValid"`
	Error     string  `json:"error,omitempty"`
}

type CartResponse struct {
	CartID  *uint              `json:"cartId,omitempty"`
	Items   []CartItemResponse `json:"items"`
	Total   float64            `json:"total"`
	IsValid bool               `json:"isValid"`
}

// CheckoutRequest buys one product directly when ProductID is set and the
// whole cart otherwise.
type CheckoutRequest struct {
	AddressID      uint   `json:"addressId" validate:"required"`
	ProductID      *uint  `json:"productId"`
	Quantity       *int   `json:"quantity"`
	IdempotencyKey string `json:"idempotencyKey" validate:"omitempty,max=255"`
}

type CheckoutResponse struct {
	Message  string    `json:"message"`
	OrderID  uint      `json:"orderId"`
	Date     time.Time `json:"date"`
	Total    float64   `json:"total"`
	Replayed bool      `json:"replayed,omitempty"`
}

type AddressRequest struct {
	Recipient  string `json:"recipient" validate:"required,max=120"`
	Street     string `json:"street" validate:"required,max=200"`
	Number     string `json:"number" validate:"required,max=20"`
	Complement string `json:"complement" validate:"max=120"`
	District   string `json:"district" validate:"max=120"`
	City       string `json:"city" validate:"required,max=120"`
	State      string `json:"state" validate:"required,len=2"`
	ZipCode    string `json:"zipCode" validate:"required,max=10"`
	IsMain     bool   `json:"isMain"`
}

type AddressResponse struct {
	ID         uint   `json:"id"`
	Recipient  string `json:"recipient"`
	Street     string `json:"street"`
	Number     string `json:"number"`
	Complement string `json:"complement,omitempty"`
	District   string `json:"district,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	ZipCode    string `json:"zipCode"`
	IsMain     bool   `json:"isMain"`
}

type OrderItemResponse struct {
	ProductID uint    `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type OrderResponse struct {
	ID        uint                `json:"id"`
	UserID    string              `json:"userId"`
	AddressID uint                `json:"addressId"`
	Status    string              `json:"status"`
	Total     float64             `json:"total"`
	Items     []OrderItemResponse `json:"items"`
	CreatedAt time.Time           `json:"createdAt"`
}

type OrderListResponse struct {
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
	Items []OrderResponse `json:"items"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing shipped delivered cancelled"`
}

type ProductResponse struct {
	ID          uint     `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceFrom   *float64 `json:"priceFrom,omitempty"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	IsActive    bool     `json:"isActive"`
}

type ProductListResponse struct {
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	Size     int               `json:"size"`
	Products []ProductResponse `json:"products"`
}
