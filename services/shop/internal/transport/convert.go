package transport

import (
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/models"
	"github.com/Skotchmaster/cosmetics_shop/services/shop/internal/service"
)

func Cart(v *service.CartView) CartResponse {
	resp := CartResponse{
		Items:   make([]CartItemResponse, 0, len(v.Items)),
		Total:   v.Total.InexactFloat64(),
		IsValid: v.IsValid,
	}
	if v.CartID != 0 {
		id := v.CartID
		resp.CartID = &id
	}
	for _, it := range v.Items {
		resp.Items = append(resp.Items, CartItemResponse{
			ItemID:    it.ItemID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.UnitPrice.InexactFloat64(),
			Subtotal:  it.Subtotal.InexactFloat64(),
			Stock:     it.Stock,
			IsValid:   it.IsValid,
			Error:     it.Error,
		})
	}
	return resp
}

func (r AddressRequest) Model() models.Address {
	return models.Address{
		Recipient:  r.Recipient,
		Street:     r.Street,
		Number:     r.Number,
		Complement: r.Complement,
		District:   r.District,
		City:       r.City,
		State:      r.State,
		ZipCode:    r.ZipCode,
		IsMain:     r.IsMain,
	}
}

func Address(a models.Address) AddressResponse {
	return AddressResponse{
		ID:         a.ID,
		Recipient:  a.Recipient,
		Street:     a.Street,
		Number:     a.Number,
		Complement: a.Complement,
		District:   a.District,
		City:       a.City,
		State:      a.State,
		ZipCode:    a.ZipCode,
		IsMain:     a.IsMain,
	}
}

func Addresses(list []models.Address) []AddressResponse {
	out := make([]AddressResponse, 0, len(list))
	for _, a := range list {
		out = append(out, Address(a))
	}
	return out
}

func Order(o models.Order) OrderResponse {
	resp := OrderResponse{
		ID:        o.ID,
		UserID:    o.UserID.String(),
		AddressID: o.AddressID,
		Status:    string(o.Status),
		Total:     o.TotalAmount.InexactFloat64(),
		Items:     make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt: o.CreatedAt,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.InexactFloat64(),
		})
	}
	return resp
}

func Orders(p *service.OrderPage) OrderListResponse {
	resp := OrderListResponse{Total: p.Total, Page: p.Page, Size: p.Size, Items: make([]OrderResponse, 0, len(p.Items))}
	for _, o := range p.Items {
		resp.Items = append(resp.Items, Order(o))
	}
	return resp
}

func Product(p models.Product) ProductResponse {
	resp := ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.PriceTo.InexactFloat64(),
		Stock:       p.CurrentStock,
		IsActive:    p.IsActive,
	}
	if p.PriceFrom.Valid {
		v := p.PriceFrom.Decimal.InexactFloat64()
		resp.PriceFrom = &v
	}
	return resp
}

func Products(p *service.ProductPage) ProductListResponse {
	resp := ProductListResponse{Total: p.Total, Page: p.Page, Size: p.Size, Products: make([]ProductResponse, 0, len(p.Items))}
	for _, it := range p.Items {
		resp.Products = append(resp.Products, Product(it))
	}
	return resp
}
