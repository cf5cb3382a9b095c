package dto

import (
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/model"
)

// Money converts a stored amount to the JSON number clients expect.
func Money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID: u.ID, Email: u.Email, PasswordHash: u.Password,
		FirstName: u.FirstName, LastName: u.LastName, Role: u.Role,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

func NewProductResponse(p *model.Product) ProductResponse {
	variations := make([]VariationResponse, 0, len(p.Variations))
	for i := range p.Variations {
		variations = append(variations, NewVariationResponse(&p.Variations[i]))
	}
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Type:        string(p.Type),
		Gender:      genderString(p.Gender),
		BasePrice:   Money(p.BasePrice),
		ImageURL:    p.ImageURL,
		IsActive:    p.IsActive,
		Variations:  variations,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func newProductSummary(p *model.Product) *ProductSummary {
	if p == nil {
		return nil
	}
	return &ProductSummary{
		ID: p.ID, Name: p.Name, Type: string(p.Type), Gender: genderString(p.Gender),
		BasePrice: Money(p.BasePrice), ImageURL: p.ImageURL, IsActive: p.IsActive,
	}
}

func NewVariationResponse(v *model.ProductVariation) VariationResponse {
	return VariationResponse{
		ID:              v.ID,
		ProductID:       v.ProductID,
		VariationType:   v.VariationType,
		VariationValue:  v.VariationValue,
		PriceAdjustment: Money(v.PriceAdjustment),
		StockQuantity:   v.StockQuantity,
		IsAvailable:     v.IsAvailable,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func newVariationPtr(v *model.ProductVariation) *VariationResponse {
	if v == nil {
		return nil
	}
	resp := NewVariationResponse(v)
	return &resp
}

func genderString(g *model.Gender) *string {
	if g == nil {
		return nil
	}
	s := string(*g)
	return &s
}

func NewCartResponse(cart *model.Cart) CartResponse {
	items := make([]CartItemResponse, 0, len(cart.Items))
	for i := range cart.Items {
		items = append(items, NewCartItemResponse(&cart.Items[i]))
	}
	return CartResponse{
		ID: cart.ID, UserID: cart.UserID, Items: items,
		CreatedAt: cart.CreatedAt, UpdatedAt: cart.UpdatedAt,
	}
}

func NewCartItemResponse(item *model.CartItem) CartItemResponse {
	return CartItemResponse{
		ID:               item.ID,
		CartID:           item.CartID,
		ProductID:        item.ProductID,
		VariationID:      item.VariationID,
		Quantity:         item.Quantity,
		CustomDesignText: item.CustomDesignText,
		CustomDesignURL:  item.CustomDesignURL,
		UnitPrice:        Money(item.UnitPrice),
		Product:          newProductSummary(item.Product),
		Variation:        newVariationPtr(item.Variation),
	}
}

func NewOrderResponse(order *model.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for i := range order.Items {
		item := &order.Items[i]
		items = append(items, OrderItemResponse{
			ID:               item.ID,
			OrderID:          item.OrderID,
			ProductID:        item.ProductID,
			VariationID:      item.VariationID,
			Quantity:         item.Quantity,
			CustomDesignText: item.CustomDesignText,
			CustomDesignURL:  item.CustomDesignURL,
			UnitPrice:        Money(item.UnitPrice),
			TotalPrice:       Money(item.TotalPrice),
			Product:          newProductSummary(item.Product),
			Variation:        newVariationPtr(item.Variation),
		})
	}
	return OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		OrderNumber:     order.OrderNumber,
		Status:          order.Status,
		TotalAmount:     Money(order.TotalAmount),
		ShippingAddress: order.ShippingAddress,
		BillingAddress:  order.BillingAddress,
		PaymentMethod:   order.PaymentMethod,
		PaymentStatus:   order.PaymentStatus,
		Items:           items,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
}

func NewOrderListResponse(orders []model.Order) OrderListResponse {
	resp := OrderListResponse{Orders: make([]OrderResponse, 0, len(orders)), Total: len(orders)}
	for i := range orders {
		resp.Orders = append(resp.Orders, NewOrderResponse(&orders[i]))
	}
	return resp
}

func NewAddressResponse(a *model.Address) AddressResponse {
	return AddressResponse{
		ID: a.ID, UserID: a.UserID, Type: string(a.Type), Name: a.Name,
		Street: a.Street, City: a.City, State: a.State, PostalCode: a.PostalCode,
		Country: a.Country, Phone: a.Phone, IsDefault: a.IsDefault,
		CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}
