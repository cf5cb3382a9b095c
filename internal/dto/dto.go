package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Email     *string `json:"email" binding:"omitempty,email"`
	FirstName *string `json:"first_name" binding:"omitempty,min=1"`
	LastName  *string `json:"last_name" binding:"omitempty,min=1"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse carries the password digest; clients of this API rely on it.
type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// --- Product ---

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Type        string          `json:"type" binding:"required,oneof=perfume shirt"`
	Gender      *string         `json:"gender" binding:"omitempty,oneof=male female unisex"`
	BasePrice   decimal.Decimal `json:"base_price" binding:"required,gt=0,lte=99999999.99"`
	ImageURL    *string         `json:"image_url" binding:"omitempty,url"`
}

type UpdateProductRequest struct {
	Name        *string                `json:"name" binding:"omitempty,min=1"`
	Description *string                `json:"description"`
	Type        *string                `json:"type" binding:"omitempty,oneof=perfume shirt"`
	Gender      Optional[model.Gender] `json:"gender"`
	BasePrice   *decimal.Decimal       `json:"base_price" binding:"omitempty,gt=0,lte=99999999.99"`
	ImageURL    Optional[string]       `json:"image_url" binding:"omitempty,url"`
	IsActive    *bool                  `json:"is_active"`
}

type ListProductsRequest struct {
	Type     string   `form:"type" binding:"omitempty,oneof=perfume shirt"`
	Gender   string   `form:"gender" binding:"omitempty,oneof=male female unisex"`
	Search   string   `form:"search"`
	MinPrice *float64 `form:"min_price" binding:"omitempty,gte=0"`
	MaxPrice *float64 `form:"max_price" binding:"omitempty,gte=0"`
	Page     int      `form:"page,default=1" binding:"min=1"`
	Limit    int      `form:"limit,default=20" binding:"min=1,max=100"`
}

type CreateVariationRequest struct {
	VariationType   string          `json:"variation_type" binding:"required"`
	VariationValue  string          `json:"variation_value" binding:"required"`
	PriceAdjustment decimal.Decimal `json:"price_adjustment" binding:"gte=-99999999.99,lte=99999999.99"`
	StockQuantity   int             `json:"stock_quantity" binding:"gte=0"`
	IsAvailable     *bool           `json:"is_available"`
}

type UpdateVariationRequest struct {
	VariationType   *string          `json:"variation_type" binding:"omitempty,min=1"`
	VariationValue  *string          `json:"variation_value" binding:"omitempty,min=1"`
	PriceAdjustment *decimal.Decimal `json:"price_adjustment" binding:"omitempty,gte=-99999999.99,lte=99999999.99"`
	StockQuantity   *int             `json:"stock_quantity" binding:"omitempty,gte=0"`
	IsAvailable     *bool            `json:"is_available"`
}

// Empty reports whether the request changes nothing.
func (r UpdateVariationRequest) Empty() bool {
	return r.VariationType == nil && r.VariationValue == nil && r.PriceAdjustment == nil &&
		r.StockQuantity == nil && r.IsAvailable == nil
}

type ProductResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	Type        string              `json:"type"`
	Gender      *string             `json:"gender"`
	BasePrice   float64             `json:"base_price"`
	ImageURL    *string             `json:"image_url"`
	IsActive    bool                `json:"is_active"`
	Variations  []VariationResponse `json:"variations"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// ProductSummary is the product shape nested in cart and order lines.
type ProductSummary struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Gender    *string   `json:"gender"`
	BasePrice float64   `json:"base_price"`
	ImageURL  *string   `json:"image_url"`
	IsActive  bool      `json:"is_active"`
}

type VariationResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	VariationType   string    `json:"variation_type"`
	VariationValue  string    `json:"variation_value"`
	PriceAdjustment float64   `json:"price_adjustment"`
	StockQuantity   int       `json:"stock_quantity"`
	IsAvailable     bool      `json:"is_available"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID        uuid.UUID  `json:"product_id" binding:"required"`
	VariationID      *uuid.UUID `json:"variation_id"`
	Quantity         int        `json:"quantity" binding:"required,min=1"`
	CustomDesignText *string    `json:"custom_design_text"`
	CustomDesignURL  *string    `json:"custom_design_url" binding:"omitempty,url"`
}

type UpdateCartItemRequest struct {
	Quantity         *int             `json:"quantity" binding:"omitempty,min=0"`
	CustomDesignText Optional[string] `json:"custom_design_text"`
	CustomDesignURL  Optional[string] `json:"custom_design_url" binding:"omitempty,url"`
}

type CartResponse struct {
	ID        uuid.UUID          `json:"id"`
	UserID    uuid.UUID          `json:"user_id"`
	Items     []CartItemResponse `json:"items"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type CartItemResponse struct {
	ID               uuid.UUID          `json:"id"`
	CartID           uuid.UUID          `json:"cart_id"`
	ProductID        uuid.UUID          `json:"product_id"`
	VariationID      *uuid.UUID         `json:"variation_id"`
	Quantity         int                `json:"quantity"`
	CustomDesignText *string            `json:"custom_design_text"`
	CustomDesignURL  *string            `json:"custom_design_url"`
	UnitPrice        float64            `json:"unit_price"`
	Product          *ProductSummary    `json:"product,omitempty"`
	Variation        *VariationResponse `json:"variation,omitempty"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// --- Order ---

type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
	BillingAddress  string `json:"billing_address" binding:"required"`
	PaymentMethod   string `json:"payment_method" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending processing shipped delivered cancelled"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	OrderNumber     string              `json:"order_number"`
	Status          model.OrderStatus   `json:"status"`
	TotalAmount     float64             `json:"total_amount"`
	ShippingAddress string              `json:"shipping_address"`
	BillingAddress  string              `json:"billing_address"`
	PaymentMethod   string              `json:"payment_method"`
	PaymentStatus   model.PaymentStatus `json:"payment_status"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type OrderItemResponse struct {
	ID               uuid.UUID          `json:"id"`
	OrderID          uuid.UUID          `json:"order_id"`
	ProductID        uuid.UUID          `json:"product_id"`
	VariationID      *uuid.UUID         `json:"variation_id"`
	Quantity         int                `json:"quantity"`
	CustomDesignText *string            `json:"custom_design_text"`
	CustomDesignURL  *string            `json:"custom_design_url"`
	UnitPrice        float64            `json:"unit_price"`
	TotalPrice       float64            `json:"total_price"`
	Product          *ProductSummary    `json:"product,omitempty"`
	Variation        *VariationResponse `json:"variation,omitempty"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

// --- Address ---

type CreateAddressRequest struct {
	Type       string  `json:"type" binding:"required,oneof=shipping billing"`
	Name       string  `json:"name" binding:"required"`
	Street     string  `json:"street" binding:"required"`
	City       string  `json:"city" binding:"required"`
	State      string  `json:"state" binding:"required"`
	PostalCode string  `json:"postal_code" binding:"required"`
	Country    string  `json:"country" binding:"required"`
	Phone      *string `json:"phone"`
	IsDefault  bool    `json:"is_default"`
}

type UpdateAddressRequest struct {
	Type       *string          `json:"type" binding:"omitempty,oneof=shipping billing"`
	Name       *string          `json:"name" binding:"omitempty,min=1"`
	Street     *string          `json:"street" binding:"omitempty,min=1"`
	City       *string          `json:"city" binding:"omitempty,min=1"`
	State      *string          `json:"state" binding:"omitempty,min=1"`
	PostalCode *string          `json:"postal_code" binding:"omitempty,min=1"`
	Country    *string          `json:"country" binding:"omitempty,min=1"`
	Phone      Optional[string] `json:"phone"`
	IsDefault  *bool            `json:"is_default"`
}

// Empty reports whether the request changes nothing.
func (r UpdateAddressRequest) Empty() bool {
	return r.Type == nil && r.Name == nil && r.Street == nil && r.City == nil && r.State == nil &&
		r.PostalCode == nil && r.Country == nil && !r.Phone.Set && r.IsDefault == nil
}

type AddressResponse struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	Phone      *string   `json:"phone"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
