package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID        uuid.UUID
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProductType string

const (
	ProductTypePerfume ProductType = "perfume"
	ProductTypeShirt   ProductType = "shirt"
)

func (t ProductType) Valid() bool {
	return t == ProductTypePerfume || t == ProductTypeShirt
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderUnisex Gender = "unisex"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderUnisex
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Description string
	Type        ProductType
	Gender      *Gender
	BasePrice   decimal.Decimal
	ImageURL    *string
	IsActive    bool
	Variations  []ProductVariation
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ProductVariation struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	VariationType   string
	VariationValue  string
	PriceAdjustment decimal.Decimal
	StockQuantity   int
	IsAvailable     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Cart struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Items     []CartItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID               uuid.UUID
	CartID           uuid.UUID
	ProductID        uuid.UUID
	VariationID      *uuid.UUID
	Quantity         int
	CustomDesignText *string
	CustomDesignURL  *string
	UnitPrice        decimal.Decimal
	Product          *Product
	Variation        *ProductVariation
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LineTotal is the snapshot unit price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
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

// CanTransitionTo reports whether next follows s in the order lifecycle.
// Status updates by admins do not consult it.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Order struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	OrderNumber     string
	Status          OrderStatus
	TotalAmount     decimal.Decimal
	ShippingAddress string
	BillingAddress  string
	PaymentMethod   string
	PaymentStatus   PaymentStatus
	Items           []OrderItem
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID               uuid.UUID
	OrderID          uuid.UUID
	ProductID        uuid.UUID
	VariationID      *uuid.UUID
	Quantity         int
	CustomDesignText *string
	CustomDesignURL  *string
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
	Product          *Product
	Variation        *ProductVariation
	CreatedAt        time.Time
}

type AddressType string

const (
	AddressTypeShipping AddressType = "shipping"
	AddressTypeBilling  AddressType = "billing"
)

func (t AddressType) Valid() bool {
	return t == AddressTypeShipping || t == AddressTypeBilling
}

type Address struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Type       AddressType
	Name       string
	Street     string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      *string
	IsDefault  bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// OrderMessage is published once an order's payment completes.
type OrderMessage struct {
	OrderID uuid.UUID `json:"order_id"`
	UserID  uuid.UUID `json:"user_id"`
}
