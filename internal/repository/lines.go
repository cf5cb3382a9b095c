package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/model"
)

// Column lists for cart and order lines joined to their product (p) and
// optional variation (v).
const (
	joinedProductColumns = `p.id, p.name, p.description, p.type, p.gender, p.base_price,
	p.image_url, p.is_active, p.created_at, p.updated_at`
	joinedVariationColumns = `v.id, v.product_id, v.variation_type, v.variation_value, v.price_adjustment,
	v.stock_quantity, v.is_available, v.created_at, v.updated_at`
)

func productDest(p *model.Product) []any {
	return []any{
		&p.ID, &p.Name, &p.Description, &p.Type, &p.Gender, &p.BasePrice,
		&p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	}
}

// nullVariation receives the LEFT JOINed variation columns.
type nullVariation struct {
	ID              *uuid.UUID
	ProductID       *uuid.UUID
	VariationType   *string
	VariationValue  *string
	PriceAdjustment decimal.NullDecimal
	StockQuantity   *int
	IsAvailable     *bool
	CreatedAt       *time.Time
	UpdatedAt       *time.Time
}

func (n *nullVariation) dest() []any {
	return []any{
		&n.ID, &n.ProductID, &n.VariationType, &n.VariationValue, &n.PriceAdjustment,
		&n.StockQuantity, &n.IsAvailable, &n.CreatedAt, &n.UpdatedAt,
	}
}

func (n *nullVariation) value() *model.ProductVariation {
	if n.ID == nil {
		return nil
	}
	v := &model.ProductVariation{ID: *n.ID, PriceAdjustment: n.PriceAdjustment.Decimal}
	if n.ProductID != nil {
		v.ProductID = *n.ProductID
	}
	if n.VariationType != nil {
		v.VariationType = *n.VariationType
	}
	if n.VariationValue != nil {
		v.VariationValue = *n.VariationValue
	}
	if n.StockQuantity != nil {
		v.StockQuantity = *n.StockQuantity
	}
	if n.IsAvailable != nil {
		v.IsAvailable = *n.IsAvailable
	}
	if n.CreatedAt != nil {
		v.CreatedAt = *n.CreatedAt
	}
	if n.UpdatedAt != nil {
		v.UpdatedAt = *n.UpdatedAt
	}
	return v
}
