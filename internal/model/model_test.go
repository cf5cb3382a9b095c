package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusCancelled, false},
		{OrderStatusDelivered, OrderStatusPending, false},
		{OrderStatusCancelled, OrderStatusProcessing, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestEnums_Valid(t *testing.T) {
	assert.True(t, OrderStatus("shipped").Valid())
	assert.False(t, OrderStatus("lost").Valid())
	assert.True(t, ProductType("shirt").Valid())
	assert.False(t, ProductType("hat").Valid())
	assert.True(t, Gender("unisex").Valid())
	assert.False(t, Gender("").Valid())
	assert.True(t, AddressType("billing").Valid())
	assert.False(t, AddressType("home").Valid())
}

func TestCartItem_LineTotal(t *testing.T) {
	item := CartItem{UnitPrice: decimal.RequireFromString("34.99"), Quantity: 2}
	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("69.98")))
}
