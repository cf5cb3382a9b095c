package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/storefront-api/internal/model"
)

func TestUserRepo_CreateAndGetByEmail(t *testing.T) {
	cleanupTable(t, allTables...)

	repo := NewUserRepository(testPool)
	ctx := context.Background()

	user := seedUser(t, "test@example.com")
	assert.NotEqual(t, uuid.Nil, user.ID)

	found, err := repo.GetByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	found, err = repo.GetByEmail(ctx, "TEST@example.com")
	require.NoError(t, err)
	assert.Nil(t, found)

	err = repo.Create(ctx, &model.User{Email: "test@example.com", Password: "x", Role: model.RoleCustomer})
	assert.ErrorIs(t, err, ErrDuplicate)

	assert.NoError(t, repo.Lock(ctx, user.ID))
	assert.ErrorIs(t, repo.Lock(ctx, uuid.New()), pgx.ErrNoRows)
}

func TestCartRepo_MatchingItem(t *testing.T) {
	cleanupTable(t, allTables...)

	cartRepo := NewCartRepository(testPool)
	ctx := context.Background()

	user := seedUser(t, "cart@example.com")
	product := seedProduct(t, "Tee", 15, true)

	cart, err := cartRepo.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	again, err := cartRepo.GetOrCreateCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)

	text := "hello"
	item := &model.CartItem{
		CartID: cart.ID, ProductID: product.ID, Quantity: 2,
		CustomDesignText: &text, UnitPrice: decimal.NewFromInt(15),
	}
	require.NoError(t, cartRepo.AddItem(ctx, item))

	match, err := cartRepo.FindMatchingItem(ctx, &model.CartItem{
		CartID: cart.ID, ProductID: product.ID, CustomDesignText: &text,
	})
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, item.ID, match.ID)

	match, err = cartRepo.FindMatchingItem(ctx, &model.CartItem{CartID: cart.ID, ProductID: product.ID})
	require.NoError(t, err)
	assert.Nil(t, match, "null design text must not match a set one")

	items, err := cartRepo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Tee", items[0].Product.Name)

	other := seedUser(t, "other@example.com")
	deleted, err := cartRepo.DeleteItemForUser(ctx, item.ID, other.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, cartRepo.ClearCart(ctx, cart.ID))
	items, err = cartRepo.ListItems(ctx, cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestOrderRepo_CreateAndSettle(t *testing.T) {
	cleanupTable(t, allTables...)

	orderRepo := NewOrderRepository(testPool)
	ctx := context.Background()

	user := seedUser(t, "order@example.com")
	product := seedProduct(t, "Scent", 49.99, true)

	order := &model.Order{
		UserID: user.ID, OrderNumber: "ORD-1-abcdefgh-0000",
		Status: model.OrderStatusPending, TotalAmount: decimal.RequireFromString("99.98"),
		ShippingAddress: "1 Main St", BillingAddress: "1 Main St",
		PaymentMethod: "credit_card", PaymentStatus: model.PaymentStatusPending,
		Items: []model.OrderItem{{
			ProductID: product.ID, Quantity: 2,
			UnitPrice:  decimal.RequireFromString("49.99"),
			TotalPrice: decimal.RequireFromString("99.98"),
		}},
	}
	require.NoError(t, orderRepo.Create(ctx, order))

	found, err := orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.Items, 1)
	assert.True(t, found.TotalAmount.Equal(order.TotalAmount))

	pending, err := orderRepo.ListPendingPayment(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	settled, err := orderRepo.SettlePayment(ctx, order.ID, model.OrderStatusProcessing, model.PaymentStatusCompleted)
	require.NoError(t, err)
	assert.True(t, settled)

	settled, err = orderRepo.SettlePayment(ctx, order.ID, model.OrderStatusCancelled, model.PaymentStatusFailed)
	require.NoError(t, err)
	assert.False(t, settled, "an order is settled only once")

	found, err = orderRepo.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusProcessing, found.Status)
	assert.Equal(t, model.PaymentStatusCompleted, found.PaymentStatus)

	orders, err := orderRepo.ListByUserID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestAddressRepo_SingleDefaultPerType(t *testing.T) {
	cleanupTable(t, allTables...)

	repo := NewAddressRepository(testPool)
	ctx := context.Background()
	user := seedUser(t, "addr@example.com")

	newAddr := func(typ model.AddressType, def bool) *model.Address {
		return &model.Address{
			UserID: user.ID, Type: typ, Name: "Home", Street: "1 Main St",
			City: "Springfield", State: "IL", PostalCode: "62701", Country: "US", IsDefault: def,
		}
	}

	first := newAddr(model.AddressTypeShipping, true)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, newAddr(model.AddressTypeBilling, true)))

	assert.Error(t, repo.Create(ctx, newAddr(model.AddressTypeShipping, true)),
		"partial unique index rejects a second default")

	second := newAddr(model.AddressTypeShipping, true)
	require.NoError(t, repo.UnsetDefaults(ctx, user.ID, model.AddressTypeShipping, uuid.Nil))
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.GetForUser(ctx, first.ID, user.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	list, err := repo.ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	deleted, err := repo.DeleteForUser(ctx, second.ID, uuid.New())
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = repo.DeleteForUser(ctx, second.ID, user.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}
