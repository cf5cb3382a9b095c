package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
	"github.com/flicky/storefront-api/internal/service"
)

func TestAddressService_ConcurrentDefaults(t *testing.T) {
	pool := repository.SharedPool()
	ctx := context.Background()

	for _, table := range []string{"user_addresses", "order_items", "orders", "cart_items", "carts", "users"} {
		_, err := pool.Exec(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}

	users := repository.NewUserRepository(pool)
	addresses := repository.NewAddressRepository(pool)
	svc := service.NewAddressService(repository.NewTransactor(pool), addresses, users)

	user := &model.User{Email: "defaults@example.com", Password: "h", Role: model.RoleCustomer}
	require.NoError(t, users.Create(ctx, user))

	req := dto.CreateAddressRequest{
		Type: "shipping", Name: "Home", Street: "1 Main St", City: "Springfield",
		State: "IL", PostalCode: "62701", Country: "US", IsDefault: true,
	}

	const writers = 8
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, user.ID, req)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "writer %d", i)
	}

	list, err := addresses.ListByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, writers)

	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
		}
	}
	assert.Equal(t, 1, defaults)
}
