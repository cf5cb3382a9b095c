package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
)

type mockAddressRepo struct {
	addresses map[uuid.UUID]*model.Address
}

func newMockAddressRepo() *mockAddressRepo {
	return &mockAddressRepo{addresses: make(map[uuid.UUID]*model.Address)}
}

func (m *mockAddressRepo) ListByUserID(_ context.Context, userID uuid.UUID) ([]model.Address, error) {
	out := []model.Address{}
	for _, a := range m.addresses {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *mockAddressRepo) GetForUser(_ context.Context, id, userID uuid.UUID) (*model.Address, error) {
	a, ok := m.addresses[id]
	if !ok || a.UserID != userID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *mockAddressRepo) Create(_ context.Context, a *model.Address) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.addresses[a.ID] = &cp
	return nil
}

func (m *mockAddressRepo) Update(_ context.Context, a *model.Address) error {
	existing, ok := m.addresses[a.ID]
	if !ok || existing.UserID != a.UserID {
		return pgx.ErrNoRows
	}
	a.UpdatedAt = time.Now()
	cp := *a
	m.addresses[a.ID] = &cp
	return nil
}

func (m *mockAddressRepo) DeleteForUser(_ context.Context, id, userID uuid.UUID) (bool, error) {
	a, ok := m.addresses[id]
	if !ok || a.UserID != userID {
		return false, nil
	}
	delete(m.addresses, id)
	return true, nil
}

func (m *mockAddressRepo) UnsetDefaults(_ context.Context, userID uuid.UUID, addrType model.AddressType, exceptID uuid.UUID) error {
	for _, a := range m.addresses {
		if a.UserID == userID && a.Type == addrType && a.ID != exceptID {
			a.IsDefault = false
		}
	}
	return nil
}

func (m *mockAddressRepo) defaults(userID uuid.UUID, addrType model.AddressType) []uuid.UUID {
	var ids []uuid.UUID
	for _, a := range m.addresses {
		if a.UserID == userID && a.Type == addrType && a.IsDefault {
			ids = append(ids, a.ID)
		}
	}
	return ids
}

func newAddressFixture() (*AddressService, *mockAddressRepo, *model.User) {
	users := newMockUserRepo()
	user := users.add(&model.User{Email: "a@example.com"})
	addresses := newMockAddressRepo()
	return NewAddressService(&passthroughTx{}, addresses, users), addresses, user
}

func addressRequest(addrType string, isDefault bool) dto.CreateAddressRequest {
	return dto.CreateAddressRequest{
		Type: addrType, Name: "Home", Street: "1 Main St", City: "Springfield",
		State: "IL", PostalCode: "62701", Country: "US", IsDefault: isDefault,
	}
}

func TestAddressService_Create_UnknownUser(t *testing.T) {
	svc, _, _ := newAddressFixture()

	_, err := svc.Create(context.Background(), uuid.New(), addressRequest("shipping", false))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAddressService_Create_DefaultPerType(t *testing.T) {
	svc, repo, user := newAddressFixture()
	ctx := context.Background()

	billing, err := svc.Create(ctx, user.ID, addressRequest("billing", true))
	require.NoError(t, err)
	first, err := svc.Create(ctx, user.ID, addressRequest("shipping", true))
	require.NoError(t, err)
	second, err := svc.Create(ctx, user.ID, addressRequest("shipping", true))
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{second.ID}, repo.defaults(user.ID, model.AddressTypeShipping))
	assert.Equal(t, []uuid.UUID{billing.ID}, repo.defaults(user.ID, model.AddressTypeBilling))
	assert.False(t, repo.addresses[first.ID].IsDefault)
}

func TestAddressService_DefaultChangesLockUser(t *testing.T) {
	users := newMockUserRepo()
	user := users.add(&model.User{Email: "lock@example.com"})
	svc := NewAddressService(&passthroughTx{}, newMockAddressRepo(), users)
	ctx := context.Background()

	_, err := svc.Create(ctx, user.ID, addressRequest("shipping", true))
	require.NoError(t, err)
	assert.Equal(t, 1, users.locks)

	plain, err := svc.Create(ctx, user.ID, addressRequest("billing", false))
	require.NoError(t, err)
	assert.Equal(t, 2, users.locks)

	city := "Chicago"
	_, err = svc.Update(ctx, user.ID, plain.ID, dto.UpdateAddressRequest{City: &city})
	require.NoError(t, err)
	assert.Equal(t, 2, users.locks, "non-default edits need no lock")

	yes := true
	_, err = svc.Update(ctx, user.ID, plain.ID, dto.UpdateAddressRequest{IsDefault: &yes})
	require.NoError(t, err)
	assert.Equal(t, 3, users.locks)
}

func TestAddressService_Update_SetDefault(t *testing.T) {
	svc, repo, user := newAddressFixture()
	ctx := context.Background()

	billing, err := svc.Create(ctx, user.ID, addressRequest("billing", true))
	require.NoError(t, err)
	current, err := svc.Create(ctx, user.ID, addressRequest("shipping", true))
	require.NoError(t, err)
	other, err := svc.Create(ctx, user.ID, addressRequest("shipping", false))
	require.NoError(t, err)

	yes := true
	resp, err := svc.Update(ctx, user.ID, other.ID, dto.UpdateAddressRequest{IsDefault: &yes})
	require.NoError(t, err)
	assert.True(t, resp.IsDefault)

	assert.False(t, repo.addresses[current.ID].IsDefault)
	assert.Equal(t, []uuid.UUID{other.ID}, repo.defaults(user.ID, model.AddressTypeShipping))
	assert.Equal(t, []uuid.UUID{billing.ID}, repo.defaults(user.ID, model.AddressTypeBilling))
}

func TestAddressService_Update_DefaultUsesResultingType(t *testing.T) {
	svc, repo, user := newAddressFixture()
	ctx := context.Background()

	billing, err := svc.Create(ctx, user.ID, addressRequest("billing", true))
	require.NoError(t, err)
	shipping, err := svc.Create(ctx, user.ID, addressRequest("shipping", false))
	require.NoError(t, err)

	yes := true
	billingType := "billing"
	_, err = svc.Update(ctx, user.ID, shipping.ID, dto.UpdateAddressRequest{Type: &billingType, IsDefault: &yes})
	require.NoError(t, err)

	assert.False(t, repo.addresses[billing.ID].IsDefault)
	assert.Equal(t, []uuid.UUID{shipping.ID}, repo.defaults(user.ID, model.AddressTypeBilling))
}

func TestAddressService_Update_Patch(t *testing.T) {
	svc, _, user := newAddressFixture()
	ctx := context.Background()
	req := addressRequest("shipping", false)
	req.Phone = strPtr("555-0100")
	created, err := svc.Create(ctx, user.ID, req)
	require.NoError(t, err)

	t.Run("empty patch returns the row unchanged", func(t *testing.T) {
		resp, err := svc.Update(ctx, user.ID, created.ID, dto.UpdateAddressRequest{})
		require.NoError(t, err)
		assert.Equal(t, created.Name, resp.Name)
		assert.Equal(t, created.UpdatedAt, resp.UpdatedAt)
	})

	t.Run("clear phone", func(t *testing.T) {
		city := "Chicago"
		resp, err := svc.Update(ctx, user.ID, created.ID, dto.UpdateAddressRequest{City: &city, Phone: dto.Null[string]()})
		require.NoError(t, err)
		assert.Equal(t, "Chicago", resp.City)
		assert.Nil(t, resp.Phone)
		assert.Equal(t, "1 Main St", resp.Street)
	})

	t.Run("another user's address", func(t *testing.T) {
		city := "Elsewhere"
		_, err := svc.Update(ctx, uuid.New(), created.ID, dto.UpdateAddressRequest{City: &city})
		assert.ErrorIs(t, err, ErrAddressNotFound)
	})
}

func TestAddressService_Delete(t *testing.T) {
	svc, repo, user := newAddressFixture()
	ctx := context.Background()
	created, err := svc.Create(ctx, user.ID, addressRequest("shipping", false))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, uuid.New(), created.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Contains(t, repo.addresses, created.ID)

	deleted, err = svc.Delete(ctx, user.ID, created.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NotContains(t, repo.addresses, created.ID)
}

func TestAddressService_List(t *testing.T) {
	svc, _, user := newAddressFixture()
	ctx := context.Background()
	_, err := svc.Create(ctx, user.ID, addressRequest("shipping", false))
	require.NoError(t, err)
	_, err = svc.Create(ctx, user.ID, addressRequest("billing", true))
	require.NoError(t, err)

	list, err := svc.List(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = svc.List(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, list)
}
