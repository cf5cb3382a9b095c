package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

type mockUserRepo struct {
	users map[string]*model.User
	byID  map[uuid.UUID]*model.User
	locks int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User), byID: make(map[uuid.UUID]*model.User)}
}

func (m *mockUserRepo) add(user *model.User) *model.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.users[user.Email] = user
	m.byID[user.ID] = user
	return user
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrDuplicate
	}
	user.ID = uuid.New()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	m.add(user)
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	old, ok := m.byID[user.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	delete(m.users, old.Email)
	user.UpdatedAt = time.Now()
	cp := *user
	m.add(&cp)
	return nil
}

func (m *mockUserRepo) Lock(_ context.Context, id uuid.UUID) error {
	if _, ok := m.byID[id]; !ok {
		return pgx.ErrNoRows
	}
	m.locks++
	return nil
}

func (m *mockUserRepo) List(_ context.Context) ([]model.User, error) {
	users := make([]model.User, 0, len(m.byID))
	for _, u := range m.byID {
		users = append(users, *u)
	}
	return users, nil
}

func TestAuthService_Register(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	resp, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Password: "password123",
		FirstName: "John", LastName: "Doe",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "test@example.com", resp.User.Email)
	assert.Equal(t, model.RoleCustomer, resp.User.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(resp.User.PasswordHash), []byte("password123")))

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) { return []byte("test-secret"), nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, resp.User.ID.String(), claims["sub"])
	assert.Equal(t, model.RoleCustomer, claims["role"])
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	req := dto.RegisterRequest{
		Email: "test@example.com", Password: "password123",
		FirstName: "John", LastName: "Doe",
	}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	registered, err := svc.Register(context.Background(), dto.RegisterRequest{
		Email: "test@example.com", Password: "password123",
		FirstName: "John", LastName: "Doe",
	})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "test@example.com", Password: "password123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, registered.User.ID, resp.User.ID)
}

func TestAuthService_Login_EmailIsCaseSensitive(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo.add(&model.User{Email: "test@x.com", Password: string(hashed), Role: model.RoleCustomer})

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "Test@x.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	repo.add(&model.User{Email: "test@example.com", Password: string(hashed)})

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "test@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_GetProfile_NotFound(t *testing.T) {
	svc := NewAuthService(newMockUserRepo(), "test-secret", time.Hour)

	_, err := svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	user := repo.add(&model.User{Email: "a@example.com", FirstName: "Ann", LastName: "Lee"})
	repo.add(&model.User{Email: "b@example.com"})

	t.Run("partial update", func(t *testing.T) {
		name := "Anna"
		resp, err := svc.UpdateProfile(context.Background(), user.ID, dto.UpdateProfileRequest{FirstName: &name})
		require.NoError(t, err)
		assert.Equal(t, "Anna", resp.FirstName)
		assert.Equal(t, "Lee", resp.LastName)
		assert.Equal(t, "a@example.com", resp.Email)
	})

	t.Run("own email is not a conflict", func(t *testing.T) {
		email := "a@example.com"
		_, err := svc.UpdateProfile(context.Background(), user.ID, dto.UpdateProfileRequest{Email: &email})
		assert.NoError(t, err)
	})

	t.Run("email taken by another user", func(t *testing.T) {
		email := "b@example.com"
		_, err := svc.UpdateProfile(context.Background(), user.ID, dto.UpdateProfileRequest{Email: &email})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.UpdateProfile(context.Background(), uuid.New(), dto.UpdateProfileRequest{})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAuthService_ListUsers(t *testing.T) {
	repo := newMockUserRepo()
	svc := NewAuthService(repo, "test-secret", time.Hour)
	repo.add(&model.User{Email: "a@example.com", Password: "digest-a"})
	repo.add(&model.User{Email: "b@example.com", Password: "digest-b"})

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.NotEmpty(t, u.PasswordHash)
	}
}
