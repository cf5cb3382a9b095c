package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/storefront-api/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	List(ctx context.Context) ([]model.User, error)
	Lock(ctx context.Context, id uuid.UUID) error
}

type pgUserRepo struct{ pool *pgxpool.Pool }

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgUserRepo{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, role, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.FirstName, &user.LastName,
		&user.Role, &user.CreatedAt, &user.UpdatedAt,
	)
	return user, err
}

func (r *pgUserRepo) Create(ctx context.Context, user *model.User) error {
	user.ID = uuid.New()
	query := `INSERT INTO users (id, email, password_hash, first_name, last_name, role, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		user.ID, user.Email, user.Password, user.FirstName, user.LastName, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := scanUser(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

// GetByEmail matches the address exactly, case included.
func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := scanUser(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *pgUserRepo) Update(ctx context.Context, user *model.User) error {
	err := conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE users SET email = $2, first_name = $3, last_name = $4, updated_at = NOW()
		 WHERE id = $1 RETURNING updated_at`,
		user.ID, user.Email, user.FirstName, user.LastName,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// Lock takes a row lock on the user until the surrounding transaction ends,
// serialising writes that span several of the user's rows. It returns
// pgx.ErrNoRows when the user does not exist.
func (r *pgUserRepo) Lock(ctx context.Context, id uuid.UUID) error {
	var locked uuid.UUID
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id FROM users WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

func (r *pgUserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}
