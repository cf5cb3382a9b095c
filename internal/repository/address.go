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

type AddressRepository interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Address, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*model.Address, error)
	Create(ctx context.Context, address *model.Address) error
	Update(ctx context.Context, address *model.Address) error
	DeleteForUser(ctx context.Context, id, userID uuid.UUID) (bool, error)
	UnsetDefaults(ctx context.Context, userID uuid.UUID, addrType model.AddressType, exceptID uuid.UUID) error
}

type pgAddressRepo struct{ pool *pgxpool.Pool }

func NewAddressRepository(pool *pgxpool.Pool) AddressRepository {
	return &pgAddressRepo{pool: pool}
}

const addressColumns = `id, user_id, type, name, street, city, state, postal_code, country, phone,
	is_default, created_at, updated_at`

func scanAddress(row pgx.Row) (*model.Address, error) {
	a := &model.Address{}
	err := row.Scan(
		&a.ID, &a.UserID, &a.Type, &a.Name, &a.Street, &a.City, &a.State, &a.PostalCode,
		&a.Country, &a.Phone, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

// ListByUserID puts default addresses first.
func (r *pgAddressRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Address, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+addressColumns+` FROM user_addresses WHERE user_id = $1
		 ORDER BY is_default DESC, created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []model.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan address: %w", err)
		}
		addresses = append(addresses, *a)
	}
	return addresses, rows.Err()
}

func (r *pgAddressRepo) GetForUser(ctx context.Context, id, userID uuid.UUID) (*model.Address, error) {
	a, err := scanAddress(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+addressColumns+` FROM user_addresses WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get address: %w", err)
	}
	return a, nil
}

func (r *pgAddressRepo) Create(ctx context.Context, a *model.Address) error {
	a.ID = uuid.New()
	err := conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO user_addresses (id, user_id, type, name, street, city, state, postal_code,
		 country, phone, is_default, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		a.ID, a.UserID, a.Type, a.Name, a.Street, a.City, a.State, a.PostalCode,
		a.Country, a.Phone, a.IsDefault,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create address: %w", err)
	}
	return nil
}

func (r *pgAddressRepo) Update(ctx context.Context, a *model.Address) error {
	err := conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE user_addresses SET type=$3, name=$4, street=$5, city=$6, state=$7, postal_code=$8,
		 country=$9, phone=$10, is_default=$11, updated_at=NOW()
		 WHERE id=$1 AND user_id=$2 RETURNING updated_at`,
		a.ID, a.UserID, a.Type, a.Name, a.Street, a.City, a.State, a.PostalCode,
		a.Country, a.Phone, a.IsDefault,
	).Scan(&a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update address: %w", err)
	}
	return nil
}

func (r *pgAddressRepo) DeleteForUser(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	ct, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM user_addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("delete address: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// UnsetDefaults clears is_default on the user's addresses of addrType,
// leaving exceptID alone. Pass uuid.Nil to clear all of them.
func (r *pgAddressRepo) UnsetDefaults(ctx context.Context, userID uuid.UUID, addrType model.AddressType, exceptID uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE user_addresses SET is_default = FALSE, updated_at = NOW()
		 WHERE user_id = $1 AND type = $2 AND is_default AND id <> $3`,
		userID, addrType, exceptID,
	)
	if err != nil {
		return fmt.Errorf("unset default addresses: %w", err)
	}
	return nil
}
