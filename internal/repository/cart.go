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

type CartRepository interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	LockByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	ListItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error)
	FindMatchingItem(ctx context.Context, item *model.CartItem) (*model.CartItem, error)
	GetItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*model.CartItem, error)
	AddItem(ctx context.Context, item *model.CartItem) error
	UpdateItem(ctx context.Context, item *model.CartItem) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	DeleteItemForUser(ctx context.Context, itemID, userID uuid.UUID) (bool, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
}

type pgCartRepo struct{ pool *pgxpool.Pool }

func NewCartRepository(pool *pgxpool.Pool) CartRepository {
	return &pgCartRepo{pool: pool}
}

const cartItemColumns = `ci.id, ci.cart_id, ci.product_id, ci.variation_id, ci.quantity,
	ci.custom_design_text, ci.custom_design_url, ci.unit_price, ci.created_at, ci.updated_at`

func cartItemDest(item *model.CartItem) []any {
	return []any{
		&item.ID, &item.CartID, &item.ProductID, &item.VariationID, &item.Quantity,
		&item.CustomDesignText, &item.CustomDesignURL, &item.UnitPrice, &item.CreatedAt, &item.UpdatedAt,
	}
}

// GetOrCreateCart returns the user's cart, creating it on first access.
// Concurrent first accesses race on carts.user_id; the loser's insert is a
// no-op and both read back the winning row.
func (r *pgCartRepo) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	db := conn(ctx, r.pool)
	_, err := db.Exec(ctx,
		`INSERT INTO carts (id, user_id, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())
		 ON CONFLICT (user_id) DO NOTHING`,
		uuid.New(), userID,
	)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	cart, err := r.getByUserID(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, fmt.Errorf("get cart: %w", pgx.ErrNoRows)
	}
	return cart, nil
}

func (r *pgCartRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	return r.getByUserID(ctx, userID, "")
}

// LockByUserID reads the cart with a row lock held until the surrounding
// transaction ends.
func (r *pgCartRepo) LockByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	return r.getByUserID(ctx, userID, " FOR UPDATE")
}

func (r *pgCartRepo) getByUserID(ctx context.Context, userID uuid.UUID, suffix string) (*model.Cart, error) {
	cart := &model.Cart{}
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1`+suffix, userID,
	).Scan(&cart.ID, &cart.UserID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

// ListItems returns the cart lines joined to product and variation detail.
func (r *pgCartRepo) ListItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+cartItemColumns+`, `+joinedProductColumns+`, `+joinedVariationColumns+`
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 LEFT JOIN product_variations v ON v.id = ci.variation_id
		 WHERE ci.cart_id = $1
		 ORDER BY ci.created_at, ci.id`, cartID,
	)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var (
			item      model.CartItem
			product   model.Product
			variation nullVariation
		)
		dest := append(cartItemDest(&item), productDest(&product)...)
		dest = append(dest, variation.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		item.Product = &product
		item.Variation = variation.value()
		items = append(items, item)
	}
	return items, rows.Err()
}

// FindMatchingItem looks up the line item merges with: same product,
// variation and design fields, NULL matching NULL.
func (r *pgCartRepo) FindMatchingItem(ctx context.Context, item *model.CartItem) (*model.CartItem, error) {
	found := &model.CartItem{}
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items ci
		 WHERE ci.cart_id = $1 AND ci.product_id = $2
		   AND ci.variation_id IS NOT DISTINCT FROM $3::uuid
		   AND ci.custom_design_text IS NOT DISTINCT FROM $4::text
		   AND ci.custom_design_url IS NOT DISTINCT FROM $5::text
		 LIMIT 1`,
		item.CartID, item.ProductID, item.VariationID, item.CustomDesignText, item.CustomDesignURL,
	).Scan(cartItemDest(found)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find cart item: %w", err)
	}
	return found, nil
}

// GetItemForUser returns the item only when it sits in userID's cart.
func (r *pgCartRepo) GetItemForUser(ctx context.Context, itemID, userID uuid.UUID) (*model.CartItem, error) {
	item := &model.CartItem{}
	err := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+cartItemColumns+` FROM cart_items ci
		 JOIN carts c ON c.id = ci.cart_id
		 WHERE ci.id = $1 AND c.user_id = $2`,
		itemID, userID,
	).Scan(cartItemDest(item)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return item, nil
}

func (r *pgCartRepo) AddItem(ctx context.Context, item *model.CartItem) error {
	item.ID = uuid.New()
	query := `INSERT INTO cart_items (id, cart_id, product_id, variation_id, quantity,
			  custom_design_text, custom_design_url, unit_price, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		item.ID, item.CartID, item.ProductID, item.VariationID, item.Quantity,
		item.CustomDesignText, item.CustomDesignURL, item.UnitPrice,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) UpdateItem(ctx context.Context, item *model.CartItem) error {
	err := conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE cart_items SET quantity = $2, custom_design_text = $3, custom_design_url = $4,
		 unit_price = $5, updated_at = NOW()
		 WHERE id = $1 RETURNING updated_at`,
		item.ID, item.Quantity, item.CustomDesignText, item.CustomDesignURL, item.UnitPrice,
	).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update cart item: %w", err)
	}
	return nil
}

func (r *pgCartRepo) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	ct, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM cart_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// DeleteItemForUser reports false when the item is missing or belongs to
// another user's cart.
func (r *pgCartRepo) DeleteItemForUser(ctx context.Context, itemID, userID uuid.UUID) (bool, error) {
	ct, err := conn(ctx, r.pool).Exec(ctx,
		`DELETE FROM cart_items ci USING carts c
		 WHERE ci.id = $1 AND ci.cart_id = c.id AND c.user_id = $2`,
		itemID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("delete cart item: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *pgCartRepo) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
