package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flicky/storefront-api/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error)
	ListAll(ctx context.Context) ([]model.Order, error)
	ListPendingPayment(ctx context.Context, createdBefore time.Time) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (time.Time, error)
	SettlePayment(ctx context.Context, id uuid.UUID, status model.OrderStatus, paymentStatus model.PaymentStatus) (bool, error)
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

const orderColumns = `id, user_id, order_number, status, total_amount, shipping_address, billing_address,
	payment_method, payment_status, created_at, updated_at`

func scanOrder(row pgx.Row) (*model.Order, error) {
	o := &model.Order{}
	err := row.Scan(
		&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &o.TotalAmount, &o.ShippingAddress,
		&o.BillingAddress, &o.PaymentMethod, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// Create inserts the order and all of its items. Run it inside a
// transaction so a failed item insert leaves nothing behind.
func (r *pgOrderRepo) Create(ctx context.Context, order *model.Order) error {
	db := conn(ctx, r.pool)

	order.ID = uuid.New()
	err := db.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, order_number, status, total_amount, shipping_address,
		 billing_address, payment_method, payment_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW()) RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.OrderNumber, order.Status, order.TotalAmount, order.ShippingAddress,
		order.BillingAddress, order.PaymentMethod, order.PaymentStatus,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert order: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.New()
		item.OrderID = order.ID
		err = db.QueryRow(ctx,
			`INSERT INTO order_items (id, order_id, product_id, variation_id, quantity,
			 custom_design_text, custom_design_url, unit_price, total_price, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW()) RETURNING created_at`,
			item.ID, item.OrderID, item.ProductID, item.VariationID, item.Quantity,
			item.CustomDesignText, item.CustomDesignURL, item.UnitPrice, item.TotalPrice,
		).Scan(&item.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	orders := []model.Order{*order}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return &orders[0], nil
}

func (r *pgOrderRepo) ListByUserID(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`, userID)
}

func (r *pgOrderRepo) ListAll(ctx context.Context) ([]model.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id`)
}

// ListPendingPayment returns orders whose payment never settled, oldest first.
func (r *pgOrderRepo) ListPendingPayment(ctx context.Context, createdBefore time.Time) ([]model.Order, error) {
	return r.list(ctx,
		`SELECT `+orderColumns+` FROM orders
		 WHERE payment_status = 'pending' AND created_at < $1
		 ORDER BY created_at, id`, createdBefore)
}

func (r *pgOrderRepo) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *pgOrderRepo) attachItems(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]string, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID.String()
		index[o.ID] = i
		orders[i].Items = []model.OrderItem{}
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT oi.id, oi.order_id, oi.product_id, oi.variation_id, oi.quantity, oi.custom_design_text,
		 oi.custom_design_url, oi.unit_price, oi.total_price, oi.created_at,
		 `+joinedProductColumns+`, `+joinedVariationColumns+`
		 FROM order_items oi
		 JOIN products p ON p.id = oi.product_id
		 LEFT JOIN product_variations v ON v.id = oi.variation_id
		 WHERE oi.order_id = ANY($1::uuid[])
		 ORDER BY oi.created_at, oi.id`, ids,
	)
	if err != nil {
		return fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item      model.OrderItem
			product   model.Product
			variation nullVariation
		)
		dest := []any{
			&item.ID, &item.OrderID, &item.ProductID, &item.VariationID, &item.Quantity, &item.CustomDesignText,
			&item.CustomDesignURL, &item.UnitPrice, &item.TotalPrice, &item.CreatedAt,
		}
		dest = append(dest, productDest(&product)...)
		dest = append(dest, variation.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return fmt.Errorf("scan order item: %w", err)
		}
		item.Product = &product
		item.Variation = variation.value()
		i := index[item.OrderID]
		orders[i].Items = append(orders[i].Items, item)
	}
	return rows.Err()
}

// UpdateStatus sets any status regardless of the current one.
func (r *pgOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (time.Time, error) {
	var updatedAt time.Time
	err := conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING updated_at`, id, status,
	).Scan(&updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, pgx.ErrNoRows
		}
		return time.Time{}, fmt.Errorf("update order status: %w", err)
	}
	return updatedAt, nil
}

// SettlePayment records the payment outcome. It only touches orders whose
// payment is still pending and reports whether it did.
func (r *pgOrderRepo) SettlePayment(ctx context.Context, id uuid.UUID, status model.OrderStatus, paymentStatus model.PaymentStatus) (bool, error) {
	ct, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE orders SET status = $2, payment_status = $3, updated_at = NOW()
		 WHERE id = $1 AND payment_status = 'pending'`,
		id, status, paymentStatus,
	)
	if err != nil {
		return false, fmt.Errorf("settle payment: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}
