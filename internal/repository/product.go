package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/model"
)

// ErrInsufficientStock is returned by ReserveStock when the variation has
// fewer units left than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductFilter narrows List to active products. Zero values mean "any".
type ProductFilter struct {
	Type     model.ProductType
	Gender   model.Gender
	Search   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Limit    int
	Offset   int
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	CreateVariation(ctx context.Context, variation *model.ProductVariation) error
	GetVariation(ctx context.Context, id uuid.UUID) (*model.ProductVariation, error)
	UpdateVariation(ctx context.Context, variation *model.ProductVariation) error
	ReserveStock(ctx context.Context, variationID uuid.UUID, quantity int) error
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, name, description, type, gender, base_price, image_url, is_active, created_at, updated_at`

const variationColumns = `id, product_id, variation_type, variation_value, price_adjustment,
	stock_quantity, is_available, created_at, updated_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	p := &model.Product{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Type, &p.Gender, &p.BasePrice,
		&p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanVariation(row pgx.Row) (*model.ProductVariation, error) {
	v := &model.ProductVariation{}
	err := row.Scan(
		&v.ID, &v.ProductID, &v.VariationType, &v.VariationValue, &v.PriceAdjustment,
		&v.StockQuantity, &v.IsAvailable, &v.CreatedAt, &v.UpdatedAt,
	)
	return v, err
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	product.IsActive = true
	query := `INSERT INTO products (id, name, description, type, gender, base_price, image_url, is_active, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW()) RETURNING created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Type, product.Gender,
		product.BasePrice, product.ImageURL,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// GetByID returns the product with its variations, active or not.
func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := scanProduct(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	products := []model.Product{*p}
	if err := r.attachVariations(ctx, products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *pgProductRepo) List(ctx context.Context, f ProductFilter) ([]model.Product, int, error) {
	where := []string{"is_active = TRUE"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.Gender != "" {
		add("gender = $%d", f.Gender)
	}
	if f.Search != "" {
		add(`name ILIKE '%%' || $%d || '%%'`, escapeLike(f.Search))
	}
	if f.MinPrice != nil {
		add("base_price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("base_price <= $%d", *f.MaxPrice)
	}
	clause := strings.Join(where, " AND ")

	db := conn(ctx, r.pool)

	var total int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	args = append(args, f.Limit, f.Offset)
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s
		ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`, productColumns, clause, len(args)-1, len(args))

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}

	if err := r.attachVariations(ctx, products); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *pgProductRepo) attachVariations(ctx context.Context, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]string, len(products))
	index := make(map[uuid.UUID]int, len(products))
	for i, p := range products {
		ids[i] = p.ID.String()
		index[p.ID] = i
		products[i].Variations = []model.ProductVariation{}
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+variationColumns+` FROM product_variations
		 WHERE product_id = ANY($1::uuid[]) ORDER BY created_at, id`, ids)
	if err != nil {
		return fmt.Errorf("list variations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVariation(rows)
		if err != nil {
			return fmt.Errorf("scan variation: %w", err)
		}
		i := index[v.ProductID]
		products[i].Variations = append(products[i].Variations, *v)
	}
	return rows.Err()
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products SET name=$2, description=$3, type=$4, gender=$5, base_price=$6,
			  image_url=$7, is_active=$8, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Type, product.Gender,
		product.BasePrice, product.ImageURL, product.IsActive,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Deactivate soft-deletes the product. Deactivating an inactive product
// succeeds; only a missing id yields pgx.ErrNoRows.
func (r *pgProductRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	ct, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) CreateVariation(ctx context.Context, v *model.ProductVariation) error {
	v.ID = uuid.New()
	query := `INSERT INTO product_variations (id, product_id, variation_type, variation_value,
			  price_adjustment, stock_quantity, is_available, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW()) RETURNING created_at, updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		v.ID, v.ProductID, v.VariationType, v.VariationValue, v.PriceAdjustment, v.StockQuantity, v.IsAvailable,
	).Scan(&v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create variation: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetVariation(ctx context.Context, id uuid.UUID) (*model.ProductVariation, error) {
	v, err := scanVariation(conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+variationColumns+` FROM product_variations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get variation: %w", err)
	}
	return v, nil
}

func (r *pgProductRepo) UpdateVariation(ctx context.Context, v *model.ProductVariation) error {
	query := `UPDATE product_variations SET variation_type=$2, variation_value=$3, price_adjustment=$4,
			  stock_quantity=$5, is_available=$6, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := conn(ctx, r.pool).QueryRow(ctx, query,
		v.ID, v.VariationType, v.VariationValue, v.PriceAdjustment, v.StockQuantity, v.IsAvailable,
	).Scan(&v.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pgx.ErrNoRows
		}
		return fmt.Errorf("update variation: %w", err)
	}
	return nil
}

func (r *pgProductRepo) ReserveStock(ctx context.Context, variationID uuid.UUID, quantity int) error {
	ct, err := conn(ctx, r.pool).Exec(ctx,
		`UPDATE product_variations SET stock_quantity = stock_quantity - $2, updated_at = NOW()
		 WHERE id = $1 AND stock_quantity >= $2`,
		variationID, quantity,
	)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("variation %s: %w", variationID, ErrInsufficientStock)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
