package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrVariationNotFound = errors.New("product variation not found")
	ErrInvalidInput      = errors.New("invalid input")
)

const productCacheTTL = 60 * time.Second

type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, redisClient: redisClient}
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	basePrice, err := basePriceOf(req.BasePrice)
	if err != nil {
		return nil, err
	}
	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Type:        model.ProductType(req.Type),
		BasePrice:   basePrice,
		ImageURL:    req.ImageURL,
	}
	if req.Gender != nil {
		g := model.Gender(*req.Gender)
		product.Gender = &g
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	product.Variations = []model.ProductVariation{}
	resp := dto.NewProductResponse(product)
	return &resp, nil
}

// GetByID returns nil without an error when the product does not exist.
// Inactive products are returned too.
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := productCacheKey(id)

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, nil
	}

	resp := dto.NewProductResponse(product)

	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}

	return &resp, nil
}

func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) (*dto.ProductListResponse, error) {
	filter := repository.ProductFilter{
		Type:   model.ProductType(req.Type),
		Gender: model.Gender(req.Gender),
		Search: req.Search,
		Limit:  req.Limit,
		Offset: (req.Page - 1) * req.Limit,
	}
	if req.MinPrice != nil {
		v := decimal.NewFromFloat(*req.MinPrice)
		filter.MinPrice = &v
	}
	if req.MaxPrice != nil {
		v := decimal.NewFromFloat(*req.MaxPrice)
		filter.MaxPrice = &v
	}

	products, total, err := s.productRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, dto.NewProductResponse(&products[i]))
	}

	return &dto.ProductListResponse{
		Products:   items,
		Total:      total,
		Page:       req.Page,
		Limit:      req.Limit,
		TotalPages: totalPages(total, req.Limit),
	}, nil
}

// roundMoney rounds to cents, the precision prices are stored with.
func roundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

func basePriceOf(d decimal.Decimal) (decimal.Decimal, error) {
	price := roundMoney(d)
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("base price %s: %w", d, ErrInvalidInput)
	}
	return price, nil
}

func totalPages(total, limit int) int {
	if total == 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Type != nil {
		product.Type = model.ProductType(*req.Type)
	}
	if req.Gender.Set {
		if req.Gender.Valid && !req.Gender.Value.Valid() {
			return nil, fmt.Errorf("gender %q: %w", req.Gender.Value, ErrInvalidInput)
		}
		product.Gender = req.Gender.Ptr()
	}
	if req.BasePrice != nil {
		if product.BasePrice, err = basePriceOf(*req.BasePrice); err != nil {
			return nil, err
		}
	}
	if req.ImageURL.Set {
		product.ImageURL = req.ImageURL.Ptr()
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateCache(ctx, id)
	resp := dto.NewProductResponse(product)
	return &resp, nil
}

// Delete deactivates the product. Deleting an inactive product succeeds.
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

func (s *ProductService) CreateVariation(ctx context.Context, productID uuid.UUID, req dto.CreateVariationRequest) (*dto.VariationResponse, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	variation := &model.ProductVariation{
		ProductID:       productID,
		VariationType:   req.VariationType,
		VariationValue:  req.VariationValue,
		PriceAdjustment: roundMoney(req.PriceAdjustment),
		StockQuantity:   req.StockQuantity,
		IsAvailable:     true,
	}
	if req.IsAvailable != nil {
		variation.IsAvailable = *req.IsAvailable
	}
	if err := s.productRepo.CreateVariation(ctx, variation); err != nil {
		return nil, fmt.Errorf("create variation: %w", err)
	}

	s.invalidateCache(ctx, productID)
	resp := dto.NewVariationResponse(variation)
	return &resp, nil
}

// UpdateVariation patches the variation. A request without fields returns
// the current row untouched.
func (s *ProductService) UpdateVariation(ctx context.Context, id uuid.UUID, req dto.UpdateVariationRequest) (*dto.VariationResponse, error) {
	variation, err := s.productRepo.GetVariation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get variation: %w", err)
	}
	if variation == nil {
		return nil, ErrVariationNotFound
	}
	if req.Empty() {
		resp := dto.NewVariationResponse(variation)
		return &resp, nil
	}

	if req.VariationType != nil {
		variation.VariationType = *req.VariationType
	}
	if req.VariationValue != nil {
		variation.VariationValue = *req.VariationValue
	}
	if req.PriceAdjustment != nil {
		variation.PriceAdjustment = roundMoney(*req.PriceAdjustment)
	}
	if req.StockQuantity != nil {
		variation.StockQuantity = *req.StockQuantity
	}
	if req.IsAvailable != nil {
		variation.IsAvailable = *req.IsAvailable
	}

	if err := s.productRepo.UpdateVariation(ctx, variation); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVariationNotFound
		}
		return nil, fmt.Errorf("update variation: %w", err)
	}

	s.invalidateCache(ctx, variation.ProductID)
	resp := dto.NewVariationResponse(variation)
	return &resp, nil
}

func (s *ProductService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, productCacheKey(id))
	}
}

func productCacheKey(id uuid.UUID) string {
	return "product:" + id.String()
}
