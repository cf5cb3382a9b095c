package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/model"
	"github.com/flicky/storefront-api/internal/repository"
)

var (
	ErrCartNotFound         = errors.New("cart not found")
	ErrCartItemNotFound     = errors.New("cart item not found")
	ErrProductInactive      = errors.New("product is not active")
	ErrVariationUnavailable = errors.New("product variation is not available")
)

type CartService struct {
	tx          repository.Transactor
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(tx repository.Transactor, cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{tx: tx, cartRepo: cartRepo, productRepo: productRepo}
}

// GetCart creates the user's cart on first access.
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*dto.CartResponse, error) {
	cart, err := s.cartRepo.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get or create cart: %w", err)
	}
	cart.Items, err = s.cartRepo.ListItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("get cart items: %w", err)
	}
	resp := dto.NewCartResponse(cart)
	return &resp, nil
}

// AddItem merges into an existing line with the same product, variation and
// design fields, otherwise it adds a new line.
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, req dto.AddCartItemRequest) (*dto.CartItemResponse, error) {
	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	var variation *model.ProductVariation
	adjustment := decimal.Zero
	if req.VariationID != nil {
		variation, err = s.productRepo.GetVariation(ctx, *req.VariationID)
		if err != nil {
			return nil, fmt.Errorf("get variation: %w", err)
		}
		if variation == nil || variation.ProductID != product.ID {
			return nil, ErrVariationNotFound
		}
		if !variation.IsAvailable {
			return nil, ErrVariationUnavailable
		}
		adjustment = variation.PriceAdjustment
	}
	unitPrice := product.BasePrice.Add(adjustment)

	var line *model.CartItem
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.cartRepo.GetOrCreateCart(ctx, userID); err != nil {
			return fmt.Errorf("get or create cart: %w", err)
		}
		cart, err := s.cartRepo.LockByUserID(ctx, userID)
		if err != nil {
			return fmt.Errorf("lock cart: %w", err)
		}
		if cart == nil {
			return ErrCartNotFound
		}

		candidate := &model.CartItem{
			CartID:           cart.ID,
			ProductID:        product.ID,
			VariationID:      req.VariationID,
			Quantity:         req.Quantity,
			CustomDesignText: req.CustomDesignText,
			CustomDesignURL:  req.CustomDesignURL,
			UnitPrice:        unitPrice,
		}
		existing, err := s.cartRepo.FindMatchingItem(ctx, candidate)
		if err != nil {
			return fmt.Errorf("find cart item: %w", err)
		}
		if existing == nil {
			line = candidate
			return s.cartRepo.AddItem(ctx, line)
		}

		existing.Quantity += req.Quantity
		existing.UnitPrice = unitPrice
		line = existing
		return s.cartRepo.UpdateItem(ctx, line)
	})
	if err != nil {
		return nil, err
	}

	line.Product = product
	line.Variation = variation
	resp := dto.NewCartItemResponse(line)
	return &resp, nil
}

// UpdateItem patches a line in the user's cart. Quantity 0 deletes the line
// and returns it with only its id set.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req dto.UpdateCartItemRequest) (*dto.CartItemResponse, error) {
	item, err := s.cartRepo.GetItemForUser(ctx, itemID, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	if item == nil {
		return nil, ErrCartItemNotFound
	}

	if req.Quantity != nil && *req.Quantity == 0 {
		if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrCartItemNotFound
			}
			return nil, fmt.Errorf("delete cart item: %w", err)
		}
		resp := dto.NewCartItemResponse(&model.CartItem{ID: itemID})
		return &resp, nil
	}

	if req.Quantity != nil {
		item.Quantity = *req.Quantity
	}
	if req.CustomDesignText.Set {
		item.CustomDesignText = req.CustomDesignText.Ptr()
	}
	if req.CustomDesignURL.Set {
		item.CustomDesignURL = req.CustomDesignURL.Ptr()
	}

	if err := s.cartRepo.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}
	resp := dto.NewCartItemResponse(item)
	return &resp, nil
}

// RemoveItem reports false when the item is missing or in another user's cart.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error) {
	removed, err := s.cartRepo.DeleteItemForUser(ctx, itemID, userID)
	if err != nil {
		return false, fmt.Errorf("remove cart item: %w", err)
	}
	return removed, nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) (bool, error) {
	cart, err := s.cartRepo.GetByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get cart: %w", err)
	}
	if cart == nil {
		return true, nil
	}
	if err := s.cartRepo.ClearCart(ctx, cart.ID); err != nil {
		return false, fmt.Errorf("clear cart: %w", err)
	}
	return true, nil
}
