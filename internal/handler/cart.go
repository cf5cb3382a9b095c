package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/middleware"
)

type cartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*dto.CartResponse, error)
	AddItem(ctx context.Context, userID uuid.UUID, req dto.AddCartItemRequest) (*dto.CartItemResponse, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, req dto.UpdateCartItemRequest) (*dto.CartItemResponse, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (bool, error)
	Clear(ctx context.Context, userID uuid.UUID) (bool, error)
}

type CartHandler struct {
	svc cartService
}

func NewCartHandler(svc cartService) *CartHandler {
	return &CartHandler{svc: svc}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.svc.GetCart(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req dto.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.svc.AddItem(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	item, err := h.svc.UpdateItem(c.Request.Context(), middleware.GetUserID(c), itemID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := parseID(c, "id")
	if !ok {
		return
	}
	removed, err := h.svc.RemoveItem(c.Request.Context(), middleware.GetUserID(c), itemID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: removed})
}

func (h *CartHandler) Clear(c *gin.Context) {
	cleared, err := h.svc.Clear(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: cleared})
}
