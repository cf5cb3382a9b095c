package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/middleware"
	"github.com/flicky/storefront-api/internal/model"
)

type orderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	GetByID(ctx context.Context, orderID, userID uuid.UUID, role string) (*dto.OrderResponse, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) (*dto.OrderListResponse, error)
	ListAll(ctx context.Context) (*dto.OrderListResponse, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status model.OrderStatus) (*dto.OrderResponse, error)
}

type OrderHandler struct {
	orderService orderService
}

func NewOrderHandler(orderService orderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	orders, err := h.orderService.ListByUserID(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder answers 200 with a JSON null for a missing order or one the
// caller may not see.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetByID(c.Request.Context(), orderID, middleware.GetUserID(c), middleware.GetUserRole(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListAllOrders(c *gin.Context) {
	orders, err := h.orderService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), orderID, model.OrderStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}
