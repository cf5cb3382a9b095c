package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/storefront-api/internal/dto"
	"github.com/flicky/storefront-api/internal/middleware"
)

type addressService interface {
	List(ctx context.Context, userID uuid.UUID) ([]dto.AddressResponse, error)
	Create(ctx context.Context, userID uuid.UUID, req dto.CreateAddressRequest) (*dto.AddressResponse, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, req dto.UpdateAddressRequest) (*dto.AddressResponse, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) (bool, error)
}

type AddressHandler struct {
	svc addressService
}

func NewAddressHandler(svc addressService) *AddressHandler {
	return &AddressHandler{svc: svc}
}

func (h *AddressHandler) List(c *gin.Context) {
	addresses, err := h.svc.List(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, addresses)
}

func (h *AddressHandler) Create(c *gin.Context) {
	var req dto.CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	address, err := h.svc.Create(c.Request.Context(), middleware.GetUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, address)
}

func (h *AddressHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	address, err := h.svc.Update(c.Request.Context(), middleware.GetUserID(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, address)
}

func (h *AddressHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SuccessResponse{Success: deleted})
}
