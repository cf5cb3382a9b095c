package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/flicky/storefront-api/internal/service"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{service.ErrInvalidInput, http.StatusBadRequest},
	{service.ErrEmptyCart, http.StatusBadRequest},
	{service.ErrProductInactive, http.StatusBadRequest},
	{service.ErrVariationUnavailable, http.StatusBadRequest},
	{service.ErrUserNotFound, http.StatusNotFound},
	{service.ErrProductNotFound, http.StatusNotFound},
	{service.ErrVariationNotFound, http.StatusNotFound},
	{service.ErrCartNotFound, http.StatusNotFound},
	{service.ErrCartItemNotFound, http.StatusNotFound},
	{service.ErrOrderNotFound, http.StatusNotFound},
	{service.ErrAddressNotFound, http.StatusNotFound},
	{service.ErrUserAlreadyExists, http.StatusConflict},
	{service.ErrEmailTaken, http.StatusConflict},
	{service.ErrInvalidCredentials, http.StatusUnauthorized},
}

// respondError writes the status mapped to err. Unknown errors become a 500
// and are attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			c.JSON(e.status, gin.H{"error": err.Error()})
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// parseID reads a uuid path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return uuid.Nil, false
	}
	return id, true
}
