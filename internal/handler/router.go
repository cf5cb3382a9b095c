package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/flicky/storefront-api/internal/middleware"
)

type Handlers struct {
	Auth    *AuthHandler
	Product *ProductHandler
	Cart    *CartHandler
	Order   *OrderHandler
	Address *AddressHandler
	Health  *HealthHandler
}

// RegisterRoutes mounts the API on r. jwtSecret verifies bearer tokens.
func RegisterRoutes(r *gin.Engine, h Handlers, jwtSecret string) {
	r.GET("/healthz", h.Health.Healthz)
	r.GET("/readyz", h.Health.Readyz)

	authenticated := middleware.AuthMiddleware(jwtSecret)
	adminOnly := middleware.AdminOnly()

	v1 := r.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.GET("/profile", authenticated, h.Auth.GetProfile)
		auth.PATCH("/profile", authenticated, h.Auth.UpdateProfile)

		products := v1.Group("/products")
		products.GET("", h.Product.List)
		products.GET("/:id", h.Product.GetByID)

		productAdmin := products.Group("", authenticated, adminOnly)
		productAdmin.POST("", h.Product.Create)
		productAdmin.PATCH("/:id", h.Product.Update)
		productAdmin.DELETE("/:id", h.Product.Delete)
		productAdmin.POST("/:id/variations", h.Product.CreateVariation)
		productAdmin.PATCH("/variations/:variationId", h.Product.UpdateVariation)

		cart := v1.Group("/cart", authenticated)
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.Clear)
		cart.POST("/items", h.Cart.AddItem)
		cart.PATCH("/items/:id", h.Cart.UpdateItem)
		cart.DELETE("/items/:id", h.Cart.RemoveItem)

		orders := v1.Group("/orders", authenticated)
		orders.POST("", h.Order.CreateOrder)
		orders.GET("", h.Order.ListOrders)
		orders.GET("/:id", h.Order.GetOrder)

		addresses := v1.Group("/addresses", authenticated)
		addresses.GET("", h.Address.List)
		addresses.POST("", h.Address.Create)
		addresses.PATCH("/:id", h.Address.Update)
		addresses.DELETE("/:id", h.Address.Delete)

		admin := v1.Group("/admin", authenticated, adminOnly)
		admin.GET("/orders", h.Order.ListAllOrders)
		admin.PATCH("/orders/:id/status", h.Order.UpdateStatus)
		admin.GET("/users", h.Auth.ListUsers)
	}
}
