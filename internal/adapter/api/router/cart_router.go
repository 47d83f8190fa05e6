package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/infrastructure/ratelimit"
)

func SetupCartRouter(e *echo.Echo, cartHandler *handler.CartHandler, m Middlewares) {
	cartWrite := m.RateLimit.Limit(ratelimit.ActionCart)

	e.POST("/v1/cart/sync", cartHandler.SyncCart, m.Auth.Authenticate, cartWrite)

	cart := e.Group("/v1/cart")
	cart.Use(m.Auth.OptionalAuth)
	cart.Use(m.Guest.GuestID)

	cart.GET("", cartHandler.GetCart)
	cart.DELETE("", cartHandler.ClearCart, cartWrite)
	cart.POST("/items", cartHandler.AddToCart, cartWrite)
	cart.PATCH("/items/:productId", cartHandler.UpdateCartItem, cartWrite)
	cart.DELETE("/items/:productId", cartHandler.RemoveCartItem, cartWrite)
}
