package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/infrastructure/ratelimit"
)

func SetupOrderRouter(e *echo.Echo, orderHandler *handler.OrderHandler, m Middlewares) {
	orders := e.Group("/v1/orders")
	orders.Use(m.Auth.Authenticate)

	orders.POST("", orderHandler.PlaceOrder, m.RateLimit.Limit(ratelimit.ActionPlaceOrder))
	orders.GET("", orderHandler.ListOrders)
	orders.GET("/:id", orderHandler.GetOrder)
	orders.POST("/:id/cancel", orderHandler.CancelOrder)
}
