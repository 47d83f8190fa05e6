package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/adapter/api/middleware"
)

// Handlers groups every HTTP handler mounted by Setup.
type Handlers struct {
	Health    *handler.HealthHandler
	Product   *handler.ProductHandler
	Review    *handler.ReviewHandler
	SavedList *handler.SavedListHandler
	Cart      *handler.CartHandler
	Address   *handler.AddressHandler
	Order     *handler.OrderHandler
}

type Middlewares struct {
	Auth      *middleware.AuthMiddleware
	Guest     *middleware.GuestMiddleware
	RateLimit *middleware.RateLimitMiddleware
}

func Setup(e *echo.Echo, h Handlers, m Middlewares) {
	SetupHealthRouter(e, h.Health)
	SetupProductRouter(e, h.Product, h.Review, m)
	SetupSavedListRouter(e, h.SavedList, m)
	SetupCartRouter(e, h.Cart, m)
	SetupAddressRouter(e, h.Address, m)
	SetupOrderRouter(e, h.Order, m)
}
