package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
)

func SetupAddressRouter(e *echo.Echo, addressHandler *handler.AddressHandler, m Middlewares) {
	addresses := e.Group("/v1/addresses")
	addresses.Use(m.Auth.Authenticate)

	addresses.GET("", addressHandler.ListAddresses)
	addresses.POST("", addressHandler.CreateAddress)
	addresses.PUT("/:id", addressHandler.UpdateAddress)
	addresses.DELETE("/:id", addressHandler.DeleteAddress)
	addresses.PUT("/:id/default", addressHandler.SetDefaultAddress)
}
