package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/infrastructure/ratelimit"
)

func SetupSavedListRouter(e *echo.Echo, savedListHandler *handler.SavedListHandler, m Middlewares) {
	// Shared lists are readable by anyone who has the id.
	e.GET("/v1/saved-lists/:id", savedListHandler.GetList, m.Auth.OptionalAuth)

	lists := e.Group("/v1/saved-lists")
	lists.Use(m.Auth.Authenticate)

	lists.GET("", savedListHandler.ListSavedLists)
	lists.GET("/count", savedListHandler.GetSavedItemCount)
	lists.GET("/status/:productId", savedListHandler.SavedStatus)

	write := m.RateLimit.Limit(ratelimit.ActionSavedList)
	lists.POST("", savedListHandler.CreateList, write)
	lists.POST("/default/items", savedListHandler.ToggleDefaultListItem, write)
	lists.PATCH("/:id", savedListHandler.UpdateList, write)
	lists.DELETE("/:id", savedListHandler.DeleteList, write)
	lists.PUT("/:id/default", savedListHandler.SetDefaultList, write)
	lists.POST("/:id/items/toggle", savedListHandler.ToggleSavedItem, write)
	lists.POST("/:id/items/move", savedListHandler.MoveSavedItem, write)
	lists.DELETE("/:id/items/:productId", savedListHandler.RemoveSavedItem, write)
}
