package router

import (
	"github.com/labstack/echo/v4"

	"storefront/internal/adapter/api/handler"
	"storefront/internal/infrastructure/ratelimit"
)

func SetupProductRouter(e *echo.Echo, productHandler *handler.ProductHandler, reviewHandler *handler.ReviewHandler, m Middlewares) {
	products := e.Group("/v1/products")
	products.GET("", productHandler.ListProducts)
	products.GET("/search", productHandler.SearchProducts)
	products.GET("/:id", productHandler.GetProduct, m.Auth.OptionalAuth)
	products.GET("/:id/reviews", reviewHandler.ListProductReviews)

	reviewWrite := m.RateLimit.Limit(ratelimit.ActionReview)
	products.PUT("/:id/reviews", reviewHandler.UpsertReview, m.Auth.Authenticate, reviewWrite)
	products.DELETE("/:id/reviews", reviewHandler.DeleteReview, m.Auth.Authenticate, reviewWrite)
	e.POST("/v1/reviews/images", reviewHandler.UploadReviewImage, m.Auth.Authenticate, reviewWrite)

	admin := e.Group("/v1/admin/products")
	admin.Use(m.Auth.Authenticate)
	admin.Use(m.Auth.AdminOnly)
	admin.POST("", productHandler.CreateProduct)
	admin.PUT("/:id", productHandler.UpdateProduct)
}
