package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/xhorus11/mrp/internal/core/container"
	"github.com/xhorus11/mrp/internal/middleware"
)

func RegisterPublicRoutes(router *gin.Engine, container *container.Container) {
	container.ItemHandler.RegisterRoutes(router)
	container.RecipeHandler.RegisterRoutes(router)
	container.OrderHandler.RegisterRoutes(router)
	container.ProductionHandler.RegisterRoutes(router)
}

func RegisterUtilityRoutes(router *gin.Engine) {
	router.GET("/health", middleware.HealthCheckMiddleware())
}
