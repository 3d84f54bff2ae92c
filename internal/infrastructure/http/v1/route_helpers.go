package v1

import (
	"github.com/gin-gonic/gin"

	appctx "stockbook/internal/core/context"
	"stockbook/internal/infrastructure/http/v1/middleware"
)

// CatalogRouteHandler is the route set every catalog handler exposes.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
	SetDeletionMark(c *gin.Context)
}

// RegisterCatalogRoutes mounts the standard CRUD routes for a catalog.
// Reads are open to any authenticated user; mutations require the admin
// role.
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	adminOnly := middleware.RequireRole(appctx.RoleAdmin)

	group.GET("", handler.List)
	group.GET("/:id", handler.Get)

	group.POST("", adminOnly, handler.Create)
	group.PUT("/:id", adminOnly, handler.Update)
	group.DELETE("/:id", adminOnly, handler.Delete)
	group.POST("/:id/deletion-mark", adminOnly, handler.SetDeletionMark)
}
