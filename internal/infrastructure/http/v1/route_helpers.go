// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
)

// CRUDRouteHandler is implemented by every record handler.
type CRUDRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// HistoryRouteHandler is implemented by handlers that expose an audit trail.
type HistoryRouteHandler interface {
	History(c *gin.Context)
}

// RegisterCRUDRoutes registers the standard routes for a record kind. guard runs
// before every mutating route. PUT and PATCH share the merge semantics of Update.
//
// Usage:
//
//	RegisterCRUDRoutes(api.Group("/receivings"), receivingHandler, middleware.RequireRole("storekeeper"))
func RegisterCRUDRoutes(group *gin.RouterGroup, handler CRUDRouteHandler, guard ...gin.HandlerFunc) {
	write := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, guard...), h)
	}

	group.GET("", handler.List)
	group.GET("/:id", handler.Get)
	group.POST("", write(handler.Create)...)
	group.PUT("/:id", write(handler.Update)...)
	group.PATCH("/:id", write(handler.Update)...)
	group.DELETE("/:id", write(handler.Delete)...)

	if h, ok := handler.(HistoryRouteHandler); ok {
		group.GET("/:id/history", h.History)
	}
}
