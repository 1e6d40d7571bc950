package v1

import (
	"github.com/gin-gonic/gin"
)

// CRUDRouteHandler defines the interface for catalog-like handlers.
type CRUDRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// DocumentRouteHandler defines the interface for commercial documents:
// CRUD on drafts plus the transitions every document shares.
type DocumentRouteHandler interface {
	CRUDRouteHandler
	Post(c *gin.Context)
	Payments(c *gin.Context)
	RecordPayment(c *gin.Context)
	MarkPaid(c *gin.Context)
	Void(c *gin.Context)
	Entries(c *gin.Context)
}

// RegisterCRUDRoutes registers standard CRUD routes.
//
// Usage:
//
//	handler := handlers.NewPartyHandler(baseHandler, services.Parties)
//	RegisterCRUDRoutes(api.Group("/parties"), handler)
func RegisterCRUDRoutes(group *gin.RouterGroup, handler CRUDRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.DELETE("/:id", handler.Delete)
}

// RegisterDocumentRoutes registers CRUD and the shared transitions of a
// document. The transition that leaves DRAFT differs per document and is
// registered by the caller.
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler) {
	RegisterCRUDRoutes(group, handler)
	group.POST("/:id/post", handler.Post)
	group.GET("/:id/payments", handler.Payments)
	group.POST("/:id/payments", handler.RecordPayment)
	group.POST("/:id/mark-paid", handler.MarkPaid)
	group.POST("/:id/void", handler.Void)
	group.GET("/:id/entries", handler.Entries)
}
