package document

import "github.com/gin-gonic/gin"

// RegisterRoutes registers document routes under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	documents := r.Group("/documents")
	{
		documents.POST("", h.Create)
		documents.POST("/discard", h.Discard)
		documents.GET("/:id", h.GetByID)
	}
}
