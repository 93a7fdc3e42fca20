package handlers

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/generated"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/middleware"
)

// GeneratedHandler serves the caller's generated resumes.
type GeneratedHandler struct {
	store *generated.Store
}

func NewGeneratedHandler(store *generated.Store) *GeneratedHandler {
	return &GeneratedHandler{store: store}
}

// Register routes under /generated-documents
func (h *GeneratedHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/generated-documents")
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.GET("/:id/preview", h.Preview)
	g.GET("/:id/source", h.Source)
	g.DELETE("/:id", h.Delete)
}

// List returns the caller's documents, most recently updated first, optionally filtered by ?search=.
func (h *GeneratedHandler) List(c *gin.Context) {
	list, err := h.store.List(c.Request.Context(), middleware.UserID(c), c.Query("search"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *GeneratedHandler) Get(c *gin.Context) {
	d, err := h.store.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *GeneratedHandler) Preview(c *gin.Context) {
	d, rc, err := h.store.StreamPDF(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	streamFile(c, rc, "application/pdf", "inline", filepath.Base(d.Name)+".pdf")
}

func (h *GeneratedHandler) Source(c *gin.Context) {
	d, rc, err := h.store.OpenSource(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	streamFile(c, rc, "application/x-tex", "attachment", filepath.Base(d.Name)+".tex")
}

func (h *GeneratedHandler) Delete(c *gin.Context) {
	if _, err := h.store.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Generated document deleted successfully"})
}
