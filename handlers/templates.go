package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/templates"
)

// TemplatesHandler exposes the shared template catalogue.
type TemplatesHandler struct {
	svc *templates.Service
}

func NewTemplatesHandler(svc *templates.Service) *TemplatesHandler {
	return &TemplatesHandler{svc: svc}
}

// Register routes under /templates
func (h *TemplatesHandler) Register(rg *gin.RouterGroup) {
	t := rg.Group("/templates")
	t.GET("", h.List)
	t.GET("/:id", h.Get)
	t.GET("/:id/thumbnail", h.asset(models.AssetThumbnail))
	t.GET("/:id/preview", h.asset(models.AssetPreview))
}

func (h *TemplatesHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), models.ParseTags(c.Query("tags")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TemplatesHandler) Get(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TemplatesHandler) asset(asset models.Asset) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, rc, err := h.svc.OpenAsset(c.Request.Context(), c.Param("id"), asset)
		if err != nil {
			writeError(c, err)
			return
		}
		streamFile(c, rc, doc.MimeType, "inline", doc.OriginalName)
	}
}
