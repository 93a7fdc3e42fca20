package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/documents"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/middleware"
)

// FilesHandler serves the caller's uploaded source documents.
type FilesHandler struct {
	svc *documents.Service
}

func NewFilesHandler(svc *documents.Service) *FilesHandler {
	return &FilesHandler{svc: svc}
}

// Register routes under /files
func (h *FilesHandler) Register(rg *gin.RouterGroup) {
	f := rg.Group("/files")
	f.POST("/upload", h.Upload)
	f.GET("", h.List)
	f.GET("/:id", h.Get)
	f.GET("/:id/download", h.Download)
	f.POST("/:id/tags", h.UpdateTags)
	f.DELETE("/:id", h.Delete)
}

// Upload accepts multipart field "file", a comma separated "tags" field and an optional "systemGen" flag.
func (h *FilesHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, apperr.Validation("No file uploaded"))
		return
	}
	var systemGen *bool
	if v := c.PostForm("systemGen"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(c, apperr.Validation("systemGen must be true or false"))
			return
		}
		systemGen = &b
	}
	body, err := fh.Open()
	if err != nil {
		writeError(c, apperr.Validation("Failed to read uploaded file"))
		return
	}
	defer body.Close()

	doc, err := h.svc.Upload(c.Request.Context(), documents.UploadInput{
		UserID:    middleware.UserID(c),
		Name:      fh.Filename,
		MimeType:  fh.Header.Get("Content-Type"),
		Size:      fh.Size,
		Tags:      models.ParseTags(c.PostForm("tags")),
		SystemGen: systemGen,
		Body:      body,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "File uploaded successfully", "file": doc})
}

func (h *FilesHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.UserID(c), models.ParseTags(c.Query("tags")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FilesHandler) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *FilesHandler) Download(c *gin.Context) {
	doc, rc, err := h.svc.Open(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	streamFile(c, rc, doc.MimeType, "attachment", doc.OriginalName)
}

func (h *FilesHandler) UpdateTags(c *gin.Context) {
	var req struct {
		Tags []string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("Invalid request body"))
		return
	}
	doc, err := h.svc.UpdateTags(c.Request.Context(), c.Param("id"), middleware.UserID(c), req.Tags)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *FilesHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id"), middleware.UserID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "File deleted successfully"})
}
