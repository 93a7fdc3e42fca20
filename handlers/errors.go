package handlers

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindUnsupportedFormat, apperr.KindEmptyContent,
		apperr.KindGenerationEmpty, apperr.KindUpstreamContextOverflow:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUpstream:
		return http.StatusBadGateway
	case apperr.KindUpstreamTimeout, apperr.KindCompilationTimeout:
		return http.StatusGatewayTimeout
	case apperr.KindCompilation:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error", "kind", "stage", "details"}. Causes
// are logged, never returned.
func writeError(c *gin.Context, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = &apperr.Error{Kind: apperr.KindInternal, Message: "Internal server error", Err: err}
	}
	status := StatusFor(e.Kind)
	if status >= http.StatusInternalServerError {
		logger.Errorw("request failed", "path", c.FullPath(), "kind", e.Kind, "stage", e.Stage, "error", err)
	}
	body := gin.H{"error": e.Message, "kind": e.Kind}
	if e.Stage != "" {
		body["stage"] = e.Stage
	}
	if e.Detail != "" {
		body["details"] = e.Detail
	}
	c.AbortWithStatusJSON(status, body)
}

// streamFile copies rc to the response with the given disposition.
func streamFile(c *gin.Context, rc io.ReadCloser, contentType, disposition, filename string) {
	defer rc.Close()
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": filename}))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		logger.Warnw("stream aborted", "path", c.FullPath(), "error", err)
	}
}
