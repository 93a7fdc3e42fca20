package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/generation"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/middleware"
)

// ResumeHandler runs generations synchronously or through the job queue.
type ResumeHandler struct {
	orch *generation.Orchestrator
	jobs *generation.JobService
}

// NewResumeHandler wires the handler. jobs may be nil, in which case the
// asynchronous routes are not registered.
func NewResumeHandler(orch *generation.Orchestrator, jobs *generation.JobService) *ResumeHandler {
	return &ResumeHandler{orch: orch, jobs: jobs}
}

// Register routes under /resume
func (h *ResumeHandler) Register(rg *gin.RouterGroup) {
	r := rg.Group("/resume")
	r.POST("/generate", h.Generate)
	if h.jobs != nil {
		r.POST("/jobs", h.SubmitJob)
		r.GET("/jobs/:id", h.GetJob)
	}
}

type generateRequest struct {
	DocumentID   string `json:"documentId"`
	TemplateID   string `json:"templateId"`
	Instructions string `json:"instructions"`
	Name         string `json:"name"`
	Version      *int   `json:"version"`
}

func (h *ResumeHandler) bind(c *gin.Context) (generation.Request, bool) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		writeError(c, apperr.Validation("Invalid request body"))
		return generation.Request{}, false
	}
	req := generation.Request{
		UserID:           middleware.UserID(c),
		SourceDocumentID: body.DocumentID,
		TemplateID:       body.TemplateID,
		Instructions:     body.Instructions,
		Name:             body.Name,
	}
	if body.Version != nil {
		if *body.Version < 1 {
			writeError(c, apperr.Validation("Version must be at least 1"))
			return generation.Request{}, false
		}
		req.Version = *body.Version
	}
	return req, true
}

// Generate blocks until the resume is compiled and stored.
func (h *ResumeHandler) Generate(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	doc, err := h.orch.Generate(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// SubmitJob queues a generation and returns its job id.
func (h *ResumeHandler) SubmitJob(c *gin.Context) {
	req, ok := h.bind(c)
	if !ok {
		return
	}
	job, err := h.jobs.Submit(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"jobId": job.ID, "status": job.Status})
}

func (h *ResumeHandler) GetJob(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"), middleware.UserID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
