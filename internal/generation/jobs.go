package generation

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/jobs"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

// Dispatcher hands a queued job to whatever will run it.
type Dispatcher interface {
	Dispatch(ctx context.Context, jobID string) error
}

// Processor runs one job by id.
type Processor interface {
	Process(ctx context.Context, jobID string) error
}

// JobService tracks asynchronous generations.
type JobService struct {
	store      jobs.Store
	orch       *Orchestrator
	dispatcher Dispatcher
}

func NewJobService(store jobs.Store, orch *Orchestrator, d Dispatcher) *JobService {
	return &JobService{store: store, orch: orch, dispatcher: d}
}

// Submit records a queued job and dispatches it.
func (s *JobService) Submit(ctx context.Context, req Request) (*models.GenerationJob, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	j := &models.GenerationJob{
		ID:               uuid.NewString(),
		UserID:           req.UserID,
		SourceDocumentID: req.SourceDocumentID,
		TemplateID:       req.TemplateID,
		Instructions:     req.Instructions,
		Name:             req.Name,
		Version:          req.Version,
		Status:           models.JobQueued,
	}
	if err := s.store.Save(ctx, j); err != nil {
		return nil, apperr.Storage(err, "Failed to queue generation job")
	}
	if err := s.dispatcher.Dispatch(ctx, j.ID); err != nil {
		j.Status = models.JobFailed
		j.ErrorKind = string(apperr.KindInternal)
		j.Error = "Failed to dispatch generation job"
		if serr := s.store.Save(context.WithoutCancel(ctx), j); serr != nil {
			logger.Warnw("failed to mark job failed", "jobId", j.ID, "error", serr)
		}
		return nil, apperr.Wrap(apperr.KindInternal, err, "Failed to dispatch generation job")
	}
	return j, nil
}

// Get returns the caller's job.
func (s *JobService) Get(ctx context.Context, id, userID string) (*models.GenerationJob, error) {
	j, err := s.store.GetForUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return nil, apperr.NotFound("Job not found")
		}
		return nil, apperr.Storage(err, "job store")
	}
	return j, nil
}

// Process runs a job to completion and records the outcome. Jobs that are
// already done are skipped so redelivered messages are harmless.
func (s *JobService) Process(ctx context.Context, jobID string) error {
	j, err := s.store.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobs.ErrNotFound) {
			return apperr.NotFound("Job not found")
		}
		return apperr.Storage(err, "job store")
	}
	if j.Status == models.JobDone {
		return nil
	}

	j.Status = models.JobRunning
	j.Attempts++
	j.Error, j.ErrorKind = "", ""
	s.save(ctx, j)

	req := Request{
		UserID:           j.UserID,
		SourceDocumentID: j.SourceDocumentID,
		TemplateID:       j.TemplateID,
		Instructions:     j.Instructions,
		Name:             j.Name,
		Version:          j.Version,
	}
	out, genErr := s.orch.GenerateObserved(ctx, req, func(stage apperr.Stage) {
		j.Stage = string(stage)
		s.save(ctx, j)
	})
	if genErr != nil {
		j.Status = models.JobFailed
		j.Stage = string(apperr.StageOf(genErr))
		j.ErrorKind = string(apperr.KindOf(genErr))
		if e, ok := apperr.As(genErr); ok {
			j.Error = e.Message
		}
		s.save(context.WithoutCancel(ctx), j)
		return genErr
	}
	j.Status = models.JobDone
	j.Stage = string(apperr.StageDone)
	j.GeneratedDocumentID = out.ID
	s.save(context.WithoutCancel(ctx), j)
	return nil
}

func (s *JobService) save(ctx context.Context, j *models.GenerationJob) {
	if err := s.store.Save(ctx, j); err != nil {
		logger.Warnw("failed to update job", "jobId", j.ID, "status", j.Status, "error", err)
	}
}

// Retryable reports whether running the job again could succeed.
func Retryable(err error) bool {
	switch apperr.KindOf(err) {
	case apperr.KindUpstream, apperr.KindUpstreamTimeout, apperr.KindStorage,
		apperr.KindWorkspace, apperr.KindCompilationTimeout, apperr.KindInternal:
		return true
	}
	return false
}
