package templates

import (
	"context"
	"errors"
	"io"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

type Service struct {
	repo  Repository
	files FileStore
}

func NewService(repo Repository, files FileStore) *Service {
	return &Service{repo: repo, files: files}
}

// List returns active templates carrying any of tags; no tags means all.
func (s *Service) List(ctx context.Context, tags []string) ([]*models.Template, error) {
	out, err := s.repo.List(ctx, models.NormalizeTags(tags), true)
	if err != nil {
		return nil, apperr.Storage(err, "Failed to list templates")
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.Template, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) (*models.Template, error) {
	t, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, translate(err)
	}
	return t, nil
}

// OpenAsset streams one of the template's files. The caller closes the stream.
func (s *Service) OpenAsset(ctx context.Context, id string, asset models.Asset) (*models.SourceDocument, io.ReadCloser, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	fileID := t.FileID(asset)
	if fileID == "" {
		return nil, nil, apperr.NotFound("Template %s not found", asset)
	}
	return s.files.Open(ctx, fileID, models.SystemOwner)
}

func translate(err error) error {
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("Template not found")
	}
	return apperr.Storage(err, "template store")
}
