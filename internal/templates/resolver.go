package templates

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

// Assets are the sources a compilation needs from one template.
type Assets struct {
	Template    *models.Template
	TexSource   string
	ClsSource   string
	ClsFileName string
}

// HasClass reports whether the template ships a class file.
func (a *Assets) HasClass() bool { return a.ClsFileName != "" }

// Resolver follows template → file record → blob references.
type Resolver struct {
	repo  Repository
	files FileStore
}

func NewResolver(repo Repository, files FileStore) *Resolver {
	return &Resolver{repo: repo, files: files}
}

// Lookup returns the template record. Inactive templates are not offered for generation.
func (r *Resolver) Lookup(ctx context.Context, id string) (*models.Template, error) {
	t, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !t.Active {
		return nil, apperr.NotFound("Template not found")
	}
	return t, nil
}

// Resolve loads the LaTeX source and optional class file for id.
func (r *Resolver) Resolve(ctx context.Context, id string) (*Assets, error) {
	t, err := r.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.ResolveTemplate(ctx, t)
}

// ResolveTemplate loads the sources of an already fetched template.
func (r *Resolver) ResolveTemplate(ctx context.Context, t *models.Template) (*Assets, error) {
	if t.MainTexFileID == "" {
		return nil, apperr.NotFound("Template LaTeX source not found")
	}
	_, tex, err := r.load(ctx, t.MainTexFileID, "Template LaTeX source not found")
	if err != nil {
		return nil, err
	}
	a := &Assets{Template: t, TexSource: tex}
	if t.MainClsFileID != "" {
		f, cls, err := r.load(ctx, t.MainClsFileID, "Template class file not found")
		if err != nil {
			return nil, err
		}
		a.ClsSource = cls
		a.ClsFileName = filepath.Base(f.OriginalName)
	}
	return a, nil
}

func (r *Resolver) load(ctx context.Context, fileID, notFound string) (*models.SourceDocument, string, error) {
	f, err := r.files.Get(ctx, fileID, models.SystemOwner)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, "", apperr.NotFound("%s", notFound)
		}
		return nil, "", err
	}
	data, err := r.files.Content(ctx, f)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, "", apperr.NotFound("%s", notFound)
		}
		return nil, "", err
	}
	return f, strings.ToValidUTF8(string(data), "\uFFFD"), nil
}
