package templates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/documents"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
)

const (
	seedAuthor  = "Resume Pilot"
	seedVersion = "1.0.0"
)

type seedFile struct {
	name     string
	mime     string
	required bool
}

var seedFiles = []seedFile{
	{"thumbnail.png", "image/png", true},
	{"preview.pdf", models.MimePDF, true},
	{"main.tex", "text/plain", true},
	{"main.cls", "text/plain", false},
}

// Seeder creates templates from a directory of template folders.
type Seeder struct {
	repo  Repository
	files FileStore
}

func NewSeeder(repo Repository, files FileStore) *Seeder {
	return &Seeder{repo: repo, files: files}
}

// Seed imports every folder under dir when no template exists yet and
// returns how many templates were created. A broken folder is logged and skipped.
func (s *Seeder) Seed(ctx context.Context, dir string) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count templates: %w", err)
	}
	if n > 0 {
		logger.Infof("templates: %d already present, skipping seed", n)
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read templates dir: %w", err)
	}
	created := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := s.seedOne(ctx, filepath.Join(dir, e.Name()), e.Name()); err != nil {
			logger.Errorw("failed to seed template", "folder", e.Name(), "error", err)
			continue
		}
		created++
	}
	logger.Infof("templates: seeded %d templates from %s", created, dir)
	return created, nil
}

func (s *Seeder) seedOne(ctx context.Context, path, folder string) error {
	for _, f := range seedFiles {
		if !f.required {
			continue
		}
		if _, err := os.Stat(filepath.Join(path, f.name)); err != nil {
			return fmt.Errorf("required file missing: %s", f.name)
		}
	}

	ids := map[string]string{}
	var uploaded []string
	rollback := func() {
		for _, id := range uploaded {
			if err := s.files.Delete(ctx, id, models.SystemOwner); err != nil {
				logger.Warnw("failed to remove seeded file", "fileId", id, "error", err)
			}
		}
	}
	for _, f := range seedFiles {
		p := filepath.Join(path, f.name)
		fh, err := os.Open(p)
		if err != nil {
			if !f.required && os.IsNotExist(err) {
				continue
			}
			rollback()
			return err
		}
		st, err := fh.Stat()
		if err != nil {
			fh.Close()
			rollback()
			return err
		}
		doc, err := s.files.Upload(ctx, documents.UploadInput{
			UserID:   models.SystemOwner,
			Name:     f.name,
			MimeType: f.mime,
			Size:     st.Size(),
			Tags:     []string{models.TagTemplate},
			Body:     fh,
		})
		fh.Close()
		if err != nil {
			rollback()
			return fmt.Errorf("upload %s: %w", f.name, err)
		}
		ids[f.name] = doc.ID
		uploaded = append(uploaded, doc.ID)
	}

	spaced := strings.ReplaceAll(folder, "_", " ")
	t := &models.Template{
		Name:             titleCase(spaced),
		Author:           seedAuthor,
		Description:      fmt.Sprintf("Professional %s template", spaced),
		ShortDescription: fmt.Sprintf("Clean and modern %s template", spaced),
		Tags:             []string{"professional", "modern"},
		Version:          seedVersion,
		Active:           true,
		ThumbnailFileID:  ids["thumbnail.png"],
		PreviewFileID:    ids["preview.pdf"],
		MainTexFileID:    ids["main.tex"],
		MainClsFileID:    ids["main.cls"],
	}
	if err := s.repo.Create(ctx, t); err != nil {
		rollback()
		return fmt.Errorf("create template: %w", err)
	}
	logger.Infow("seeded template", "name", t.Name, "templateId", t.ID, "hasClass", t.MainClsFileID != "")
	return nil
}

// titleCase upper-cases the first letter of every word and leaves the rest alone.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
