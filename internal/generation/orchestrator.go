// Package generation runs the resume pipeline: validate, resolve the
// template, extract text, customize with the LLM, compile and persist.
package generation

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/generated"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/templates"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/metrics"
)

type Extractor interface {
	Extract(ctx context.Context, data []byte) (string, error)
}

type Customizer interface {
	Customize(ctx context.Context, templateLatex, sourceText, instructions string) (string, error)
}

type Compiler interface {
	Compile(ctx context.Context, tex, cls, clsName string) ([]byte, error)
}

type TemplateResolver interface {
	Lookup(ctx context.Context, id string) (*models.Template, error)
	ResolveTemplate(ctx context.Context, t *models.Template) (*templates.Assets, error)
}

type DocumentSource interface {
	Get(ctx context.Context, id, userID string) (*models.SourceDocument, error)
	Content(ctx context.Context, d *models.SourceDocument) ([]byte, error)
}

type Sink interface {
	Save(ctx context.Context, a generated.Artifact) (*models.GeneratedDocument, error)
}

// Request asks for one generated resume.
type Request struct {
	UserID           string `json:"userId"`
	SourceDocumentID string `json:"documentId"`
	TemplateID       string `json:"templateId,omitempty"`
	Instructions     string `json:"instructions"`
	Name             string `json:"name,omitempty"`
	// Version 0 means unset.
	Version int `json:"version,omitempty"`
}

// Validate checks the request shape. Ownership and template rules need the stores.
func (r Request) Validate() error {
	switch {
	case r.UserID == "":
		return apperr.Validation("User ID is required")
	case strings.TrimSpace(r.SourceDocumentID) == "":
		return apperr.Validation("Document ID is required")
	case strings.TrimSpace(r.Instructions) == "":
		return apperr.Validation("Instructions are required")
	case r.Version < 0:
		return apperr.Validation("Version must be at least 1")
	}
	return nil
}

// StageObserver is told about every stage the pipeline enters.
type StageObserver func(stage apperr.Stage)

// Orchestrator composes the pipeline components.
type Orchestrator struct {
	docs       DocumentSource
	templates  TemplateResolver
	extractor  Extractor
	customizer Customizer
	compiler   Compiler
	sink       Sink
}

func NewOrchestrator(docs DocumentSource, tpl TemplateResolver, ex Extractor, cu Customizer, co Compiler, sink Sink) *Orchestrator {
	return &Orchestrator{docs: docs, templates: tpl, extractor: ex, customizer: cu, compiler: co, sink: sink}
}

// Generate runs the pipeline for req.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*models.GeneratedDocument, error) {
	return o.GenerateObserved(ctx, req, nil)
}

// GenerateObserved runs the pipeline and reports stage transitions to observe.
// A failure carries the stage it happened in; nothing is persisted on failure.
func (o *Orchestrator) GenerateObserved(ctx context.Context, req Request, observe StageObserver) (*models.GeneratedDocument, error) {
	log := []interface{}{"userId", req.UserID, "documentId", req.SourceDocumentID, "templateId", req.TemplateID}
	stage := apperr.StageValidating
	enter := func(s apperr.Stage) {
		stage = s
		logger.Infow("generation stage", append(log, "stage", s)...)
		if observe != nil {
			observe(s)
		}
	}
	fail := func(err error) (*models.GeneratedDocument, error) {
		err = apperr.WithStage(err, stage)
		kind := apperr.KindOf(err)
		metrics.GenerationTotal.WithLabelValues("failure").Inc()
		metrics.GenerationStageFailures.WithLabelValues(string(stage), string(kind)).Inc()
		logger.Warnw("generation failed", append(log, "stage", stage, "kind", kind, "error", err)...)
		return nil, err
	}

	enter(apperr.StageValidating)
	if err := req.Validate(); err != nil {
		return fail(err)
	}
	doc, err := o.docs.Get(ctx, req.SourceDocumentID, req.UserID)
	if err != nil {
		return fail(err)
	}
	var tpl *models.Template
	if !doc.IsSystemGenerated() {
		if strings.TrimSpace(req.TemplateID) == "" {
			return fail(apperr.Validation("Template ID is required for documents that were not generated by the system"))
		}
		if tpl, err = o.templates.Lookup(ctx, req.TemplateID); err != nil {
			return fail(err)
		}
	}

	var assets templates.Assets
	if tpl != nil {
		enter(apperr.StageResolvingTemplate)
		a, err := o.templates.ResolveTemplate(ctx, tpl)
		if err != nil {
			return fail(err)
		}
		assets = *a
	}

	enter(apperr.StageExtractingText)
	if !doc.IsPDF() {
		return fail(apperr.Validation("Only PDF documents can be used to generate a resume"))
	}
	data, err := o.docs.Content(ctx, doc)
	if err != nil {
		return fail(err)
	}
	text, err := o.extractor.Extract(ctx, data)
	if err != nil {
		return fail(err)
	}

	enter(apperr.StageCustomizing)
	latex, err := o.customizer.Customize(ctx, assets.TexSource, text, req.Instructions)
	if err != nil {
		return fail(err)
	}

	enter(apperr.StageCompiling)
	pdf, err := o.compiler.Compile(ctx, latex, assets.ClsSource, assets.ClsFileName)
	if err != nil {
		return fail(err)
	}

	enter(apperr.StagePersisting)
	out, err := o.sink.Save(ctx, generated.Artifact{
		UserID:           req.UserID,
		Name:             DisplayName(req.Name, tpl, doc),
		Version:          req.Version,
		TemplateID:       templateID(tpl),
		SourceDocumentID: doc.ID,
		Tex:              latex,
		Cls:              assets.ClsSource,
		ClsFileName:      assets.ClsFileName,
		PDF:              pdf,
	})
	if err != nil {
		return fail(err)
	}

	enter(apperr.StageDone)
	metrics.GenerationTotal.WithLabelValues("success").Inc()
	logger.Infow("generation finished", append(log, "generatedDocumentId", out.ID, "version", out.Version)...)
	return out, nil
}

// DisplayName picks the stored name: explicit, else "<template> - <source>", else the source name.
func DisplayName(explicit string, tpl *models.Template, doc *models.SourceDocument) string {
	if n := strings.TrimSpace(explicit); n != "" {
		return n
	}
	base := strings.TrimSuffix(doc.OriginalName, filepath.Ext(doc.OriginalName))
	if tpl != nil && tpl.Name != "" {
		return tpl.Name + " - " + base
	}
	return base
}

func templateID(t *models.Template) string {
	if t == nil {
		return ""
	}
	return t.ID
}
