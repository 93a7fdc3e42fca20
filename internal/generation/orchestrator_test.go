package generation

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/documents"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/generated"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/storage"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/templates"
)

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) Extract(ctx context.Context, data []byte) (string, error) {
	args := m.Called(data)
	return args.String(0), args.Error(1)
}

type mockCustomizer struct{ mock.Mock }

func (m *mockCustomizer) Customize(ctx context.Context, tpl, text, instr string) (string, error) {
	args := m.Called(tpl, text, instr)
	return args.String(0), args.Error(1)
}

type mockCompiler struct{ mock.Mock }

func (m *mockCompiler) Compile(ctx context.Context, tex, cls, clsName string) ([]byte, error) {
	args := m.Called(tex, cls, clsName)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

const (
	templateTex = `\documentclass{main}\begin{document}NAME\end{document}`
	templateCls = `\ProvidesClass{main}`
	outputTex   = `\documentclass{main}\begin{document}Jane Doe\end{document}`
)

type pipeline struct {
	blobs      *storage.MemoryStore
	files      *documents.Service
	store      *generated.Store
	extractor  *mockExtractor
	customizer *mockCustomizer
	compiler   *mockCompiler
	orch       *Orchestrator
	tpl        *models.Template
}

func newPipeline(t *testing.T) *pipeline {
	t.Helper()
	ctx := context.Background()
	p := &pipeline{
		blobs:      storage.NewMemoryStore(),
		extractor:  &mockExtractor{},
		customizer: &mockCustomizer{},
		compiler:   &mockCompiler{},
	}
	p.files = documents.NewService(documents.NewMemoryRepo(), p.blobs, 0)
	p.store = generated.NewStore(generated.NewMemoryRepo(), p.blobs)

	tex := p.systemFile(t, "main.tex", templateTex)
	cls := p.systemFile(t, "main.cls", templateCls)
	tplRepo := templates.NewMemoryRepo()
	p.tpl = &models.Template{ID: "tpl1", Name: "Classic", Active: true, MainTexFileID: tex.ID, MainClsFileID: cls.ID}
	require.NoError(t, tplRepo.Create(ctx, p.tpl))

	p.orch = NewOrchestrator(p.files, templates.NewResolver(tplRepo, p.files), p.extractor, p.customizer, p.compiler, p.store)
	return p
}

func (p *pipeline) systemFile(t *testing.T, name, body string) *models.SourceDocument {
	d, err := p.files.Upload(context.Background(), documents.UploadInput{
		UserID: models.SystemOwner, Name: name, MimeType: "text/plain", Tags: []string{models.TagTemplate}, Body: strings.NewReader(body),
	})
	require.NoError(t, err)
	return d
}

func (p *pipeline) userFile(t *testing.T, user, name, mime, body string, systemGen *bool) *models.SourceDocument {
	d, err := p.files.Upload(context.Background(), documents.UploadInput{
		UserID: user, Name: name, MimeType: mime, Size: int64(len(body)), SystemGen: systemGen, Body: strings.NewReader(body),
	})
	require.NoError(t, err)
	return d
}

func (p *pipeline) happyPath(tpl, cls, clsName string) {
	p.extractor.On("Extract", mock.Anything).Return("Jane Doe, backend engineer", nil)
	p.customizer.On("Customize", tpl, "Jane Doe, backend engineer", "Emphasize backend experience").Return(outputTex, nil)
	p.compiler.On("Compile", outputTex, cls, clsName).Return([]byte("%PDF-1.5 compiled"), nil)
}

func TestGenerateEndToEnd(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	doc := p.userFile(t, "u1", "cv.pdf", models.MimePDF, "%PDF-1.4 two pages", nil)
	p.happyPath(templateTex, templateCls, "main.cls")

	var stages []apperr.Stage
	out, err := p.orch.GenerateObserved(ctx, Request{
		UserID: "u1", TemplateID: "tpl1", SourceDocumentID: doc.ID, Instructions: "Emphasize backend experience",
	}, func(s apperr.Stage) { stages = append(stages, s) })
	require.NoError(t, err)

	assert.Equal(t, "u1", out.UserID)
	assert.Equal(t, 1, out.Version)
	assert.Equal(t, "Classic - cv", out.Name)
	assert.Equal(t, "tpl1", out.TemplateID)
	assert.Equal(t, []apperr.Stage{
		apperr.StageValidating, apperr.StageResolvingTemplate, apperr.StageExtractingText,
		apperr.StageCustomizing, apperr.StageCompiling, apperr.StagePersisting, apperr.StageDone,
	}, stages)

	for _, id := range out.BlobIDs() {
		assert.True(t, p.blobs.Has(id))
	}
	assert.Len(t, out.BlobIDs(), 3)

	_, rc, err := p.store.StreamPDF(ctx, out.ID, "u1")
	require.NoError(t, err)
	pdf, _ := io.ReadAll(rc)
	rc.Close()
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	list, err := p.store.List(ctx, "u1", "")
	require.NoError(t, err)
	require.NotEmpty(t, list)
	assert.Equal(t, out.ID, list[0].ID)
	p.customizer.AssertExpectations(t)
	p.compiler.AssertExpectations(t)
}

func TestGenerateSystemGeneratedSourceIgnoresTemplate(t *testing.T) {
	p := newPipeline(t)
	yes := true
	doc := p.userFile(t, "u1", "previous.pdf", models.MimePDF, "%PDF", &yes)
	p.happyPath("", "", "")

	out, err := p.orch.Generate(context.Background(), Request{
		UserID: "u1", TemplateID: "does-not-exist", SourceDocumentID: doc.ID, Instructions: "Emphasize backend experience",
	})
	require.NoError(t, err)
	assert.Empty(t, out.TemplateID)
	assert.Empty(t, out.ClsBlobID)
	assert.Equal(t, "previous", out.Name)
}

func TestGenerateRequiresTemplateUnlessSystemGenerated(t *testing.T) {
	no := false
	for name, flag := range map[string]*bool{"unset": nil, "false": &no} {
		t.Run(name, func(t *testing.T) {
			p := newPipeline(t)
			doc := p.userFile(t, "u1", "cv.pdf", models.MimePDF, "%PDF", flag)
			_, err := p.orch.Generate(context.Background(), Request{UserID: "u1", SourceDocumentID: doc.ID, Instructions: "x"})
			assert.True(t, apperr.Is(err, apperr.KindValidation), "err=%v", err)
			assert.Equal(t, apperr.StageValidating, apperr.StageOf(err))
		})
	}
}

func TestGenerateRejectsNonPDFBeforeExternalCalls(t *testing.T) {
	p := newPipeline(t)
	doc := p.userFile(t, "u1", "notes.txt", "text/plain", "", nil)

	_, err := p.orch.Generate(context.Background(), Request{
		UserID: "u1", TemplateID: "tpl1", SourceDocumentID: doc.ID, Instructions: "Emphasize backend experience",
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation), "err=%v", err)
	assert.Equal(t, apperr.StageExtractingText, apperr.StageOf(err))
	p.extractor.AssertNotCalled(t, "Extract", mock.Anything)
	p.customizer.AssertNotCalled(t, "Customize", mock.Anything, mock.Anything, mock.Anything)
	p.compiler.AssertNotCalled(t, "Compile", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerateNotFound(t *testing.T) {
	p := newPipeline(t)
	ctx := context.Background()
	doc := p.userFile(t, "u1", "cv.pdf", models.MimePDF, "%PDF", nil)

	_, err := p.orch.Generate(ctx, Request{UserID: "u2", TemplateID: "tpl1", SourceDocumentID: doc.ID, Instructions: "x"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "other user's document")

	_, err = p.orch.Generate(ctx, Request{UserID: "u1", TemplateID: "nope", SourceDocumentID: doc.ID, Instructions: "x"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "missing template")
	assert.Equal(t, apperr.StageValidating, apperr.StageOf(err))
}

func TestGenerateValidatesRequest(t *testing.T) {
	p := newPipeline(t)
	_, err := p.orch.Generate(context.Background(), Request{UserID: "u1", SourceDocumentID: "d", Instructions: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = p.orch.Generate(context.Background(), Request{UserID: "u1", SourceDocumentID: "d", Instructions: "x", Version: -1})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestGenerateCompileFailurePersistsNothing(t *testing.T) {
	p := newPipeline(t)
	doc := p.userFile(t, "u1", "cv.pdf", models.MimePDF, "%PDF", nil)
	p.extractor.On("Extract", mock.Anything).Return("Jane", nil)
	p.customizer.On("Customize", mock.Anything, mock.Anything, mock.Anything).Return(outputTex, nil)
	p.compiler.On("Compile", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperr.New(apperr.KindCompilation, "LaTeX compilation failed").WithDetail("! Undefined control sequence."))
	before := p.blobs.Len()

	_, err := p.orch.Generate(context.Background(), Request{UserID: "u1", TemplateID: "tpl1", SourceDocumentID: doc.ID, Instructions: "x"})
	require.Error(t, err)
	assert.Equal(t, apperr.StageCompiling, apperr.StageOf(err))
	e, _ := apperr.As(err)
	assert.Equal(t, "! Undefined control sequence.", e.Detail)

	list, _ := p.store.List(context.Background(), "u1", "")
	assert.Empty(t, list)
	assert.Equal(t, before, p.blobs.Len())
}

func TestGenerateUpstreamFailureIsTagged(t *testing.T) {
	p := newPipeline(t)
	doc := p.userFile(t, "u1", "cv.pdf", models.MimePDF, "%PDF", nil)
	p.extractor.On("Extract", mock.Anything).Return("Jane", nil)
	p.customizer.On("Customize", mock.Anything, mock.Anything, mock.Anything).
		Return("", apperr.New(apperr.KindUpstreamContextOverflow, "Document content is too long"))

	_, err := p.orch.Generate(context.Background(), Request{UserID: "u1", TemplateID: "tpl1", SourceDocumentID: doc.ID, Instructions: "x"})
	assert.True(t, apperr.Is(err, apperr.KindUpstreamContextOverflow))
	assert.Equal(t, apperr.StageCustomizing, apperr.StageOf(err))
	p.compiler.AssertNotCalled(t, "Compile", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisplayName(t *testing.T) {
	doc := &models.SourceDocument{OriginalName: "jane.cv.pdf"}
	assert.Equal(t, "Mine", DisplayName(" Mine ", nil, doc))
	assert.Equal(t, "Classic - jane.cv", DisplayName("", &models.Template{Name: "Classic"}, doc))
	assert.Equal(t, "jane.cv", DisplayName("", nil, doc))
}
