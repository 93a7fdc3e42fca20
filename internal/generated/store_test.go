package generated

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/storage"
)

// flakyBlobs wraps a MemoryStore; deletes go through a testify mock and PDF uploads can be failed.
type flakyBlobs struct {
	*storage.MemoryStore
	mock.Mock
	failPDF bool
}

func (f *flakyBlobs) Delete(ctx context.Context, id string) error {
	if err := f.Called(id).Error(0); err != nil {
		return err
	}
	return f.MemoryStore.Delete(ctx, id)
}

func (f *flakyBlobs) Upload(ctx context.Context, name string, r io.Reader, ct string) (string, error) {
	if f.failPDF && strings.HasSuffix(name, ".pdf") {
		return "", errors.New("gridfs unavailable")
	}
	return f.MemoryStore.Upload(ctx, name, r, ct)
}

func artifact(user, name string) Artifact {
	return Artifact{
		UserID: user, Name: name, SourceDocumentID: "doc1", TemplateID: "tpl1",
		Tex: `\documentclass{resume}`, Cls: `\ProvidesClass{resume}`, ClsFileName: "resume.cls",
		PDF: []byte("%PDF-1.5 data"),
	}
}

func TestSaveDefaultsVersionAndListsNewestFirst(t *testing.T) {
	s := NewStore(NewMemoryRepo(), storage.NewMemoryStore())
	ctx := context.Background()

	first, err := s.Save(ctx, artifact("u1", "Classic - cv"))
	require.NoError(t, err)
	assert.Equal(t, 1, first.Version)
	assert.NotEmpty(t, first.TexBlobID)
	assert.NotEmpty(t, first.ClsBlobID)
	assert.NotEmpty(t, first.PdfBlobID)

	time.Sleep(2 * time.Millisecond)
	a := artifact("u1", "Modern - cv")
	a.Version = 3
	second, err := s.Save(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Version)

	list, err := s.List(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	found, err := s.List(ctx, "u1", "CLASSIC")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, first.ID, found[0].ID)

	none, err := s.List(ctx, "u2", "")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSaveWithoutClassFile(t *testing.T) {
	blobs := storage.NewMemoryStore()
	s := NewStore(NewMemoryRepo(), blobs)
	a := artifact("u1", "cv")
	a.Cls, a.ClsFileName = "", ""
	d, err := s.Save(context.Background(), a)
	require.NoError(t, err)
	assert.Empty(t, d.ClsBlobID)
	assert.Equal(t, 2, blobs.Len())
}

func TestSaveRollsBackUploadedBlobs(t *testing.T) {
	blobs := &flakyBlobs{MemoryStore: storage.NewMemoryStore(), failPDF: true}
	blobs.On("Delete", mock.Anything).Return(nil)
	repo := NewMemoryRepo()
	s := NewStore(repo, blobs)

	_, err := s.Save(context.Background(), artifact("u1", "cv"))
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	assert.Equal(t, 0, blobs.Len(), "tex and cls blobs must be removed")
	list, _ := repo.List(context.Background(), "u1", "")
	assert.Empty(t, list)
}

func TestStreamPDF(t *testing.T) {
	s := NewStore(NewMemoryRepo(), storage.NewMemoryStore())
	d, err := s.Save(context.Background(), artifact("u1", "cv"))
	require.NoError(t, err)

	_, rc, err := s.StreamPDF(context.Background(), d.ID, "u1")
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))

	_, _, err = s.StreamPDF(context.Background(), d.ID, "u2")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeleteIsBestEffort(t *testing.T) {
	blobs := &flakyBlobs{MemoryStore: storage.NewMemoryStore()}
	s := NewStore(NewMemoryRepo(), blobs)
	ctx := context.Background()
	d, err := s.Save(ctx, artifact("u1", "cv"))
	require.NoError(t, err)

	blobs.On("Delete", d.ClsBlobID).Return(errors.New("network glitch")).Once()
	blobs.On("Delete", mock.Anything).Return(nil)

	failed, err := s.Delete(ctx, d.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, failed)

	_, err = s.Get(ctx, d.ID, "u1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "record is gone")
	assert.False(t, blobs.Has(d.TexBlobID))
	assert.False(t, blobs.Has(d.PdfBlobID))
	assert.True(t, blobs.Has(d.ClsBlobID), "only the failing blob is orphaned")
}

func TestDeleteOtherUsersDocument(t *testing.T) {
	s := NewStore(NewMemoryRepo(), storage.NewMemoryStore())
	d, err := s.Save(context.Background(), artifact("u1", "cv"))
	require.NoError(t, err)
	_, err = s.Delete(context.Background(), d.ID, "u2")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = s.Get(context.Background(), d.ID, "u1")
	assert.NoError(t, err)
}

func TestFileBase(t *testing.T) {
	assert.Equal(t, "a_b", fileBase("a/b"))
	assert.Equal(t, "resume", fileBase("  "))
}
