package generation

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/jobs"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/models"
)

func TestJobLifecycleWithLocalDispatcher(t *testing.T) {
	p := newPipeline(t)
	doc := p.userFile(t, "u1", "cv.pdf", models.MimePDF, "%PDF", nil)
	p.happyPath(templateTex, templateCls, "main.cls")

	store := jobs.NewMemoryStore()
	d := NewLocalDispatcher(2, 4)
	svc := NewJobService(store, p.orch, d)
	d.Start(svc)
	defer d.Stop(context.Background())

	j, err := svc.Submit(context.Background(), Request{
		UserID: "u1", TemplateID: "tpl1", SourceDocumentID: doc.ID, Instructions: "Emphasize backend experience",
	})
	require.NoError(t, err)
	assert.Equal(t, models.JobQueued, j.Status)

	require.Eventually(t, func() bool {
		got, err := svc.Get(context.Background(), j.ID, "u1")
		return err == nil && got.Status == models.JobDone
	}, 2*time.Second, 10*time.Millisecond)

	got, err := svc.Get(context.Background(), j.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, string(apperr.StageDone), got.Stage)
	assert.NotEmpty(t, got.GeneratedDocumentID)
	assert.Equal(t, 1, got.Attempts)

	_, err = svc.Get(context.Background(), j.ID, "u2")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	// redelivery of a finished job is a no-op
	require.NoError(t, svc.Process(context.Background(), j.ID))
	again, _ := svc.Get(context.Background(), j.ID, "u1")
	assert.Equal(t, 1, again.Attempts)
}

func TestJobFailureRecordsStageAndKind(t *testing.T) {
	p := newPipeline(t)
	doc := p.userFile(t, "u1", "notes.txt", "text/plain", "", nil)
	store := jobs.NewMemoryStore()
	svc := NewJobService(store, p.orch, DispatcherFunc(func(context.Context, string) error { return nil }))

	j, err := svc.Submit(context.Background(), Request{UserID: "u1", TemplateID: "tpl1", SourceDocumentID: doc.ID, Instructions: "x"})
	require.NoError(t, err)
	err = svc.Process(context.Background(), j.ID)
	require.Error(t, err)

	got, err := store.Get(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, models.JobFailed, got.Status)
	assert.Equal(t, string(apperr.StageExtractingText), got.Stage)
	assert.Equal(t, string(apperr.KindValidation), got.ErrorKind)
	assert.NotEmpty(t, got.Error)
}

func TestSubmitMarksJobFailedWhenDispatchFails(t *testing.T) {
	store := jobs.NewMemoryStore()
	svc := NewJobService(store, nil, DispatcherFunc(func(context.Context, string) error { return errors.New("broker down") }))
	_, err := svc.Submit(context.Background(), Request{UserID: "u1", TemplateID: "t", SourceDocumentID: "d", Instructions: "x"})
	assert.True(t, apperr.Is(err, apperr.KindInternal))
}

func TestLocalDispatcherQueueFullAndStop(t *testing.T) {
	d := NewLocalDispatcher(1, 1)
	// not started: the single slot fills up
	require.NoError(t, d.Dispatch(context.Background(), "a"))
	assert.ErrorIs(t, d.Dispatch(context.Background(), "b"), ErrQueueFull)

	var ran int32
	d.Start(ProcessorFunc(func(context.Context, string) error {
		atomic.AddInt32(&ran, 1)
		return nil
	}))
	require.NoError(t, d.Stop(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&ran), "queued job drains on stop")
	assert.ErrorIs(t, d.Dispatch(context.Background(), "c"), ErrDispatcherOff)
}

type mockProcessor struct{ mock.Mock }

func (m *mockProcessor) Process(ctx context.Context, id string) error {
	return m.Called(id).Error(0)
}

func newConsumer(t *testing.T, p Processor, max int) (*KafkaConsumer, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := newKafkaConsumer(nil, p, rdb, max)
	c.backoff = time.Millisecond
	return c, mr
}

func TestKafkaHandleRetriesTransientFailures(t *testing.T) {
	p := &mockProcessor{}
	p.On("Process", "j1").Return(apperr.New(apperr.KindUpstream, "503")).Twice()
	p.On("Process", "j1").Return(nil).Once()
	c, mr := newConsumer(t, p, 3)

	c.handle(context.Background(), []byte(`{"jobId":"j1"}`))
	p.AssertNumberOfCalls(t, "Process", 3)
	assert.False(t, mr.Exists("generation:attempts:j1"), "counter cleared on success")
}

func TestKafkaHandleStopsAfterMaxAttempts(t *testing.T) {
	p := &mockProcessor{}
	p.On("Process", "j1").Return(apperr.New(apperr.KindUpstreamTimeout, "timeout"))
	c, _ := newConsumer(t, p, 3)

	c.handle(context.Background(), []byte(`{"jobId":"j1"}`))
	p.AssertNumberOfCalls(t, "Process", 3)
}

func TestKafkaHandleDoesNotRetryPermanentFailures(t *testing.T) {
	p := &mockProcessor{}
	p.On("Process", "j1").Return(apperr.Validation("Instructions are required"))
	c, _ := newConsumer(t, p, 3)

	c.handle(context.Background(), []byte(`{"jobId":"j1"}`))
	p.AssertNumberOfCalls(t, "Process", 1)

	c.handle(context.Background(), []byte(`not json`))
	p.AssertNumberOfCalls(t, "Process", 1)
}

func TestKafkaHandleWithoutRedisDoesNotRetry(t *testing.T) {
	p := &mockProcessor{}
	p.On("Process", "j1").Return(apperr.New(apperr.KindUpstream, "503"))
	c := newKafkaConsumer(nil, p, nil, 3)

	c.handle(context.Background(), []byte(`{"jobId":"j1"}`))
	p.AssertNumberOfCalls(t, "Process", 1)
}
