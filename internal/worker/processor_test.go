package worker

import (
	"context"
	"errors"
	"testing"

	"eie-registry/internal/queue"
	"eie-registry/internal/service"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUploads struct {
	mock.Mock
}

func (m *mockUploads) Process(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestHandlerDispatchesProcessTask(t *testing.T) {
	uploads := &mockUploads{}
	id := uuid.New()
	uploads.On("Process", mock.MatchedBy(func(ctx context.Context) bool {
		return !service.IsLastAttempt(ctx)
	}), id).Return(nil).Once()

	task, err := queue.NewProcessTask(queue.ProcessPayload{UploadID: id.String()})
	require.NoError(t, err)

	p := NewProcessor(uploads, zerolog.Nop())
	require.NoError(t, p.Handler().ProcessTask(context.Background(), task))
	uploads.AssertExpectations(t)
}

func TestHandlerSkipsRetryOnBadPayload(t *testing.T) {
	p := NewProcessor(&mockUploads{}, zerolog.Nop())

	err := p.Handler().ProcessTask(context.Background(), asynq.NewTask(queue.ProcessUploadTask, []byte("{")))
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = p.Run(context.Background(), queue.ProcessPayload{UploadID: "not-a-uuid"})
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRunRetryPolicy(t *testing.T) {
	uploads := &mockUploads{}
	missing, flaky := uuid.New(), uuid.New()
	uploads.On("Process", mock.Anything, missing).Return(service.ErrUploadNotFound)
	uploads.On("Process", mock.Anything, flaky).Return(errors.New("eprel unavailable"))

	p := NewProcessor(uploads, zerolog.Nop())

	err := p.Run(context.Background(), queue.ProcessPayload{UploadID: missing.String()})
	assert.ErrorIs(t, err, asynq.SkipRetry)

	err = p.Run(context.Background(), queue.ProcessPayload{UploadID: flaky.String()})
	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestRunIsLastAttempt(t *testing.T) {
	uploads := &mockUploads{}
	id := uuid.New()
	uploads.On("Process", mock.MatchedBy(service.IsLastAttempt), id).Return(nil).Once()

	p := NewProcessor(uploads, zerolog.Nop())
	require.NoError(t, p.Run(context.Background(), queue.ProcessPayload{UploadID: id.String()}))
	uploads.AssertExpectations(t)
}
