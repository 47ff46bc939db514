package queue

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessTask_RoundTrip(t *testing.T) {
	task, err := NewProcessTask(ProcessPayload{UploadID: "abc"})
	require.NoError(t, err)
	assert.Equal(t, ProcessUploadTask, task.Type())

	p, err := DecodeProcessPayload(task)
	require.NoError(t, err)
	assert.Equal(t, "abc", p.UploadID)
}

func TestInlineEnqueuer(t *testing.T) {
	done := make(chan string, 1)
	e := &InlineEnqueuer{
		Run: func(_ context.Context, p ProcessPayload) error {
			done <- p.UploadID
			return nil
		},
		Logger: zerolog.Nop(),
	}

	require.NoError(t, e.EnqueueProcess(context.Background(), ProcessPayload{UploadID: "u-1"}))

	select {
	case id := <-done:
		assert.Equal(t, "u-1", id)
	case <-time.After(time.Second):
		t.Fatal("inline job did not run")
	}
}

func TestInlineEnqueuer_NoRunner(t *testing.T) {
	e := &InlineEnqueuer{Logger: zerolog.Nop()}
	assert.Error(t, e.EnqueueProcess(context.Background(), ProcessPayload{UploadID: "x"}))
}
