package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

const (
	// ProcessUploadTask is scheduled each time a product file is accepted.
	ProcessUploadTask = "product-file:process"
	QueueName         = "product-files"
)

// ProcessPayload tells the worker which upload to load.
type ProcessPayload struct {
	UploadID string `json:"upload_id"`
}

func NewProcessTask(payload ProcessPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return asynq.NewTask(ProcessUploadTask, data), nil
}

func DecodeProcessPayload(task *asynq.Task) (ProcessPayload, error) {
	var p ProcessPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// Enqueuer schedules upload processing.
type Enqueuer interface {
	EnqueueProcess(ctx context.Context, payload ProcessPayload) error
}

type AsynqEnqueuer struct {
	client *asynq.Client
}

func NewAsynqEnqueuer(opt asynq.RedisClientOpt) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: asynq.NewClient(opt)}
}

func (e *AsynqEnqueuer) EnqueueProcess(ctx context.Context, payload ProcessPayload) error {
	task, err := NewProcessTask(payload)
	if err != nil {
		return err
	}
	opts := []asynq.Option{
		asynq.Queue(QueueName),
		asynq.MaxRetry(3),
		asynq.Timeout(15 * time.Minute),
		asynq.TaskID("upload:" + payload.UploadID),
	}
	if _, err := e.client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("enqueue process task: %w", err)
	}
	return nil
}

func (e *AsynqEnqueuer) Close() error {
	return e.client.Close()
}

// InlineEnqueuer runs the job in a goroutine of the API process. It is used
// when no Redis is configured.
type InlineEnqueuer struct {
	Run    func(ctx context.Context, payload ProcessPayload) error
	Logger zerolog.Logger
}

func (e *InlineEnqueuer) EnqueueProcess(_ context.Context, payload ProcessPayload) error {
	if e.Run == nil {
		return fmt.Errorf("inline enqueuer has no runner")
	}
	go func() {
		if err := e.Run(context.Background(), payload); err != nil {
			e.Logger.Error().Err(err).Str("upload_id", payload.UploadID).Msg("inline upload processing failed")
		}
	}()
	return nil
}
