package worker

import (
	"context"
	"errors"
	"fmt"

	"eie-registry/internal/queue"
	"eie-registry/internal/service"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Processor is plugged into the asynq worker loop.
type Processor struct {
	uploads service.UploadProcessor
	logger  zerolog.Logger
}

// NewProcessor constructs a worker processor.
func NewProcessor(uploads service.UploadProcessor, logger zerolog.Logger) *Processor {
	return &Processor{
		uploads: uploads,
		logger:  logger.With().Str("component", "worker").Logger(),
	}
}

// Handler registers the product file job handler.
func (p *Processor) Handler() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(queue.ProcessUploadTask, p.handleProcess)
	return mux
}

// Run processes one payload outside asynq. The API uses it through the
// inline enqueuer when no Redis is configured. Nothing retries an inline run,
// so it is always the last attempt.
func (p *Processor) Run(ctx context.Context, payload queue.ProcessPayload) error {
	return p.process(service.LastAttempt(ctx), payload)
}

func (p *Processor) process(ctx context.Context, payload queue.ProcessPayload) error {
	id, err := uuid.Parse(payload.UploadID)
	if err != nil {
		return fmt.Errorf("invalid upload id %q: %w", payload.UploadID, asynq.SkipRetry)
	}
	err = p.uploads.Process(ctx, id)
	if errors.Is(err, service.ErrUploadNotFound) {
		// the upload row is gone, retrying cannot help
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return err
}

func (p *Processor) handleProcess(ctx context.Context, task *asynq.Task) error {
	payload, err := queue.DecodeProcessPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	log := p.logger.With().Str("upload_id", payload.UploadID).Logger()
	if lastAttempt(ctx) {
		ctx = service.LastAttempt(ctx)
	}
	if err := p.process(ctx, payload); err != nil {
		log.Error().Err(err).Msg("upload processing failed")
		return err
	}
	log.Info().Msg("upload processed")
	return nil
}

func lastAttempt(ctx context.Context) bool {
	retried, ok := asynq.GetRetryCount(ctx)
	if !ok {
		return false
	}
	maxRetry, ok := asynq.GetMaxRetry(ctx)
	return ok && retried >= maxRetry
}
