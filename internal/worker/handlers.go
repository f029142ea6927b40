package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/servicehub/service-booking/internal/application"
	"go.uber.org/zap"
)

// BatchProcessor is the dispatcher surface the worker drives.
type BatchProcessor interface {
	DrainQueued(ctx context.Context, limit int) (application.BatchResult, error)
	RetryFailed(ctx context.Context, limit int) (application.BatchResult, error)
}

// Handlers processes notification batch tasks.
type Handlers struct {
	processor    BatchProcessor
	defaultLimit int
	logger       *zap.Logger
}

// NewHandlers creates a new Handlers.
func NewHandlers(processor BatchProcessor, defaultLimit int, logger *zap.Logger) *Handlers {
	return &Handlers{processor: processor, defaultLimit: defaultLimit, logger: logger}
}

// Register adds the task handlers to mux.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeNotificationsDrain, h.HandleDrain)
	mux.HandleFunc(TypeNotificationsRetry, h.HandleRetry)
}

// HandleDrain delivers queued notifications.
func (h *Handlers) HandleDrain(ctx context.Context, task *asynq.Task) error {
	return h.run(ctx, task, h.processor.DrainQueued)
}

// HandleRetry re-attempts failed notifications that still have attempts left.
func (h *Handlers) HandleRetry(ctx context.Context, task *asynq.Task) error {
	return h.run(ctx, task, h.processor.RetryFailed)
}

func (h *Handlers) run(
	ctx context.Context,
	task *asynq.Task,
	fn func(ctx context.Context, limit int) (application.BatchResult, error),
) error {
	limit, err := h.limit(task)
	if err != nil {
		h.logger.Error("invalid task payload", zap.String("task", task.Type()), zap.Error(err))
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	result, err := fn(ctx, limit)
	if err != nil {
		h.logger.Error("notification batch failed", zap.String("task", task.Type()), zap.Error(err))
		return err
	}
	if result.Processed > 0 {
		h.logger.Info("notification batch processed",
			zap.String("task", task.Type()),
			zap.Int("processed", result.Processed),
			zap.Int("sent", result.Sent),
			zap.Int("failed", result.Failed),
		)
	}
	return nil
}

func (h *Handlers) limit(task *asynq.Task) (int, error) {
	if len(task.Payload()) == 0 {
		return h.defaultLimit, nil
	}
	var p BatchPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return 0, err
	}
	if p.Limit <= 0 {
		return h.defaultLimit, nil
	}
	return p.Limit, nil
}
