package worker

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task types handled by the notification worker.
const (
	TypeNotificationsDrain = "notifications:drain"
	TypeNotificationsRetry = "notifications:retry"
)

// QueueNotifications is the asynq queue notification batches run on.
const QueueNotifications = "notifications"

// BatchPayload carries the batch size for a drain or retry pass.
type BatchPayload struct {
	Limit int `json:"limit"`
}

// NewDrainTask builds a drain task. Unique keeps two drains of the same size from overlapping.
func NewDrainTask(limit int, every time.Duration) (*asynq.Task, error) {
	return newBatchTask(TypeNotificationsDrain, limit, every)
}

// NewRetryTask builds a retry-failed task.
func NewRetryTask(limit int, every time.Duration) (*asynq.Task, error) {
	return newBatchTask(TypeNotificationsRetry, limit, every)
}

func newBatchTask(typeName string, limit int, every time.Duration) (*asynq.Task, error) {
	b, err := json.Marshal(BatchPayload{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", typeName, err)
	}
	if every <= 0 {
		every = time.Minute
	}
	return asynq.NewTask(typeName, b,
		asynq.Queue(QueueNotifications),
		asynq.Unique(every),
		asynq.MaxRetry(0),
	), nil
}
