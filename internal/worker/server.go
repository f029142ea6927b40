package worker

import (
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/servicehub/service-booking/internal/platform/config"
	"go.uber.org/zap"
)

// Schedule controls how often the periodic notification tasks fire.
type Schedule struct {
	BatchSize     int
	DrainInterval time.Duration
	RetryInterval time.Duration
}

// RedisOpt converts the platform redis settings to an asynq connection option.
func RedisOpt(cfg config.RedisConfig) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}

// NewServer creates the asynq server that runs notification tasks.
func NewServer(redis asynq.RedisClientOpt, concurrency int, logger *zap.Logger) *asynq.Server {
	if concurrency <= 0 {
		concurrency = 2
	}
	return asynq.NewServer(redis, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			QueueNotifications: 1,
		},
		Logger: logger.Named("asynq").Sugar(),
	})
}

// NewScheduler registers the periodic drain and retry tasks.
func NewScheduler(redis asynq.RedisClientOpt, schedule Schedule, logger *zap.Logger) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redis, &asynq.SchedulerOpts{
		Logger:   logger.Named("asynq-scheduler").Sugar(),
		Location: time.UTC,
	})

	drain, err := NewDrainTask(schedule.BatchSize, schedule.DrainInterval)
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(everySpec(schedule.DrainInterval), drain); err != nil {
		return nil, fmt.Errorf("failed to register drain task: %w", err)
	}

	retry, err := NewRetryTask(schedule.BatchSize, schedule.RetryInterval)
	if err != nil {
		return nil, err
	}
	if _, err := scheduler.Register(everySpec(schedule.RetryInterval), retry); err != nil {
		return nil, fmt.Errorf("failed to register retry task: %w", err)
	}
	return scheduler, nil
}

func everySpec(d time.Duration) string {
	if d <= 0 {
		d = time.Minute
	}
	return "@every " + d.String()
}
