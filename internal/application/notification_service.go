package application

import (
	"context"
	"fmt"

	"github.com/servicehub/service-booking/internal/domain/notification"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// NotificationConfig tunes batch delivery.
type NotificationConfig struct {
	// DrainConcurrency bounds parallel sends within one batch.
	DrainConcurrency int
	// RatePerSecond paces sends within a batch; zero or less disables pacing.
	RatePerSecond float64
	// MaxDeliveryAttempts stops RetryFailed from picking up a row once reached.
	MaxDeliveryAttempts int
}

// BatchResult counts the outcome of a drain or retry batch. Processed always equals Sent + Failed.
type BatchResult struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// NotificationService is the idempotent notification dispatcher.
type NotificationService struct {
	store       notification.DeliveryStore
	providers   map[notification.Channel]notification.Provider
	limiter     *rate.Limiter
	concurrency int
	maxAttempts int
	clock       Clock
	logger      *zap.Logger
}

// NewNotificationService creates a new NotificationService with one provider per channel.
func NewNotificationService(
	store notification.DeliveryStore,
	providers []notification.Provider,
	cfg NotificationConfig,
	clock Clock,
	logger *zap.Logger,
) *NotificationService {
	byChannel := make(map[notification.Channel]notification.Provider, len(providers))
	for _, p := range providers {
		byChannel[p.Channel()] = p
	}

	concurrency := cfg.DrainConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	maxAttempts := cfg.MaxDeliveryAttempts
	if maxAttempts < 1 {
		maxAttempts = 5
	}

	return &NotificationService{
		store:       store,
		providers:   byChannel,
		limiter:     rate.NewLimiter(limit, concurrency),
		concurrency: concurrency,
		maxAttempts: maxAttempts,
		clock:       clock,
		logger:      logger,
	}
}

// Enqueue records msg as QUEUED unless a delivery with the same idempotency key exists,
// in which case the existing delivery is returned unchanged.
func (s *NotificationService) Enqueue(ctx context.Context, msg notification.Message) (*notification.Delivery, error) {
	if msg.IdempotencyKey == "" {
		return nil, domain.NewValidationError("idempotency key is required")
	}
	if !msg.Channel.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid notification channel: %s", msg.Channel))
	}

	existing, err := s.store.FindByKey(ctx, msg.IdempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("failed to look up delivery: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	d, err := s.store.CreateQueued(ctx, notification.NewQueuedDelivery(msg, s.clock()))
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue delivery: %w", err)
	}
	return d, nil
}

// DeliverNow enqueues msg and sends it unless it was already sent. It never fails: the returned
// delivery carries the terminal status and, on failure, the reason.
func (s *NotificationService) DeliverNow(ctx context.Context, msg notification.Message) *notification.Delivery {
	d, err := s.Enqueue(ctx, msg)
	if err != nil {
		s.logger.Error("failed to enqueue notification",
			zap.String("idempotency_key", msg.IdempotencyKey),
			zap.String("channel", string(msg.Channel)),
			zap.Error(err),
		)
		failed := notification.NewQueuedDelivery(msg, s.clock())
		failed.Status = notification.StatusFailed
		failed.LastError = err.Error()
		return failed
	}
	return s.attempt(ctx, d)
}

// DrainQueued sends up to limit QUEUED deliveries, oldest first.
func (s *NotificationService) DrainQueued(ctx context.Context, limit int) (BatchResult, error) {
	if limit <= 0 {
		return BatchResult{}, nil
	}
	rows, err := s.store.ListQueued(ctx, limit)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list queued deliveries: %w", err)
	}
	return s.process(ctx, rows)
}

// RetryFailed re-attempts up to limit FAILED deliveries that still have attempts left.
func (s *NotificationService) RetryFailed(ctx context.Context, limit int) (BatchResult, error) {
	if limit <= 0 {
		return BatchResult{}, nil
	}
	rows, err := s.store.ListFailed(ctx, limit, s.maxAttempts)
	if err != nil {
		return BatchResult{}, fmt.Errorf("failed to list failed deliveries: %w", err)
	}
	return s.process(ctx, rows)
}

// Stats returns delivery counts by status.
func (s *NotificationService) Stats(ctx context.Context) (map[string]int64, error) {
	return s.store.CountByStatus(ctx)
}

func (s *NotificationService) process(ctx context.Context, rows []*notification.Delivery) (BatchResult, error) {
	statuses := make([]notification.Status, len(rows))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			statuses[i] = s.DeliverNow(gctx, row.Message()).Status
			return nil
		})
	}
	err := g.Wait()

	var result BatchResult
	for _, st := range statuses {
		switch st {
		case notification.StatusSent:
			result.Sent++
		case notification.StatusFailed:
			result.Failed++
		default:
			continue
		}
		result.Processed++
	}

	if err != nil {
		return result, fmt.Errorf("batch interrupted: %w", err)
	}
	return result, nil
}

func (s *NotificationService) attempt(ctx context.Context, d *notification.Delivery) *notification.Delivery {
	if d.IsSent() {
		return d
	}

	log := s.logger.With(
		zap.String("delivery_id", d.ID.String()),
		zap.String("idempotency_key", d.IdempotencyKey),
		zap.String("channel", string(d.Channel)),
	)

	attempts, err := s.store.IncrementAttempt(ctx, d.ID)
	if err != nil {
		log.Error("failed to record delivery attempt", zap.Error(err))
		d.Status = notification.StatusFailed
		d.LastError = err.Error()
		return d
	}
	d.AttemptCount = attempts

	receipt, sendErr := s.send(ctx, d)
	if sendErr != nil {
		d.Status = notification.StatusFailed
		d.LastError = sendErr.Error()
		d.UpdatedAt = s.clock().UTC()
		if err := s.store.MarkFailed(ctx, d.ID, d.LastError); err != nil {
			log.Error("failed to mark delivery failed", zap.Error(err))
		}
		log.Warn("notification delivery failed",
			zap.Int("attempt", attempts),
			zap.Error(sendErr),
		)
		return d
	}

	now := s.clock().UTC()
	if err := s.store.MarkSent(ctx, d.ID, receipt, now); err != nil {
		log.Error("notification sent but not recorded",
			zap.String("provider_message_id", receipt.ProviderMessageID),
			zap.Error(err),
		)
	}
	d.Status = notification.StatusSent
	d.Provider = receipt.Provider
	d.ProviderMessageID = receipt.ProviderMessageID
	d.LastError = ""
	d.SentAt = &now
	d.UpdatedAt = now
	return d
}

func (s *NotificationService) send(ctx context.Context, d *notification.Delivery) (receipt notification.Receipt, err error) {
	provider, ok := s.providers[d.Channel]
	if !ok {
		return notification.Receipt{}, fmt.Errorf("no provider configured for channel %s", d.Channel)
	}
	if rec := panics.Try(func() { receipt, err = provider.Send(ctx, d.Message()) }); rec != nil {
		return notification.Receipt{}, rec.AsError()
	}
	return receipt, err
}
