package application

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicehub/service-booking/internal/domain/notification"
	"github.com/servicehub/service-booking/internal/platform/domain"
)

func newTestNotificationService(store notification.DeliveryStore, providers ...notification.Provider) *NotificationService {
	return NewNotificationService(store, providers, NotificationConfig{
		DrainConcurrency:    3,
		MaxDeliveryAttempts: 3,
	}, fixedClock(testNow), nopLogger)
}

func emailMessage(recipient string) notification.Message {
	return notification.Message{
		Channel:        notification.ChannelEmail,
		RecipientRef:   recipient,
		TemplateID:     notification.EventBookingAccepted,
		Payload:        map[string]any{"display_id": "A2223"},
		IdempotencyKey: notification.IdempotencyKey(notification.EventBookingAccepted, uuid.New(), notification.ChannelEmail, recipient),
	}
}

func TestEnqueue_IsIdempotent(t *testing.T) {
	store := newMemDeliveryStore()
	svc := newTestNotificationService(store)
	msg := emailMessage("user-1")

	first, err := svc.Enqueue(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusQueued, first.Status)

	second, err := svc.Enqueue(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, store.all(), 1)
}

func TestEnqueue_Validation(t *testing.T) {
	svc := newTestNotificationService(newMemDeliveryStore())

	msg := emailMessage("user-1")
	msg.IdempotencyKey = ""
	_, err := svc.Enqueue(context.Background(), msg)
	assert.True(t, domain.IsValidation(err))

	msg = emailMessage("user-1")
	msg.Channel = "SMS"
	_, err = svc.Enqueue(context.Background(), msg)
	assert.True(t, domain.IsValidation(err))
}

func TestDeliverNow_SendsOnce(t *testing.T) {
	store := newMemDeliveryStore()
	email := &stubProvider{channel: notification.ChannelEmail}
	svc := newTestNotificationService(store, email)
	msg := emailMessage("user-1")

	first := svc.DeliverNow(context.Background(), msg)
	assert.Equal(t, notification.StatusSent, first.Status)
	assert.Equal(t, 1, first.AttemptCount)
	assert.NotEmpty(t, first.ProviderMessageID)
	require.NotNil(t, first.SentAt)

	second := svc.DeliverNow(context.Background(), msg)
	assert.Equal(t, notification.StatusSent, second.Status)
	assert.Equal(t, first.ProviderMessageID, second.ProviderMessageID)
	assert.Equal(t, 1, email.sentCount())
}

func TestDeliverNow_ProviderFailureIsRecorded(t *testing.T) {
	store := newMemDeliveryStore()
	email := &stubProvider{channel: notification.ChannelEmail, err: errors.New("mailbox full")}
	svc := newTestNotificationService(store, email)

	d := svc.DeliverNow(context.Background(), emailMessage("user-1"))
	assert.Equal(t, notification.StatusFailed, d.Status)
	assert.Equal(t, "mailbox full", d.LastError)

	stored, err := store.FindByKey(context.Background(), d.IdempotencyKey)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusFailed, stored.Status)
	assert.Equal(t, 1, stored.AttemptCount)
}

func TestDeliverNow_MissingProvider(t *testing.T) {
	svc := newTestNotificationService(newMemDeliveryStore())

	d := svc.DeliverNow(context.Background(), emailMessage("user-1"))
	assert.Equal(t, notification.StatusFailed, d.Status)
	assert.Contains(t, d.LastError, "no provider configured for channel EMAIL")
}

func TestDeliverNow_ProviderPanicBecomesFailure(t *testing.T) {
	email := &stubProvider{channel: notification.ChannelEmail, panics: true}
	svc := newTestNotificationService(newMemDeliveryStore(), email)

	var d *notification.Delivery
	require.NotPanics(t, func() {
		d = svc.DeliverNow(context.Background(), emailMessage("user-1"))
	})
	assert.Equal(t, notification.StatusFailed, d.Status)
	assert.Contains(t, d.LastError, "provider exploded")
}

func TestDeliverNow_EnqueueFailureReturnsFailedDelivery(t *testing.T) {
	store := newMemDeliveryStore()
	store.createErr = errors.New("db down")
	email := &stubProvider{channel: notification.ChannelEmail}
	svc := newTestNotificationService(store, email)

	d := svc.DeliverNow(context.Background(), emailMessage("user-1"))
	assert.Equal(t, notification.StatusFailed, d.Status)
	assert.Contains(t, d.LastError, "db down")
	assert.Zero(t, email.sentCount())
}

func TestDrainQueued(t *testing.T) {
	store := newMemDeliveryStore()
	email := &stubProvider{
		channel: notification.ChannelEmail,
		failFor: map[string]bool{"user-2": true},
	}
	svc := newTestNotificationService(store, email)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.Enqueue(ctx, emailMessage(fmt.Sprintf("user-%d", i)))
		require.NoError(t, err)
	}

	result, err := svc.DrainQueued(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Processed)
	assert.Equal(t, 3, result.Sent)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, result.Processed, result.Sent+result.Failed)

	queued, err := store.ListQueued(ctx, 10)
	require.NoError(t, err)
	require.Len(t, queued, 1)
	assert.Equal(t, "user-4", queued[0].RecipientRef, "oldest rows drain first")

	result, err = svc.DrainQueued(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Processed: 1, Sent: 1}, result)

	result, err = svc.DrainQueued(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{}, result)
	assert.Equal(t, 4, email.sentCount())
}

func TestDrainQueued_NonPositiveLimit(t *testing.T) {
	store := newMemDeliveryStore()
	svc := newTestNotificationService(store, &stubProvider{channel: notification.ChannelEmail})
	_, err := svc.Enqueue(context.Background(), emailMessage("user-1"))
	require.NoError(t, err)

	result, err := svc.DrainQueued(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{}, result)
	assert.Len(t, store.all(), 1)
}

func TestRetryFailed_StopsAtMaxAttempts(t *testing.T) {
	store := newMemDeliveryStore()
	email := &stubProvider{channel: notification.ChannelEmail, err: errors.New("timeout")}
	svc := newTestNotificationService(store, email)
	ctx := context.Background()

	d := svc.DeliverNow(ctx, emailMessage("user-1"))
	require.Equal(t, notification.StatusFailed, d.Status)

	for attempt := 2; attempt <= 3; attempt++ {
		result, err := svc.RetryFailed(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, BatchResult{Processed: 1, Failed: 1}, result, "attempt %d", attempt)
	}

	result, err := svc.RetryFailed(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{}, result, "row is exhausted after three attempts")
}

func TestRetryFailed_Recovers(t *testing.T) {
	store := newMemDeliveryStore()
	email := &stubProvider{channel: notification.ChannelEmail, err: errors.New("timeout")}
	svc := newTestNotificationService(store, email)
	ctx := context.Background()

	d := svc.DeliverNow(ctx, emailMessage("user-1"))
	require.Equal(t, notification.StatusFailed, d.Status)

	email.err = nil
	result, err := svc.RetryFailed(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Processed: 1, Sent: 1}, result)

	stored, err := store.FindByKey(ctx, d.IdempotencyKey)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusSent, stored.Status)
	assert.Equal(t, 2, stored.AttemptCount)
	assert.Empty(t, stored.LastError)
}

func TestStats(t *testing.T) {
	store := newMemDeliveryStore()
	email := &stubProvider{channel: notification.ChannelEmail, failFor: map[string]bool{"user-1": true}}
	svc := newTestNotificationService(store, email)
	ctx := context.Background()

	svc.DeliverNow(ctx, emailMessage("user-0"))
	svc.DeliverNow(ctx, emailMessage("user-1"))
	_, err := svc.Enqueue(ctx, emailMessage("user-2"))
	require.NoError(t, err)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"SENT": 1, "FAILED": 1, "QUEUED": 1}, stats)
}
