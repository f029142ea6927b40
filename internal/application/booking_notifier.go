package application

import (
	"context"
	"time"

	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	clientDomain "github.com/servicehub/service-booking/internal/domain/client"
	"github.com/servicehub/service-booking/internal/domain/notification"
	providerDomain "github.com/servicehub/service-booking/internal/domain/provider"
	"go.uber.org/zap"
)

const scheduledTimeLayout = "Mon, 02 Jan 2006 15:04 MST"

// BookingNotifier turns booking lifecycle events into notification messages following the
// static event policy table.
type BookingNotifier struct {
	dispatcher MessageDispatcher
	clients    clientDomain.ProfileRepository
	providers  providerDomain.Directory
	// deliverInline sends immediately; otherwise messages wait for the drain worker.
	deliverInline bool
	logger        *zap.Logger
}

// NewBookingNotifier creates a new BookingNotifier.
func NewBookingNotifier(
	dispatcher MessageDispatcher,
	clients clientDomain.ProfileRepository,
	providers providerDomain.Directory,
	deliverInline bool,
	logger *zap.Logger,
) *BookingNotifier {
	return &BookingNotifier{
		dispatcher:    dispatcher,
		clients:       clients,
		providers:     providers,
		deliverInline: deliverInline,
		logger:        logger,
	}
}

// Notify dispatches event for bk on every channel the policy selects.
func (n *BookingNotifier) Notify(ctx context.Context, event string, bk *bookingDomain.Booking) {
	log := n.logger.With(
		zap.String("event", event),
		zap.String("booking_id", bk.ID().String()),
		zap.String("display_id", bk.DisplayID()),
	)

	policy, ok := notification.PolicyFor(event)
	if !ok {
		log.Debug("no notification policy for event")
		return
	}

	var provider *providerDomain.Profile
	if bk.ProviderID() != nil {
		p, err := n.providers.FindByID(ctx, *bk.ProviderID())
		if err != nil {
			log.Warn("provider lookup failed for notification", zap.Error(err))
		} else {
			provider = p
		}
	}

	// Missing profiles fall back to UTC and email-only routing.
	profile, err := n.clients.FindByUserID(ctx, bk.ClientID())
	if err != nil {
		log.Debug("client profile unavailable for notification", zap.Error(err))
	}

	var recipientRef string
	var preferred notification.Channel
	switch policy.Recipient {
	case notification.RecipientClient:
		recipientRef = bk.ClientID().String()
		if profile != nil && profile.PreferredContact() == clientDomain.ContactWhatsApp {
			preferred = notification.ChannelWhatsApp
		}
	case notification.RecipientProvider:
		if provider == nil {
			log.Error("cannot notify provider without a provider profile", zap.String("step", "notification"))
			return
		}
		recipientRef = provider.UserID.String()
	}

	payload := n.payload(bk, provider, profile)
	for _, ch := range policy.Channels(preferred) {
		msg := notification.Message{
			Channel:        ch,
			RecipientRef:   recipientRef,
			TemplateID:     event,
			Payload:        payload,
			IdempotencyKey: notification.IdempotencyKey(event, bk.ID(), ch, recipientRef),
		}

		if !n.deliverInline {
			if _, err := n.dispatcher.Enqueue(ctx, msg); err != nil {
				log.Error("failed to enqueue notification",
					zap.String("step", "notification"),
					zap.String("channel", string(ch)),
					zap.Error(err),
				)
			}
			continue
		}

		if d := n.dispatcher.DeliverNow(ctx, msg); d.Status == notification.StatusFailed {
			log.Warn("notification not delivered",
				zap.String("step", "notification"),
				zap.String("channel", string(ch)),
				zap.String("reason", d.LastError),
			)
		}
	}
}

func (n *BookingNotifier) payload(bk *bookingDomain.Booking, provider *providerDomain.Profile, profile *clientDomain.Profile) map[string]any {
	loc := timeLocationOrUTC(profile)
	payload := map[string]any{
		"booking_id":   bk.ID().String(),
		"display_id":   bk.DisplayID(),
		"category":     bk.Category(),
		"address":      bk.AddressText(),
		"status":       string(bk.Status()),
		"scheduled_at": bk.ScheduledAt().In(loc).Format(scheduledTimeLayout),
		"timezone":     loc.String(),
	}
	if provider != nil {
		payload["provider_name"] = provider.DisplayName
	}
	if profile != nil && profile.FullName() != "" {
		payload["client_name"] = profile.FullName()
	}
	return payload
}

func timeLocationOrUTC(profile *clientDomain.Profile) *time.Location {
	if profile == nil {
		return time.UTC
	}
	return profile.Location()
}
