package application

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/servicehub/service-booking/internal/domain/actor"
	auditDomain "github.com/servicehub/service-booking/internal/domain/audit"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	earningsDomain "github.com/servicehub/service-booking/internal/domain/earnings"
	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
	"github.com/servicehub/service-booking/internal/platform/domain"
	"go.uber.org/zap"
)

// EarningsService credits providers for completed bookings, once per booking.
type EarningsService struct {
	repo       earningsDomain.Repository
	bookings   bookingDomain.BookingRepository
	payments   paymentDomain.RecordStore
	audit      auditDomain.Sink
	feePercent float64
	clock      Clock
	logger     *zap.Logger
}

// NewEarningsService creates a new EarningsService. feePercent is the platform's share, 0-100.
func NewEarningsService(
	repo earningsDomain.Repository,
	bookings bookingDomain.BookingRepository,
	payments paymentDomain.RecordStore,
	audit auditDomain.Sink,
	feePercent float64,
	clock Clock,
	logger *zap.Logger,
) *EarningsService {
	return &EarningsService{
		repo:       repo,
		bookings:   bookings,
		payments:   payments,
		audit:      audit,
		feePercent: feePercent,
		clock:      clock,
		logger:     logger,
	}
}

// RecordForCompletedBooking stores the provider's earning for bookingID. Calling it again for
// the same booking is a no-op.
func (s *EarningsService) RecordForCompletedBooking(ctx context.Context, by actor.Actor, bookingID uuid.UUID) error {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return err
	}
	if bk.Status() != bookingDomain.StatusCompleted {
		return domain.NewValidationError(fmt.Sprintf("booking %s is %s, earnings need a completed booking", bk.DisplayID(), bk.Status()))
	}
	if bk.ProviderID() == nil {
		return domain.NewValidationError(fmt.Sprintf("booking %s has no provider", bk.DisplayID()))
	}

	gross, currency := bk.EstimatedPriceCents(), bk.Currency()
	p, err := s.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("failed to look up payment: %w", err)
	}
	if p != nil {
		gross, currency = p.AmountCents, p.Currency
	}

	fee := int64(math.Round(float64(gross) * s.feePercent / 100))
	earning := &earningsDomain.Earning{
		ID:         uuid.New(),
		BookingID:  bookingID,
		ProviderID: *bk.ProviderID(),
		GrossCents: gross,
		FeeCents:   fee,
		NetCents:   gross - fee,
		Currency:   currency,
		RecordedAt: s.clock().UTC(),
	}

	created, err := s.repo.InsertIfAbsent(ctx, earning)
	if err != nil {
		return fmt.Errorf("failed to record earning: %w", err)
	}
	if !created {
		s.logger.Debug("earning already recorded", zap.String("booking_id", bookingID.String()))
		return nil
	}

	s.logger.Info("earning recorded",
		zap.String("booking_id", bookingID.String()),
		zap.String("provider_id", earning.ProviderID.String()),
		zap.Int64("net_cents", earning.NetCents),
	)

	evt := auditDomain.Event{
		ID:           uuid.New(),
		EventType:    auditDomain.EventEarningRecorded,
		ActorID:      by.ID,
		ActorRole:    string(by.Role),
		ResourceType: auditResourceBooking,
		ResourceID:   bookingID,
		Metadata: map[string]any{
			"action":      "record_earning",
			"gross_cents": earning.GrossCents,
			"fee_cents":   earning.FeeCents,
			"net_cents":   earning.NetCents,
			"currency":    earning.Currency,
		},
		OccurredAt: earning.RecordedAt,
	}
	if err := s.audit.Record(ctx, evt); err != nil {
		s.logger.Warn("failed to audit earning", zap.String("booking_id", bookingID.String()), zap.Error(err))
	}
	return nil
}

// EarningDTO is the API view of a provider earning.
type EarningDTO struct {
	ID         uuid.UUID `json:"id"`
	BookingID  uuid.UUID `json:"booking_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	GrossCents int64     `json:"gross_cents"`
	FeeCents   int64     `json:"fee_cents"`
	NetCents   int64     `json:"net_cents"`
	Currency   string    `json:"currency"`
	RecordedAt time.Time `json:"recorded_at"`
}

// GetForBooking returns the earning recorded for a booking, or a NotFoundError when
// settlement has not recorded one yet.
func (s *EarningsService) GetForBooking(ctx context.Context, bookingID uuid.UUID) (*EarningDTO, error) {
	e, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.NewNotFoundError("earning", bookingID.String())
	}
	return &EarningDTO{
		ID:         e.ID,
		BookingID:  e.BookingID,
		ProviderID: e.ProviderID,
		GrossCents: e.GrossCents,
		FeeCents:   e.FeeCents,
		NetCents:   e.NetCents,
		Currency:   e.Currency,
		RecordedAt: e.RecordedAt,
	}, nil
}
