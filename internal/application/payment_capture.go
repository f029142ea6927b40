package application

import (
	"context"

	"github.com/servicehub/service-booking/internal/domain/actor"
	bookingDomain "github.com/servicehub/service-booking/internal/domain/booking"
	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
	"go.uber.org/zap"
)

// CaptureOutcome summarizes what settlement did for a completed booking.
type CaptureOutcome string

const (
	CaptureNoPayment       CaptureOutcome = "no_payment"
	CaptureLookupFailed    CaptureOutcome = "lookup_failed"
	CaptureCaptured        CaptureOutcome = "captured"
	CaptureAlreadyCaptured CaptureOutcome = "already_captured"
	CaptureNotCapturable   CaptureOutcome = "not_capturable"
	CaptureFailed          CaptureOutcome = "capture_failed"
	CaptureEarningsFailed  CaptureOutcome = "earnings_failed"
)

// PaymentCaptureCoordinator captures the authorized payment of a completed booking and
// records the provider's earnings. It never returns an error: every failure is logged
// with enough context for manual reconciliation.
type PaymentCaptureCoordinator struct {
	payments paymentDomain.RecordStore
	gateways paymentDomain.GatewayFactory
	earnings EarningsRecorder
	clock    Clock
	logger   *zap.Logger
}

// NewPaymentCaptureCoordinator creates a new PaymentCaptureCoordinator.
func NewPaymentCaptureCoordinator(
	payments paymentDomain.RecordStore,
	gateways paymentDomain.GatewayFactory,
	earnings EarningsRecorder,
	clock Clock,
	logger *zap.Logger,
) *PaymentCaptureCoordinator {
	return &PaymentCaptureCoordinator{
		payments: payments,
		gateways: gateways,
		earnings: earnings,
		clock:    clock,
		logger:   logger,
	}
}

// Settle runs capture then earnings for bk.
func (c *PaymentCaptureCoordinator) Settle(ctx context.Context, bk *bookingDomain.Booking) CaptureOutcome {
	log := c.logger.With(
		zap.String("booking_id", bk.ID().String()),
		zap.String("display_id", bk.DisplayID()),
	)

	p, err := c.payments.FindByBookingID(ctx, bk.ID())
	if err != nil {
		log.Error("failed to look up payment for completed booking",
			zap.String("step", "payment_lookup"),
			zap.Error(err),
		)
		return CaptureLookupFailed
	}
	if p == nil {
		log.Info("completed booking has no payment record")
		return CaptureNoPayment
	}
	log = log.With(zap.String("payment_id", p.ID.String()), zap.String("payment_provider", p.Provider))

	switch p.Status {
	case paymentDomain.StatusAuthorized:
		if err := c.capture(ctx, p); err != nil {
			log.Error("payment capture failed, booking stays completed",
				zap.String("step", "payment_capture"),
				zap.Error(err),
			)
			return CaptureFailed
		}
		if err := c.payments.MarkCaptured(ctx, p.ID, c.clock()); err != nil {
			log.Error("payment captured but record not updated",
				zap.String("step", "payment_mark_captured"),
				zap.Error(err),
			)
		}
		if !c.recordEarnings(ctx, log, bk) {
			return CaptureEarningsFailed
		}
		log.Info("payment captured for completed booking")
		return CaptureCaptured

	case paymentDomain.StatusCaptured:
		if !c.recordEarnings(ctx, log, bk) {
			return CaptureEarningsFailed
		}
		return CaptureAlreadyCaptured

	default:
		log.Warn("payment not in a capturable state",
			zap.String("step", "payment_capture"),
			zap.String("payment_status", string(p.Status)),
		)
		return CaptureNotCapturable
	}
}

func (c *PaymentCaptureCoordinator) capture(ctx context.Context, p *paymentDomain.Payment) error {
	gateway, err := c.gateways.ForProvider(p.Provider)
	if err != nil {
		return err
	}
	return gateway.CapturePayment(ctx, p)
}

func (c *PaymentCaptureCoordinator) recordEarnings(ctx context.Context, log *zap.Logger, bk *bookingDomain.Booking) bool {
	if err := c.earnings.RecordForCompletedBooking(ctx, actor.System(), bk.ID()); err != nil {
		log.Error("failed to record earnings for completed booking",
			zap.String("step", "earnings"),
			zap.Error(err),
		)
		return false
	}
	return true
}
