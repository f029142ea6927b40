package payment

import (
	"context"

	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
	"go.uber.org/zap"
)

// ProviderManual is the provider name for payments settled outside any processor (cash, bank transfer).
const ProviderManual = "manual"

// ManualGateway accepts every capture; the money was collected offline.
type ManualGateway struct {
	logger *zap.Logger
}

// NewManualGateway creates a new ManualGateway.
func NewManualGateway(logger *zap.Logger) *ManualGateway {
	return &ManualGateway{logger: logger}
}

// Name implements payment.Gateway.
func (g *ManualGateway) Name() string {
	return ProviderManual
}

// CapturePayment implements payment.Gateway.
func (g *ManualGateway) CapturePayment(_ context.Context, p *paymentDomain.Payment) error {
	g.logger.Info("manual payment marked as captured",
		zap.String("payment_id", p.ID.String()),
		zap.String("booking_id", p.BookingID.String()),
	)
	return nil
}
