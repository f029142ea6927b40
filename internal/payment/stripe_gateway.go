package payment

import (
	"context"
	"errors"
	"fmt"

	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"go.uber.org/zap"
)

// ProviderStripe is the provider name stored on Stripe-backed payment records.
const ProviderStripe = "stripe"

// IntentCapturer is the subset of the Stripe PaymentIntent client used for capture.
type IntentCapturer interface {
	Capture(id string, params *stripe.PaymentIntentCaptureParams) (*stripe.PaymentIntent, error)
}

// StripeGateway captures authorized Stripe PaymentIntents.
type StripeGateway struct {
	intents IntentCapturer
	logger  *zap.Logger
}

// NewStripeGateway creates a StripeGateway authenticated with secretKey.
func NewStripeGateway(secretKey string, logger *zap.Logger) *StripeGateway {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return NewStripeGatewayWithClient(sc.PaymentIntents, logger)
}

// NewStripeGatewayWithClient creates a StripeGateway over an existing intent client.
func NewStripeGatewayWithClient(intents IntentCapturer, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{intents: intents, logger: logger}
}

// Name implements payment.Gateway.
func (g *StripeGateway) Name() string {
	return ProviderStripe
}

// CapturePayment captures the full authorized amount. The payment id is the idempotency key,
// so a retried capture never charges twice.
func (g *StripeGateway) CapturePayment(ctx context.Context, p *paymentDomain.Payment) error {
	if p.ExternalRef == "" {
		return fmt.Errorf("payment %s has no stripe payment intent", p.ID)
	}

	params := &stripe.PaymentIntentCaptureParams{
		AmountToCapture: stripe.Int64(p.AmountCents),
	}
	params.Context = ctx
	params.SetIdempotencyKey("capture-" + p.ID.String())

	intent, err := g.intents.Capture(p.ExternalRef, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodePaymentIntentUnexpectedState {
			return fmt.Errorf("payment intent %s cannot be captured: %s", p.ExternalRef, stripeErr.Msg)
		}
		return fmt.Errorf("stripe capture failed: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return fmt.Errorf("payment intent %s is %s after capture", p.ExternalRef, intent.Status)
	}

	g.logger.Info("stripe payment captured",
		zap.String("payment_id", p.ID.String()),
		zap.String("payment_intent", intent.ID),
		zap.Int64("amount_cents", intent.AmountReceived),
	)
	return nil
}
