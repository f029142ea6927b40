package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

type stubIntents struct {
	intent *stripe.PaymentIntent
	err    error
	id     string
	params *stripe.PaymentIntentCaptureParams
}

func (s *stubIntents) Capture(id string, params *stripe.PaymentIntentCaptureParams) (*stripe.PaymentIntent, error) {
	s.id, s.params = id, params
	return s.intent, s.err
}

func authorizedPayment() *paymentDomain.Payment {
	return &paymentDomain.Payment{
		ID:          uuid.New(),
		BookingID:   uuid.New(),
		Provider:    ProviderStripe,
		ExternalRef: "pi_123",
		AmountCents: 20000,
		Currency:    "USD",
		Status:      paymentDomain.StatusAuthorized,
	}
}

func TestStripeGateway_Capture(t *testing.T) {
	intents := &stubIntents{intent: &stripe.PaymentIntent{ID: "pi_123", Status: stripe.PaymentIntentStatusSucceeded, AmountReceived: 20000}}
	g := NewStripeGatewayWithClient(intents, zap.NewNop())
	p := authorizedPayment()

	require.NoError(t, g.CapturePayment(context.Background(), p))
	assert.Equal(t, "pi_123", intents.id)
	assert.Equal(t, int64(20000), *intents.params.AmountToCapture)
	assert.Equal(t, "capture-"+p.ID.String(), *intents.params.IdempotencyKey)
}

func TestStripeGateway_CaptureRejected(t *testing.T) {
	intents := &stubIntents{err: &stripe.Error{Code: stripe.ErrorCodePaymentIntentUnexpectedState, Msg: "already canceled"}}
	g := NewStripeGatewayWithClient(intents, zap.NewNop())

	err := g.CapturePayment(context.Background(), authorizedPayment())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be captured")
}

func TestStripeGateway_MissingIntent(t *testing.T) {
	g := NewStripeGatewayWithClient(&stubIntents{}, zap.NewNop())
	p := authorizedPayment()
	p.ExternalRef = ""

	assert.Error(t, g.CapturePayment(context.Background(), p))
}

func TestFactory_ForProvider(t *testing.T) {
	manual := NewManualGateway(zap.NewNop())
	f := NewFactory(manual, NewStripeGatewayWithClient(&stubIntents{}, zap.NewNop()))

	g, err := f.ForProvider("MANUAL")
	require.NoError(t, err)
	assert.Equal(t, ProviderManual, g.Name())

	g, err = f.ForProvider(ProviderStripe)
	require.NoError(t, err)
	assert.Equal(t, ProviderStripe, g.Name())

	_, err = f.ForProvider("paypal")
	assert.Error(t, err)
}
