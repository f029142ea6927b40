package payment

import (
	"fmt"
	"strings"

	paymentDomain "github.com/servicehub/service-booking/internal/domain/payment"
)

// Factory selects a gateway by the provider name stored on a payment record.
type Factory struct {
	gateways map[string]paymentDomain.Gateway
}

// NewFactory registers gateways under their Name().
func NewFactory(gateways ...paymentDomain.Gateway) *Factory {
	f := &Factory{gateways: make(map[string]paymentDomain.Gateway, len(gateways))}
	for _, g := range gateways {
		f.gateways[strings.ToLower(g.Name())] = g
	}
	return f
}

// ForProvider implements payment.GatewayFactory.
func (f *Factory) ForProvider(name string) (paymentDomain.Gateway, error) {
	g, ok := f.gateways[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("no payment gateway registered for provider %q", name)
	}
	return g, nil
}
