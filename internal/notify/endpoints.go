package notify

import "context"

// EndpointResolver maps a recipient reference to concrete channel addresses.
type EndpointResolver interface {
	EmailAddress(ctx context.Context, recipientRef string) (string, error)
	PhoneNumber(ctx context.Context, recipientRef string) (string, error)
	PushTokens(ctx context.Context, recipientRef string) ([]string, error)
	DeactivatePushTokens(ctx context.Context, tokens []string) error
}
