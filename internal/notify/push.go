package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/servicehub/service-booking/internal/domain/notification"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// MulticastSender is the subset of the FCM client used for push delivery.
type MulticastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// NewFCMClient initializes a Firebase app from a service account file and returns its messaging client.
func NewFCMClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting messaging client: %w", err)
	}
	return client, nil
}

// PushProvider delivers PUSH messages to every active device of the recipient.
type PushProvider struct {
	sender    MulticastSender
	endpoints EndpointResolver
	logger    *zap.Logger
}

// NewPushProvider creates a new PushProvider.
func NewPushProvider(sender MulticastSender, endpoints EndpointResolver, logger *zap.Logger) *PushProvider {
	return &PushProvider{sender: sender, endpoints: endpoints, logger: logger}
}

// Channel implements notification.Provider.
func (p *PushProvider) Channel() notification.Channel {
	return notification.ChannelPush
}

// Send implements notification.Provider. The message counts as sent when at least one device accepted it.
func (p *PushProvider) Send(ctx context.Context, msg notification.Message) (notification.Receipt, error) {
	if p.sender == nil {
		return notification.Receipt{}, fmt.Errorf("push provider is not configured")
	}

	tokens, err := p.endpoints.PushTokens(ctx, msg.RecipientRef)
	if err != nil {
		return notification.Receipt{}, err
	}
	rendered, err := Render(msg.TemplateID, msg.Payload)
	if err != nil {
		return notification.Receipt{}, err
	}

	data := stringData(msg.Payload)
	data["event"] = msg.TemplateID

	resp, err := p.sender.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: rendered.Title,
			Body:  rendered.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	})
	if err != nil {
		return notification.Receipt{}, fmt.Errorf("failed to send FCM message: %w", err)
	}

	var (
		messageID string
		stale     []string
		lastErr   error
	)
	for i, r := range resp.Responses {
		if r.Success {
			if messageID == "" {
				messageID = r.MessageID
			}
			continue
		}
		lastErr = r.Error
		if messaging.IsUnregistered(r.Error) && i < len(tokens) {
			stale = append(stale, tokens[i])
		}
	}

	if len(stale) > 0 {
		if err := p.endpoints.DeactivatePushTokens(ctx, stale); err != nil {
			p.logger.Warn("failed to deactivate unregistered device tokens",
				zap.Int("count", len(stale)),
				zap.Error(err),
			)
		}
	}

	if resp.SuccessCount == 0 {
		if lastErr == nil {
			lastErr = fmt.Errorf("no device accepted the message")
		}
		return notification.Receipt{}, fmt.Errorf("push delivery failed on all %d devices: %w", len(tokens), lastErr)
	}
	return notification.Receipt{Provider: "fcm", ProviderMessageID: messageID}, nil
}
