package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/servicehub/service-booking/internal/domain/notification"
	"go.uber.org/zap"
)

// WhatsAppSettings configures the WhatsApp Cloud API client.
type WhatsAppSettings struct {
	APIURL        string
	PhoneNumberID string
	Token         string
}

// WhatsAppProvider delivers WHATSAPP messages through the Cloud API.
type WhatsAppProvider struct {
	settings   WhatsAppSettings
	endpoints  EndpointResolver
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWhatsAppProvider creates a new WhatsAppProvider.
func NewWhatsAppProvider(settings WhatsAppSettings, endpoints EndpointResolver, logger *zap.Logger) *WhatsAppProvider {
	return &WhatsAppProvider{
		settings:   settings,
		endpoints:  endpoints,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Channel implements notification.Provider.
func (p *WhatsAppProvider) Channel() notification.Channel {
	return notification.ChannelWhatsApp
}

type whatsAppText struct {
	Body string `json:"body"`
}

type whatsAppRequest struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             whatsAppText `json:"text"`
}

type whatsAppResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// Send implements notification.Provider.
func (p *WhatsAppProvider) Send(ctx context.Context, msg notification.Message) (notification.Receipt, error) {
	if p.settings.APIURL == "" || p.settings.Token == "" {
		return notification.Receipt{}, fmt.Errorf("whatsapp provider is not configured")
	}

	phone, err := p.endpoints.PhoneNumber(ctx, msg.RecipientRef)
	if err != nil {
		return notification.Receipt{}, err
	}
	rendered, err := Render(msg.TemplateID, msg.Payload)
	if err != nil {
		return notification.Receipt{}, err
	}

	reqBody, err := json.Marshal(whatsAppRequest{
		MessagingProduct: "whatsapp",
		To:               strings.TrimPrefix(phone, "+"),
		Type:             "text",
		Text:             whatsAppText{Body: rendered.Title + "\n" + rendered.Body},
	})
	if err != nil {
		return notification.Receipt{}, fmt.Errorf("failed to encode whatsapp request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", strings.TrimRight(p.settings.APIURL, "/"), p.settings.PhoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return notification.Receipt{}, err
	}
	req.Header.Set("Authorization", "Bearer "+p.settings.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return notification.Receipt{}, fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return notification.Receipt{}, fmt.Errorf("failed to read whatsapp response: %w", err)
	}

	var decoded whatsAppResponse
	if err := json.Unmarshal(raw, &decoded); err != nil && resp.StatusCode < 300 {
		return notification.Receipt{}, fmt.Errorf("failed to decode whatsapp response: %w", err)
	}
	if resp.StatusCode >= 300 || decoded.Error != nil {
		reason := http.StatusText(resp.StatusCode)
		if decoded.Error != nil {
			reason = decoded.Error.Message
		}
		return notification.Receipt{}, fmt.Errorf("whatsapp api returned %d: %s", resp.StatusCode, reason)
	}
	if len(decoded.Messages) == 0 {
		return notification.Receipt{}, fmt.Errorf("whatsapp api returned no message id")
	}

	p.logger.Debug("whatsapp message sent",
		zap.String("template", msg.TemplateID),
		zap.String("message_id", decoded.Messages[0].ID),
	)
	return notification.Receipt{Provider: "whatsapp", ProviderMessageID: decoded.Messages[0].ID}, nil
}
