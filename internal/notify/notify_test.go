package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/servicehub/service-booking/internal/domain/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubEndpoints struct {
	email       string
	phone       string
	tokens      []string
	err         error
	deactivated []string
}

func (s *stubEndpoints) EmailAddress(_ context.Context, _ string) (string, error) {
	return s.email, s.err
}

func (s *stubEndpoints) PhoneNumber(_ context.Context, _ string) (string, error) {
	return s.phone, s.err
}

func (s *stubEndpoints) PushTokens(_ context.Context, _ string) ([]string, error) {
	return s.tokens, s.err
}

func (s *stubEndpoints) DeactivatePushTokens(_ context.Context, tokens []string) error {
	s.deactivated = append(s.deactivated, tokens...)
	return nil
}

func samplePayload() map[string]any {
	return map[string]any{
		"booking_id":    "0b6f7c1e-2f7e-4c55-8d1b-9c1a0d7d1f00",
		"display_id":    "A2223",
		"category":      "cleaning",
		"address":       "12 Harbour Road",
		"scheduled_at":  "Mon, 02 Jan 2026 13:00 UTC",
		"provider_name": "Ana",
	}
}

func TestRender_AllPolicyEvents(t *testing.T) {
	events := []string{
		notification.EventBookingCreated,
		notification.EventBookingAccepted,
		notification.EventBookingRejected,
		notification.EventBookingOnMyWay,
		notification.EventBookingArrived,
		notification.EventBookingCompleted,
	}
	for _, event := range events {
		t.Run(event, func(t *testing.T) {
			r, err := Render(event, samplePayload())
			require.NoError(t, err)
			assert.NotEmpty(t, r.Title)
			assert.NotEmpty(t, r.Body)
			assert.NotContains(t, r.Body, "<no value>")
		})
	}
}

func TestRender_UsesProviderName(t *testing.T) {
	r, err := Render(notification.EventBookingAccepted, samplePayload())
	require.NoError(t, err)
	assert.Equal(t, "Booking A2223 accepted", r.Title)
	assert.True(t, strings.HasPrefix(r.Body, "Ana accepted"))
}

func TestRender_UnknownTemplate(t *testing.T) {
	_, err := Render("booking.unknown", samplePayload())
	assert.Error(t, err)
}

func TestEmailProvider_Send(t *testing.T) {
	endpoints := &stubEndpoints{email: "client@example.com"}
	p := NewEmailProvider(SMTPSettings{Host: "smtp.example.com", Port: 587, From: "bookings@example.com"}, endpoints, zap.NewNop())

	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	p.sendMail = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, msg
		return nil
	}

	receipt, err := p.Send(context.Background(), notification.Message{
		Channel:      notification.ChannelEmail,
		RecipientRef: "user-1",
		TemplateID:   notification.EventBookingCompleted,
		Payload:      samplePayload(),
	})
	require.NoError(t, err)
	assert.Equal(t, "smtp", receipt.Provider)
	assert.NotEmpty(t, receipt.ProviderMessageID)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, []string{"client@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Booking A2223 completed")
}

func TestEmailProvider_NoEndpoint(t *testing.T) {
	endpoints := &stubEndpoints{err: notification.NewNoActiveRecipientEndpointsError("user-1", notification.ChannelEmail)}
	p := NewEmailProvider(SMTPSettings{Host: "smtp.example.com", Port: 587}, endpoints, zap.NewNop())

	_, err := p.Send(context.Background(), notification.Message{
		RecipientRef: "user-1",
		TemplateID:   notification.EventBookingCompleted,
		Payload:      samplePayload(),
	})
	var noEndpoints *notification.NoActiveRecipientEndpointsError
	assert.ErrorAs(t, err, &noEndpoints)
}

func TestWhatsAppProvider_Send(t *testing.T) {
	var received whatsAppRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.1"}]}`))
	}))
	defer server.Close()

	endpoints := &stubEndpoints{phone: "+6591234567"}
	p := NewWhatsAppProvider(WhatsAppSettings{APIURL: server.URL, PhoneNumberID: "12345", Token: "secret"}, endpoints, zap.NewNop())

	receipt, err := p.Send(context.Background(), notification.Message{
		Channel:      notification.ChannelWhatsApp,
		RecipientRef: "user-1",
		TemplateID:   notification.EventBookingOnMyWay,
		Payload:      samplePayload(),
	})
	require.NoError(t, err)
	assert.Equal(t, "wamid.1", receipt.ProviderMessageID)
	assert.Equal(t, "6591234567", received.To)
	assert.Equal(t, "whatsapp", received.MessagingProduct)
}

func TestWhatsAppProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid recipient","code":131026}}`))
	}))
	defer server.Close()

	p := NewWhatsAppProvider(WhatsAppSettings{APIURL: server.URL, PhoneNumberID: "1", Token: "t"}, &stubEndpoints{phone: "+1"}, zap.NewNop())
	_, err := p.Send(context.Background(), notification.Message{
		RecipientRef: "user-1",
		TemplateID:   notification.EventBookingArrived,
		Payload:      samplePayload(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
}

type stubSender struct {
	resp *messaging.BatchResponse
	err  error
	got  *messaging.MulticastMessage
}

func (s *stubSender) SendEachForMulticast(_ context.Context, m *messaging.MulticastMessage) (*messaging.BatchResponse, error) {
	s.got = m
	return s.resp, s.err
}

func TestPushProvider_PartialSuccess(t *testing.T) {
	sender := &stubSender{resp: &messaging.BatchResponse{
		SuccessCount: 1,
		FailureCount: 1,
		Responses: []*messaging.SendResponse{
			{Success: false, Error: errors.New("device offline")},
			{Success: true, MessageID: "projects/x/messages/2"},
		},
	}}
	endpoints := &stubEndpoints{tokens: []string{"tok-a", "tok-b"}}
	p := NewPushProvider(sender, endpoints, zap.NewNop())

	receipt, err := p.Send(context.Background(), notification.Message{
		Channel:      notification.ChannelPush,
		RecipientRef: "user-1",
		TemplateID:   notification.EventBookingCreated,
		Payload:      samplePayload(),
	})
	require.NoError(t, err)
	assert.Equal(t, "projects/x/messages/2", receipt.ProviderMessageID)
	assert.Equal(t, []string{"tok-a", "tok-b"}, sender.got.Tokens)
	assert.Equal(t, notification.EventBookingCreated, sender.got.Data["event"])
	assert.Empty(t, endpoints.deactivated)
}

func TestPushProvider_AllFailed(t *testing.T) {
	sender := &stubSender{resp: &messaging.BatchResponse{
		FailureCount: 1,
		Responses:    []*messaging.SendResponse{{Success: false, Error: errors.New("quota exceeded")}},
	}}
	p := NewPushProvider(sender, &stubEndpoints{tokens: []string{"tok-a"}}, zap.NewNop())

	_, err := p.Send(context.Background(), notification.Message{
		RecipientRef: "user-1",
		TemplateID:   notification.EventBookingCreated,
		Payload:      samplePayload(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}
