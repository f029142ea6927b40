package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/servicehub/service-booking/internal/domain/notification"
	"go.uber.org/zap"
)

// SMTPSettings configures the outbound mail relay.
type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// sendMailFunc matches smtp.SendMail.
type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailProvider delivers EMAIL messages through an SMTP relay.
type EmailProvider struct {
	settings  SMTPSettings
	endpoints EndpointResolver
	sendMail  sendMailFunc
	logger    *zap.Logger
}

// NewEmailProvider creates a new EmailProvider.
func NewEmailProvider(settings SMTPSettings, endpoints EndpointResolver, logger *zap.Logger) *EmailProvider {
	return &EmailProvider{
		settings:  settings,
		endpoints: endpoints,
		sendMail:  smtp.SendMail,
		logger:    logger,
	}
}

// Channel implements notification.Provider.
func (p *EmailProvider) Channel() notification.Channel {
	return notification.ChannelEmail
}

// Send implements notification.Provider.
func (p *EmailProvider) Send(ctx context.Context, msg notification.Message) (notification.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return notification.Receipt{}, err
	}
	if p.settings.Host == "" {
		return notification.Receipt{}, fmt.Errorf("email provider is not configured")
	}

	to, err := p.endpoints.EmailAddress(ctx, msg.RecipientRef)
	if err != nil {
		return notification.Receipt{}, err
	}
	rendered, err := Render(msg.TemplateID, msg.Payload)
	if err != nil {
		return notification.Receipt{}, err
	}

	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), p.settings.Host)
	body := buildMIMEMessage(p.settings.From, to, messageID, rendered)

	var auth smtp.Auth
	if p.settings.Username != "" {
		auth = smtp.PlainAuth("", p.settings.Username, p.settings.Password, p.settings.Host)
	}
	addr := net.JoinHostPort(p.settings.Host, strconv.Itoa(p.settings.Port))
	if err := p.sendMail(addr, auth, p.settings.From, []string{to}, body); err != nil {
		return notification.Receipt{}, fmt.Errorf("smtp send failed: %w", err)
	}

	p.logger.Debug("email sent",
		zap.String("template", msg.TemplateID),
		zap.String("message_id", messageID),
	)
	return notification.Receipt{Provider: "smtp", ProviderMessageID: messageID}, nil
}

func buildMIMEMessage(from, to, messageID string, r Rendered) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + r.Title + "\r\n")
	b.WriteString("Message-ID: " + messageID + "\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(r.Body + "\r\n")
	return []byte(b.String())
}
