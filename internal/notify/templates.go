package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/servicehub/service-booking/internal/domain/notification"
)

// Rendered is a message rendered for a human-readable channel.
type Rendered struct {
	Title string
	Body  string
}

type messageTemplate struct {
	title *template.Template
	body  *template.Template
}

var templates = map[string]messageTemplate{
	notification.EventBookingCreated: mustTemplate(
		"New booking {{.display_id}}",
		"{{with .client_name}}{{.}} requested{{else}}New request for{{end}} {{.category}} on {{.scheduled_at}} at {{.address}}.",
	),
	notification.EventBookingAccepted: mustTemplate(
		"Booking {{.display_id}} accepted",
		"{{with .provider_name}}{{.}}{{else}}Your provider{{end}} accepted your {{.category}} booking for {{.scheduled_at}}.",
	),
	notification.EventBookingRejected: mustTemplate(
		"Booking {{.display_id}} declined",
		"{{with .provider_name}}{{.}}{{else}}The provider{{end}} could not take your {{.category}} booking for {{.scheduled_at}}.",
	),
	notification.EventBookingOnMyWay: mustTemplate(
		"Your provider is on the way",
		"{{with .provider_name}}{{.}}{{else}}Your provider{{end}} is heading to {{.address}} for booking {{.display_id}}.",
	),
	notification.EventBookingArrived: mustTemplate(
		"Your provider has arrived",
		"{{with .provider_name}}{{.}}{{else}}Your provider{{end}} has arrived at {{.address}} for booking {{.display_id}}.",
	),
	notification.EventBookingCompleted: mustTemplate(
		"Booking {{.display_id}} completed",
		"Your {{.category}} booking {{.display_id}} is complete. Thank you for booking with us.",
	),
}

func mustTemplate(title, body string) messageTemplate {
	return messageTemplate{
		title: template.Must(template.New("title").Option("missingkey=zero").Parse(title)),
		body:  template.Must(template.New("body").Option("missingkey=zero").Parse(body)),
	}
}

// Render fills the template registered for templateID with payload.
func Render(templateID string, payload map[string]any) (Rendered, error) {
	tmpl, ok := templates[templateID]
	if !ok {
		return Rendered{}, fmt.Errorf("unknown notification template %q", templateID)
	}

	var title, body bytes.Buffer
	if err := tmpl.title.Execute(&title, payload); err != nil {
		return Rendered{}, fmt.Errorf("failed to render title for %q: %w", templateID, err)
	}
	if err := tmpl.body.Execute(&body, payload); err != nil {
		return Rendered{}, fmt.Errorf("failed to render body for %q: %w", templateID, err)
	}
	return Rendered{Title: title.String(), Body: body.String()}, nil
}

// stringData flattens a payload into the string map push gateways accept.
func stringData(payload map[string]any) map[string]string {
	data := make(map[string]string, len(payload))
	for k, v := range payload {
		data[k] = fmt.Sprint(v)
	}
	return data
}
