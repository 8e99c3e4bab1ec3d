// Package mail delivers contact form submissions to the site owner.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/asheshgoplani/folio/internal/logging"
)

var mailLog = logging.ForComponent(logging.CompMail)

var (
	// ErrMissingFields means the name, email or message was blank.
	ErrMissingFields = errors.New("mail: name, email, and message are required")
	// ErrNotConfigured means there is nowhere to deliver to.
	ErrNotConfigured = errors.New("mail: not configured")
	// ErrDelivery means the provider rejected or failed the send.
	ErrDelivery = errors.New("mail: delivery failed")
)

// ContactRequest is one contact form submission.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Validate reports ErrMissingFields when any field is blank.
func (r ContactRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" ||
		strings.TrimSpace(r.Email) == "" ||
		strings.TrimSpace(r.Message) == "" {
		return ErrMissingFields
	}
	return nil
}

// Subject is the subject line the owner receives.
func (r ContactRequest) Subject() string {
	return "New message from " + headerSafe(r.Name)
}

// Mailer sends a contact request to the owner.
type Mailer interface {
	Send(ctx context.Context, req ContactRequest) error
}

// New builds the mailer cfg describes, wrapped in tracing. A config that
// cannot deliver yields a mailer whose Send returns ErrNotConfigured, so the
// problem surfaces per request instead of at startup.
func New(cfg Config) Mailer {
	var m Mailer
	if err := cfg.Validate(); err != nil {
		mailLog.Warn("mailer_not_configured", slog.String("error", err.Error()))
		m = unconfigured{reason: err}
	} else {
		switch cfg.provider() {
		case ProviderLog:
			m = &LogMailer{Recipient: cfg.Recipient}
		case ProviderSMTP:
			m = NewSMTPMailer(cfg)
		default:
			m = NewResendMailer(cfg)
		}
	}
	return Traced(m, cfg.provider(), nil)
}

type unconfigured struct {
	reason error
}

func (u unconfigured) Send(context.Context, ContactRequest) error {
	return fmt.Errorf("%w: %v", ErrNotConfigured, u.reason)
}

var htmlBody = template.Must(template.New("contact").Parse(
	`<p>You have a new message from your portfolio contact form.</p>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>`))

// RenderHTML renders the HTML body with every field escaped.
func RenderHTML(req ContactRequest) (string, error) {
	var buf bytes.Buffer
	if err := htmlBody.Execute(&buf, req); err != nil {
		return "", fmt.Errorf("mail: render body: %w", err)
	}
	return buf.String(), nil
}

// RenderText renders the plain-text body used by SMTP.
func RenderText(req ContactRequest) string {
	return fmt.Sprintf(`New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, req.Name, req.Email, req.Message)
}

// headerSafe strips characters that would let a value break out of a header.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}
