package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends through an SMTP relay with PLAIN auth.
type SMTPMailer struct {
	Host      string
	Port      string
	User      string
	Pass      string
	Recipient string

	// SendMail defaults to smtp.SendMail.
	SendMail SendFunc
}

// NewSMTPMailer builds an SMTPMailer from cfg.
func NewSMTPMailer(cfg Config) *SMTPMailer {
	return &SMTPMailer{
		Host:      cfg.SMTPHost,
		Port:      cfg.SMTPPort,
		User:      cfg.SMTPUser,
		Pass:      cfg.SMTPPass,
		Recipient: cfg.Recipient,
	}
}

// Message builds the raw RFC 5322 message for req.
func (m *SMTPMailer) Message(req ContactRequest) []byte {
	return []byte("To: " + m.Recipient + "\r\n" +
		"Subject: " + req.Subject() + "\r\n" +
		"From: " + m.User + "\r\n" +
		"Reply-To: " + headerSafe(req.Email) + "\r\n" +
		"Content-Type: text/plain; charset=UTF-8\r\n" +
		"\r\n" +
		RenderText(req) + "\r\n")
}

func (m *SMTPMailer) Send(ctx context.Context, req ContactRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	send := m.SendMail
	if send == nil {
		send = smtp.SendMail
	}
	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	addr := net.JoinHostPort(m.Host, m.Port)

	// smtp.SendMail takes no context; run it aside so cancellation still
	// returns promptly.
	done := make(chan error, 1)
	go func() {
		done <- send(addr, auth, m.User, []string{m.Recipient}, m.Message(req))
	}()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrDelivery, ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("%w: smtp: %v", ErrDelivery, err)
		}
	}
	mailLog.Info("mail_sent", slog.String("provider", ProviderSMTP), slog.String("host", m.Host))
	return nil
}
