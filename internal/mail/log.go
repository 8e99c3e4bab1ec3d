package mail

import (
	"context"
	"log/slog"
	"sync"
)

// LogMailer records submissions in the log instead of sending them. It keeps
// the last few in memory for inspection.
type LogMailer struct {
	Recipient string

	mu   sync.Mutex
	sent []ContactRequest
}

func (m *LogMailer) Send(_ context.Context, req ContactRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	m.sent = append(m.sent, req)
	if len(m.sent) > 50 {
		m.sent = m.sent[len(m.sent)-50:]
	}
	m.mu.Unlock()

	mailLog.Info("mail_logged",
		slog.String("to", m.Recipient),
		slog.String("subject", req.Subject()),
		slog.String("reply_to", req.Email),
		slog.Int("message_len", len(req.Message)))
	return nil
}

// Sent returns a copy of the logged requests, oldest first.
func (m *LogMailer) Sent() []ContactRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ContactRequest(nil), m.sent...)
}
