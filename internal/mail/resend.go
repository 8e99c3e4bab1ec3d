package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	APIKey    string
	BaseURL   string
	From      string
	Recipient string
	Client    *http.Client
}

// NewResendMailer builds a ResendMailer from cfg.
func NewResendMailer(cfg Config) *ResendMailer {
	return &ResendMailer{
		APIKey:    cfg.ResendAPIKey,
		BaseURL:   strings.TrimRight(cfg.ResendBaseURL, "/"),
		From:      cfg.From,
		Recipient: cfg.Recipient,
		Client:    &http.Client{Timeout: cfg.Timeout},
	}
}

type resendEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	ReplyTo string   `json:"reply_to"`
	HTML    string   `json:"html"`
}

type resendResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

func (m *ResendMailer) Send(ctx context.Context, req ContactRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	html, err := RenderHTML(req)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(resendEmail{
		From:    m.From,
		To:      []string{m.Recipient},
		Subject: req.Subject(),
		ReplyTo: headerSafe(req.Email),
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("mail: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("mail: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+m.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var decoded resendResponse
	_ = json.Unmarshal(body, &decoded)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := decoded.Message
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return fmt.Errorf("%w: resend status %d: %s", ErrDelivery, resp.StatusCode, detail)
	}

	mailLog.Info("mail_sent",
		slog.String("provider", ProviderResend),
		slog.String("id", decoded.ID))
	return nil
}
