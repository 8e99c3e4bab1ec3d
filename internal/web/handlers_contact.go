package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/asheshgoplani/folio/internal/mail"
	"github.com/asheshgoplani/folio/internal/statedb"
)

// Response bodies of /api/send-email. Clients match on these strings.
const (
	msgMethodNotAllowed = "Method Not Allowed"
	msgMissingFields    = "Name, email, and message are required."
	msgTooManyRequests  = "Too many requests. Please try again later."
	msgConfigError      = "Server configuration error."
	msgSendError        = "Error sending email."
	msgUnexpected       = "An unexpected error occurred."
	msgSent             = "Email sent successfully."
)

const maxContactBody = 64 << 10

type contactResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleSendEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, contactResponse{Message: msgMethodNotAllowed})
		return
	}

	client := s.clientIP(r)
	if !s.limiter.Allow(client) {
		webLog.Warn("contact_rate_limited", slog.String("client", hashClient(client)))
		writeJSON(w, http.StatusTooManyRequests, contactResponse{Message: msgTooManyRequests})
		return
	}

	var req mail.ContactRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxContactBody)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgMissingFields})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgMissingFields})
		return
	}

	status, body := s.deliverContact(r.Context(), req, client)
	writeJSON(w, status, contactResponse{Message: body})
}

// deliverContact stores, sends and announces one validated request and maps
// the outcome to a status and response message.
func (s *Server) deliverContact(ctx context.Context, req mail.ContactRequest, client string) (status int, body string) {
	msg := &statedb.ContactMessage{
		ID:         uuid.NewString(),
		Name:       req.Name,
		Email:      req.Email,
		Message:    req.Message,
		ClientHash: hashClient(client),
	}
	stored := false
	if s.store != nil {
		if err := s.store.SaveContactMessage(msg); err != nil {
			webLog.Error("contact_store_failed", slog.String("error", err.Error()))
		} else {
			stored = true
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.MailTimeout)
	err := s.sendMail(sendCtx, req)
	cancel()

	switch {
	case err == nil:
		status, body = http.StatusOK, msgSent
	case errors.Is(err, mail.ErrNotConfigured):
		status, body = http.StatusInternalServerError, msgConfigError
	case errors.Is(err, mail.ErrDelivery):
		status, body = http.StatusInternalServerError, msgSendError
	case errors.Is(err, mail.ErrMissingFields):
		status, body = http.StatusBadRequest, msgMissingFields
	default:
		status, body = http.StatusInternalServerError, msgUnexpected
	}

	if err != nil {
		webLog.Error("contact_send_failed",
			slog.String("id", msg.ID),
			slog.Int("status", status),
			slog.String("error", err.Error()))
	} else {
		webLog.Info("contact_sent", slog.String("id", msg.ID))
	}

	if stored {
		next, errText := statedb.StatusSent, ""
		if err != nil {
			next, errText = statedb.StatusFailed, err.Error()
		}
		if serr := s.store.SetMessageStatus(msg.ID, next, errText); serr != nil {
			webLog.Warn("contact_status_update_failed", slog.String("error", serr.Error()))
		}
		msg.Status = next
	}

	if s.push != nil {
		s.bg.Add(1)
		go func() {
			defer s.bg.Done()
			s.push.NotifyContact(s.baseCtx, msg)
		}()
	}
	return status, body
}

// sendMail calls the mailer, turning a panic into an ordinary error.
func (s *Server) sendMail(ctx context.Context, req mail.ContactRequest) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("mailer panic: %v", rec)
		}
	}()
	return s.mailer.Send(ctx, req)
}
