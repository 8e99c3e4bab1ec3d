package web

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

const maxPushBody = 16 << 10

// handlePushConfig tells the page whether it can offer notifications. The
// public key goes to anyone; the subject and subscriber count only to the
// owner.
func (s *Server) handlePushConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	resp := struct {
		Enabled           bool   `json:"enabled"`
		VAPIDPublicKey    string `json:"vapidPublicKey,omitempty"`
		Subject           string `json:"subject,omitempty"`
		SubscriptionCount int    `json:"subscriptionCount,omitempty"`
	}{Enabled: s.push != nil}
	if s.push != nil {
		resp.VAPIDPublicKey = s.push.PublicKey()
		if s.authorizeRequest(r) {
			resp.Subject = s.push.Subject()
			resp.SubscriptionCount, _ = s.push.Subscribers(r.Context())
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// pushOwnerPOST runs the checks shared by subscribe and unsubscribe.
func (s *Server) pushOwnerPOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return false
	}
	if !s.requireOwner(w, r) {
		return false
	}
	if s.push == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "PUSH_NOT_CONFIGURED", "push notifications are not configured")
		return false
	}
	return true
}

func (s *Server) handlePushSubscribe(w http.ResponseWriter, r *http.Request) {
	if !s.pushOwnerPOST(w, r) {
		return
	}
	var sub pushSubscription
	if err := json.NewDecoder(io.LimitReader(r.Body, maxPushBody)).Decode(&sub); err != nil {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid subscription payload")
		return
	}
	sub, err := sub.clean()
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if err := s.push.Subscribe(r.Context(), sub); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to save push subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "subscription saved"})
}

func (s *Server) handlePushUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if !s.pushOwnerPOST(w, r) {
		return
	}
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	_ = json.NewDecoder(io.LimitReader(r.Body, maxPushBody)).Decode(&req)
	endpoint := strings.TrimSpace(req.Endpoint)
	if endpoint == "" {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "endpoint is required")
		return
	}
	if err := s.push.Unsubscribe(r.Context(), endpoint); err != nil {
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to remove push subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "message": "subscription removed"})
}
