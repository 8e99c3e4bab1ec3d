package web

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// ownerToken returns the token a request presents: the Authorization bearer
// value, else the token query parameter (EventSource and WebSocket clients
// cannot set headers).
func ownerToken(r *http.Request) string {
	if scheme, value, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " "); ok && strings.EqualFold(scheme, "Bearer") {
		if v := strings.TrimSpace(value); v != "" {
			return v
		}
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// authorizeRequest reports whether r carries the configured token. With no
// token configured nobody is the owner.
func (s *Server) authorizeRequest(r *http.Request) bool {
	want := s.cfg.Token
	got := ownerToken(r)
	if want == "" || got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// requireOwner gates the inbox and push endpoints. It writes the error and
// returns false for anyone but the owner.
func (s *Server) requireOwner(w http.ResponseWriter, r *http.Request) bool {
	switch {
	case s.cfg.Token == "":
		writeAPIError(w, http.StatusForbidden, "OWNER_DISABLED", "owner endpoints are disabled; set web.token")
	case !s.authorizeRequest(r):
		writeAPIError(w, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
	default:
		return true
	}
	return false
}
