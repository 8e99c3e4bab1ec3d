package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/asheshgoplani/folio/internal/statedb"
)

const (
	defaultAdminMessageLimit = 50
	maxAdminMessageLimit     = 500
	defaultStatsDays         = 30
	maxStatsDays             = 365
	statsTopPaths            = 10
)

type adminMessagesResponse struct {
	Messages []*statedb.ContactMessage `json:"messages"`
	Counts   map[string]int            `json:"counts"`
}

type adminStatsResponse struct {
	Days  int                  `json:"days"`
	Since time.Time            `json:"since"`
	Stats statedb.VisitorStats `json:"stats"`
}

func (s *Server) handleAdminMessages(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	if !s.requireOwner(w, r) {
		return
	}
	if s.store == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "STORAGE_DISABLED", "message storage is not configured")
		return
	}

	limit, ok := queryInt(r, "limit", defaultAdminMessageLimit, 1, maxAdminMessageLimit)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
		return
	}

	msgs, err := s.store.ListContactMessages(limit)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load messages")
		return
	}
	counts, err := s.store.CountMessagesByStatus()
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to count messages")
		return
	}
	writeJSON(w, http.StatusOK, adminMessagesResponse{Messages: msgs, Counts: counts})
}

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	if !s.requireOwner(w, r) {
		return
	}
	if s.store == nil {
		writeAPIError(w, http.StatusServiceUnavailable, "STORAGE_DISABLED", "visitor storage is not configured")
		return
	}

	days, ok := queryInt(r, "days", defaultStatsDays, 1, maxStatsDays)
	if !ok {
		writeAPIError(w, http.StatusBadRequest, "INVALID_REQUEST", "days must be a positive integer")
		return
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	stats, err := s.store.VisitorStats(since, statsTopPaths)
	if err != nil {
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load visitor stats")
		return
	}
	writeJSON(w, http.StatusOK, adminStatsResponse{Days: days, Since: since, Stats: stats})
}

// queryInt parses an integer query parameter of at least lo, clamping it to hi.
// A missing parameter yields def.
func queryInt(r *http.Request, key string, def, lo, hi int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo {
		return 0, false
	}
	if n > hi {
		n = hi
	}
	return n, true
}
