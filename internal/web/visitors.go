package web

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/asheshgoplani/folio/internal/statedb"
)

const (
	visitorSaltKey       = "visitor_salt"
	visitorRetention     = 365 * 24 * time.Hour
	visitorCleanupPeriod = 24 * time.Hour
	maxVisitFieldLen     = 256
)

// Paths that are never counted as page views.
var untrackedPrefixes = []string{
	"/static/", "/api/", "/events/", "/ws/", "/healthz", "/sw.js", "/favicon",
}

// visitorTracker records anonymized page views. The client address is only
// ever stored as a salted hash.
type visitorTracker struct {
	store *statedb.StateDB
	salt  string
	now   func() time.Time
}

func newVisitorTracker(store *statedb.StateDB) (*visitorTracker, error) {
	if store == nil {
		return nil, errors.New("visitor tracking requires a store")
	}
	salt, err := store.GetMeta(visitorSaltKey)
	if err != nil {
		return nil, fmt.Errorf("load visitor salt: %w", err)
	}
	if salt == "" {
		salt = uuid.NewString()
		if err := store.SetMeta(visitorSaltKey, salt); err != nil {
			return nil, fmt.Errorf("save visitor salt: %w", err)
		}
	}
	return &visitorTracker{store: store, salt: salt, now: time.Now}, nil
}

func (v *visitorTracker) middleware(next http.Handler, ipFunc func(*http.Request) string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if v.shouldTrack(r) {
			v.record(r, ipFunc(r))
		}
		next.ServeHTTP(w, r)
	})
}

func (v *visitorTracker) shouldTrack(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if r.Header.Get("DNT") == "1" || r.Header.Get("Sec-GPC") == "1" {
		return false
	}
	for _, prefix := range untrackedPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	return true
}

func (v *visitorTracker) record(r *http.Request, ip string) {
	visit := &statedb.Visit{
		IPHash:    v.hash(ip),
		Path:      truncate(r.URL.Path, maxVisitFieldLen),
		UserAgent: truncate(r.UserAgent(), maxVisitFieldLen),
		Referrer:  truncate(r.Referer(), maxVisitFieldLen),
		VisitedAt: v.now().UTC(),
	}
	if err := v.store.RecordVisit(visit); err != nil {
		webLog.Warn("visit_record_failed", slog.String("error", err.Error()))
	}
}

func (v *visitorTracker) hash(ip string) string {
	sum := sha256.Sum256([]byte(ip + v.salt))
	return hex.EncodeToString(sum[:])[:16]
}

// runCleanup deletes visits older than the retention window once at start
// and then daily until ctx is done.
func (v *visitorTracker) runCleanup(ctx context.Context) {
	ticker := time.NewTicker(visitorCleanupPeriod)
	defer ticker.Stop()
	for {
		v.cleanup()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (v *visitorTracker) cleanup() {
	n, err := v.store.CleanupVisits(v.now().Add(-visitorRetention))
	if err != nil {
		webLog.Warn("visit_cleanup_failed", slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		webLog.Info("visit_cleanup", slog.Int64("deleted", n))
	}
}

// hashClient shortens a client address for logs and stored messages.
func hashClient(client string) string {
	sum := sha256.Sum256([]byte(client))
	return hex.EncodeToString(sum[:])[:12]
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
