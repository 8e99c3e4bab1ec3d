package web

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/asheshgoplani/folio/internal/statedb"
)

func TestAdminEndpointsRequireOwner(t *testing.T) {
	open := NewServer(Config{ListenAddr: "127.0.0.1:0", Store: newTestStore(t)})
	for _, path := range []string{"/api/admin/messages", "/api/admin/stats"} {
		rr := serve(open, http.MethodGet, path, nil)
		if rr.Code != http.StatusForbidden || !strings.Contains(rr.Body.String(), "OWNER_DISABLED") {
			t.Fatalf("%s: expected OWNER_DISABLED, got %d: %s", path, rr.Code, rr.Body.String())
		}
	}

	guarded := NewServer(Config{ListenAddr: "127.0.0.1:0", Token: "secret-token", Store: newTestStore(t)})
	for _, path := range []string{"/api/admin/messages", "/api/admin/stats?token=nope"} {
		rr := serve(guarded, http.MethodGet, path, nil)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status %d, got %d", path, http.StatusUnauthorized, rr.Code)
		}
	}
}

func TestAdminMessages(t *testing.T) {
	store := newTestStore(t)
	base := time.Now().Add(-time.Hour)
	for i, status := range []string{statedb.StatusSent, statedb.StatusFailed, statedb.StatusSent} {
		err := store.SaveContactMessage(&statedb.ContactMessage{
			ID:        "m" + string(rune('1'+i)),
			Name:      "Ada",
			Email:     "ada@example.com",
			Message:   "hi",
			Status:    status,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("save message: %v", err)
		}
	}
	srv := NewServer(Config{ListenAddr: "127.0.0.1:0", Token: "secret-token", Store: store})

	rr := serve(srv, http.MethodGet, "/api/admin/messages?limit=2", nil, "Authorization", "Bearer secret-token")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	var resp adminMessagesResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Messages) != 2 || resp.Messages[0].ID != "m3" {
		t.Fatalf("expected newest two messages, got %+v", resp.Messages)
	}
	if resp.Counts[statedb.StatusSent] != 2 || resp.Counts[statedb.StatusFailed] != 1 {
		t.Fatalf("unexpected counts %v", resp.Counts)
	}
	if strings.Contains(rr.Body.String(), "clientHash") {
		t.Fatalf("client hash must not be exposed")
	}

	rr = serve(srv, http.MethodGet, "/api/admin/messages?limit=abc", nil, "Authorization", "Bearer secret-token")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for bad limit, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestAdminStats(t *testing.T) {
	store := newTestStore(t)
	now := time.Now()
	visits := []statedb.Visit{
		{IPHash: "a", Path: "/", VisitedAt: now},
		{IPHash: "a", Path: "/blog/x", VisitedAt: now},
		{IPHash: "b", Path: "/", VisitedAt: now},
		{IPHash: "c", Path: "/", VisitedAt: now.AddDate(0, 0, -60)},
	}
	for i := range visits {
		if err := store.RecordVisit(&visits[i]); err != nil {
			t.Fatalf("record visit: %v", err)
		}
	}
	srv := NewServer(Config{ListenAddr: "127.0.0.1:0", Token: "secret-token", Store: store})

	rr := serve(srv, http.MethodGet, "/api/admin/stats?days=30&token=secret-token", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	var resp adminStatsResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Days != 30 || resp.Stats.TotalVisits != 3 || resp.Stats.UniqueVisitors != 2 {
		t.Fatalf("unexpected stats %+v", resp)
	}
	if len(resp.Stats.TopPaths) == 0 || resp.Stats.TopPaths[0].Path != "/" {
		t.Fatalf("expected / as top path, got %+v", resp.Stats.TopPaths)
	}

	rr = serve(srv, http.MethodGet, "/api/admin/stats?days=0&token=secret-token", nil)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d for days=0, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestAdminWithoutStore(t *testing.T) {
	srv := NewServer(Config{ListenAddr: "127.0.0.1:0", Token: "secret-token"})
	rr := serve(srv, http.MethodGet, "/api/admin/messages?token=secret-token", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
}
