package web

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

var contentEventsHeartbeatInterval = 15 * time.Second

// sseStream writes server-sent events and flushes after each one.
type sseStream struct {
	w http.ResponseWriter
	f http.Flusher
}

func openSSE(w http.ResponseWriter) (*sseStream, bool) {
	f, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	return &sseStream{w: w, f: f}, true
}

// send writes one event. id is omitted when empty.
func (s *sseStream) send(event, id string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if id != "" {
		if _, err := fmt.Fprintf(s.w, "id: %s\n", id); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

func (s *sseStream) comment(text string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", text); err != nil {
		return err
	}
	s.f.Flush()
	return nil
}

// handleContentEvents streams "site" events: the current site on connect,
// then again after each reload that changed it.
func (s *Server) handleContentEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}
	stream, ok := openSSE(w)
	if !ok {
		writeAPIError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "stream unavailable")
		return
	}

	changes := s.subscribeContentChanges()
	defer s.unsubscribeContentChanges(changes)

	sent := ""
	push := func() error {
		snap := s.siteSnapshot()
		fp := siteFingerprint(snap)
		if fp == sent {
			return nil
		}
		if err := stream.send("site", strconv.FormatUint(snap.Version, 10), snap); err != nil {
			return err
		}
		sent = fp
		return nil
	}
	if push() != nil {
		return
	}

	heartbeat := time.NewTicker(contentEventsHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		var err error
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			err = stream.comment("keepalive")
		case _, open := <-changes:
			if !open {
				return
			}
			err = push()
		}
		if err != nil {
			return
		}
	}
}

// siteFingerprint hashes the site body. The version counter is left out so
// a reload that changed nothing is not re-sent.
func siteFingerprint(resp siteResponse) string {
	raw, err := json.Marshal(resp.Site)
	if err != nil {
		return "marshal-error"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
