package web

import (
	"bufio"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/asheshgoplani/folio/internal/content"
	"github.com/asheshgoplani/folio/internal/mail"
	"github.com/asheshgoplani/folio/internal/statedb"
)

// mutableContent is a ContentSource tests can swap sites on.
type mutableContent struct {
	mu      sync.Mutex
	site    *content.Site
	version uint64
}

func newMutableContent(site *content.Site) *mutableContent {
	return &mutableContent{site: site, version: 1}
}

func (m *mutableContent) Site() *content.Site {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.site
}

func (m *mutableContent) Version() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version
}

func (m *mutableContent) Set(site *content.Site) {
	m.mu.Lock()
	m.site = site
	m.version++
	m.mu.Unlock()
}

type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []mail.ContactRequest
}

func (f *fakeMailer) Send(_ context.Context, req mail.ContactRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func newTestStore(t *testing.T) *statedb.StateDB {
	t.Helper()
	db, err := statedb.Open(filepath.Join(t.TempDir(), statedb.FileName))
	if err != nil {
		t.Fatalf("open statedb: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("migrate statedb: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func serve(srv *Server, method, target string, body io.Reader, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	return rr
}

func readSSEEvent(reader *bufio.Reader) (string, string, error) {
	var event string
	var data strings.Builder
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			if event == "" && data.Len() == 0 {
				continue
			}
			return event, data.String(), nil
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if strings.HasPrefix(line, "event: ") {
			event = strings.TrimPrefix(line, "event: ")
			continue
		}
		if strings.HasPrefix(line, "data: ") {
			data.WriteString(strings.TrimPrefix(line, "data: "))
		}
	}
}

func wsURL(baseURL, path string) string {
	if strings.HasPrefix(baseURL, "https://") {
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + path
	}
	return "ws://" + strings.TrimPrefix(baseURL, "http://") + path
}
