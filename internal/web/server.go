package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/asheshgoplani/folio/internal/chat"
	"github.com/asheshgoplani/folio/internal/content"
	"github.com/asheshgoplani/folio/internal/logging"
	"github.com/asheshgoplani/folio/internal/mail"
	"github.com/asheshgoplani/folio/internal/statedb"
)

var webLog = logging.ForComponent(logging.CompWeb)

// Config defines runtime options for the web server.
type Config struct {
	ListenAddr string

	// Token protects admin and push-subscription endpoints. Empty disables them.
	Token string

	// Content is the site the pages and APIs serve.
	Content ContentSource

	// Mailer delivers contact submissions. Nil behaves as unconfigured.
	Mailer mail.Mailer

	// Store persists contact messages, visits and push subscriptions. Optional.
	Store *statedb.StateDB

	// ChatMatcher classifies animation names for websocket chat panels.
	ChatMatcher chat.Matcher

	ContactPerMinute int
	TrackVisitors    bool
	TrustProxy       bool
	AllowedOrigins   []string

	PushVAPIDPublicKey  string
	PushVAPIDPrivateKey string
	PushVAPIDSubject    string

	// MailTimeout bounds a single contact send. Default: 15s
	MailTimeout time.Duration
}

// ContentSource provides the current site.
type ContentSource interface {
	Site() *content.Site
	Version() uint64
}

// Server wraps an HTTP server for the portfolio site.
type Server struct {
	cfg        Config
	httpServer *http.Server
	content    ContentSource
	mailer     mail.Mailer
	store      *statedb.StateDB
	push       pushNotifier
	limiter    *clientLimiter
	visitors   *visitorTracker
	upgrader   *websocket.Upgrader
	baseCtx    context.Context
	cancelBase context.CancelFunc

	contentSubscribersMu sync.Mutex
	contentSubscribers   map[chan struct{}]struct{}

	bg sync.WaitGroup
}

// NewServer creates a new web server with base routes and middleware.
func NewServer(cfg Config) *Server {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = "127.0.0.1:8420"
	}
	if cfg.Content == nil {
		cfg.Content = content.NewStaticStore(content.Default())
	}
	if cfg.Mailer == nil {
		cfg.Mailer = mail.New(mail.Config{})
	}
	if cfg.ChatMatcher == nil {
		cfg.ChatMatcher = chat.PrefixMatcher{}
	}
	if cfg.MailTimeout <= 0 {
		cfg.MailTimeout = 15 * time.Second
	}

	s := &Server{
		cfg:                cfg,
		content:            cfg.Content,
		mailer:             cfg.Mailer,
		store:              cfg.Store,
		limiter:            newClientLimiter(cfg.ContactPerMinute),
		contentSubscribers: make(map[chan struct{}]struct{}),
	}
	s.upgrader = newWSUpgrader(cfg.AllowedOrigins)
	s.baseCtx, s.cancelBase = context.WithCancel(context.Background())

	if cfg.Store != nil && cfg.TrackVisitors {
		if v, err := newVisitorTracker(cfg.Store); err != nil {
			webLog.Warn("visitor_tracking_disabled", slog.String("error", err.Error()))
		} else {
			s.visitors = v
		}
	}
	if pushSvc, err := newPushService(cfg); err != nil {
		webLog.Warn("push_disabled", slog.String("error", err.Error()))
	} else if pushSvc != nil {
		s.push = pushSvc
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/sw.js", s.handleServiceWorker)
	mux.Handle("/static/", http.StripPrefix("/static/", s.staticFileServer()))
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/site", s.handleSite)
	mux.HandleFunc("/api/posts", s.handlePosts)
	mux.HandleFunc("/api/posts/", s.handlePostBySlug)
	mux.HandleFunc("/api/send-email", s.handleSendEmail)
	mux.HandleFunc("/api/push/config", s.handlePushConfig)
	mux.HandleFunc("/api/push/subscribe", s.handlePushSubscribe)
	mux.HandleFunc("/api/push/unsubscribe", s.handlePushUnsubscribe)
	mux.HandleFunc("/api/admin/messages", s.handleAdminMessages)
	mux.HandleFunc("/api/admin/stats", s.handleAdminStats)
	mux.HandleFunc("/events/content", s.handleContentEvents)
	mux.HandleFunc("/ws/chat", s.handleChatWS)

	var handler http.Handler = mux
	if s.visitors != nil {
		handler = s.visitors.middleware(handler, s.clientIP)
	}
	handler = withTracing(handler)
	handler = withRecover(handler)

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		BaseContext:       func(_ net.Listener) context.Context { return s.baseCtx },
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          logging.StdLogger(logging.CompHTTP),
	}

	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the configured HTTP handler (used by tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server and blocks until shutdown or error.
// Returns nil on graceful shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if s.visitors != nil {
		s.bg.Add(1)
		go func() {
			defer s.bg.Done()
			s.visitors.runCleanup(s.baseCtx)
		}()
	}
	webLog.Info("web_listening", slog.String("addr", ln.Addr().String()))
	err := s.httpServer.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.cancelBase != nil {
		// Signal long-lived handlers (SSE/WS) to stop promptly.
		s.cancelBase()
	}

	err := s.httpServer.Shutdown(ctx)
	s.bg.Wait()
	if err == nil {
		return nil
	}

	// Long-lived connections may still block graceful shutdown. Force close
	// as a fallback so Ctrl+C exits promptly.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		if closeErr := s.httpServer.Close(); closeErr == nil {
			return nil
		} else {
			return fmt.Errorf("graceful shutdown timed out and force close failed: %w", closeErr)
		}
	}

	return err
}

// NotifyContentChanged wakes every /events/content stream.
func (s *Server) NotifyContentChanged() {
	s.contentSubscribersMu.Lock()
	for ch := range s.contentSubscribers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	s.contentSubscribersMu.Unlock()
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	resp := map[string]any{
		"ok":             true,
		"contentVersion": s.content.Version(),
		"push":           s.push != nil,
		"storage":        s.store != nil,
		"time":           time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				webLog.Error("panic",
					slog.String("recover", fmt.Sprintf("%v", rec)),
					slog.String("path", r.URL.Path))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) String() string {
	return fmt.Sprintf("web-server(addr=%s, push=%t, storage=%t)", s.cfg.ListenAddr, s.push != nil, s.store != nil)
}

func (s *Server) subscribeContentChanges() chan struct{} {
	ch := make(chan struct{}, 1)
	s.contentSubscribersMu.Lock()
	s.contentSubscribers[ch] = struct{}{}
	s.contentSubscribersMu.Unlock()
	return ch
}

func (s *Server) unsubscribeContentChanges(ch chan struct{}) {
	if ch == nil {
		return
	}
	s.contentSubscribersMu.Lock()
	if _, ok := s.contentSubscribers[ch]; ok {
		delete(s.contentSubscribers, ch)
		close(ch)
	}
	s.contentSubscribersMu.Unlock()
}

// clientIP is the request's client address, honoring X-Forwarded-For only
// when TrustProxy is set.
func (s *Server) clientIP(r *http.Request) string {
	if s.cfg.TrustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
