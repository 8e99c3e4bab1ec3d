package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/asheshgoplani/folio/internal/chat"
)

const (
	wsWriteTimeout   = 10 * time.Second
	wsMaxMessageSize = 8 << 10
	maxQuestionLen   = 500
)

type wsClientMessage struct {
	Type string `json:"type"`
	Name string `json:"name,omitempty"`
	Text string `json:"text,omitempty"`
}

type wsChatState struct {
	State          string   `json:"state"`
	PanelClass     string   `json:"panelClass"`
	PanelRendered  bool     `json:"panelRendered"`
	OverlayVisible bool     `json:"overlayVisible"`
	OverlayClass   string   `json:"overlayClass"`
	BodyClasses    []string `json:"bodyClasses"`
	Focus          bool     `json:"focus,omitempty"`
}

type wsServerMessage struct {
	Type     string       `json:"type"` // state, answer, pong, error
	State    *wsChatState `json:"state,omitempty"`
	Question string       `json:"question,omitempty"`
	Answer   string       `json:"answer,omitempty"`
	Code     string       `json:"code,omitempty"`
	Message  string       `json:"message,omitempty"`
	Time     time.Time    `json:"time,omitempty"`
}

type wsConnWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func newWSConnWriter(conn *websocket.Conn) *wsConnWriter {
	return &wsConnWriter{conn: conn}
}

func (w *wsConnWriter) WriteJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.conn.WriteJSON(v)
}

func newWSUpgrader(allowed []string) *websocket.Upgrader {
	hosts := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			origin = u.Host
		}
		hosts[strings.ToLower(origin)] = struct{}{}
	}
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			return allowWSOrigin(r, hosts)
		},
	}
}

// allowWSOrigin accepts requests without an Origin header, same-host origins
// and origins whose host is in allowed.
func allowWSOrigin(r *http.Request, allowed map[string]struct{}) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil || originURL.Host == "" {
		return false
	}
	if strings.EqualFold(originURL.Host, r.Host) {
		return true
	}
	_, ok := allowed[strings.ToLower(originURL.Host)]
	return ok
}

// chatSession is one visitor's panel: a controller, the body class list it
// locks, and the socket it reports to. Only the read loop touches it.
type chatSession struct {
	ctrl   *chat.Controller
	body   *chat.ClassList
	writer *wsConnWriter
	site   ContentSource
	log    *slog.Logger
}

func newChatSession(matcher chat.Matcher, site ContentSource, writer *wsConnWriter, remote string) *chatSession {
	body := &chat.ClassList{}
	log := webLog.With(slog.String("remote", remote))
	cs := &chatSession{
		body:   body,
		writer: writer,
		site:   site,
		log:    log,
	}
	cs.ctrl = chat.NewController(chat.Options{
		Lock:    chat.NewBodyLock(body),
		Matcher: matcher,
		Logger:  log,
	})
	cs.ctrl.OnChange(func(chat.Snapshot) { cs.sendState() })
	return cs
}

func (cs *chatSession) stateMessage() wsServerMessage {
	snap := cs.ctrl.Snapshot()
	return wsServerMessage{
		Type: "state",
		State: &wsChatState{
			State:          snap.State.String(),
			PanelClass:     snap.PanelClass,
			PanelRendered:  snap.PanelRendered,
			OverlayVisible: snap.OverlayVisible,
			OverlayClass:   string(snap.OverlayClass),
			BodyClasses:    cs.body.Names(),
			Focus:          cs.ctrl.ConsumeFocus(),
		},
		Time: time.Now().UTC(),
	}
}

func (cs *chatSession) sendState() {
	_ = cs.writer.WriteJSON(cs.stateMessage())
}

func (cs *chatSession) sendError(code, message string) {
	_ = cs.writer.WriteJSON(wsServerMessage{
		Type:    "error",
		Code:    code,
		Message: message,
		Time:    time.Now().UTC(),
	})
}

// handle applies one client message. Transitions that the controller rejects
// produce no reply; the client already holds the current state.
func (cs *chatSession) handle(msg wsClientMessage) {
	switch msg.Type {
	case "open":
		cs.ctrl.OpenChat()
	case "close":
		cs.ctrl.RequestClose()
	case "animationend":
		cs.ctrl.AnimationEnd(msg.Name)
	case "overlayend":
		cs.ctrl.OverlayAnimationEnd()
	case "sync":
		cs.sendState()
	case "ping":
		_ = cs.writer.WriteJSON(wsServerMessage{Type: "pong", Time: time.Now().UTC()})
	case "ask":
		cs.ask(msg.Text)
	default:
		cs.sendError("UNSUPPORTED_MESSAGE", "supported message types: open,close,animationend,overlayend,ask,sync,ping")
	}
}

// clipRunes cuts s to at most n runes without splitting one.
func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func (cs *chatSession) ask(question string) {
	if cs.ctrl.State() != chat.StateOpen {
		cs.sendError("CHAT_CLOSED", "chat panel is not open")
		return
	}
	question = clipRunes(strings.TrimSpace(question), maxQuestionLen)
	answer := cs.site.Site().Answer(question)
	cs.log.Debug("chat_answered", slog.Int("question_len", len(question)))
	_ = cs.writer.WriteJSON(wsServerMessage{
		Type:     "answer",
		Question: question,
		Answer:   answer,
		Time:     time.Now().UTC(),
	})
}

func (s *Server) handleChatWS(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeAPIError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageSize)

	// Unblock the read loop on shutdown.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.baseCtx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	writer := newWSConnWriter(conn)
	cs := newChatSession(s.cfg.ChatMatcher, s.content, writer, s.clientIP(r))
	defer cs.ctrl.Close()

	cs.sendState()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				cs.log.Warn("websocket_closed_unexpectedly", slog.String("error", err.Error()))
			}
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			cs.sendError("INVALID_MESSAGE", "invalid json payload")
			continue
		}
		cs.handle(msg)
	}
}
