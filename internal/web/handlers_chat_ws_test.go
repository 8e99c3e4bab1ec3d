package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/asheshgoplani/folio/internal/chat"
)

func dialChat(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()
	testServer := httptest.NewServer(srv.Handler())
	t.Cleanup(testServer.Close)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(testServer.URL, "/ws/chat"), nil)
	if err != nil {
		t.Fatalf("dial chat websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readServerMessage(t *testing.T, conn *websocket.Conn) wsServerMessage {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg wsServerMessage
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read server message: %v", err)
	}
	return msg
}

func readState(t *testing.T, conn *websocket.Conn) *wsChatState {
	t.Helper()
	msg := readServerMessage(t, conn)
	if msg.Type != "state" || msg.State == nil {
		t.Fatalf("expected state message, got %+v", msg)
	}
	return msg.State
}

func sendClient(t *testing.T, conn *websocket.Conn, msg wsClientMessage) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write client message: %v", err)
	}
}

func hasClass(classes []string, want string) bool {
	for _, c := range classes {
		if c == want {
			return true
		}
	}
	return false
}

func TestChatWSFullCycle(t *testing.T) {
	conn := dialChat(t, NewServer(Config{ListenAddr: "127.0.0.1:0"}))

	st := readState(t, conn)
	if st.State != "idle" || st.PanelRendered || st.OverlayVisible {
		t.Fatalf("expected idle initial state, got %+v", st)
	}

	sendClient(t, conn, wsClientMessage{Type: "open"})
	st = readState(t, conn)
	if st.State != "opening" || st.PanelClass != chat.DefaultPanelBase+" is-opening" {
		t.Fatalf("expected opening, got %+v", st)
	}
	if !hasClass(st.BodyClasses, chat.BodyOpenClass) {
		t.Fatalf("expected body lock while opening, got %v", st.BodyClasses)
	}
	if st.OverlayClass != string(chat.OverlayEntering) || !st.OverlayVisible {
		t.Fatalf("expected entering overlay, got %+v", st)
	}

	sendClient(t, conn, wsClientMessage{Type: "animationend", Name: chat.AnimOpenDesktop})
	st = readState(t, conn)
	if st.State != "open" || !st.Focus {
		t.Fatalf("expected open with focus, got %+v", st)
	}

	sendClient(t, conn, wsClientMessage{Type: "sync"})
	st = readState(t, conn)
	if st.Focus {
		t.Fatalf("focus must be requested only once per open")
	}

	sendClient(t, conn, wsClientMessage{Type: "close"})
	st = readState(t, conn)
	if st.State != "closing" || hasClass(st.BodyClasses, chat.BodyOpenClass) {
		t.Fatalf("expected closing without body lock, got %+v", st)
	}
	if st.OverlayClass != string(chat.OverlayExiting) {
		t.Fatalf("expected exiting overlay, got %+v", st)
	}

	sendClient(t, conn, wsClientMessage{Type: "overlayend"})
	st = readState(t, conn)
	if st.OverlayVisible {
		t.Fatalf("expected overlay unmounted, got %+v", st)
	}

	sendClient(t, conn, wsClientMessage{Type: "animationend", Name: chat.AnimCloseMobile})
	st = readState(t, conn)
	if st.State != "idle" || st.PanelRendered {
		t.Fatalf("expected idle, got %+v", st)
	}
}

func TestChatWSIgnoresInvalidTransitions(t *testing.T) {
	conn := dialChat(t, NewServer(Config{ListenAddr: "127.0.0.1:0"}))
	readState(t, conn)

	// Rejected transitions produce no reply, so the next message read is
	// the pong.
	sendClient(t, conn, wsClientMessage{Type: "close"})
	sendClient(t, conn, wsClientMessage{Type: "animationend", Name: "fade-in"})
	sendClient(t, conn, wsClientMessage{Type: "ping"})
	if msg := readServerMessage(t, conn); msg.Type != "pong" {
		t.Fatalf("expected pong, got %+v", msg)
	}

	sendClient(t, conn, wsClientMessage{Type: "open"})
	readState(t, conn)
	sendClient(t, conn, wsClientMessage{Type: "open"})
	sendClient(t, conn, wsClientMessage{Type: "ping"})
	if msg := readServerMessage(t, conn); msg.Type != "pong" {
		t.Fatalf("expected repeated open to be absorbed, got %+v", msg)
	}
}

func TestChatWSAsk(t *testing.T) {
	conn := dialChat(t, NewServer(Config{ListenAddr: "127.0.0.1:0"}))
	readState(t, conn)

	sendClient(t, conn, wsClientMessage{Type: "ask", Text: "projects?"})
	msg := readServerMessage(t, conn)
	if msg.Type != "error" || msg.Code != "CHAT_CLOSED" {
		t.Fatalf("expected CHAT_CLOSED while idle, got %+v", msg)
	}

	sendClient(t, conn, wsClientMessage{Type: "open"})
	readState(t, conn)
	sendClient(t, conn, wsClientMessage{Type: "animationend", Name: chat.AnimOpenMobile})
	readState(t, conn)

	sendClient(t, conn, wsClientMessage{Type: "ask", Text: "What projects have you built?"})
	msg = readServerMessage(t, conn)
	if msg.Type != "answer" || msg.Answer == "" {
		t.Fatalf("expected answer, got %+v", msg)
	}

	// One byte short of the limit before a two-byte rune.
	long := strings.Repeat("a", maxQuestionLen-1) + strings.Repeat("é", 10)
	sendClient(t, conn, wsClientMessage{Type: "ask", Text: long})
	msg = readServerMessage(t, conn)
	if !utf8.ValidString(msg.Question) || strings.ContainsRune(msg.Question, utf8.RuneError) {
		t.Fatalf("expected valid utf-8 question, got %q", msg.Question)
	}
	if n := utf8.RuneCountInString(msg.Question); n != maxQuestionLen {
		t.Fatalf("expected %d runes, got %d", maxQuestionLen, n)
	}
	if !strings.HasSuffix(msg.Question, "aé") {
		t.Fatalf("expected question cut after the first rune, got suffix %q", msg.Question[len(msg.Question)-4:])
	}
}

func TestClipRunes(t *testing.T) {
	if got := clipRunes("héllo", 2); got != "hé" {
		t.Fatalf("clipRunes = %q, want hé", got)
	}
	if got := clipRunes("hi", 5); got != "hi" {
		t.Fatalf("clipRunes = %q, want hi", got)
	}
}

func TestChatWSExactMatcher(t *testing.T) {
	conn := dialChat(t, NewServer(Config{ListenAddr: "127.0.0.1:0", ChatMatcher: chat.ExactMatcher{}}))
	readState(t, conn)

	sendClient(t, conn, wsClientMessage{Type: "open"})
	readState(t, conn)
	sendClient(t, conn, wsClientMessage{Type: "animationend", Name: "open-pill-tablet"})
	sendClient(t, conn, wsClientMessage{Type: "sync"})
	if st := readState(t, conn); st.State != "opening" {
		t.Fatalf("expected exact matcher to ignore variant, got %+v", st)
	}
}

func TestChatWSUnsupportedAndInvalid(t *testing.T) {
	conn := dialChat(t, NewServer(Config{ListenAddr: "127.0.0.1:0"}))
	readState(t, conn)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readServerMessage(t, conn); msg.Code != "INVALID_MESSAGE" {
		t.Fatalf("expected INVALID_MESSAGE, got %+v", msg)
	}

	sendClient(t, conn, wsClientMessage{Type: "resize"})
	if msg := readServerMessage(t, conn); msg.Code != "UNSUPPORTED_MESSAGE" {
		t.Fatalf("expected UNSUPPORTED_MESSAGE, got %+v", msg)
	}
}

func TestChatWSOriginCheck(t *testing.T) {
	srv := NewServer(Config{ListenAddr: "127.0.0.1:0", AllowedOrigins: []string{"https://portfolio.example.com"}})
	testServer := httptest.NewServer(srv.Handler())
	defer testServer.Close()

	header := http.Header{}
	header.Set("Origin", "https://evil.example.com")
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(testServer.URL, "/ws/chat"), header)
	if err == nil {
		t.Fatal("expected dial error for foreign origin")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign origin, got %+v", resp)
	}

	header.Set("Origin", "https://portfolio.example.com")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(testServer.URL, "/ws/chat"), header)
	if err != nil {
		t.Fatalf("expected allowlisted origin to connect: %v", err)
	}
	conn.Close()
}
