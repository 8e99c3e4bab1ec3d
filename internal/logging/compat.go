package logging

import (
	"bytes"
	"context"
	"log"
	"log/slog"
	"strings"
)

// BridgeWriter adapts stdlib log output (net/http's ErrorLog, for one) into
// slog records. A leading "http: " or "[name] " prefix becomes the component.
type BridgeWriter struct {
	component string
}

// NewBridgeWriter creates a writer whose records default to component.
func NewBridgeWriter(component string) *BridgeWriter {
	return &BridgeWriter{component: component}
}

// StdLogger returns a *log.Logger that writes through a BridgeWriter.
func StdLogger(component string) *log.Logger {
	return log.New(NewBridgeWriter(component), "", 0)
}

// Write implements io.Writer. Each call is one record.
func (bw *BridgeWriter) Write(p []byte) (int, error) {
	n := len(p)
	msg := strings.TrimSpace(string(bytes.TrimSpace(p)))
	if msg == "" {
		return n, nil
	}
	msg = stripLogTimestamp(msg)

	component := bw.component
	switch {
	case strings.HasPrefix(msg, "http: "):
		component = CompHTTP
		msg = strings.TrimPrefix(msg, "http: ")
	case strings.HasPrefix(msg, "["):
		if idx := strings.Index(msg, "] "); idx > 0 {
			component = strings.ToLower(msg[1:idx])
			msg = msg[idx+2:]
		}
	}

	level := slog.LevelInfo
	lower := strings.ToLower(msg)
	if strings.Contains(lower, "error") || strings.Contains(lower, "panic") {
		level = slog.LevelWarn
	}
	Logger().Log(context.Background(), level, msg, slog.String("component", component))
	return n, nil
}

// stripLogTimestamp removes "HH:MM:SS " or "HH:MM:SS.ffffff " prefixes that
// log.SetFlags adds.
func stripLogTimestamp(s string) string {
	if len(s) > 16 && s[2] == ':' && s[5] == ':' && s[8] == '.' && s[15] == ' ' {
		return s[16:]
	}
	if len(s) > 9 && s[2] == ':' && s[5] == ':' && s[8] == ' ' {
		return s[9:]
	}
	return s
}
