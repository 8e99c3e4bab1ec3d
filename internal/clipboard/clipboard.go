// Package clipboard copies text to the user's clipboard from inside the TUI.
package clipboard

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrEmpty is returned when there is nothing to copy.
var ErrEmpty = errors.New("no content to copy")

// CopyResult contains metadata about a successful clipboard copy operation.
type CopyResult struct {
	Method    string // "system" or "osc52"
	ByteSize  int
	LineCount int
}

// Swapped in tests.
var (
	writeSystem = func(text string) error {
		if clipboard.Unsupported {
			return errors.New("no clipboard utility found")
		}
		return clipboard.WriteAll(text)
	}
	writeOSC52 = copyOSC52
)

// Copy copies text to the system clipboard. When no clipboard utility is
// available (an SSH session, a bare container) it falls back to an OSC 52
// escape sequence, which the terminal emulator turns into a copy.
func Copy(text string) (*CopyResult, error) {
	if text == "" {
		return nil, ErrEmpty
	}
	result := &CopyResult{ByteSize: len(text), LineCount: countLines(text)}

	sysErr := writeSystem(text)
	if sysErr == nil {
		result.Method = "system"
		return result, nil
	}
	if err := writeOSC52(text); err != nil {
		return nil, fmt.Errorf("clipboard: %v; OSC 52 failed: %w", sysErr, err)
	}
	result.Method = "osc52"
	return result, nil
}

// copyOSC52 writes the escape sequence to /dev/tty so it reaches the
// terminal even while bubbletea owns stdout.
func copyOSC52(text string) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	seq := generateOSC52(encoded, os.Getenv("TMUX") != "")

	tty, err := os.OpenFile("/dev/tty", os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("cannot open /dev/tty: %w", err)
	}
	defer tty.Close()

	_, err = tty.WriteString(seq)
	return err
}

// generateOSC52 builds the OSC 52 escape sequence.
// If inTmux is true, wraps it in a DCS passthrough for tmux compatibility.
func generateOSC52(base64Content string, inTmux bool) string {
	osc := "\x1b]52;c;" + base64Content + "\x07"
	if inTmux {
		// tmux DCS passthrough: \ePtmux;\e{OSC}\e\\
		return "\x1bPtmux;\x1b" + osc + "\x1b\\"
	}
	return osc
}

// countLines counts lines in text. A trailing newline does not add an extra
// line.
func countLines(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}
