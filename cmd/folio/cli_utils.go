package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Markers used in human-readable listings.
const (
	successSymbol = "✓"
	errorSymbol   = "✕"
	bulletSymbol  = "•"
)

// Error codes reported by --json output.
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeNoStore       = "NO_STORE"
	ErrCodeContentFailed = "CONTENT_FAILED"
)

// normalizeArgs moves flags ahead of positional arguments so that
// "folio posts hello-world --json" still sees --json. The flag package
// stops at the first positional. A "--" and everything after it are kept
// in place.
func normalizeArgs(fs *flag.FlagSet, args []string) []string {
	var flags, rest []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			rest = append(rest, args[i:]...)
			i = len(args)
		case len(arg) > 1 && arg[0] == '-':
			flags = append(flags, arg)
			name, _, hasValue := strings.Cut(strings.TrimLeft(arg, "-"), "=")
			if !hasValue && takesValue(fs, name) && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		default:
			rest = append(rest, arg)
		}
	}
	return append(flags, rest...)
}

// takesValue reports whether the named flag consumes the next argument.
// Unknown flags do not; Parse reports them.
func takesValue(fs *flag.FlagSet, name string) bool {
	f := fs.Lookup(name)
	if f == nil {
		return false
	}
	b, ok := f.Value.(interface{ IsBoolFlag() bool })
	return !ok || !b.IsBoolFlag()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// cliOutput prints command results either for people or, with --json, for
// scripts. Failures go to stderr in text mode and stdout in JSON mode.
type cliOutput struct {
	json   bool
	stdout io.Writer
	stderr io.Writer
}

func newCLIOutput(jsonMode bool) *cliOutput {
	return &cliOutput{json: jsonMode, stdout: os.Stdout, stderr: os.Stderr}
}

// Emit prints human in text mode or data as indented JSON.
func (o *cliOutput) Emit(human string, data any) {
	if !o.json {
		fmt.Fprint(o.stdout, human)
		return
	}
	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		fmt.Fprintf(o.stderr, "%s Error: encode json: %v\n", errorSymbol, err)
	}
}

// Fail reports a failure with a stable code for scripts.
func (o *cliOutput) Fail(code, message string) {
	if o.json {
		o.Emit("", map[string]any{"success": false, "error": message, "code": code})
		return
	}
	fmt.Fprintf(o.stderr, "%s Error: %s\n", errorSymbol, message)
}

// shortID is the id prefix shown in tables.
func shortID(id string) string {
	const n = 8
	if len(id) <= n {
		return id
	}
	return id[:n]
}

// truncateCell collapses whitespace and cuts s to width display columns.
func truncateCell(s string, width int) string {
	return runewidth.Truncate(strings.Join(strings.Fields(s), " "), width, "…")
}

// homeRelative writes paths under the home directory as ~/...
func homeRelative(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if rest, ok := strings.CutPrefix(path, home); ok && (rest == "" || os.IsPathSeparator(rest[0])) {
		return "~" + rest
	}
	return path
}
