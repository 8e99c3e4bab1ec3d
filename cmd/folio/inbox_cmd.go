package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/asheshgoplani/folio/internal/config"
	"github.com/asheshgoplani/folio/internal/statedb"
)

// handleInbox lists contact messages stored by the web server.
func handleInbox(args []string) {
	fs := flag.NewFlagSet("inbox", flag.ContinueOnError)
	jsonOutput := fs.Bool("json", false, "Output as JSON")
	limit := fs.Int("limit", 20, "Maximum messages to show (0 for all)")
	status := fs.String("status", "", "Only show messages with this status (queued, sent, failed)")
	full := fs.Bool("full", false, "Print whole messages instead of a table")

	fs.Usage = func() {
		fmt.Println("Usage: folio inbox [options]")
		fmt.Println()
		fmt.Println("List contact form messages, newest first.")
		fmt.Println()
		fmt.Println("Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(normalizeArgs(fs, args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(1)
	}
	out := newCLIOutput(*jsonOutput)

	if err := validStatus(*status); err != nil {
		out.Fail(ErrCodeInvalidInput, err.Error())
		os.Exit(1)
	}

	baseDir, err := config.Dir()
	if err != nil {
		out.Fail(ErrCodeNoStore, err.Error())
		os.Exit(1)
	}
	dbPath := filepath.Join(baseDir, statedb.FileName)
	if _, err := os.Stat(dbPath); err != nil {
		out.Fail(ErrCodeNoStore, fmt.Sprintf("no message store at %s (run 'folio serve' first)", homeRelative(dbPath)))
		os.Exit(1)
	}
	db, err := openStateDB(baseDir)
	if err != nil {
		out.Fail(ErrCodeNoStore, err.Error())
		os.Exit(1)
	}
	defer db.Close()

	// Filter after fetching so --limit counts matching messages.
	fetch := *limit
	if *status != "" {
		fetch = 0
	}
	msgs, err := db.ListContactMessages(fetch)
	if err != nil {
		out.Fail(ErrCodeNoStore, err.Error())
		return
	}
	msgs = filterMessages(msgs, *status, *limit)

	if *full {
		out.Emit(formatInboxFull(msgs), msgs)
		return
	}
	out.Emit(formatInboxTable(msgs), msgs)
}

func validStatus(s string) error {
	switch s {
	case "", statedb.StatusQueued, statedb.StatusSent, statedb.StatusFailed:
		return nil
	}
	return fmt.Errorf("unknown status %q (want queued, sent or failed)", s)
}

// filterMessages keeps messages with status (all when empty), at most limit
// of them when limit > 0.
func filterMessages(msgs []*statedb.ContactMessage, status string, limit int) []*statedb.ContactMessage {
	out := []*statedb.ContactMessage{}
	for _, m := range msgs {
		if status != "" && m.Status != status {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func statusSymbol(status string) string {
	switch status {
	case statedb.StatusSent:
		return successSymbol
	case statedb.StatusFailed:
		return errorSymbol
	}
	return bulletSymbol
}

func formatInboxTable(msgs []*statedb.ContactMessage) string {
	if len(msgs) == 0 {
		return "Inbox is empty.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "  %-8s %-16s %-20s %-24s %s\n", "ID", "RECEIVED", "NAME", "EMAIL", "MESSAGE")
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s %-8s %-16s %-20s %-24s %s\n",
			statusSymbol(m.Status),
			shortID(m.ID),
			m.CreatedAt.Local().Format("2006-01-02 15:04"),
			truncateCell(m.Name, 20),
			truncateCell(m.Email, 24),
			truncateCell(m.Message, 40))
	}
	fmt.Fprintf(&b, "\n%d message(s)\n", len(msgs))
	return b.String()
}

func formatInboxFull(msgs []*statedb.ContactMessage) string {
	if len(msgs) == 0 {
		return "Inbox is empty.\n"
	}
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s <%s>  %s  [%s]\n",
			statusSymbol(m.Status), m.Name, m.Email,
			m.CreatedAt.Local().Format("2006-01-02 15:04"), m.Status)
		if m.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", m.Error)
		}
		for _, line := range strings.Split(strings.TrimSpace(m.Message), "\n") {
			fmt.Fprintf(&b, "  %s\n", line)
		}
	}
	return b.String()
}
