package statedb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current database schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// FileName is the database file inside the folio directory.
const FileName = "folio.db"

// Contact message delivery states.
const (
	StatusQueued = "queued"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// StateDB wraps a SQLite database for contact messages, visitor tracking and
// push subscriptions. Safe for concurrent use; several processes (the TUI and
// a headless server) can share one file through WAL mode + busy timeout.
type StateDB struct {
	db *sql.DB
}

// ContactMessage is one submission of the contact form.
type ContactMessage struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Message    string    `json:"message"`
	Status     string    `json:"status"`
	Error      string    `json:"error,omitempty"`
	ClientHash string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Visit is one tracked page view. IPHash is salted; raw addresses are never
// stored.
type Visit struct {
	IPHash    string
	Path      string
	UserAgent string
	Referrer  string
	VisitedAt time.Time
}

// PathCount is a visited path with its view count.
type PathCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// VisitorStats summarizes visits since a point in time.
type VisitorStats struct {
	TotalVisits    int         `json:"totalVisits"`
	UniqueVisitors int         `json:"uniqueVisitors"`
	TopPaths       []PathCount `json:"topPaths"`
}

// PushSubscription is a browser push endpoint and its keys.
type PushSubscription struct {
	Endpoint  string
	P256DH    string
	Auth      string
	CreatedAt time.Time
}

// Open creates or opens a SQLite database at dbPath with WAL mode and busy timeout.
func Open(dbPath string) (*StateDB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("statedb: mkdir: %w", err)
	}

	// busy_timeout and foreign_keys are per connection, so they go in the DSN
	// where every pooled connection picks them up.
	dsn := "file:" + dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("statedb: open: %w", err)
	}

	// WAL mode: allows concurrent readers while writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("statedb: wal mode: %w", err)
	}

	return &StateDB{db: db}, nil
}

// Close checkpoints WAL and closes the database.
func (s *StateDB) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced use cases (e.g., testing).
func (s *StateDB) DB() *sql.DB {
	return s.db
}

// Migrate creates tables if they don't exist. Safe to run on every start.
func (s *StateDB) Migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statedb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []struct {
		name string
		sql  string
	}{
		{"metadata", `
			CREATE TABLE IF NOT EXISTS metadata (
				key   TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`},
		{"contact_messages", `
			CREATE TABLE IF NOT EXISTS contact_messages (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				email       TEXT NOT NULL,
				message     TEXT NOT NULL,
				status      TEXT NOT NULL DEFAULT 'queued',
				error       TEXT NOT NULL DEFAULT '',
				client_hash TEXT NOT NULL DEFAULT '',
				created_at  INTEGER NOT NULL,
				updated_at  INTEGER NOT NULL
			)`},
		{"visitors", `
			CREATE TABLE IF NOT EXISTS visitors (
				id         INTEGER PRIMARY KEY AUTOINCREMENT,
				ip_hash    TEXT NOT NULL,
				path       TEXT NOT NULL,
				user_agent TEXT NOT NULL DEFAULT '',
				referrer   TEXT NOT NULL DEFAULT '',
				visited_at INTEGER NOT NULL
			)`},
		{"visitors index", `
			CREATE INDEX IF NOT EXISTS idx_visitors_visited_at ON visitors (visited_at)`},
		{"push_subscriptions", `
			CREATE TABLE IF NOT EXISTS push_subscriptions (
				endpoint   TEXT PRIMARY KEY,
				p256dh     TEXT NOT NULL,
				auth       TEXT NOT NULL,
				created_at INTEGER NOT NULL
			)`},
	}
	for _, st := range stmts {
		if _, err := tx.Exec(st.sql); err != nil {
			return fmt.Errorf("statedb: create %s: %w", st.name, err)
		}
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, strconv.Itoa(SchemaVersion)); err != nil {
		return fmt.Errorf("statedb: set schema version: %w", err)
	}

	return tx.Commit()
}

// --- Contact messages ---

// SaveContactMessage inserts msg. Zero timestamps are set to now and an empty
// status to StatusQueued.
func (s *StateDB) SaveContactMessage(msg *ContactMessage) error {
	now := time.Now()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = now
	}
	if msg.UpdatedAt.IsZero() {
		msg.UpdatedAt = msg.CreatedAt
	}
	if msg.Status == "" {
		msg.Status = StatusQueued
	}
	_, err := s.db.Exec(`
		INSERT INTO contact_messages (
			id, name, email, message, status, error, client_hash, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		msg.ID, msg.Name, msg.Email, msg.Message, msg.Status, msg.Error, msg.ClientHash,
		msg.CreatedAt.UnixNano(), msg.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("statedb: save contact message: %w", err)
	}
	return nil
}

// SetMessageStatus records the delivery outcome of a message.
func (s *StateDB) SetMessageStatus(id, status, errMsg string) error {
	res, err := s.db.Exec(
		"UPDATE contact_messages SET status = ?, error = ?, updated_at = ? WHERE id = ?",
		status, errMsg, time.Now().UnixNano(), id,
	)
	if err != nil {
		return fmt.Errorf("statedb: set message status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("statedb: set message status: %w", sql.ErrNoRows)
	}
	return nil
}

// ListContactMessages returns up to limit messages, newest first. A limit
// <= 0 returns all of them.
func (s *StateDB) ListContactMessages(limit int) ([]*ContactMessage, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT id, name, email, message, status, error, client_hash, created_at, updated_at
		FROM contact_messages ORDER BY created_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("statedb: list contact messages: %w", err)
	}
	defer rows.Close()

	result := []*ContactMessage{}
	for rows.Next() {
		m := &ContactMessage{}
		var created, updated int64
		if err := rows.Scan(
			&m.ID, &m.Name, &m.Email, &m.Message, &m.Status, &m.Error, &m.ClientHash,
			&created, &updated,
		); err != nil {
			return nil, err
		}
		m.CreatedAt = time.Unix(0, created)
		m.UpdatedAt = time.Unix(0, updated)
		result = append(result, m)
	}
	return result, rows.Err()
}

// CountMessagesByStatus returns message counts keyed by status.
func (s *StateDB) CountMessagesByStatus() (map[string]int, error) {
	rows, err := s.db.Query("SELECT status, COUNT(*) FROM contact_messages GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("statedb: count messages: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// --- Visitors ---

// RecordVisit stores one page view.
func (s *StateDB) RecordVisit(v *Visit) error {
	at := v.VisitedAt
	if at.IsZero() {
		at = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO visitors (ip_hash, path, user_agent, referrer, visited_at)
		VALUES (?, ?, ?, ?, ?)
	`, v.IPHash, v.Path, v.UserAgent, v.Referrer, at.UnixNano())
	if err != nil {
		return fmt.Errorf("statedb: record visit: %w", err)
	}
	return nil
}

// VisitorStats summarizes visits at or after since, with the topN most
// viewed paths.
func (s *StateDB) VisitorStats(since time.Time, topN int) (VisitorStats, error) {
	stats := VisitorStats{TopPaths: []PathCount{}}
	cutoff := since.UnixNano()

	if err := s.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT ip_hash) FROM visitors WHERE visited_at >= ?
	`, cutoff).Scan(&stats.TotalVisits, &stats.UniqueVisitors); err != nil {
		return stats, fmt.Errorf("statedb: visitor totals: %w", err)
	}

	if topN <= 0 {
		return stats, nil
	}
	rows, err := s.db.Query(`
		SELECT path, COUNT(*) AS n FROM visitors WHERE visited_at >= ?
		GROUP BY path ORDER BY n DESC, path LIMIT ?
	`, cutoff, topN)
	if err != nil {
		return stats, fmt.Errorf("statedb: top paths: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pc PathCount
		if err := rows.Scan(&pc.Path, &pc.Count); err != nil {
			return stats, err
		}
		stats.TopPaths = append(stats.TopPaths, pc)
	}
	return stats, rows.Err()
}

// CleanupVisits deletes visits older than before and returns how many went.
func (s *StateDB) CleanupVisits(before time.Time) (int64, error) {
	res, err := s.db.Exec("DELETE FROM visitors WHERE visited_at < ?", before.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("statedb: cleanup visits: %w", err)
	}
	return res.RowsAffected()
}

// --- Push subscriptions ---

// SavePushSubscription inserts or replaces a subscription keyed by endpoint.
func (s *StateDB) SavePushSubscription(sub PushSubscription) error {
	created := sub.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO push_subscriptions (endpoint, p256dh, auth, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(endpoint) DO UPDATE SET p256dh = excluded.p256dh, auth = excluded.auth
	`, sub.Endpoint, sub.P256DH, sub.Auth, created.UnixNano())
	if err != nil {
		return fmt.Errorf("statedb: save push subscription: %w", err)
	}
	return nil
}

// DeletePushSubscription removes a subscription. Unknown endpoints are ignored.
func (s *StateDB) DeletePushSubscription(endpoint string) error {
	_, err := s.db.Exec("DELETE FROM push_subscriptions WHERE endpoint = ?", endpoint)
	return err
}

// LoadPushSubscriptions returns every subscription, oldest first.
func (s *StateDB) LoadPushSubscriptions() ([]PushSubscription, error) {
	rows, err := s.db.Query(
		"SELECT endpoint, p256dh, auth, created_at FROM push_subscriptions ORDER BY created_at, endpoint",
	)
	if err != nil {
		return nil, fmt.Errorf("statedb: load push subscriptions: %w", err)
	}
	defer rows.Close()

	result := []PushSubscription{}
	for rows.Next() {
		var sub PushSubscription
		var created int64
		if err := rows.Scan(&sub.Endpoint, &sub.P256DH, &sub.Auth, &created); err != nil {
			return nil, err
		}
		sub.CreatedAt = time.Unix(0, created)
		result = append(result, sub)
	}
	return result, rows.Err()
}

// --- Metadata ---

// SetMeta sets a key-value pair in the metadata table.
func (s *StateDB) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta gets a value from the metadata table. Returns "" if not found.
func (s *StateDB) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
