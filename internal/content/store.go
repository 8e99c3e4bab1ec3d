package content

import (
	"log/slog"
	"sync"
	"time"
)

// Store holds the current Site and swaps it atomically on Reload. Readers
// never see a half-loaded site.
type Store struct {
	dir string

	mu       sync.RWMutex
	site     *Site
	version  uint64
	loadedAt time.Time
}

// NewStore loads dir into a new store.
func NewStore(dir string) (*Store, error) {
	s := &Store{dir: dir}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStaticStore wraps an already built site. Reload is a no-op.
func NewStaticStore(site *Site) *Store {
	return &Store{site: site, version: 1, loadedAt: time.Now()}
}

// Dir returns the content directory, or "" for a static store.
func (s *Store) Dir() string {
	return s.dir
}

// Site returns the current site. Callers must not mutate it.
func (s *Store) Site() *Site {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.site
}

// Version increases by one on every successful reload.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// LoadedAt is when the current site was loaded.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Reload rereads the content directory. On error the previous site stays.
func (s *Store) Reload() error {
	if s.dir == "" && s.site != nil {
		return nil
	}
	site, err := Load(s.dir)
	if err != nil {
		contentLog.Warn("content_reload_failed",
			slog.String("dir", s.dir),
			slog.String("error", err.Error()))
		return err
	}

	s.mu.Lock()
	s.site = site
	s.version++
	s.loadedAt = time.Now()
	version := s.version
	s.mu.Unlock()

	contentLog.Info("content_loaded",
		slog.String("dir", s.dir),
		slog.Uint64("version", version),
		slog.Int("posts", len(site.Posts)))
	return nil
}
