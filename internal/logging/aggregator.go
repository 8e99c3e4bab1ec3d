package logging

import (
	"log/slog"
	"sync"
	"time"
)

type aggregateKey struct {
	component string
	event     string
}

type aggregateEntry struct {
	count  int64
	fields []slog.Attr
}

// Aggregator counts high-frequency events (one per animation frame, one per
// scroll step) and logs a single summary line per event per interval.
type Aggregator struct {
	logger   *slog.Logger
	interval time.Duration

	mu      sync.Mutex
	entries map[aggregateKey]*aggregateEntry

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewAggregator creates an aggregator flushing every intervalSecs seconds.
// A nil logger drops everything.
func NewAggregator(logger *slog.Logger, intervalSecs int) *Aggregator {
	if intervalSecs <= 0 {
		intervalSecs = 30
	}
	return &Aggregator{
		logger:   logger,
		interval: time.Duration(intervalSecs) * time.Second,
		entries:  make(map[aggregateKey]*aggregateEntry),
		stop:     make(chan struct{}),
	}
}

// Start launches the flush loop.
func (a *Aggregator) Start() {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ticker := time.NewTicker(a.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				a.Flush()
			case <-a.stop:
				return
			}
		}
	}()
}

// Stop ends the flush loop and emits whatever is pending.
func (a *Aggregator) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
	a.wg.Wait()
	a.Flush()
}

// Record counts one occurrence. The latest non-empty fields win.
func (a *Aggregator) Record(component, event string, fields ...slog.Attr) {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := aggregateKey{component: component, event: event}
	entry := a.entries[key]
	if entry == nil {
		entry = &aggregateEntry{}
		a.entries[key] = entry
	}
	entry.count++
	if len(fields) > 0 {
		entry.fields = fields
	}
}

// Flush logs one event_summary line per recorded event and resets counts.
func (a *Aggregator) Flush() {
	a.mu.Lock()
	if len(a.entries) == 0 {
		a.mu.Unlock()
		return
	}
	pending := a.entries
	a.entries = make(map[aggregateKey]*aggregateEntry)
	a.mu.Unlock()

	if a.logger == nil {
		return
	}
	for key, entry := range pending {
		args := []any{
			slog.String("component", key.component),
			slog.String("event", key.event),
			slog.Int64("count", entry.count),
			slog.Int("window_seconds", int(a.interval.Seconds())),
		}
		for _, f := range entry.fields {
			args = append(args, f)
		}
		a.logger.Info("event_summary", args...)
	}
}
