package web

import (
	"testing"
	"time"
)

func TestClientLimiterDisabled(t *testing.T) {
	var l *clientLimiter = newClientLimiter(0)
	for i := 0; i < 100; i++ {
		if !l.Allow("a") {
			t.Fatalf("disabled limiter must allow everything")
		}
	}
}

func TestClientLimiterPerClient(t *testing.T) {
	l := newClientLimiter(3)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if !l.Allow("a") {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.Allow("a") {
		t.Fatalf("fourth request within the minute should be limited")
	}
	if !l.Allow("b") {
		t.Fatalf("other clients have their own bucket")
	}

	now = now.Add(20 * time.Second)
	if !l.Allow("a") {
		t.Fatalf("a token should refill after 20s")
	}
}

func TestClientLimiterSweepsIdleClients(t *testing.T) {
	l := newClientLimiter(5)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	if l.size() != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", l.size())
	}

	now = now.Add(limiterIdleTTL + time.Minute)
	l.Allow("c")
	if l.size() != 1 {
		t.Fatalf("expected idle clients swept, got %d", l.size())
	}
}
