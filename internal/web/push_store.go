package web

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/asheshgoplani/folio/internal/statedb"
)

// pushSubscription is the PushSubscription JSON a browser hands back from
// pushManager.subscribe.
type pushSubscription struct {
	Endpoint       string `json:"endpoint"`
	ExpirationTime any    `json:"expirationTime,omitempty"`
	Keys           struct {
		P256DH string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

func newPushSubscription(endpoint, p256dh, auth string) pushSubscription {
	var sub pushSubscription
	sub.Endpoint = endpoint
	sub.Keys.P256DH = p256dh
	sub.Keys.Auth = auth
	return sub
}

// clean trims the fields and rejects subscriptions no gateway would accept.
func (s pushSubscription) clean() (pushSubscription, error) {
	s = newPushSubscription(strings.TrimSpace(s.Endpoint), strings.TrimSpace(s.Keys.P256DH), strings.TrimSpace(s.Keys.Auth))
	if s.Endpoint == "" {
		return s, errors.New("endpoint is required")
	}
	if u, err := url.Parse(s.Endpoint); err != nil || u.Scheme != "https" || u.Host == "" {
		return s, errors.New("endpoint must be an https url")
	}
	if s.Keys.P256DH == "" || s.Keys.Auth == "" {
		return s, errors.New("keys.p256dh and keys.auth are required")
	}
	return s, nil
}

// subscriptionStore keeps subscriptions keyed by endpoint.
type subscriptionStore interface {
	All(ctx context.Context) ([]pushSubscription, error)
	Put(ctx context.Context, sub pushSubscription) error
	Drop(ctx context.Context, endpoint string) error
}

// dbSubscriptions stores subscriptions in the state database.
type dbSubscriptions struct {
	db *statedb.StateDB
}

func (d dbSubscriptions) All(context.Context) ([]pushSubscription, error) {
	rows, err := d.db.LoadPushSubscriptions()
	if err != nil {
		return nil, err
	}
	subs := make([]pushSubscription, len(rows))
	for i, row := range rows {
		subs[i] = newPushSubscription(row.Endpoint, row.P256DH, row.Auth)
	}
	return subs, nil
}

func (d dbSubscriptions) Put(_ context.Context, sub pushSubscription) error {
	return d.db.SavePushSubscription(statedb.PushSubscription{
		Endpoint: sub.Endpoint,
		P256DH:   sub.Keys.P256DH,
		Auth:     sub.Keys.Auth,
	})
}

func (d dbSubscriptions) Drop(_ context.Context, endpoint string) error {
	return d.db.DeletePushSubscription(endpoint)
}

// memSubscriptions backs push when no database is configured. Restarting the
// server forgets every subscriber.
type memSubscriptions struct {
	mu   sync.Mutex
	subs []pushSubscription
}

func (m *memSubscriptions) All(context.Context) ([]pushSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.subs), nil
}

func (m *memSubscriptions) Put(_ context.Context, sub pushSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := slices.IndexFunc(m.subs, func(s pushSubscription) bool { return s.Endpoint == sub.Endpoint }); i >= 0 {
		m.subs[i] = sub
	} else {
		m.subs = append(m.subs, sub)
	}
	return nil
}

func (m *memSubscriptions) Drop(_ context.Context, endpoint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = slices.DeleteFunc(m.subs, func(s pushSubscription) bool { return s.Endpoint == endpoint })
	return nil
}
