package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"golang.org/x/sync/errgroup"

	"github.com/asheshgoplani/folio/internal/logging"
	"github.com/asheshgoplani/folio/internal/statedb"
)

const (
	defaultPushSubject = "mailto:folio@localhost"
	pushPreviewLen     = 120
	pushSendParallel   = 4
	pushTTLSeconds     = 24 * 60 * 60
)

var pushLog = logging.ForComponent(logging.CompPush)

// pushNotifier tells the owner's browsers about new contact messages. A nil
// notifier on the server means push is off.
type pushNotifier interface {
	PublicKey() string
	Subject() string
	Subscribers(ctx context.Context) (int, error)
	Subscribe(ctx context.Context, sub pushSubscription) error
	Unsubscribe(ctx context.Context, endpoint string) error
	NotifyContact(ctx context.Context, msg *statedb.ContactMessage)
}

// pushSender delivers one encrypted payload and returns the gateway status.
type pushSender func(ctx context.Context, payload []byte, sub pushSubscription) (int, error)

func vapidSender(publicKey, privateKey, subject string) pushSender {
	opts := &webpush.Options{
		Subscriber:      subject,
		VAPIDPublicKey:  publicKey,
		VAPIDPrivateKey: privateKey,
		TTL:             pushTTLSeconds,
		Urgency:         webpush.UrgencyHigh,
	}
	return func(ctx context.Context, payload []byte, sub pushSubscription) (int, error) {
		resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.Keys.P256DH, Auth: sub.Keys.Auth},
		}, opts)
		if err != nil {
			return 0, err
		}
		defer resp.Body.Close()
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode >= http.StatusBadRequest {
			return resp.StatusCode, fmt.Errorf("push gateway returned %s", resp.Status)
		}
		return resp.StatusCode, nil
	}
}

type pushService struct {
	publicKey string
	subject   string
	subs      subscriptionStore
	send      pushSender
}

// newPushService builds the notifier from cfg. It returns nil, nil when no
// keys are configured and an error when only one of the pair is.
func newPushService(cfg Config) (pushNotifier, error) {
	pub := strings.TrimSpace(cfg.PushVAPIDPublicKey)
	priv := strings.TrimSpace(cfg.PushVAPIDPrivateKey)
	switch {
	case pub == "" && priv == "":
		return nil, nil
	case pub == "" || priv == "":
		return nil, errors.New("push needs both the vapid public and private key")
	}

	subject := strings.TrimSpace(cfg.PushVAPIDSubject)
	if subject == "" {
		subject = defaultPushSubject
	}
	var subs subscriptionStore = &memSubscriptions{}
	if cfg.Store != nil {
		subs = dbSubscriptions{db: cfg.Store}
	} else {
		pushLog.Warn("push_store_in_memory")
	}
	return &pushService{
		publicKey: pub,
		subject:   subject,
		subs:      subs,
		send:      vapidSender(pub, priv, subject),
	}, nil
}

func (p *pushService) PublicKey() string { return p.publicKey }
func (p *pushService) Subject() string   { return p.subject }

func (p *pushService) Subscribers(ctx context.Context) (int, error) {
	all, err := p.subs.All(ctx)
	return len(all), err
}

func (p *pushService) Subscribe(ctx context.Context, sub pushSubscription) error {
	sub, err := sub.clean()
	if err != nil {
		return err
	}
	return p.subs.Put(ctx, sub)
}

func (p *pushService) Unsubscribe(ctx context.Context, endpoint string) error {
	if endpoint = strings.TrimSpace(endpoint); endpoint == "" {
		return nil
	}
	return p.subs.Drop(ctx, endpoint)
}

// NotifyContact sends msg to every subscriber, a few at a time. Endpoints
// the gateway reports as expired are dropped afterwards.
func (p *pushService) NotifyContact(ctx context.Context, msg *statedb.ContactMessage) {
	if msg == nil {
		return
	}
	subs, err := p.subs.All(ctx)
	if err != nil {
		pushLog.Error("push_list_subscriptions_failed", slog.String("error", err.Error()))
		return
	}
	if len(subs) == 0 {
		return
	}
	payload, err := json.Marshal(contactNotice(msg, time.Now().UTC()))
	if err != nil {
		pushLog.Error("push_marshal_failed", slog.String("error", err.Error()))
		return
	}
	pushLog.Debug("push_notifying", slog.String("message", msg.ID), slog.Int("subscribers", len(subs)))

	var (
		mu   sync.Mutex
		gone []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(pushSendParallel)
	for _, sub := range subs {
		g.Go(func() error {
			status, err := p.send(gctx, payload, sub)
			host := endpointHost(sub.Endpoint)
			if err != nil {
				pushLog.Warn("push_send_failed",
					slog.String("endpoint", host),
					slog.Int("http_status", status),
					slog.String("error", err.Error()))
				if status == http.StatusGone || status == http.StatusNotFound {
					mu.Lock()
					gone = append(gone, sub.Endpoint)
					mu.Unlock()
				}
				return nil
			}
			pushLog.Debug("push_sent", slog.String("endpoint", host), slog.Int("http_status", status))
			return nil
		})
	}
	_ = g.Wait()

	for _, endpoint := range gone {
		if err := p.subs.Drop(ctx, endpoint); err != nil {
			pushLog.Warn("push_prune_failed", slog.String("error", err.Error()))
		}
	}
}

// pushNotice is the payload sw.js turns into a notification.
type pushNotice struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	Tag       string `json:"tag,omitempty"`
	Renotify  bool   `json:"renotify,omitempty"`
	MessageID string `json:"messageId,omitempty"`
	Status    string `json:"status,omitempty"`
	Path      string `json:"path,omitempty"`
	Timestamp string `json:"timestamp"`
}

func contactNotice(msg *statedb.ContactMessage, now time.Time) pushNotice {
	from := strings.TrimSpace(msg.Name)
	if from == "" {
		from = "someone"
	}
	title := "New message from " + from
	if msg.Status == statedb.StatusFailed {
		title += " (delivery failed)"
	}
	return pushNotice{
		Title:     title,
		Body:      preview(msg.Message, pushPreviewLen),
		Tag:       "folio-contact-" + msg.ID,
		Renotify:  true,
		MessageID: msg.ID,
		Status:    msg.Status,
		Path:      "/",
		Timestamp: now.Format(time.RFC3339),
	}
}

// preview collapses whitespace and cuts s to n runes.
func preview(s string, n int) string {
	r := []rune(strings.Join(strings.Fields(s), " "))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

// endpointHost keeps push endpoint tokens out of the logs.
func endpointHost(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		return u.Host
	}
	return "invalid-endpoint"
}
