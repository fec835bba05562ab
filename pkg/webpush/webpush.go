package webpush

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	wp "github.com/SherClockHolmes/webpush-go"
)

// Subscription is one delivery target as the transport sees it: the opaque
// endpoint plus the client encryption keys.
type Subscription struct {
	Endpoint string
	P256dh   string
	Auth     string
}

// Transport delivers an opaque payload to one endpoint. Implementations
// classify rejections via SendError so callers can prune dead endpoints.
type Transport interface {
	Send(ctx context.Context, sub Subscription, payload []byte) error
}

// SendError is a push-service rejection carrying the HTTP status code.
type SendError struct {
	Endpoint   string
	StatusCode int
}

func (e *SendError) Error() string {
	return fmt.Sprintf("push send to %s rejected: status=%d", e.Endpoint, e.StatusCode)
}

// Permanent reports whether the endpoint is gone for good. 404 and 410
// mean the registration will never accept another message.
func (e *SendError) Permanent() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
}

// IsPermanent reports whether err is a permanent transport rejection.
// Anything else (network error, 5xx, 429) is treated as transient.
func IsPermanent(err error) bool {
	var sendErr *SendError
	return errors.As(err, &sendErr) && sendErr.Permanent()
}

// VAPID sends web-push messages signed with the application's VAPID keys.
type VAPID struct {
	subject    string
	publicKey  string
	privateKey string
	ttl        int
}

func NewVAPID(subject, publicKey, privateKey string, ttl int) *VAPID {
	if subject == "" {
		subject = "mailto:admin@example.com"
	}
	if ttl <= 0 {
		ttl = 60
	}
	return &VAPID{
		subject:    subject,
		publicKey:  publicKey,
		privateKey: privateKey,
		ttl:        ttl,
	}
}

func (v *VAPID) Send(ctx context.Context, sub Subscription, payload []byte) error {
	resp, err := wp.SendNotificationWithContext(ctx, payload, &wp.Subscription{
		Endpoint: sub.Endpoint,
		Keys: wp.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &wp.Options{
		Subscriber:      v.subject,
		VAPIDPublicKey:  v.publicKey,
		VAPIDPrivateKey: v.privateKey,
		TTL:             v.ttl,
	})
	if err != nil {
		return fmt.Errorf("push send to %s: %w", sub.Endpoint, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return &SendError{Endpoint: sub.Endpoint, StatusCode: resp.StatusCode}
	}
	return nil
}

// GenerateKeys creates a fresh VAPID key pair, for first-time setup.
func GenerateKeys() (privateKey, publicKey string, err error) {
	return wp.GenerateVAPIDKeys()
}
