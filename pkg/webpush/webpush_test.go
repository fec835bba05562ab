package webpush

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testSubscription(t *testing.T, endpoint string) Subscription {
	t.Helper()

	key, err := ecdh.P256().GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate client key: %v", err)
	}
	auth := make([]byte, 16)
	if _, err := rand.Read(auth); err != nil {
		t.Fatalf("failed to generate auth secret: %v", err)
	}
	return Subscription{
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(key.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(auth),
	}
}

func newTestTransport(t *testing.T) *VAPID {
	t.Helper()
	priv, pub, err := GenerateKeys()
	if err != nil {
		t.Fatalf("failed to generate VAPID keys: %v", err)
	}
	return NewVAPID("mailto:ops@example.com", pub, priv, 30)
}

func TestSendSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Authorization") == "" {
			t.Error("expected VAPID authorization header")
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	transport := newTestTransport(t)
	sub := testSubscription(t, srv.URL+"/ep-1")

	if err := transport.Send(context.Background(), sub, []byte(`{"title":"Update"}`)); err != nil {
		t.Errorf("expected success, got %v", err)
	}
}

func TestSendGoneIsPermanent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	transport := newTestTransport(t)
	sub := testSubscription(t, srv.URL+"/ep-1")

	err := transport.Send(context.Background(), sub, []byte("x"))
	if err == nil {
		t.Fatal("expected an error for 410")
	}
	if !IsPermanent(err) {
		t.Errorf("410 must classify as permanent, got %v", err)
	}

	var sendErr *SendError
	if !errors.As(err, &sendErr) || sendErr.StatusCode != http.StatusGone {
		t.Errorf("expected SendError with status 410, got %v", err)
	}
}

func TestSendServerErrorIsTransient(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadRequest} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		transport := newTestTransport(t)
		sub := testSubscription(t, srv.URL+"/ep-1")

		err := transport.Send(context.Background(), sub, []byte("x"))
		if err == nil {
			t.Fatalf("status %d: expected an error", status)
		}
		if IsPermanent(err) {
			t.Errorf("status %d must classify as transient", status)
		}
		srv.Close()
	}
}

func TestIsPermanentIgnoresOtherErrors(t *testing.T) {
	if IsPermanent(fmt.Errorf("connection refused")) {
		t.Error("plain errors must not classify as permanent")
	}
	if IsPermanent(nil) {
		t.Error("nil must not classify as permanent")
	}
}
