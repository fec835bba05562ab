package types

import (
	"bytes"
	"encoding/json"
)

// FallbackTitle and FallbackBody are used when a push payload cannot be
// decoded as structured JSON.
const (
	FallbackTitle = "New notification"
	FallbackBody  = "You have a new update."
)

// NotificationPayload is the logical content of one notification. It is
// written to the in-app log (Body becomes the stored message) and serialized
// verbatim onto the push wire.
type NotificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// nestedWirePayload is the legacy wire shape produced by older senders:
// the payload wrapped under a "notification" key with the click target
// tucked into data.url.
type nestedWirePayload struct {
	Notification *struct {
		Title string `json:"title"`
		Body  string `json:"body"`
		Data  struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"notification"`
}

// EncodeWirePayload serializes a payload for the push transport.
func EncodeWirePayload(p NotificationPayload) ([]byte, error) {
	return json.Marshal(p)
}

// DecodeWirePayload turns raw push bytes into a payload. Decode order is
// fixed: structured JSON (flat, or nested under "notification") first, then
// plain text as a degraded fallback. An empty body yields ok=false and the
// caller must take no visible action.
func DecodeWirePayload(raw []byte) (NotificationPayload, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return NotificationPayload{}, false
	}

	var nested nestedWirePayload
	if err := json.Unmarshal(trimmed, &nested); err == nil && nested.Notification != nil {
		return withDefaults(NotificationPayload{
			Title: nested.Notification.Title,
			Body:  nested.Notification.Body,
			URL:   nested.Notification.Data.URL,
		}), true
	}

	var flat NotificationPayload
	if err := json.Unmarshal(trimmed, &flat); err == nil && (flat.Title != "" || flat.Body != "" || flat.URL != "") {
		return withDefaults(flat), true
	}

	return NotificationPayload{
		Title: FallbackTitle,
		Body:  string(raw),
		URL:   "/",
	}, true
}

func withDefaults(p NotificationPayload) NotificationPayload {
	if p.Title == "" {
		p.Title = FallbackTitle
	}
	if p.Body == "" {
		p.Body = FallbackBody
	}
	if p.URL == "" {
		p.URL = "/"
	}
	return p
}
