package types

import "testing"

func TestDecodeWirePayloadFlat(t *testing.T) {
	raw := []byte(`{"title":"Update","body":"Task assigned","url":"/dashboard/tasks/42"}`)

	p, ok := DecodeWirePayload(raw)
	if !ok {
		t.Fatal("expected a payload")
	}
	if p.Title != "Update" || p.Body != "Task assigned" || p.URL != "/dashboard/tasks/42" {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestDecodeWirePayloadNested(t *testing.T) {
	raw := []byte(`{"notification":{"title":"Update","body":"Task assigned","data":{"url":"/dashboard"}}}`)

	p, ok := DecodeWirePayload(raw)
	if !ok {
		t.Fatal("expected a payload")
	}
	if p.Title != "Update" || p.Body != "Task assigned" || p.URL != "/dashboard" {
		t.Errorf("unexpected payload: %+v", p)
	}
}

func TestDecodeWirePayloadPlainTextFallsBack(t *testing.T) {
	raw := []byte("Server maintenance tonight")

	p, ok := DecodeWirePayload(raw)
	if !ok {
		t.Fatal("expected a payload")
	}
	if p.Title != FallbackTitle {
		t.Errorf("expected fallback title, got %q", p.Title)
	}
	if p.Body != "Server maintenance tonight" {
		t.Errorf("expected raw text body, got %q", p.Body)
	}
	if p.URL != "/" {
		t.Errorf("expected default click target, got %q", p.URL)
	}
}

func TestDecodeWirePayloadEmpty(t *testing.T) {
	if _, ok := DecodeWirePayload(nil); ok {
		t.Error("nil body should yield no payload")
	}
	if _, ok := DecodeWirePayload([]byte("  \n")); ok {
		t.Error("blank body should yield no payload")
	}
}

func TestDecodeWirePayloadMissingFieldsGetDefaults(t *testing.T) {
	p, ok := DecodeWirePayload([]byte(`{"title":"Update"}`))
	if !ok {
		t.Fatal("expected a payload")
	}
	if p.Body != FallbackBody {
		t.Errorf("expected default body, got %q", p.Body)
	}
	if p.URL != "/" {
		t.Errorf("expected default url, got %q", p.URL)
	}
}
