package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"
)

// View is one open application window known to the agent. Location is the
// URL the window is currently showing; CallbackURL is where the agent posts
// focus and navigate messages for that window.
type View struct {
	ID          string    `json:"id"`
	Location    string    `json:"location"`
	Focused     bool      `json:"focused"`
	LastFocused time.Time `json:"last_focused"`
	CallbackURL string    `json:"callback_url,omitempty"`
}

// ViewMessage is what a view receives on its callback endpoint.
type ViewMessage struct {
	Type string `json:"type"`
	URL  string `json:"url,omitempty"`
}

// Views is what click routing needs from the window tracker.
type Views interface {
	List(ctx context.Context) ([]View, error)
	Focus(ctx context.Context, id string) error
	Message(ctx context.Context, id string, msg ViewMessage) error
}

// ViewRegistry tracks open views in memory and reaches them over their
// registered callback endpoints. Windows register on load and unregister on
// unload; at most one view is focused at a time.
type ViewRegistry struct {
	mu     sync.RWMutex
	views  map[string]View
	client *http.Client
}

func NewViewRegistry() *ViewRegistry {
	return &ViewRegistry{
		views:  make(map[string]View),
		client: &http.Client{Timeout: 5 * time.Second},
	}
}

// Register adds or replaces a view. A view registering as focused steals
// focus from every other view.
func (r *ViewRegistry) Register(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.Focused {
		v.LastFocused = time.Now()
		for id, other := range r.views {
			other.Focused = false
			r.views[id] = other
		}
	}
	r.views[v.ID] = v
}

func (r *ViewRegistry) Unregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, id)
}

func (r *ViewRegistry) List(ctx context.Context) ([]View, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]View, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Focus tells the view to bring itself to the front and records it as the
// focused view.
func (r *ViewRegistry) Focus(ctx context.Context, id string) error {
	r.mu.Lock()
	v, ok := r.views[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("focus view %s: not registered", id)
	}
	for otherID, other := range r.views {
		other.Focused = otherID == id
		if otherID == id {
			other.LastFocused = time.Now()
		}
		r.views[otherID] = other
	}
	r.mu.Unlock()

	return r.post(ctx, v, ViewMessage{Type: "focus"})
}

func (r *ViewRegistry) Message(ctx context.Context, id string, msg ViewMessage) error {
	r.mu.RLock()
	v, ok := r.views[id]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("message view %s: not registered", id)
	}
	return r.post(ctx, v, msg)
}

func (r *ViewRegistry) post(ctx context.Context, v View, msg ViewMessage) error {
	if v.CallbackURL == "" {
		return nil
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode view message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.CallbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build view request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to view %s: %w", v.ID, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("post to view %s: unexpected status %d", v.ID, resp.StatusCode)
	}
	return nil
}
