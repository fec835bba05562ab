package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/metrics"
	"github.com/G-studio-design/aplikasi-notify/pkg/types"
)

// Presenter shows notifications to the user and takes them down again.
type Presenter interface {
	Present(ctx context.Context, id string, payload types.NotificationPayload) error
	Close(ctx context.Context, id string) error
}

// Opener opens the target URL in a fresh window when no existing view can
// take the click.
type Opener interface {
	Open(ctx context.Context, target string) error
}

// Agent receives decoded pushes, presents them, and routes clicks back into
// the application. Click routing prefers an already-open view showing the
// exact target, then any open view told to navigate, and only opens a new
// window as the last resort.
type Agent struct {
	presenter Presenter
	views     Views
	opener    Opener
	origin    *url.URL
	log       *zap.Logger

	mu    sync.Mutex
	shown map[string]types.NotificationPayload

	wg sync.WaitGroup
}

// New builds an agent. origin is the application's base URL; relative
// notification targets are resolved against it.
func New(origin string, presenter Presenter, views Views, opener Opener, log *zap.Logger) (*Agent, error) {
	base, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parse app origin %q: %w", origin, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("app origin %q must be an absolute URL", origin)
	}
	return &Agent{
		presenter: presenter,
		views:     views,
		opener:    opener,
		origin:    base,
		log:       log,
		shown:     make(map[string]types.NotificationPayload),
	}, nil
}

// HandlePush decodes one raw push payload and presents it. An empty payload
// is dropped without error. Returns the id of the shown notification, empty
// when nothing was shown.
func (a *Agent) HandlePush(ctx context.Context, raw []byte) (string, error) {
	a.wg.Add(1)
	defer a.wg.Done()

	metrics.AgentPushReceivedTotal.WithLabelValues(payloadShape(raw)).Inc()

	payload, ok := types.DecodeWirePayload(raw)
	if !ok {
		a.log.Debug("empty push payload, nothing to show")
		return "", nil
	}

	id := uuid.NewString()
	a.mu.Lock()
	a.shown[id] = payload
	a.mu.Unlock()

	if err := a.presenter.Present(ctx, id, payload); err != nil {
		a.mu.Lock()
		delete(a.shown, id)
		a.mu.Unlock()
		return "", fmt.Errorf("present notification: %w", err)
	}

	a.log.Info("notification presented",
		zap.String("id", id),
		zap.String("title", payload.Title),
	)
	return id, nil
}

// HandleClick reacts to the user clicking a shown notification. The
// notification is closed before any routing happens, so it never lingers
// when a later step fails. Clicks on notifications the agent no longer
// knows about route to the application root.
func (a *Agent) HandleClick(ctx context.Context, id string) error {
	a.wg.Add(1)
	defer a.wg.Done()

	payload, known := a.take(id)
	if !known {
		a.log.Warn("click on unknown notification", zap.String("id", id))
	}
	if err := a.presenter.Close(ctx, id); err != nil {
		a.log.Warn("failed to close notification", zap.String("id", id), zap.Error(err))
	}

	target := a.resolve(payload.URL)
	return a.route(ctx, target)
}

// Drain blocks until every in-flight push and click has settled. Call after
// the HTTP listener has stopped.
func (a *Agent) Drain() {
	a.wg.Wait()
}

func (a *Agent) take(id string) (types.NotificationPayload, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	payload, ok := a.shown[id]
	delete(a.shown, id)
	return payload, ok
}

func (a *Agent) route(ctx context.Context, target string) error {
	views, err := a.views.List(ctx)
	if err != nil {
		a.log.Warn("failed to list views, opening a new window", zap.Error(err))
		views = nil
	}

	var matches []View
	for _, v := range views {
		if a.resolve(v.Location) == target {
			matches = append(matches, v)
		}
	}
	if len(matches) > 0 {
		pick := pickView(matches)
		if err := a.views.Focus(ctx, pick.ID); err == nil {
			metrics.AgentClickRoutedTotal.WithLabelValues("focus").Inc()
			a.log.Info("focused matching view",
				zap.String("view", pick.ID),
				zap.String("target", target),
			)
			return nil
		}
		a.log.Warn("failed to focus matching view", zap.String("view", pick.ID))
	} else if len(views) > 0 {
		pick := pickView(views)
		err := a.views.Focus(ctx, pick.ID)
		if err == nil {
			err = a.views.Message(ctx, pick.ID, ViewMessage{Type: "navigate", URL: target})
		}
		if err == nil {
			metrics.AgentClickRoutedTotal.WithLabelValues("navigate").Inc()
			a.log.Info("navigated existing view",
				zap.String("view", pick.ID),
				zap.String("target", target),
			)
			return nil
		}
		a.log.Warn("failed to reuse view", zap.String("view", pick.ID), zap.Error(err))
	}

	if err := a.opener.Open(ctx, target); err != nil {
		return fmt.Errorf("open window for %s: %w", target, err)
	}
	metrics.AgentClickRoutedTotal.WithLabelValues("open").Inc()
	a.log.Info("opened new window", zap.String("target", target))
	return nil
}

// resolve turns a notification target into an absolute URL under the app
// origin. Blank and unparsable targets land on the root page.
func (a *Agent) resolve(raw string) string {
	if raw == "" {
		raw = "/"
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return a.origin.ResolveReference(&url.URL{Path: "/"}).String()
	}
	return a.origin.ResolveReference(ref).String()
}

// pickView orders candidates by focus first, then most recently focused,
// then id for determinism.
func pickView(views []View) View {
	sort.Slice(views, func(i, j int) bool {
		if views[i].Focused != views[j].Focused {
			return views[i].Focused
		}
		if !views[i].LastFocused.Equal(views[j].LastFocused) {
			return views[i].LastFocused.After(views[j].LastFocused)
		}
		return views[i].ID < views[j].ID
	})
	return views[0]
}

func payloadShape(raw []byte) string {
	switch {
	case len(raw) == 0:
		return "empty"
	case json.Valid(raw):
		return "json"
	default:
		return "text"
	}
}
