package fanout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/metrics"
	"github.com/G-studio-design/aplikasi-notify/pkg/directory"
	"github.com/G-studio-design/aplikasi-notify/pkg/repositories"
	"github.com/G-studio-design/aplikasi-notify/pkg/types"
	"github.com/G-studio-design/aplikasi-notify/pkg/webpush"
)

// Dispatcher fans one logical notification out to its recipients: it writes
// the in-app log entries and then pushes to every registered endpoint. The
// in-app write is the source of truth; push delivery is best effort on top.
type Dispatcher struct {
	resolver      *directory.Resolver
	notifications *repositories.NotificationRepository
	subscriptions *repositories.SubscriptionRepository
	transport     webpush.Transport
	log           *zap.Logger
	tracer        trace.Tracer
}

// NewDispatcher wires the dispatcher. transport may be nil when push
// credentials are not configured; in-app delivery still happens.
func NewDispatcher(
	resolver *directory.Resolver,
	notifications *repositories.NotificationRepository,
	subscriptions *repositories.SubscriptionRepository,
	transport webpush.Transport,
	log *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		resolver:      resolver,
		notifications: notifications,
		subscriptions: subscriptions,
		transport:     transport,
		log:           log,
		tracer:        otel.Tracer("fanout"),
	}
}

// NotifyRoles notifies every user holding any of the given roles. Zero
// matching users is a logged no-op, not an error.
func (d *Dispatcher) NotifyRoles(ctx context.Context, roles []string, payload types.NotificationPayload, projectID string) error {
	ctx, span := d.tracer.Start(ctx, "notify-roles")
	defer span.End()
	span.SetAttributes(attribute.StringSlice("roles", roles))

	userIDs, err := d.resolver.ResolveByRole(ctx, roles)
	if err != nil {
		return fmt.Errorf("resolve roles: %w", err)
	}
	if len(userIDs) == 0 {
		metrics.FanoutEmptyTotal.WithLabelValues("roles").Inc()
		d.log.Warn("no users found for roles", zap.Strings("roles", roles))
		return nil
	}
	metrics.FanoutRecipientsTotal.WithLabelValues("roles").Add(float64(len(userIDs)))

	return d.fanout(ctx, userIDs, payload, projectID)
}

// NotifyUser notifies a single user by id. An unknown user is a logged
// no-op.
func (d *Dispatcher) NotifyUser(ctx context.Context, userID string, payload types.NotificationPayload, projectID string) error {
	ctx, span := d.tracer.Start(ctx, "notify-user")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	id, found, err := d.resolver.ResolveByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolve user: %w", err)
	}
	if !found {
		metrics.FanoutEmptyTotal.WithLabelValues("user").Inc()
		d.log.Warn("could not find user to notify", zap.String("user_id", userID))
		return nil
	}
	metrics.FanoutRecipientsTotal.WithLabelValues("user").Inc()

	return d.fanout(ctx, []string{id}, payload, projectID)
}

func (d *Dispatcher) fanout(ctx context.Context, userIDs []string, payload types.NotificationPayload, projectID string) error {
	// The in-app history is written unconditionally, before any push
	// concern. Failing to write it is the one hard failure here.
	for _, userID := range userIDs {
		if _, err := d.notifications.Append(ctx, userID, payload, projectID); err != nil {
			return fmt.Errorf("write notification log for %s: %w", userID, err)
		}
	}

	if d.transport == nil {
		d.log.Info("push transport unconfigured, in-app delivery only",
			zap.Int("recipients", len(userIDs)))
		return nil
	}

	subs, err := d.subscriptions.ListForUsers(ctx, userIDs)
	if err != nil {
		// In-app delivery already succeeded; a registry read failure only
		// costs the push leg.
		d.log.Error("failed to load subscriptions, skipping push", zap.Error(err))
		return nil
	}
	if len(subs) == 0 {
		return nil
	}

	body, err := types.EncodeWirePayload(payload)
	if err != nil {
		d.log.Error("failed to encode push payload, skipping push", zap.Error(err))
		return nil
	}

	ctx, span := d.tracer.Start(ctx, "push-fanout")
	defer span.End()
	span.SetAttributes(attribute.Int("subscriptions", len(subs)))

	var wg sync.WaitGroup
	for _, sub := range subs {
		wg.Add(1)
		go func(endpoint, p256dh, auth string) {
			defer wg.Done()
			d.sendOne(ctx, webpush.Subscription{Endpoint: endpoint, P256dh: p256dh, Auth: auth}, body)
		}(sub.Endpoint, sub.P256dh, sub.Auth)
	}
	wg.Wait()

	return nil
}

// sendOne performs a single push attempt. A permanent rejection prunes the
// subscription; a transient one is logged and left alone, the next domain
// event will naturally retry.
func (d *Dispatcher) sendOne(ctx context.Context, sub webpush.Subscription, body []byte) {
	start := time.Now()
	err := d.transport.Send(ctx, sub, body)
	elapsed := time.Since(start).Seconds()

	switch {
	case err == nil:
		metrics.PushAttemptsTotal.WithLabelValues("success").Inc()
		metrics.PushSendDuration.WithLabelValues("success").Observe(elapsed)

	case webpush.IsPermanent(err):
		metrics.PushAttemptsTotal.WithLabelValues("permanent_failure").Inc()
		metrics.PushSendDuration.WithLabelValues("permanent_failure").Observe(elapsed)
		d.log.Info("subscription expired or invalid, removing",
			zap.String("endpoint", sub.Endpoint), zap.Error(err))
		if removeErr := d.subscriptions.Remove(ctx, sub.Endpoint); removeErr != nil {
			d.log.Error("failed to remove dead subscription",
				zap.String("endpoint", sub.Endpoint), zap.Error(removeErr))
			return
		}
		metrics.SubscriptionsPrunedTotal.Inc()

	default:
		metrics.PushAttemptsTotal.WithLabelValues("transient_failure").Inc()
		metrics.PushSendDuration.WithLabelValues("transient_failure").Observe(elapsed)
		d.log.Warn("push send failed", zap.String("endpoint", sub.Endpoint), zap.Error(err))
	}
}
