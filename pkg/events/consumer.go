package events

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/G-studio-design/aplikasi-notify/metrics"
	"github.com/G-studio-design/aplikasi-notify/pkg/fanout"
	"github.com/G-studio-design/aplikasi-notify/pkg/kafka"
	"github.com/G-studio-design/aplikasi-notify/pkg/repositories"
)

// Handler turns consumed domain events into dispatcher calls.
type Handler struct {
	dispatcher    *fanout.Dispatcher
	notifications *repositories.NotificationRepository
	dedupe        Deduper
	log           *zap.Logger
	tracer        trace.Tracer
}

func NewHandler(dispatcher *fanout.Dispatcher, notifications *repositories.NotificationRepository, dedupe Deduper, log *zap.Logger) *Handler {
	return &Handler{
		dispatcher:    dispatcher,
		notifications: notifications,
		dedupe:        dedupe,
		log:           log,
		tracer:        otel.Tracer("events"),
	}
}

// Handle processes one event. Duplicate delivery is skipped; an unknown
// event type is logged and dropped, never an error that would wedge the
// consumer.
func (h *Handler) Handle(ctx context.Context, event Event) error {
	if h.dedupe != nil && event.ID != "" {
		seen, err := h.dedupe.Seen(ctx, event.ID)
		if err != nil {
			h.log.Warn("event dedup check failed, processing anyway",
				zap.String("event_id", event.ID), zap.Error(err))
		} else if seen {
			metrics.EventsDuplicateTotal.WithLabelValues(event.Type).Inc()
			h.log.Info("skipping duplicate event", zap.String("event_id", event.ID))
			return nil
		}
	}

	switch event.Type {
	case TypeNotifyRoles:
		return h.dispatcher.NotifyRoles(ctx, event.Roles, event.Payload, event.ProjectID)
	case TypeNotifyUser:
		return h.dispatcher.NotifyUser(ctx, event.UserID, event.Payload, event.ProjectID)
	case TypeProjectDeleted:
		if err := h.notifications.DeleteByProject(ctx, event.ProjectID); err != nil {
			return fmt.Errorf("delete notifications for project %s: %w", event.ProjectID, err)
		}
		return nil
	default:
		h.log.Warn("unknown event type", zap.String("type", event.Type), zap.String("event_id", event.ID))
		return nil
	}
}

// Run consumes the events topic until ctx is cancelled.
func (h *Handler) Run(ctx context.Context, broker string) {
	c := kafka.NewConsumer(Topic, []string{broker}, GroupID)
	defer c.Close()

	h.log.Info("Starting Kafka consumer", zap.String("topic", Topic), zap.String("broker", broker))

	for {
		select {
		case <-ctx.Done():
			h.log.Info("Shutting down event consumer", zap.String("topic", Topic))
			return

		default:
			m, err := c.ReadFromKafka(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				h.log.Error("Error reading Kafka message", zap.String("topic", Topic), zap.Error(err))
				continue
			}

			msgCtx := ctx
			if len(m.Headers) > 0 {
				carrier := make(map[string]string)
				for _, header := range m.Headers {
					carrier[header.Key] = string(header.Value)
				}
				msgCtx = otel.GetTextMapPropagator().Extract(ctx, propagation.MapCarrier(carrier))
			}

			eventCtx, span := h.tracer.Start(msgCtx, "handle-event")
			func() {
				defer span.End()

				var event Event
				if err := json.Unmarshal(m.Value, &event); err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, "failed to unmarshal event")
					h.log.Error("Failed to unmarshal event",
						zap.ByteString("raw", m.Value),
						zap.Error(err),
					)
					return
				}

				if err := h.Handle(eventCtx, event); err != nil {
					span.RecordError(err)
					span.SetStatus(codes.Error, "event handling failed")
					h.log.Error("Event handling failed",
						zap.String("event_id", event.ID),
						zap.String("type", event.Type),
						zap.Error(err),
					)
				}
			}()
		}
	}
}
