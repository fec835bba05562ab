package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/G-studio-design/aplikasi-notify/pkg/types"
	segmentio "github.com/segmentio/kafka-go"
)

const (
	// Topic carries domain events from the project-management app.
	Topic   = "notifications.events"
	GroupID = "notification_api"

	TypeNotifyRoles    = "notify.roles"
	TypeNotifyUser     = "notify.user"
	TypeProjectDeleted = "project.deleted"
)

// Event is one domain occurrence the notification service reacts to. Which
// fields matter depends on Type: notify.roles uses Roles, notify.user uses
// UserID, project.deleted only needs ProjectID.
type Event struct {
	ID        string                    `json:"id"`
	Type      string                    `json:"type"`
	Roles     []string                  `json:"roles,omitempty"`
	UserID    string                    `json:"user_id,omitempty"`
	ProjectID string                    `json:"project_id,omitempty"`
	Payload   types.NotificationPayload `json:"payload"`
}

func NewEvent(eventType string) Event {
	return Event{ID: newEventID(), Type: eventType}
}

// Deduper remembers processed event ids so a redelivered event does not fan
// out twice.
type Deduper interface {
	Seen(ctx context.Context, eventID string) (bool, error)
}

// RedisDeduper marks event ids in redis with a 24h window, the longest a
// broker redelivery is expected to lag.
type RedisDeduper struct {
	rdb *redis.Client
}

func NewRedisDeduper(rdb *redis.Client) *RedisDeduper {
	return &RedisDeduper{rdb: rdb}
}

func (d *RedisDeduper) Seen(ctx context.Context, eventID string) (bool, error) {
	fresh, err := d.rdb.SetNX(ctx, "events:seen:"+eventID, 1, 24*time.Hour).Result()
	if err != nil {
		return false, err
	}
	return !fresh, nil
}

// Publisher writes domain events to the broker for the notification service
// to consume. Domain code that can reach Kafka uses this directly; anything
// else posts to the events HTTP endpoint instead.
type Publisher struct {
	producer producer
}

type producer interface {
	Publish(ctx context.Context, topic string, key, value []byte, headers ...segmentio.Header) error
}

func NewPublisher(p producer) *Publisher {
	return &Publisher{producer: p}
}

func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = newEventID()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	headers := make([]segmentio.Header, 0, len(carrier))
	for k, v := range carrier {
		headers = append(headers, segmentio.Header{Key: k, Value: []byte(v)})
	}

	return p.producer.Publish(ctx, Topic, []byte(event.ID), value, headers...)
}

func newEventID() string {
	return uuid.New().String()
}
