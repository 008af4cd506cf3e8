package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iho/bankist/internal/domain"
)

// EventMessage is the JSON body published for each outbox event.
type EventMessage struct {
	ID            string         `json:"id"`
	EventType     string         `json:"event_type"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   string         `json:"aggregate_id"`
	Payload       map[string]any `json:"payload"`
	CreatedAt     time.Time      `json:"created_at"`
}

// EventPublisher publishes outbox events on a Redis channel.
type EventPublisher struct {
	client  *redis.Client
	channel string
}

// NewEventPublisher creates a publisher for channel.
func NewEventPublisher(client *redis.Client, channel string) *EventPublisher {
	return &EventPublisher{
		client:  client,
		channel: channel,
	}
}

// Publish sends event as JSON.
func (p *EventPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	body, err := json.Marshal(EventMessage{
		ID:            event.ID,
		EventType:     event.EventType,
		AggregateType: event.AggregateType,
		AggregateID:   event.AggregateID,
		Payload:       event.Payload,
		CreatedAt:     event.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	return p.client.Publish(ctx, p.channel, body).Err()
}
