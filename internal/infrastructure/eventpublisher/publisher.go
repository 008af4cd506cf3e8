package eventpublisher

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/infrastructure/metrics"
	"github.com/iho/bankist/internal/usecase"
)

// EventPublisher handles publishing events from the outbox.
type EventPublisher struct {
	outboxRepo usecase.OutboxRepository
	publisher  Publisher
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	batchSize  int
	interval   time.Duration
}

// Publisher defines the interface for publishing events to external systems.
type Publisher interface {
	Publish(ctx context.Context, event *domain.OutboxEvent) error
}

// Config for EventPublisher.
type Config struct {
	OutboxRepo usecase.OutboxRepository
	Publisher  Publisher
	Logger     zerolog.Logger
	Metrics    *metrics.Metrics
	BatchSize  int           // Number of events to fetch per batch
	Interval   time.Duration // Polling interval
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(cfg Config) *EventPublisher {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Second
	}

	return &EventPublisher{
		outboxRepo: cfg.OutboxRepo,
		publisher:  cfg.Publisher,
		logger:     cfg.Logger.With().Str("component", "event_publisher").Logger(),
		metrics:    cfg.Metrics,
		batchSize:  cfg.BatchSize,
		interval:   cfg.Interval,
	}
}

// Start begins the event publishing worker.
// It runs continuously until the context is cancelled.
func (ep *EventPublisher) Start(ctx context.Context) error {
	ep.logger.Info().
		Int("batch_size", ep.batchSize).
		Dur("interval", ep.interval).
		Msg("event publisher started")

	ticker := time.NewTicker(ep.interval)
	defer ticker.Stop()

	if err := ep.processEvents(ctx); err != nil {
		ep.logger.Error().Err(err).Msg("error processing events on start")
	}

	for {
		select {
		case <-ctx.Done():
			ep.logger.Info().Msg("event publisher shutting down")
			return ctx.Err()
		case <-ticker.C:
			if err := ep.processEvents(ctx); err != nil {
				ep.logger.Error().Err(err).Msg("error processing events")
			}
		}
	}
}

// Flush publishes everything currently in the outbox. Used on shutdown.
func (ep *EventPublisher) Flush(ctx context.Context) error {
	for {
		events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			return nil
		}
		if ep.publishBatch(ctx, events) == 0 {
			// Nothing went out; stop rather than spin on a failing publisher.
			return nil
		}
	}
}

// processEvents fetches and publishes a batch of unpublished events.
func (ep *EventPublisher) processEvents(ctx context.Context) error {
	events, err := ep.outboxRepo.GetUnpublished(ctx, ep.batchSize)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	ep.logger.Debug().Int("count", len(events)).Msg("processing events")
	ep.publishBatch(ctx, events)

	return nil
}

// publishBatch publishes events in order and returns how many went out.
// A failed event is left unpublished and retried on the next poll.
func (ep *EventPublisher) publishBatch(ctx context.Context, events []*domain.OutboxEvent) int {
	published := 0

	for _, event := range events {
		if err := ep.publisher.Publish(ctx, event); err != nil {
			ep.record(event.EventType, "error")
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.EventType).
				Msg("failed to publish event")
			continue
		}

		if err := ep.outboxRepo.MarkPublished(ctx, event.ID, time.Now().UTC()); err != nil {
			ep.logger.Error().
				Err(err).
				Str("event_id", event.ID).
				Msg("failed to mark event as published")
		}

		ep.record(event.EventType, "success")
		published++
	}

	return published
}

func (ep *EventPublisher) record(eventType, status string) {
	if ep.metrics != nil {
		ep.metrics.EventsPublished.WithLabelValues(eventType, status).Inc()
	}
}

// LogPublisher is a simple publisher that logs events.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.OutboxEvent) error {
	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.EventType).
		Str("aggregate_type", event.AggregateType).
		Str("aggregate_id", event.AggregateID).
		Interface("payload", event.Payload).
		Msg("event published")

	return nil
}
