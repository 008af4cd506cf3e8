package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iho/bankist/internal/domain"
	"github.com/iho/bankist/internal/usecase"
)

// OutboxRepository keeps outbox events in creation order until they are
// published.
type OutboxRepository struct {
	mu     sync.Mutex
	events []*domain.OutboxEvent
}

// NewOutboxRepository creates an empty outbox.
func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{}
}

// Create stores event once tx commits. Without a memory transaction the
// event is stored immediately.
func (r *OutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	stored := *event

	if memTx, ok := tx.(*Tx); ok && memTx != nil {
		memTx.onCommit(func() { r.append(&stored) })
		return nil
	}

	r.append(&stored)
	return nil
}

func (r *OutboxRepository) append(event *domain.OutboxEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// GetUnpublished returns up to limit unpublished events, oldest first.
func (r *OutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if limit <= 0 {
		return nil, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	events := make([]*domain.OutboxEvent, 0, limit)
	for _, e := range r.events {
		if len(events) == limit {
			break
		}
		if !e.Published {
			copied := *e
			events = append(events, &copied)
		}
	}
	return events, nil
}

// MarkPublished marks an event as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.events {
		if e.ID == id {
			e.Published = true
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

// DeletePublished drops published events older than before.
func (r *OutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	for _, e := range r.events {
		if e.Published && e.PublishedAt != nil && e.PublishedAt.Before(before) {
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return nil
}

// ByAggregate returns the events recorded for one aggregate.
func (r *OutboxRepository) ByAggregate(aggregateType, aggregateID string) []*domain.OutboxEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var events []*domain.OutboxEvent
	for _, e := range r.events {
		if e.AggregateType == aggregateType && e.AggregateID == aggregateID {
			copied := *e
			events = append(events, &copied)
		}
	}
	return events
}

// Len returns the number of stored events.
func (r *OutboxRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
