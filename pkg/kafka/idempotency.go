package kafka

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// IdempotencyStore records which event IDs have been consumed so that
// redelivered messages are not processed twice. Implementations must be safe
// for concurrent use.
type IdempotencyStore interface {
	// MarkProcessed records the event ID. It returns false when the ID was
	// already recorded, meaning the event is a redelivery.
	MarkProcessed(ctx context.Context, eventID string) (bool, error)
}

// MemoryIdempotencyStore keeps processed event IDs in memory. Suitable for
// development and single-instance consumers; entries expire after the
// configured TTL to bound memory usage.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
}

// NewMemoryIdempotencyStore creates an in-memory store with the given TTL.
// Expired entries are lazily dropped on access.
func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		entries: make(map[string]time.Time),
		ttl:     ttl,
	}
}

// MarkProcessed records the event ID, returning false if it is already
// present and not expired.
func (s *MemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ts, exists := s.entries[eventID]; exists && time.Since(ts) <= s.ttl {
		return false, nil
	}
	s.entries[eventID] = time.Now()
	return true, nil
}

// Len returns the number of entries in the store, including entries that have
// expired but not yet been dropped.
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// IdempotentHandler wraps a Handler with deduplication. Events whose EventID
// was already recorded in the store are skipped. Events without an EventID
// cannot be deduplicated and pass straight through.
func IdempotentHandler(store IdempotencyStore, inner Handler, logger *slog.Logger) Handler {
	return func(ctx context.Context, event *Event) error {
		if event.EventID == "" {
			return inner(ctx, event)
		}

		first, err := store.MarkProcessed(ctx, event.EventID)
		if err != nil {
			// On store failure, process the message rather than risk losing it.
			logger.Warn("idempotency store unavailable, processing anyway",
				slog.String("event_id", event.EventID),
				slog.String("error", err.Error()),
			)
			return inner(ctx, event)
		}

		if !first {
			ConsumerMessagesDuplicate.WithLabelValues(event.EventType).Inc()
			logger.Debug("skipping redelivered event",
				slog.String("event_id", event.EventID),
				slog.String("event_type", event.EventType),
				slog.String("aggregate_id", event.AggregateID),
			)
			return nil
		}

		return inner(ctx, event)
	}
}
