package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type outboxRepository struct {
	st *state
}

func (r *outboxRepository) AppendFromEvent(_ context.Context, event domain.Event) (domain.OutboxMessage, error) {
	payload, err := domain.MarshalEvent(event)
	if err != nil {
		return domain.OutboxMessage{}, err
	}

	msg := domain.OutboxMessage{
		ID:         event.EventID(),
		EventType:  event.EventType(),
		Payload:    payload,
		OccurredAt: event.OccurredAt(),
	}
	r.st.outbox = append(r.st.outbox, msg)
	return msg, nil
}

func (r *outboxRepository) FetchPendingBatch(_ context.Context, limit int) ([]domain.OutboxMessage, error) {
	var out []domain.OutboxMessage
	for _, msg := range r.st.outbox {
		if msg.ProcessedAt == nil {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].OccurredAt.Before(out[j].OccurredAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *outboxRepository) MarkProcessed(_ context.Context, id string) error {
	for i := range r.st.outbox {
		if r.st.outbox[i].ID == id && r.st.outbox[i].ProcessedAt == nil {
			now := time.Now()
			r.st.outbox[i].ProcessedAt = &now
			return nil
		}
	}
	return domain.ErrOutboxMessageNotFound
}

func (r *outboxRepository) Stats(_ context.Context) (domain.OutboxStats, error) {
	var stats domain.OutboxStats
	for _, msg := range r.st.outbox {
		if msg.ProcessedAt != nil {
			continue
		}
		stats.PendingCount++
		if stats.OldestPendingAt.IsZero() || msg.OccurredAt.Before(stats.OldestPendingAt) {
			stats.OldestPendingAt = msg.OccurredAt
		}
	}
	return stats, nil
}
