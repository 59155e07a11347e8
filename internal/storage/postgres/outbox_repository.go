package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type outboxRepository struct {
	q querier
}

// AppendFromEvent сериализует событие и вставляет запись outbox внутри
// транзакции вызывающего кода: запись фиксируется тем же коммитом, что и
// породившее событие доменное изменение.
func (r *outboxRepository) AppendFromEvent(ctx context.Context, event domain.Event) (domain.OutboxMessage, error) {
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

	if _, err := r.q.ExecContext(ctx, `
		INSERT INTO outbox_messages (id, event_type, payload, occurred_at, processed_at)
		VALUES ($1,$2,$3,$4,NULL)
	`, msg.ID, msg.EventType, msg.Payload, msg.OccurredAt); err != nil {
		return domain.OutboxMessage{}, fmt.Errorf("append outbox message: %w", err)
	}

	return msg, nil
}

// FetchPendingBatch выбирает необработанные записи в порядке появления.
// SKIP LOCKED делает захват неблокирующим: строки, занятые другим экземпляром
// обработчика, пропускаются вместо ожидания.
func (r *outboxRepository) FetchPendingBatch(ctx context.Context, limit int) ([]domain.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, event_type, payload, occurred_at
		FROM outbox_messages
		WHERE processed_at IS NULL
		ORDER BY occurred_at, id
		LIMIT $1
		FOR UPDATE SKIP LOCKED
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch pending outbox messages: %w", err)
	}
	defer rows.Close()

	result := make([]domain.OutboxMessage, 0, limit)
	for rows.Next() {
		var msg domain.OutboxMessage
		if err := rows.Scan(&msg.ID, &msg.EventType, &msg.Payload, &msg.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		result = append(result, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox rows: %w", err)
	}

	return result, nil
}

// MarkProcessed единожды помечает запись обработанной; записи не удаляются.
func (r *outboxRepository) MarkProcessed(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE outbox_messages
		SET processed_at = $2
		WHERE id = $1 AND processed_at IS NULL
	`, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark outbox message processed: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for outbox mark: %w", err)
	}
	if affected == 0 {
		return domain.ErrOutboxMessageNotFound
	}
	return nil
}

func (r *outboxRepository) Stats(ctx context.Context) (domain.OutboxStats, error) {
	var (
		stats  domain.OutboxStats
		oldest sql.NullTime
	)

	if err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*), MIN(occurred_at)
		FROM outbox_messages
		WHERE processed_at IS NULL
	`).Scan(&stats.PendingCount, &oldest); err != nil {
		return domain.OutboxStats{}, fmt.Errorf("outbox stats query failed: %w", err)
	}

	if oldest.Valid {
		stats.OldestPendingAt = oldest.Time.UTC()
	}

	return stats, nil
}

var _ domain.OutboxRepository = (*outboxRepository)(nil)
