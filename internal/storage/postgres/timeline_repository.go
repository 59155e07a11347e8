package postgres

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type timelineRepository struct {
	q querier
}

func (r *timelineRepository) Append(ctx context.Context, event domain.TimelineEvent) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO order_timeline (order_id, type, reason, occurred)
		VALUES ($1,$2,$3,$4)
	`, event.OrderID, event.Type, event.Reason, event.Occurred)
	if err != nil {
		return fmt.Errorf("insert timeline event: %w", err)
	}
	return nil
}

func (r *timelineRepository) List(ctx context.Context, orderID string) ([]domain.TimelineEvent, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT order_id, type, reason, occurred
		FROM order_timeline
		WHERE order_id = $1
		ORDER BY occurred, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select timeline events: %w", err)
	}
	defer rows.Close()

	var result []domain.TimelineEvent
	for rows.Next() {
		var event domain.TimelineEvent
		if err := rows.Scan(&event.OrderID, &event.Type, &event.Reason, &event.Occurred); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		result = append(result, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline events: %w", err)
	}

	return result, nil
}

var _ domain.TimelineRepository = (*timelineRepository)(nil)
