package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type scheduleRepository struct {
	q querier
}

func (r *scheduleRepository) Create(ctx context.Context, schedule domain.Schedule) error {
	if schedule.ID == "" {
		schedule.ID = uuid.NewString()
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO schedules (id, day, master_id)
		VALUES ($1,$2,$3)
	`, schedule.ID, schedule.Day, schedule.MasterID)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

func (r *scheduleRepository) Get(ctx context.Context, id string) (domain.Schedule, error) {
	var schedule domain.Schedule

	err := r.q.QueryRowContext(ctx, `
		SELECT id, day, master_id
		FROM schedules
		WHERE id = $1
	`, id).Scan(&schedule.ID, &schedule.Day, &schedule.MasterID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Schedule{}, domain.ErrScheduleNotFound
	}
	if err != nil {
		return domain.Schedule{}, fmt.Errorf("select schedule: %w", err)
	}

	return schedule, nil
}

func (r *scheduleRepository) CreateSlot(ctx context.Context, slot domain.Slot) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO slots (id, schedule_id, time_start)
		VALUES ($1,$2,$3)
	`, slot.ID, slot.ScheduleID, slot.TimeStart.String())
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.SlotOccupiedError{ScheduleID: slot.ScheduleID, Time: slot.TimeStart}
		}
		return fmt.Errorf("insert slot: %w", err)
	}
	return nil
}

func (r *scheduleRepository) GetSlot(ctx context.Context, id string) (domain.Slot, error) {
	var (
		slot domain.Slot
		t    string
	)

	err := r.q.QueryRowContext(ctx, `
		SELECT id, schedule_id, time_start
		FROM slots
		WHERE id = $1
	`, id).Scan(&slot.ID, &slot.ScheduleID, &t)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Slot{}, domain.ErrSlotNotFound
	}
	if err != nil {
		return domain.Slot{}, fmt.Errorf("select slot: %w", err)
	}

	slot.TimeStart = domain.SlotTime(t)
	return slot, nil
}

func (r *scheduleRepository) UpdateSlotTime(ctx context.Context, slotID string, t domain.SlotTime) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE slots
		SET time_start = $2
		WHERE id = $1
	`, slotID, t.String())
	if err != nil {
		if isUniqueViolation(err) {
			return &domain.SlotOccupiedError{Time: t}
		}
		return fmt.Errorf("update slot time: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for slot update: %w", err)
	}
	if affected == 0 {
		return domain.ErrSlotNotFound
	}
	return nil
}

func (r *scheduleRepository) DeleteSlot(ctx context.Context, slotID string) error {
	if _, err := r.q.ExecContext(ctx, `
		DELETE FROM slots WHERE id = $1
	`, slotID); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

func (r *scheduleRepository) OccupiedTimes(ctx context.Context, scheduleID string) ([]domain.SlotTime, error) {
	// Каждая строка slots принадлежит живому заказу: слоты отменённых
	// заказов удаляются. Поэтому занятые времена — это просто слоты расписания.
	rows, err := r.q.QueryContext(ctx, `
		SELECT time_start
		FROM slots
		WHERE schedule_id = $1
		ORDER BY time_start
	`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("select occupied times: %w", err)
	}
	defer rows.Close()

	var result []domain.SlotTime
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("scan occupied time: %w", err)
		}
		result = append(result, domain.SlotTime(t))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occupied times: %w", err)
	}

	return result, nil
}

var _ domain.ScheduleRepository = (*scheduleRepository)(nil)
