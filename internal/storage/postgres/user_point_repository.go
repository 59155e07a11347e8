package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type userPointRepository struct {
	q querier
}

func (r *userPointRepository) Create(ctx context.Context, point domain.UserPoint) error {
	if point.ID == "" {
		point.ID = uuid.NewString()
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO user_points (id, user_id, count)
		VALUES ($1,$2,$3)
	`, point.ID, point.UserID, point.Count.Int64())
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUserPointExists
		}
		return fmt.Errorf("insert user point: %w", err)
	}
	return nil
}

func (r *userPointRepository) GetByUser(ctx context.Context, userID string) (domain.UserPoint, error) {
	var (
		point domain.UserPoint
		count int64
	)

	err := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, count
		FROM user_points
		WHERE user_id = $1
	`, userID).Scan(&point.ID, &point.UserID, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserPoint{}, domain.ErrUserPointNotFound
	}
	if err != nil {
		return domain.UserPoint{}, fmt.Errorf("select user point: %w", err)
	}

	point.Count = domain.CountNumber(count)
	return point, nil
}

func (r *userPointRepository) Save(ctx context.Context, point domain.UserPoint) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE user_points
		SET count = $2
		WHERE id = $1
	`, point.ID, point.Count.Int64())
	if err != nil {
		return fmt.Errorf("update user point: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user point update: %w", err)
	}
	if affected == 0 {
		return domain.ErrUserPointNotFound
	}
	return nil
}

var _ domain.UserPointRepository = (*userPointRepository)(nil)
