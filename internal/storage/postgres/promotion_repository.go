package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type promotionRepository struct {
	q querier
}

func (r *promotionRepository) Create(ctx context.Context, promotion domain.Promotion) error {
	if promotion.ID == "" {
		promotion.ID = uuid.NewString()
	}

	if _, err := r.q.ExecContext(ctx, `
		INSERT INTO promotions (id, code, percentage, active, day_start, day_end)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, promotion.ID, promotion.Code.String(), promotion.Percentage.Int64(),
		promotion.Active, promotion.DayStart, promotion.DayEnd); err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}

	for _, serviceID := range promotion.ServiceIDs {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO promotion_services (promotion_id, service_id)
			VALUES ($1,$2)
		`, promotion.ID, serviceID); err != nil {
			return fmt.Errorf("insert promotion service link: %w", err)
		}
	}
	return nil
}

func (r *promotionRepository) FindByCode(ctx context.Context, code string) (domain.Promotion, error) {
	var (
		promotion  domain.Promotion
		codeCol    string
		percentage int64
	)

	err := r.q.QueryRowContext(ctx, `
		SELECT id, code, percentage, active, day_start, day_end
		FROM promotions
		WHERE code = $1
	`, code).Scan(
		&promotion.ID, &codeCol, &percentage,
		&promotion.Active, &promotion.DayStart, &promotion.DayEnd,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Promotion{}, domain.ErrPromotionNotFound
	}
	if err != nil {
		return domain.Promotion{}, fmt.Errorf("select promotion: %w", err)
	}

	promotion.Code = domain.Name(codeCol)
	promotion.Percentage = domain.PositiveInt(percentage)

	rows, err := r.q.QueryContext(ctx, `
		SELECT service_id
		FROM promotion_services
		WHERE promotion_id = $1
		ORDER BY service_id
	`, promotion.ID)
	if err != nil {
		return domain.Promotion{}, fmt.Errorf("select promotion services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var serviceID string
		if err := rows.Scan(&serviceID); err != nil {
			return domain.Promotion{}, fmt.Errorf("scan promotion service link: %w", err)
		}
		promotion.ServiceIDs = append(promotion.ServiceIDs, serviceID)
	}
	if err := rows.Err(); err != nil {
		return domain.Promotion{}, fmt.Errorf("iterate promotion services: %w", err)
	}

	return promotion, nil
}

var _ domain.PromotionRepository = (*promotionRepository)(nil)
