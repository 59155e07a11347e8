package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type masterRepository struct {
	q querier
}

func (r *masterRepository) Create(ctx context.Context, master domain.Master) error {
	if master.ID == "" {
		master.ID = uuid.NewString()
	}

	if _, err := r.q.ExecContext(ctx, `
		INSERT INTO masters (id, user_id, description)
		VALUES ($1,$2,$3)
	`, master.ID, master.UserID, master.Description); err != nil {
		return fmt.Errorf("insert master: %w", err)
	}

	for _, serviceID := range master.ServiceIDs {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO master_services (master_id, service_id)
			VALUES ($1,$2)
		`, master.ID, serviceID); err != nil {
			return fmt.Errorf("insert master service link: %w", err)
		}
	}
	return nil
}

func (r *masterRepository) Get(ctx context.Context, id string) (domain.Master, error) {
	var master domain.Master

	err := r.q.QueryRowContext(ctx, `
		SELECT id, user_id, description
		FROM masters
		WHERE id = $1
	`, id).Scan(&master.ID, &master.UserID, &master.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Master{}, domain.ErrMasterNotFound
	}
	if err != nil {
		return domain.Master{}, fmt.Errorf("select master: %w", err)
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT service_id
		FROM master_services
		WHERE master_id = $1
		ORDER BY service_id
	`, id)
	if err != nil {
		return domain.Master{}, fmt.Errorf("select master services: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var serviceID string
		if err := rows.Scan(&serviceID); err != nil {
			return domain.Master{}, fmt.Errorf("scan master service link: %w", err)
		}
		master.ServiceIDs = append(master.ServiceIDs, serviceID)
	}
	if err := rows.Err(); err != nil {
		return domain.Master{}, fmt.Errorf("iterate master services: %w", err)
	}

	return master, nil
}

var _ domain.MasterRepository = (*masterRepository)(nil)
