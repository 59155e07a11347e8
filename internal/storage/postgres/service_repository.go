package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type serviceRepository struct {
	q querier
}

func (r *serviceRepository) Create(ctx context.Context, service domain.Service) error {
	if service.ID == "" {
		service.ID = uuid.NewString()
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO services (id, name, description, price)
		VALUES ($1,$2,$3,$4)
	`, service.ID, service.Name.String(), service.Description, service.Price.Int64())
	if err != nil {
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id string) (domain.Service, error) {
	var (
		service domain.Service
		name    string
		price   int64
	)

	err := r.q.QueryRowContext(ctx, `
		SELECT id, name, description, price
		FROM services
		WHERE id = $1
	`, id).Scan(&service.ID, &name, &service.Description, &price)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Service{}, domain.ErrServiceNotFound
	}
	if err != nil {
		return domain.Service{}, fmt.Errorf("select service: %w", err)
	}

	service.Name = domain.Name(name)
	service.Price = domain.PositiveInt(price)
	return service, nil
}

func (r *serviceRepository) CreateConsumable(ctx context.Context, consumable domain.Consumable) error {
	if consumable.ID == "" {
		consumable.ID = uuid.NewString()
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO consumables (id, service_id, name, count, per_order_use)
		VALUES ($1,$2,$3,$4,$5)
	`, consumable.ID, consumable.ServiceID, consumable.Name.String(),
		consumable.Count.Int64(), consumable.PerOrderUse)
	if err != nil {
		return fmt.Errorf("insert consumable: %w", err)
	}
	return nil
}

func (r *serviceRepository) ListConsumables(ctx context.Context, serviceID string) ([]domain.Consumable, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, service_id, name, count, per_order_use
		FROM consumables
		WHERE service_id = $1
		ORDER BY name, id
	`, serviceID)
	if err != nil {
		return nil, fmt.Errorf("select consumables: %w", err)
	}
	defer rows.Close()

	var result []domain.Consumable
	for rows.Next() {
		var (
			c     domain.Consumable
			name  string
			count int64
		)
		if err := rows.Scan(&c.ID, &c.ServiceID, &name, &count, &c.PerOrderUse); err != nil {
			return nil, fmt.Errorf("scan consumable: %w", err)
		}
		c.Name = domain.Name(name)
		c.Count = domain.CountNumber(count)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consumables: %w", err)
	}

	return result, nil
}

func (r *serviceRepository) SaveConsumable(ctx context.Context, consumable domain.Consumable) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE consumables
		SET count = $2
		WHERE id = $1
	`, consumable.ID, consumable.Count.Int64())
	if err != nil {
		return fmt.Errorf("update consumable: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for consumable update: %w", err)
	}
	if affected == 0 {
		return domain.ErrServiceNotFound
	}
	return nil
}

var _ domain.ServiceRepository = (*serviceRepository)(nil)
