package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type orderRepository struct {
	q querier
}

const orderColumns = `
	id, user_id, slot_id, service_id, point_uses, promotion_sale,
	total_amount, status, date_add, photo_before, photo_after`

func (r *orderRepository) Create(ctx context.Context, order domain.Order) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO orders (
			id, user_id, slot_id, service_id, point_uses, promotion_sale,
			total_amount, status, date_add, photo_before, photo_after
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`,
		order.ID, order.UserID, order.SlotID, order.ServiceID,
		order.PointUses.Int64(), order.PromotionSale.Int64(), order.TotalAmount.Int64(),
		string(order.Status), order.DateAdd, order.PhotoBefore, order.PhotoAfter,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id)

	order, err := scanOrder(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE user_id = $1
		ORDER BY date_add DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("select orders by user: %w", err)
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		result = append(result, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	return result, nil
}

func (r *orderRepository) Save(ctx context.Context, order domain.Order) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE orders
		SET point_uses = $2,
		    promotion_sale = $3,
		    total_amount = $4,
		    status = $5,
		    photo_before = $6,
		    photo_after = $7
		WHERE id = $1
	`,
		order.ID, order.PointUses.Int64(), order.PromotionSale.Int64(),
		order.TotalAmount.Int64(), string(order.Status), order.PhotoBefore, order.PhotoAfter,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for order update: %w", err)
	}
	if affected == 0 {
		return domain.ErrOrderNotFound
	}
	return nil
}

func scanOrder(scan func(dest ...any) error) (domain.Order, error) {
	var (
		order                             domain.Order
		pointUses, promotionSale, total   int64
		status                            string
	)

	if err := scan(
		&order.ID, &order.UserID, &order.SlotID, &order.ServiceID,
		&pointUses, &promotionSale, &total, &status,
		&order.DateAdd, &order.PhotoBefore, &order.PhotoAfter,
	); err != nil {
		return domain.Order{}, err
	}

	order.PointUses = domain.CountNumber(pointUses)
	order.PromotionSale = domain.CountNumber(promotionSale)
	order.TotalAmount = domain.PositiveInt(total)
	order.Status = domain.OrderStatus(status)
	return order, nil
}

var _ domain.OrderRepository = (*orderRepository)(nil)
