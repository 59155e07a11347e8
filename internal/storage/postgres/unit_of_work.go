package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

// querier — общий срез API *sql.DB и *sql.Tx; репозитории привязываются
// к транзакции вызывающего кода, а не открывают собственные.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager исполняет единицы работы в границах одной PostgreSQL-транзакции.
type TxManager struct {
	db *sql.DB
}

// NewTxManager создаёт транзакционный менеджер поверх Store.
func NewTxManager(store *Store) *TxManager {
	return &TxManager{db: store.DB()}
}

// WithinTx открывает транзакцию, строит привязанную к ней единицу работы и
// исполняет fn. Ошибка fn откатывает все изменения, включая записи outbox.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, uow domain.UnitOfWork) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(ctx, &unitOfWork{q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// unitOfWork выдаёт репозитории, привязанные к одной транзакции.
type unitOfWork struct {
	q querier
}

func (u *unitOfWork) Services() domain.ServiceRepository     { return &serviceRepository{q: u.q} }
func (u *unitOfWork) Masters() domain.MasterRepository       { return &masterRepository{q: u.q} }
func (u *unitOfWork) Schedules() domain.ScheduleRepository   { return &scheduleRepository{q: u.q} }
func (u *unitOfWork) Orders() domain.OrderRepository         { return &orderRepository{q: u.q} }
func (u *unitOfWork) UserPoints() domain.UserPointRepository { return &userPointRepository{q: u.q} }
func (u *unitOfWork) Promotions() domain.PromotionRepository { return &promotionRepository{q: u.q} }
func (u *unitOfWork) Timeline() domain.TimelineRepository    { return &timelineRepository{q: u.q} }
func (u *unitOfWork) Outbox() domain.OutboxRepository        { return &outboxRepository{q: u.q} }

var _ domain.TxManager = (*TxManager)(nil)
var _ domain.UnitOfWork = (*unitOfWork)(nil)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
