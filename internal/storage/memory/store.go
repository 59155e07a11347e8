// Package memory — in-memory реализация единицы работы для тестов и
// локального режима без PostgreSQL. Транзакция исполняется над копией
// состояния: успех публикует копию, ошибка её отбрасывает, поэтому откат
// скрывает и записи outbox, добавленные внутри транзакции.
package memory

import (
	"context"
	"sync"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

type state struct {
	services    map[string]domain.Service
	consumables map[string]domain.Consumable
	masters     map[string]domain.Master
	schedules   map[string]domain.Schedule
	slots       map[string]domain.Slot
	// slotTimes — индекс уникальности (schedule_id, time_start) -> slot_id.
	slotTimes  map[string]string
	orders     map[string]domain.Order
	userPoints map[string]domain.UserPoint
	promotions map[string]domain.Promotion
	timeline   []domain.TimelineEvent
	outbox     []domain.OutboxMessage
}

func newState() *state {
	return &state{
		services:    make(map[string]domain.Service),
		consumables: make(map[string]domain.Consumable),
		masters:     make(map[string]domain.Master),
		schedules:   make(map[string]domain.Schedule),
		slots:       make(map[string]domain.Slot),
		slotTimes:   make(map[string]string),
		orders:      make(map[string]domain.Order),
		userPoints:  make(map[string]domain.UserPoint),
		promotions:  make(map[string]domain.Promotion),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.services {
		c.services[k] = v
	}
	for k, v := range s.consumables {
		c.consumables[k] = v
	}
	for k, v := range s.masters {
		c.masters[k] = v
	}
	for k, v := range s.schedules {
		c.schedules[k] = v
	}
	for k, v := range s.slots {
		c.slots[k] = v
	}
	for k, v := range s.slotTimes {
		c.slotTimes[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k, v := range s.userPoints {
		c.userPoints[k] = v
	}
	for k, v := range s.promotions {
		c.promotions[k] = v
	}
	c.timeline = append(c.timeline, s.timeline...)
	c.outbox = append(c.outbox, s.outbox...)
	return c
}

func slotTimeKey(scheduleID string, t domain.SlotTime) string {
	return scheduleID + "@" + t.String()
}

// TxManager — in-memory транзакционный менеджер. Глобальный mutex
// сериализует транзакции, что имитирует строгую изоляцию хранилища.
type TxManager struct {
	mu sync.Mutex
	st *state
}

// NewTxManager создаёт пустое in-memory хранилище.
func NewTxManager() *TxManager {
	return &TxManager{st: newState()}
}

// WithinTx исполняет fn над копией состояния и публикует её при успехе.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context, uow domain.UnitOfWork) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.st.clone()
	if err := fn(ctx, &unitOfWork{st: work}); err != nil {
		return err
	}

	m.st = work
	return nil
}

type unitOfWork struct {
	st *state
}

func (u *unitOfWork) Services() domain.ServiceRepository     { return &serviceRepository{st: u.st} }
func (u *unitOfWork) Masters() domain.MasterRepository       { return &masterRepository{st: u.st} }
func (u *unitOfWork) Schedules() domain.ScheduleRepository   { return &scheduleRepository{st: u.st} }
func (u *unitOfWork) Orders() domain.OrderRepository         { return &orderRepository{st: u.st} }
func (u *unitOfWork) UserPoints() domain.UserPointRepository { return &userPointRepository{st: u.st} }
func (u *unitOfWork) Promotions() domain.PromotionRepository { return &promotionRepository{st: u.st} }
func (u *unitOfWork) Timeline() domain.TimelineRepository    { return &timelineRepository{st: u.st} }
func (u *unitOfWork) Outbox() domain.OutboxRepository        { return &outboxRepository{st: u.st} }

var _ domain.TxManager = (*TxManager)(nil)
var _ domain.UnitOfWork = (*unitOfWork)(nil)
