// Package orders содержит командные обработчики бронирования. Обработчик
// открывает единицу работы, читает состояние, прогоняет чистую операцию
// агрегата и применяет возвращённый набор изменений вместе с записями outbox
// в одной транзакции.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/bms/internal/booking"
	"github.com/vladislavdragonenkov/bms/internal/domain"
	"github.com/vladislavdragonenkov/bms/internal/mediator"
	"github.com/vladislavdragonenkov/bms/internal/metrics"
)

// Handlers — командные обработчики заказов поверх транзакционного менеджера.
type Handlers struct {
	txm     domain.TxManager
	metrics *metrics.BookingMetrics
	logger  *log.Entry
	clock   func() time.Time
}

// NewHandlers создаёт обработчики команд бронирования.
func NewHandlers(txm domain.TxManager, m *metrics.BookingMetrics, logger *log.Entry) *Handlers {
	if logger == nil {
		logger = log.WithField("component", "order-handlers")
	}
	return &Handlers{
		txm:     txm,
		metrics: m,
		logger:  logger,
		clock:   time.Now,
	}
}

// WithClock подменяет источник времени (для тестов).
func (h *Handlers) WithClock(clock func() time.Time) *Handlers {
	h.clock = clock
	return h
}

// Register регистрирует обработчики команд. Вызывается при сборке приложения,
// до того как mediator станет общим для горутин.
func (h *Handlers) Register(m *mediator.Mediator) {
	m.RegisterCommand(CommandPlaceOrder, mediator.CommandHandlerFunc(h.placeOrder))
	m.RegisterCommand(CommandRescheduleOrder, mediator.CommandHandlerFunc(h.rescheduleOrder))
	m.RegisterCommand(CommandCancelOrder, mediator.CommandHandlerFunc(h.cancelOrder))
	m.RegisterCommand(CommandStartOrder, mediator.CommandHandlerFunc(h.startOrder))
	m.RegisterCommand(CommandFinishOrder, mediator.CommandHandlerFunc(h.finishOrder))
	m.RegisterCommand(CommandRegisterUser, mediator.CommandHandlerFunc(h.registerUser))
}

func (h *Handlers) placeOrder(ctx context.Context, cmd mediator.Command) (any, error) {
	c, ok := cmd.(PlaceOrderCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command payload for %s", CommandPlaceOrder)
	}

	start := h.clock()
	defer func() {
		if h.metrics != nil {
			h.metrics.RecordCommandDuration("place_order", h.clock().Sub(start))
		}
	}()

	slotTime, err := domain.NewSlotTime(c.Time)
	if err != nil {
		return nil, err
	}

	var reply PlaceOrderReply
	err = h.txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		schedule, err := uow.Schedules().Get(ctx, c.ScheduleID)
		if err != nil {
			return err
		}
		service, err := uow.Services().Get(ctx, c.ServiceID)
		if err != nil {
			return err
		}
		consumables, err := uow.Services().ListConsumables(ctx, service.ID)
		if err != nil {
			return err
		}
		point, err := uow.UserPoints().GetByUser(ctx, c.UserID)
		if err != nil {
			return err
		}

		var promotion *domain.Promotion
		if c.PromoCode != "" {
			found, err := uow.Promotions().FindByCode(ctx, c.PromoCode)
			if err != nil {
				return err
			}
			promotion = &found
		}

		occupied, err := uow.Schedules().OccupiedTimes(ctx, schedule.ID)
		if err != nil {
			return err
		}

		result, err := booking.PlaceOrder(booking.PlaceOrderParams{
			Schedule:       schedule,
			Service:        service,
			Consumables:    consumables,
			UserID:         c.UserID,
			Time:           slotTime,
			Occupied:       occupied,
			Promotion:      promotion,
			UserPoint:      point,
			RequestedSpend: c.PointSpend,
			Now:            h.clock(),
		})
		if err != nil {
			return err
		}

		// Вставка слота — окончательный страж от двойного бронирования:
		// проигравшая гонку транзакция получает SlotOccupiedError отсюда.
		if err := uow.Schedules().CreateSlot(ctx, result.Slot); err != nil {
			return err
		}
		if err := uow.Orders().Create(ctx, result.Order); err != nil {
			return err
		}
		if err := uow.UserPoints().Save(ctx, result.UserPoint); err != nil {
			return err
		}
		for _, consumable := range result.Consumables {
			if err := uow.Services().SaveConsumable(ctx, consumable); err != nil {
				return err
			}
		}
		if err := appendEvents(ctx, uow, result.Events); err != nil {
			return err
		}

		reply = PlaceOrderReply{
			OrderID:       result.Order.ID,
			SlotID:        result.Slot.ID,
			TotalAmount:   result.Quote.TotalAmount,
			PointsUsed:    result.Quote.PointsUsed,
			PromotionSale: result.Quote.PromotionSale,
			Warnings:      result.Quote.Warnings,
		}
		return nil
	})
	if err != nil {
		if domain.IsSlotOccupied(err) && h.metrics != nil {
			h.metrics.RecordSlotConflict()
		}
		h.logger.WithError(err).WithFields(log.Fields{
			"user_id":     c.UserID,
			"schedule_id": c.ScheduleID,
			"time":        c.Time,
		}).Warn("place order failed")
		return nil, err
	}

	if h.metrics != nil {
		h.metrics.RecordOrderPlaced()
		h.metrics.RecordPointsSpent(reply.PointsUsed)
	}
	h.logger.WithFields(log.Fields{
		"order_id":     reply.OrderID,
		"total_amount": reply.TotalAmount,
		"points_used":  reply.PointsUsed,
	}).Info("order placed")

	return reply, nil
}

func (h *Handlers) rescheduleOrder(ctx context.Context, cmd mediator.Command) (any, error) {
	c, ok := cmd.(RescheduleOrderCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command payload for %s", CommandRescheduleOrder)
	}

	newTime, err := domain.NewSlotTime(c.NewTime)
	if err != nil {
		return nil, err
	}

	err = h.txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		order, err := uow.Orders().Get(ctx, c.OrderID)
		if err != nil {
			return err
		}
		slot, err := uow.Schedules().GetSlot(ctx, order.SlotID)
		if err != nil {
			return err
		}
		occupied, err := uow.Schedules().OccupiedTimes(ctx, slot.ScheduleID)
		if err != nil {
			return err
		}

		result, err := booking.RescheduleOrder(order, slot, newTime, occupied, h.clock())
		if err != nil {
			return err
		}

		if err := uow.Schedules().UpdateSlotTime(ctx, slot.ID, result.Slot.TimeStart); err != nil {
			return err
		}
		return appendEvents(ctx, uow, result.Events)
	})
	if err != nil {
		if domain.IsSlotOccupied(err) && h.metrics != nil {
			h.metrics.RecordSlotConflict()
		}
		h.logger.WithError(err).WithField("order_id", c.OrderID).Warn("reschedule failed")
		return nil, err
	}

	if h.metrics != nil {
		h.metrics.RecordOrderRescheduled()
	}
	h.logger.WithFields(log.Fields{
		"order_id": c.OrderID,
		"new_time": c.NewTime,
	}).Info("order rescheduled")

	return nil, nil
}

func (h *Handlers) cancelOrder(ctx context.Context, cmd mediator.Command) (any, error) {
	c, ok := cmd.(CancelOrderCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command payload for %s", CommandCancelOrder)
	}

	var pointsReturned int64
	err := h.txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		order, err := uow.Orders().Get(ctx, c.OrderID)
		if err != nil {
			return err
		}
		point, err := uow.UserPoints().GetByUser(ctx, order.UserID)
		if err != nil {
			return err
		}
		consumables, err := uow.Services().ListConsumables(ctx, order.ServiceID)
		if err != nil {
			return err
		}

		result, err := booking.CancelOrder(order, point, consumables, h.clock())
		if err != nil {
			return err
		}

		if err := uow.Orders().Save(ctx, result.Order); err != nil {
			return err
		}
		if err := uow.UserPoints().Save(ctx, result.UserPoint); err != nil {
			return err
		}
		for _, consumable := range result.Consumables {
			if err := uow.Services().SaveConsumable(ctx, consumable); err != nil {
				return err
			}
		}
		// Слот отменённого заказа удаляется, чтобы время снова стало доступным.
		if err := uow.Schedules().DeleteSlot(ctx, order.SlotID); err != nil {
			return err
		}
		pointsReturned = result.Order.PointUses.Int64()
		return appendEvents(ctx, uow, result.Events)
	})
	if err != nil {
		h.logger.WithError(err).WithField("order_id", c.OrderID).Warn("cancel failed")
		return nil, err
	}

	if h.metrics != nil {
		h.metrics.RecordOrderCancelled()
		h.metrics.RecordPointsReturned(pointsReturned)
	}
	h.logger.WithField("order_id", c.OrderID).Info("order cancelled")

	return nil, nil
}

func (h *Handlers) startOrder(ctx context.Context, cmd mediator.Command) (any, error) {
	c, ok := cmd.(StartOrderCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command payload for %s", CommandStartOrder)
	}
	return nil, h.transition(ctx, c.OrderID, booking.StartOrder)
}

func (h *Handlers) finishOrder(ctx context.Context, cmd mediator.Command) (any, error) {
	c, ok := cmd.(FinishOrderCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command payload for %s", CommandFinishOrder)
	}
	if err := h.transition(ctx, c.OrderID, booking.FinishOrder); err != nil {
		return nil, err
	}
	if h.metrics != nil {
		h.metrics.RecordOrderFinished()
	}
	return nil, nil
}

func (h *Handlers) transition(ctx context.Context, orderID string, op func(domain.Order, time.Time) (booking.TransitionResult, error)) error {
	err := h.txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		order, err := uow.Orders().Get(ctx, orderID)
		if err != nil {
			return err
		}
		result, err := op(order, h.clock())
		if err != nil {
			return err
		}
		if err := uow.Orders().Save(ctx, result.Order); err != nil {
			return err
		}
		return appendEvents(ctx, uow, result.Events)
	})
	if err != nil {
		h.logger.WithError(err).WithField("order_id", orderID).Warn("status transition failed")
	}
	return err
}

func (h *Handlers) registerUser(ctx context.Context, cmd mediator.Command) (any, error) {
	c, ok := cmd.(RegisterUserCommand)
	if !ok {
		return nil, fmt.Errorf("unexpected command payload for %s", CommandRegisterUser)
	}

	err := h.txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		point := domain.UserPoint{
			ID:     uuid.NewString(),
			UserID: c.UserID,
			Count:  0,
		}
		if err := uow.UserPoints().Create(ctx, point); err != nil {
			return err
		}
		created := domain.UserCreatedEvent{
			EventMeta: domain.NewEventMeta(h.clock()),
			UserID:    c.UserID,
		}
		return appendEvents(ctx, uow, []domain.Event{created})
	})
	if err != nil {
		if !errors.Is(err, domain.ErrUserPointExists) {
			h.logger.WithError(err).WithField("user_id", c.UserID).Warn("register user failed")
		}
		return nil, err
	}

	h.logger.WithField("user_id", c.UserID).Info("user point account opened")
	return nil, nil
}

// FreeSlots возвращает свободные времена расписания. Запрос, а не команда,
// поэтому идёт мимо mediator.
func (h *Handlers) FreeSlots(ctx context.Context, scheduleID string) ([]domain.SlotTime, error) {
	var free []domain.SlotTime
	err := h.txm.WithinTx(ctx, func(ctx context.Context, uow domain.UnitOfWork) error {
		if _, err := uow.Schedules().Get(ctx, scheduleID); err != nil {
			return err
		}
		occupied, err := uow.Schedules().OccupiedTimes(ctx, scheduleID)
		if err != nil {
			return err
		}
		free = booking.FreeSlots(occupied)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return free, nil
}

func appendEvents(ctx context.Context, uow domain.UnitOfWork, events []domain.Event) error {
	for _, event := range events {
		if _, err := uow.Outbox().AppendFromEvent(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
