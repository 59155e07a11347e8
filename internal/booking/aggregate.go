package booking

import (
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

// PlaceOrderParams — снимок состояния, необходимый для размещения заказа.
// Occupied должен быть прочитан в той же транзакции, в которой будут
// применены изменения.
type PlaceOrderParams struct {
	Schedule       domain.Schedule
	Service        domain.Service
	Consumables    []domain.Consumable
	UserID         string
	Time           domain.SlotTime
	Occupied       []domain.SlotTime
	Promotion      *domain.Promotion
	UserPoint      domain.UserPoint
	RequestedSpend int64
	Now            time.Time
}

// PlaceOrderResult — явный набор изменений, которые транзакционная граница
// должна применить: новый слот и заказ, обновлённые счёт баллов и расходники,
// события для outbox.
type PlaceOrderResult struct {
	Order       domain.Order
	Slot        domain.Slot
	UserPoint   domain.UserPoint
	Consumables []domain.Consumable
	Quote       Quote
	Events      []domain.Event
}

// PlaceOrder размещает заказ: проверяет свободность времени, считает
// стоимость, списывает баллы и расходники. Функция чистая относительно
// хранилищ, все изменения возвращаются вызывающему коду.
func PlaceOrder(p PlaceOrderParams) (PlaceOrderResult, error) {
	if !IsFree(p.Time, p.Occupied) {
		return PlaceOrderResult{}, &domain.SlotOccupiedError{ScheduleID: p.Schedule.ID, Time: p.Time}
	}

	promotion := p.Promotion
	if promotion != nil && !promotion.AppliesTo(p.Service.ID, p.Schedule.Day) {
		promotion = nil
	}

	quote := Calculate(promotion, p.Service.Price.Int64(), p.UserPoint.Count.Int64(), p.RequestedSpend)

	point := p.UserPoint
	if err := point.Spend(quote.PointsUsed); err != nil {
		return PlaceOrderResult{}, err
	}

	consumables := make([]domain.Consumable, len(p.Consumables))
	copy(consumables, p.Consumables)
	for i := range consumables {
		if err := consumables[i].Consume(); err != nil {
			return PlaceOrderResult{}, err
		}
	}

	totalAmount, err := domain.NewPositiveInt(quote.TotalAmount)
	if err != nil {
		return PlaceOrderResult{}, err
	}
	pointUses, err := domain.NewCountNumber(quote.PointsUsed)
	if err != nil {
		return PlaceOrderResult{}, err
	}
	promotionSale, err := domain.NewCountNumber(quote.PromotionSale)
	if err != nil {
		return PlaceOrderResult{}, err
	}

	slot := domain.Slot{
		ID:         uuid.NewString(),
		ScheduleID: p.Schedule.ID,
		TimeStart:  p.Time,
	}
	order := domain.Order{
		ID:            uuid.NewString(),
		UserID:        p.UserID,
		SlotID:        slot.ID,
		ServiceID:     p.Service.ID,
		PointUses:     pointUses,
		PromotionSale: promotionSale,
		TotalAmount:   totalAmount,
		Status:        domain.OrderStatusReceived,
		DateAdd:       p.Now.UTC(),
	}

	created := domain.OrderCreatedEvent{
		EventMeta:     domain.NewEventMeta(p.Now),
		OrderID:       order.ID,
		UserID:        order.UserID,
		ServiceID:     p.Service.ID,
		ServiceName:   p.Service.Name.String(),
		ScheduleID:    p.Schedule.ID,
		ScheduleDay:   p.Schedule.Day.Format("2006-01-02"),
		SlotTime:      p.Time.String(),
		TotalAmount:   quote.TotalAmount,
		PointsUsed:    quote.PointsUsed,
		PromotionSale: quote.PromotionSale,
	}

	return PlaceOrderResult{
		Order:       order,
		Slot:        slot,
		UserPoint:   point,
		Consumables: consumables,
		Quote:       quote,
		Events:      []domain.Event{created},
	}, nil
}

// RescheduleResult — изменения переноса заказа на другое время.
type RescheduleResult struct {
	Slot   domain.Slot
	Events []domain.Event
}

// RescheduleOrder двигает слот заказа на новое время. Допустимо только для
// заказа в статусе received; собственное прежнее время заказа не считается занятым.
func RescheduleOrder(order domain.Order, slot domain.Slot, newTime domain.SlotTime, occupied []domain.SlotTime, now time.Time) (RescheduleResult, error) {
	if order.Status != domain.OrderStatusReceived {
		return RescheduleResult{}, &domain.OrderNotReceivedError{OrderID: order.ID, Status: order.Status}
	}

	others := make([]domain.SlotTime, 0, len(occupied))
	for _, t := range occupied {
		if t == slot.TimeStart {
			continue
		}
		others = append(others, t)
	}
	if !IsFree(newTime, others) {
		return RescheduleResult{}, &domain.SlotOccupiedError{ScheduleID: slot.ScheduleID, Time: newTime}
	}

	oldTime := slot.TimeStart
	slot.TimeStart = newTime

	rescheduled := domain.OrderRescheduledEvent{
		EventMeta: domain.NewEventMeta(now),
		OrderID:   order.ID,
		OldTime:   oldTime.String(),
		NewTime:   newTime.String(),
	}

	return RescheduleResult{
		Slot:   slot,
		Events: []domain.Event{rescheduled},
	}, nil
}

// CancelResult — изменения отмены заказа: возврат баллов и расходников.
type CancelResult struct {
	Order       domain.Order
	UserPoint   domain.UserPoint
	Consumables []domain.Consumable
	Events      []domain.Event
}

// CancelOrder отменяет заказ и в точности обращает списания размещения:
// баллы возвращаются на счёт, расходники — на остатки.
func CancelOrder(order domain.Order, point domain.UserPoint, consumables []domain.Consumable, now time.Time) (CancelResult, error) {
	if err := order.Cancel(); err != nil {
		return CancelResult{}, err
	}

	point.Refund(order.PointUses.Int64())

	restored := make([]domain.Consumable, len(consumables))
	copy(restored, consumables)
	for i := range restored {
		restored[i].Restore()
	}

	cancelled := domain.OrderCancelledEvent{
		EventMeta:      domain.NewEventMeta(now),
		OrderID:        order.ID,
		UserID:         order.UserID,
		PointsReturned: order.PointUses.Int64(),
	}

	return CancelResult{
		Order:       order,
		UserPoint:   point,
		Consumables: restored,
		Events:      []domain.Event{cancelled},
	}, nil
}

// TransitionResult — изменения простого перехода статуса заказа.
type TransitionResult struct {
	Order  domain.Order
	Events []domain.Event
}

// StartOrder переводит заказ в работу.
func StartOrder(order domain.Order, now time.Time) (TransitionResult, error) {
	if err := order.Start(); err != nil {
		return TransitionResult{}, err
	}
	started := domain.OrderStartedEvent{
		EventMeta: domain.NewEventMeta(now),
		OrderID:   order.ID,
	}
	return TransitionResult{Order: order, Events: []domain.Event{started}}, nil
}

// FinishOrder завершает заказ.
func FinishOrder(order domain.Order, now time.Time) (TransitionResult, error) {
	if err := order.Finish(); err != nil {
		return TransitionResult{}, err
	}
	finished := domain.OrderFinishedEvent{
		EventMeta: domain.NewEventMeta(now),
		OrderID:   order.ID,
	}
	return TransitionResult{Order: order, Events: []domain.Event{finished}}, nil
}
