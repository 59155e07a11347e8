package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Стабильные теги типов событий. По тегу запись outbox восстанавливается
// в конкретное событие через реестр декодеров.
const (
	EventTypeOrderCreated     = "booking.order.created"
	EventTypeOrderCancelled   = "booking.order.cancelled"
	EventTypeOrderRescheduled = "booking.order.rescheduled"
	EventTypeOrderStarted     = "booking.order.started"
	EventTypeOrderFinished    = "booking.order.finished"
	EventTypeUserCreated      = "booking.user.created"
)

// Event — неизменяемый факт доменного уровня, попадающий в outbox и к подписчикам.
type Event interface {
	EventID() string
	EventType() string
	OccurredAt() time.Time
}

// EventMeta несёт общие поля события: уникальный идентификатор и момент появления.
type EventMeta struct {
	ID       string    `json:"event_id"`
	Occurred time.Time `json:"occurred_at"`
}

// NewEventMeta выдаёт метаданные для нового события.
func NewEventMeta(now time.Time) EventMeta {
	return EventMeta{ID: uuid.NewString(), Occurred: now.UTC()}
}

// EventID возвращает уникальный идентификатор события.
func (m EventMeta) EventID() string { return m.ID }

// OccurredAt возвращает момент появления события.
func (m EventMeta) OccurredAt() time.Time { return m.Occurred }

// OrderCreatedEvent фиксирует размещение заказа. Поля денормализованы,
// чтобы потребителю не требовалось дочитывать состояние.
type OrderCreatedEvent struct {
	EventMeta
	OrderID       string `json:"order_id"`
	UserID        string `json:"user_id"`
	ServiceID     string `json:"service_id"`
	ServiceName   string `json:"service_name"`
	ScheduleID    string `json:"schedule_id"`
	ScheduleDay   string `json:"schedule_day"`
	SlotTime      string `json:"slot_time"`
	TotalAmount   int64  `json:"total_amount"`
	PointsUsed    int64  `json:"points_used"`
	PromotionSale int64  `json:"promotion_sale"`
}

// EventType возвращает тег типа события.
func (OrderCreatedEvent) EventType() string { return EventTypeOrderCreated }

// OrderCancelledEvent фиксирует отмену заказа и возврат баллов.
type OrderCancelledEvent struct {
	EventMeta
	OrderID        string `json:"order_id"`
	UserID         string `json:"user_id"`
	PointsReturned int64  `json:"points_returned"`
}

// EventType возвращает тег типа события.
func (OrderCancelledEvent) EventType() string { return EventTypeOrderCancelled }

// OrderRescheduledEvent фиксирует перенос заказа на другое время того же дня.
type OrderRescheduledEvent struct {
	EventMeta
	OrderID string `json:"order_id"`
	OldTime string `json:"old_time"`
	NewTime string `json:"new_time"`
}

// EventType возвращает тег типа события.
func (OrderRescheduledEvent) EventType() string { return EventTypeOrderRescheduled }

// OrderStartedEvent фиксирует начало выполнения заказа.
type OrderStartedEvent struct {
	EventMeta
	OrderID string `json:"order_id"`
}

// EventType возвращает тег типа события.
func (OrderStartedEvent) EventType() string { return EventTypeOrderStarted }

// OrderFinishedEvent фиксирует завершение заказа.
type OrderFinishedEvent struct {
	EventMeta
	OrderID string `json:"order_id"`
}

// EventType возвращает тег типа события.
func (OrderFinishedEvent) EventType() string { return EventTypeOrderFinished }

// UserCreatedEvent фиксирует регистрацию пользователя и открытие счёта баллов.
type UserCreatedEvent struct {
	EventMeta
	UserID string `json:"user_id"`
}

// EventType возвращает тег типа события.
func (UserCreatedEvent) EventType() string { return EventTypeUserCreated }

// MarshalEvent сериализует событие в плоский JSON для записи в outbox.
func MarshalEvent(e Event) ([]byte, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.EventType(), err)
	}
	return payload, nil
}

// DecodeFunc восстанавливает событие из сериализованного payload записи outbox.
type DecodeFunc func(payload []byte) (Event, error)

func decodeJSON[T Event](payload []byte) (Event, error) {
	var e T
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}
	return e, nil
}

// Декодеры по одному на тип события; регистрируются в реестре на старте процесса.
var (
	DecodeOrderCreated     DecodeFunc = decodeJSON[OrderCreatedEvent]
	DecodeOrderCancelled   DecodeFunc = decodeJSON[OrderCancelledEvent]
	DecodeOrderRescheduled DecodeFunc = decodeJSON[OrderRescheduledEvent]
	DecodeOrderStarted     DecodeFunc = decodeJSON[OrderStartedEvent]
	DecodeOrderFinished    DecodeFunc = decodeJSON[OrderFinishedEvent]
	DecodeUserCreated      DecodeFunc = decodeJSON[UserCreatedEvent]
)
