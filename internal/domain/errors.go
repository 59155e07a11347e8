package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка создания PositiveInt из неположительного значения.
	ErrValueNotPositive = errors.New("value must be positive")
	// Ошибка создания CountNumber из отрицательного значения.
	ErrCountNegative = errors.New("count must be non-negative")
	// Ошибка длины имени вне границ 1..50 символов.
	ErrNameLength = errors.New("name length must be between 1 and 50")
	// Ошибка формата времени слота, ожидается HH:MM.
	ErrSlotTimeFormat = errors.New("slot time must match HH:MM")
	// Ошибка процента акции вне диапазона 1..99.
	ErrPromotionPercentage = errors.New("promotion percentage must be between 1 and 99")
	// Ошибка незаполненных обязательных ссылок заказа.
	ErrOrderNotComplete = errors.New("order must reference user, slot and service")
	// Ошибка итоговой суммы заказа ниже минимального платежа.
	ErrOrderBelowMinimum = errors.New("order total is below the minimum balance")
	// Ошибка окна действия акции: конец раньше начала.
	ErrPromotionWindow = errors.New("promotion day_end is before day_start")
	// ErrOrderNotFound возвращается, если заказ не найден в репозитории.
	ErrOrderNotFound = errors.New("order not found")
	// ErrServiceNotFound возвращается, если услуга не найдена.
	ErrServiceNotFound = errors.New("service not found")
	// ErrMasterNotFound возвращается, если мастер не найден.
	ErrMasterNotFound = errors.New("master not found")
	// ErrScheduleNotFound возвращается, если расписание не найдено.
	ErrScheduleNotFound = errors.New("schedule not found")
	// ErrSlotNotFound возвращается, если слот не найден.
	ErrSlotNotFound = errors.New("slot not found")
	// ErrUserPointNotFound возвращается, если у пользователя нет счёта баллов.
	ErrUserPointNotFound = errors.New("user point account not found")
	// ErrUserPointExists сигнализирует о повторном открытии счёта баллов.
	ErrUserPointExists = errors.New("user point account already exists")
	// ErrPromotionNotFound возвращается, если акция не найдена по коду.
	ErrPromotionNotFound = errors.New("promotion not found")
	// ErrNotEnoughPoints — попытка списать больше баллов, чем есть на счёте.
	ErrNotEnoughPoints = errors.New("not enough points on balance")
	// ErrConsumableExhausted — расходника не хватает на ещё один заказ.
	ErrConsumableExhausted = errors.New("consumable exhausted")
	// ErrOutboxMessageNotFound возвращается при попытке пометить несуществующую запись outbox.
	ErrOutboxMessageNotFound = errors.New("outbox message not found")
	// ErrUnknownEventType — тег события не зарегистрирован в реестре декодеров.
	ErrUnknownEventType = errors.New("unknown event type")
)

// SlotOccupiedError означает, что время в расписании уже занято другим заказом.
type SlotOccupiedError struct {
	ScheduleID string
	Time       SlotTime
}

func (e *SlotOccupiedError) Error() string {
	return fmt.Sprintf("slot %s in schedule %s is already occupied", e.Time, e.ScheduleID)
}

// Title возвращает текст, пригодный для показа пользователю.
func (e *SlotOccupiedError) Title() string {
	return "Выбранное время уже занято"
}

// IsSlotOccupied проверяет, является ли ошибка конфликтом занятого слота.
func IsSlotOccupied(err error) bool {
	var target *SlotOccupiedError
	return errors.As(err, &target)
}

// OrderNotReceivedError означает, что операция требует заказ в статусе RECEIVED.
type OrderNotReceivedError struct {
	OrderID string
	Status  OrderStatus
}

func (e *OrderNotReceivedError) Error() string {
	return fmt.Sprintf("order %s must be received, got status %s", e.OrderID, e.Status)
}

// Title возвращает текст, пригодный для показа пользователю.
func (e *OrderNotReceivedError) Title() string {
	return "Заказ уже взят в работу"
}

// OrderStatusError означает недопустимый переход состояния заказа.
type OrderStatusError struct {
	OrderID string
	Status  OrderStatus
	Action  string
}

func (e *OrderStatusError) Error() string {
	return fmt.Sprintf("order %s cannot be %s in status %s", e.OrderID, e.Action, e.Status)
}

// Title возвращает текст, пригодный для показа пользователю.
func (e *OrderStatusError) Title() string {
	return "Операция недоступна для текущего статуса заказа"
}
