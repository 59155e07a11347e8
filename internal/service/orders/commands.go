package orders

// Типы команд для регистрации в mediator.
const (
	CommandPlaceOrder      = "booking.command.place_order"
	CommandRescheduleOrder = "booking.command.reschedule_order"
	CommandCancelOrder     = "booking.command.cancel_order"
	CommandStartOrder      = "booking.command.start_order"
	CommandFinishOrder     = "booking.command.finish_order"
	CommandRegisterUser    = "booking.command.register_user"
)

// PlaceOrderCommand — запрос на размещение заказа.
type PlaceOrderCommand struct {
	UserID     string
	ScheduleID string
	ServiceID  string
	Time       string
	PromoCode  string
	PointSpend int64
}

// CommandType возвращает тип команды.
func (PlaceOrderCommand) CommandType() string { return CommandPlaceOrder }

// PlaceOrderReply — результат размещения заказа для вызывающего слоя.
type PlaceOrderReply struct {
	OrderID       string
	SlotID        string
	TotalAmount   int64
	PointsUsed    int64
	PromotionSale int64
	Warnings      []string
}

// RescheduleOrderCommand — запрос на перенос заказа на другое время.
type RescheduleOrderCommand struct {
	OrderID string
	NewTime string
}

// CommandType возвращает тип команды.
func (RescheduleOrderCommand) CommandType() string { return CommandRescheduleOrder }

// CancelOrderCommand — запрос на отмену заказа.
type CancelOrderCommand struct {
	OrderID string
}

// CommandType возвращает тип команды.
func (CancelOrderCommand) CommandType() string { return CommandCancelOrder }

// StartOrderCommand — запрос на перевод заказа в работу.
type StartOrderCommand struct {
	OrderID string
}

// CommandType возвращает тип команды.
func (StartOrderCommand) CommandType() string { return CommandStartOrder }

// FinishOrderCommand — запрос на завершение заказа.
type FinishOrderCommand struct {
	OrderID string
}

// CommandType возвращает тип команды.
func (FinishOrderCommand) CommandType() string { return CommandFinishOrder }

// RegisterUserCommand — запрос на открытие счёта баллов нового пользователя.
type RegisterUserCommand struct {
	UserID string
}

// CommandType возвращает тип команды.
func (RegisterUserCommand) CommandType() string { return CommandRegisterUser }
