package domain

import "time"

// MinimumBalance — минимальная сумма в минорных единицах, которую клиент
// оплачивает деньгами. Итог заказа никогда не опускается ниже после скидок и баллов.
const MinimumBalance int64 = 200

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusReceived — заказ принят, время зарезервировано.
	OrderStatusReceived OrderStatus = "received"
	// OrderStatusInProgress — мастер приступил к выполнению.
	OrderStatusInProgress OrderStatus = "in_progress"
	// OrderStatusFinished — заказ выполнен; терминальный статус.
	OrderStatusFinished OrderStatus = "finished"
	// OrderStatusCancelled — заказ отменён до выполнения; терминальный статус.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order агрегирует состояние заказа клиента на конкретный слот.
type Order struct {
	ID            string
	UserID        string
	SlotID        string
	ServiceID     string
	PointUses     CountNumber
	PromotionSale CountNumber
	TotalAmount   PositiveInt
	Status        OrderStatus
	DateAdd       time.Time
	PhotoBefore   string
	PhotoAfter    string
}

// Start переводит заказ received -> in_progress.
func (o *Order) Start() error {
	if o.Status != OrderStatusReceived {
		return &OrderNotReceivedError{OrderID: o.ID, Status: o.Status}
	}
	o.Status = OrderStatusInProgress
	return nil
}

// Finish переводит заказ in_progress -> finished.
func (o *Order) Finish() error {
	if o.Status != OrderStatusInProgress {
		return &OrderStatusError{OrderID: o.ID, Status: o.Status, Action: "finished"}
	}
	o.Status = OrderStatusFinished
	return nil
}

// Cancel переводит заказ received/in_progress -> cancelled.
func (o *Order) Cancel() error {
	if o.Status != OrderStatusReceived && o.Status != OrderStatusInProgress {
		return &OrderStatusError{OrderID: o.ID, Status: o.Status, Action: "cancelled"}
	}
	o.Status = OrderStatusCancelled
	return nil
}

// ValidateInvariants проверяет базовые инварианты заказа и возвращает список замечаний.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.UserID == "" || o.SlotID == "" || o.ServiceID == "" {
		errs = append(errs, ErrOrderNotComplete)
	}
	if o.TotalAmount.Int64() < MinimumBalance {
		errs = append(errs, ErrOrderBelowMinimum)
	}

	return errs
}
