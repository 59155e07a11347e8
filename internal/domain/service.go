package domain

// Service — услуга с фиксированной ценой в минорных единицах.
type Service struct {
	ID          string
	Name        Name
	Description string
	Price       PositiveInt
}

// Consumable — расходный материал, привязанный к услуге. Каждый заказ услуги
// списывает фиксированное количество, отмена возвращает его обратно.
type Consumable struct {
	ID          string
	ServiceID   string
	Name        Name
	Count       CountNumber
	PerOrderUse int64
}

// Consume списывает разовую норму расходника. Остаток не может стать отрицательным.
func (c *Consumable) Consume() error {
	if c.Count.Int64() < c.PerOrderUse {
		return ErrConsumableExhausted
	}
	c.Count = CountNumber(c.Count.Int64() - c.PerOrderUse)
	return nil
}

// Restore возвращает разовую норму расходника при отмене заказа.
func (c *Consumable) Restore() {
	c.Count = CountNumber(c.Count.Int64() + c.PerOrderUse)
}
