package domain

// UserPoint — счёт бонусных баллов пользователя, ровно один на пользователя.
type UserPoint struct {
	ID     string
	UserID string
	Count  CountNumber
}

// Spend списывает баллы. Баланс никогда не уходит в минус.
func (u *UserPoint) Spend(n int64) error {
	if n < 0 {
		return ErrCountNegative
	}
	if u.Count.Int64() < n {
		return ErrNotEnoughPoints
	}
	u.Count = CountNumber(u.Count.Int64() - n)
	return nil
}

// Refund возвращает баллы при отмене заказа.
func (u *UserPoint) Refund(n int64) {
	if n <= 0 {
		return
	}
	u.Count = CountNumber(u.Count.Int64() + n)
}
