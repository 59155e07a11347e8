package domain

import "time"

// Promotion — акция с процентной скидкой на набор услуг в окне действия.
type Promotion struct {
	ID         string
	Code       Name
	Percentage PositiveInt
	Active     bool
	DayStart   time.Time
	DayEnd     time.Time
	ServiceIDs []string
}

// Validate проверяет корректность полей акции и возвращает ошибки, если они есть.
func (p *Promotion) Validate() []error {
	var errs []error

	if p.Percentage.Int64() < 1 || p.Percentage.Int64() > 99 {
		errs = append(errs, ErrPromotionPercentage)
	}
	if p.DayEnd.Before(p.DayStart) {
		errs = append(errs, ErrPromotionWindow)
	}

	return errs
}

// AppliesTo сообщает, действует ли акция на услугу в указанный день.
func (p *Promotion) AppliesTo(serviceID string, day time.Time) bool {
	if !p.Active {
		return false
	}
	if day.Before(p.DayStart) || day.After(p.DayEnd) {
		return false
	}
	for _, id := range p.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}
