package booking

import "github.com/vladislavdragonenkov/bms/internal/domain"

// Предупреждения расчёта стоимости. Это не ошибки: заказ размещается,
// но фактическое списание баллов отличается от запрошенного.
const (
	// WarnLessPoints — на балансе меньше баллов, чем запрошено; баллы не списаны.
	WarnLessPoints = "point balance is below requested spend, points not applied"
	// WarnMorePoints — списание урезано, чтобы сумма не упала ниже минимального платежа.
	WarnMorePoints = "point spend reduced to respect minimum balance"
)

// Quote — результат детерминированного расчёта стоимости заказа.
type Quote struct {
	TotalAmount   int64
	PointsUsed    int64
	PromotionSale int64
	Warnings      []string
}

// Calculate вычисляет итоговую сумму по цене услуги, акции и запрошенному
// списанию баллов. Порядок проверок значим. Функция без побочных эффектов:
// списание баллов применяет вызывающий код отдельным шагом.
//
// Гарантии: списание баллов никогда не опускает итог ниже MinimumBalance,
// если итог после скидки не ниже минимума; PointsUsed никогда не превышает
// баланс пользователя.
func Calculate(promotion *domain.Promotion, servicePrice, pointBalance, requestedSpend int64) Quote {
	total := servicePrice

	var sale int64
	if promotion != nil {
		sale = servicePrice * promotion.Percentage.Int64() / 100
		total -= sale
	}

	quote := Quote{PromotionSale: sale}

	switch {
	case requestedSpend <= 0:
		// Баллы не запрошены.
	case pointBalance < requestedSpend:
		quote.Warnings = append(quote.Warnings, WarnLessPoints)
	case requestedSpend >= total:
		used := total - domain.MinimumBalance
		if used > 0 {
			quote.PointsUsed = used
			total = domain.MinimumBalance
		}
		quote.Warnings = append(quote.Warnings, WarnMorePoints)
	case total-requestedSpend < domain.MinimumBalance:
		// Урезаем списание ровно настолько, чтобы остаток не ушёл под минимум.
		used := requestedSpend - (domain.MinimumBalance - (total - requestedSpend))
		if used > 0 {
			quote.PointsUsed = used
			total -= used
		}
	default:
		quote.PointsUsed = requestedSpend
		total -= requestedSpend
	}

	quote.TotalAmount = total
	return quote
}
