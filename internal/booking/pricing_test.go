package booking

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/bms/internal/domain"
)

func promo(percentage int64) *domain.Promotion {
	return &domain.Promotion{
		ID:         "promo-1",
		Code:       "SPRING",
		Percentage: domain.PositiveInt(percentage),
		Active:     true,
		DayStart:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		DayEnd:     time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestCalculatePromotionAndPoints(t *testing.T) {
	t.Parallel()

	// Цена 1500, скидка 20%, баланс 1000, запрошено 150.
	quote := Calculate(promo(20), 1500, 1000, 150)

	if quote.PromotionSale != 300 {
		t.Fatalf("expected sale 300, got %d", quote.PromotionSale)
	}
	if quote.PointsUsed != 150 {
		t.Fatalf("expected 150 points used, got %d", quote.PointsUsed)
	}
	if quote.TotalAmount != 1050 {
		t.Fatalf("expected total 1050, got %d", quote.TotalAmount)
	}
	if len(quote.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", quote.Warnings)
	}
}

func TestCalculateSpendClampedToMinimum(t *testing.T) {
	t.Parallel()

	// Цена 680, скидка 20% -> 544; запрошено 700 баллов при балансе 1000.
	quote := Calculate(promo(20), 680, 1000, 700)

	if quote.TotalAmount != domain.MinimumBalance {
		t.Fatalf("expected total %d, got %d", domain.MinimumBalance, quote.TotalAmount)
	}
	if quote.PointsUsed != 344 {
		t.Fatalf("expected 344 points used, got %d", quote.PointsUsed)
	}
	if len(quote.Warnings) != 1 || quote.Warnings[0] != WarnMorePoints {
		t.Fatalf("expected more-points warning, got %v", quote.Warnings)
	}
}

func TestCalculateInsufficientBalance(t *testing.T) {
	t.Parallel()

	quote := Calculate(nil, 1500, 1, 700)

	if quote.PointsUsed != 0 {
		t.Fatalf("expected no points used, got %d", quote.PointsUsed)
	}
	if quote.TotalAmount != 1500 {
		t.Fatalf("expected full price, got %d", quote.TotalAmount)
	}
	if len(quote.Warnings) != 1 || quote.Warnings[0] != WarnLessPoints {
		t.Fatalf("expected less-points warning, got %v", quote.Warnings)
	}
}

func TestCalculatePartialClamp(t *testing.T) {
	t.Parallel()

	// Остаток после запрошенного списания ушёл бы под минимум: 500-350=150 < 200.
	quote := Calculate(nil, 500, 1000, 350)

	if quote.TotalAmount != domain.MinimumBalance {
		t.Fatalf("expected total %d, got %d", domain.MinimumBalance, quote.TotalAmount)
	}
	if quote.PointsUsed != 300 {
		t.Fatalf("expected 300 points used, got %d", quote.PointsUsed)
	}
	if len(quote.Warnings) != 0 {
		t.Fatalf("expected no warnings for partial clamp, got %v", quote.Warnings)
	}
}

func TestCalculateNoSpendRequested(t *testing.T) {
	t.Parallel()

	quote := Calculate(nil, 900, 500, 0)

	if quote.PointsUsed != 0 || quote.TotalAmount != 900 || len(quote.Warnings) != 0 {
		t.Fatalf("unexpected quote for zero spend: %+v", quote)
	}
}

func TestCalculateGuarantees(t *testing.T) {
	t.Parallel()

	prices := []int64{200, 201, 250, 500, 1500, 99999}
	balances := []int64{0, 1, 199, 200, 1000, 100000}
	spends := []int64{-1, 0, 1, 199, 200, 345, 99999}
	promos := []*domain.Promotion{nil, promo(1), promo(20), promo(99)}

	for _, p := range promos {
		for _, price := range prices {
			for _, balance := range balances {
				for _, spend := range spends {
					quote := Calculate(p, price, balance, spend)
					if quote.PointsUsed > balance {
						t.Fatalf("points used %d exceed balance %d", quote.PointsUsed, balance)
					}
					if quote.PointsUsed < 0 {
						t.Fatalf("negative points used: %d", quote.PointsUsed)
					}
					discounted := price - quote.PromotionSale
					if discounted >= domain.MinimumBalance && quote.TotalAmount < domain.MinimumBalance {
						t.Fatalf("total %d fell below minimum for price %d spend %d", quote.TotalAmount, price, spend)
					}
					if quote.TotalAmount+quote.PointsUsed != discounted {
						t.Fatalf("total %d + points %d != discounted %d", quote.TotalAmount, quote.PointsUsed, discounted)
					}
				}
			}
		}
	}
}
