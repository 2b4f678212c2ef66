package budget

import (
	"math"
	"time"

	"github.com/GregMSThompson/gift-budget/internal/models"
)

// SumGiftPrices is the only way a recipient's Spent value is produced.
func SumGiftPrices(gifts []models.Gift) float64 {
	var sum float64
	for _, g := range gifts {
		sum += g.Price
	}
	return sum
}

func TotalSpent(recipients []models.Recipient) float64 {
	var sum float64
	for _, r := range recipients {
		sum += r.Spent
	}
	return sum
}

func Remaining(budget, spent float64) float64 {
	return budget - spent
}

// PercentageUsed is 0 for a zero budget regardless of spend.
func PercentageUsed(budget, spent float64) float64 {
	if budget == 0 {
		return 0
	}
	return spent / budget * 100
}

// DaysUntilChristmas counts whole days, rounded up, until the next
// December 25th in now's location. Once Christmas morning has started the
// count rolls to next year.
func DaysUntilChristmas(now time.Time) int {
	christmas := time.Date(now.Year(), time.December, 25, 0, 0, 0, 0, now.Location())
	if now.After(christmas) {
		christmas = time.Date(now.Year()+1, time.December, 25, 0, 0, 0, 0, now.Location())
	}
	return int(math.Ceil(christmas.Sub(now).Hours() / 24))
}
