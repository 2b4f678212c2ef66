package suggest

import (
	"math"

	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/pkg/helpers"
)

type fallbackItem struct {
	name, store, url, image string
	share, limit            float64
}

var fallbackItems = []fallbackItem{
	{"Gift Card", "Amazon", "https://amazon.com", "https://via.placeholder.com/150?text=Gift+Card", 0.30, 50},
	{"Cozy Blanket", "Target", "https://target.com", "https://via.placeholder.com/150?text=Blanket", 0.25, 40},
	{"Board Game", "Walmart", "https://walmart.com", "https://via.placeholder.com/150?text=Board+Game", 0.30, 45},
}

// Fallback returns the fixed default suggestions priced against budget.
func Fallback(budget float64) []models.Suggestion {
	out := make([]models.Suggestion, 0, len(fallbackItems))
	for _, it := range fallbackItems {
		out = append(out, models.Suggestion{
			Name:           it.name,
			EstimatedPrice: math.Min(budget*it.share, it.limit),
			StoreName:      helpers.Ptr(it.store),
			URL:            helpers.Ptr(it.url),
			ImageURL:       helpers.Ptr(it.image),
		})
	}
	return out
}
