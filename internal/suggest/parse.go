package suggest

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/pkg/helpers"
)

var fenceMarker = regexp.MustCompile("```[A-Za-z0-9_+-]*")

// candidate is one reply item before validation. estimatedPrice may arrive
// as a number or a string like "$24.99".
type candidate struct {
	Name           string          `json:"name"`
	EstimatedPrice json.RawMessage `json:"estimatedPrice"`
	StoreName      string          `json:"storeName"`
	URL            string          `json:"url"`
	ImageURL       string          `json:"imageUrl"`
}

// Parse decodes the model reply into unvalidated suggestions. It accepts a
// bare array or an object holding the array under "suggestions", "gifts" or
// "products". Markdown fence markers are dropped wherever they appear, and
// prose before or after the JSON value is ignored.
func Parse(raw string) ([]models.Suggestion, error) {
	text := strings.TrimSpace(fenceMarker.ReplaceAllString(raw, ""))
	if text == "" {
		return nil, fmt.Errorf("empty reply")
	}
	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return nil, fmt.Errorf("reply has no JSON value")
	}

	// Decode reads one value and leaves any trailing text alone.
	var body json.RawMessage
	if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode suggestion reply: %w", err)
	}

	var items []candidate
	if text[start] == '[' {
		if err := json.Unmarshal(body, &items); err != nil {
			return nil, fmt.Errorf("decode suggestion array: %w", err)
		}
	} else {
		var wrapped map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode suggestion reply: %w", err)
		}
		found := false
		for _, key := range []string{"suggestions", "gifts", "products"} {
			if list, ok := wrapped[key]; ok {
				if err := json.Unmarshal(list, &items); err != nil {
					return nil, fmt.Errorf("decode %s: %w", key, err)
				}
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("reply has no suggestion array")
		}
	}

	out := make([]models.Suggestion, 0, len(items))
	for _, c := range items {
		out = append(out, models.Suggestion{
			Name:           strings.TrimSpace(c.Name),
			EstimatedPrice: parsePrice(c.EstimatedPrice),
			StoreName:      helpers.NonEmpty(strings.TrimSpace(c.StoreName)),
			URL:            helpers.NonEmpty(strings.TrimSpace(c.URL)),
			ImageURL:       helpers.NonEmpty(strings.TrimSpace(c.ImageURL)),
		})
	}
	return out, nil
}

// parsePrice returns 0 for anything it cannot read; Filter drops those.
func parsePrice(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return n
}

// Filter keeps valid suggestions in their original order, at most
// MaxSuggestions of them.
func Filter(in []models.Suggestion) []models.Suggestion {
	out := make([]models.Suggestion, 0, min(len(in), MaxSuggestions))
	for _, s := range in {
		if len(out) == MaxSuggestions {
			break
		}
		if valid(s) {
			out = append(out, s)
		}
	}
	return out
}

func valid(s models.Suggestion) bool {
	if strings.TrimSpace(s.Name) == "" || s.EstimatedPrice <= 0 {
		return false
	}
	if s.StoreName == nil || strings.TrimSpace(*s.StoreName) == "" {
		return false
	}
	if s.URL == nil {
		return false
	}
	u := strings.ToLower(*s.URL)
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}
