package store

import (
	"time"

	"github.com/GregMSThompson/gift-budget/internal/models"
)

// Firestore rejects undefined values, so every write goes through
// stripAbsent: nil values and nil pointers are dropped, set pointers are
// dereferenced.
func stripAbsent(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case nil:
			continue
		case *string:
			if val == nil {
				continue
			}
			out[k] = *val
		case *int:
			if val == nil {
				continue
			}
			out[k] = *val
		case *float64:
			if val == nil {
				continue
			}
			out[k] = *val
		case time.Time:
			if val.IsZero() {
				continue
			}
			out[k] = val
		default:
			out[k] = v
		}
	}
	return out
}

func profileDoc(p models.UserProfile, now time.Time) map[string]any {
	return stripAbsent(map[string]any{
		"firstName":   p.FirstName,
		"totalBudget": p.TotalBudget,
		"updatedAt":   now,
	})
}

// recipientDoc leaves out gifts; they live in their own subcollection. spent
// is written for readers of the raw documents but never trusted on read.
func recipientDoc(r models.Recipient, now time.Time) map[string]any {
	return stripAbsent(map[string]any{
		"id":        r.ID,
		"name":      r.Name,
		"budget":    r.Budget,
		"spent":     r.Spent,
		"age":       r.Age,
		"gender":    r.Gender,
		"interests": r.Interests,
		"createdAt": r.CreatedAt,
		"updatedAt": now,
	})
}

func giftDoc(g models.Gift, now time.Time) map[string]any {
	return stripAbsent(map[string]any{
		"id":          g.ID,
		"name":        g.Name,
		"price":       g.Price,
		"recipientId": g.RecipientID,
		"storeName":   g.StoreName,
		"url":         g.URL,
		"imageUrl":    g.ImageURL,
		"createdAt":   g.CreatedAt,
		"updatedAt":   now,
	})
}

func suggestionDoc(s models.Suggestion) map[string]any {
	return stripAbsent(map[string]any{
		"name":           s.Name,
		"estimatedPrice": s.EstimatedPrice,
		"storeName":      s.StoreName,
		"url":            s.URL,
		"imageUrl":       s.ImageURL,
	})
}

func chatDoc(m models.ChatMessage) map[string]any {
	var suggestions []map[string]any
	for _, s := range m.Suggestions {
		suggestions = append(suggestions, suggestionDoc(s))
	}
	fields := map[string]any{
		"id":        m.ID,
		"type":      m.Type,
		"text":      m.Text,
		"timestamp": m.Timestamp,
		"expiresAt": m.ExpiresAt,
	}
	if len(suggestions) > 0 {
		fields["suggestions"] = suggestions
	}
	if m.Degraded {
		fields["degraded"] = true
	}
	return stripAbsent(fields)
}
