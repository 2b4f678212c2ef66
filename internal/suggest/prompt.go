// Package suggest turns a recipient into gift suggestions: it builds the LLM
// prompt, parses and filters the reply, and falls back to fixed defaults when
// anything goes wrong.
package suggest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GregMSThompson/gift-budget/internal/models"
)

// MaxSuggestions caps both the request and the filtered result.
const MaxSuggestions = 10

const systemInstruction = "You are a gift suggestion assistant. Reply only with JSON, no prose."

// Query is the shopping search for the recipient. A non-empty message
// replaces the interests/age/gender description; the budget limit always
// applies.
func Query(r models.Recipient, message string) string {
	var b strings.Builder
	if msg := strings.TrimSpace(message); msg != "" {
		b.WriteString(msg)
	} else {
		b.WriteString("Christmas gift ideas")
		if r.Interests != nil && strings.TrimSpace(*r.Interests) != "" {
			b.WriteString(" for someone who likes ")
			b.WriteString(strings.TrimSpace(*r.Interests))
		}
		if r.Age != nil && *r.Age > 0 {
			b.WriteString(" age ")
			b.WriteString(strconv.Itoa(*r.Age))
		}
		if r.Gender != nil && strings.TrimSpace(*r.Gender) != "" {
			b.WriteString(" ")
			b.WriteString(strings.TrimSpace(*r.Gender))
		}
	}
	b.WriteString(" under $")
	b.WriteString(formatAmount(r.Budget))
	return b.String()
}

// BuildPrompt wraps Query in the instruction for the expected reply shape.
func BuildPrompt(r models.Recipient, message string) string {
	return fmt.Sprintf(
		"Find up to %d real products for: %s.\n"+
			"Return a JSON array where each item has: "+
			`"name" (string), "estimatedPrice" (number, USD), "storeName" (string), `+
			`"url" (http or https product link), "imageUrl" (string, optional).`,
		MaxSuggestions, Query(r, message))
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
