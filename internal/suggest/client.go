package suggest

import (
	"context"
	"errors"
	"time"

	"github.com/GregMSThompson/gift-budget/internal/dto"
	"github.com/GregMSThompson/gift-budget/internal/metrics"
	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/pkg/helpers"
	"github.com/GregMSThompson/gift-budget/pkg/logger"
)

var ErrNoValidSuggestions = errors.New("no valid suggestions in reply")

// Completer sends one prompt to an LLM and returns its raw text reply.
type Completer interface {
	Complete(ctx context.Context, req dto.CompletionRequest) (string, error)
}

// Result is what the chat shows. Cause is set when Degraded and is only
// ever logged.
type Result struct {
	Suggestions []models.Suggestion
	Degraded    bool
	Cause       error
}

type Client struct {
	completer   Completer
	temperature float32
	timeout     time.Duration
}

func NewClient(completer Completer, temperature float32, timeout time.Duration) *Client {
	return &Client{
		completer:   completer,
		temperature: temperature,
		timeout:     timeout,
	}
}

// Suggest never fails: transport, parse and empty-result errors all turn
// into the degraded fallback list.
func (c *Client) Suggest(ctx context.Context, r models.Recipient, message string) Result {
	log := logger.FromContext(ctx)

	suggestions, err := c.fetch(ctx, r, message)
	if err != nil {
		log.Warn("suggestion lookup failed, using defaults", "recipient_id", r.ID, "error", err)
		return Result{
			Suggestions: Fallback(r.Budget),
			Degraded:    true,
			Cause:       err,
		}
	}
	return Result{Suggestions: suggestions}
}

func (c *Client) fetch(ctx context.Context, r models.Recipient, message string) ([]models.Suggestion, error) {
	if c.completer == nil {
		return nil, errors.New("no completer configured")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := c.completer.Complete(ctx, dto.CompletionRequest{
		System:      systemInstruction,
		UserMessage: BuildPrompt(r, message),
		Temperature: helpers.Ptr(c.temperature),
	})
	metrics.SuggestionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	parsed, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	filtered := Filter(parsed)
	if len(filtered) == 0 {
		return nil, ErrNoValidSuggestions
	}
	return filtered, nil
}
