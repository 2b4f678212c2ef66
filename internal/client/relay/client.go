package relayclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/GregMSThompson/gift-budget/internal/dto"
)

const suggestionsPath = "/api/gift-suggestions"

// Client sends completions through the gift-suggestion relay, which speaks
// the chat-completion wire format.
type Client struct {
	client *resty.Client
	model  string
}

// New builds a relay client. token is sent as the bearer credential; the
// relay rejects requests without one.
func New(baseURL, token, model string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if token != "" {
		c.SetAuthToken(token)
	}

	return &Client{client: c, model: model}
}

func (c *Client) Complete(ctx context.Context, req dto.CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	body := dto.ChatCompletionRequest{
		Model:       model,
		Temperature: req.Temperature,
	}
	if req.System != "" {
		body.Messages = append(body.Messages, dto.ChatCompletionMessage{Role: "system", Content: req.System})
	}
	if req.UserMessage == "" {
		return "", fmt.Errorf("completion request has no content")
	}
	body.Messages = append(body.Messages, dto.ChatCompletionMessage{Role: "user", Content: req.UserMessage})

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&body).
		Post(suggestionsPath)
	if err != nil {
		return "", fmt.Errorf("relay request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("relay status %d: %s", resp.StatusCode(), resp.String())
	}

	var out dto.ChatCompletionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode relay response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("relay response has no choices")
	}
	return out.Choices[0].Message.Content, nil
}
