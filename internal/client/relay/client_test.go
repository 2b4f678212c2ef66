package relayclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GregMSThompson/gift-budget/internal/dto"
	"github.com/GregMSThompson/gift-budget/pkg/helpers"
)

func TestCompleteSendsChatFormatAndReadsFirstChoice(t *testing.T) {
	var got dto.ChatCompletionRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != suggestionsPath {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		_ = json.NewEncoder(w).Encode(dto.ChatCompletionResponse{
			Choices: []dto.ChatCompletionChoice{{Message: dto.ChatCompletionMessage{Role: "assistant", Content: "[]"}}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok", "gpt-4", time.Second)
	text, err := c.Complete(context.Background(), dto.CompletionRequest{
		System:      "be helpful",
		UserMessage: "ideas",
		Temperature: helpers.Ptr(float32(0.7)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "[]" {
		t.Fatalf("text = %q", text)
	}
	if auth != "Bearer tok" {
		t.Fatalf("authorization = %q", auth)
	}
	if got.Model != "gpt-4" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "ideas" {
		t.Fatalf("unexpected request: %+v", got)
	}
}

func TestCompleteReturnsErrorOnUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "gpt-4", time.Second)
	if _, err := c.Complete(context.Background(), dto.CompletionRequest{UserMessage: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "tok", "gpt-4", time.Second)
	if _, err := c.Complete(context.Background(), dto.CompletionRequest{UserMessage: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}
