package dto

import "github.com/GregMSThompson/gift-budget/internal/models"

type ChatRequest struct {
	Message string `json:"message"`
}

type AcceptSuggestionRequest struct {
	Suggestion models.Suggestion `json:"suggestion"`
}

type AcceptSuggestionResponse struct {
	Gift    models.Gift        `json:"gift"`
	Message models.ChatMessage `json:"message"`
}

type ChatHistoryResponse struct {
	Messages []models.ChatMessage `json:"messages"`
}
