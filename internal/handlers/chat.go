package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/gift-budget/internal/dto"
	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/middleware"
)

func (h *recipientHandlers) ChatHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.ResponseHandler.HandleError(w, r, errs.NewValidationError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	uid := middleware.UID(r.Context())
	msgs, err := h.SuggestionSvc.History(r.Context(), uid, chi.URLParam(r, "recipientID"), limit)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, dto.ChatHistoryResponse{Messages: msgs})
}

// Suggest accepts an empty body; the recipient's details then drive the query.
func (h *recipientHandlers) Suggest(w http.ResponseWriter, r *http.Request) {
	var body dto.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("invalid JSON body"))
		return
	}

	uid := middleware.UID(r.Context())
	msg, err := h.SuggestionSvc.Suggest(r.Context(), uid, chi.URLParam(r, "recipientID"), body.Message)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, msg)
}

func (h *recipientHandlers) AcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	var body dto.AcceptSuggestionRequest
	if err := decodeJSON(r, &body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	resp, err := h.SuggestionSvc.Accept(r.Context(), uid, chi.URLParam(r, "recipientID"), body.Suggestion)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, resp)
}
