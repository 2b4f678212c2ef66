package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/gift-budget/internal/dto"
	"github.com/GregMSThompson/gift-budget/internal/middleware"
	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/internal/response"
)

type SuggestionService interface {
	History(ctx context.Context, uid, recipientID string, limit int) ([]models.ChatMessage, error)
	Suggest(ctx context.Context, uid, recipientID, message string) (models.ChatMessage, error)
	Accept(ctx context.Context, uid, recipientID string, s models.Suggestion) (dto.AcceptSuggestionResponse, error)
}

type recipientHandlers struct {
	ResponseHandler response.ResponseHandler
	BudgetSvc       BudgetService
	SuggestionSvc   SuggestionService
}

func NewRecipientHandlers(deps *Deps) *recipientHandlers {
	return &recipientHandlers{
		ResponseHandler: deps.ResponseHandler,
		BudgetSvc:       deps.BudgetSvc,
		SuggestionSvc:   deps.SuggestionSvc,
	}
}

func (h *recipientHandlers) RecipientRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListRecipients)
	r.Post("/", h.CreateRecipient)
	r.Route("/{recipientID}", func(r chi.Router) {
		r.Get("/", h.GetRecipient)
		r.Patch("/", h.UpdateRecipient)
		r.Delete("/", h.DeleteRecipient)

		r.Post("/gifts", h.AddGift)
		r.Patch("/gifts/{giftID}", h.UpdateGift)
		r.Delete("/gifts/{giftID}", h.DeleteGift)

		r.Get("/chat", h.ChatHistory)
		r.Post("/chat", h.Suggest)
		r.Post("/chat/accept", h.AcceptSuggestion)
	})
	return r
}

func (h *recipientHandlers) ListRecipients(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	recipients, err := h.BudgetSvc.ListRecipients(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, recipients)
}

func (h *recipientHandlers) CreateRecipient(w http.ResponseWriter, r *http.Request) {
	var body dto.RecipientRequest
	if err := decodeJSON(r, &body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	recipient, err := h.BudgetSvc.CreateRecipient(r.Context(), uid, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, recipient)
}

func (h *recipientHandlers) GetRecipient(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	recipient, err := h.BudgetSvc.GetRecipient(r.Context(), uid, chi.URLParam(r, "recipientID"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, recipient)
}

func (h *recipientHandlers) UpdateRecipient(w http.ResponseWriter, r *http.Request) {
	var patch models.RecipientPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	recipient, err := h.BudgetSvc.UpdateRecipient(r.Context(), uid, chi.URLParam(r, "recipientID"), patch)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, recipient)
}

func (h *recipientHandlers) DeleteRecipient(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.BudgetSvc.DeleteRecipient(r.Context(), uid, chi.URLParam(r, "recipientID")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}

func (h *recipientHandlers) AddGift(w http.ResponseWriter, r *http.Request) {
	var body dto.GiftRequest
	if err := decodeJSON(r, &body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	gift, err := h.BudgetSvc.AddGift(r.Context(), uid, chi.URLParam(r, "recipientID"), body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, gift)
}

func (h *recipientHandlers) UpdateGift(w http.ResponseWriter, r *http.Request) {
	var patch models.GiftPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	gift, err := h.BudgetSvc.UpdateGift(r.Context(), uid, chi.URLParam(r, "recipientID"), chi.URLParam(r, "giftID"), patch)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, gift)
}

func (h *recipientHandlers) DeleteGift(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.BudgetSvc.DeleteGift(r.Context(), uid, chi.URLParam(r, "recipientID"), chi.URLParam(r, "giftID")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}
