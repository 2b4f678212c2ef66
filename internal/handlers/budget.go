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

type BudgetService interface {
	Session(ctx context.Context, uid string) (dto.SessionResponse, error)
	Profile(ctx context.Context, uid string) (models.UserProfile, error)
	SetProfile(ctx context.Context, uid string, req dto.ProfileRequest) (models.UserProfile, error)
	Summary(ctx context.Context, uid string) (dto.BudgetSummary, error)

	ListRecipients(ctx context.Context, uid string) ([]models.Recipient, error)
	GetRecipient(ctx context.Context, uid, recipientID string) (models.Recipient, error)
	CreateRecipient(ctx context.Context, uid string, req dto.RecipientRequest) (models.Recipient, error)
	UpdateRecipient(ctx context.Context, uid, recipientID string, patch models.RecipientPatch) (models.Recipient, error)
	DeleteRecipient(ctx context.Context, uid, recipientID string) error

	AddGift(ctx context.Context, uid, recipientID string, req dto.GiftRequest) (models.Gift, error)
	UpdateGift(ctx context.Context, uid, recipientID, giftID string, patch models.GiftPatch) (models.Gift, error)
	DeleteGift(ctx context.Context, uid, recipientID, giftID string) error
}

type SessionCloser interface {
	Close(ctx context.Context, uid string) error
}

type budgetHandlers struct {
	ResponseHandler response.ResponseHandler
	BudgetSvc       BudgetService
	Sessions        SessionCloser
}

func NewBudgetHandlers(deps *Deps) *budgetHandlers {
	return &budgetHandlers{
		ResponseHandler: deps.ResponseHandler,
		BudgetSvc:       deps.BudgetSvc,
		Sessions:        deps.Sessions,
	}
}

func (h *budgetHandlers) SessionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetSession)
	r.Delete("/", h.CloseSession)
	return r
}

func (h *budgetHandlers) ProfileRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetProfile)
	r.Put("/", h.PutProfile)
	return r
}

func (h *budgetHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	resp, err := h.BudgetSvc.Session(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

// CloseSession waits for pending writes, bounded by the request context.
func (h *budgetHandlers) CloseSession(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	if err := h.Sessions.Close(r.Context(), uid); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}

func (h *budgetHandlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	profile, err := h.BudgetSvc.Profile(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, profile)
}

func (h *budgetHandlers) PutProfile(w http.ResponseWriter, r *http.Request) {
	var body dto.ProfileRequest
	if err := decodeJSON(r, &body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid := middleware.UID(r.Context())
	profile, err := h.BudgetSvc.SetProfile(r.Context(), uid, body)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, profile)
}

func (h *budgetHandlers) GetBudget(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UID(r.Context())
	summary, err := h.BudgetSvc.Summary(r.Context(), uid)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, summary)
}
