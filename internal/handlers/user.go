package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/gift-budget/internal/dto"
	"github.com/GregMSThompson/gift-budget/internal/response"
)

type UserService interface {
	Signup(ctx context.Context, email, password string) (string, error)
}

type userHandlers struct {
	ResponseHandler response.ResponseHandler
	UserSvc         UserService
}

func NewUserHandlers(deps *Deps) *userHandlers {
	return &userHandlers{
		ResponseHandler: deps.ResponseHandler,
		UserSvc:         deps.UserSvc,
	}
}

func (h *userHandlers) AuthRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/signup", h.Signup)
	return r
}

func (h *userHandlers) Signup(w http.ResponseWriter, r *http.Request) {
	var body dto.SignupRequest
	if err := decodeJSON(r, &body); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	uid, err := h.UserSvc.Signup(r.Context(), body.Email, body.Password)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}

	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, dto.SignupResponse{UID: uid})
}
