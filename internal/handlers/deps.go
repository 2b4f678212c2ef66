package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/response"
)

type Deps struct {
	Log             *slog.Logger
	ResponseHandler response.ResponseHandler
	UserSvc         UserService
	BudgetSvc       BudgetService
	SuggestionSvc   SuggestionService
	Sessions        SessionCloser
}

// decodeJSON reads a JSON body into v. Malformed input is a validation error.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errs.NewValidationError("invalid JSON body")
	}
	return nil
}
