package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/pkg/logger"
)

func TestHandleErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
		msg    string
	}{
		{"not found", errs.NewNotFoundError("recipient not found"), http.StatusNotFound, "not_found", "recipient not found"},
		{"validation", errs.NewValidationError("name is required"), http.StatusBadRequest, "invalid_input", "name is required"},
		{"auth", errs.NewAuthError("EMAIL_EXISTS"), http.StatusBadRequest, "auth_failed", "EMAIL_EXISTS"},
		{"superseded", errs.NewSupersededError(), http.StatusConflict, "superseded", "request superseded by a newer one"},
		{"wrapped", fmt.Errorf("load: %w", errs.NewNotFoundError("gone")), http.StatusNotFound, "not_found", "gone"},
		{"database", errs.NewDatabaseError("read", "failed", errors.New("boom")), http.StatusInternalServerError, "internal_error", "An error occurred"},
		{"transient", errs.NewExternalServiceError("llm", "down", true, nil), http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable"},
		{"external", errs.NewExternalServiceError("llm", "down", false, nil), http.StatusBadGateway, "service_unavailable", "Service temporarily unavailable"},
		{"unknown", errors.New("?"), http.StatusInternalServerError, "internal_error", "An unexpected error occurred"},
	}

	h := New(logger.Discard())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			h.HandleError(rr, req, tc.err)

			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			var body ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tc.code || body.Message != tc.msg {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}

func TestWriteSuccessEnvelope(t *testing.T) {
	h := New(logger.Discard())
	rr := httptest.NewRecorder()
	h.WriteSuccess(rr, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusCreated, map[string]string{"id": "r1"})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d", rr.Code)
	}
	var body struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Data["id"] != "r1" {
		t.Fatalf("body = %+v", body)
	}
}
