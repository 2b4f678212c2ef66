package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/GregMSThompson/gift-budget/internal/dto"
	"github.com/GregMSThompson/gift-budget/internal/models"
)

func newBudgetTestHandlers() (*budgetHandlers, *stubBudgetService, *stubSessionCloser, *stubResponseHandler) {
	svc := &stubBudgetService{}
	closer := &stubSessionCloser{}
	resp := &stubResponseHandler{}
	h := NewBudgetHandlers(&Deps{ResponseHandler: resp, BudgetSvc: svc, Sessions: closer})
	return h, svc, closer, resp
}

func TestGetSession_OK(t *testing.T) {
	h, svc, _, resp := newBudgetTestHandlers()
	svc.session = dto.SessionResponse{UID: "uid-1", Next: dto.NextBudgetInput}

	req := withUID(httptest.NewRequest(http.MethodGet, "/session", nil), "uid-1")
	rr := httptest.NewRecorder()
	h.GetSession(rr, req)

	if svc.uid != "uid-1" {
		t.Fatalf("uid = %q", svc.uid)
	}
	if got, ok := resp.writeSuccessData.(dto.SessionResponse); !ok || got.Next != dto.NextBudgetInput {
		t.Fatalf("unexpected data: %#v", resp.writeSuccessData)
	}
}

func TestCloseSession(t *testing.T) {
	h, _, closer, resp := newBudgetTestHandlers()

	req := withUID(httptest.NewRequest(http.MethodDelete, "/session", nil), "uid-1")
	rr := httptest.NewRecorder()
	h.CloseSession(rr, req)

	if closer.uid != "uid-1" {
		t.Fatalf("Close called with %q", closer.uid)
	}
	if resp.writeSuccessStatus != http.StatusNoContent {
		t.Fatalf("status = %d", resp.writeSuccessStatus)
	}
}

func TestCloseSessionFlushError(t *testing.T) {
	h, _, closer, resp := newBudgetTestHandlers()
	closer.err = errors.New("deadline exceeded")

	req := withUID(httptest.NewRequest(http.MethodDelete, "/session", nil), "uid-1")
	h.CloseSession(httptest.NewRecorder(), req)

	if !resp.handleErrorCalled || resp.handleError != closer.err {
		t.Fatalf("expected flush error to reach HandleError")
	}
}

func TestPutProfile(t *testing.T) {
	h, svc, _, resp := newBudgetTestHandlers()
	svc.profile = models.UserProfile{FirstName: "Sam", TotalBudget: 500}

	body := `{"firstName":"Sam","totalBudget":500}`
	req := withUID(httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(body)), "uid-1")
	h.PutProfile(httptest.NewRecorder(), req)

	if svc.profileReq.FirstName != "Sam" || svc.profileReq.TotalBudget == nil || *svc.profileReq.TotalBudget != 500 {
		t.Fatalf("unexpected request: %+v", svc.profileReq)
	}
	if resp.writeSuccessStatus != http.StatusOK {
		t.Fatalf("status = %d", resp.writeSuccessStatus)
	}
}

func TestPutProfileInvalidJSON(t *testing.T) {
	h, svc, _, resp := newBudgetTestHandlers()

	req := withUID(httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader("{")), "uid-1")
	h.PutProfile(httptest.NewRecorder(), req)

	if svc.uid != "" {
		t.Fatalf("service should not be called")
	}
	if !resp.handleErrorCalled {
		t.Fatalf("HandleError should be called")
	}
}

func TestGetBudgetServiceError(t *testing.T) {
	h, svc, _, resp := newBudgetTestHandlers()
	svc.err = errors.New("load failed")

	req := withUID(httptest.NewRequest(http.MethodGet, "/budget", nil), "uid-1")
	h.GetBudget(httptest.NewRecorder(), req)

	if !resp.handleErrorCalled || resp.handleError != svc.err {
		t.Fatalf("expected service error")
	}
}
