package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/gift-budget/internal/dto"
	"github.com/GregMSThompson/gift-budget/internal/middleware"
	"github.com/GregMSThompson/gift-budget/internal/models"
)

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	handleErrorCalled bool
	handleError       error

	errorWriteCalled bool
	errorWriteStatus int
	errorWriteCode   string
	errorWriteMsg    string
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, _ *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"success":true}`))
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, _ *http.Request, status int, code, message string) {
	s.errorWriteCalled = true
	s.errorWriteStatus = status
	s.errorWriteCode = code
	s.errorWriteMsg = message
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, _ *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

type stubUserService struct {
	called          bool
	email, password string
	uid             string
	err             error
}

func (s *stubUserService) Signup(_ context.Context, email, password string) (string, error) {
	s.called = true
	s.email = email
	s.password = password
	return s.uid, s.err
}

// stubBudgetService records the last call's uid and ids.
type stubBudgetService struct {
	uid, recipientID, giftID string

	session     dto.SessionResponse
	profile     models.UserProfile
	profileReq  dto.ProfileRequest
	summary     dto.BudgetSummary
	recipients  []models.Recipient
	recipient   models.Recipient
	recipientIn dto.RecipientRequest
	recipPatch  models.RecipientPatch
	gift        models.Gift
	giftIn      dto.GiftRequest
	giftPatch   models.GiftPatch
	deleted     bool
	err         error
}

func (s *stubBudgetService) Session(_ context.Context, uid string) (dto.SessionResponse, error) {
	s.uid = uid
	return s.session, s.err
}

func (s *stubBudgetService) Profile(_ context.Context, uid string) (models.UserProfile, error) {
	s.uid = uid
	return s.profile, s.err
}

func (s *stubBudgetService) SetProfile(_ context.Context, uid string, req dto.ProfileRequest) (models.UserProfile, error) {
	s.uid = uid
	s.profileReq = req
	return s.profile, s.err
}

func (s *stubBudgetService) Summary(_ context.Context, uid string) (dto.BudgetSummary, error) {
	s.uid = uid
	return s.summary, s.err
}

func (s *stubBudgetService) ListRecipients(_ context.Context, uid string) ([]models.Recipient, error) {
	s.uid = uid
	return s.recipients, s.err
}

func (s *stubBudgetService) GetRecipient(_ context.Context, uid, rid string) (models.Recipient, error) {
	s.uid, s.recipientID = uid, rid
	return s.recipient, s.err
}

func (s *stubBudgetService) CreateRecipient(_ context.Context, uid string, req dto.RecipientRequest) (models.Recipient, error) {
	s.uid = uid
	s.recipientIn = req
	return s.recipient, s.err
}

func (s *stubBudgetService) UpdateRecipient(_ context.Context, uid, rid string, patch models.RecipientPatch) (models.Recipient, error) {
	s.uid, s.recipientID = uid, rid
	s.recipPatch = patch
	return s.recipient, s.err
}

func (s *stubBudgetService) DeleteRecipient(_ context.Context, uid, rid string) error {
	s.uid, s.recipientID = uid, rid
	s.deleted = true
	return s.err
}

func (s *stubBudgetService) AddGift(_ context.Context, uid, rid string, req dto.GiftRequest) (models.Gift, error) {
	s.uid, s.recipientID = uid, rid
	s.giftIn = req
	return s.gift, s.err
}

func (s *stubBudgetService) UpdateGift(_ context.Context, uid, rid, gid string, patch models.GiftPatch) (models.Gift, error) {
	s.uid, s.recipientID, s.giftID = uid, rid, gid
	s.giftPatch = patch
	return s.gift, s.err
}

func (s *stubBudgetService) DeleteGift(_ context.Context, uid, rid, gid string) error {
	s.uid, s.recipientID, s.giftID = uid, rid, gid
	s.deleted = true
	return s.err
}

type stubSessionCloser struct {
	uid string
	err error
}

func (s *stubSessionCloser) Close(_ context.Context, uid string) error {
	s.uid = uid
	return s.err
}

type stubSuggestionService struct {
	uid, recipientID, message string
	limit                     int
	suggestion                models.Suggestion
	messages                  []models.ChatMessage
	reply                     models.ChatMessage
	accepted                  dto.AcceptSuggestionResponse
	err                       error
}

func (s *stubSuggestionService) History(_ context.Context, uid, rid string, limit int) ([]models.ChatMessage, error) {
	s.uid, s.recipientID, s.limit = uid, rid, limit
	return s.messages, s.err
}

func (s *stubSuggestionService) Suggest(_ context.Context, uid, rid, message string) (models.ChatMessage, error) {
	s.uid, s.recipientID, s.message = uid, rid, message
	return s.reply, s.err
}

func (s *stubSuggestionService) Accept(_ context.Context, uid, rid string, sg models.Suggestion) (dto.AcceptSuggestionResponse, error) {
	s.uid, s.recipientID = uid, rid
	s.suggestion = sg
	return s.accepted, s.err
}

// withUID injects a uid into the request context the way FirebaseAuth does.
func withUID(r *http.Request, uid string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UIDKey, uid)
	return r.WithContext(ctx)
}

// withChiParams injects chi URL parameters, given as key/value pairs.
func withChiParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}
