package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/gift-budget/internal/budget"
	"github.com/GregMSThompson/gift-budget/internal/dto"
	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/pkg/helpers"
	"github.com/GregMSThompson/gift-budget/pkg/logger"
)

type sessionSource interface {
	Get(ctx context.Context, uid string) (*Session, error)
}

type budgetService struct {
	sessions sessionSource
	clockNow func() time.Time
	newID    func() string
}

func NewBudgetService(sessions sessionSource) *budgetService {
	return &budgetService{
		sessions: sessions,
		clockNow: time.Now,
		newID:    uuid.NewString,
	}
}

func (s *budgetService) Session(ctx context.Context, uid string) (dto.SessionResponse, error) {
	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return dto.SessionResponse{}, err
	}

	next := dto.NextBudgetInput
	if sess.HasProfile() {
		next = dto.NextDashboard
	}
	return dto.SessionResponse{
		UID:        uid,
		HasProfile: sess.HasProfile(),
		Next:       next,
		Sync:       sess.SyncStatus(),
	}, nil
}

func (s *budgetService) Profile(ctx context.Context, uid string) (models.UserProfile, error) {
	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return models.UserProfile{}, err
	}
	if !sess.HasProfile() {
		return models.UserProfile{}, errs.NewNotFoundError("profile not set")
	}
	return sess.Budget.Profile(), nil
}

func (s *budgetService) SetProfile(ctx context.Context, uid string, req dto.ProfileRequest) (models.UserProfile, error) {
	log := logger.FromContext(ctx)

	name := strings.TrimSpace(req.FirstName)
	if name == "" {
		return models.UserProfile{}, errs.NewValidationError("firstName is required")
	}
	if req.TotalBudget == nil || *req.TotalBudget <= 0 {
		return models.UserProfile{}, errs.NewValidationError("totalBudget must be a positive number")
	}

	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return models.UserProfile{}, err
	}
	sess.Budget.SetUserData(name, *req.TotalBudget)
	sess.hasProfile.Store(true)

	log.Info("profile updated", "total_budget", *req.TotalBudget)
	return sess.Budget.Profile(), nil
}

func (s *budgetService) Summary(ctx context.Context, uid string) (dto.BudgetSummary, error) {
	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return dto.BudgetSummary{}, err
	}

	snap := sess.Budget.Snapshot()
	out := dto.BudgetSummary{
		FirstName:          snap.Profile.FirstName,
		TotalBudget:        snap.Profile.TotalBudget,
		TotalSpent:         snap.TotalSpent,
		BudgetRemaining:    snap.BudgetRemaining,
		PercentageUsed:     snap.PercentageUsed,
		DaysUntilChristmas: budget.DaysUntilChristmas(s.clockNow()),
		Recipients:         make([]dto.RecipientSummary, 0, len(snap.Recipients)),
		Sync:               sess.SyncStatus(),
	}
	for _, r := range snap.Recipients {
		out.Recipients = append(out.Recipients, dto.RecipientSummary{
			Recipient:      r,
			Remaining:      budget.Remaining(r.Budget, r.Spent),
			PercentageUsed: budget.PercentageUsed(r.Budget, r.Spent),
		})
	}
	return out, nil
}

func (s *budgetService) ListRecipients(ctx context.Context, uid string) ([]models.Recipient, error) {
	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return sess.Budget.Recipients(), nil
}

func (s *budgetService) GetRecipient(ctx context.Context, uid, recipientID string) (models.Recipient, error) {
	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return models.Recipient{}, err
	}
	r, ok := sess.Budget.RecipientByID(recipientID)
	if !ok {
		return models.Recipient{}, errs.NewNotFoundError("recipient not found")
	}
	return r, nil
}

func (s *budgetService) CreateRecipient(ctx context.Context, uid string, req dto.RecipientRequest) (models.Recipient, error) {
	log := logger.FromContext(ctx)

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Recipient{}, errs.NewValidationError("name is required")
	}
	if req.Budget == nil || *req.Budget < 0 {
		return models.Recipient{}, errs.NewValidationError("budget must be zero or more")
	}
	if req.Age != nil && *req.Age < 0 {
		return models.Recipient{}, errs.NewValidationError("age must not be negative")
	}

	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return models.Recipient{}, err
	}

	r := models.Recipient{
		ID:        s.newID(),
		Name:      name,
		Budget:    *req.Budget,
		Gifts:     []models.Gift{},
		Age:       req.Age,
		Gender:    trimmed(req.Gender),
		Interests: trimmed(req.Interests),
		CreatedAt: s.clockNow(),
	}
	sess.Budget.AddRecipient(r)

	log.Info("recipient created", "recipient_id", r.ID)
	created, _ := sess.Budget.RecipientByID(r.ID)
	return created, nil
}

func (s *budgetService) UpdateRecipient(ctx context.Context, uid, recipientID string, patch models.RecipientPatch) (models.Recipient, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return models.Recipient{}, errs.NewValidationError("name must not be empty")
	}
	if patch.Budget != nil && *patch.Budget < 0 {
		return models.Recipient{}, errs.NewValidationError("budget must be zero or more")
	}
	if patch.Age != nil && *patch.Age < 0 {
		return models.Recipient{}, errs.NewValidationError("age must not be negative")
	}

	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return models.Recipient{}, err
	}
	if !sess.Budget.UpdateRecipient(recipientID, patch) {
		return models.Recipient{}, errs.NewNotFoundError("recipient not found")
	}
	r, _ := sess.Budget.RecipientByID(recipientID)
	return r, nil
}

func (s *budgetService) DeleteRecipient(ctx context.Context, uid, recipientID string) error {
	log := logger.FromContext(ctx)

	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return err
	}
	if !sess.Budget.DeleteRecipient(recipientID) {
		return errs.NewNotFoundError("recipient not found")
	}
	log.Info("recipient deleted", "recipient_id", recipientID)
	return nil
}

func (s *budgetService) AddGift(ctx context.Context, uid, recipientID string, req dto.GiftRequest) (models.Gift, error) {
	g, err := s.newGift(req)
	if err != nil {
		return models.Gift{}, err
	}

	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return models.Gift{}, err
	}
	return addGift(sess, recipientID, g)
}

func (s *budgetService) newGift(req dto.GiftRequest) (models.Gift, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Gift{}, errs.NewValidationError("gift name is required")
	}
	if req.Price == nil || *req.Price <= 0 {
		return models.Gift{}, errs.NewValidationError("price must be a positive number")
	}
	return models.Gift{
		ID:        s.newID(),
		Name:      name,
		Price:     *req.Price,
		StoreName: trimmed(req.StoreName),
		URL:       trimmed(req.URL),
		ImageURL:  trimmed(req.ImageURL),
		CreatedAt: s.clockNow(),
	}, nil
}

func addGift(sess *Session, recipientID string, g models.Gift) (models.Gift, error) {
	if !sess.Budget.AddGift(recipientID, g) {
		return models.Gift{}, errs.NewNotFoundError("recipient not found")
	}
	g.RecipientID = recipientID
	return g, nil
}

func (s *budgetService) UpdateGift(ctx context.Context, uid, recipientID, giftID string, patch models.GiftPatch) (models.Gift, error) {
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return models.Gift{}, errs.NewValidationError("gift name must not be empty")
	}
	if patch.Price != nil && *patch.Price <= 0 {
		return models.Gift{}, errs.NewValidationError("price must be a positive number")
	}

	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return models.Gift{}, err
	}
	if !sess.Budget.UpdateGift(recipientID, giftID, patch) {
		return models.Gift{}, errs.NewNotFoundError("gift not found")
	}
	r, _ := sess.Budget.RecipientByID(recipientID)
	for _, g := range r.Gifts {
		if g.ID == giftID {
			return g, nil
		}
	}
	return models.Gift{}, errs.NewNotFoundError("gift not found")
}

func (s *budgetService) DeleteGift(ctx context.Context, uid, recipientID, giftID string) error {
	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return err
	}
	if !sess.Budget.DeleteGift(recipientID, giftID) {
		return errs.NewNotFoundError("gift not found")
	}
	return nil
}

// trimmed keeps optional text absent when it is blank.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	return helpers.NonEmpty(strings.TrimSpace(*s))
}
