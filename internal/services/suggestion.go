package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/gift-budget/internal/dto"
	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/metrics"
	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/internal/suggest"
	"github.com/GregMSThompson/gift-budget/pkg/logger"
)

const defaultHistoryLimit = 50

type suggester interface {
	Suggest(ctx context.Context, r models.Recipient, message string) suggest.Result
}

type chatHistoryStore interface {
	SaveMessage(ctx context.Context, uid, recipientID string, msg models.ChatMessage) error
	ListMessages(ctx context.Context, uid, recipientID string, limit int) ([]models.ChatMessage, error)
}

type suggestionService struct {
	sessions  sessionSource
	suggester suggester
	chats     chatHistoryStore
	ttl       time.Duration
	clockNow  func() time.Time
	newID     func() string
}

func NewSuggestionService(sessions sessionSource, suggester suggester, chats chatHistoryStore, ttl time.Duration) *suggestionService {
	return &suggestionService{
		sessions:  sessions,
		suggester: suggester,
		chats:     chats,
		ttl:       ttl,
		clockNow:  time.Now,
		newID:     uuid.NewString,
	}
}

func (s *suggestionService) recipient(ctx context.Context, uid, recipientID string) (*Session, models.Recipient, error) {
	sess, err := s.sessions.Get(ctx, uid)
	if err != nil {
		return nil, models.Recipient{}, err
	}
	r, ok := sess.Budget.RecipientByID(recipientID)
	if !ok {
		return nil, models.Recipient{}, errs.NewNotFoundError("recipient not found")
	}
	return sess, r, nil
}

func (s *suggestionService) message(kind, text string) models.ChatMessage {
	now := s.clockNow()
	msg := models.ChatMessage{
		ID:        s.newID(),
		Type:      kind,
		Text:      text,
		Timestamp: now,
	}
	if s.ttl > 0 {
		msg.ExpiresAt = now.Add(s.ttl)
	}
	return msg
}

// record saves msg to the transcript. Failures are logged and otherwise
// ignored; the chat works without history.
func (s *suggestionService) record(ctx context.Context, uid, recipientID string, msg models.ChatMessage) {
	if s.chats == nil {
		return
	}
	if err := s.chats.SaveMessage(ctx, uid, recipientID, msg); err != nil {
		logger.FromContext(ctx).Warn("failed to save chat message", "recipient_id", recipientID, "error", err)
	}
}

func welcomeText(name string) string {
	return fmt.Sprintf("Hi! I'm your gift suggestion assistant. I can help you find the perfect gifts for %s. Just ask me for suggestions!", name)
}

// Welcome returns the greeting for the recipient's chat. It is not stored.
func (s *suggestionService) Welcome(ctx context.Context, uid, recipientID string) (models.ChatMessage, error) {
	_, r, err := s.recipient(ctx, uid, recipientID)
	if err != nil {
		return models.ChatMessage{}, err
	}
	msg := s.message(models.ChatTypeBot, welcomeText(r.Name))
	msg.ExpiresAt = time.Time{}
	return msg, nil
}

// History returns the stored transcript, or just the welcome message when
// there is none.
func (s *suggestionService) History(ctx context.Context, uid, recipientID string, limit int) ([]models.ChatMessage, error) {
	log := logger.FromContext(ctx)

	_, r, err := s.recipient(ctx, uid, recipientID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var history []models.ChatMessage
	if s.chats != nil {
		history, err = s.chats.ListMessages(ctx, uid, r.ID, limit)
		if err != nil {
			log.Warn("failed to load chat history", "recipient_id", r.ID, "error", err)
			history = nil
		}
	}
	if len(history) == 0 {
		msg := s.message(models.ChatTypeBot, welcomeText(r.Name))
		msg.ExpiresAt = time.Time{}
		return []models.ChatMessage{msg}, nil
	}
	return history, nil
}

// Suggest asks for gift ideas. A newer Suggest for the same recipient
// cancels this one, which then returns SupersededError and records nothing.
func (s *suggestionService) Suggest(ctx context.Context, uid, recipientID, message string) (models.ChatMessage, error) {
	log, ctx := logger.With(ctx, "recipient_id", recipientID)

	sess, r, err := s.recipient(ctx, uid, recipientID)
	if err != nil {
		return models.ChatMessage{}, err
	}

	rctx, token, done := sess.begin(ctx, recipientID)
	defer done()

	message = strings.TrimSpace(message)
	userMsg := s.message(models.ChatTypeUser, message)
	if message == "" {
		userMsg.Text = "Show me gift suggestions"
	}

	res := s.suggester.Suggest(rctx, r, message)
	if !sess.current(recipientID, token) {
		metrics.SuggestionsTotal.WithLabelValues("superseded").Inc()
		log.Info("suggestion request superseded")
		return models.ChatMessage{}, errs.NewSupersededError()
	}

	var reply models.ChatMessage
	if res.Degraded {
		metrics.SuggestionsTotal.WithLabelValues("fallback").Inc()
		log.Warn("serving fallback suggestions", "cause", res.Cause)
		reply = s.message(models.ChatTypeBot, "Here are some gift suggestions (API unavailable, showing defaults):")
		reply.Degraded = true
	} else {
		metrics.SuggestionsTotal.WithLabelValues("llm").Inc()
		reply = s.message(models.ChatTypeBot, fmt.Sprintf("I found these gift suggestions for %s:", r.Name))
	}
	reply.Suggestions = res.Suggestions

	store := logger.Detach(ctx)
	s.record(store, uid, recipientID, userMsg)
	s.record(store, uid, recipientID, reply)
	return reply, nil
}

// Accept turns a suggestion into a gift on the recipient's list.
func (s *suggestionService) Accept(ctx context.Context, uid, recipientID string, sg models.Suggestion) (dto.AcceptSuggestionResponse, error) {
	log := logger.FromContext(ctx)

	name := strings.TrimSpace(sg.Name)
	if name == "" {
		return dto.AcceptSuggestionResponse{}, errs.NewValidationError("suggestion name is required")
	}
	if sg.EstimatedPrice <= 0 {
		return dto.AcceptSuggestionResponse{}, errs.NewValidationError("price must be a positive number")
	}

	sess, r, err := s.recipient(ctx, uid, recipientID)
	if err != nil {
		return dto.AcceptSuggestionResponse{}, err
	}

	gift, err := addGift(sess, r.ID, models.Gift{
		ID:        s.newID(),
		Name:      name,
		Price:     sg.EstimatedPrice,
		StoreName: trimmed(sg.StoreName),
		URL:       trimmed(sg.URL),
		ImageURL:  trimmed(sg.ImageURL),
		CreatedAt: s.clockNow(),
	})
	if err != nil {
		return dto.AcceptSuggestionResponse{}, err
	}

	reply := s.message(models.ChatTypeBot, fmt.Sprintf(`Great! I've added "%s" to %s's gift list.`, name, r.Name))
	s.record(logger.Detach(ctx), uid, recipientID, reply)

	log.Info("suggestion accepted", "recipient_id", r.ID, "gift_id", gift.ID)
	return dto.AcceptSuggestionResponse{Gift: gift, Message: reply}, nil
}
