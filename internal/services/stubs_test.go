package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/internal/syncq"
)

// stubDocStore records remote writes in call order.
type stubDocStore struct {
	mu         sync.Mutex
	profile    *models.UserProfile
	recipients []models.Recipient
	loadErr    error
	writeErr   error
	loads      int
	calls      []string
	messages   map[string][]models.ChatMessage
	saveMsgErr error
}

func (s *stubDocStore) GetProfile(ctx context.Context, _ string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.profile == nil {
		return nil, errs.NewNotFoundError("profile not found")
	}
	p := *s.profile
	return &p, nil
}

func (s *stubDocStore) SaveProfile(_ context.Context, _ string, p models.UserProfile) error {
	return s.record("profile:" + p.FirstName)
}

func (s *stubDocStore) ListRecipients(_ context.Context, _ string) ([]models.Recipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.recipients, nil
}

func (s *stubDocStore) SaveRecipient(_ context.Context, _ string, r models.Recipient) error {
	return s.record("recipient:" + r.ID)
}

func (s *stubDocStore) DeleteRecipient(_ context.Context, _, id string) error {
	return s.record("delete-recipient:" + id)
}

func (s *stubDocStore) SaveGift(_ context.Context, _ string, g models.Gift) error {
	return s.record("gift:" + g.RecipientID + "/" + g.ID)
}

func (s *stubDocStore) DeleteGift(_ context.Context, _, rid, gid string) error {
	return s.record("delete-gift:" + rid + "/" + gid)
}

func (s *stubDocStore) DeleteMessages(_ context.Context, _, rid string) error {
	return s.record("delete-chat:" + rid)
}

func (s *stubDocStore) SaveMessage(_ context.Context, _, rid string, msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveMsgErr != nil {
		return s.saveMsgErr
	}
	if s.messages == nil {
		s.messages = make(map[string][]models.ChatMessage)
	}
	s.messages[rid] = append(s.messages[rid], msg)
	return nil
}

func (s *stubDocStore) ListMessages(_ context.Context, _, rid string, limit int) ([]models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[rid]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]models.ChatMessage(nil), msgs...), nil
}

func (s *stubDocStore) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.calls = append(s.calls, call)
	return nil
}

func (s *stubDocStore) setWriteErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func (s *stubDocStore) recorded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubDocStore) chat(rid string) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ChatMessage(nil), s.messages[rid]...)
}

func testSyncConfig() syncq.Config {
	return syncq.Config{
		MaxAttempts:     2,
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		RetryAfter:      5 * time.Millisecond,
		FlushTimeout:    50 * time.Millisecond,
	}
}

func newTestManager(store *stubDocStore) *SessionManager {
	return NewSessionManager(newTestLogger(), store, store, store, testSyncConfig())
}

func counter() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "id-" + strconv.Itoa(n)
	}
}
