package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/internal/suggest"
	"github.com/GregMSThompson/gift-budget/pkg/helpers"
)

type stubSuggester struct {
	result  suggest.Result
	message string
	// block, when set, holds the call until ctx ends or release closes.
	block   chan struct{}
	started chan struct{}
}

func (s *stubSuggester) Suggest(ctx context.Context, _ models.Recipient, message string) suggest.Result {
	s.message = message
	block, started := s.block, s.started
	if block != nil {
		if started != nil {
			close(started)
		}
		select {
		case <-ctx.Done():
			return suggest.Result{Suggestions: suggest.Fallback(10), Degraded: true, Cause: ctx.Err()}
		case <-block:
		}
	}
	return s.result
}

func newTestSuggestionService(t *testing.T, sg suggester) (*suggestionService, *stubDocStore, *Session) {
	t.Helper()
	store := &stubDocStore{}
	m := newTestManager(store)
	closeAll(t, m)

	sess, err := m.Get(helpers.TestCtx(), "u1")
	require.NoError(t, err)
	sess.Budget.AddRecipient(models.Recipient{ID: "alex", Name: "Alex", Budget: 200})

	svc := NewSuggestionService(m, sg, store, 24*time.Hour)
	svc.newID = counter()
	svc.clockNow = func() time.Time { return time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC) }
	return svc, store, sess
}

func TestSuggestionServiceWelcomeAndEmptyHistory(t *testing.T) {
	svc, _, _ := newTestSuggestionService(t, &stubSuggester{})

	msg, err := svc.Welcome(helpers.TestCtx(), "u1", "alex")
	require.NoError(t, err)
	assert.Equal(t, models.ChatTypeBot, msg.Type)
	assert.Equal(t, "Hi! I'm your gift suggestion assistant. I can help you find the perfect gifts for Alex. Just ask me for suggestions!", msg.Text)

	history, err := svc.History(helpers.TestCtx(), "u1", "alex", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, msg.Text, history[0].Text)

	_, err = svc.Welcome(helpers.TestCtx(), "u1", "missing")
	var nf *errs.NotFoundError
	assert.True(t, errors.As(err, &nf))
}

func TestSuggestionServiceSuggestRecordsTranscript(t *testing.T) {
	sg := &stubSuggester{result: suggest.Result{Suggestions: []models.Suggestion{
		{Name: "Book", EstimatedPrice: 20, StoreName: helpers.Ptr("Powell's"), URL: helpers.Ptr("https://powells.com")},
	}}}
	svc, store, _ := newTestSuggestionService(t, sg)

	reply, err := svc.Suggest(helpers.TestCtx(), "u1", "alex", "  books please ")
	require.NoError(t, err)
	assert.Equal(t, "I found these gift suggestions for Alex:", reply.Text)
	assert.False(t, reply.Degraded)
	assert.Len(t, reply.Suggestions, 1)
	assert.Equal(t, "books please", sg.message)

	chat := store.chat("alex")
	require.Len(t, chat, 2)
	assert.Equal(t, models.ChatTypeUser, chat[0].Type)
	assert.Equal(t, "books please", chat[0].Text)
	assert.Equal(t, reply.ID, chat[1].ID)
	assert.Equal(t, time.Date(2025, time.December, 2, 0, 0, 0, 0, time.UTC), chat[1].ExpiresAt)

	history, err := svc.History(helpers.TestCtx(), "u1", "alex", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSuggestionServiceFallbackMessage(t *testing.T) {
	sg := &stubSuggester{result: suggest.Result{Suggestions: suggest.Fallback(200), Degraded: true, Cause: errors.New("timeout")}}
	svc, store, _ := newTestSuggestionService(t, sg)
	store.saveMsgErr = errors.New("chat store down")

	reply, err := svc.Suggest(helpers.TestCtx(), "u1", "alex", "")
	require.NoError(t, err, "chat persistence failures are not surfaced")
	assert.True(t, reply.Degraded)
	assert.Equal(t, "Here are some gift suggestions (API unavailable, showing defaults):", reply.Text)
	assert.Len(t, reply.Suggestions, 3)
	assert.NotContains(t, reply.Text, "timeout")
}

func TestSuggestionServiceSupersededRequest(t *testing.T) {
	sg := &stubSuggester{block: make(chan struct{}), started: make(chan struct{})}
	svc, store, _ := newTestSuggestionService(t, sg)

	errCh := make(chan error, 1)
	go func() {
		_, err := svc.Suggest(helpers.TestCtx(), "u1", "alex", "first")
		errCh <- err
	}()
	<-sg.started

	sg.block, sg.started = nil, nil
	sg.result = suggest.Result{Suggestions: []models.Suggestion{{Name: "Second", EstimatedPrice: 5}}}
	reply, err := svc.Suggest(helpers.TestCtx(), "u1", "alex", "second")
	require.NoError(t, err)
	assert.Equal(t, "Second", reply.Suggestions[0].Name)

	select {
	case err := <-errCh:
		var sup *errs.SupersededError
		assert.True(t, errors.As(err, &sup), "got %v", err)
	case <-time.After(time.Second):
		t.Fatalf("first request did not finish")
	}

	for _, m := range store.chat("alex") {
		assert.NotEqual(t, "first", m.Text, "superseded request must not be recorded")
	}
}

func TestSuggestionServiceAccept(t *testing.T) {
	svc, _, sess := newTestSuggestionService(t, &stubSuggester{})

	res, err := svc.Accept(helpers.TestCtx(), "u1", "alex", models.Suggestion{
		Name:           "Cozy Blanket",
		EstimatedPrice: 40,
		StoreName:      helpers.Ptr("Target"),
		URL:            helpers.Ptr("https://target.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, `Great! I've added "Cozy Blanket" to Alex's gift list.`, res.Message.Text)
	assert.Equal(t, "alex", res.Gift.RecipientID)
	assert.Nil(t, res.Gift.ImageURL)

	r, _ := sess.Budget.RecipientByID("alex")
	assert.Equal(t, 40.0, r.Spent)

	_, err = svc.Accept(helpers.TestCtx(), "u1", "alex", models.Suggestion{EstimatedPrice: 5})
	var ve *errs.ValidationError
	assert.True(t, errors.As(err, &ve))
}
