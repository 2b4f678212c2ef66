package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/GregMSThompson/gift-budget/internal/budget"
	"github.com/GregMSThompson/gift-budget/internal/errs"
	"github.com/GregMSThompson/gift-budget/internal/metrics"
	"github.com/GregMSThompson/gift-budget/internal/models"
	"github.com/GregMSThompson/gift-budget/internal/syncq"
	"github.com/GregMSThompson/gift-budget/pkg/logger"
)

// sessionLoadTimeout bounds a session load, which runs detached from the
// request that triggered it.
const sessionLoadTimeout = 30 * time.Second

type sessionProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, uid string, p models.UserProfile) error
}

type sessionRecipientStore interface {
	ListRecipients(ctx context.Context, uid string) ([]models.Recipient, error)
	SaveRecipient(ctx context.Context, uid string, r models.Recipient) error
	DeleteRecipient(ctx context.Context, uid, recipientID string) error
	SaveGift(ctx context.Context, uid string, g models.Gift) error
	DeleteGift(ctx context.Context, uid, recipientID, giftID string) error
}

type sessionChatStore interface {
	DeleteMessages(ctx context.Context, uid, recipientID string) error
}

// Session is the in-memory state of one signed-in user: the budget store,
// the queue persisting it, and the in-flight suggestion requests.
type Session struct {
	UID    string
	Budget *budget.Store

	queue      *syncq.Queue
	hasProfile atomic.Bool
	lastUsed   atomic.Int64

	mu       sync.Mutex
	seq      uint64
	inflight map[string]inflightRequest
}

type inflightRequest struct {
	token  uint64
	cancel context.CancelFunc
}

func (s *Session) HasProfile() bool { return s.hasProfile.Load() }

func (s *Session) SyncStatus() syncq.Status { return s.queue.Status() }

// Flush waits for every pending write of the session.
func (s *Session) Flush(ctx context.Context) error { return s.queue.Flush(ctx) }

func (s *Session) touch(now time.Time) { s.lastUsed.Store(now.UnixNano()) }

// begin registers a suggestion request for recipientID and cancels the one it
// replaces. done must be called when the request ends.
func (s *Session) begin(ctx context.Context, recipientID string) (context.Context, uint64, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.inflight[recipientID]; ok {
		prev.cancel()
	}
	s.seq++
	token := s.seq
	rctx, cancel := context.WithCancel(ctx)
	s.inflight[recipientID] = inflightRequest{token: token, cancel: cancel}

	return rctx, token, func() {
		s.mu.Lock()
		if cur, ok := s.inflight[recipientID]; ok && cur.token == token {
			delete(s.inflight, recipientID)
		}
		s.mu.Unlock()
		cancel()
	}
}

// current reports whether token is still the latest request for recipientID.
func (s *Session) current(recipientID string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.inflight[recipientID]
	return ok && cur.token == token
}

func (s *Session) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, req := range s.inflight {
		req.cancel()
		delete(s.inflight, id)
	}
}

type SessionManager struct {
	log        *slog.Logger
	profiles   sessionProfileStore
	recipients sessionRecipientStore
	chats      sessionChatStore
	syncCfg    syncq.Config

	group    singleflight.Group
	mu       sync.Mutex
	sessions map[string]*Session
	clockNow func() time.Time
}

func NewSessionManager(log *slog.Logger, profiles sessionProfileStore, recipients sessionRecipientStore, chats sessionChatStore, syncCfg syncq.Config) *SessionManager {
	return &SessionManager{
		log:        log,
		profiles:   profiles,
		recipients: recipients,
		chats:      chats,
		syncCfg:    syncCfg,
		sessions:   make(map[string]*Session),
		clockNow:   time.Now,
	}
}

// Get returns the session of uid, loading it from the document store on
// first use. Concurrent first calls share one load.
func (m *SessionManager) Get(ctx context.Context, uid string) (*Session, error) {
	if s := m.lookup(uid); s != nil {
		return s, nil
	}

	v, err, _ := m.group.Do(uid, func() (any, error) {
		if s := m.lookup(uid); s != nil {
			return s, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sessionLoadTimeout)
		defer cancel()
		s, err := m.load(lctx, uid)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sessions[uid] = s
		m.mu.Unlock()
		metrics.SessionsOpen.Inc()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *SessionManager) lookup(uid string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[uid]
	if !ok {
		return nil
	}
	s.touch(m.clockNow())
	return s
}

func (m *SessionManager) load(ctx context.Context, uid string) (*Session, error) {
	log := logger.FromContext(ctx)

	var (
		profile    models.UserProfile
		hasProfile bool
		recipients []models.Recipient
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := m.profiles.GetProfile(gctx, uid)
		var nf *errs.NotFoundError
		switch {
		case errors.As(err, &nf):
			return nil
		case err != nil:
			return err
		}
		profile, hasProfile = *p, true
		return nil
	})
	g.Go(func() error {
		var err error
		recipients, err = m.recipients.ListRecipients(gctx, uid)
		return err
	})
	if err := g.Wait(); err != nil {
		log.Error("failed to load session", "error", err)
		return nil, err
	}

	qlog := m.log.With("uid", uid)
	s := &Session{
		UID:      uid,
		Budget:   budget.New(),
		queue:    syncq.New(logger.ToContext(context.Background(), qlog), qlog, m.syncCfg),
		inflight: make(map[string]inflightRequest),
	}
	s.hasProfile.Store(hasProfile)
	s.touch(m.clockNow())
	s.Budget.Load(profile, recipients)
	s.Budget.Attach(&docSyncer{
		log:        qlog,
		uid:        uid,
		queue:      s.queue,
		profiles:   m.profiles,
		recipients: m.recipients,
		chats:      m.chats,
	})

	log.Info("session loaded", "recipients", len(recipients), "has_profile", hasProfile)
	return s, nil
}

// Close flushes the session of uid and forgets it. The flush is bounded by
// the sync FlushTimeout; when writes are still pending after that the session
// stays open, its queue keeps retrying, and an ExternalServiceError is
// returned.
func (m *SessionManager) Close(ctx context.Context, uid string) error {
	m.mu.Lock()
	s, ok := m.sessions[uid]
	m.mu.Unlock()
	if !ok {
		return nil
	}

	if m.syncCfg.FlushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.syncCfg.FlushTimeout)
		defer cancel()
	}
	if err := s.Flush(ctx); err != nil {
		logger.FromContext(ctx).Warn("session close with unsynced writes", "pending", s.SyncStatus().Pending, "error", err)
		return errs.NewExternalServiceError("firestore", "changes are still being saved, try again shortly", true, err)
	}

	m.mu.Lock()
	if m.sessions[uid] != s {
		m.mu.Unlock()
		return nil
	}
	delete(m.sessions, uid)
	m.mu.Unlock()
	return m.shut(ctx, s)
}

func (m *SessionManager) shut(ctx context.Context, s *Session) error {
	metrics.SessionsOpen.Dec()
	s.cancelAll()
	s.Budget.Attach(nil)
	return s.queue.Close(ctx)
}

// Sweep closes sessions unused for longer than idle. Sessions with writes
// still pending are kept. It returns how many were closed.
func (m *SessionManager) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := m.clockNow().Add(-idle).UnixNano()

	m.mu.Lock()
	var stale []*Session
	for uid, s := range m.sessions {
		if s.lastUsed.Load() < cutoff && s.queue.Status().Pending == 0 {
			stale = append(stale, s)
			delete(m.sessions, uid)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		if err := m.shut(ctx, s); err != nil {
			m.log.Warn("idle session close failed", "uid", s.UID, "error", err)
		}
	}
	return len(stale)
}

// Shutdown closes every session.
func (m *SessionManager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	all := make([]*Session, 0, len(m.sessions))
	for uid, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, uid)
	}
	m.mu.Unlock()

	var errList []error
	for _, s := range all {
		if err := m.shut(ctx, s); err != nil {
			errList = append(errList, err)
		}
	}
	return errors.Join(errList...)
}

// docSyncer turns budget mutations into queued document writes, keyed by
// document path.
type docSyncer struct {
	log        *slog.Logger
	uid        string
	queue      *syncq.Queue
	profiles   sessionProfileStore
	recipients sessionRecipientStore
	chats      sessionChatStore
}

// enqueue drops writes made after the session closed; the next load reads
// the document store again.
func (d *docSyncer) enqueue(op syncq.Op) {
	if err := d.queue.Enqueue(op); err != nil {
		d.log.Warn("write after session close", "key", op.Key, "error", err)
	}
}

func (d *docSyncer) userKey() string { return "users/" + d.uid }

func (d *docSyncer) recipientKey(id string) string {
	return d.userKey() + "/recipients/" + id
}

func (d *docSyncer) giftKey(recipientID, giftID string) string {
	return d.recipientKey(recipientID) + "/gifts/" + giftID
}

func (d *docSyncer) PutProfile(p models.UserProfile) {
	d.enqueue(syncq.Op{Key: d.userKey(), Run: func(ctx context.Context) error {
		return d.profiles.SaveProfile(ctx, d.uid, p)
	}})
}

func (d *docSyncer) PutRecipient(r models.Recipient) {
	d.enqueue(syncq.Op{Key: d.recipientKey(r.ID), Run: func(ctx context.Context) error {
		return d.recipients.SaveRecipient(ctx, d.uid, r)
	}})
}

// DeleteRecipient removes the gift documents, the chat transcript and then the
// recipient document. Each is its own write.
func (d *docSyncer) DeleteRecipient(r models.Recipient) {
	for _, g := range r.Gifts {
		d.DeleteGift(r.ID, g.ID)
	}
	if d.chats != nil {
		d.enqueue(syncq.Op{Key: d.recipientKey(r.ID) + "/chat", Run: func(ctx context.Context) error {
			return d.chats.DeleteMessages(ctx, d.uid, r.ID)
		}})
	}
	d.enqueue(syncq.Op{Key: d.recipientKey(r.ID), Run: func(ctx context.Context) error {
		return d.recipients.DeleteRecipient(ctx, d.uid, r.ID)
	}})
}

func (d *docSyncer) PutGift(g models.Gift) {
	d.enqueue(syncq.Op{Key: d.giftKey(g.RecipientID, g.ID), Run: func(ctx context.Context) error {
		return d.recipients.SaveGift(ctx, d.uid, g)
	}})
}

func (d *docSyncer) DeleteGift(recipientID, giftID string) {
	d.enqueue(syncq.Op{Key: d.giftKey(recipientID, giftID), Run: func(ctx context.Context) error {
		return d.recipients.DeleteGift(ctx, d.uid, recipientID, giftID)
	}})
}
