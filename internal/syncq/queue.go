// Package syncq queues document writes per entity and retries them until they
// land. A newer write for a key replaces one that has not started yet and
// takes its place at the back of the queue. A write that keeps failing is
// parked for RetryAfter while the rest of the queue drains.
package syncq

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/GregMSThompson/gift-budget/internal/metrics"
)

type State string

const (
	StateSynced  State = "synced"
	StatePending State = "pending"
	StateFailed  State = "failed"
)

var ErrClosed = errors.New("sync queue closed")

// Op is one write. Key identifies the entity (its document path).
type Op struct {
	Key string
	Run func(ctx context.Context) error
}

type Status struct {
	State        State      `json:"state"`
	Pending      int        `json:"pending"`
	LastError    string     `json:"lastError,omitempty"`
	LastSyncedAt *time.Time `json:"lastSyncedAt,omitempty"`
}

type Config struct {
	MaxAttempts     int           // attempts per pass before the op is parked
	InitialInterval time.Duration // first backoff wait
	MaxInterval     time.Duration
	RetryAfter      time.Duration // wait before a parked op runs again
	FlushTimeout    time.Duration // upper bound on Close; 0 means ctx alone
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:     5,
		InitialInterval: 200 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		RetryAfter:      30 * time.Second,
		FlushTimeout:    10 * time.Second,
	}
}

type entry struct {
	op        Op
	notBefore time.Time
}

type Queue struct {
	cfg Config
	log *slog.Logger

	mu         sync.Mutex
	order      []string
	ops        map[string]entry
	running    string
	failing    map[string]string
	lastErr    string
	lastSynced time.Time
	idle       chan struct{}
	idleClosed bool
	closed     bool

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// New starts the queue worker. ctx is the parent of every write; its logger
// is kept but its cancellation is not.
func New(ctx context.Context, log *slog.Logger, cfg Config) *Queue {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	q := &Queue{
		cfg:        cfg,
		log:        log,
		ops:        make(map[string]entry),
		failing:    make(map[string]string),
		idle:       make(chan struct{}),
		idleClosed: true,
		wake:       make(chan struct{}, 1),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
		ctx:        wctx,
		cancel:     cancel,
	}
	close(q.idle)
	go q.run()
	return q
}

// Enqueue schedules op without waiting for it. It returns ErrClosed once the
// queue has been closed.
func (q *Queue) Enqueue(op Op) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrClosed
	}
	if _, queued := q.ops[op.Key]; queued {
		q.unlink(op.Key)
	} else {
		metrics.SyncQueueDepth.Inc()
	}
	q.order = append(q.order, op.Key)
	q.ops[op.Key] = entry{op: op}
	if q.idleClosed {
		q.idle = make(chan struct{})
		q.idleClosed = false
	}

	q.signal()
	return nil
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) unlink(key string) {
	for i, k := range q.order {
		if k == key {
			q.order = append(q.order[:i:i], q.order[i+1:]...)
			return
		}
	}
}

func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()

	st := Status{Pending: len(q.order), LastError: q.lastErr}
	if q.running != "" {
		st.Pending++
	}
	if !q.lastSynced.IsZero() {
		t := q.lastSynced
		st.LastSyncedAt = &t
	}
	switch {
	case len(q.failing) > 0:
		st.State = StateFailed
	case st.Pending > 0:
		st.State = StatePending
	default:
		st.State = StateSynced
	}
	return st
}

// Flush blocks until every queued write has succeeded or ctx ends.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close flushes, then stops the worker. Writes still queued when ctx ends or
// FlushTimeout passes are dropped and counted.
func (q *Queue) Close(ctx context.Context) error {
	if q.cfg.FlushTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.cfg.FlushTimeout)
		defer cancel()
	}
	err := q.Flush(ctx)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return err
	}
	q.closed = true
	dropped := len(q.order)
	q.order = nil
	q.ops = make(map[string]entry)
	q.mu.Unlock()

	close(q.done)
	q.cancel()
	<-q.stopped

	if dropped > 0 {
		metrics.SyncQueueDepth.Sub(float64(dropped))
		metrics.SyncOpsTotal.WithLabelValues("dropped").Add(float64(dropped))
		q.log.Error("sync queue closed with pending writes", "dropped", dropped)
	}
	return err
}

func (q *Queue) run() {
	defer close(q.stopped)

	for {
		op, wait, ok := q.next(time.Now())
		if !ok {
			if !q.sleep(wait) {
				return
			}
			continue
		}

		err := q.attempt(op)
		q.finish(op, err)
	}
}

// next takes the first op that is not parked. When every queued op is parked
// it returns the time until the earliest one is due, or 0 when nothing is
// queued at all.
func (q *Queue) next(now time.Time) (Op, time.Duration, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var wait time.Duration
	for i, key := range q.order {
		e := q.ops[key]
		if d := e.notBefore.Sub(now); d > 0 {
			if wait == 0 || d < wait {
				wait = d
			}
			continue
		}
		q.order = append(q.order[:i:i], q.order[i+1:]...)
		delete(q.ops, key)
		q.running = key
		metrics.SyncQueueDepth.Dec()
		return e.op, 0, true
	}
	return Op{}, wait, false
}

// sleep blocks until new work arrives, wait elapses (if set) or the queue
// stops. It reports whether the worker should keep going.
func (q *Queue) sleep(wait time.Duration) bool {
	var due <-chan time.Time
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		due = t.C
	}
	select {
	case <-q.wake:
	case <-due:
	case <-q.done:
		return false
	}
	return true
}

func (q *Queue) attempt(op Op) error {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = q.cfg.InitialInterval
	exp.MaxInterval = q.cfg.MaxInterval
	exp.MaxElapsedTime = 0
	exp.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(q.cfg.MaxAttempts-1)), q.ctx)
	return backoff.RetryNotify(func() error {
		return op.Run(q.ctx)
	}, policy, func(err error, wait time.Duration) {
		metrics.SyncRetriesTotal.Inc()
		q.log.Warn("sync write failed, retrying", "key", op.Key, "wait", wait, "error", err)
	})
}

// finish records the outcome. A failed op goes back on the queue, parked
// until RetryAfter, unless a newer write for its key arrived meanwhile.
func (q *Queue) finish(op Op, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.running = ""
	if err != nil {
		metrics.SyncOpsTotal.WithLabelValues("failed").Inc()
		q.log.Error("sync write failed", "key", op.Key, "error", err)
		q.failing[op.Key] = err.Error()
		q.lastErr = err.Error()
		if _, newer := q.ops[op.Key]; !newer && !q.closed {
			q.order = append(q.order, op.Key)
			q.ops[op.Key] = entry{op: op, notBefore: time.Now().Add(q.cfg.RetryAfter)}
			metrics.SyncQueueDepth.Inc()
		}
	} else {
		metrics.SyncOpsTotal.WithLabelValues("ok").Inc()
		delete(q.failing, op.Key)
		q.lastSynced = time.Now()
		if len(q.failing) == 0 {
			q.lastErr = ""
		}
	}

	if len(q.order) == 0 && !q.idleClosed {
		close(q.idle)
		q.idleClosed = true
	}
}
