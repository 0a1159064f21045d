// Package userview keeps a paginated, filtered user listing in sync with its
// query parameters and tracks mutations issued from the same screen.
package userview

import (
	"context"
	"log/slog"
	"sync"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/user"
)

const fetchFailedMessage = "failed to fetch users"

// Fetcher is the read side of user.ServiceAPI.
type Fetcher interface {
	GetUsers(ctx context.Context, page, limit int, filters user.Filters) (*user.Page, error)
}

// FetchObserver receives one sample per finished fetch: "ok", "error" or
// "stale" for a result that was discarded.
type FetchObserver interface {
	ObserveFetch(result string)
}

// Query is the full parameter set. It is comparable, so equal queries are
// detected with ==.
type Query struct {
	Page    int
	Limit   int
	Filters user.Filters
}

func (q Query) normalized() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = user.DefaultLimit
	}
	return q
}

// State is what a listing screen renders. Data keeps the last successful page
// while a refetch is in flight and after a failed one. Error is cleared when a
// fetch starts.
type State struct {
	Data      *user.Page
	IsLoading bool
	Error     string
	Err       error
}

type Option func(*Synchronizer)

func WithObserver(o FetchObserver) Option {
	return func(s *Synchronizer) { s.observer = o }
}

// Synchronizer re-fetches whenever its Query changes. Every fetch takes a
// generation number and only the latest generation may write State.
type Synchronizer struct {
	ctx      context.Context
	cancel   context.CancelFunc
	fetcher  Fetcher
	observer FetchObserver
	logger   *slog.Logger

	mu       sync.Mutex
	idle     *sync.Cond
	query    Query
	state    State
	gen      uint64
	inflight int
	closed   bool
	subs     map[int]chan State
	nextSub  int
}

// NewSynchronizer starts the first fetch for q before returning.
func NewSynchronizer(ctx context.Context, fetcher Fetcher, q Query, logger *slog.Logger, opts ...Option) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Synchronizer{
		ctx:     ctx,
		cancel:  cancel,
		fetcher: fetcher,
		logger:  logger,
		query:   q.normalized(),
		state:   State{IsLoading: true},
		subs:    make(map[int]chan State),
	}
	s.idle = sync.NewCond(&s.mu)
	for _, opt := range opts {
		opt(s)
	}

	s.mu.Lock()
	s.startLocked()
	s.mu.Unlock()
	return s
}

func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Synchronizer) Query() Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

func (s *Synchronizer) SetPage(page int) {
	s.update(func(q *Query) { q.Page = page })
}

func (s *Synchronizer) SetLimit(limit int) {
	s.update(func(q *Query) { q.Limit = limit })
}

// SetFilters replaces the filters and returns to the first page.
func (s *Synchronizer) SetFilters(f user.Filters) {
	s.update(func(q *Query) {
		if q.Filters != f {
			q.Filters = f
			q.Page = 1
		}
	})
}

func (s *Synchronizer) ClearFilters() {
	s.SetFilters(user.Filters{})
}

func (s *Synchronizer) SetQuery(q Query) {
	s.update(func(cur *Query) { *cur = q })
}

// Refetch re-issues the current query even though nothing changed.
func (s *Synchronizer) Refetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.startLocked()
}

func (s *Synchronizer) update(change func(*Query)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	next := s.query
	change(&next)
	next = next.normalized()
	if next == s.query {
		return
	}
	s.query = next
	s.startLocked()
}

// startLocked must be called with mu held.
func (s *Synchronizer) startLocked() {
	s.gen++
	gen, q := s.gen, s.query
	s.inflight++
	s.state.IsLoading = true
	s.state.Error = ""
	s.state.Err = nil
	s.broadcastLocked()

	go s.fetch(gen, q)
}

func (s *Synchronizer) fetch(gen uint64, q Query) {
	page, err := s.fetcher.GetUsers(s.ctx, q.Page, q.Limit, q.Filters)

	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		s.inflight--
		if s.inflight == 0 {
			s.idle.Broadcast()
		}
	}()

	if gen != s.gen || s.closed {
		s.logger.Debug("discarding superseded user fetch", "generation", gen, "latest", s.gen)
		s.observe("stale")
		return
	}

	s.state.IsLoading = false
	if err != nil {
		s.state.Error = message(err, fetchFailedMessage)
		s.state.Err = err
		s.logger.Warn("user fetch failed", "page", q.Page, "limit", q.Limit, "error", err)
		s.observe("error")
	} else {
		s.state.Data = page
		s.state.Error = ""
		s.state.Err = nil
		s.observe("ok")
	}
	s.broadcastLocked()
}

func (s *Synchronizer) observe(result string) {
	if s.observer != nil {
		s.observer.ObserveFetch(result)
	}
}

func message(err error, fallback string) string {
	if appErr, ok := errors.IsAppError(err); ok && appErr.Message != "" {
		return appErr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}

// Subscribe delivers the latest State after every change. Slow readers only
// see the newest value. The channel closes on Close or unsubscribe.
func (s *Synchronizer) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

func (s *Synchronizer) broadcastLocked() {
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s.state
	}
}

// Wait blocks until no fetch is in flight.
func (s *Synchronizer) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.inflight > 0 {
		s.idle.Wait()
	}
}

// Close cancels in-flight fetches, waits for them and closes every
// subscription. Setters become no-ops.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
