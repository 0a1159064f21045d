// Package memory is the default process-local user store.
package memory

import (
	"context"
	"sync"

	"github.com/aura-baza/aura-hr/internal/user"
)

// Store keeps users in insertion order behind a RWMutex. Every read and
// write copies, so callers never alias stored records.
type Store struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*user.User
}

var _ user.Store = (*Store)(nil)

func NewStore(seed ...*user.User) *Store {
	s := &Store{byID: make(map[string]*user.User)}
	for _, u := range seed {
		if _, dup := s.byID[u.ID]; dup {
			continue
		}
		s.order = append(s.order, u.ID)
		s.byID[u.ID] = u.Clone()
	}
	return s
}

func (s *Store) List(ctx context.Context) ([]*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*user.User, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id].Clone())
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u.Clone(), nil
}

func (s *Store) Insert(ctx context.Context, u *user.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[u.ID]; exists {
		return user.ErrDuplicateID
	}
	s.order = append(s.order, u.ID)
	s.byID[u.ID] = u.Clone()
	return nil
}

// Update holds the write lock across apply so the merge always sees the
// latest record.
func (s *Store) Update(ctx context.Context, id string, apply func(*user.User)) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.byID[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	next := current.Clone()
	apply(next)
	// identity and creation time are immutable
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt

	s.byID[id] = next
	return next.Clone(), nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return user.ErrNotFound
	}
	delete(s.byID, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
