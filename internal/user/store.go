package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrDuplicateID = errors.New("duplicate user id")
)

// Store is the authoritative collection of users. Implementations are safe
// for concurrent use and hand out copies, never their own records.
type Store interface {
	// List returns every record in insertion order.
	List(ctx context.Context) ([]*User, error)
	Get(ctx context.Context, id string) (*User, error)
	Insert(ctx context.Context, u *User) error
	// Update runs apply against the current record and persists the result
	// as one step. apply must not retain its argument.
	Update(ctx context.Context, id string, apply func(u *User)) (*User, error)
	Remove(ctx context.Context, id string) error
}

// Pinger is implemented by stores backed by an external database.
type Pinger interface {
	Ping(ctx context.Context) error
}
