package userview

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aura-baza/aura-hr/internal/user"
)

// Mutator is the write side of user.ServiceAPI.
type Mutator interface {
	CreateUser(ctx context.Context, req user.CreateUserRequest) (*user.User, error)
	UpdateUser(ctx context.Context, id string, req user.UpdateUserRequest) (*user.User, error)
	DeleteUser(ctx context.Context, id string) error
	BulkUpdateUsers(ctx context.Context, ids []string, req user.UpdateUserRequest) ([]*user.User, error)
}

// Actions tracks in-flight and error state for mutations separately from any
// Synchronizer. It never refreshes a listing; callers call Refetch after a
// successful mutation.
type Actions struct {
	svc    Mutator
	logger *slog.Logger

	mu       sync.Mutex
	inflight int
	errMsg   string
	err      error
}

func NewActions(svc Mutator, logger *slog.Logger) *Actions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Actions{svc: svc, logger: logger}
}

func (a *Actions) IsLoading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inflight > 0
}

// Error is the message of the last failed action, or "" after a success.
func (a *Actions) Error() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.errMsg
}

func (a *Actions) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Actions) begin() {
	a.mu.Lock()
	a.inflight++
	a.errMsg, a.err = "", nil
	a.mu.Unlock()
}

func (a *Actions) end(op string, err error, fallback string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inflight--
	if err != nil {
		a.errMsg, a.err = message(err, fallback), err
		a.logger.Warn("user action failed", "action", op, "error", err)
	}
}

func (a *Actions) CreateUser(ctx context.Context, req user.CreateUserRequest) (u *user.User, err error) {
	a.begin()
	defer func() { a.end("create", err, "Failed to create user") }()
	return a.svc.CreateUser(ctx, req)
}

func (a *Actions) UpdateUser(ctx context.Context, id string, req user.UpdateUserRequest) (u *user.User, err error) {
	a.begin()
	defer func() { a.end("update", err, "Failed to update user") }()
	return a.svc.UpdateUser(ctx, id, req)
}

func (a *Actions) DeleteUser(ctx context.Context, id string) (err error) {
	a.begin()
	defer func() { a.end("delete", err, "Failed to delete user") }()
	return a.svc.DeleteUser(ctx, id)
}

func (a *Actions) BulkUpdateUsers(ctx context.Context, ids []string, req user.UpdateUserRequest) (users []*user.User, err error) {
	a.begin()
	defer func() { a.end("bulk_update", err, "Failed to update users") }()
	return a.svc.BulkUpdateUsers(ctx, ids, req)
}

// BulkUpdateStatus is the status-only bulk edit offered by the listing screen.
func (a *Actions) BulkUpdateStatus(ctx context.Context, ids []string, status user.Status) ([]*user.User, error) {
	return a.BulkUpdateUsers(ctx, ids, user.UpdateUserRequest{Status: &status})
}
