package user

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/core/events"
)

const (
	DefaultLimit = 25
	MaxLimit     = 100
)

// ServiceAPI is the data-access contract for users. Service serves it from a
// local Store; client.UserClient serves it over HTTP.
type ServiceAPI interface {
	GetUsers(ctx context.Context, page, limit int, filters Filters) (*Page, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	BulkUpdateUsers(ctx context.Context, ids []string, req UpdateUserRequest) ([]*User, error)
}

// OperationObserver receives one sample per Service call.
type OperationObserver interface {
	ObserveOperation(op, outcome string, elapsed time.Duration)
}

type Paging struct {
	DefaultLimit int
	MaxLimit     int
}

// Sanitize fills in a missing page or limit. A limit above the maximum is
// rejected rather than shrunk, so callers always get the page size they asked for.
func (p Paging) Sanitize(page, limit int) (int, int, error) {
	def, max := p.DefaultLimit, p.MaxLimit
	if def < 1 {
		def = DefaultLimit
	}
	if max < def {
		max = def
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		return 0, 0, errors.NewValidationFieldError("limit",
			fmt.Sprintf("limit must be at most %d", max), errors.ErrCodeValidationFailed)
	}
	return page, limit, nil
}

type Service struct {
	store     Store
	mutator   *Mutator
	publisher events.Publisher
	observer  OperationObserver
	paging    Paging
	logger    *slog.Logger
}

type ServiceOption func(*Service)

func WithPublisher(p events.Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

func WithObserver(o OperationObserver) ServiceOption {
	return func(s *Service) { s.observer = o }
}

func WithPaging(p Paging) ServiceOption {
	return func(s *Service) { s.paging = p }
}

func NewService(store Store, mutator *Mutator, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		store:   store,
		mutator: mutator,
		paging:  Paging{DefaultLimit: DefaultLimit, MaxLimit: MaxLimit},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ServiceAPI = (*Service)(nil)

func (s *Service) GetUsers(ctx context.Context, page, limit int, filters Filters) (result *Page, err error) {
	defer s.observe("get_users", time.Now(), &err)

	if filters.Status != "" && filters.Status != StatusAll && !filters.Status.Valid() {
		return nil, errors.NewValidationFieldError("status",
			fmt.Sprintf("unknown status %q", filters.Status), errors.ErrCodeInvalidStatus)
	}
	page, limit, err = s.paging.Sanitize(page, limit)
	if err != nil {
		return nil, err
	}

	records, err := s.store.List(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "list users failed", "error", err)
		return nil, s.translate(err, "fetch users")
	}

	result = Query(records, filters, page, limit)
	s.logger.DebugContext(ctx, "users listed",
		"page", page, "limit", limit, "total", result.Total, "returned", len(result.Data))
	return result, nil
}

func (s *Service) GetUserByID(ctx context.Context, id string) (u *User, err error) {
	defer s.observe("get_user", time.Now(), &err)

	u, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, s.translate(err, "fetch user")
	}
	return u, nil
}

// FindByUsername matches case-insensitively and returns the first record in
// insertion order. The password hash is kept.
func (s *Service) FindByUsername(ctx context.Context, username string) (u *User, err error) {
	defer s.observe("find_by_username", time.Now(), &err)

	records, err := s.store.List(ctx)
	if err != nil {
		return nil, s.translate(err, "fetch user")
	}
	for _, r := range records {
		if strings.EqualFold(r.Username, username) {
			return r, nil
		}
	}
	return nil, s.translate(ErrNotFound, "fetch user")
}

func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) (u *User, err error) {
	defer s.observe("create_user", time.Now(), &err)

	u, err = s.mutator.Create(ctx, req)
	if err != nil {
		s.logger.WarnContext(ctx, "create user failed", "username", req.Username, "error", err)
		return nil, s.translate(err, "create user")
	}

	s.logger.InfoContext(ctx, "user created", "user_id", u.ID, "username", u.Username)
	s.publish(ctx, events.NewUserCreatedEvent(u.ID, errors.UserIDFromContext(ctx)))
	return u, nil
}

func (s *Service) UpdateUser(ctx context.Context, id string, req UpdateUserRequest) (u *User, err error) {
	defer s.observe("update_user", time.Now(), &err)

	u, err = s.mutator.Update(ctx, id, req)
	if err != nil {
		s.logger.WarnContext(ctx, "update user failed", "user_id", id, "error", err)
		return nil, s.translate(err, "update user")
	}

	s.logger.InfoContext(ctx, "user updated", "user_id", id, "fields", req.Fields())
	s.publish(ctx, events.NewUserUpdatedEvent(id, errors.UserIDFromContext(ctx), req.Fields()))
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) (err error) {
	defer s.observe("delete_user", time.Now(), &err)

	if err = s.mutator.Delete(ctx, id); err != nil {
		s.logger.WarnContext(ctx, "delete user failed", "user_id", id, "error", err)
		return s.translate(err, "delete user")
	}

	s.logger.InfoContext(ctx, "user deleted", "user_id", id)
	s.publish(ctx, events.NewUserDeletedEvent(id, errors.UserIDFromContext(ctx)))
	return nil
}

// BulkUpdateUsers skips ids that do not exist; see Mutator.BulkUpdate.
func (s *Service) BulkUpdateUsers(ctx context.Context, ids []string, req UpdateUserRequest) (users []*User, err error) {
	defer s.observe("bulk_update_users", time.Now(), &err)

	users, err = s.mutator.BulkUpdate(ctx, ids, req)
	if err != nil {
		s.logger.WarnContext(ctx, "bulk update failed", "requested", len(ids), "applied", len(users), "error", err)
		return nil, s.translate(err, "update users")
	}

	updated := make([]string, len(users))
	for i, u := range users {
		updated[i] = u.ID
	}
	if skipped := len(ids) - len(users); skipped > 0 {
		s.logger.InfoContext(ctx, "bulk update skipped ids", "requested", len(ids), "updated", len(users))
	}
	s.logger.InfoContext(ctx, "users bulk updated", "user_ids", updated, "fields", req.Fields())
	if len(updated) > 0 {
		s.publish(ctx, events.NewUsersBulkUpdatedEvent(updated, errors.UserIDFromContext(ctx), req.Fields()))
	}
	return users, nil
}

// translate maps store and engine failures onto the AppError taxonomy
// without changing their kind.
func (s *Service) translate(err error, action string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.IsAppError(err); ok {
		return err
	}
	switch {
	case stderrors.Is(err, ErrNotFound):
		return errors.NewNotFoundError("User not found", errors.ErrCodeUserNotFound).WithCause(err)
	case stderrors.Is(err, ErrDuplicateID):
		return errors.NewConflictError("User already exists", errors.ErrCodeDuplicateUser).WithCause(err)
	}
	return errors.NewInternalError("Failed to "+action, err)
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.ErrorContext(ctx, "publish event failed", "event_type", e.EventType(), "error", err)
	}
}

func (s *Service) observe(op string, start time.Time, err *error) {
	if s.observer == nil {
		return
	}
	outcome := "ok"
	if *err != nil {
		outcome = "error"
		if appErr, ok := errors.IsAppError(*err); ok {
			outcome = strings.ToLower(string(appErr.Type))
		}
	}
	s.observer.ObserveOperation(op, outcome, time.Since(start))
}
