package user

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/role"
)

type RoleResolver interface {
	Resolve(ctx context.Context, ids []string) ([]role.Role, error)
}

type IDGenerator interface {
	NewID() string
}

type PasswordHasher interface {
	Hash(password string) (string, error)
}

// Mutator applies create, update, delete and bulk-update against a Store.
type Mutator struct {
	store  Store
	roles  RoleResolver
	ids    IDGenerator
	hasher PasswordHasher
	now    func() time.Time
}

type MutatorOption func(*Mutator)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) MutatorOption {
	return func(m *Mutator) { m.now = now }
}

func NewMutator(store Store, roles RoleResolver, ids IDGenerator, hasher PasswordHasher, opts ...MutatorOption) *Mutator {
	m := &Mutator{
		store:  store,
		roles:  roles,
		ids:    ids,
		hasher: hasher,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mutator) stamp() time.Time {
	return m.now().UTC()
}

func (m *Mutator) resolveRoles(ctx context.Context, ids []string) ([]role.Role, error) {
	if len(ids) == 0 {
		return []role.Role{}, nil
	}
	if m.roles == nil {
		return nil, errors.NewValidationFieldError("roleIds", "roles cannot be assigned", errors.ErrCodeInvalidRole)
	}
	roles, err := m.roles.Resolve(ctx, ids)
	if err != nil {
		if stderrors.Is(err, role.ErrUnknownRole) {
			return nil, errors.NewValidationFieldError("roleIds", err.Error(), errors.ErrCodeInvalidRole)
		}
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	return roles, nil
}

// Create validates req, assigns a fresh id and stamps both timestamps with
// the same instant.
func (m *Mutator) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	roles, err := m.resolveRoles(ctx, req.RoleIDs)
	if err != nil {
		return nil, err
	}

	hash, err := m.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := m.stamp()
	u := &User{
		ID:           m.ids.NewID(),
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Status:       req.Status,
		Roles:        roles,
		Department:   req.Department,
		CreatedAt:    now,
		UpdatedAt:    now,
		PasswordHash: hash,
	}

	if err := m.store.Insert(ctx, u); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u.Clone(), nil
}

// prepare validates a patch and resolves its roles once for any number of ids.
func (m *Mutator) prepare(ctx context.Context, patch UpdateUserRequest) (func(*User), error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var roles []role.Role
	if patch.RoleIDs != nil {
		var err error
		if roles, err = m.resolveRoles(ctx, *patch.RoleIDs); err != nil {
			return nil, err
		}
	}
	return func(u *User) {
		patch.ApplyTo(u, roles)
		u.UpdatedAt = m.stamp()
		if u.UpdatedAt.Before(u.CreatedAt) {
			u.UpdatedAt = u.CreatedAt
		}
	}, nil
}

// Update merges patch into the record as it exists when the store applies it.
func (m *Mutator) Update(ctx context.Context, id string, patch UpdateUserRequest) (*User, error) {
	apply, err := m.prepare(ctx, patch)
	if err != nil {
		return nil, err
	}
	u, err := m.store.Update(ctx, id, apply)
	if err != nil {
		return nil, fmt.Errorf("update user %s: %w", id, err)
	}
	return u, nil
}

func (m *Mutator) Delete(ctx context.Context, id string) error {
	if err := m.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	return nil
}

// BulkUpdate applies patch to each id independently. Ids that do not exist
// are skipped without error and repeated ids are applied once. The result
// follows ids order.
func (m *Mutator) BulkUpdate(ctx context.Context, ids []string, patch UpdateUserRequest) ([]*User, error) {
	apply, err := m.prepare(ctx, patch)
	if err != nil {
		return nil, err
	}

	out := make([]*User, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		u, err := m.store.Update(ctx, id, apply)
		if stderrors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return out, fmt.Errorf("bulk update user %s: %w", id, err)
		}
		out = append(out, u)
	}
	return out, nil
}
