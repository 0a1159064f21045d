package role

import (
	"context"
	"fmt"
	"sync"
)

// Catalog is read-only role reference data keyed by id.
type Catalog struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]Role
}

func NewCatalog(roles ...Role) *Catalog {
	c := &Catalog{byID: make(map[string]Role, len(roles))}
	for _, r := range roles {
		if _, dup := c.byID[r.ID]; !dup {
			c.order = append(c.order, r.ID)
		}
		c.byID[r.ID] = r.Clone()
	}
	return c
}

// DefaultCatalog holds the roles shipped with the product.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultRoles()...)
}

func allPermissions(resource string) []Permission {
	out := make([]Permission, 0, len(Actions))
	for _, a := range Actions {
		out = append(out, NewPermission(resource, a, fmt.Sprintf("%s %s", a, resource)))
	}
	return out
}

func DefaultRoles() []Role {
	usersRead := NewPermission(ResourceUsers, ActionRead, "read users")
	usersUpdate := NewPermission(ResourceUsers, ActionUpdate, "update users")
	rolesRead := NewPermission(ResourceRoles, ActionRead, "read roles")

	return []Role{
		{
			ID:          "1",
			Key:         KeyAdmin,
			Name:        "Admin",
			Description: "Full system access",
			Permissions: append(allPermissions(ResourceUsers), allPermissions(ResourceRoles)...),
			Color:       "red",
		},
		{
			ID:          "2",
			Key:         KeyHRManager,
			Name:        "HR Manager",
			Description: "HR management access",
			Permissions: append(allPermissions(ResourceUsers), rolesRead),
			Color:       "purple",
		},
		{
			ID:          "3",
			Key:         KeyEmployee,
			Name:        "Employee",
			Description: "Basic employee access",
			Permissions: []Permission{usersRead},
			Color:       "gray",
		},
		{
			ID:          "4",
			Key:         KeyManager,
			Name:        "Manager",
			Description: "Team management access",
			Permissions: []Permission{usersRead, usersUpdate, rolesRead},
			Color:       "blue",
		},
		{
			ID:          "5",
			Key:         KeyViewer,
			Name:        "Viewer",
			Description: "Read-only access",
			Permissions: []Permission{usersRead, rolesRead},
			Color:       "green",
		},
	}
}

func (c *Catalog) List(ctx context.Context) ([]Role, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Role, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id].Clone())
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (Role, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.byID[id]
	if !ok {
		return Role{}, fmt.Errorf("%w: %s", ErrUnknownRole, id)
	}
	return r.Clone(), nil
}

// Resolve maps role ids to Role values in the given order. Duplicate ids
// resolve once. Any unknown id fails the whole call.
func (c *Catalog) Resolve(ctx context.Context, ids []string) ([]Role, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Role, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		r, ok := c.byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRole, id)
		}
		out = append(out, r.Clone())
	}
	return out, nil
}
