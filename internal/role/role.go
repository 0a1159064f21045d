package role

import (
	"errors"
	"fmt"
	"strings"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

var Actions = []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}

const (
	ResourceUsers = "users"
	ResourceRoles = "roles"
)

// Permission names, in resource:action form.
const (
	PermUsersCreate = "users:create"
	PermUsersRead   = "users:read"
	PermUsersUpdate = "users:update"
	PermUsersDelete = "users:delete"
	PermRolesCreate = "roles:create"
	PermRolesRead   = "roles:read"
	PermRolesUpdate = "roles:update"
	PermRolesDelete = "roles:delete"

	// Wildcards granted to the bootstrap administrator.
	PermUsersAll = "users:*"
	PermRolesAll = "roles:*"
)

// Role keys used for advisory HasRole checks.
const (
	KeyAdmin     = "admin"
	KeyHRManager = "supervisor"
	KeyManager   = "manager"
	KeyEmployee  = "agente"
	KeyViewer    = "viewer"
)

type Permission struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Resource    string `json:"resource"`
	Action      Action `json:"action"`
	Description string `json:"description"`
}

type Role struct {
	ID          string       `json:"id"`
	Key         string       `json:"key,omitempty"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `json:"permissions"`
	Color       string       `json:"color,omitempty"`
}

var ErrUnknownRole = errors.New("unknown role")

// NewPermission builds a permission whose name is resource:action.
func NewPermission(resource string, action Action, description string) Permission {
	name := resource + ":" + string(action)
	return Permission{
		ID:          name,
		Name:        name,
		Resource:    resource,
		Action:      action,
		Description: description,
	}
}

// ParsePermission splits a resource:action name.
func ParsePermission(name string) (resource string, action string, err error) {
	resource, action, ok := strings.Cut(name, ":")
	if !ok || resource == "" || action == "" {
		return "", "", fmt.Errorf("malformed permission %q", name)
	}
	return resource, action, nil
}

// Grants reports whether the held permission name covers want, honoring
// resource:* wildcards.
func Grants(held, want string) bool {
	if held == want {
		return true
	}
	hr, ha, err := ParsePermission(held)
	if err != nil {
		return false
	}
	wr, _, err := ParsePermission(want)
	if err != nil {
		return false
	}
	return ha == "*" && hr == wr
}

func (r Role) Clone() Role {
	c := r
	if r.Permissions != nil {
		c.Permissions = append([]Permission(nil), r.Permissions...)
	}
	return c
}

func (r Role) PermissionNames() []string {
	names := make([]string, len(r.Permissions))
	for i, p := range r.Permissions {
		names[i] = p.Name
	}
	return names
}

func CloneAll(roles []Role) []Role {
	if roles == nil {
		return nil
	}
	out := make([]Role, len(roles))
	for i, r := range roles {
		out[i] = r.Clone()
	}
	return out
}
