package user

import (
	"time"

	"github.com/aura-baza/aura-hr/internal/role"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"

	// StatusAll is only meaningful as a filter value.
	StatusAll Status = "all"
)

var Statuses = []Status{StatusActive, StatusInactive, StatusSuspended}

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	}
	return false
}

func statusStrings(statuses ...Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Status       Status      `json:"status"`
	Roles        []role.Role `json:"roles"`
	Department   string      `json:"department,omitempty"`
	LastLogin    *time.Time  `json:"lastLogin,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	PasswordHash string      `json:"-"`
}

// Clone returns a deep copy so callers never share role slices or timestamps
// with the store.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = role.CloneAll(u.Roles)
	if u.LastLogin != nil {
		t := *u.LastLogin
		c.LastLogin = &t
	}
	return &c
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u *User) HasRole(roleID string) bool {
	for _, r := range u.Roles {
		if r.ID == roleID {
			return true
		}
	}
	return false
}

func (u *User) RoleKeys() []string {
	keys := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		if r.Key != "" {
			keys = append(keys, r.Key)
		}
	}
	return keys
}

// Permissions flattens the permission names of every role, first occurrence wins.
func (u *User) Permissions() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range u.Roles {
		for _, p := range r.Permissions {
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			out = append(out, p.Name)
		}
	}
	return out
}

// Filters narrows a listing. The zero value matches every record.
type Filters struct {
	Search     string `json:"search,omitempty"`
	Status     Status `json:"status,omitempty"`
	Department string `json:"department,omitempty"`
	RoleID     string `json:"roleId,omitempty"`
}

func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Page is one slice of a filtered listing.
type Page struct {
	Data       []*User `json:"data"`
	Total      int     `json:"total"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	TotalPages int     `json:"totalPages"`
}
