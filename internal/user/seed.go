package user

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aura-baza/aura-hr/internal/role"
)

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func tsPtr(value string) *time.Time {
	t := ts(value)
	return &t
}

// SeedUsers returns the four demo accounts. They carry no password hash and
// so cannot log in.
func SeedUsers() []*User {
	roles := make(map[string]role.Role)
	for _, r := range role.DefaultRoles() {
		roles[r.ID] = r
	}
	with := func(ids ...string) []role.Role {
		out := make([]role.Role, 0, len(ids))
		for _, id := range ids {
			out = append(out, roles[id].Clone())
		}
		return out
	}

	return []*User{
		{
			ID:         "1",
			Username:   "john.doe",
			Email:      "john.doe@company.com",
			FirstName:  "John",
			LastName:   "Doe",
			Status:     StatusActive,
			Roles:      with("1"),
			Department: "Engineering",
			LastLogin:  tsPtr("2024-01-15T10:30:00Z"),
			CreatedAt:  ts("2024-01-01T00:00:00Z"),
			UpdatedAt:  ts("2024-01-15T10:30:00Z"),
		},
		{
			ID:         "2",
			Username:   "jane.smith",
			Email:      "jane.smith@company.com",
			FirstName:  "Jane",
			LastName:   "Smith",
			Status:     StatusActive,
			Roles:      with("2"),
			Department: "Human Resources",
			LastLogin:  tsPtr("2024-01-14T14:20:00Z"),
			CreatedAt:  ts("2024-01-02T00:00:00Z"),
			UpdatedAt:  ts("2024-01-14T14:20:00Z"),
		},
		{
			ID:         "3",
			Username:   "mike.johnson",
			Email:      "mike.johnson@company.com",
			FirstName:  "Mike",
			LastName:   "Johnson",
			Status:     StatusInactive,
			Roles:      with("3"),
			Department: "Marketing",
			LastLogin:  tsPtr("2024-01-10T09:15:00Z"),
			CreatedAt:  ts("2024-01-03T00:00:00Z"),
			UpdatedAt:  ts("2024-01-10T09:15:00Z"),
		},
		{
			ID:         "4",
			Username:   "sarah.wilson",
			Email:      "sarah.wilson@company.com",
			FirstName:  "Sarah",
			LastName:   "Wilson",
			Status:     StatusSuspended,
			Roles:      with("4"),
			Department: "Sales",
			LastLogin:  tsPtr("2024-01-08T16:45:00Z"),
			CreatedAt:  ts("2024-01-04T00:00:00Z"),
			UpdatedAt:  ts("2024-01-08T16:45:00Z"),
		},
	}
}

// Seed inserts the demo accounts, leaving any id that already exists alone.
// It returns how many records were inserted.
func Seed(ctx context.Context, store Store) (int, error) {
	inserted := 0
	for _, u := range SeedUsers() {
		err := store.Insert(ctx, u)
		if stderrors.Is(err, ErrDuplicateID) {
			continue
		}
		if err != nil {
			return inserted, fmt.Errorf("seed user %s: %w", u.ID, err)
		}
		inserted++
	}
	return inserted, nil
}
