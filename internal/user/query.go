package user

import (
	"strings"

	"golang.org/x/text/cases"
)

// Query filters records and slices out one page. It never mutates or
// reorders records; the returned Page shares the *User pointers of its input.
//
// Filters apply in order: search, status, department, role. page and limit are
// taken as given and must be >= 1; see Service for sanitizing.
func Query(records []*User, f Filters, page, limit int) *Page {
	matched := Filter(records, f)

	total := len(matched)
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	start := (page - 1) * limit
	end := start + limit
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	if end < start {
		end = start
	}

	data := make([]*User, end-start)
	copy(data, matched[start:end])

	return &Page{
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// Filter returns the records matching f in input order.
func Filter(records []*User, f Filters) []*User {
	if f.IsZero() {
		out := make([]*User, 0, len(records))
		for _, u := range records {
			if u != nil {
				out = append(out, u)
			}
		}
		return out
	}

	// Caser keeps state, so one per call.
	fold := cases.Fold()
	needle := ""
	if f.Search != "" {
		needle = fold.String(f.Search)
	}
	contains := func(field string) bool {
		return strings.Contains(fold.String(field), needle)
	}

	out := make([]*User, 0, len(records))
	for _, u := range records {
		if u == nil {
			continue
		}
		if needle != "" &&
			!contains(u.Username) &&
			!contains(u.Email) &&
			!contains(u.FirstName) &&
			!contains(u.LastName) {
			continue
		}
		if f.Status != "" && f.Status != StatusAll && u.Status != f.Status {
			continue
		}
		if f.Department != "" && u.Department != f.Department {
			continue
		}
		if f.RoleID != "" && !u.HasRole(f.RoleID) {
			continue
		}
		out = append(out, u)
	}
	return out
}
