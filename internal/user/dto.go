package user

import (
	"strings"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/core/common/validation"
	"github.com/aura-baza/aura-hr/internal/role"
)

const (
	UsernameMinLength = 3
	PasswordMinLength = 6
	NameMaxLength     = 100
)

type CreateUserRequest struct {
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	FirstName  string   `json:"firstName"`
	LastName   string   `json:"lastName"`
	Password   string   `json:"password"`
	RoleIDs    []string `json:"roleIds"`
	Department string   `json:"department,omitempty"`
	Status     Status   `json:"status,omitempty"`
}

func (r *CreateUserRequest) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", r.Username).Required().MinLength(UsernameMinLength).MaxLength(NameMaxLength)
	v.Field("email", r.Email).Required().Email()
	v.Field("firstName", r.FirstName).Required().MaxLength(NameMaxLength)
	v.Field("lastName", r.LastName).Required().MaxLength(NameMaxLength)
	v.Field("password", r.Password).Required().MinLength(PasswordMinLength)
	v.Field("department", r.Department).MaxLength(NameMaxLength)
	v.Field("status", string(r.Status)).OneOf(errors.ErrCodeInvalidStatus, statusStrings(Statuses...)...)
	return v.Validate()
}

// Normalize trims identity fields and applies the default status.
func (r *CreateUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Department = strings.TrimSpace(r.Department)
	if r.Status == "" {
		r.Status = StatusActive
	}
}

// UpdateUserRequest is a shallow patch. Nil fields are left untouched;
// a non-nil empty RoleIDs clears every role.
type UpdateUserRequest struct {
	Username   *string   `json:"username,omitempty"`
	Email      *string   `json:"email,omitempty"`
	FirstName  *string   `json:"firstName,omitempty"`
	LastName   *string   `json:"lastName,omitempty"`
	RoleIDs    *[]string `json:"roleIds,omitempty"`
	Department *string   `json:"department,omitempty"`
	Status     *Status   `json:"status,omitempty"`
}

func (r *UpdateUserRequest) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("username", r.Username).NotBlank().MinLength(UsernameMinLength).MaxLength(NameMaxLength)
	v.Field("email", r.Email).NotBlank().Email()
	v.Field("firstName", r.FirstName).NotBlank().MaxLength(NameMaxLength)
	v.Field("lastName", r.LastName).NotBlank().MaxLength(NameMaxLength)
	v.Field("department", r.Department).MaxLength(NameMaxLength)
	if r.Status != nil {
		v.Field("status", string(*r.Status)).Required().OneOf(errors.ErrCodeInvalidStatus, statusStrings(Statuses...)...)
	}
	return v.Validate()
}

func (r *UpdateUserRequest) IsEmpty() bool {
	return len(r.Fields()) == 0
}

// Fields lists the patched field names in declaration order.
func (r *UpdateUserRequest) Fields() []string {
	var fields []string
	if r.Username != nil {
		fields = append(fields, "username")
	}
	if r.Email != nil {
		fields = append(fields, "email")
	}
	if r.FirstName != nil {
		fields = append(fields, "firstName")
	}
	if r.LastName != nil {
		fields = append(fields, "lastName")
	}
	if r.RoleIDs != nil {
		fields = append(fields, "roles")
	}
	if r.Department != nil {
		fields = append(fields, "department")
	}
	if r.Status != nil {
		fields = append(fields, "status")
	}
	return fields
}

// ApplyTo merges the patch into u. roles holds the resolved RoleIDs and is
// ignored when RoleIDs is nil.
func (r *UpdateUserRequest) ApplyTo(u *User, roles []role.Role) {
	if r.Username != nil {
		u.Username = strings.TrimSpace(*r.Username)
	}
	if r.Email != nil {
		u.Email = strings.TrimSpace(*r.Email)
	}
	if r.FirstName != nil {
		u.FirstName = strings.TrimSpace(*r.FirstName)
	}
	if r.LastName != nil {
		u.LastName = strings.TrimSpace(*r.LastName)
	}
	if r.RoleIDs != nil {
		u.Roles = role.CloneAll(roles)
		if u.Roles == nil {
			u.Roles = []role.Role{}
		}
	}
	if r.Department != nil {
		u.Department = strings.TrimSpace(*r.Department)
	}
	if r.Status != nil {
		u.Status = *r.Status
	}
}

type BulkUpdateRequest struct {
	IDs     []string          `json:"ids"`
	Updates UpdateUserRequest `json:"updates"`
}
