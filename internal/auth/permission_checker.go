package auth

import (
	"context"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/role"
)

// PermissionChecker answers the advisory questions the admin screens ask.
// Nothing on the server enforces these answers.
type PermissionChecker interface {
	CanCreateUsers(u *AuthUser) bool
	CanEditUsers(u *AuthUser) bool
	CanDeleteUsers(u *AuthUser) bool
	CanManageRoles(u *AuthUser) bool
	IsAdmin(u *AuthUser) bool
	IsHRManager(u *AuthUser) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) CanCreateUsers(u *AuthUser) bool {
	return u != nil && u.HasPermission(role.PermUsersCreate)
}

func (c *DefaultPermissionChecker) CanEditUsers(u *AuthUser) bool {
	return u != nil && u.HasPermission(role.PermUsersUpdate)
}

func (c *DefaultPermissionChecker) CanDeleteUsers(u *AuthUser) bool {
	return u != nil && u.HasPermission(role.PermUsersDelete)
}

func (c *DefaultPermissionChecker) CanManageRoles(u *AuthUser) bool {
	return u != nil && u.HasAnyPermission(role.PermRolesCreate, role.PermRolesUpdate, role.PermRolesDelete)
}

func (c *DefaultPermissionChecker) IsAdmin(u *AuthUser) bool {
	return u != nil && u.HasRole(role.KeyAdmin)
}

func (c *DefaultPermissionChecker) IsHRManager(u *AuthUser) bool {
	return u != nil && (u.HasRole(role.KeyHRManager) || u.HasRole(role.KeyAdmin))
}

// Capabilities is the flag set served alongside /auth/me.
type Capabilities struct {
	CanCreateUsers bool `json:"canCreateUsers"`
	CanEditUsers   bool `json:"canEditUsers"`
	CanDeleteUsers bool `json:"canDeleteUsers"`
	CanManageRoles bool `json:"canManageRoles"`
	IsAdmin        bool `json:"isAdmin"`
	IsHRManager    bool `json:"isHRManager"`
}

func CapabilitiesOf(c PermissionChecker, u *AuthUser) Capabilities {
	return Capabilities{
		CanCreateUsers: c.CanCreateUsers(u),
		CanEditUsers:   c.CanEditUsers(u),
		CanDeleteUsers: c.CanDeleteUsers(u),
		CanManageRoles: c.CanManageRoles(u),
		IsAdmin:        c.IsAdmin(u),
		IsHRManager:    c.IsHRManager(u),
	}
}

// CurrentUserFromContext resolves the caller set by AuthMiddleware.
func CurrentUserFromContext(ctx context.Context, svc ServiceAPI) (*AuthUser, error) {
	id := errors.UserIDFromContext(ctx)
	if id == "" {
		return nil, errors.NewUnauthorizedError("missing authorization token", errors.ErrCodeInvalidToken)
	}
	return svc.CurrentUser(ctx, id)
}
