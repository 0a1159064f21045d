package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aura-baza/aura-hr/internal/role"
	"github.com/aura-baza/aura-hr/internal/user"
)

// AuthUser is the signed-in identity returned by login and /auth/me.
// Permissions and Roles are advisory flags for the caller's UI.
type AuthUser struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func (u *AuthUser) HasPermission(permission string) bool {
	for _, p := range u.Permissions {
		if role.Grants(p, permission) {
			return true
		}
	}
	return false
}

func (u *AuthUser) HasAnyPermission(permissions ...string) bool {
	for _, p := range permissions {
		if u.HasPermission(p) {
			return true
		}
	}
	return false
}

func (u *AuthUser) HasRole(key string) bool {
	for _, r := range u.Roles {
		if r == key {
			return true
		}
	}
	return false
}

func fromUser(u *user.User) *AuthUser {
	return &AuthUser{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Roles:       u.RoleKeys(),
		Permissions: u.Permissions(),
	}
}

type LoginResponse struct {
	User         *AuthUser `json:"user"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Kind     string `json:"kind"`
	jwt.RegisteredClaims
}

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// TokenGenerator issues and verifies access and refresh tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID, username string) (string, error)
	GenerateRefreshToken(userID, username string) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// UserFinder is the slice of user.Service that auth reads from.
type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	GetUserByID(ctx context.Context, id string) (*user.User, error)
}

type PasswordVerifier interface {
	Compare(hash, password string) bool
}

// Admin is the bootstrap account configured outside the user store.
type Admin struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
}

const AdminID = "admin"

func (a Admin) authUser() *AuthUser {
	return &AuthUser{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		FirstName:   "System",
		LastName:    "Administrator",
		Roles:       []string{role.KeyAdmin},
		Permissions: []string{role.PermUsersAll, role.PermRolesAll},
	}
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrUserInactive       = errors.New("user is inactive")
)

// revocations remembers logged-out refresh token ids until they expire.
type revocations struct {
	entries map[string]time.Time
}

func (r *revocations) add(jti string, expires time.Time, now time.Time) {
	for id, exp := range r.entries {
		if now.After(exp) {
			delete(r.entries, id)
		}
	}
	r.entries[jti] = expires
}

func (r *revocations) has(jti string) bool {
	_, ok := r.entries[jti]
	return ok
}
