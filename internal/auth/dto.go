package auth

import (
	"strings"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/core/common/validation"
)

// LoginRequest is the transport shape used by the HTTP handler to accept login requests.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (d *LoginRequest) Validate() *errors.AppError {
	d.Username = strings.TrimSpace(d.Username)
	v := validation.NewValidator()
	v.Field("username", d.Username).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

// RefreshRequest carries the refresh token for /auth/refresh and /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (d RefreshRequest) Validate() *errors.AppError {
	v := validation.NewValidator()
	v.Field("refreshToken", d.RefreshToken).Required()
	return v.Validate()
}
