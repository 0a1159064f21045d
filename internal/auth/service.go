package auth

import (
	"context"
	stderrors "errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	errors "github.com/aura-baza/aura-hr/internal"
	"github.com/aura-baza/aura-hr/internal/user"
)

type ServiceAPI interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	ValidateAccessToken(tokenString string) (*Claims, error)
	CurrentUser(ctx context.Context, userID string) (*AuthUser, error)
}

// Service is the main auth service with dependencies
type Service struct {
	users    UserFinder
	tokens   TokenGenerator
	verifier PasswordVerifier
	admin    *Admin
	logger   *slog.Logger

	mu      sync.Mutex
	revoked revocations
	now     func() time.Time
}

type Option func(*Service)

// WithAdmin enables the bootstrap administrator login.
func WithAdmin(a Admin) Option {
	return func(s *Service) {
		if a.ID == "" {
			a.ID = AdminID
		}
		s.admin = &a
	}
}

// NewService creates a new auth service
func NewService(users UserFinder, tokens TokenGenerator, verifier PasswordVerifier, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		users:    users,
		tokens:   tokens,
		verifier: verifier,
		logger:   logger,
		revoked:  revocations{entries: make(map[string]time.Time)},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ ServiceAPI = (*Service)(nil)

func invalidCredentials() error {
	return errors.NewUnauthorizedError("Invalid username or password", errors.ErrCodeInvalidCredentials).
		WithCause(ErrInvalidCredentials)
}

func inactive() error {
	return errors.NewUnauthorizedError("User account is not active", errors.ErrCodeUserInactive).
		WithCause(ErrUserInactive)
}

// tokenError maps generator sentinels to the AppError shape.
func tokenError(err error) error {
	switch {
	case stderrors.Is(err, ErrTokenExpired):
		return errors.NewUnauthorizedError("Token expired", errors.ErrCodeTokenExpired).WithCause(err)
	case stderrors.Is(err, ErrInvalidToken), stderrors.Is(err, ErrTokenRevoked):
		return errors.NewUnauthorizedError("Invalid token", errors.ErrCodeInvalidToken).WithCause(err)
	}
	return errors.NewInternalError("Failed to verify token", err)
}

// Login checks the bootstrap admin first, then managed users. Only active
// users with a password hash can sign in.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.admin != nil && strings.EqualFold(req.Username, s.admin.Username) {
		if !s.verifier.Compare(s.admin.PasswordHash, req.Password) {
			s.logger.WarnContext(ctx, "login failed", "username", req.Username, "reason", "bad password")
			return nil, invalidCredentials()
		}
		return s.issue(ctx, s.admin.authUser())
	}

	u, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.IsNotFound(err) {
			s.logger.WarnContext(ctx, "login failed", "username", req.Username, "reason", "unknown user")
			return nil, invalidCredentials()
		}
		return nil, err
	}
	if !s.verifier.Compare(u.PasswordHash, req.Password) {
		s.logger.WarnContext(ctx, "login failed", "username", req.Username, "reason", "bad password")
		return nil, invalidCredentials()
	}
	if u.Status != user.StatusActive {
		s.logger.WarnContext(ctx, "login refused", "user_id", u.ID, "status", u.Status)
		return nil, inactive()
	}

	return s.issue(ctx, fromUser(u))
}

func (s *Service) issue(ctx context.Context, au *AuthUser) (*LoginResponse, error) {
	access, err := s.tokens.GenerateAccessToken(au.ID, au.Username)
	if err != nil {
		return nil, errors.NewInternalError("Failed to issue token", err)
	}
	refresh, err := s.tokens.GenerateRefreshToken(au.ID, au.Username)
	if err != nil {
		return nil, errors.NewInternalError("Failed to issue token", err)
	}
	s.logger.InfoContext(ctx, "tokens issued", "user_id", au.ID, "username", au.Username)
	return &LoginResponse{User: au, Token: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a refresh token for a new pair. The old refresh token is
// revoked so it cannot be replayed.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	if err := (RefreshRequest{RefreshToken: refreshToken}).Validate(); err != nil {
		return nil, err
	}
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.revoke(claims); err != nil {
		return nil, tokenError(err)
	}

	au, err := s.CurrentUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, au)
}

// Logout revokes refreshToken when one is given. It never fails for an
// unusable token; the client drops its session either way.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.logger.DebugContext(ctx, "logout with unusable refresh token", "error", err)
		return nil
	}
	if err := s.revoke(claims); err != nil {
		s.logger.DebugContext(ctx, "logout with revoked refresh token", "user_id", claims.UserID)
		return nil
	}
	s.logger.InfoContext(ctx, "user logged out", "user_id", claims.UserID)
	return nil
}

func (s *Service) revoke(claims *Claims) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if claims.ID == "" || s.revoked.has(claims.ID) {
		return ErrTokenRevoked
	}
	expires := s.now()
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	s.revoked.add(claims.ID, expires, s.now())
	return nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.tokens.ValidateAccessToken(tokenString)
	if err != nil {
		return nil, tokenError(err)
	}
	return claims, nil
}

// CurrentUser reloads the identity behind userID so role changes show up
// without a new login.
func (s *Service) CurrentUser(ctx context.Context, userID string) (*AuthUser, error) {
	if s.admin != nil && userID == s.admin.ID {
		return s.admin.authUser(), nil
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.NewUnauthorizedError("Invalid token", errors.ErrCodeInvalidToken).WithCause(err)
		}
		return nil, err
	}
	if u.Status != user.StatusActive {
		return nil, inactive()
	}
	return fromUser(u), nil
}
