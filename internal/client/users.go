package client

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aura-baza/aura-hr/internal/auth"
	"github.com/aura-baza/aura-hr/internal/user"
)

// UserClient serves user.ServiceAPI from a remote API, so the view layer works
// the same against a local store or a server.
type UserClient struct {
	transport *Transport
	logger    *slog.Logger
}

var _ user.ServiceAPI = (*UserClient)(nil)

func NewUserClient(transport *Transport, logger *slog.Logger) *UserClient {
	return &UserClient{transport: transport, logger: logger}
}

func (c *UserClient) Transport() *Transport {
	return c.transport
}

// Login signs in and stores the returned token pair.
func (c *UserClient) Login(ctx context.Context, username, password string) (*auth.LoginResponse, error) {
	var resp auth.LoginResponse
	req := auth.LoginRequest{Username: username, Password: password}
	if err := c.transport.SendPublic(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	if err := c.transport.SetTokens(resp.Token, resp.RefreshToken); err != nil {
		return nil, err
	}

	c.logger.Info("signed in", "username", username)
	return &resp, nil
}

// Logout revokes the refresh token server-side and always clears the local
// session.
func (c *UserClient) Logout(ctx context.Context) error {
	refreshToken, _ := c.transport.Session().Get(KeyRefreshToken)
	err := c.transport.SendPublic(ctx, http.MethodPost, "/auth/logout", auth.RefreshRequest{RefreshToken: refreshToken}, nil)
	if err != nil {
		c.logger.Warn("server logout failed", "error", err)
	}
	if cerr := c.transport.ClearSession(); cerr != nil {
		return cerr
	}
	return nil
}

func (c *UserClient) Me(ctx context.Context) (*auth.MeResponse, error) {
	var me auth.MeResponse
	if err := c.transport.Send(ctx, http.MethodGet, "/auth/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

func (c *UserClient) GetUsers(ctx context.Context, page, limit int, filters user.Filters) (*user.Page, error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if filters.Search != "" {
		q.Set("search", filters.Search)
	}
	if filters.Status != "" {
		q.Set("status", string(filters.Status))
	}
	if filters.Department != "" {
		q.Set("department", filters.Department)
	}
	if filters.RoleID != "" {
		q.Set("roleId", filters.RoleID)
	}

	path := "/users"
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var result user.Page
	if err := c.transport.Send(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *UserClient) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	var u user.User
	if err := c.transport.Send(ctx, http.MethodGet, "/users/"+url.PathEscape(id), nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *UserClient) CreateUser(ctx context.Context, req user.CreateUserRequest) (*user.User, error) {
	var u user.User
	if err := c.transport.Send(ctx, http.MethodPost, "/users", req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *UserClient) UpdateUser(ctx context.Context, id string, req user.UpdateUserRequest) (*user.User, error) {
	var u user.User
	if err := c.transport.Send(ctx, http.MethodPut, "/users/"+url.PathEscape(id), req, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *UserClient) DeleteUser(ctx context.Context, id string) error {
	return c.transport.Send(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil)
}

func (c *UserClient) BulkUpdateUsers(ctx context.Context, ids []string, req user.UpdateUserRequest) ([]*user.User, error) {
	users := []*user.User{}
	body := user.BulkUpdateRequest{IDs: ids, Updates: req}
	if err := c.transport.Send(ctx, http.MethodPatch, "/users/bulk", body, &users); err != nil {
		return nil, err
	}
	return users, nil
}
