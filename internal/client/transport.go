package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	errors "github.com/aura-baza/aura-hr/internal"
)

const refreshPath = "/auth/refresh"

type Config struct {
	BaseURL string
	Timeout time.Duration
	// HTTPClient overrides the default client built from Timeout.
	HTTPClient *http.Client
}

// Transport sends JSON requests to the API with the session's bearer token.
// An expired access token is refreshed once and the request retried.
type Transport struct {
	baseURL string
	http    *http.Client
	session SessionStore
	logger  *slog.Logger

	refreshMu sync.Mutex
}

func NewTransport(config Config, session SessionStore, logger *slog.Logger) *Transport {
	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if session == nil {
		session = NewMemorySession()
	}

	return &Transport{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		http:    httpClient,
		session: session,
		logger:  logger,
	}
}

func (t *Transport) Session() SessionStore {
	return t.session
}

// SetTokens stores a fresh pair; an empty refresh token keeps the old one.
func (t *Transport) SetTokens(accessToken, refreshToken string) error {
	if err := t.session.Set(KeyAuthToken, accessToken); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	return t.session.Set(KeyRefreshToken, refreshToken)
}

func (t *Transport) ClearSession() error {
	return clearSession(t.session)
}

// Send issues method path with body encoded as JSON and decodes a 2xx
// response into out. A 401 or 403 triggers one refresh and one retry; if the
// refresh fails the session is cleared and a session-expired error returned.
func (t *Transport) Send(ctx context.Context, method, path string, body, out any) error {
	payload, err := encode(body)
	if err != nil {
		return err
	}

	token, _ := t.session.Get(KeyAuthToken)
	resp, err := t.do(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden {
		t.logger.Debug("access token rejected, refreshing", "method", method, "path", path, "status", resp.status)

		fresh, err := t.refresh(ctx, token)
		if err != nil {
			t.logger.Info("session refresh failed", "error", err)
			if cerr := t.ClearSession(); cerr != nil {
				t.logger.Warn("failed to clear session", "error", cerr)
			}
			return errors.NewSessionExpiredError().WithCause(err)
		}

		resp, err = t.do(ctx, method, path, payload, fresh)
		if err != nil {
			return err
		}
	}

	return resp.decode(out)
}

// SendPublic is Send without the refresh step, for the auth endpoints
// themselves.
func (t *Transport) SendPublic(ctx context.Context, method, path string, body, out any) error {
	payload, err := encode(body)
	if err != nil {
		return err
	}
	resp, err := t.do(ctx, method, path, payload, "")
	if err != nil {
		return err
	}
	return resp.decode(out)
}

// refresh swaps the token pair. Concurrent callers that saw the same stale
// token share one refresh: whoever gets the lock second finds the token
// already replaced and reuses it.
func (t *Transport) refresh(ctx context.Context, stale string) (string, error) {
	t.refreshMu.Lock()
	defer t.refreshMu.Unlock()

	if current, ok := t.session.Get(KeyAuthToken); ok && current != "" && current != stale {
		return current, nil
	}

	refreshToken, ok := t.session.Get(KeyRefreshToken)
	if !ok || refreshToken == "" {
		return "", fmt.Errorf("no refresh token in session")
	}

	payload, err := encode(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}
	resp, err := t.do(ctx, http.MethodPost, refreshPath, payload, "")
	if err != nil {
		return "", err
	}

	var pair struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := resp.decode(&pair); err != nil {
		return "", err
	}
	if pair.Token == "" {
		return "", fmt.Errorf("refresh response carried no token")
	}

	if err := t.SetTokens(pair.Token, pair.RefreshToken); err != nil {
		return "", fmt.Errorf("store refreshed tokens: %w", err)
	}
	t.logger.Debug("access token refreshed")
	return pair.Token, nil
}

type response struct {
	status int
	body   []byte
}

func (t *Transport) do(ctx context.Context, method, path string, payload []byte, token string) (*response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return nil, errors.NewNetworkError("Network error", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := t.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.NewNetworkError("Network error", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.NewNetworkError("Network error", err)
	}
	return &response{status: res.StatusCode, body: body}, nil
}

func (r *response) decode(out any) error {
	if r.status < 200 || r.status > 299 {
		return r.appError()
	}
	if out == nil || len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.body, out); err != nil {
		return errors.NewNetworkError("Network error", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// appError rebuilds the server's error envelope, falling back to a generic
// message when the body carries none.
func (r *response) appError() error {
	var envelope struct {
		Error *errors.AppError `json:"error"`
	}
	if err := json.Unmarshal(r.body, &envelope); err != nil {
		appErr := errors.NewNetworkError("Network error", err)
		appErr.StatusCode = r.status
		return appErr
	}

	appErr := envelope.Error
	if appErr == nil {
		appErr = &errors.AppError{Type: errors.ErrorTypeExternal, Code: errors.ErrCodeOperationFailed}
	}
	if appErr.Message == "" {
		appErr.Message = fmt.Sprintf("HTTP error! status: %d", r.status)
	}
	appErr.StatusCode = r.status
	return appErr
}

func encode(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	return data, nil
}
