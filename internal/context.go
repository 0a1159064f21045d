package internal

import (
	"context"
	"time"
)

type ctxKey string

const (
	ContextUserKey     ctxKey = "userID"
	ContextUsernameKey ctxKey = "username"
)

func stringValue(ctx context.Context, key ctxKey) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(key).(string)
	return v
}

// UserIDFromContext returns the authenticated caller's id, or "" for
// anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ContextUserKey)
}

func UsernameFromContext(ctx context.Context) string {
	return stringValue(ctx, ContextUsernameKey)
}

func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextUserKey, userID)
}

func ContextWithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, ContextUsernameKey, username)
}

// WithTimeout is context.WithTimeout with a 5s floor for unset durations.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 5 * time.Second
	}
	return context.WithTimeout(ctx, d)
}
