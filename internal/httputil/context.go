package httputil

import "context"

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

// UserIDContextKey holds the authenticated caller's numeric id.
const UserIDContextKey ContextKey = "user_id"

// WithUserID returns a context carrying the authenticated caller's id.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDContextKey, userID)
}

// GetUserIDFromContext extracts the caller's user id from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(int64)
	return userID, ok
}
