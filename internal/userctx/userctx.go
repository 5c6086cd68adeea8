package userctx

import (
	"context"
	"strings"
)

type contextKey string

const userIDContextKey contextKey = "user_id"

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok
}

// OwnerOrDefault returns the authenticated user id, or fallback for
// anonymous requests.
func OwnerOrDefault(ctx context.Context, fallback string) string {
	if id, ok := GetUserID(ctx); ok && strings.TrimSpace(id) != "" {
		return id
	}
	return fallback
}
