// Package identity carries the authenticated user through request context.
// Handlers resolve identity once at the middleware boundary; services never
// read ambient session state.
package identity

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type contextKey struct{}

func WithUserID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	id, ok := ctx.Value(contextKey{}).(snowflake.ID)
	if !ok || id == 0 {
		return 0, false
	}
	return id, true
}
