package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/shopkart-labs/shopkart-backend/internal/cart"
)

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxIsAdmin   contextKey = "is_admin"
	ctxSessionID contextKey = "session_id"
	ctxCartToken contextKey = "cart_token"
)

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

func UserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxUserID).(string); ok {
		return v
	}
	return ""
}

func IsAdminFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(ctxIsAdmin).(bool); ok {
		return v
	}
	return false
}

func CartTokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartToken).(string); ok {
		return v
	}
	return ""
}

// WithUserID injects the user identifier into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUserID, userID)
}

// WithCartToken injects the anonymous cart token into the context.
func WithCartToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartToken, token)
}

// OwnerFromContext builds the cart identity seeded by OptionalAuth. The
// authenticated user wins over an anonymous token.
func OwnerFromContext(ctx context.Context) cart.Owner {
	if raw := UserIDFromContext(ctx); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return cart.Owner{UserID: &id}
		}
	}
	return cart.Owner{SessionToken: CartTokenFromContext(ctx)}
}
