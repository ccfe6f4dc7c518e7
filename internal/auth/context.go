package auth

import (
	"context"

	"github.com/agenticlabs/smartrouter/internal/types"
)

type contextKey string

const authContextKey contextKey = "smartrouter_auth"

// AuthInfo is the authenticated tenant snapshot attached to the request
// context by the middleware.
type AuthInfo struct {
	KeyID                string
	Tenant               types.Tenant
	RPMLimit             *int
	DailySpendLimitCents *int
}

func ContextWithAuth(ctx context.Context, info *AuthInfo) context.Context {
	return context.WithValue(ctx, authContextKey, info)
}

func AuthFromContext(ctx context.Context) (*AuthInfo, bool) {
	info, ok := ctx.Value(authContextKey).(*AuthInfo)
	return info, ok
}
