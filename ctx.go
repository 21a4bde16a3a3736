package auth

import (
	"context"

	"github.com/goliatone/go-router"
)

var adminCtxKey = &contextKey{"admin"}
var claimsCtxKey = &contextKey{"claims"}
var identityCtxKey = &contextKey{"identity"}

type contextKey struct {
	name string
}

// RequestIdentity is the per request principal resolved by the token gate.
// It lives only for the duration of the request that carried the token.
type RequestIdentity struct {
	AdminID string
}

// WithContext sets the Admin in the given context
func WithContext(r context.Context, admin *Admin) context.Context {
	return context.WithValue(r, adminCtxKey, admin)
}

// FromContext finds the admin from the context.
func FromContext(ctx context.Context) (*Admin, bool) {
	raw, ok := ctx.Value(adminCtxKey).(*Admin)
	return raw, ok
}

// WithClaimsContext sets the AuthClaims in the given context
func WithClaimsContext(r context.Context, claims AuthClaims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the AuthClaims from the standard context
func GetClaims(ctx context.Context) (AuthClaims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(AuthClaims)
	return raw, ok
}

// WithIdentityContext stores the resolved RequestIdentity.
func WithIdentityContext(r context.Context, identity RequestIdentity) context.Context {
	return context.WithValue(r, identityCtxKey, identity)
}

// IdentityFromContext returns the RequestIdentity attached by the token
// gate, if the request passed through it.
func IdentityFromContext(ctx context.Context) (RequestIdentity, bool) {
	raw, ok := ctx.Value(identityCtxKey).(RequestIdentity)
	return raw, ok
}

// GetRouterClaims extracts the AuthClaims from the router context
func GetRouterClaims(ctx router.Context, key string) (AuthClaims, bool) {
	if key == "" {
		key = "admin" // Default key used by JWT middleware
	}
	raw := ctx.Locals(key)
	if raw == nil {
		return nil, false
	}
	claims, ok := raw.(AuthClaims)
	return claims, ok
}
