package auth

import (
	"context"

	"github.com/goliatone/go-admin-auth/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// ContextEnricherAdapter stores verified claims and the resolved
// RequestIdentity in the request context for downstream handlers.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	if authClaims, ok := claims.(AuthClaims); ok {
		c = WithClaimsContext(c, authClaims)
	}

	return WithIdentityContext(c, RequestIdentity{AdminID: claims.AdminID()})
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}
