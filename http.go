package auth

import (
	"github.com/goliatone/go-admin-auth/middleware/jwtware"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

type Middleware interface {
	ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc
}

// RouteAuthenticator gates routes on a bearer token and adapts the
// Authenticator to HTTP handlers.
type RouteAuthenticator struct {
	auth             Authenticator
	cfg              Config
	Logger           Logger
	AuthErrorHandler func(c router.Context, err error) error
	ErrorHandler     func(c router.Context, err error) error
	// TokenValidator overrides gate-side validation when set, e.g. a
	// MultiTokenValidator accepting the previous signing key during
	// rotation.
	TokenValidator TokenValidator

	validationListeners []ValidationListener
}

func NewHTTPAuthenticator(auther Authenticator, cfg Config) (*RouteAuthenticator, error) {
	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler
	a.AuthErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

// WithValidationListeners registers hooks that observe every successful
// token validation at the gate, e.g. for audit logging.
func (a *RouteAuthenticator) WithValidationListeners(listeners ...ValidationListener) *RouteAuthenticator {
	a.validationListeners = append(a.validationListeners, listeners...)
	return a
}

// ProtectedRoute returns the token gate. It must run before any handler
// that reads or mutates an Admin. Claims and the resolved RequestIdentity
// are propagated to the request context for downstream handlers.
func (a *RouteAuthenticator) ProtectedRoute(cfg Config, errorHandler func(router.Context, error) error) router.MiddlewareFunc {
	return func(hf router.HandlerFunc) router.HandlerFunc {
		jcfg := jwtware.Config{
			ErrorHandler: errorHandler,
			SigningKey: jwtware.SigningKey{
				Key:    []byte(cfg.GetSigningKey()),
				JWTAlg: cfg.GetSigningMethod(),
			},
			AuthScheme:      cfg.GetAuthScheme(),
			ContextKey:      cfg.GetContextKey(),
			TokenLookup:     cfg.GetTokenLookup(),
			ContextEnricher: ContextEnricherAdapter,
		}

		jcfg.TokenValidator = tokenValidatorAdapter{a.gateValidator(cfg)}

		RegisterValidationListeners(&jcfg, a.validationListeners...)

		return jwtware.New(jcfg)(hf)
	}
}

// gateValidator picks the validator the token gate runs: an explicit
// override first, the authenticator's own service second, a config-built
// service last.
func (a *RouteAuthenticator) gateValidator(cfg Config) TokenValidator {
	if a.TokenValidator != nil {
		return a.TokenValidator
	}

	if svc, ok := a.auth.(interface{ TokenService() TokenService }); ok {
		return svc.TokenService()
	}

	return NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		a.Logger,
	)
}

// tokenValidatorAdapter bridges the package AuthClaims to the jwtware
// mirror interface.
type tokenValidatorAdapter struct {
	v TokenValidator
}

func (t tokenValidatorAdapter) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := t.v.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Login authenticates the payload and returns the minted bearer token.
func (a *RouteAuthenticator) Login(ctx router.Context, payload LoginPayload) (string, error) {
	token, err := a.auth.Login(ctx.Context(), payload.GetIdentifier(), payload.GetPassword())
	if err != nil {
		a.Logger.Error("Login error: %s", err)
		return "", err
	}

	return token, nil
}

// Logout is a no-op server side: tokens are bearer credentials with no
// revocation list, the client simply discards its copy.
func (a *RouteAuthenticator) Logout(ctx router.Context) {}

// MakeClientRouteAuthErrorHandler normalizes gate failures. Missing
// credentials map to unauthorized, every other failure maps to a uniform
// invalid-or-expired rejection.
func (a *RouteAuthenticator) MakeClientRouteAuthErrorHandler(optional bool) func(router.Context, error) error {
	return func(ctx router.Context, err error) error {
		var richErr *errors.Error

		if IsMissingTokenError(err) {
			richErr = ErrNoTokenProvided
		} else if IsTokenExpiredError(err) {
			richErr = ErrTokenExpired
		} else if IsMalformedError(err) {
			richErr = ErrTokenMalformed
		} else {
			richErr = errors.Wrap(err, errors.CategoryAuth, "Invalid authentication token").
				WithCode(errors.CodeForbidden)
		}

		if optional {
			a.Logger.Info("Optional auth failed, proceeding", "error", richErr.Message)
			return ctx.Next()
		}

		return a.AuthErrorHandler(ctx, richErr)
	}
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryAuth, "An unexpected authentication error").
			WithCode(errors.CodeUnauthorized)
	}

	a.Logger.Info(
		"Authentication error",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	// no credential at all is unauthorized; a credential that failed
	// validation is forbidden
	status := router.StatusForbidden
	if richErr.Code == errors.CodeUnauthorized || IsMissingTokenError(err) {
		status = router.StatusUnauthorized
	}

	return c.JSON(status, router.ViewContext{
		"error": richErr.Message,
	})
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	a.Logger.Info(
		"Middleware error handler",
		"error", richErr.Message,
		"category", richErr.Category,
		"details", print.MaybePrettyJSON(richErr.Metadata),
	)

	switch richErr.Category {
	case errors.CategoryAuth, errors.CategoryAuthz:
		return a.AuthErrorHandler(c, richErr)
	default:
		return c.JSON(richErr.Code, router.ViewContext{
			"error": richErr.Message,
		})
	}
}

var _ HTTPAuthenticator = (*RouteAuthenticator)(nil)
