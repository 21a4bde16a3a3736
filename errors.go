package auth

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidCredentials covers both unknown identifier and bad password
	TextCodeInvalidCredentials = "invalid_credentials"
	// TextCodeRegistrationConflict means the email is already pending or verified
	TextCodeRegistrationConflict = "registration_conflict"
	// TextCodeCodeInvalidOrExpired is the uniform confirmation rejection
	TextCodeCodeInvalidOrExpired = "code_invalid_or_expired"
	// TextCodeTokenExpired marks expired bearer tokens
	TextCodeTokenExpired = "token_expired"
	// TextCodeTokenMalformed marks unparseable or badly signed tokens
	TextCodeTokenMalformed = "token_malformed"
	// TextCodeTooManyAttempts marks the login cooldown
	TextCodeTooManyAttempts = "too_many_login_attempts"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryNotFound).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeNotFound)

// ErrMismatchedHashAndPassword is the uniform credential rejection. We
// deliberately reuse it for unknown identifiers so callers cannot probe
// which emails exist.
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty password input before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode("empty_password").
	WithCode(errors.CodeBadRequest)

// ErrRegistrationConflict is returned when the email already has a pending
// or verified record.
var ErrRegistrationConflict = errors.New("admin already exists", errors.CategoryConflict).
	WithTextCode(TextCodeRegistrationConflict).
	WithCode(errors.CodeConflict)

// ErrCodeInvalidOrExpired is the uniform rejection for a failed
// confirmation: wrong email, wrong code, and expired code all look alike.
var ErrCodeInvalidOrExpired = errors.New("invalid or expired code", errors.CategoryAuth).
	WithTextCode(TextCodeCodeInvalidOrExpired).
	WithCode(errors.CodeBadRequest)

// ErrTooManyLoginAttempts is returned while the cooldown window is active.
var ErrTooManyLoginAttempts = errors.New("too many login attempts", errors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired marks a token past its expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeForbidden)

// ErrTokenMalformed marks a token we could not parse or verify.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeForbidden)

// ErrImmutableClaimMutation flags a claims decorator that rewrote identity
// or registered claims instead of extension payload.
var ErrImmutableClaimMutation = errors.New("claims decorator mutated immutable claim", errors.CategoryInternal).
	WithTextCode("immutable_claim_mutation").
	WithCode(errors.CodeInternal)

// ErrNoTokenProvided is returned when the request carries no credential
// at all, as opposed to an invalid one.
var ErrNoTokenProvided = errors.New("Access denied. No token provided.", errors.CategoryAuth).
	WithTextCode("no_token").
	WithCode(errors.CodeUnauthorized)

// ErrUnableToFindSession is the error when our reequest has no cookie
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToDecodeSession unable to decode JWT from session cookie
var ErrUnableToDecodeSession = errors.New("unable to decode session", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithCode(errors.CodeUnauthorized)

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data", errors.CategoryBadInput).
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMissingTokenError reports a request that carried no extractable
// credential.
func IsMissingTokenError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
