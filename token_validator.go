package auth

// TokenValidator turns a raw bearer token into admin claims. The route gate
// and SessionFromToken accept any implementation, so a deployment can swap
// in its own verification without touching the signing side. TokenService
// satisfies it directly.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface. A nil func rejects every
// token rather than panicking.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrUnableToDecodeSession
	}
	return f(tokenString)
}

// MultiTokenValidator tries validators in order until one accepts the token.
// Built for signing key rotation: list the current key's validator first and
// the retiring key's after it, and tokens minted under either keep working.
// A malformed result means "try next"; any other failure, such as an expired
// token, is final and short-circuits.
type MultiTokenValidator struct {
	validators []TokenValidator
}

// NewMultiTokenValidator drops nil entries and returns the composite.
func NewMultiTokenValidator(validators ...TokenValidator) *MultiTokenValidator {
	filtered := make([]TokenValidator, 0, len(validators))
	for _, v := range validators {
		if v != nil {
			filtered = append(filtered, v)
		}
	}
	return &MultiTokenValidator{validators: filtered}
}

// Validate satisfies the TokenValidator interface. With no validators
// configured it rejects everything as malformed.
func (m *MultiTokenValidator) Validate(tokenString string) (AuthClaims, error) {
	var lastErr error
	for _, v := range m.validators {
		claims, err := v.Validate(tokenString)
		if err == nil {
			return claims, nil
		}
		if IsMalformedError(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrTokenMalformed
}
