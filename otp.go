package auth

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/goliatone/go-errors"
)

// CodeTTL is how long a one-time code stays valid.
var CodeTTL = 5 * time.Minute

const (
	otpMin = 100000
	otpMax = 999999
)

// GenerateOneTimeCode returns a 6 digit numeric code in [100000, 999999]
// and its absolute expiry. The code comes from crypto/rand; a predictable
// source here would let an attacker confirm registrations they don't own.
func GenerateOneTimeCode() (string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, errors.CategoryInternal, "failed to generate one-time code")
	}

	code := big.NewInt(0).Add(n, big.NewInt(otpMin))

	return code.String(), time.Now().Add(CodeTTL), nil
}
