package auth

import (
	"context"

	"github.com/goliatone/go-errors"
)

// AdminTracker is a store we can use to retrieve admins
type AdminTracker interface {
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	TrackAttemptedLogin(ctx context.Context, admin *Admin) error
	TrackSuccessfulLogin(ctx context.Context, admin *Admin) error
}

// AdminProvider resolves identities against the verified-account store.
// Pending registrations never pass through here, so an unconfirmed email
// cannot log in.
type AdminProvider struct {
	store  AdminTracker
	logger Logger
}

// MaxLoginAttempts is the maximun number of attempts an admin gets
// in a period
var MaxLoginAttempts = 5

// CoolDownPeriod is the period in which we enforce a cool down
var CoolDownPeriod = "24h"

// NewAdminProvider will create a new AdminProvider
func NewAdminProvider(store AdminTracker) *AdminProvider {
	return &AdminProvider{
		store:  store,
		logger: defLogger{},
	}
}

func (p *AdminProvider) WithLogger(l Logger) *AdminProvider {
	if l != nil {
		p.logger = l
	}
	return p
}

// VerifyIdentity will find the admin, compare the password, and return an
// identity. An unknown email and a wrong password are indistinguishable to
// the caller.
func (p *AdminProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	admin, err := p.store.GetByEmail(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve admin during verification")
	}

	if admin.LoginAttemptAt != nil {
		expired, err := IsOutsideThresholdPeriod(*admin.LoginAttemptAt, CoolDownPeriod)
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to calculate login attempt cooldown")
		}

		if expired {
			admin.LoginAttempts = 0
		}
	}

	// if we have too many attempts in the given window, cool off!
	if admin.LoginAttempts > MaxLoginAttempts {
		return nil, ErrTooManyLoginAttempts
	}

	if err := ComparePasswordAndHash(password, admin.PasswordHash); err != nil {
		// We have to increment the login_attempts counter and login_attempt_at
		if err2 := p.store.TrackAttemptedLogin(ctx, admin); err2 != nil {
			return nil, errors.Wrap(err2, errors.CategoryInternal, "failed to track login attempt")
		}

		return nil, ErrMismatchedHashAndPassword
	}

	// reset the login_attempts counter and login_attempt_at
	if err := p.store.TrackSuccessfulLogin(ctx, admin); err != nil {
		p.logger.Error("failed to track successful login", "error", err)
	}

	return NewIdentityFromAdmin(admin), nil
}

// FindIdentityByIdentifier resolves an identity without a password check.
func (p *AdminProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	admin, err := p.store.GetByEmail(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	return NewIdentityFromAdmin(admin), nil
}

var _ IdentityProvider = (*AdminProvider)(nil)
