package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-admin-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newAuther(provider auth.IdentityProvider) *auth.Auther {
	cfg := MockConfig{
		SigningKey: "test-signing-key",
		Issuer:     "test-issuer",
		Audience:   []string{"app:admin"},
	}
	return auth.NewAuthenticator(provider, cfg).WithLogger(testLogger{})
}

func TestLoginMintsToken(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New().String()

	provider := &MockIdentityProvider{}
	provider.On("VerifyIdentity", mock.Anything, "ada@example.com", "password123").
		Return(MockIdentity{IDVal: adminID, EmailVal: "ada@example.com"}, nil).Once()

	auther := newAuther(provider)

	token, err := auther.Login(ctx, "ada@example.com", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := auther.TokenService().Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, adminID, claims.AdminID())

	provider.AssertExpectations(t)
}

func TestLoginPropagatesProviderError(t *testing.T) {
	ctx := context.Background()

	provider := &MockIdentityProvider{}
	provider.On("VerifyIdentity", mock.Anything, "ada@example.com", "wrong").
		Return(nil, auth.ErrMismatchedHashAndPassword).Once()

	auther := newAuther(provider)

	token, err := auther.Login(ctx, "ada@example.com", "wrong")
	assert.Empty(t, token)
	assert.ErrorIs(t, err, auth.ErrMismatchedHashAndPassword)

	provider.AssertExpectations(t)
}

func TestLoginRejectsZeroIdentity(t *testing.T) {
	ctx := context.Background()

	provider := &MockIdentityProvider{}
	provider.On("VerifyIdentity", mock.Anything, "ada@example.com", "password123").
		Return(MockIdentity{}, nil).Once()

	auther := newAuther(provider)

	_, err := auther.Login(ctx, "ada@example.com", "password123")
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
}

func TestImpersonate(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New().String()

	provider := &MockIdentityProvider{}
	provider.On("FindIdentityByIdentifier", mock.Anything, "ada@example.com").
		Return(MockIdentity{IDVal: adminID}, nil).Once()

	auther := newAuther(provider)

	token, err := auther.Impersonate(ctx, "ada@example.com")
	assert.NoError(t, err)

	claims, err := auther.TokenService().Validate(token)
	assert.NoError(t, err)
	assert.Equal(t, adminID, claims.AdminID())
}

func TestImpersonateUnknownIdentifier(t *testing.T) {
	ctx := context.Background()

	provider := &MockIdentityProvider{}
	provider.On("FindIdentityByIdentifier", mock.Anything, "ghost@example.com").
		Return(nil, auth.ErrIdentityNotFound).Once()

	auther := newAuther(provider)

	_, err := auther.Impersonate(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, auth.ErrIdentityNotFound)
}

func TestIdentityFromSession(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New().String()

	provider := &MockIdentityProvider{}
	provider.On("FindIdentityByIdentifier", mock.Anything, adminID).
		Return(MockIdentity{IDVal: adminID}, nil).Once()

	auther := newAuther(provider)

	identity, err := auther.IdentityFromSession(ctx, &auth.SessionObject{AdminID: adminID})
	assert.NoError(t, err)
	assert.Equal(t, adminID, identity.ID())
}
