package auth_test

import (
	"context"
	"testing"

	auth "github.com/goliatone/go-admin-auth"
	"github.com/stretchr/testify/assert"
)

func TestClaimsDecoratorFunc(t *testing.T) {
	t.Run("nil func is a no-op", func(t *testing.T) {
		var fn auth.ClaimsDecoratorFunc
		assert.NoError(t, fn.Decorate(context.Background(), MockIdentity{IDVal: "a"}, &auth.JWTClaims{}))
	})

	t.Run("delegates to the wrapped func", func(t *testing.T) {
		called := false
		fn := auth.ClaimsDecoratorFunc(func(ctx context.Context, identity auth.Identity, claims *auth.JWTClaims) error {
			called = true
			return nil
		})

		assert.NoError(t, fn.Decorate(context.Background(), MockIdentity{IDVal: "a"}, &auth.JWTClaims{}))
		assert.True(t, called)
	})
}
