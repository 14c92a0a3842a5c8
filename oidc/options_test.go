package oidc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOpts(t *testing.T) {
	t.Parallel()
	t.Run("applies-in-order", func(t *testing.T) {
		assert := assert.New(t)
		opts := getConfigOpts(WithScopes("openid", "email"), WithScopes("openid", "profile"))
		assert.Equal([]string{"openid", "profile"}, opts.withScopes)
	})
	t.Run("nil-options-are-skipped", func(t *testing.T) {
		assert := assert.New(t)
		opts := getConfigOpts(nil, WithScopes("openid", "email"), nil)
		assert.Equal([]string{"openid", "email"}, opts.withScopes)
	})
	t.Run("wrong-options-type-is-ignored", func(t *testing.T) {
		assert := assert.New(t)
		opts := getTokenOpts(WithScopes("openid"))
		assert.Equal(tokenDefaults(), opts)
	})
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()
	assert := assert.New(t)
	opts := getConfigOpts()
	assert.Equal([]string{"openid"}, opts.withScopes)
	assert.Equal([]Alg{RS256}, opts.withSupportedSigningAlgs)
	assert.Equal(DefaultReservedClaims(), opts.withReservedClaims)
	assert.Equal(DefaultExchangeTimeout, opts.withExchangeTimeout)
}
