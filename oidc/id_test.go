package oidc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	t.Parallel()
	t.Run("no-prefix", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := NewID()
		require.NoError(err)
		assert.NotEmpty(got)
	})
	t.Run("with-prefix", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := NewID(WithPrefix("st"))
		require.NoError(err)
		assert.True(strings.HasPrefix(got, "st_"))
	})
}
