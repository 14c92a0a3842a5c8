package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("without-prefix", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := New("")
		require.NoError(err)
		assert.NotEmpty(got)
		assert.False(strings.Contains(got, "_"))
	})
	t.Run("with-prefix", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		got, err := New("st")
		require.NoError(err)
		assert.True(strings.HasPrefix(got, "st_"))
	})
	t.Run("unique", func(t *testing.T) {
		assert, require := assert.New(t), require.New(t)
		seen := map[string]bool{}
		for i := 0; i < 100; i++ {
			got, err := New("")
			require.NoError(err)
			assert.False(seen[got], "generated a duplicate id")
			seen[got] = true
		}
	})
}
