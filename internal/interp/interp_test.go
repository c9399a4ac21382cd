package interp

import (
	"testing"

	bterrors "github.com/adamcooper1386/bintest/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	env := map[string]string{"NAME": "world", "SANDBOX": "/tmp/sbx"}

	t.Run("expands a known variable", func(t *testing.T) {
		got, err := Interpolate("hello ${NAME}", env, "test")
		require.NoError(t, err)
		assert.Equal(t, "hello world", got)
	})

	t.Run("expands multiple variables", func(t *testing.T) {
		got, err := Interpolate("${SANDBOX}/${NAME}.txt", env, "test")
		require.NoError(t, err)
		assert.Equal(t, "/tmp/sbx/world.txt", got)
	})

	t.Run("fails on unknown variable", func(t *testing.T) {
		_, err := Interpolate("hello ${MISSING}", env, "step \"x\" cmd")
		require.Error(t, err)
		var ierr *bterrors.InterpolationError
		require.ErrorAs(t, err, &ierr)
		assert.Equal(t, "MISSING", ierr.Name)
		assert.Equal(t, "step \"x\" cmd", ierr.Where)
	})

	t.Run("escapes a literal dollar-brace", func(t *testing.T) {
		got, err := Interpolate("price is $${NAME}", env, "test")
		require.NoError(t, err)
		assert.Equal(t, "price is ${NAME}", got)
	})

	t.Run("leaves plain text untouched", func(t *testing.T) {
		got, err := Interpolate("no vars here", env, "test")
		require.NoError(t, err)
		assert.Equal(t, "no vars here", got)
	})
}

func TestInterpolateAll(t *testing.T) {
	env := map[string]string{"A": "1", "B": "2"}

	t.Run("expands every entry", func(t *testing.T) {
		got, err := InterpolateAll([]string{"${A}", "${B}", "literal"}, env, "args")
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2", "literal"}, got)
	})

	t.Run("stops at the first failure", func(t *testing.T) {
		_, err := InterpolateAll([]string{"${A}", "${MISSING}"}, env, "args")
		require.Error(t, err)
	})
}
