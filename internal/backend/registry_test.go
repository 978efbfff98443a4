package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory(t *testing.T) {
	for _, name := range []string{ReferenceName, LintName} {
		t.Run(name, func(t *testing.T) {
			f, err := Factory(name, Options{})
			require.NoError(t, err)

			a, err := f()
			require.NoError(t, err)
			b, err := f()
			require.NoError(t, err)
			assert.NotNil(t, a)
			if name == ReferenceName {
				assert.NotSame(t, a, b, "each call yields a fresh instance")
			}
		})
	}
}

func TestFactory_DefaultIsReference(t *testing.T) {
	f, err := Factory("", Options{})
	require.NoError(t, err)
	inst, err := f()
	require.NoError(t, err)
	assert.IsType(t, &Reference{}, inst)
}

func TestFactory_Exec(t *testing.T) {
	_, err := Factory(ExecName, Options{})
	assert.Error(t, err)

	opts := Options{Command: "vlog", Args: []string{"-sv"}}
	f, err := Factory(ExecName, opts)
	require.NoError(t, err)
	opts.Args[0] = "-changed"

	inst, err := f()
	require.NoError(t, err)
	e, ok := inst.(*Exec)
	require.True(t, ok)
	assert.Equal(t, "vlog", e.Command)
	assert.Equal(t, []string{"-sv"}, e.Args)
}

func TestFactory_Unknown(t *testing.T) {
	_, err := Factory("verilator++", Options{})
	assert.ErrorIs(t, err, ErrUnknownBackend)
	assert.Contains(t, err.Error(), "reference")
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"reference", "lint", "exec"}, Names())
}
