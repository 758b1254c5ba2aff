package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockLifecycle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pacwrap.lock")
	l := New(path)

	assert.False(t, l.Exists())
	require.NoError(t, l.Lock())
	assert.True(t, l.Exists())
	require.NoError(t, l.Assert())
	require.NoError(t, l.Unlock())
	assert.False(t, l.Exists())
}

func TestLockAlreadyHeldFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pacwrap.lock")
	first := New(path)
	require.NoError(t, first.Lock())
	defer first.Unlock()

	second := New(path)
	err := second.Lock()
	require.Error(t, err)
}

func TestAssertFailsWhenLockFileTamperedWith(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pacwrap.lock")
	l := New(path)
	require.NoError(t, l.Lock())
	defer os.Remove(path)

	require.NoError(t, os.Remove(path))
	require.NoError(t, os.WriteFile(path, []byte(""), 0644))

	err := l.Assert()
	require.Error(t, err)
}

func TestAssertFailsWhenNeverLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pacwrap.lock")
	l := New(path)
	require.Error(t, l.Assert())
}
