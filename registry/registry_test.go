package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacwrap/pacwrap/container"
)

func testLocations(t *testing.T) container.Locations {
	t.Helper()
	dir := t.TempDir()
	return container.Locations{
		DataDir:   filepath.Join(dir, "data"),
		ConfigDir: filepath.Join(dir, "config"),
		CacheDir:  filepath.Join(dir, "cache"),
	}
}

func handle(loc container.Locations, key string, ctype container.Type, deps []string) *container.Handle {
	inst := container.NewInstance(ctype, deps, nil)
	vars := container.NewVariables(loc, key)
	return container.NewHandle(key, inst, vars)
}

func TestRegistryTypedOrderingAndSymbolicExclusion(t *testing.T) {
	loc := testLocations(t)
	reg := New(loc)

	require.NoError(t, reg.Add("base", handle(loc, "base", container.TypeBase, nil)))
	require.NoError(t, reg.Add("common", handle(loc, "common", container.TypeSlice, []string{"base"})))
	require.NoError(t, reg.Add("app", handle(loc, "app", container.TypeAggregate, []string{"base", "common"})))
	require.NoError(t, reg.Add("ptr", handle(loc, "ptr", container.TypeSymbolic, nil)))

	assert.Equal(t, []string{"base", "common", "app", "ptr"}, reg.Registered())
	assert.Equal(t, []string{"base"}, reg.RegisteredBase())
	assert.Equal(t, []string{"common"}, reg.RegisteredSlice())
	assert.Equal(t, []string{"app"}, reg.RegisteredAggregate())
}

func TestRegistryGetMissingFails(t *testing.T) {
	reg := New(testLocations(t))
	_, err := reg.Get("missing")
	require.Error(t, err)
}

func TestRegistryGetOptionNeverFails(t *testing.T) {
	reg := New(testLocations(t))
	assert.Nil(t, reg.GetOption("missing"))
}

func TestRegistryAddDuplicateFails(t *testing.T) {
	loc := testLocations(t)
	reg := New(loc)
	require.NoError(t, reg.Add("base", handle(loc, "base", container.TypeBase, nil)))
	err := reg.Add("base", handle(loc, "base", container.TypeBase, nil))
	require.Error(t, err)
}

func TestRegistryFilterPreservesOrderAndExcludes(t *testing.T) {
	loc := testLocations(t)
	reg := New(loc)
	require.NoError(t, reg.Add("base", handle(loc, "base", container.TypeBase, nil)))
	require.NoError(t, reg.Add("common", handle(loc, "common", container.TypeSlice, []string{"base"})))
	require.NoError(t, reg.Add("app", handle(loc, "app", container.TypeAggregate, []string{"base", "common"})))

	filtered := reg.Filter([]string{"app", "base", "common"}, []string{"common"})
	require.Len(t, filtered, 2)
	assert.Equal(t, "base", filtered[0].Key)
	assert.Equal(t, "app", filtered[1].Key)
}

func TestObtainBaseHandleReturnsFirstBase(t *testing.T) {
	loc := testLocations(t)
	reg := New(loc)
	require.NoError(t, reg.Add("base", handle(loc, "base", container.TypeBase, nil)))
	h := reg.ObtainBaseHandle()
	require.NotNil(t, h)
	assert.Equal(t, "base", h.Key)
}
