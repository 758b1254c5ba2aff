package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacwrap/pacwrap/container"
)

func TestDefaultGlobalHasKeyringPackage(t *testing.T) {
	cfg := DefaultGlobal()
	assert.Contains(t, cfg.KeyringPackages, "archlinux-keyring")
	assert.True(t, cfg.SummaryPreview)
}

func TestContainerConfigRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.yml")

	inst := container.NewInstance(container.TypeSlice, []string{"base"}, []string{"firefox"})
	require.NoError(t, SaveContainer(path, inst))

	loaded, err := LoadContainer(path)
	require.NoError(t, err)
	assert.Equal(t, inst.ContainerType, loaded.ContainerType)
	assert.Equal(t, inst.Dependencies, loaded.Dependencies)
	assert.Equal(t, inst.ExplicitPackages, loaded.ExplicitPackages)
}

func TestLoadContainerRejectsInvalidBase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yml")

	inst := container.NewInstance(container.TypeBase, nil, nil)
	inst.Dependencies = []string{"other"}
	require.NoError(t, SaveContainer(path, inst))

	_, err := LoadContainer(path)
	require.Error(t, err)
}

func TestGlobalContextRoundTrip(t *testing.T) {
	cfg := DefaultGlobal()
	cfg.Verbose = true

	ctx := cfg.Inject(context.Background())
	got, err := FromContext(ctx)
	require.NoError(t, err)
	assert.True(t, got.Verbose)
}
