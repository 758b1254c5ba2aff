package fsstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/registry"
)

func TestSnapshotEncodeDecodeRoundTrip(t *testing.T) {
	snap := NewSnapshot()
	snap.Insert("usr/bin/foo", Entry{Kind: FileTypeHardLink, Source: "/pkg/foo/usr/bin/foo"})
	snap.Insert("usr/lib", Entry{Kind: FileTypeDirectory, Source: "/pkg/foo/usr/lib"})

	data, err := snap.Encode()
	require.NoError(t, err)

	decoded := Decode(data, nil)
	assert.Equal(t, 2, decoded.Len())
	entry, ok := decoded.Get("usr/bin/foo")
	require.True(t, ok)
	assert.Equal(t, FileTypeHardLink, entry.Kind)
}

func TestSnapshotDecodeMagicMismatchWarnsAndBlanks(t *testing.T) {
	data := []byte{0, 0, 0, 0, 1, 0, 0, 0}
	var warned string
	decoded := Decode(data, func(msg string) { warned = msg })
	assert.Equal(t, 0, decoded.Len())
	assert.Contains(t, warned, "magic number mismatch")
}

func TestSnapshotDecodeVersionMismatchStaysSilent(t *testing.T) {
	data := make([]byte, 8)
	data[0], data[1], data[2], data[3] = 0x46, 0x53, 0x57, 0x50 // little-endian SnapshotMagic
	data[4] = 99
	called := false
	decoded := Decode(data, func(string) { called = true })
	assert.Equal(t, 0, decoded.Len())
	assert.False(t, called)
}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "key.dat")

	snap := NewSnapshot()
	snap.Insert("a", Entry{Kind: FileTypeSymLink, Source: "/x/a"})
	require.NoError(t, Save(path, snap))

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Len())
}

func TestLoadMissingFileReturnsEmptySnapshot(t *testing.T) {
	loaded, err := Load(filepath.Join(t.TempDir(), "missing.dat"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestObtainStateSkipsPackageManagerAndLdCache(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "var", "lib", "pacman"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "var", "lib", "pacman", "db"), []byte("x"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "etc"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "etc", "ld.so.cache"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "etc", "hostname"), []byte("x"), 0644))

	state := obtainState(root)
	_, hasHostname := state.Get("etc/hostname")
	_, hasCache := state.Get("etc/ld.so.cache")
	assert.True(t, hasHostname)
	assert.False(t, hasCache)

	found := false
	state.Range(func(rel string, _ Entry) {
		if rel == "var/lib/pacman/db" || rel == "var/lib/pacman" {
			found = true
		}
	})
	assert.False(t, found)
}

func TestLinkerAggregateComposesDependencySnapshots(t *testing.T) {
	loc := container.Locations{DataDir: t.TempDir(), ConfigDir: t.TempDir(), CacheDir: t.TempDir()}
	reg := registry.New(loc)

	baseVars := container.NewVariables(loc, "base")
	require.NoError(t, os.MkdirAll(baseVars.Root, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(baseVars.Root, "marker"), []byte("x"), 0644))
	baseInst := container.NewInstance(container.TypeBase, nil, []string{"coreutils"})
	require.NoError(t, reg.Add("base", container.NewHandle("base", baseInst, baseVars)))

	aggVars := container.NewVariables(loc, "agg")
	require.NoError(t, os.MkdirAll(aggVars.Root, 0755))
	aggInst := container.NewInstance(container.TypeAggregate, []string{"base"}, nil)
	require.NoError(t, reg.Add("agg", container.NewHandle("agg", aggInst, aggVars)))

	linker := NewLinker(reg, loc.StatePath)
	require.NoError(t, linker.Engage(context.Background(), []string{"agg"}))

	linked, err := os.Lstat(filepath.Join(aggVars.Root, "marker"))
	require.NoError(t, err)
	assert.False(t, linked.IsDir())

	_, err = os.Stat(loc.StatePath("base"))
	assert.NoError(t, err)
}

func TestLinkerSymbolicExcluded(t *testing.T) {
	loc := container.Locations{DataDir: t.TempDir(), ConfigDir: t.TempDir(), CacheDir: t.TempDir()}
	reg := registry.New(loc)

	vars := container.NewVariables(loc, "sym")
	inst := container.NewInstance(container.TypeSymbolic, nil, nil)
	require.NoError(t, reg.Add("sym", container.NewHandle("sym", inst, vars)))

	linker := NewLinker(reg, loc.StatePath)
	require.NoError(t, linker.Engage(context.Background(), []string{"sym"}))

	_, err := os.Stat(loc.StatePath("sym"))
	assert.True(t, os.IsNotExist(err))
}
