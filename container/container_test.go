package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseWithDependenciesRejected(t *testing.T) {
	inst := NewInstance(TypeBase, []string{"other"}, nil)
	err := inst.Validate()
	require.Error(t, err)
}

func TestValidInstancePasses(t *testing.T) {
	inst := NewInstance(TypeSlice, []string{"base"}, []string{"firefox"})
	require.NoError(t, inst.Validate())
}

func TestMetaVersionMonotonic(t *testing.T) {
	inst := NewInstance(TypeBase, nil, nil)
	first := inst.MetaVersion
	inst.Set(nil, []string{"vim"})
	assert.GreaterOrEqual(t, inst.MetaVersion, first)
}

func TestUnknownContainerTypeRejected(t *testing.T) {
	inst := Instance{Metadata: Metadata{ContainerType: "Bogus"}}
	require.Error(t, inst.Validate())
}

func TestDefaultRuntimeHasRootAndHome(t *testing.T) {
	rt := NewRuntime()
	assert.True(t, rt.Seccomp)
	require.Len(t, rt.Filesystems, 2)
	assert.Equal(t, FSRoot, rt.Filesystems[0].Kind)
	assert.Equal(t, FSHome, rt.Filesystems[1].Kind)
}

func TestFilesystemCapabilityRegisterBuildsArgs(t *testing.T) {
	vars := Variables{Key: "app", Root: "/data/root/app", Home: "/data/home/app", HomeMount: "/home/app"}
	var args MountArgs
	Filesystem{Kind: FSRoot}.Register(&args, vars)
	Filesystem{Kind: FSHome}.Register(&args, vars)
	require.Len(t, args.Entries, 2)
	assert.Equal(t, "/data/root/app", args.Entries[0].Src)
}

func TestDirFilesystemRequiresPath(t *testing.T) {
	err := Filesystem{Kind: FSDir}.Check(Variables{})
	require.Error(t, err)
}
