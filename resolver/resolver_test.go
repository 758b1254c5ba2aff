package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pacwrap/pacwrap/alpm"
)

func TestSyncResolverPullsTransitiveDependencies(t *testing.T) {
	h := alpm.NewFakeHandle()
	h.Sync["firefox"] = alpm.Package{Name: "firefox", Version: "1", Dependencies: []string{"gtk3"}}
	h.Sync["gtk3"] = alpm.Package{Name: "gtk3", Version: "1"}

	r := NewSyncResolver(h, map[string]bool{})
	result, err := r.Enumerate([]string{"firefox"})
	require.NoError(t, err)

	names := packageNames(result.Packages)
	assert.ElementsMatch(t, []string{"firefox", "gtk3"}, names)
	assert.ElementsMatch(t, []string{"gtk3"}, result.AddedAsDependency)
}

func TestSyncResolverSkipsLocallySatisfiedDependency(t *testing.T) {
	h := alpm.NewFakeHandle()
	h.Sync["firefox"] = alpm.Package{Name: "firefox", Version: "1", Dependencies: []string{"gtk3"}}
	h.Sync["gtk3"] = alpm.Package{Name: "gtk3", Version: "1"}
	h.Local["gtk3"] = alpm.Package{Name: "gtk3", Version: "1"}

	r := NewSyncResolver(h, map[string]bool{})
	result, err := r.Enumerate([]string{"firefox"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"firefox"}, packageNames(result.Packages))
	assert.Nil(t, result.AddedAsDependency)
}

func TestSyncResolverRecursionDepthExceeded(t *testing.T) {
	h := alpm.NewFakeHandle()
	// build a chain of 60 packages each depending on the next, none locally satisfied.
	for i := 0; i < 60; i++ {
		name := packageChainName(i)
		next := packageChainName(i + 1)
		h.Sync[name] = alpm.Package{Name: name, Version: "1", Dependencies: []string{next}}
	}
	h.Sync[packageChainName(60)] = alpm.Package{Name: packageChainName(60), Version: "1"}

	r := NewSyncResolver(h, map[string]bool{})
	_, err := r.Enumerate([]string{packageChainName(0)})
	require.Error(t, err)
	var depthErr *DepthExceededError
	assert.ErrorAs(t, err, &depthErr)
	assert.Equal(t, MaxDepth, depthErr.Depth)
}

func TestLocalResolverCascadeRemovesDependents(t *testing.T) {
	h := alpm.NewFakeHandle()
	h.Local["firefox"] = alpm.Package{Name: "firefox", Version: "1", Reason: alpm.ReasonExplicit, Dependencies: []string{"gtk3"}}
	h.Local["gtk3"] = alpm.Package{Name: "gtk3", Version: "1", Reason: alpm.ReasonDepend}

	r := NewLocalResolver(h, map[string]bool{}, true, true, true)
	result, err := r.Enumerate([]string{"firefox"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"firefox", "gtk3"}, packageNames(result.Packages))
}

func TestLocalResolverKeepsDepthZeroExplicitWithoutCascade(t *testing.T) {
	h := alpm.NewFakeHandle()
	h.Local["firefox"] = alpm.Package{Name: "firefox", Version: "1", Reason: alpm.ReasonExplicit, Dependencies: []string{"gtk3"}}
	h.Local["gtk3"] = alpm.Package{Name: "gtk3", Version: "1", Reason: alpm.ReasonExplicit}

	r := NewLocalResolver(h, map[string]bool{}, true, false, true)
	result, err := r.Enumerate([]string{"firefox", "gtk3"})
	require.NoError(t, err)
	// depth 0 entries are never skipped by the explicit-reason guard;
	// only recursed-into candidates are.
	assert.ElementsMatch(t, []string{"firefox", "gtk3"}, packageNames(result.Packages))
}

func packageNames(pkgs []alpm.Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name
	}
	return out
}

func packageChainName(i int) string {
	return "pkg" + string(rune('a'+i%26)) + string(rune('0'+i/26))
}
