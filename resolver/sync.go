// Package resolver implements pacwrap's bounded-depth dependency
// resolvers: sync-DB transitive enumeration (spec.md §4.6) and
// removal enumeration (spec.md §4.7). Grounded on
// original_source/pacwrap-core/src/sync/resolver.rs and
// resolver_local.rs.
package resolver

import (
	"fmt"

	"github.com/safedep/dry/log"

	"github.com/pacwrap/pacwrap/alpm"
)

// MaxDepth is the bounded recursion depth both resolvers share
// (spec.md §4.6/§4.7, spec.md §8 property 5).
const MaxDepth = 50

// DepthExceededError reports that recursion hit MaxDepth.
type DepthExceededError struct{ Depth int }

func (e *DepthExceededError) Error() string {
	return fmt.Sprintf("recursion depth exceeded maximum of %d", e.Depth)
}

// SyncResult is the sync resolver's output: the set of package names
// that were added purely as dependencies (nil if none), and the full
// resolved package list in discovery order.
type SyncResult struct {
	AddedAsDependency []string
	Packages          []alpm.Package
}

// SyncResolver performs the bounded transitive enumeration of
// sync-database packages described in spec.md §4.6.
type SyncResolver struct {
	handle   alpm.Handle
	ignored  map[string]bool
	resolved map[string]bool
	depth    int
	keys     []string
	packages []alpm.Package
}

// NewSyncResolver returns a resolver bound to handle, skipping any
// name present in ignored.
func NewSyncResolver(handle alpm.Handle, ignored map[string]bool) *SyncResolver {
	return &SyncResolver{handle: handle, ignored: ignored, resolved: make(map[string]bool)}
}

// Enumerate resolves packages and their transitive dependencies not
// already satisfied locally, failing with *DepthExceededError if
// recursion reaches MaxDepth (spec.md §8 property 5).
func (r *SyncResolver) Enumerate(packages []string) (SyncResult, error) {
	var synchronize []string

	for _, name := range packages {
		if r.resolved[name] || r.ignored[name] {
			continue
		}

		pkg, ok := r.handle.GetPackage(name)
		if !ok {
			continue
		}

		r.packages = append(r.packages, pkg)
		r.resolved[pkg.Name] = true

		for _, dep := range pkg.Dependencies {
			if _, satisfied := r.handle.GetLocalPackage(dep); satisfied {
				continue
			}
			if depPkg, ok := r.handle.GetPackage(dep); ok {
				synchronize = append(synchronize, depPkg.Name)
			}
		}

		// Recursing deeper than the user's initial targets: these
		// names are recorded as "added as dependency" output.
		if r.depth > 0 {
			r.keys = append(r.keys, pkg.Name)
		}
	}

	if len(synchronize) == 0 {
		var keys []string
		if len(r.keys) > 0 {
			keys = r.keys
		}
		return SyncResult{AddedAsDependency: keys, Packages: r.packages}, nil
	}

	if r.depth == MaxDepth {
		return SyncResult{}, &DepthExceededError{Depth: r.depth}
	}
	r.depth++

	log.Debugf("sync resolver: depth %d, %d candidates to synchronize", r.depth, len(synchronize))
	return r.Enumerate(synchronize)
}
