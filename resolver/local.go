package resolver

import (
	"github.com/safedep/dry/log"

	"github.com/pacwrap/pacwrap/alpm"
)

// LocalResult is the local (removal) resolver's output: the set of
// package names to remove, in resolution order.
type LocalResult struct {
	Packages []alpm.Package
}

// LocalResolver performs the bounded removal enumeration described in
// spec.md §4.7, honouring recursive/cascade/explicit flags.
type LocalResolver struct {
	handle alpm.Handle

	ignored   map[string]bool
	enumerate bool
	cascade   bool
	// explicit is carried for parity with original_source's
	// TransactionType::Remove(enumerate, cascade, explicit) tuple, but
	// original_source/.../resolver_local.rs never actually reads it
	// (its own comment: "TODO: Implement proper explicit package
	// handling") — carried here unused for the same reason, not a new
	// gap introduced by this port.
	explicit bool

	resolved map[string]bool
	depth    int
	packages []alpm.Package
}

// NewLocalResolver returns a removal resolver bound to handle with the
// three flags spec.md §4.7 names.
func NewLocalResolver(handle alpm.Handle, ignored map[string]bool, enumerateDeps, cascade, explicit bool) *LocalResolver {
	return &LocalResolver{
		handle:    handle,
		ignored:   ignored,
		enumerate: enumerateDeps,
		cascade:   cascade,
		explicit:  explicit,
		resolved:  make(map[string]bool),
	}
}

// Enumerate resolves the set of packages to remove starting from
// packages, failing with *DepthExceededError at MaxDepth.
func (r *LocalResolver) Enumerate(packages []string) (LocalResult, error) {
	var synchronize []string

	for _, name := range packages {
		if r.resolved[name] || r.ignored[name] {
			continue
		}

		pkg, ok := r.handle.GetLocalPackage(name)
		if !ok {
			continue
		}

		if r.depth > 0 {
			if !r.cascade && pkg.Reason == alpm.ReasonExplicit {
				continue
			}

			requiredBy := r.handle.RequiredBy(pkg.Name)
			stillNeeded := false
			for _, dependent := range requiredBy {
				if !r.resolved[dependent] {
					stillNeeded = true
					break
				}
			}
			if stillNeeded {
				continue
			}
		}

		r.packages = append(r.packages, pkg)
		r.resolved[pkg.Name] = true

		if !r.enumerate {
			continue
		}

		synchronize = append(synchronize, pkg.Dependencies...)

		if !r.cascade {
			continue
		}

		for _, local := range r.handle.LocalPackages() {
			for _, dep := range local.Dependencies {
				if r.resolved[dep] {
					synchronize = append(synchronize, local.Name)
					break
				}
			}
		}
	}

	if len(synchronize) == 0 || !r.enumerate {
		return LocalResult{Packages: r.packages}, nil
	}

	if r.depth == MaxDepth {
		return LocalResult{}, &DepthExceededError{Depth: r.depth}
	}
	r.depth++

	log.Debugf("local resolver: depth %d, %d candidates queued", r.depth, len(synchronize))
	return r.Enumerate(synchronize)
}
