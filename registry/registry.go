// Package registry implements pacwrap's container registry (spec.md
// §4.1): an ordered mapping from container key to handle, plus the
// four type-ordered subsets transaction scheduling depends on.
package registry

import (
	"fmt"
	"os"
	"sync"

	"github.com/pacwrap/pacwrap/config"
	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/usefulerror"
)

// Registry is the RWMutex-guarded container cache, grounded on the
// teacher's sandbox/registry.go RWMutex-map pattern, generalized from
// profile lookups to container handles.
type Registry struct {
	mu sync.RWMutex

	handles map[string]*container.Handle

	// Insertion-ordered subsets; callers depend on registered holding
	// overall insertion order and the typed subsets holding
	// Base < Slice < Aggregate relative order (spec.md §4.1).
	registered []string
	base       []string
	slice      []string
	aggregate  []string

	loc container.Locations
}

// New returns an empty Registry rooted at loc.
func New(loc container.Locations) *Registry {
	return &Registry{handles: make(map[string]*container.Handle), loc: loc}
}

// Add registers handle under key, failing with ErrCodeAlreadyExists if
// the key is already registered.
func (r *Registry) Add(key string, handle *container.Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(key, handle)
}

func (r *Registry) register(key string, handle *container.Handle) error {
	if _, ok := r.handles[key]; ok {
		return usefulerror.Useful().
			WithCode(usefulerror.ErrCodeAlreadyExists).
			WithHumanError(fmt.Sprintf("a container named %q is already registered", key)).
			Msg("already exists: " + key)
	}

	// A symbolic container is recorded in the registry but excluded
	// from the four typed subsets (spec.md §3).
	switch handle.Type() {
	case container.TypeBase:
		r.base = append(r.base, key)
	case container.TypeSlice:
		r.slice = append(r.slice, key)
	case container.TypeAggregate:
		r.aggregate = append(r.aggregate, key)
	case container.TypeSymbolic:
		// excluded from typed subsets, still recorded below.
	}

	r.handles[key] = handle
	r.registered = append(r.registered, key)
	return nil
}

// Get fails with ErrCodeInstanceNotFound when key is absent.
func (r *Registry) Get(key string) (*container.Handle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handles[key]
	if !ok {
		return nil, usefulerror.Useful().
			WithCode(usefulerror.ErrCodeInstanceNotFound).
			WithHumanError(fmt.Sprintf("no container named %q is registered", key)).
			Msg("instance not found: " + key)
	}
	return h, nil
}

// GetOption never fails: it returns nil when key is absent.
func (r *Registry) GetOption(key string) *container.Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.handles[key]
}

// Filter returns the subset of the registry, in registration order,
// matching targets minus exclude.
func (r *Registry) Filter(targets, exclude []string) []*container.Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	wanted := toSet(targets)
	excluded := toSet(exclude)

	var out []*container.Handle
	for _, key := range r.registered {
		if !wanted[key] || excluded[key] {
			continue
		}
		out = append(out, r.handles[key])
	}
	return out
}

// Registered returns every recorded key (including Symbolic ones), in
// registration order.
func (r *Registry) Registered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.registered...)
}

// RegisteredBase/Slice/Aggregate return the typed subsets in their
// relative insertion order.
func (r *Registry) RegisteredBase() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.base...)
}

func (r *Registry) RegisteredSlice() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.slice...)
}

func (r *Registry) RegisteredAggregate() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.aggregate...)
}

// ObtainBaseHandle returns the first registered Base container, or nil.
func (r *Registry) ObtainBaseHandle() *container.Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.base) == 0 {
		return nil
	}
	return r.handles[r.base[0]]
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}

// Populate enumerates the roots directory and loads each candidate
// key's config-derived handle (spec.md §4.1 populate()). Errors on
// individual entries are reported as warnings; aggregation continues.
func Populate(loc container.Locations) (*Registry, []error) {
	entries, err := os.ReadDir(loc.RootsDir())
	if err != nil {
		return New(loc), []error{fmt.Errorf("failed to read roots directory %s: %w", loc.RootsDir(), err)}
	}

	var keys []string
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.IsDir() || info.Mode()&os.ModeSymlink != 0 {
			keys = append(keys, e.Name())
		}
	}
	return PopulateFrom(loc, keys)
}

// PopulateConfig enumerates the configs directory instead (used by
// compose --from-config).
func PopulateConfig(loc container.Locations) (*Registry, []error) {
	entries, err := os.ReadDir(loc.ConfigsDir())
	if err != nil {
		return New(loc), []error{fmt.Errorf("failed to read configs directory %s: %w", loc.ConfigsDir(), err)}
	}

	var keys []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if ext := len(name) - len(".yml"); ext > 0 && name[ext:] == ".yml" {
			keys = append(keys, name[:ext])
		}
	}
	return PopulateFrom(loc, keys)
}

// PopulateFrom builds a Registry from an explicit key list, loading
// each container's config and warning (not failing) on individual
// load errors.
func PopulateFrom(loc container.Locations, keys []string) (*Registry, []error) {
	reg := New(loc)
	var warnings []error

	for _, key := range keys {
		vars := container.NewVariables(loc, key)
		inst, err := config.LoadContainer(vars.ConfigPath)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("container %q: %w", key, err))
			continue
		}

		handle := container.NewHandle(key, inst, vars)
		if err := reg.Add(key, handle); err != nil {
			warnings = append(warnings, err)
		}
	}
	return reg, warnings
}
