// Package container implements pacwrap's container data model: the
// Type enumeration, the Runtime capability block, and the derived
// filesystem variables every other package reads a container through.
package container

import (
	"fmt"
	"time"
)

// Type is a container's layering role. See SPEC_FULL.md §0 for the
// mapping onto original_source's InstanceType (BASE/DEP/ROOT/LINK).
type Type string

const (
	TypeBase      Type = "Base"
	TypeSlice     Type = "Slice"
	TypeAggregate Type = "Aggregate"
	TypeSymbolic  Type = "Symbolic"
)

// Valid reports whether t is one of the four known container types.
func (t Type) Valid() bool {
	switch t {
	case TypeBase, TypeSlice, TypeAggregate, TypeSymbolic:
		return true
	}
	return false
}

func (t Type) String() string { return string(t) }

// Metadata is the persisted, mutable part of a container: its type,
// dependency chain, explicitly-installed packages, and the version
// counter touched on every write.
type Metadata struct {
	ContainerType     Type     `yaml:"container_type" json:"container_type"`
	Dependencies      []string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	ExplicitPackages  []string `yaml:"explicit_packages,omitempty" json:"explicit_packages,omitempty"`
	MetaVersion       uint64   `yaml:"meta_version" json:"meta_version"`
}

// NewMetadata builds metadata for a freshly composed container,
// stamping meta_version with the current epoch second.
func NewMetadata(ctype Type, deps, pkgs []string) Metadata {
	return Metadata{
		ContainerType:    ctype,
		Dependencies:     deps,
		ExplicitPackages: pkgs,
		MetaVersion:      uint64(time.Now().Unix()),
	}
}

// Set replaces dependencies/explicit packages and bumps meta_version.
// meta_version is monotonically non-decreasing across successive
// saves (spec.md §8 property 1) because it is always re-stamped with
// the current clock, never decremented.
func (m *Metadata) Set(deps, pkgs []string) {
	m.Dependencies = deps
	m.ExplicitPackages = pkgs
	bumped := uint64(time.Now().Unix())
	if bumped < m.MetaVersion {
		bumped = m.MetaVersion
	}
	m.MetaVersion = bumped
}

// Runtime is the sandbox capability block: boolean toggles plus the
// polymorphic filesystem/permission/dbus capability lists.
type Runtime struct {
	EnableUserns  bool         `yaml:"enable_userns" json:"enable_userns"`
	RetainSession bool         `yaml:"retain_session" json:"retain_session"`
	Seccomp       bool         `yaml:"seccomp" json:"seccomp"`
	AllowForking  bool         `yaml:"allow_forking" json:"allow_forking"`
	Filesystems   []Filesystem `yaml:"filesystems,omitempty" json:"filesystems,omitempty"`
	Permissions   []Permission `yaml:"permissions,omitempty" json:"permissions,omitempty"`
	DBus          []DBus       `yaml:"dbus,omitempty" json:"dbus,omitempty"`
}

// NewRuntime returns the default runtime block: seccomp enabled, Root
// and Home filesystem capabilities, no explicit permissions.
func NewRuntime() Runtime {
	return Runtime{
		Seccomp:     true,
		Filesystems: []Filesystem{{Kind: FSRoot}, {Kind: FSHome}},
		Permissions: []Permission{{Kind: PermNone}},
	}
}

// Instance couples Metadata and Runtime, mirroring the flattened
// serde struct original_source uses for the on-disk YAML document.
type Instance struct {
	Metadata `yaml:",inline"`
	Runtime  `yaml:",inline"`
}

// NewInstance builds a freshly composed container's full config.
func NewInstance(ctype Type, deps, pkgs []string) Instance {
	return Instance{Metadata: NewMetadata(ctype, deps, pkgs), Runtime: NewRuntime()}
}

// Validate enforces spec.md §3's invariant that a Base container has
// no dependencies (spec.md §8 property 2).
func (i Instance) Validate() error {
	if !i.ContainerType.Valid() {
		return fmt.Errorf("unknown container type %q", i.ContainerType)
	}
	if i.ContainerType == TypeBase && len(i.Dependencies) > 0 {
		return fmt.Errorf("base container must not declare dependencies, got %v", i.Dependencies)
	}
	return nil
}

// Handle is a container plus its derived path Variables, the unit the
// rest of the core operates on.
type Handle struct {
	Key      string
	Instance Instance
	Vars     Variables
}

func NewHandle(key string, instance Instance, vars Variables) *Handle {
	return &Handle{Key: key, Instance: instance, Vars: vars}
}

func (h *Handle) Type() Type { return h.Instance.ContainerType }

func (h *Handle) Dependencies() []string { return h.Instance.Dependencies }
