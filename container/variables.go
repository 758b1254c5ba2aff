package container

import (
	"os"
	"path/filepath"
)

// Variables holds the derived, per-container filesystem paths
// described in spec.md §3 "Container variables". Unlike
// original_source's InsVars, which leaks these strings to 'static so
// they can be borrowed out of the registry (spec.md §9's "leaked
// string interning" design note explicitly calls out not to replicate
// this), each Handle owns its own Variables value.
type Variables struct {
	Key          string
	Root         string // container's filesystem root
	Home         string // per-container home directory on the host
	HomeMount    string // in-sandbox path home is bound to
	ConfigPath   string // persisted metadata location
	PacmanCache  string // shared across all containers
	PacmanGnupg  string // shared across all containers
}

// Locations is the resolved set of top-level directories (data/config/
// cache) that container Variables are derived from — spec.md §6's
// on-disk layout with PACWRAP_{DATA,CONFIG,CACHE}_DIR overrides.
type Locations struct {
	DataDir   string
	ConfigDir string
	CacheDir  string
}

// DefaultLocations resolves Locations from the environment, falling
// back to XDG-style defaults under the user's home directory.
func DefaultLocations() (Locations, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Locations{}, err
	}

	data := envOr("PACWRAP_DATA_DIR", filepath.Join(home, ".local", "share", "pacwrap"))
	cfg := envOr("PACWRAP_CONFIG_DIR", filepath.Join(home, ".config", "pacwrap"))
	cache := envOr("PACWRAP_CACHE_DIR", filepath.Join(home, ".cache", "pacwrap"))

	return Locations{DataDir: data, ConfigDir: cfg, CacheDir: cache}, nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

// NewVariables derives the per-container Variables for key under loc,
// honouring PACWRAP_HOME/PACWRAP_ROOT runtime overrides the same way
// original_source's InsVars does.
func NewVariables(loc Locations, key string) Variables {
	root := envOr("PACWRAP_ROOT", filepath.Join(loc.DataDir, "root", key))
	home := envOr("PACWRAP_HOME", filepath.Join(loc.DataDir, "home", key))

	return Variables{
		Key:         key,
		Root:        root,
		Home:        home,
		HomeMount:   filepath.Join("/home", key),
		ConfigPath:  filepath.Join(loc.ConfigDir, "container", key+".yml"),
		PacmanCache: filepath.Join(loc.CacheDir, "pkg"),
		PacmanGnupg: filepath.Join(loc.DataDir, "pacman", "gnupg"),
	}
}

// StatePath is the path of the filesystem-state snapshot for key,
// spec.md §6's "<data>/state/<key>.dat".
func (l Locations) StatePath(key string) string {
	return filepath.Join(l.DataDir, "state", key+".dat")
}

// RootsDir is the directory populate() scans for candidate keys.
func (l Locations) RootsDir() string { return filepath.Join(l.DataDir, "root") }

// ConfigsDir is the directory populate_config() scans instead.
func (l Locations) ConfigsDir() string { return filepath.Join(l.ConfigDir, "container") }
