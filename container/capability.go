package container

import "fmt"

// The filesystem, permission and dbus capability lists are an open
// set of tagged variants dispatched by a mount/permission
// discriminator (spec.md §9). Rather than model them as Go
// interfaces requiring reflection-based unmarshalling, each list
// element carries its own Kind discriminator plus any variant-specific
// arguments; Check/Register below give callers the single capability
// interface the core deals with, without reflection.

// FSKind enumerates the built-in filesystem capability variants.
type FSKind string

const (
	FSRoot    FSKind = "root"
	FSHome    FSKind = "home"
	FSToHome  FSKind = "to-home"
	FSToRoot  FSKind = "to-root"
	FSSys     FSKind = "sys"
	FSDir     FSKind = "dir"
	FSXDGHome FSKind = "xdg-home"
)

// Filesystem is one entry of the `filesystems` capability list.
type Filesystem struct {
	Kind FSKind `yaml:"mount" json:"mount"`
	// Path is the source/target argument for variants that need one
	// (to-home, to-root, sys, dir, xdg-home).
	Path string `yaml:"path,omitempty" json:"path,omitempty"`
}

// Check reports whether the variant's preconditions hold for vars
// (e.g. "dir" requires a non-empty path).
func (f Filesystem) Check(vars Variables) error {
	switch f.Kind {
	case FSRoot, FSHome:
		return nil
	case FSToHome, FSToRoot, FSSys, FSDir, FSXDGHome:
		if f.Path == "" {
			return fmt.Errorf("filesystem capability %q requires a path", f.Kind)
		}
		return nil
	default:
		return fmt.Errorf("unknown filesystem capability %q", f.Kind)
	}
}

// Register appends the variant's resolved mount arguments to args.
// This is a pure translation from capability to argument list — the
// actual bubblewrap command-line construction stays out of core
// (spec.md §1 Non-goals), so Register only produces the abstract
// "mount <kind> <src> <dst>" triples an agentlaunch.Launcher consumes.
func (f Filesystem) Register(args *MountArgs, vars Variables) {
	switch f.Kind {
	case FSRoot:
		args.Add("bind", vars.Root, "/")
	case FSHome:
		args.Add("bind", vars.Home, vars.HomeMount)
	case FSToHome:
		args.Add("bind", f.Path, vars.HomeMount)
	case FSToRoot:
		args.Add("bind", f.Path, "/")
	case FSSys:
		args.Add("bind", f.Path, f.Path)
	case FSDir:
		args.Add("mkdir", "", f.Path)
	case FSXDGHome:
		args.Add("bind", f.Path, vars.HomeMount+"/"+f.Path)
	}
}

// PermKind enumerates the built-in permission capability variants.
type PermKind string

const (
	PermNone       PermKind = "none"
	PermDisplay    PermKind = "display"
	PermEnv        PermKind = "env"
	PermNet        PermKind = "net"
	PermPulseaudio PermKind = "pulseaudio"
	PermPipewire   PermKind = "pipewire"
	PermGPU        PermKind = "gpu"
	PermDev        PermKind = "dev"
)

// Permission is one entry of the `permissions` capability list.
type Permission struct {
	Kind PermKind `yaml:"permission" json:"permission"`
	// Name is the environment-variable name for the "env" variant.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

func (p Permission) Check(vars Variables) error {
	if p.Kind == PermEnv && p.Name == "" {
		return fmt.Errorf("env permission requires a variable name")
	}
	return nil
}

func (p Permission) Register(args *MountArgs, vars Variables) {
	switch p.Kind {
	case PermNone:
	case PermDisplay:
		args.Add("env", "DISPLAY", "")
	case PermEnv:
		args.Add("env", p.Name, "")
	case PermNet:
		args.Add("share-net", "", "")
	case PermPulseaudio:
		args.Add("bind", "/run/user/pulse", "/run/user/pulse")
	case PermPipewire:
		args.Add("bind", "/run/user/pipewire-0", "/run/user/pipewire-0")
	case PermGPU:
		args.Add("dev-bind", "/dev/dri", "/dev/dri")
	case PermDev:
		args.Add("dev", "", "/dev")
	}
}

// DBusKind enumerates the built-in dbus capability variants.
type DBusKind string

const (
	DBusSocket      DBusKind = "socket"
	DBusAppIndicator DBusKind = "appindicator"
	DBusXDGPortal   DBusKind = "xdg-portal"
)

// DBus is one entry of the `dbus` capability list.
type DBus struct {
	Kind DBusKind `yaml:"permission" json:"permission"`
}

func (d DBus) Check(vars Variables) error { return nil }

func (d DBus) Register(args *MountArgs, vars Variables) {
	switch d.Kind {
	case DBusSocket:
		args.Add("dbus-own", "org.pacwrap."+vars.Key, "")
	case DBusAppIndicator:
		args.Add("dbus-talk", "org.kde.StatusNotifierWatcher", "")
	case DBusXDGPortal:
		args.Add("dbus-talk", "org.freedesktop.portal.Desktop", "")
	}
}

// MountArgs accumulates the abstract (op, src, dst) triples capability
// Register methods produce, for consumption by agentlaunch.
type MountArgs struct {
	Entries []MountArg
}

type MountArg struct {
	Op  string
	Src string
	Dst string
}

func (m *MountArgs) Add(op, src, dst string) {
	m.Entries = append(m.Entries, MountArg{Op: op, Src: src, Dst: dst})
}
