package transaction

import (
	"strings"

	"github.com/pacwrap/pacwrap/alpm"
)

// Handle couples an alpm.Handle with the transaction Metadata that
// survives across the per-container state machine, grounded on
// original_source's TransactionHandle.
type Handle struct {
	Meta *Metadata
	Alpm alpm.Handle
}

func NewHandle(h alpm.Handle, meta *Metadata) *Handle {
	return &Handle{Meta: meta, Alpm: h}
}

// ignoredSet returns the set this handle's current Mode ignores: a
// Foreign-mode transaction ignores resident packages and vice versa.
func (h *Handle) ignoredSet() map[string]bool {
	if h.Meta.Mode == ModeForeign {
		return h.Meta.ResidentPkgs
	}
	return h.Meta.ForeignPkgs
}

// EnumerateForeign folds depHandle's locally installed packages into
// ForeignPkgs/ResidentPkgs, mirroring enumerate_foreign_pkgs.
func (h *Handle) EnumerateForeign(depHandle alpm.Handle) {
	for _, pkg := range depHandle.LocalPackages() {
		if !h.Meta.ForeignPkgs[pkg.Name] {
			h.Meta.ForeignPkgs[pkg.Name] = true
		}
	}
	for _, pkg := range h.Alpm.LocalPackages() {
		if !h.Meta.ForeignPkgs[pkg.Name] && !h.Meta.ResidentPkgs[pkg.Name] {
			h.Meta.ResidentPkgs[pkg.Name] = true
		}
	}
}

// Ignore applies the current mode's ignore/unignore package sets to
// the bound alpm handle.
func (h *Handle) Ignore() {
	var ignore, unignore map[string]bool
	if h.Meta.Mode == ModeForeign {
		ignore, unignore = h.Meta.ResidentPkgs, h.Meta.ForeignPkgs
	} else {
		ignore, unignore = h.Meta.ForeignPkgs, h.Meta.ResidentPkgs
	}

	for name := range unignore {
		h.Alpm.RemoveIgnorePkg(name)
	}
	for name := range ignore {
		h.Alpm.AddIgnorePkg(name)
	}
}

// IsSyncReq reports whether any non-ignored locally installed package
// has a pending sync-database update.
func (h *Handle) IsSyncReq(mode Mode) bool {
	var ignored map[string]bool
	if mode == ModeForeign {
		ignored = h.Meta.ResidentPkgs
	} else {
		ignored = h.Meta.ForeignPkgs
	}

	for _, pkg := range h.Alpm.LocalPackages() {
		if ignored[pkg.Name] {
			continue
		}
		if _, ok := h.Alpm.SyncNewVersion(pkg.Name); ok {
			return true
		}
	}
	return false
}

// PrepareAdd validates the queue against the sync databases and
// resolves transitive dependencies, staging each package for addition
// (spec.md §4.6), grounded on TransactionHandle::prepare_add.
func (h *Handle) PrepareAdd(flags Flags, resolve func(queue []string, ignored map[string]bool) ([]string, []alpm.Package, error)) error {
	ignored := h.ignoredSet()

	for _, name := range h.Meta.Queue {
		if _, ok := h.Alpm.GetPackage(name); !ok {
			return errTargetNotAvailable(name)
		}
		if ignored[name] && h.Meta.Mode == ModeLocal {
			if flags.Has(FlagForceDatabase) {
				continue
			}
			return errTargetUpstream(name)
		}
	}

	deps, packages, err := resolve(h.Meta.Queue, ignored)
	if err != nil {
		return err
	}
	if len(deps) > 0 {
		h.Meta.Deps = deps
	}

	for _, pkg := range packages {
		if !h.Meta.ForeignPkgs[pkg.Name] && h.Meta.Mode == ModeForeign {
			continue
		}
		h.Alpm.TransAddPkg(pkg.Name)
	}
	return nil
}

// PrepareRemoval validates the queue is locally installed and stages
// each resolved package for removal, grounded on
// TransactionHandle::prepare_removal.
func (h *Handle) PrepareRemoval(resolve func(queue []string, ignored map[string]bool) ([]alpm.Package, error)) error {
	ignored := h.ignoredSet()

	for _, name := range h.Meta.Queue {
		if _, ok := h.Alpm.GetLocalPackage(name); !ok {
			return errTargetNotInstalled(name)
		}
		if ignored[name] && h.Meta.Mode == ModeLocal {
			return errTargetUpstream(name)
		}
	}

	packages, err := resolve(h.Meta.Queue, ignored)
	if err != nil {
		return err
	}
	for _, pkg := range packages {
		h.Alpm.TransRemovePkg(pkg.Name)
	}
	return nil
}

// Ready fails with NothingToDo when the prepared transaction set is
// empty, grounded on trans_ready.
func (h *Handle) Ready(t Type) error {
	var n int
	if t.IsRemove() {
		n = len(h.Alpm.TransRemove())
	} else {
		n = len(h.Alpm.TransAdd())
	}
	if n == 0 {
		return errNothingToDo()
	}
	return nil
}

// MarkDepends re-marks every dependency pulled in purely to satisfy
// the transaction as alpm.ReasonDepend, grounded on mark_depends.
func (h *Handle) MarkDepends() {
	for _, name := range h.Meta.Deps {
		if _, ok := h.Alpm.GetLocalPackage(name); ok {
			h.Alpm.SetReason(name, alpm.ReasonDepend)
		}
	}
}

// explicitPackages returns the instance's own, non-foreign,
// non-pacwrap-prefixed explicitly installed packages, grounded on
// apply_configuration's filter_map.
func (h *Handle) explicitPackages() []string {
	var out []string
	for _, pkg := range h.Alpm.LocalPackages() {
		if pkg.Reason != alpm.ReasonExplicit {
			continue
		}
		if strings.HasPrefix(pkg.Name, "pacwrap-") {
			continue
		}
		if h.Meta.ForeignPkgs[pkg.Name] {
			continue
		}
		out = append(out, pkg.Name)
	}
	return out
}
