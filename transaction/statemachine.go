package transaction

import (
	"github.com/pacwrap/pacwrap/alpm"
	"github.com/pacwrap/pacwrap/container"
)

// SyncResolve resolves packages to add, grounded on
// resolver.SyncResolver.Enumerate.
type SyncResolve func(queue []string, ignored map[string]bool) (deps []string, packages []alpm.Package, err error)

// RemoveResolve resolves packages to remove, grounded on
// resolver.LocalResolver.Enumerate.
type RemoveResolve func(queue []string, ignored map[string]bool) ([]alpm.Package, error)

// Committer performs the privilege-separated commit step: writing the
// agent parameter blob, spawning the agent, and waiting for it,
// grounded on commit.rs's write_agent_params + transaction_agent +
// agent.wait(). ok reports whether the container's installed-package
// set actually changed (used for TransactionState::Commit(bool)'s
// payload and the aggregator's deps_updated tracking).
type Committer interface {
	Commit(h *Handle, inst *container.Handle, mode Mode) (ok bool, err error)
}

// Deps abstracts the cross-container lookups Prepare/PrepareForeign
// need without importing the aggregator package (avoiding an import
// cycle): another container's alpm.Handle, whether the aggregator
// already keyring-synced this run, and the keyring-update action
// itself. KeyringPackages is the configured set of upstream keyring
// package names (config.Global.KeyringPackages), checked against a
// Base container's staged additions to decide whether a commit needs
// to run KeyringUpdate afterward.
type Deps struct {
	DependencyAlpm  func(key string) (alpm.Handle, error)
	DepsUpdated     func(inst *container.Handle) bool
	IsKeyringSynced func() bool
	KeyringUpdate   func(inst *container.Handle) error
	KeyringPackages []string
}

// Run advances one container's transaction from StatePrepare to
// StateComplete, grounded on the Prepare/Stage/Commit state machine in
// transaction.rs + prepare.rs/stage.rs/commit.rs/uptodate.rs.
func Run(h *Handle, inst *container.Handle, action Type, flags Flags, deps Deps,
	syncResolve SyncResolve, removeResolve RemoveResolve, committer Committer) (updated bool, err error) {

	state := StatePrepare
	for {
		switch state {
		case StatePrepare:
			state, err = prepare(h, inst, action, deps)
		case StatePrepareForeign:
			state, err = prepareForeign(h, inst, action, flags, deps)
		case StateStage, StateStageForeign:
			state, err = stage(h, action, flags, state, syncResolve, removeResolve)
		case StateCommit, StateCommitForeign:
			var ok bool
			ok, err = committer.Commit(h, inst, h.Meta.Mode)
			if err != nil {
				return false, err
			}
			if state == StateCommitForeign {
				// A foreign commit always falls through to the
				// container's own local stage afterward, grounded on
				// commit.rs's state_transition mapping CommitForeign
				// unconditionally to Stage, whether trans_ready failed
				// or the commit itself succeeded.
				state = StateStage
				continue
			}
			if !ok {
				return false, nil
			}
			h.MarkDepends()
			if needsKeyringUpdate(h, inst, deps) {
				if err := deps.KeyringUpdate(inst); err != nil {
					return true, err
				}
			}
			return true, nil
		case StateUpToDate:
			return false, nil
		default:
			return false, nil
		}
		if err != nil {
			return false, err
		}
	}
}

// needsKeyringUpdate reports whether a just-committed local transaction
// must be followed by a keyring populate+updatedb pass, grounded on
// stage.rs's check_keyring: only a Base container, only when the
// aggregator hasn't already keyring-synced this run, and only when the
// staged additions actually include one of the configured upstream
// keyring packages.
func needsKeyringUpdate(h *Handle, inst *container.Handle, deps Deps) bool {
	if inst.Type() != container.TypeBase || deps.IsKeyringSynced() || len(deps.KeyringPackages) == 0 {
		return false
	}
	added := h.Alpm.TransAdd()
	for _, pkg := range added {
		for _, keyring := range deps.KeyringPackages {
			if pkg == keyring {
				return true
			}
		}
	}
	return false
}

func prepare(h *Handle, inst *container.Handle, action Type, deps Deps) (State, error) {
	dependencies := inst.Instance.Dependencies

	for i := len(dependencies) - 1; i >= 0; i-- {
		depAlpm, err := deps.DependencyAlpm(dependencies[i])
		if err != nil {
			return StateComplete, errDependentMissing(dependencies[i])
		}
		h.EnumerateForeign(depAlpm)
	}

	if action.IsRemove() {
		if len(h.Meta.Queue) == 0 {
			return StateComplete, errNothingToDo()
		}
	} else if !action.Upgrade && len(h.Meta.Queue) == 0 {
		return StateComplete, errNothingToDo()
	}

	if len(h.Meta.Queue) == 0 && !h.IsSyncReq(ModeLocal) {
		return StateUpToDate, nil
	}

	if action.IsRemove() || len(dependencies) == 0 {
		return StateStage, nil
	}
	return StatePrepareForeign, nil
}

// sysupgrade stages every locally installed, non-ignored package with
// a pending sync-database update, grounded on
// Stage::engage's handle.alpm().sync_sysupgrade(downgrade) call. The
// downgrade flag (original_source's TransFlag equivalent of allowing a
// newer local version to be replaced by an older sync version) is
// left to the alpm.Handle implementation's own sync_sysupgrade-style
// policy; this package only decides which packages are candidates.
func sysupgrade(h *Handle) {
	ignored := h.ignoredSet()
	for _, pkg := range h.Alpm.LocalPackages() {
		if ignored[pkg.Name] {
			continue
		}
		if _, ok := h.Alpm.SyncNewVersion(pkg.Name); ok {
			h.Alpm.TransAddPkg(pkg.Name)
		}
	}
}

func prepareForeign(h *Handle, inst *container.Handle, action Type, flags Flags, deps Deps) (State, error) {
	if !flags.Has(FlagForceDatabase) && !h.IsSyncReq(ModeForeign) {
		if deps.DepsUpdated(inst) {
			return StateStageForeign, nil
		}
		return StateStage, nil
	}
	return StateStageForeign, nil
}

func stage(h *Handle, action Type, flags Flags, state State, syncResolve SyncResolve, removeResolve RemoveResolve) (State, error) {
	if state == StateStage {
		h.Meta.Mode = ModeLocal
	} else {
		h.Meta.Mode = ModeForeign
	}
	h.Ignore()
	h.Meta.Flags = flags

	var err error
	if action.IsRemove() {
		err = h.PrepareRemoval(removeResolve)
	} else {
		if action.Upgrade {
			sysupgrade(h)
		}
		err = h.PrepareAdd(flags, syncResolve)
	}
	if err != nil {
		return StateComplete, errPreparation(err.Error())
	}

	if err := h.Ready(action); err != nil {
		if state == StateStageForeign {
			return StateCommitForeign, nil
		}
		return StateComplete, err
	}

	if state == StateStage {
		return StateCommit, nil
	}
	return StateCommitForeign, nil
}
