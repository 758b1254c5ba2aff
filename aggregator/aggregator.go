// Package aggregator implements pacwrap's Transaction Aggregator
// (spec.md §4 CORE 1): cross-container orchestration in Base -> Slice
// -> Aggregate order, interleaving the Filesystem State Synchronizer
// between the foreign and local commit passes. Grounded on
// original_source/pacwrap-core/src/sync/transaction/aggregator.rs.
package aggregator

import (
	"context"

	"github.com/safedep/dry/log"

	"github.com/pacwrap/pacwrap/alpm"
	"github.com/pacwrap/pacwrap/config"
	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/fsstate"
	"github.com/pacwrap/pacwrap/registry"
	"github.com/pacwrap/pacwrap/resolver"
	"github.com/pacwrap/pacwrap/transaction"
)

// Executor runs a command to completion inside a container's mount
// namespace, injected so this package never shells out directly
// (grounded on exec.utils.execute_in_container, generalized behind an
// interface the way the teacher's sandbox.Sandbox abstracts exec.Cmd
// construction).
type Executor interface {
	ExecuteIn(handle *container.Handle, args []string) error
}

// AlpmFactory opens the real alpm.Handle bound to a container, the
// thing the (out-of-scope, per spec.md Non-goals) package-library
// binding supplies.
type AlpmFactory func(handle *container.Handle) (alpm.Handle, error)

// Aggregator drives one invocation's worth of transactions across
// every registered container, grounded on TransactionAggregator.
type Aggregator struct {
	Registry    *registry.Registry
	Queue       map[string][]string
	Action      transaction.Type
	Flags       transaction.Flags
	Target      string
	AlpmFactory AlpmFactory
	Committer   func(action transaction.Type) transaction.Committer
	Executor    Executor
	StatePath   func(string) string

	// Global carries config.Global.KeyringPackages, the configurable
	// replacement for a hardcoded "archlinux" pacman-key argument
	// (spec.md §9 Open Question 2). Zero-value Global falls back to
	// config.DefaultGlobal()'s single entry.
	Global config.Global

	queried       []string
	updated       []string
	keyringSynced bool
}

// New returns an Aggregator bound to reg, ready to Aggregate().
func New(reg *registry.Registry, queue map[string][]string, action transaction.Type, flags transaction.Flags, target string,
	alpmFactory AlpmFactory, committer func(transaction.Type) transaction.Committer, executor Executor, statePath func(string) string) *Aggregator {
	return &Aggregator{
		Registry: reg, Queue: queue, Action: action, Flags: flags, Target: target,
		AlpmFactory: alpmFactory, Committer: committer, Executor: executor, StatePath: statePath,
		Global: config.DefaultGlobal(),
	}
}

// Aggregate runs the full cross-container orchestration pass,
// grounded on TransactionAggregator::aggregate().
func (a *Aggregator) Aggregate(ctx context.Context) error {
	upgrade := false
	if a.Action.Kind == transaction.KindUpgrade {
		upgrade = a.Action.Upgrade
		if a.Action.Refresh {
			log.Debugf("aggregator: refreshing sync databases (force=%v)", a.Action.Force)
		}
	}

	var target *container.Handle
	if a.Target != "" {
		target = a.Registry.GetOption(a.Target)
	}

	if target != nil {
		if target.Type() == container.TypeBase || target.Type() == container.TypeSlice {
			a.transact(ctx, target)
		}
	} else if upgrade {
		a.transaction(ctx, a.Registry.RegisteredBase())
		a.transaction(ctx, a.Registry.RegisteredSlice())
	}

	needsFilesystemSync := a.Flags.Has(transaction.FlagFilesystemSync) || a.Flags.Has(transaction.FlagCreate) || len(a.updated) > 0
	if needsFilesystemSync && len(a.Registry.RegisteredAggregate()) > 0 {
		linker := fsstate.NewLinker(a.Registry, a.StatePath)
		if err := linker.Engage(ctx, a.Registry.Registered()); err != nil {
			return err
		}
	}

	if target != nil {
		if target.Type() == container.TypeAggregate {
			a.transact(ctx, target)
		}
	} else if upgrade {
		a.transaction(ctx, a.Registry.RegisteredAggregate())
	}

	log.Debugf("aggregator: transaction complete, %d containers updated", len(a.updated))
	return nil
}

// transaction recurses dependency-first over containers, grounded on
// TransactionAggregator::transaction().
func (a *Aggregator) transaction(ctx context.Context, keys []string) {
	for _, key := range keys {
		if contains(a.queried, key) {
			continue
		}
		handle := a.Registry.GetOption(key)
		if handle == nil {
			continue
		}
		a.queried = append(a.queried, key)
		a.transaction(ctx, handle.Dependencies())
		a.transact(ctx, handle)
	}
}

// transact runs the full per-container state machine, grounded on
// TransactionAggregator::transact().
func (a *Aggregator) transact(ctx context.Context, handle *container.Handle) {
	queue := a.Queue[handle.Key]
	alpmHandle, err := a.AlpmFactory(handle)
	if err != nil {
		log.Warnf("aggregator: failed to instantiate alpm for %s: %v", handle.Key, err)
		return
	}

	meta := transaction.NewMetadata(queue)
	txHandle := transaction.NewHandle(alpmHandle, meta)
	committer := a.Committer(a.Action)

	updated, err := transaction.Run(txHandle, handle, a.Action, a.Flags, transaction.Deps{
		DependencyAlpm: func(depKey string) (alpm.Handle, error) {
			depHandle := a.Registry.GetOption(depKey)
			if depHandle == nil {
				return nil, errMissingDependency(depKey)
			}
			return a.AlpmFactory(depHandle)
		},
		DepsUpdated: func(inst *container.Handle) bool {
			for _, dep := range inst.Dependencies() {
				if contains(a.updated, dep) {
					return true
				}
			}
			return false
		},
		IsKeyringSynced: func() bool { return a.keyringSynced },
		KeyringUpdate:   a.keyringUpdate,
		KeyringPackages: a.resolvedKeyringPackages(),
	},
		func(pkgs []string, ignored map[string]bool) ([]string, []alpm.Package, error) {
			r := resolver.NewSyncResolver(alpmHandle, ignored)
			result, err := r.Enumerate(pkgs)
			if err != nil {
				return nil, nil, err
			}
			return result.AddedAsDependency, result.Packages, nil
		},
		func(pkgs []string, ignored map[string]bool) ([]alpm.Package, error) {
			r := resolver.NewLocalResolver(alpmHandle, ignored, a.Action.Enumerate, a.Action.Cascade, a.Action.Explicit)
			result, err := r.Enumerate(pkgs)
			if err != nil {
				return nil, err
			}
			return result.Packages, nil
		},
		committer,
	)
	if err != nil {
		log.Warnf("aggregator: transaction failed for %s: %v", handle.Key, err)
		return
	}
	if updated {
		a.updated = append(a.updated, handle.Key)
	}
}

// resolvedKeyringPackages returns the configured upstream keyring
// package names, falling back to config.DefaultGlobal()'s set when
// a.Global was left zero-valued.
func (a *Aggregator) resolvedKeyringPackages() []string {
	if len(a.Global.KeyringPackages) > 0 {
		return a.Global.KeyringPackages
	}
	return config.DefaultGlobal().KeyringPackages
}

// keyringUpdate populates and refreshes the container's pacman
// keyring, the SPEC_FULL.md-supplemented feature grounded on
// keyring_update()'s two pacman-key invocations, with the populated
// keyring list taken from config.Global.KeyringPackages instead of a
// hardcoded "archlinux" argument (spec.md §9 Open Question 2).
func (a *Aggregator) keyringUpdate(handle *container.Handle) error {
	if a.Executor == nil {
		return nil
	}
	keyrings := a.resolvedKeyringPackages()
	populate := append([]string{"/usr/bin/pacman-key", "--populate"}, keyrings...)
	if err := a.Executor.ExecuteIn(handle, populate); err != nil {
		return err
	}
	if err := a.Executor.ExecuteIn(handle, []string{"/usr/bin/pacman-key", "--updatedb"}); err != nil {
		return err
	}
	a.keyringSynced = true
	return nil
}

// SyncFilesystem links a single non-Aggregate container's published
// state without waiting for a full aggregate pass, grounded on
// TransactionAggregator::sync_filesystem.
func (a *Aggregator) SyncFilesystem(ctx context.Context, handle *container.Handle) error {
	if handle.Type() == container.TypeAggregate {
		return nil
	}
	linker := fsstate.NewLinker(a.Registry, a.StatePath)
	return linker.Engage(ctx, []string{handle.Key})
}

func contains(haystack []string, needle string) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
