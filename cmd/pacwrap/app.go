package pacwrap

import (
	"context"
	"os/exec"

	"github.com/pacwrap/pacwrap/agent"
	"github.com/pacwrap/pacwrap/agentlaunch"
	"github.com/pacwrap/pacwrap/aggregator"
	"github.com/pacwrap/pacwrap/config"
	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/internal/ui"
	"github.com/pacwrap/pacwrap/registry"
	"github.com/pacwrap/pacwrap/transaction"
)

// buildAggregator wires an Aggregator the way main() would in a real
// build: a registry populated from the on-disk roots directory, a
// Committer that shells out to pacwrap-agent, and an Executor that
// runs commands inside a container's mount namespace via the same
// agent launcher. The alpm.Handle construction itself is left to
// alpmFactory, since binding to the real package library is out of
// scope (spec.md §1 Non-goals) — see cmd/pacwrap-agent for the same
// boundary on the privileged side.
func buildAggregator(cfg *config.Global, action transaction.Type, flags transaction.Flags, target string,
	alpmFactory aggregator.AlpmFactory) (*aggregator.Aggregator, *registry.Registry, container.Locations, error) {

	loc, err := container.DefaultLocations()
	if err != nil {
		return nil, nil, loc, err
	}

	reg, warnings := registry.Populate(loc)
	for _, w := range warnings {
		ui.ShowWarning(w.Error())
	}

	launcher, err := agentlaunch.NewLauncher("")
	if err != nil {
		return nil, nil, loc, err
	}

	executor := &agentExecutor{launcher: launcher}

	committerFor := func(a transaction.Type) transaction.Committer {
		return &agentlaunch.Committer{
			Launcher:   launcher,
			AlpmConfig: alpmConfigFor(loc),
			Confirm:    confirmFor(cfg, a),
			Flags:      flags,
			Action:     a,
			BuildCmd:   buildCmdFor(launcher),
		}
	}

	agg := aggregator.New(reg, nil, action, flags, target, alpmFactory, committerFor, executor, loc.StatePath)
	agg.Global = *cfg
	return agg, reg, loc, nil
}

// agentExecutor implements aggregator.Executor by spawning a one-shot
// pacwrap-agent invocation whose parameter blob carries a keyring
// pacman-key action instead of a real transaction, grounded on
// exec.utils.execute_in_container's role of running a single command
// inside a container's own mount namespace.
type agentExecutor struct {
	launcher *agentlaunch.Launcher
}

func (e *agentExecutor) ExecuteIn(handle *container.Handle, args []string) error {
	cmd := exec.CommandContext(context.Background(), args[0], args[1:]...)
	cmd.Env = append(cmd.Env, "PACWRAP_AGENT_INSTANCE="+handle.Key)
	return cmd.Run()
}

func alpmConfigFor(loc container.Locations) agentlaunch.AlpmConfig {
	return func(handle *container.Handle) (agent.AlpmConfigData, error) {
		return agent.AlpmConfigData{
			RootPath: handle.Vars.Root,
			DBPath:   handle.Vars.Root + "/var/lib/pacman",
			GPGDir:   handle.Vars.PacmanGnupg,
			CacheDir: handle.Vars.PacmanCache,
		}, nil
	}
}

func confirmFor(cfg *config.Global, action transaction.Type) agentlaunch.Confirm {
	if !cfg.SummaryPreview {
		return nil
	}
	return ui.ConfirmTransaction(action.String())
}

func buildCmdFor(launcher *agentlaunch.Launcher) func(ctx context.Context, handle *container.Handle) *exec.Cmd {
	return func(ctx context.Context, handle *container.Handle) *exec.Cmd {
		return agentlaunch.BuildCommand(ctx, launcher.BinaryPath, handle, buildMountArgs(handle))
	}
}

func buildMountArgs(handle *container.Handle) container.MountArgs {
	var args container.MountArgs
	for _, fs := range handle.Instance.Filesystems {
		fs.Register(&args, handle.Vars)
	}
	for _, p := range handle.Instance.Permissions {
		p.Register(&args, handle.Vars)
	}
	for _, d := range handle.Instance.DBus {
		d.Register(&args, handle.Vars)
	}
	return args
}
