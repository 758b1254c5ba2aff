package agentlaunch

import (
	"context"
	"os/exec"

	"github.com/google/uuid"
	"github.com/safedep/dry/log"

	"github.com/pacwrap/pacwrap/agent"
	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/transaction"
)

// Confirm is called before the agent spawns whenever the transaction
// isn't foreign-only and no-confirm isn't set; returning false aborts
// the commit without error (the user declined), grounded on
// commit.rs's confirm()/prompt() gate.
type Confirm func(summary Summary) (proceed bool)

// Summary is the download-size/package-count preview rendered before
// confirmation, the SPEC_FULL.md-supplemented replacement for
// commit.rs's summary() printer (spec.md Non-goals exclude a
// full progress UI, but the download summary itself is worth keeping
// — see internal/ui for its go-pretty rendering).
type Summary struct {
	Packages      []string
	DownloadBytes uint64
	DownloadFiles int
}

// AlpmConfig builds the AlpmConfigData blob for a given container,
// injected so agentlaunch never needs to know repositories.conf's
// concrete shape.
type AlpmConfig func(handle *container.Handle) (agent.AlpmConfigData, error)

// Committer implements transaction.Committer by shelling out to the
// pacwrap-agent binary, grounded on commit.rs's engage(): build the
// parameter blob from the still-open alpm handle's staged transaction,
// render+confirm the summary, release the parent's alpm handle, spawn
// the agent, and map its exit code back to a state transition.
type Committer struct {
	Launcher   *Launcher
	AlpmConfig AlpmConfig
	Confirm    Confirm
	Flags      transaction.Flags
	Action     transaction.Type
	BuildCmd   func(ctx context.Context, handle *container.Handle) *exec.Cmd
}

var _ transaction.Committer = (*Committer)(nil)

// Commit implements transaction.Committer.
func (c *Committer) Commit(h *transaction.Handle, inst *container.Handle, mode transaction.Mode) (bool, error) {
	if c.Flags.Has(transaction.FlagPreview) {
		return false, nil
	}

	download := Summary{Packages: h.Alpm.TransAdd()}
	if mode == transaction.ModeLocal && c.Confirm != nil && !c.Flags.Has(transaction.FlagNoConfirm) {
		if !c.Confirm(download) {
			return false, nil
		}
	}

	alpmCfg, err := c.AlpmConfig(inst)
	if err != nil {
		return false, err
	}

	txID := uuid.New()
	blob := agent.Blob{
		Params: agent.Parameters{
			TransactionID: txID,
			Action:        c.Action,
			Mode:          mode,
			DownloadBytes: download.DownloadBytes,
			DownloadFiles: download.DownloadFiles,
		},
		Alpm:     alpmCfg,
		Metadata: *h.Meta,
	}
	log.Debugf("agentlaunch: dispatching transaction %s to %s (mode=%s)", txID, inst.Key, mode)

	ctx := context.Background()
	cmd := c.BuildCmd(ctx, inst)

	h.Alpm.Release()
	exitCode, err := c.Launcher.Run(ctx, cmd, blob)
	if err != nil {
		return false, err
	}
	return exitCode == agent.ExitSuccess, nil
}
