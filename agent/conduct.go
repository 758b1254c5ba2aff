package agent

import (
	"errors"
	"io"
	"os"

	"github.com/safedep/dry/log"

	"github.com/pacwrap/pacwrap/transaction"
	"github.com/pacwrap/pacwrap/usefulerror"
)

// ConductTransaction runs the privileged half of one transaction
// inside the agent's own mount namespace, grounded on
// agent.rs's conduct_transaction(): ignore the cross-mode package set,
// resolve and stage the queue again (the agent owns the real alpm
// handle), call Prepare/Commit, then mark dependency-only packages
// and propagate the refreshed ld.so.cache to the container root.
func ConductTransaction(h *transaction.Handle, params Parameters,
	syncResolve transaction.SyncResolve, removeResolve transaction.RemoveResolve) error {

	h.Meta.Mode = params.Mode
	h.Ignore()

	log.Debugf("agent: conducting transaction %s (mode=%s)", params.TransactionID, params.Mode)

	if !params.Action.IsRemove() && params.Action.Upgrade {
		log.Debugf("agent: performing full system upgrade (downgrade=%v)", params.Action.Force)
	}

	var err error
	if params.Action.IsRemove() {
		err = h.PrepareRemoval(removeResolve)
	} else {
		err = h.PrepareAdd(transaction.FlagNone, syncResolve)
	}
	if err != nil {
		return usefulerror.Useful().Wrap(err).
			WithCode(usefulerror.ErrCodePreparationFailure).
			Msg("agent failed to prepare transaction")
	}

	if err := h.Alpm.Prepare(); err != nil {
		return usefulerror.Useful().Wrap(err).
			WithCode(usefulerror.ErrCodePreparationFailure).
			Msg("agent failed trans_prepare")
	}
	if err := h.Alpm.Commit(); err != nil {
		return usefulerror.Useful().Wrap(err).
			WithCode(usefulerror.ErrCodeTransactionFailure).
			Msg("agent failed trans_commit")
	}

	h.MarkDepends()
	propagateLdCache()
	return nil
}

// propagateLdCache copies the agent's refreshed ld.so.cache into the
// container root it just transacted, the ld.so.cache pre-warming
// feature (SPEC_FULL.md §3), grounded on agent.rs's
// fs::copy("/etc/ld.so.cache", "/mnt/etc/ld.so.cache") with the same
// "missing source is fine, anything else is a warning" tolerance.
func propagateLdCache() {
	src, err := os.Open("/etc/ld.so.cache")
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		log.Warnf("agent: failed to open ld.so.cache: %v", err)
		return
	}
	defer src.Close()

	dst, err := os.Create("/mnt/etc/ld.so.cache")
	if err != nil {
		log.Warnf("agent: failed to propagate ld.so.cache: %v", err)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		log.Warnf("agent: failed to propagate ld.so.cache: %v", err)
	}
}
