// Command pacwrap-agent is the privileged half of the Privilege-
// Separated Agent Protocol (spec.md §5): it reads the parameter blob
// the parent process wrote to agent.DefaultParamsPath, opens its own
// alpm handle inside the sandbox's mount namespace, and conducts the
// transaction. Grounded on
// _examples/original_source/pacwrap-agent/src/agent.rs's main().
package main

import (
	"os"

	"github.com/pacwrap/pacwrap/agent"
	"github.com/pacwrap/pacwrap/transaction"
	"github.com/pacwrap/pacwrap/usefulerror"
)

func main() {
	os.Exit(agent.Run(agent.DefaultParamsPath, instantiateAlpm))
}

// instantiateAlpm is the one piece of this binary spec.md places out
// of scope: "implementing the underlying package library itself."
// Every other package in this module depends only on the alpm.Handle
// interface; wiring it to a real libalpm binding (cgo against libalpm,
// or a pure-Go reimplementation) is the integration point a
// production build supplies here. No such binding exists anywhere in
// the example pack to ground an implementation on, so this returns a
// clear, machine-coded error instead of a fabricated one.
func instantiateAlpm(cfg agent.AlpmConfigData) (transaction.Handle, error) {
	return transaction.Handle{}, usefulerror.Useful().
		WithCode(usefulerror.ErrCodeInitializationFailure).
		WithHumanError("no package library binding is configured for pacwrap-agent").
		WithHelp("This build of pacwrap-agent was compiled without a libalpm binding.").
		Msg("alpm binding not implemented")
}
