package agent

import (
	"fmt"
	"os"

	"github.com/pacwrap/pacwrap/alpm"
	"github.com/pacwrap/pacwrap/resolver"
	"github.com/pacwrap/pacwrap/transaction"
)

// DefaultParamsPath is where the parent process leaves the agent
// parameter blob, grounded on agent.rs's hardcoded "/tmp/agent_params".
const DefaultParamsPath = "/tmp/agent_params"

// InstantiateAlpm opens the agent's own alpm handle from the config
// data the parent serialized; it is implemented outside this package
// (sync/transaction orchestration owns the real alpm.Handle
// construction) and injected here to keep agent free of a direct alpm
// library dependency, matching spec.md's alpm-as-interface Non-goal.
type InstantiateAlpm func(AlpmConfigData) (transaction.Handle, error)

// Run is the agent binary's entire logic: read and validate the
// parameter blob, instantiate alpm, and conduct the transaction,
// returning the process exit code agent.rs's transact() would use.
// The sync/local resolvers are built here from the instantiated
// handle rather than injected, since (unlike the aggregator, which
// juggles many containers' alpm.Handles at once) the agent only ever
// has the one handle instantiate() just opened.
//
// Direct execution outside of a transaction (no parameter file
// present) exits 2 with a human warning when run interactively from a
// shell, mirroring agent.rs's $SHELL env check.
func Run(paramsPath string, instantiate InstantiateAlpm) int {
	file, err := os.Open(paramsPath)
	if err != nil {
		if shell := os.Getenv("SHELL"); shell != "" {
			fmt.Fprintln(os.Stderr, "Direct execution of this binary is unsupported.")
		}
		return ExitParamsUnavailable
	}
	defer file.Close()

	blob, err := Decode(file)
	if err != nil {
		var headerErr *HeaderError
		if ok := asHeaderError(err, &headerErr); ok {
			fmt.Fprintln(os.Stderr, headerErr.Message)
			return headerErr.ExitCode
		}
		fmt.Fprintln(os.Stderr, err.Error())
		return ExitDeserializationFailed
	}

	handle, err := instantiate(blob.Alpm)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return ExitParamsUnavailable
	}
	handle.Meta = &blob.Metadata

	syncResolve := func(queue []string, ignored map[string]bool) ([]string, []alpm.Package, error) {
		r := resolver.NewSyncResolver(handle.Alpm, ignored)
		result, err := r.Enumerate(queue)
		if err != nil {
			return nil, nil, err
		}
		return result.AddedAsDependency, result.Packages, nil
	}
	removeResolve := func(queue []string, ignored map[string]bool) ([]alpm.Package, error) {
		r := resolver.NewLocalResolver(handle.Alpm, ignored, blob.Params.Action.Enumerate, blob.Params.Action.Cascade, blob.Params.Action.Explicit)
		result, err := r.Enumerate(queue)
		if err != nil {
			return nil, err
		}
		return result.Packages, nil
	}

	if err := ConductTransaction(&handle, blob.Params, syncResolve, removeResolve); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		handle.Alpm.Release()
		return ExitTransactionFailure
	}
	return ExitSuccess
}

func asHeaderError(err error, target **HeaderError) bool {
	if he, ok := err.(*HeaderError); ok {
		*target = he
		return true
	}
	return false
}
