// Package agentlaunch spawns and supervises the pacwrap-agent child
// process from the parent: writing the parameter blob, running the
// binary, waiting and mapping its exit code, forwarding teardown
// signals, and polling the DBus proxy socket before handing control to
// the sandboxed process (spec.md §5). Grounded on the teacher's
// sandbox.Sandbox spawn/Execute shape and sandbox/apply.go's
// graceful-degradation wiring.
package agentlaunch

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/safedep/dry/log"

	"github.com/pacwrap/pacwrap/agent"
	"github.com/pacwrap/pacwrap/container"
	"github.com/pacwrap/pacwrap/transaction"
	"github.com/pacwrap/pacwrap/usefulerror"
)

// DBusProxyPollAttempts/Interval are the bound spec.md §5 names for
// DBus-proxy-socket readiness: up to 200 polls, 500µs apart.
const (
	DBusProxyPollAttempts = 200
	DBusProxyPollInterval = 500 * time.Microsecond
)

// TeardownSignals are forwarded to the agent child process so it can
// unwind its own sandboxed children before the parent exits (spec.md
// §5 "signal-driven child-process teardown").
var TeardownSignals = []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM}

// AgentBinaryPath locates the sibling pacwrap-agent binary relative to
// the running executable, falling back to PATH lookup.
func AgentBinaryPath() (string, error) {
	if self, err := os.Executable(); err == nil {
		candidate := self[:len(self)-len("pacwrap")] + "pacwrap-agent"
		if _, statErr := os.Stat(candidate); statErr == nil {
			return candidate, nil
		}
	}
	return exec.LookPath("pacwrap-agent")
}

// WaitForDBusProxy polls path up to DBusProxyPollAttempts times,
// DBusProxyPollInterval apart, succeeding as soon as a Unix socket
// connection to it can be established.
func WaitForDBusProxy(path string) error {
	var lastErr error
	for attempt := 0; attempt < DBusProxyPollAttempts; attempt++ {
		conn, err := net.DialTimeout("unix", path, DBusProxyPollInterval)
		if err == nil {
			conn.Close()
			return nil
		}
		lastErr = err
		time.Sleep(DBusProxyPollInterval)
	}
	return usefulerror.Useful().Wrap(lastErr).
		Msg(fmt.Sprintf("dbus proxy at %s did not become ready after %d attempts", path, DBusProxyPollAttempts))
}

// Launcher spawns the agent binary for a single transaction commit.
type Launcher struct {
	BinaryPath string
	ParamsPath string
}

// NewLauncher uses the caller-supplied binary path override when set,
// and otherwise resolves the agent binary path via AgentBinaryPath.
func NewLauncher(binaryPathOverride string) (*Launcher, error) {
	path := binaryPathOverride
	if path == "" {
		resolved, err := AgentBinaryPath()
		if err != nil {
			return nil, usefulerror.Useful().Wrap(err).Msg("failed to locate pacwrap-agent binary")
		}
		path = resolved
	}

	paramsPath := agent.DefaultParamsPath
	return &Launcher{BinaryPath: path, ParamsPath: paramsPath}, nil
}

// writeParams persists blob to l.ParamsPath with owner-only
// permissions, since it may carry credentials embedded in
// repositories.conf server URLs.
func (l *Launcher) writeParams(blob agent.Blob) error {
	data, err := agent.EncodeToBytes(blob)
	if err != nil {
		return err
	}
	return os.WriteFile(l.ParamsPath, data, 0600)
}

// Run writes the parameter blob, spawns the agent bound to the given
// command (the caller is expected to have already wrapped cmd with
// the sandbox's namespace/mount arguments), forwards teardown signals
// while it runs, and maps its exit code to an error.
func (l *Launcher) Run(ctx context.Context, cmd *exec.Cmd, blob agent.Blob) (exitCode int, err error) {
	if err := l.writeParams(blob); err != nil {
		return -1, err
	}

	if err := cmd.Start(); err != nil {
		return -1, usefulerror.Useful().Wrap(err).
			WithCode(usefulerror.ErrCodeTransactionFailure).
			Msg("failed to start pacwrap-agent")
	}

	stopForwarding := forwardSignals(cmd.Process)
	defer stopForwarding()

	waitErr := cmd.Wait()
	exitCode = exitCodeOf(waitErr)

	switch exitCode {
	case agent.ExitSuccess:
		return exitCode, nil
	case agent.ExitTransactionFailure:
		return exitCode, &transaction.Error{Code: usefulerror.ErrCodeTransactionFailure, Message: "agent reported transaction failure"}
	case agent.ExitParamsUnavailable:
		return exitCode, &transaction.Error{Code: usefulerror.ErrCodeAgentParamsMissing, Message: "agent could not acquire its parameter file"}
	case agent.ExitDeserializationFailed:
		return exitCode, &transaction.Error{Code: usefulerror.ErrCodeAgentDeserialize, Message: "agent failed to deserialize its parameters"}
	case agent.ExitMagicMismatch:
		return exitCode, &transaction.Error{Code: usefulerror.ErrCodeAgentMagicMismatch, Message: "agent parameter blob magic number mismatch"}
	case agent.ExitVersionMismatch:
		return exitCode, &transaction.Error{Code: usefulerror.ErrCodeAgentVersionMismatch, Message: "agent build version mismatch"}
	default:
		return exitCode, &transaction.Error{Code: usefulerror.ErrCodeTransactionFailure, Message: fmt.Sprintf("agent exited with unrecognized code %d", exitCode)}
	}
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

// forwardSignals relays TeardownSignals to proc until the returned
// func is called, mirroring the teacher's graceful-shutdown pattern in
// sandbox/apply.go generalized from a single signal to the full
// teardown set.
func forwardSignals(proc *os.Process) (stop func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, TeardownSignals...)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case sig := <-ch:
				if err := proc.Signal(sig); err != nil {
					log.Debugf("agentlaunch: failed to forward signal %v: %v", sig, err)
				}
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}

// BuildCommand prepares the agent invocation. Constructing the actual
// bubblewrap command line is out of scope (spec.md Non-goals): this
// only sets the *exec.Cmd's environment (adding PACWRAP_AGENT_INSTANCE)
// and its stdio, the way the teacher's sandbox.Execute callers do
// before handing off to a platform Sandbox. The capability MountArgs
// passed in are not applied to the command.
func BuildCommand(ctx context.Context, binaryPath string, handle *container.Handle, args container.MountArgs) *exec.Cmd {
	cmd := exec.CommandContext(ctx, binaryPath)
	cmd.Env = append(os.Environ(), fmt.Sprintf("PACWRAP_AGENT_INSTANCE=%s", handle.Key))
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}
