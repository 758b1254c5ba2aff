// Package errconv converts stdlib and domain errors into
// usefulerror.UsefulError, grounded on the teacher's
// internal/ui/error_convert.go matcher-chain pattern, extended with
// matchers for pacwrap's own transaction.Error and agent.HeaderError
// sentinel types.
package errconv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net"
	"os"
	"os/exec"
	"strings"

	"github.com/pacwrap/pacwrap/agent"
	"github.com/pacwrap/pacwrap/transaction"
	"github.com/pacwrap/pacwrap/usefulerror"
)

type matcher struct {
	match   func(err error) bool
	convert func(err error) usefulerror.UsefulError
}

// matchers is an ordered chain; more specific matchers come first.
var matchers = []matcher{
	{
		match: func(err error) bool {
			var txErr *transaction.Error
			return errors.As(err, &txErr)
		},
		convert: func(err error) usefulerror.UsefulError {
			var txErr *transaction.Error
			errors.As(err, &txErr)
			return txErr.AsUseful()
		},
	},
	{
		match: func(err error) bool {
			var headerErr *agent.HeaderError
			return errors.As(err, &headerErr)
		},
		convert: func(err error) usefulerror.UsefulError {
			var headerErr *agent.HeaderError
			errors.As(err, &headerErr)
			code := usefulerror.ErrCodeAgentDeserialize
			switch headerErr.ExitCode {
			case agent.ExitMagicMismatch:
				code = usefulerror.ErrCodeAgentMagicMismatch
			case agent.ExitVersionMismatch:
				code = usefulerror.ErrCodeAgentVersionMismatch
			case agent.ExitParamsUnavailable:
				code = usefulerror.ErrCodeAgentParamsMissing
			}
			return usefulerror.Useful().
				WithCode(code).
				WithHumanError(headerErr.Message).
				WithHelp("Ensure pacwrap and pacwrap-agent were installed from the same build").
				Wrap(err)
		},
	},
	{
		match: func(err error) bool {
			return errors.Is(err, os.ErrNotExist) || errors.Is(err, fs.ErrNotExist)
		},
		convert: func(err error) usefulerror.UsefulError {
			path := extractPath(err)
			human := "File or directory not found"
			if path != "" {
				human = fmt.Sprintf("File or directory not found: %s", path)
			}
			return usefulerror.Useful().
				WithCode(usefulerror.ErrCodeNotFound).
				WithHumanError(human).
				WithHelp("Check if the path exists").
				Wrap(err)
		},
	},
	{
		match: func(err error) bool {
			return errors.Is(err, os.ErrPermission) || errors.Is(err, fs.ErrPermission)
		},
		convert: func(err error) usefulerror.UsefulError {
			path := extractPath(err)
			human := "Permission denied"
			if path != "" {
				human = fmt.Sprintf("Permission denied: %s", path)
			}
			return usefulerror.Useful().
				WithCode(usefulerror.ErrCodePermissionDenied).
				WithHumanError(human).
				WithHelp("Check permissions or re-run with the expected user").
				Wrap(err)
		},
	},
	{
		match: func(err error) bool {
			var exitErr *exec.ExitError
			return errors.As(err, &exitErr)
		},
		convert: func(err error) usefulerror.UsefulError {
			var exitErr *exec.ExitError
			errors.As(err, &exitErr)
			return usefulerror.Useful().
				WithCode(usefulerror.ErrCodeLifecycle).
				WithHumanError(fmt.Sprintf("Command failed with exit code %d", exitErr.ExitCode())).
				Wrap(err)
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, context.DeadlineExceeded) },
		convert: func(err error) usefulerror.UsefulError {
			return usefulerror.Useful().
				WithCode(usefulerror.ErrCodeTimeout).
				WithHumanError("Operation timed out").
				Wrap(err)
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, context.Canceled) },
		convert: func(err error) usefulerror.UsefulError {
			return usefulerror.Useful().WithCode(usefulerror.ErrCodeCanceled).WithHumanError("Operation was canceled").Wrap(err)
		},
	},
	{
		match: func(err error) bool {
			var netErr net.Error
			if errors.As(err, &netErr) {
				return true
			}
			msg := err.Error()
			return strings.Contains(msg, "connection refused") ||
				strings.Contains(msg, "no such host") ||
				strings.Contains(msg, "network is unreachable")
		},
		convert: func(err error) usefulerror.UsefulError {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				return usefulerror.Useful().WithCode(usefulerror.ErrCodeTimeout).WithHumanError("Network request timed out").Wrap(err)
			}
			return usefulerror.Useful().WithCode(usefulerror.ErrCodeNetwork).WithHumanError("Network error occurred").Wrap(err)
		},
	},
	{
		match: func(err error) bool { return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) },
		convert: func(err error) usefulerror.UsefulError {
			return usefulerror.Useful().WithCode(usefulerror.ErrCodeUnexpectedEOF).WithHumanError("Unexpected end of data").Wrap(err)
		},
	},
}

// ToUseful converts err into a UsefulError, walking the matcher chain
// and falling back to a generic wrap of the error's root cause.
func ToUseful(err error) usefulerror.UsefulError {
	if err == nil {
		return nil
	}
	if ue, ok := usefulerror.AsUsefulError(err); ok {
		return ue
	}
	for _, m := range matchers {
		if m.match(err) {
			return m.convert(err)
		}
	}
	return usefulerror.Useful().
		WithCode(usefulerror.ErrCodeUnknown).
		WithHumanError(rootCause(err)).
		Wrap(err)
}

func rootCause(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

func extractPath(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Path
	}
	var linkErr *os.LinkError
	if errors.As(err, &linkErr) {
		return linkErr.Old
	}
	return ""
}
