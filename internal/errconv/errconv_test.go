package errconv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pacwrap/pacwrap/agent"
	"github.com/pacwrap/pacwrap/transaction"
	"github.com/pacwrap/pacwrap/usefulerror"
)

func TestToUseful(t *testing.T) {
	tests := []struct {
		name           string
		inputError     error
		wantCode       string
		wantHumanError string
		wantContains   string
		wantNil        bool
	}{
		{
			name: "AlreadyUseful",
			inputError: usefulerror.Useful().
				WithCode("CUSTOM").
				WithHumanError("Already useful").
				Msg("test"),
			wantCode:       "CUSTOM",
			wantHumanError: "Already useful",
		},
		{
			name:         "FileNotExist",
			inputError:   &fs.PathError{Op: "open", Path: "/nonexistent/file.txt", Err: os.ErrNotExist},
			wantCode:     usefulerror.ErrCodeNotFound,
			wantContains: "/nonexistent/file.txt",
		},
		{
			name:         "PermissionDenied",
			inputError:   &fs.PathError{Op: "open", Path: "/root/secret", Err: os.ErrPermission},
			wantCode:     usefulerror.ErrCodePermissionDenied,
			wantContains: "/root/secret",
		},
		{
			name:         "ContextTimeout",
			inputError:   context.DeadlineExceeded,
			wantCode:     usefulerror.ErrCodeTimeout,
			wantContains: "timed out",
		},
		{
			name:         "ContextCanceled",
			inputError:   context.Canceled,
			wantCode:     usefulerror.ErrCodeCanceled,
			wantContains: "canceled",
		},
		{
			name:       "UnexpectedEOF",
			inputError: io.ErrUnexpectedEOF,
			wantCode:   usefulerror.ErrCodeUnexpectedEOF,
		},
		{
			name:       "WrappedError",
			inputError: fmt.Errorf("failed to read config: %w", os.ErrNotExist),
			wantCode:   usefulerror.ErrCodeNotFound,
		},
		{
			name:           "UnknownError",
			inputError:     errors.New("some unknown error"),
			wantCode:       usefulerror.ErrCodeUnknown,
			wantHumanError: "some unknown error",
		},
		{
			name:       "Nil",
			inputError: nil,
			wantNil:    true,
		},
		{
			name:       "NetworkErrorMessage",
			inputError: errors.New("connection refused"),
			wantCode:   usefulerror.ErrCodeNetwork,
		},
		{
			name:           "TransactionError",
			inputError:     &transaction.Error{Code: usefulerror.ErrCodeNothingToDo, Message: "nothing to do"},
			wantCode:       usefulerror.ErrCodeNothingToDo,
			wantHumanError: "nothing to do",
		},
		{
			name:       "AgentMagicMismatch",
			inputError: &agent.HeaderError{ExitCode: agent.ExitMagicMismatch, Message: "magic number mismatch"},
			wantCode:   usefulerror.ErrCodeAgentMagicMismatch,
		},
		{
			name:       "AgentVersionMismatch",
			inputError: &agent.HeaderError{ExitCode: agent.ExitVersionMismatch, Message: "version mismatch"},
			wantCode:   usefulerror.ErrCodeAgentVersionMismatch,
		},
		{
			name:       "AgentParamsUnavailable",
			inputError: &agent.HeaderError{ExitCode: agent.ExitParamsUnavailable, Message: "missing params"},
			wantCode:   usefulerror.ErrCodeAgentParamsMissing,
		},
		{
			name:       "AgentDeserializationFailed",
			inputError: &agent.HeaderError{ExitCode: agent.ExitDeserializationFailed, Message: "bad gob"},
			wantCode:   usefulerror.ErrCodeAgentDeserialize,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToUseful(tt.inputError)

			if tt.wantNil {
				assert.Nil(t, result)
				return
			}

			assert.NotNil(t, result)
			assert.Equal(t, tt.wantCode, result.Code())

			if tt.wantHumanError != "" {
				assert.Equal(t, tt.wantHumanError, result.HumanError())
			}

			if tt.wantContains != "" {
				assert.Contains(t, result.HumanError(), tt.wantContains)
			}
		})
	}
}

func TestExtractPath(t *testing.T) {
	tests := []struct {
		name     string
		inputErr error
		wantPath string
	}{
		{
			name:     "PathError",
			inputErr: &fs.PathError{Op: "open", Path: "/some/path", Err: os.ErrNotExist},
			wantPath: "/some/path",
		},
		{
			name:     "LinkError",
			inputErr: &os.LinkError{Op: "link", Old: "/old/path", New: "/new/path", Err: os.ErrPermission},
			wantPath: "/old/path",
		},
		{
			name:     "generic error",
			inputErr: errors.New("some error"),
			wantPath: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPath, extractPath(tt.inputErr))
		})
	}
}
