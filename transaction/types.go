// Package transaction implements pacwrap's per-container transaction
// state machine (spec.md §4.5), grounded on
// original_source/pacwrap-core/src/sync/transaction.rs and the
// prepare/stage/commit/uptodate sibling modules.
package transaction

import (
	"fmt"

	"github.com/pacwrap/pacwrap/usefulerror"
)

// Flags is the bitmask original_source calls TransactionFlags.
type Flags uint8

const (
	FlagNone           Flags = 0
	FlagTargetOnly     Flags = 1 << 0
	FlagPreview        Flags = 1 << 1
	FlagNoConfirm      Flags = 1 << 2
	FlagForceDatabase  Flags = 1 << 3
	FlagDatabaseOnly   Flags = 1 << 4
	FlagCreate         Flags = 1 << 5
	FlagFilesystemSync Flags = 1 << 6
)

func (f Flags) Has(bit Flags) bool { return f&bit != 0 }

// Type is the sum-type original_source expresses as
// TransactionType::Upgrade(bool,bool,bool)/Remove(bool,bool,bool).
type Type struct {
	Kind kind

	// Upgrade fields.
	Upgrade  bool
	Refresh  bool
	Force    bool

	// Remove fields.
	Enumerate bool
	Cascade   bool
	Explicit  bool
}

type kind int

const (
	KindUpgrade kind = iota
	KindRemove
)

func NewUpgrade(upgrade, refresh, force bool) Type {
	return Type{Kind: KindUpgrade, Upgrade: upgrade, Refresh: refresh, Force: force}
}

func NewRemove(enumerate, cascade, explicit bool) Type {
	return Type{Kind: KindRemove, Enumerate: enumerate, Cascade: cascade, Explicit: explicit}
}

func (t Type) IsRemove() bool { return t.Kind == KindRemove }

func (t Type) String() string {
	if t.IsRemove() {
		return "removal"
	}
	return "installation"
}

// Mode distinguishes a container's own (Local) package set from a
// dependency's (Foreign) package set during aggregation.
type Mode int

const (
	ModeLocal Mode = iota
	ModeForeign
)

func (m Mode) String() string {
	if m == ModeForeign {
		return "foreign"
	}
	return "resident"
}

// State is the per-container transaction state machine's cursor
// (spec.md §4.5's exact transition table).
type State int

const (
	StatePrepare State = iota
	StateUpToDate
	StatePrepareForeign
	StateStage
	StateStageForeign
	StateCommit
	StateCommitForeign
	StateComplete
)

// Error is the transaction package's sentinel error type, convertible
// to a usefulerror.UsefulError via AsUseful.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) AsUseful() usefulerror.UsefulError {
	return usefulerror.Useful().WithCode(e.Code).WithHumanError(e.Message).Msg(e.Message)
}

func errNothingToDo() error {
	return &Error{Code: usefulerror.ErrCodeNothingToDo, Message: "nothing to do"}
}

func errDependentMissing(name string) error {
	return &Error{Code: usefulerror.ErrCodeDependentContainerMissing, Message: fmt.Sprintf("dependent container %q is misconfigured or otherwise missing", name)}
}

func errTargetUpstream(name string) error {
	return &Error{Code: usefulerror.ErrCodeTargetUpstream, Message: fmt.Sprintf("target package %q: installed in upstream container", name)}
}

func errTargetNotInstalled(name string) error {
	return &Error{Code: usefulerror.ErrCodeTargetNotInstalled, Message: fmt.Sprintf("target package %q: not installed", name)}
}

func errTargetNotAvailable(name string) error {
	return &Error{Code: usefulerror.ErrCodeTargetNotAvailable, Message: fmt.Sprintf("target package %q: not available in sync databases", name)}
}

func errPreparation(msg string) error {
	return &Error{Code: usefulerror.ErrCodePreparationFailure, Message: "failure to prepare transaction: " + msg}
}

func errTransaction(msg string) error {
	return &Error{Code: usefulerror.ErrCodeTransactionFailure, Message: "failure to commit transaction: " + msg}
}

func errInitialization(msg string) error {
	return &Error{Code: usefulerror.ErrCodeInitializationFailure, Message: "failure to initialize transaction: " + msg}
}
