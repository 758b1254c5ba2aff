package usefulerror

// Standard error codes that can be re-used across the project.
// We will use a human friendly format for the error codes and not align with posix error codes.
// Keep this minimal. Reuse first before adding new ones.
const (
	ErrCodeInvalidArgument               = "InvalidArgument"
	ErrCodePermissionDenied              = "PermissionDenied"
	ErrCodeNotFound                      = "NotFound"
	ErrCodeTimeout                       = "Timeout"
	ErrCodeCanceled                      = "Canceled"
	ErrCodeUnexpectedEOF                 = "UnexpectedEOF"
	ErrCodeUnknown                       = "Unknown"
	ErrCodeLifecycle                     = "Lifecycle"
	ErrCodeNetwork                       = "Network"
	ErrCodePackageManagerExecutionFailed = "PackageManagerExecutionFailed"

	// Registry errors (spec.md §7 "Registry errors").
	ErrCodeInstanceNotFound     = "InstanceNotFound"
	ErrCodeDependencyNotFound   = "DependencyNotFound"
	ErrCodeAlreadyExists        = "AlreadyExists"

	// Configuration errors.
	ErrCodeInvalidConfig        = "InvalidConfig"
	ErrCodeBaseWithDependencies = "BaseWithDependencies"

	// Transaction errors.
	ErrCodeNothingToDo            = "NothingToDo"
	ErrCodeTargetNotAvailable     = "TargetNotAvailable"
	ErrCodeTargetNotInstalled     = "TargetNotInstalled"
	ErrCodeTargetUpstream         = "TargetUpstream"
	ErrCodeRecursionDepthExceeded = "RecursionDepthExceeded"
	ErrCodeDependentContainerMissing = "DependentContainerMissing"
	ErrCodePreparationFailure     = "PreparationFailure"
	ErrCodeTransactionFailure     = "TransactionFailure"
	ErrCodeInitializationFailure  = "InitializationFailure"

	// Agent protocol errors (spec.md §4.3 exit-code taxonomy).
	ErrCodeAgentParamsMissing  = "AgentParamsMissing"
	ErrCodeAgentDeserialize    = "AgentDeserializeFailure"
	ErrCodeAgentMagicMismatch  = "AgentMagicMismatch"
	ErrCodeAgentVersionMismatch = "AgentVersionMismatch"

	// Lock errors.
	ErrCodeLocked      = "Locked"
	ErrCodeNotAcquired = "NotAcquired"
)
