package lib

import "github.com/slok/rsbx/internal/model"

// Errors returned by the SDK, match them with errors.Is.
var (
	// ErrNotFound is returned when a resource doesn't exist.
	ErrNotFound = model.ErrNotFound
	// ErrAlreadyExists is returned when a resource with the same name already exists.
	ErrAlreadyExists = model.ErrAlreadyExists
	// ErrNotValid is returned on invalid input or operations.
	ErrNotValid = model.ErrNotValid
	// ErrTimeout is returned when an operation didn't finish in time.
	ErrTimeout = model.ErrTimeout
	// ErrTerminated is returned when an operation was stopped by an external shutdown.
	ErrTerminated = model.ErrTerminated
	// ErrRemoteOperation is returned when the service reported the operation as failed.
	ErrRemoteOperation = model.ErrRemoteOperation
	// ErrPrecondition is returned when a sandbox is not in the state an operation needs.
	ErrPrecondition = model.ErrPrecondition

	// ErrFilesystem, ErrExec, ErrBuild, ErrBlob and ErrSandbox mark the failures of each
	// operation domain.
	ErrFilesystem = model.ErrFilesystem
	ErrExec       = model.ErrExec
	ErrBuild      = model.ErrBuild
	ErrBlob       = model.ErrBlob
	ErrSandbox    = model.ErrSandbox
)

// Typed errors, get them with errors.As.
type (
	OperationError      = model.OperationError
	RetryExhaustedError = model.RetryExhaustedError
	TerminalStatusError = model.TerminalStatusError
)
