package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")

	// ErrTransport is returned when the remote call failed with a non retryable transport error.
	ErrTransport = errors.New("transport error")
	// ErrRemoteOperation is returned when the service reported the operation as failed.
	ErrRemoteOperation = errors.New("remote operation failed")
	// ErrTimeout is returned when an operation didn't reach a terminal state in time.
	ErrTimeout = errors.New("operation timed out")
	// ErrTerminated is returned when an operation was aborted by an external shutdown.
	ErrTerminated = errors.New("operation terminated")
	// ErrUnknownStatus is returned when the service reports a status the client doesn't know.
	ErrUnknownStatus = errors.New("unknown operation status")
	// ErrUnsupported is returned when the service asks for a capability the client lacks.
	ErrUnsupported = errors.New("unsupported")
	// ErrPrecondition is returned when an operation is attempted before its prerequisite state.
	ErrPrecondition = errors.New("precondition failed")
	// ErrMissingLocation is returned when the service doesn't provide a transfer location.
	ErrMissingLocation = errors.New("missing location")

	// ErrFilesystem marks errors from filesystem operations.
	ErrFilesystem = errors.New("filesystem error")
	// ErrExec marks errors from process execution operations.
	ErrExec = errors.New("exec error")
	// ErrBuild marks errors from image builds.
	ErrBuild = errors.New("image build error")
	// ErrBlob marks errors from blob transfers.
	ErrBlob = errors.New("blob error")
	// ErrSandbox marks errors from sandbox level operations.
	ErrSandbox = errors.New("sandbox error")
)

// OperationKind groups remote operations by their domain.
type OperationKind string

const (
	OperationKindFilesystem OperationKind = "filesystem"
	OperationKindExec       OperationKind = "exec"
	OperationKindBuild      OperationKind = "build"
	OperationKindBlob       OperationKind = "blob"
	OperationKindSandbox    OperationKind = "sandbox"
)

func (k OperationKind) sentinel() error {
	switch k {
	case OperationKindFilesystem:
		return ErrFilesystem
	case OperationKindExec:
		return ErrExec
	case OperationKindBuild:
		return ErrBuild
	case OperationKindBlob:
		return ErrBlob
	case OperationKindSandbox:
		return ErrSandbox
	}
	return nil
}

// OperationError is a failure reported by the remote service for an operation.
// The message is the one sent by the server, unmodified.
type OperationError struct {
	Kind    OperationKind
	Op      string
	ID      string
	Message string
}

func (e *OperationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s failed: %s", e.Kind, e.Op, e.Message)
	}
	return fmt.Sprintf("%s %s failed (%s): %s", e.Kind, e.Op, e.ID, e.Message)
}

func (e *OperationError) Is(target error) bool {
	return target == ErrRemoteOperation || (target != nil && target == e.Kind.sentinel())
}

// RetryExhaustedError is returned when the retry budget of a polling loop has been
// spent without reaching a terminal state.
type RetryExhaustedError struct {
	Kind     OperationKind
	Op       string
	ID       string
	Attempts int
	// Pending is true when the last attempt got an answer from the service that was not
	// terminal, false when the last attempt failed with a transport deadline.
	Pending bool
}

func (e *RetryExhaustedError) Error() string {
	reason := "deadline exceeded"
	if e.Pending {
		reason = "still pending"
	}
	return fmt.Sprintf("%s %s (%s) timed out after %d attempts: %s", e.Kind, e.Op, e.ID, e.Attempts, reason)
}

func (e *RetryExhaustedError) Is(target error) bool { return target == ErrTimeout }

// TerminalStatusError is returned when a long running operation finished with a non
// successful status.
type TerminalStatusError struct {
	Kind      OperationKind
	Op        string
	ID        string
	Status    GenericStatus
	Exception string
}

func (e *TerminalStatusError) Error() string {
	switch e.Status {
	case GenericStatusFailure:
		return fmt.Sprintf("%s for %s failed with exception:\n%s", e.Op, e.ID, e.Exception)
	case GenericStatusTerminated:
		return fmt.Sprintf("%s for %s terminated due to external shut-down, please try again", e.Op, e.ID)
	case GenericStatusTimeout:
		return fmt.Sprintf("%s for %s timed out, please try again with a larger timeout parameter", e.Op, e.ID)
	}
	return fmt.Sprintf("%s for %s failed with unknown status: %s", e.Op, e.ID, e.Status)
}

func (e *TerminalStatusError) Is(target error) bool {
	switch e.Status {
	case GenericStatusFailure:
		return target == ErrRemoteOperation || target == e.Kind.sentinel()
	case GenericStatusTerminated:
		return target == ErrTerminated
	case GenericStatusTimeout:
		return target == ErrTimeout
	}
	return target == ErrUnknownStatus
}
