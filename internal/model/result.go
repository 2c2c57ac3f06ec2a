package model

import "fmt"

// GenericStatus is the status of a remote long running operation.
type GenericStatus int

const (
	GenericStatusUnspecified GenericStatus = 0
	GenericStatusSuccess     GenericStatus = 1
	GenericStatusFailure     GenericStatus = 2
	GenericStatusTerminated  GenericStatus = 3
	GenericStatusTimeout     GenericStatus = 4
)

func (s GenericStatus) String() string {
	switch s {
	case GenericStatusUnspecified:
		return "unspecified"
	case GenericStatusSuccess:
		return "success"
	case GenericStatusFailure:
		return "failure"
	case GenericStatusTerminated:
		return "terminated"
	case GenericStatusTimeout:
		return "timeout"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// IsTerminal returns true for every status except unspecified.
func (s GenericStatus) IsTerminal() bool { return s != GenericStatusUnspecified }

// OperationResult is the result of a remote long running operation.
type OperationResult struct {
	Status GenericStatus
	// ExitCode is nil when the service didn't report one.
	ExitCode  *int
	Exception string
}

// IsTerminal returns true if the result ends polling. A nil result is not terminal.
func (r *OperationResult) IsTerminal() bool {
	return r != nil && r.Status.IsTerminal()
}

// ReturnCode converts a terminal result into a process like exit code, nil when the
// operation is still running. Timeouts and terminations map to the codes a shell uses
// for them (124 and 137).
func (r *OperationResult) ReturnCode() *int {
	if !r.IsTerminal() {
		return nil
	}

	var code int
	switch r.Status {
	case GenericStatusTimeout:
		code = 124
	case GenericStatusTerminated:
		code = 137
	default:
		if r.ExitCode != nil {
			code = *r.ExitCode
		}
	}

	return &code
}
