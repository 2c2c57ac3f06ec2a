package model

// HandleKind is the kind of operation an exec handle names.
type HandleKind string

const (
	HandleKindProcess    HandleKind = "process"
	HandleKindFilesystem HandleKind = "filesystem"
)

// ExecHandle names one in-flight remote operation. It's only valid for the lifetime
// of that operation and never reused.
type ExecHandle struct {
	ID   string
	Kind HandleKind
	// OwnerID is the task or sandbox the operation runs in.
	OwnerID string
}

// FileDescriptor selects the stdio channel of a process.
type FileDescriptor int

const (
	FileDescriptorUnspecified FileDescriptor = 0
	FileDescriptorStdout      FileDescriptor = 1
	FileDescriptorStderr      FileDescriptor = 2
	FileDescriptorInfo        FileDescriptor = 3
)

func (f FileDescriptor) String() string {
	switch f {
	case FileDescriptorStdout:
		return "stdout"
	case FileDescriptorStderr:
		return "stderr"
	case FileDescriptorInfo:
		return "info"
	}
	return "unspecified"
}

// ExecOpts contains options for executing a command in a sandbox.
type ExecOpts struct {
	// WorkingDir is the directory to run the command in (optional).
	WorkingDir string
	// TimeoutSecs bounds the process runtime on the remote side, 0 means no timeout.
	TimeoutSecs int
}
