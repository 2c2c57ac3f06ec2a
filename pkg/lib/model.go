package lib

import (
	"io"
	"time"

	"github.com/slok/rsbx/internal/fs"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/process"
)

// Remote objects.
type (
	// App is a remote app, sandboxes and images belong to one.
	App = model.App
	// Secret is a remote secret, its values are injected as environment variables.
	Secret = model.Secret
	// Image is a built remote image.
	Image = model.Image
)

// Sandbox definition.
type (
	SandboxConfig = model.SandboxConfig
	Resources     = model.Resources
	PortSpec      = model.PortSpec
	TunnelType    = model.TunnelType
	// SandboxSpec is a declarative sandbox definition referencing its app, image and
	// secrets by name.
	SandboxSpec = model.SandboxSpec
	// ImageSource is where the image of a [SandboxSpec] comes from.
	ImageSource = model.ImageSource
)

const (
	TunnelTypeDefault = model.TunnelTypeDefault
	TunnelTypeH2      = model.TunnelTypeH2
)

// SandboxRecord is the local registry entry of a sandbox created by this client.
type SandboxRecord = model.SandboxRecord

// SandboxStatus is the status of a registered sandbox.
type SandboxStatus = model.SandboxStatus

const (
	SandboxStatusRunning    = model.SandboxStatusRunning
	SandboxStatusFinished   = model.SandboxStatusFinished
	SandboxStatusTerminated = model.SandboxStatusTerminated
)

// Operation results and values.
type (
	OperationResult    = model.OperationResult
	GenericStatus      = model.GenericStatus
	Tunnel             = model.Tunnel
	BlobDescriptor     = model.BlobDescriptor
	FileWatchEvent     = model.FileWatchEvent
	FileWatchEventType = model.FileWatchEventType
)

// Sandbox sessions, returned by the [Sandbox] methods.
type (
	// Process is a command running in a sandbox, with its stdio streams.
	Process = process.ContainerProcess
	// SandboxStdio is the stdio of the sandbox main command.
	SandboxStdio = process.SandboxStdio
	// File is an open file of a sandbox.
	File = fs.File
	// Watch is a running directory watch.
	Watch     = fs.Watch
	WatchOpts = fs.WatchOpts
	// ExecOptions are the low level options of [Sandbox.Exec].
	ExecOptions = model.ExecOpts
)

// LookupAppOpts configures app lookup.
//
// Pass nil to [Client.LookupApp] to look up an existing app in the client environment.
type LookupAppOpts struct {
	// CreateIfMissing creates the app when it doesn't exist.
	CreateIfMissing bool
	// Environment overrides the client environment.
	Environment string
}

// BuildImageOpts configures an image build. Exactly one of Registry, AWSECR, Dockerfile
// and DockerfileCommands must be set.
type BuildImageOpts struct {
	// Registry is a public registry image tag.
	Registry string
	// AWSECR is an AWS ECR image tag, pulled with the AWSSecret credentials.
	AWSECR    string
	AWSSecret *Secret
	// Dockerfile is a local Dockerfile path.
	Dockerfile string
	// DockerfileCommands are Dockerfile instructions.
	DockerfileCommands []string
	// Force ignores the cached images.
	Force     bool
	SecretIDs []string
}

// ListSandboxesOpts configures sandbox listing.
//
// Pass nil to [Client.ListSandboxes] to list all registered sandboxes.
type ListSandboxesOpts struct {
	// Status filters the sandboxes by status.
	Status *SandboxStatus
	// Refresh asks the service for the status of the running sandboxes first.
	Refresh bool
}

// ExecOpts configures [Client.Exec].
//
// Pass nil to use defaults (sandbox workdir, no timeout, discarded output).
type ExecOpts struct {
	// WorkingDir is the directory to run the command in.
	WorkingDir string
	// Timeout bounds the command runtime on the remote side, rounded to seconds.
	Timeout time.Duration
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
}

// ExecResult is the result of a command execution.
type ExecResult struct {
	ExitCode int
}

// SandboxState is the refreshed state of a registered sandbox.
type SandboxState struct {
	Record SandboxRecord
	// ReturnCode is set once the sandbox finished.
	ReturnCode *int
}
