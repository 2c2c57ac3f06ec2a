// Package remote is the call surface of the remote compute service.
//
// Every component of the SDK receives a Client explicitly, there is no global client.
// Streaming operations (output retrieval) return the batches already decoded into
// model.OutputBatch values, so nothing downstream inspects wire messages.
package remote

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/slok/rsbx/internal/model"
)

//go:generate mockery --case underscore --output remotemock --outpkg remotemock --name Client

// Client is the remote compute service call primitive.
//
// Output retrieval calls return the batches received before the call ended. If the
// call ended with an error, both the batches received so far and the error are
// returned, so callers can keep the progress.
type Client interface {
	AppGetOrCreate(ctx context.Context, req AppGetOrCreateRequest) (*AppGetOrCreateResponse, error)
	SecretGetOrCreate(ctx context.Context, req SecretGetOrCreateRequest) (*SecretGetOrCreateResponse, error)

	SandboxCreate(ctx context.Context, req SandboxCreateRequest) (*SandboxCreateResponse, error)
	SandboxGetTaskID(ctx context.Context, req SandboxGetTaskIDRequest) (*SandboxGetTaskIDResponse, error)
	SandboxTerminate(ctx context.Context, req SandboxTerminateRequest) error
	SandboxWait(ctx context.Context, req SandboxWaitRequest) (*SandboxWaitResponse, error)
	SandboxGetTunnels(ctx context.Context, req SandboxGetTunnelsRequest) (*SandboxGetTunnelsResponse, error)
	SandboxGetLogs(ctx context.Context, req SandboxGetLogsRequest) ([]model.OutputBatch, error)
	SandboxStdinWrite(ctx context.Context, req SandboxStdinWriteRequest) error

	ContainerExec(ctx context.Context, req ContainerExecRequest) (*ContainerExecResponse, error)
	ContainerExecGetOutput(ctx context.Context, req ContainerExecGetOutputRequest) ([]model.OutputBatch, error)
	ContainerExecPutInput(ctx context.Context, req ContainerExecPutInputRequest) error
	ContainerExecWait(ctx context.Context, req ContainerExecWaitRequest) (*ContainerExecWaitResponse, error)

	ContainerFilesystemExec(ctx context.Context, req FilesystemExecRequest) (*FilesystemExecResponse, error)
	ContainerFilesystemExecGetOutput(ctx context.Context, req FilesystemExecGetOutputRequest) ([]model.OutputBatch, error)

	ImageGetOrCreate(ctx context.Context, req ImageGetOrCreateRequest) (*ImageGetOrCreateResponse, error)
	ImageJoinStreaming(ctx context.Context, req ImageJoinStreamingRequest) (*ImageJoinStreamingResponse, error)

	BlobCreate(ctx context.Context, req BlobCreateRequest) (*BlobCreateResponse, error)
	BlobGet(ctx context.Context, req BlobGetRequest) (*BlobGetResponse, error)
}

// IsDeadlineExceeded returns true if the call failed because its deadline expired.
// These are the only transport errors recovered locally by polling loops.
func IsDeadlineExceeded(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return status.Code(err) == codes.DeadlineExceeded
}

// Code returns the transport status code of the error.
func Code(err error) codes.Code {
	return status.Code(err)
}

// IsNotFound returns true if the service reported the resource doesn't exist.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// IsAlreadyExists returns true if the service reported the resource already exists.
func IsAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}
