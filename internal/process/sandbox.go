package process

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/rsbx/internal/drain"
	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/stream"
)

// SandboxStdio is the stdio of the sandbox entrypoint.
type SandboxStdio struct {
	Stdin  *stream.Writer
	Stdout *stream.Reader
	Stderr *stream.Reader
}

// NewSandboxStdio returns the stdio streams of a sandbox entrypoint. The output is read
// from the sandbox logs, resuming from the last received entry.
func NewSandboxStdio(ctx context.Context, client remote.Client, sandboxID string, cfg StreamConfig, logger log.Logger) (*SandboxStdio, error) {
	if client == nil {
		return nil, fmt.Errorf("remote client is required")
	}
	if sandboxID == "" {
		return nil, fmt.Errorf("sandbox id is required: %w", model.ErrNotValid)
	}
	cfg.defaults()
	if logger == nil {
		logger = log.Noop
	}
	logger = logger.WithValues(log.Kv{"svc": "process.SandboxStdio", "sandbox-id": sandboxID})

	stdout, err := newSandboxLogsReader(ctx, client, sandboxID, model.FileDescriptorStdout, cfg, logger)
	if err != nil {
		return nil, err
	}
	stderr, err := newSandboxLogsReader(ctx, client, sandboxID, model.FileDescriptorStderr, cfg, logger)
	if err != nil {
		return nil, err
	}

	stdin := stream.NewWriter(ctx, func(ctx context.Context, data []byte, index uint64, eof bool) error {
		return client.SandboxStdinWrite(ctx, remote.SandboxStdinWriteRequest{
			SandboxID: sandboxID,
			Input:     data,
			Index:     index,
			EOF:       eof,
		})
	})

	return &SandboxStdio{Stdin: stdin, Stdout: stdout, Stderr: stderr}, nil
}

func newSandboxLogsReader(ctx context.Context, client remote.Client, sandboxID string, fd model.FileDescriptor, cfg StreamConfig, logger log.Logger) (*stream.Reader, error) {
	d, err := drain.New(drain.Config{
		Kind:          model.OperationKindSandbox,
		Operation:     fd.String(),
		HandleID:      sandboxID,
		MaxRetries:    cfg.MaxRetries,
		CallTimeout:   cfg.CallTimeout,
		RetryInterval: cfg.RetryInterval,
		Logger:        logger,
	}, func(ctx context.Context, cursor model.OutputCursor, timeout time.Duration) ([]model.OutputBatch, error) {
		return client.SandboxGetLogs(ctx, remote.SandboxGetLogsRequest{
			SandboxID:      sandboxID,
			FileDescriptor: fd,
			LastEntryID:    cursor.LastEntryID,
			Timeout:        timeout,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("could not create %s drainer: %w", fd, err)
	}

	return stream.NewReader(ctx, d), nil
}
