// Package process runs commands in remote containers and streams their stdio.
package process

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/slok/rsbx/internal/drain"
	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/poll"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/stream"
)

// argMaxBytes is the maximum size of the command arguments accepted by the remote exec.
const argMaxBytes = 1 << 16

// ValidateCommand checks the command can be executed remotely.
func ValidateCommand(command []string) error {
	if len(command) == 0 {
		return fmt.Errorf("command is required: %w", model.ErrNotValid)
	}

	total := 0
	for _, arg := range command {
		total += len(arg)
	}
	if total > argMaxBytes {
		return fmt.Errorf("total length of command arguments must be less than %d bytes, got %d bytes: %w", argMaxBytes, total, model.ErrNotValid)
	}

	return nil
}

// StreamConfig tunes the output retrieval of process stdio.
type StreamConfig struct {
	CallTimeout   time.Duration
	MaxRetries    int
	RetryInterval time.Duration
}

func (c *StreamConfig) defaults() {
	if c.CallTimeout <= 0 {
		c.CallTimeout = 55 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 10
	}
}

// ExecConfig is the configuration to execute a command in a container.
type ExecConfig struct {
	Client  remote.Client
	TaskID  string
	Command []string
	Opts    model.ExecOpts
	Stream  StreamConfig
	// WaitCallTimeout and WaitInterval tune Wait.
	WaitCallTimeout time.Duration
	WaitInterval    time.Duration
	// PollTimeout is the timeout of the single wait call made by Poll.
	PollTimeout time.Duration
	Logger      log.Logger
}

func (c *ExecConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}

	if c.TaskID == "" {
		return fmt.Errorf("task id is missing, the sandbox may not be running: %w", model.ErrPrecondition)
	}

	err := ValidateCommand(c.Command)
	if err != nil {
		return err
	}

	if c.Opts.TimeoutSecs < 0 {
		return fmt.Errorf("timeout must be non-negative, got %d: %w", c.Opts.TimeoutSecs, model.ErrNotValid)
	}

	c.Stream.defaults()

	if c.WaitCallTimeout <= 0 {
		c.WaitCallTimeout = 55 * time.Second
	}

	if c.WaitInterval <= 0 {
		c.WaitInterval = time.Second
	}

	if c.PollTimeout <= 0 {
		c.PollTimeout = time.Second
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// ContainerProcess is a command running in a container.
//
// Stdin, Stdout and Stderr are independent and can be used from different goroutines.
type ContainerProcess struct {
	Stdin  *stream.Writer
	Stdout *stream.Reader
	Stderr *stream.Reader

	handle      model.ExecHandle
	client      remote.Client
	poller      *poll.Poller
	pollTimeout time.Duration
	logger      log.Logger

	mu       sync.Mutex
	exitCode *int
}

// Exec starts the command and returns the running process. The io methods of the process
// streams are bound to ctx, once cancelled they fail and the streams can be resumed with
// the context aware methods.
func Exec(ctx context.Context, cfg ExecConfig) (*ContainerProcess, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	resp, err := cfg.Client.ContainerExec(ctx, remote.ContainerExecRequest{
		TaskID:      cfg.TaskID,
		Command:     cfg.Command,
		Workdir:     cfg.Opts.WorkingDir,
		TimeoutSecs: cfg.Opts.TimeoutSecs,
	})
	if err != nil {
		return nil, fmt.Errorf("could not start exec: %w", err)
	}

	handle := model.ExecHandle{ID: resp.ExecID, Kind: model.HandleKindProcess, OwnerID: cfg.TaskID}
	logger := cfg.Logger.WithValues(log.Kv{"svc": "process.ContainerProcess", "exec-id": handle.ID})

	poller, err := poll.New(poll.Config{
		Kind:        model.OperationKindExec,
		Operation:   "wait",
		ID:          handle.ID,
		CallTimeout: cfg.WaitCallTimeout,
		Interval:    cfg.WaitInterval,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	stdout, err := newExecOutputReader(ctx, cfg.Client, handle, model.FileDescriptorStdout, cfg.Stream, logger)
	if err != nil {
		return nil, err
	}
	stderr, err := newExecOutputReader(ctx, cfg.Client, handle, model.FileDescriptorStderr, cfg.Stream, logger)
	if err != nil {
		return nil, err
	}

	logger.Debugf("process started: %v", cfg.Command)

	return &ContainerProcess{
		Stdin:       newExecInputWriter(ctx, cfg.Client, handle),
		Stdout:      stdout,
		Stderr:      stderr,
		handle:      handle,
		client:      cfg.Client,
		poller:      poller,
		pollTimeout: cfg.PollTimeout,
		logger:      logger,
	}, nil
}

// Handle returns the exec handle of the process.
func (p *ContainerProcess) Handle() model.ExecHandle { return p.handle }

// Wait blocks until the process exits and returns its exit code.
func (p *ContainerProcess) Wait(ctx context.Context) (int, error) {
	if code := p.cached(); code != nil {
		return *code, nil
	}

	res, err := p.poller.Repoll(ctx, func(ctx context.Context, timeout time.Duration) (*model.OperationResult, error) {
		return p.waitCall(ctx, timeout)
	})
	if err != nil {
		return 0, fmt.Errorf("could not wait for process %s: %w", p.handle.ID, err)
	}

	return *p.complete(res.ExitCode), nil
}

// Poll checks once if the process exited and returns its exit code, nil while running.
func (p *ContainerProcess) Poll(ctx context.Context) (*int, error) {
	if code := p.cached(); code != nil {
		return code, nil
	}

	res, err := p.waitCall(ctx, p.pollTimeout)
	if err != nil {
		// The short wait expired, the process is still running.
		if remote.IsDeadlineExceeded(err) && ctx.Err() == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("could not poll process %s: %w", p.handle.ID, err)
	}
	if res == nil {
		return nil, nil
	}

	return p.complete(res.ExitCode), nil
}

// ReturnCode returns the exit code of the process if it has exited, nil while running.
func (p *ContainerProcess) ReturnCode(ctx context.Context) (*int, error) {
	return p.Poll(ctx)
}

func (p *ContainerProcess) waitCall(ctx context.Context, timeout time.Duration) (*model.OperationResult, error) {
	resp, err := p.client.ContainerExecWait(ctx, remote.ContainerExecWaitRequest{ExecID: p.handle.ID, Timeout: timeout})
	if err != nil {
		return nil, err
	}
	if !resp.Completed {
		return nil, nil
	}

	return &model.OperationResult{Status: model.GenericStatusSuccess, ExitCode: resp.ExitCode}, nil
}

func (p *ContainerProcess) cached() *int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.exitCode == nil {
		return nil
	}
	code := *p.exitCode
	return &code
}

// complete caches the exit code, a completed process without code exited with 0.
func (p *ContainerProcess) complete(exitCode *int) *int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.exitCode == nil {
		code := 0
		if exitCode != nil {
			code = *exitCode
		}
		p.exitCode = &code
		p.logger.Debugf("process exited with %d", code)
	}

	code := *p.exitCode
	return &code
}

func newExecOutputReader(ctx context.Context, client remote.Client, h model.ExecHandle, fd model.FileDescriptor, cfg StreamConfig, logger log.Logger) (*stream.Reader, error) {
	d, err := drain.New(drain.Config{
		Kind:          model.OperationKindExec,
		Operation:     fd.String(),
		HandleID:      h.ID,
		MaxRetries:    cfg.MaxRetries,
		CallTimeout:   cfg.CallTimeout,
		RetryInterval: cfg.RetryInterval,
		Logger:        logger,
	}, func(ctx context.Context, cursor model.OutputCursor, timeout time.Duration) ([]model.OutputBatch, error) {
		batches, err := client.ContainerExecGetOutput(ctx, remote.ContainerExecGetOutputRequest{
			ExecID:         h.ID,
			FileDescriptor: fd,
			LastBatchIndex: cursor.LastBatchIndex,
			Timeout:        timeout,
		})
		// The batch with the exit code is the last one of the process output.
		for i := range batches {
			if batches[i].ExitCode != nil {
				batches[i].EOF = true
			}
		}
		return batches, err
	})
	if err != nil {
		return nil, fmt.Errorf("could not create %s drainer: %w", fd, err)
	}

	return stream.NewReader(ctx, d), nil
}

func newExecInputWriter(ctx context.Context, client remote.Client, h model.ExecHandle) *stream.Writer {
	return stream.NewWriter(ctx, func(ctx context.Context, data []byte, index uint64, eof bool) error {
		return client.ContainerExecPutInput(ctx, remote.ContainerExecPutInputRequest{
			ExecID:       h.ID,
			Message:      data,
			MessageIndex: index,
			EOF:          eof,
		})
	})
}
