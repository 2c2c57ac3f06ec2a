// Package fs runs filesystem operations inside a remote container.
//
// Every operation is one filesystem exec call. Inline answers are used right away, deferred
// ones carry an exec id whose output is drained until the end of output.
package fs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slok/rsbx/internal/drain"
	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
)

// Policy is the output retrieval retry policy of an operation.
type Policy struct {
	MaxRetries    int
	CallTimeout   time.Duration
	RetryInterval time.Duration
}

// DefaultPolicies are the retry policies used by each operation.
var DefaultPolicies = map[remote.FilesystemOp]Policy{
	remote.FilesystemOpOpen:     {MaxRetries: 10, CallTimeout: 10 * time.Second, RetryInterval: 100 * time.Millisecond},
	remote.FilesystemOpRead:     {MaxRetries: 20, CallTimeout: 10 * time.Second, RetryInterval: 100 * time.Millisecond},
	remote.FilesystemOpReadLine: {MaxRetries: 20, CallTimeout: 10 * time.Second, RetryInterval: 100 * time.Millisecond},
	remote.FilesystemOpWrite:    {MaxRetries: 20, CallTimeout: 10 * time.Second, RetryInterval: 100 * time.Millisecond},
	remote.FilesystemOpSeek:     {MaxRetries: 10, CallTimeout: 10 * time.Second, RetryInterval: 100 * time.Millisecond},
	remote.FilesystemOpFlush:    {MaxRetries: 10, CallTimeout: 5 * time.Second, RetryInterval: 100 * time.Millisecond},
	remote.FilesystemOpClose:    {MaxRetries: 10, CallTimeout: 5 * time.Second, RetryInterval: 100 * time.Millisecond},
	remote.FilesystemOpLs:       {MaxRetries: 10, CallTimeout: 10 * time.Second, RetryInterval: 100 * time.Millisecond},
	remote.FilesystemOpMkdir:    {MaxRetries: 10, CallTimeout: 10 * time.Second, RetryInterval: 100 * time.Millisecond},
	remote.FilesystemOpRm:       {MaxRetries: 10, CallTimeout: 10 * time.Second, RetryInterval: 100 * time.Millisecond},
	remote.FilesystemOpWatch:    {MaxRetries: 10, CallTimeout: 30 * time.Second, RetryInterval: 500 * time.Millisecond},
}

// Config is the filesystem configuration.
type Config struct {
	Client remote.Client
	TaskID string
	// Policies overrides the default retry policies by operation.
	Policies map[remote.FilesystemOp]Policy
	Logger   log.Logger
}

func (c *Config) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}

	if c.TaskID == "" {
		return fmt.Errorf("task id is missing, the sandbox may not be running: %w", model.ErrPrecondition)
	}

	policies := make(map[remote.FilesystemOp]Policy, len(DefaultPolicies))
	for op, p := range DefaultPolicies {
		policies[op] = p
	}
	for op, p := range c.Policies {
		policies[op] = p
	}
	c.Policies = policies

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "fs.Filesystem", "task-id": c.TaskID})

	return nil
}

// Filesystem is the filesystem of a remote container task.
type Filesystem struct {
	client   remote.Client
	taskID   string
	policies map[remote.FilesystemOp]Policy
	logger   log.Logger
}

// New returns a new remote filesystem.
func New(cfg Config) (*Filesystem, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Filesystem{
		client:   cfg.Client,
		taskID:   cfg.TaskID,
		policies: cfg.Policies,
		logger:   cfg.Logger,
	}, nil
}

// exec runs the operation and returns the inline file descriptor or the drained output.
func (f *Filesystem) exec(ctx context.Context, req remote.FilesystemExecRequest) (inlineFD *string, output []byte, err error) {
	req.TaskID = f.taskID
	resp, err := f.client.ContainerFilesystemExec(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("could not start filesystem %s: %w", req.Op, err)
	}

	if resp.FileDescriptor != nil {
		return resp.FileDescriptor, nil, nil
	}

	d, err := f.drainer(req.Op, resp.ExecID)
	if err != nil {
		return nil, nil, err
	}

	out, err := d.Collect(ctx)
	if err != nil {
		return nil, nil, err
	}

	return nil, out, nil
}

func (f *Filesystem) drainer(op remote.FilesystemOp, execID string) (*drain.Drainer, error) {
	if execID == "" {
		return nil, fmt.Errorf("filesystem %s answer without exec id: %w", op, model.ErrNotValid)
	}

	p := f.policies[op]
	d, err := drain.New(drain.Config{
		Kind:          model.OperationKindFilesystem,
		Operation:     string(op),
		HandleID:      execID,
		MaxRetries:    p.MaxRetries,
		CallTimeout:   p.CallTimeout,
		RetryInterval: p.RetryInterval,
		Logger:        f.logger,
	}, func(ctx context.Context, _ model.OutputCursor, timeout time.Duration) ([]model.OutputBatch, error) {
		return f.client.ContainerFilesystemExecGetOutput(ctx, remote.FilesystemExecGetOutputRequest{
			ExecID:  execID,
			Timeout: timeout,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("could not create %s drainer: %w", op, err)
	}

	return d, nil
}

var validModes = map[string]bool{}

func init() {
	for _, base := range []string{"r", "w", "a", "x"} {
		for _, m := range []string{base, base + "b", base + "+", base + "b+", base + "+b"} {
			validModes[m] = true
		}
	}
}

// Open opens a file with a python like mode (`r`, `w`, `a`, `x` optionally with `b` and `+`).
func (f *Filesystem) Open(ctx context.Context, path, mode string) (*File, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required: %w", model.ErrNotValid)
	}
	if mode == "" {
		mode = "r"
	}
	if !validModes[mode] {
		return nil, fmt.Errorf("invalid file mode %q: %w", mode, model.ErrNotValid)
	}

	inlineFD, out, err := f.exec(ctx, remote.FilesystemExecRequest{
		Op:   remote.FilesystemOpOpen,
		Path: path,
		Mode: mode,
	})
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", path, err)
	}

	fd := strings.TrimSpace(string(out))
	if inlineFD != nil {
		fd = *inlineFD
	}
	if fd == "" {
		return nil, fmt.Errorf("open of %s returned no file descriptor: %w", path, model.ErrFilesystem)
	}

	return &File{fs: f, fd: fd, path: path}, nil
}

// Ls lists the entries of a directory.
func (f *Filesystem) Ls(ctx context.Context, path string) ([]string, error) {
	_, out, err := f.exec(ctx, remote.FilesystemExecRequest{
		Op:   remote.FilesystemOpLs,
		Path: path,
	})
	if err != nil {
		return nil, fmt.Errorf("could not list %s: %w", path, err)
	}

	entries := []string{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		entries = append(entries, line)
	}

	return entries, nil
}

// Mkdir creates a directory, with parents it creates the missing parent directories.
func (f *Filesystem) Mkdir(ctx context.Context, path string, parents bool) error {
	_, _, err := f.exec(ctx, remote.FilesystemExecRequest{
		Op:          remote.FilesystemOpMkdir,
		Path:        path,
		MakeParents: parents,
	})
	if err != nil {
		return fmt.Errorf("could not create directory %s: %w", path, err)
	}

	return nil
}

// Rm removes a file or a directory, directories with contents need recursive.
func (f *Filesystem) Rm(ctx context.Context, path string, recursive bool) error {
	_, _, err := f.exec(ctx, remote.FilesystemExecRequest{
		Op:        remote.FilesystemOpRm,
		Path:      path,
		Recursive: recursive,
	})
	if err != nil {
		return fmt.Errorf("could not remove %s: %w", path, err)
	}

	return nil
}
