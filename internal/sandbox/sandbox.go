// Package sandbox manages remote sandboxes: their lifecycle, the commands executed in
// them, their filesystem, stdio and tunnels.
package sandbox

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/slok/rsbx/internal/fs"
	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/poll"
	"github.com/slok/rsbx/internal/process"
	"github.com/slok/rsbx/internal/remote"
)

// Config is the configuration of a sandbox handle.
type Config struct {
	Client    remote.Client
	SandboxID string
	// Stream tunes the stdio output retrieval of the sandbox and its processes.
	Stream process.StreamConfig
	// FSPolicies overrides the filesystem retry policies by operation.
	FSPolicies map[remote.FilesystemOp]fs.Policy
	// WaitCallTimeout and WaitInterval tune Wait.
	WaitCallTimeout time.Duration
	WaitInterval    time.Duration
	// PollTimeout is the timeout of the single wait call made by Poll.
	PollTimeout time.Duration
	// TunnelsTimeout is the default tunnel wait used when Tunnels gets no timeout.
	TunnelsTimeout time.Duration
	// MaxWait bounds Wait, zero waits until the context ends.
	MaxWait time.Duration
	Logger  log.Logger
}

func (c *Config) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}

	if c.SandboxID == "" {
		return fmt.Errorf("sandbox id is required: %w", model.ErrNotValid)
	}

	if c.WaitCallTimeout <= 0 {
		c.WaitCallTimeout = 55 * time.Second
	}

	if c.WaitInterval <= 0 {
		c.WaitInterval = time.Second
	}

	if c.PollTimeout <= 0 {
		c.PollTimeout = time.Second
	}

	if c.TunnelsTimeout <= 0 {
		c.TunnelsTimeout = 50 * time.Second
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "sandbox.Sandbox", "sandbox-id": c.SandboxID})

	return nil
}

// Sandbox is a handle to a remote sandbox.
//
// The task id, the exit code and the tunnels are resolved once and cached.
type Sandbox struct {
	cfg    Config
	client remote.Client
	id     string
	poller *poll.Poller
	logger log.Logger

	mu      sync.Mutex
	taskID  string
	fsys    *fs.Filesystem
	stdio   *process.SandboxStdio
	result  *model.OperationResult
	tunnels map[int]model.Tunnel
}

// New returns a handle to an existing sandbox.
func New(cfg Config) (*Sandbox, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	poller, err := poll.New(poll.Config{
		Kind:        model.OperationKindSandbox,
		Operation:   "sandbox wait",
		ID:          cfg.SandboxID,
		CallTimeout: cfg.WaitCallTimeout,
		Interval:    cfg.WaitInterval,
		MaxWait:     cfg.MaxWait,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Sandbox{
		cfg:    cfg,
		client: cfg.Client,
		id:     cfg.SandboxID,
		poller: poller,
		logger: cfg.Logger,
	}, nil
}

// Create creates a new sandbox in an app and returns its handle. The handle
// configuration sandbox id is ignored.
func Create(ctx context.Context, cfg Config, sbCfg model.SandboxConfig) (*Sandbox, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("invalid configuration: remote client is required")
	}

	sbCfg.Defaults()
	err := sbCfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid sandbox configuration: %w", err)
	}

	resp, err := cfg.Client.SandboxCreate(ctx, remote.SandboxCreateRequest{AppID: sbCfg.AppID, Config: sbCfg})
	if err != nil {
		return nil, fmt.Errorf("could not create sandbox: %w", err)
	}

	cfg.SandboxID = resp.SandboxID
	sb, err := New(cfg)
	if err != nil {
		return nil, err
	}
	sb.logger.Debugf("sandbox created with image %s", sbCfg.ImageID)

	return sb, nil
}

// ID returns the sandbox id.
func (s *Sandbox) ID() string { return s.id }

// TaskID returns the id of the task running the sandbox, waiting until the sandbox is
// ready.
func (s *Sandbox) TaskID(ctx context.Context) (string, error) {
	s.mu.Lock()
	taskID := s.taskID
	s.mu.Unlock()
	if taskID != "" {
		return taskID, nil
	}

	resp, err := s.client.SandboxGetTaskID(ctx, remote.SandboxGetTaskIDRequest{SandboxID: s.id, WaitUntilReady: true})
	if err != nil {
		return "", fmt.Errorf("could not get sandbox %s task id: %w", s.id, err)
	}

	if resp.TaskID == "" {
		if resp.TaskResult.IsTerminal() {
			return "", fmt.Errorf("sandbox %s does not have a task id, it finished with status %s: %w", s.id, resp.TaskResult.Status, model.ErrPrecondition)
		}
		return "", fmt.Errorf("sandbox %s does not have a task id, it may not be running: %w", s.id, model.ErrPrecondition)
	}

	s.mu.Lock()
	s.taskID = resp.TaskID
	s.mu.Unlock()

	return resp.TaskID, nil
}

// Exec executes a command in the sandbox.
func (s *Sandbox) Exec(ctx context.Context, command []string, opts model.ExecOpts) (*process.ContainerProcess, error) {
	err := process.ValidateCommand(command)
	if err != nil {
		return nil, err
	}

	taskID, err := s.TaskID(ctx)
	if err != nil {
		return nil, err
	}

	return process.Exec(ctx, process.ExecConfig{
		Client:          s.client,
		TaskID:          taskID,
		Command:         command,
		Opts:            opts,
		Stream:          s.cfg.Stream,
		WaitCallTimeout: s.cfg.WaitCallTimeout,
		WaitInterval:    s.cfg.WaitInterval,
		PollTimeout:     s.cfg.PollTimeout,
		Logger:          s.logger,
	})
}

// Filesystem returns the filesystem of the sandbox.
func (s *Sandbox) Filesystem(ctx context.Context) (*fs.Filesystem, error) {
	s.mu.Lock()
	fsys := s.fsys
	s.mu.Unlock()
	if fsys != nil {
		return fsys, nil
	}

	taskID, err := s.TaskID(ctx)
	if err != nil {
		return nil, err
	}

	fsys, err = fs.New(fs.Config{
		Client:   s.client,
		TaskID:   taskID,
		Policies: s.cfg.FSPolicies,
		Logger:   s.logger,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fsys == nil {
		s.fsys = fsys
	}

	return s.fsys, nil
}

// Open opens a file in the sandbox.
func (s *Sandbox) Open(ctx context.Context, path, mode string) (*fs.File, error) {
	fsys, err := s.Filesystem(ctx)
	if err != nil {
		return nil, err
	}
	return fsys.Open(ctx, path, mode)
}

// Ls lists the entries of a sandbox directory.
func (s *Sandbox) Ls(ctx context.Context, path string) ([]string, error) {
	fsys, err := s.Filesystem(ctx)
	if err != nil {
		return nil, err
	}
	return fsys.Ls(ctx, path)
}

// Mkdir creates a sandbox directory.
func (s *Sandbox) Mkdir(ctx context.Context, path string, parents bool) error {
	fsys, err := s.Filesystem(ctx)
	if err != nil {
		return err
	}
	return fsys.Mkdir(ctx, path, parents)
}

// Rm removes a sandbox file or directory.
func (s *Sandbox) Rm(ctx context.Context, path string, recursive bool) error {
	fsys, err := s.Filesystem(ctx)
	if err != nil {
		return err
	}
	return fsys.Rm(ctx, path, recursive)
}

// Watch watches a sandbox path in the background.
func (s *Sandbox) Watch(ctx context.Context, path string, opts fs.WatchOpts) (*fs.Watch, error) {
	fsys, err := s.Filesystem(ctx)
	if err != nil {
		return nil, err
	}
	return fsys.Watch(ctx, path, opts)
}

// WatchEvents watches a sandbox path until the watch ends and returns the events.
func (s *Sandbox) WatchEvents(ctx context.Context, path string, opts fs.WatchOpts) ([]model.FileWatchEvent, error) {
	fsys, err := s.Filesystem(ctx)
	if err != nil {
		return nil, err
	}
	return fsys.WatchEvents(ctx, path, opts)
}

// Stdio returns the stdio of the sandbox entrypoint. The same streams are returned on
// every call so their io methods aren't bound to ctx, cancellable reads use Next or CopyTo.
func (s *Sandbox) Stdio(ctx context.Context) (*process.SandboxStdio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdio != nil {
		return s.stdio, nil
	}

	stdio, err := process.NewSandboxStdio(context.WithoutCancel(ctx), s.client, s.id, s.cfg.Stream, s.logger)
	if err != nil {
		return nil, err
	}
	s.stdio = stdio

	return stdio, nil
}

// Wait blocks until the sandbox finishes and returns its return code. Non successful
// sandboxes return their return code together with the status error.
func (s *Sandbox) Wait(ctx context.Context) (int, error) {
	if res := s.cachedResult(); res != nil {
		return *res.ReturnCode(), s.checkResult(res)
	}

	res, err := s.poller.Repoll(ctx, func(ctx context.Context, timeout time.Duration) (*model.OperationResult, error) {
		resp, err := s.client.SandboxWait(ctx, remote.SandboxWaitRequest{SandboxID: s.id, Timeout: timeout})
		if err != nil {
			return nil, err
		}
		return resp.Result, nil
	})
	if err != nil {
		return 0, fmt.Errorf("could not wait for sandbox %s: %w", s.id, err)
	}

	res = s.complete(res)
	return *res.ReturnCode(), s.checkResult(res)
}

// Poll checks once if the sandbox finished and returns its return code, nil while
// running.
func (s *Sandbox) Poll(ctx context.Context) (*int, error) {
	if res := s.cachedResult(); res != nil {
		return res.ReturnCode(), nil
	}

	resp, err := s.client.SandboxWait(ctx, remote.SandboxWaitRequest{SandboxID: s.id, Timeout: s.cfg.PollTimeout})
	if err != nil {
		// The short wait expired, the sandbox is still running.
		if remote.IsDeadlineExceeded(err) && ctx.Err() == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("could not poll sandbox %s: %w", s.id, err)
	}
	if !resp.Result.IsTerminal() {
		return nil, nil
	}

	return s.complete(resp.Result).ReturnCode(), nil
}

// ReturnCode returns the return code of the sandbox if it finished, nil while running.
func (s *Sandbox) ReturnCode(ctx context.Context) (*int, error) {
	return s.Poll(ctx)
}

// Result returns the terminal result of the sandbox once Wait or Poll observed it, nil
// before.
func (s *Sandbox) Result() *model.OperationResult {
	return s.cachedResult()
}

func (s *Sandbox) cachedResult() *model.OperationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Sandbox) complete(res *model.OperationResult) *model.OperationResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		s.result = res
		s.logger.Debugf("sandbox finished with status %s", res.Status)
	}

	return s.result
}

func (s *Sandbox) checkResult(res *model.OperationResult) error {
	return poll.CheckResult(model.OperationKindSandbox, "sandbox", s.id, res)
}

// Tunnels returns the tunnels of the sandbox ports by container port, waiting up to
// timeout for them to be ready. Zero timeout uses the configured default.
func (s *Sandbox) Tunnels(ctx context.Context, timeout time.Duration) (map[int]model.Tunnel, error) {
	s.mu.Lock()
	cached := s.tunnels
	s.mu.Unlock()
	if cached != nil {
		return maps.Clone(cached), nil
	}

	if timeout <= 0 {
		timeout = s.cfg.TunnelsTimeout
	}

	resp, err := s.client.SandboxGetTunnels(ctx, remote.SandboxGetTunnelsRequest{SandboxID: s.id, Timeout: timeout})
	if err != nil {
		if remote.IsDeadlineExceeded(err) && ctx.Err() == nil {
			return nil, fmt.Errorf("sandbox %s tunnels not ready after %s: %w", s.id, timeout, model.ErrTimeout)
		}
		return nil, fmt.Errorf("could not get sandbox %s tunnels: %w", s.id, err)
	}

	if resp.Result != nil && resp.Result.Status == model.GenericStatusTimeout {
		return nil, fmt.Errorf("sandbox %s tunnels not ready after %s: %w", s.id, timeout, model.ErrTimeout)
	}

	tunnels := make(map[int]model.Tunnel, len(resp.Tunnels))
	for _, t := range resp.Tunnels {
		tunnels[t.ContainerPort] = model.Tunnel{
			Host:            t.Host,
			Port:            t.Port,
			UnencryptedHost: t.UnencryptedHost,
			UnencryptedPort: t.UnencryptedPort,
		}
	}

	s.mu.Lock()
	s.tunnels = tunnels
	s.mu.Unlock()

	return maps.Clone(tunnels), nil
}

// Terminate terminates the sandbox.
func (s *Sandbox) Terminate(ctx context.Context) error {
	err := s.client.SandboxTerminate(ctx, remote.SandboxTerminateRequest{SandboxID: s.id})
	if err != nil {
		return fmt.Errorf("could not terminate sandbox %s: %w", s.id, err)
	}
	s.logger.Debugf("sandbox terminated")

	return nil
}
