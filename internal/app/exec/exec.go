package exec

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/process"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/sandbox"
	"github.com/slok/rsbx/internal/storage"
)

// ServiceConfig is the configuration for the exec service.
type ServiceConfig struct {
	Client remote.Client
	// Repository resolves sandbox names to ids, optional.
	Repository storage.Repository
	// Sandbox is the base configuration of the sandbox handles.
	Sandbox sandbox.Config
	Logger  log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}
	c.Sandbox.Client = c.Client

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Sandbox.Logger = c.Logger
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Exec"})
	return nil
}

// Service handles command execution in sandboxes.
type Service struct {
	sbCfg  sandbox.Config
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new exec service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		sbCfg:  cfg.Sandbox,
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request contains the parameters for executing a command.
type Request struct {
	// Ref is the sandbox name or id.
	Ref     string
	Command []string
	Opts    model.ExecOpts
	// Stdin is sent to the process in the background and closed on EOF, optional. The
	// copy is abandoned when the process exits first.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes a command in a sandbox, forwards its output and returns its exit code.
func (s *Service) Run(ctx context.Context, req Request) (int, error) {
	if err := process.ValidateCommand(req.Command); err != nil {
		return 0, err
	}
	if req.Stdout == nil {
		req.Stdout = io.Discard
	}
	if req.Stderr == nil {
		req.Stderr = io.Discard
	}

	sandboxID, err := storage.ResolveSandboxID(ctx, s.repo, req.Ref)
	if err != nil {
		return 0, err
	}

	sbCfg := s.sbCfg
	sbCfg.SandboxID = sandboxID
	sb, err := sandbox.New(sbCfg)
	if err != nil {
		return 0, err
	}

	p, err := sb.Exec(ctx, req.Command, req.Opts)
	if err != nil {
		return 0, fmt.Errorf("could not execute command: %w", err)
	}
	logger := s.logger.WithValues(log.Kv{"sandbox-id": sandboxID, "exec-id": p.Handle().ID})

	if req.Stdin != nil {
		go func() {
			if _, err := io.Copy(p.Stdin, req.Stdin); err != nil {
				logger.Warningf("could not send stdin: %s", err)
			}
			if err := p.Stdin.Close(); err != nil {
				logger.Warningf("could not close stdin: %s", err)
			}
		}()
	}

	var (
		wg                   sync.WaitGroup
		stdoutErr, stderrErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, stdoutErr = p.Stdout.CopyTo(ctx, req.Stdout)
	}()
	go func() {
		defer wg.Done()
		_, stderrErr = p.Stderr.CopyTo(ctx, req.Stderr)
	}()
	wg.Wait()

	if stdoutErr != nil {
		return 0, fmt.Errorf("could not read stdout: %w", stdoutErr)
	}
	if stderrErr != nil {
		return 0, fmt.Errorf("could not read stderr: %w", stderrErr)
	}

	code, err := p.Wait(ctx)
	if err != nil {
		return 0, err
	}

	logger.Debugf("executed command: exit code %d", code)

	return code, nil
}
