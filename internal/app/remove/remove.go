package remove

import (
	"context"
	"fmt"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/sandbox"
	"github.com/slok/rsbx/internal/storage"
)

// ServiceConfig is the configuration for the remove service.
type ServiceConfig struct {
	Client     remote.Client
	Repository storage.Repository
	Logger     log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Remove"})
	return nil
}

// Service removes sandboxes from the local registry.
type Service struct {
	client remote.Client
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new remove service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		client: cfg.Client,
		repo:   cfg.Repository,
		logger: cfg.Logger,
	}, nil
}

// Request represents the remove request parameters.
type Request struct {
	// Ref is the sandbox name or id to remove.
	Ref string
	// Force terminates a running sandbox before removal.
	Force bool
}

// Run removes a sandbox record by name or id.
// If the sandbox is running and Force is false, it returns an error.
// If Force is true, it terminates the sandbox first then removes it.
func (s *Service) Run(ctx context.Context, req Request) (*model.SandboxRecord, error) {
	s.logger.Debugf("removing sandbox: %s (force: %v)", req.Ref, req.Force)

	rec, err := storage.GetSandboxByRef(ctx, s.repo, req.Ref)
	if err != nil {
		return nil, err
	}

	if rec.Status == model.SandboxStatusRunning {
		if !req.Force {
			return nil, fmt.Errorf("cannot remove running sandbox without --force: %w", model.ErrNotValid)
		}

		s.logger.Infof("force removing running sandbox, terminating first: %s", rec.ID)
		sb, err := sandbox.New(sandbox.Config{Client: s.client, SandboxID: rec.ID, Logger: s.logger})
		if err != nil {
			return nil, err
		}
		// Best effort, the record goes away anyway.
		if err := sb.Terminate(ctx); err != nil {
			s.logger.Warningf("Could not terminate sandbox %s: %s", rec.ID, err)
		}
	}

	if err := s.repo.DeleteSandbox(ctx, rec.ID); err != nil {
		return nil, fmt.Errorf("could not delete sandbox from repository: %w", err)
	}

	s.logger.Infof("removed sandbox: %s (ID: %s)", rec.Name, rec.ID)
	return rec, nil
}
