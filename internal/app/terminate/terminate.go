package terminate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/sandbox"
	"github.com/slok/rsbx/internal/storage"
)

// ServiceConfig is the configuration for the terminate service.
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
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Terminate"})
	return nil
}

// Service terminates sandboxes.
type Service struct {
	client remote.Client
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new terminate service.
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

// Request represents the terminate request parameters.
type Request struct {
	// Ref is the sandbox name or id. Unregistered references are used as sandbox ids.
	Ref string
}

// Run terminates a sandbox and marks its record as terminated. Unregistered sandboxes
// get a record that is not stored.
func (s *Service) Run(ctx context.Context, req Request) (*model.SandboxRecord, error) {
	s.logger.Debugf("terminating sandbox: %s", req.Ref)

	rec, err := storage.GetSandboxByRef(ctx, s.repo, req.Ref)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	id := req.Ref
	if rec != nil {
		if rec.Status != model.SandboxStatusRunning {
			return nil, fmt.Errorf("cannot terminate sandbox: not running (current status: %s): %w", rec.Status, model.ErrNotValid)
		}
		id = rec.ID
	}

	sb, err := sandbox.New(sandbox.Config{Client: s.client, SandboxID: id, Logger: s.logger})
	if err != nil {
		return nil, err
	}

	err = sb.Terminate(ctx)
	if err != nil && !(rec != nil && remote.IsNotFound(err)) {
		return nil, fmt.Errorf("could not terminate sandbox: %w", err)
	}

	now := time.Now().UTC()
	if rec == nil {
		s.logger.Infof("terminated unregistered sandbox: %s", id)
		return &model.SandboxRecord{ID: id, Name: id, Status: model.SandboxStatusTerminated, FinishedAt: &now}, nil
	}

	rec.Status = model.SandboxStatusTerminated
	rec.FinishedAt = &now
	if err := s.repo.UpdateSandbox(ctx, *rec); err != nil {
		return nil, fmt.Errorf("could not update sandbox: %w", err)
	}

	s.logger.Infof("terminated sandbox: %s (ID: %s)", rec.Name, rec.ID)
	return rec, nil
}
