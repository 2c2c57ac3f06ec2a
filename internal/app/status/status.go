package status

import (
	"context"
	"fmt"
	"time"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/sandbox"
	"github.com/slok/rsbx/internal/storage"
)

// ServiceConfig is the configuration for the status service.
type ServiceConfig struct {
	Client     remote.Client
	Repository storage.Repository
	// Sandbox is the base configuration of the sandbox handles used to poll.
	Sandbox sandbox.Config
	Logger  log.Logger
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
	c.Sandbox.Client = c.Client
	c.Sandbox.Logger = c.Logger
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Status"})
	return nil
}

// Service gets the status of registered sandboxes, refreshing it from the service.
type Service struct {
	sbCfg  sandbox.Config
	repo   storage.Repository
	logger log.Logger
}

// NewService creates a new status service.
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

// Request represents the status request parameters.
type Request struct {
	// Ref is the sandbox name or id.
	Ref string
}

// Result is the refreshed sandbox status.
type Result struct {
	Record model.SandboxRecord
	// ReturnCode is set when the sandbox finished.
	ReturnCode *int
}

// Run returns the refreshed status of a registered sandbox.
func (s *Service) Run(ctx context.Context, req Request) (*Result, error) {
	s.logger.Debugf("getting status for sandbox: %s", req.Ref)

	rec, err := storage.GetSandboxByRef(ctx, s.repo, req.Ref)
	if err != nil {
		return nil, err
	}

	return s.Refresh(ctx, *rec)
}

// Refresh polls a running sandbox once and stores its final status when it finished.
// Finished records are returned as they are.
func (s *Service) Refresh(ctx context.Context, rec model.SandboxRecord) (*Result, error) {
	if rec.Status != model.SandboxStatusRunning {
		return &Result{Record: rec}, nil
	}

	cfg := s.sbCfg
	cfg.SandboxID = rec.ID
	sb, err := sandbox.New(cfg)
	if err != nil {
		return nil, err
	}

	code, err := sb.Poll(ctx)
	switch {
	case remote.IsNotFound(err):
		// Gone from the service, nothing will run there again.
		rec.Status = model.SandboxStatusTerminated
	case err != nil:
		return nil, err
	case code == nil:
		return &Result{Record: rec}, nil
	default:
		rec.Status = recordStatus(sb.Result())
	}

	now := time.Now().UTC()
	rec.FinishedAt = &now
	if err := s.repo.UpdateSandbox(ctx, rec); err != nil {
		return nil, fmt.Errorf("could not update sandbox: %w", err)
	}

	s.logger.Infof("Sandbox %s (%s) is %s", rec.Name, rec.ID, rec.Status)

	return &Result{Record: rec, ReturnCode: code}, nil
}

func recordStatus(res *model.OperationResult) model.SandboxStatus {
	if res != nil && res.Status == model.GenericStatusTerminated {
		return model.SandboxStatusTerminated
	}
	return model.SandboxStatusFinished
}
