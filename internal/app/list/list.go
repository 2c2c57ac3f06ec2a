package list

import (
	"context"
	"fmt"

	"github.com/slok/rsbx/internal/app/status"
	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/storage"
)

// ServiceConfig is the configuration for the list service.
type ServiceConfig struct {
	Repository storage.Repository
	// Status refreshes the running sandboxes, optional.
	Status *status.Service
	Logger log.Logger
}

func (c *ServiceConfig) defaults() error {
	if c.Repository == nil {
		return fmt.Errorf("repository is required")
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.List"})
	return nil
}

// Service lists the registered sandboxes.
type Service struct {
	repo   storage.Repository
	status *status.Service
	logger log.Logger
}

// NewService creates a new list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Service{
		repo:   cfg.Repository,
		status: cfg.Status,
		logger: cfg.Logger,
	}, nil
}

// Request represents the list request parameters.
type Request struct {
	// StatusFilter is an optional filter to only show sandboxes with this status.
	StatusFilter *model.SandboxStatus
	// Refresh polls the running sandboxes before filtering.
	Refresh bool
}

// Run lists all sandboxes, optionally refreshed and filtered by status.
func (s *Service) Run(ctx context.Context, req Request) ([]model.SandboxRecord, error) {
	s.logger.Debugf("listing sandboxes with filter: %v", req.StatusFilter)

	sandboxes, err := s.repo.ListSandboxes(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not list sandboxes: %w", err)
	}

	if req.Refresh {
		if s.status == nil {
			return nil, fmt.Errorf("refresh needs the status service: %w", model.ErrNotValid)
		}
		for i, sb := range sandboxes {
			res, err := s.status.Refresh(ctx, sb)
			if err != nil {
				// One unreachable sandbox should not hide the rest.
				s.logger.Warningf("Could not refresh sandbox %s: %s", sb.ID, err)
				continue
			}
			sandboxes[i] = res.Record
		}
	}

	if req.StatusFilter != nil {
		filtered := make([]model.SandboxRecord, 0, len(sandboxes))
		for _, sb := range sandboxes {
			if sb.Status == *req.StatusFilter {
				filtered = append(filtered, sb)
			}
		}
		sandboxes = filtered
	}

	s.logger.Debugf("found %d sandboxes", len(sandboxes))
	return sandboxes, nil
}
