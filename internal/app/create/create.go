package create

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/slok/rsbx/internal/image"
	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/resource"
	"github.com/slok/rsbx/internal/sandbox"
	"github.com/slok/rsbx/internal/storage"
)

// ServiceConfig is the configuration for the create service.
type ServiceConfig struct {
	Client     remote.Client
	Repository storage.Repository
	// Environment is used when the sandbox definition has none.
	Environment string
	// Image tunes the image builds, the client is set by the service.
	Image image.BuilderConfig
	// Sandbox is the base configuration of the created sandbox handles.
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

	c.Image.Client = c.Client
	c.Image.Logger = c.Logger
	c.Sandbox.Client = c.Client
	c.Sandbox.Logger = c.Logger
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "app.Create"})

	return nil
}

// Service handles sandbox creation from declarative definitions.
type Service struct {
	client   remote.Client
	repo     storage.Repository
	resolver *resource.Resolver
	builder  *image.Builder
	sbCfg    sandbox.Config
	logger   log.Logger
}

// NewService creates a new create service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	resolver, err := resource.NewResolver(resource.ResolverConfig{
		Client:      cfg.Client,
		Environment: cfg.Environment,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	builder, err := image.NewBuilder(cfg.Image)
	if err != nil {
		return nil, err
	}

	return &Service{
		client:   cfg.Client,
		repo:     cfg.Repository,
		resolver: resolver,
		builder:  builder,
		sbCfg:    cfg.Sandbox,
		logger:   cfg.Logger,
	}, nil
}

// Result is a created sandbox.
type Result struct {
	Sandbox *sandbox.Sandbox
	Record  model.SandboxRecord
}

// Create resolves the definition references, creates the sandbox and registers it.
func (s *Service) Create(ctx context.Context, spec model.SandboxSpec) (*Result, error) {
	// 1. Validate the definition.
	if spec.AppName == "" {
		return nil, fmt.Errorf("app is required: %w", model.ErrNotValid)
	}
	if err := spec.Image.Validate(); err != nil {
		return nil, fmt.Errorf("invalid image: %w", err)
	}

	// 2. Check name uniqueness.
	if spec.Name != "" {
		_, err := s.repo.GetSandboxByName(ctx, spec.Name)
		if err == nil {
			return nil, fmt.Errorf("sandbox with name %q already exists: %w", spec.Name, model.ErrAlreadyExists)
		}
		if !errors.Is(err, model.ErrNotFound) {
			return nil, fmt.Errorf("could not check name uniqueness: %w", err)
		}
	}

	// 3. Resolve the remote objects.
	app, err := s.resolver.LookupApp(ctx, spec.AppName, resource.AppOpts{CreateIfMissing: true, Environment: spec.Environment})
	if err != nil {
		return nil, err
	}

	secretIDs, err := s.resolver.SecretsFromNames(ctx, spec.SecretNames, spec.Environment)
	if err != nil {
		return nil, err
	}
	if len(spec.Env) > 0 {
		secret, err := s.resolver.SecretFromMap(ctx, spec.Env, "", spec.Environment)
		if err != nil {
			return nil, err
		}
		secretIDs = append(secretIDs, secret.ID)
	}

	img, err := s.buildImage(ctx, app.ID, spec)
	if err != nil {
		return nil, err
	}

	// 4. Create the sandbox.
	cfg := spec.Config
	cfg.AppID = app.ID
	cfg.ImageID = img.ID
	cfg.SecretIDs = append(cfg.SecretIDs, secretIDs...)

	sb, err := sandbox.Create(ctx, s.sbCfg, cfg)
	if err != nil {
		return nil, err
	}

	// 5. Register it.
	record := model.SandboxRecord{
		ID:        sb.ID(),
		Name:      spec.Name,
		AppID:     app.ID,
		ImageID:   img.ID,
		Status:    model.SandboxStatusRunning,
		CreatedAt: time.Now().UTC(),
	}
	if record.Name == "" {
		record.Name = sb.ID()
	}

	if err := s.repo.CreateSandbox(ctx, record); err != nil {
		if terr := sb.Terminate(context.WithoutCancel(ctx)); terr != nil {
			s.logger.Warningf("Could not terminate unregistered sandbox %s: %s", sb.ID(), terr)
		}
		return nil, fmt.Errorf("could not save sandbox: %w", err)
	}

	s.logger.Infof("Created sandbox: %s (%s)", record.Name, record.ID)

	return &Result{Sandbox: sb, Record: record}, nil
}

func (s *Service) buildImage(ctx context.Context, appID string, spec model.SandboxSpec) (*model.Image, error) {
	src := spec.Image
	switch {
	case src.ID != "":
		return &model.Image{ID: src.ID}, nil
	case src.Registry != "":
		return s.builder.FromRegistry(ctx, appID, src.Registry)
	case src.AWSECR != "":
		secret, err := s.resolver.SecretFromName(ctx, src.AWSSecretName, spec.Environment)
		if err != nil {
			return nil, err
		}
		return s.builder.FromAWSECR(ctx, appID, src.AWSECR, secret.ID)
	default:
		return s.builder.FromDockerfile(ctx, appID, src.Dockerfile, image.BuildOpts{})
	}
}
