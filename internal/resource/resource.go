// Package resource looks up and creates the named remote objects sandboxes depend on.
package resource

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/remote"
)

// generatedSecretPrefix names the secrets created from a map without a name.
const generatedSecretPrefix = "rsbx-secret-"

// ResolverConfig is the configuration of the resource resolver.
type ResolverConfig struct {
	Client remote.Client
	// Environment is the environment used when a call gets none.
	Environment string
	Logger      log.Logger
}

func (c *ResolverConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "resource.Resolver"})

	return nil
}

// Resolver resolves apps and secrets by name.
type Resolver struct {
	client remote.Client
	env    string
	logger log.Logger
}

// NewResolver returns a new resolver.
func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Resolver{
		client: cfg.Client,
		env:    cfg.Environment,
		logger: cfg.Logger,
	}, nil
}

func (r *Resolver) environment(env string) string {
	if env != "" {
		return env
	}
	return r.env
}

// AppOpts are the options of an app lookup.
type AppOpts struct {
	CreateIfMissing bool
	Environment     string
}

// LookupApp returns the app with the name. Missing apps are created when asked to,
// otherwise the remote not found error is returned.
func (r *Resolver) LookupApp(ctx context.Context, name string, opts AppOpts) (*model.App, error) {
	if name == "" {
		return nil, fmt.Errorf("app name is required: %w", model.ErrNotValid)
	}

	creation := remote.ObjectCreationTypeUnspecified
	if opts.CreateIfMissing {
		creation = remote.ObjectCreationTypeCreateIfMissing
	}

	resp, err := r.client.AppGetOrCreate(ctx, remote.AppGetOrCreateRequest{
		AppName:            name,
		EnvironmentName:    r.environment(opts.Environment),
		ObjectCreationType: creation,
	})
	if err != nil {
		return nil, classify(fmt.Sprintf("app %q", name), err)
	}

	r.logger.Debugf("App %s resolved to %s", name, resp.AppID)

	return &model.App{ID: resp.AppID, Name: name}, nil
}

// SecretFromName returns an existing secret.
func (r *Resolver) SecretFromName(ctx context.Context, name, environment string) (*model.Secret, error) {
	if name == "" {
		return nil, fmt.Errorf("secret name is required: %w", model.ErrNotValid)
	}

	resp, err := r.client.SecretGetOrCreate(ctx, remote.SecretGetOrCreateRequest{
		DeploymentName:     name,
		EnvironmentName:    r.environment(environment),
		ObjectCreationType: remote.ObjectCreationTypeUnspecified,
	})
	if err != nil {
		return nil, classify(fmt.Sprintf("secret %q", name), err)
	}

	return &model.Secret{ID: resp.SecretID}, nil
}

// SecretFromMap creates a secret with the variables, an empty name generates a unique one.
func (r *Resolver) SecretFromMap(ctx context.Context, env map[string]string, name, environment string) (*model.Secret, error) {
	if name == "" {
		name = generatedSecretPrefix + uuid.NewString()
	}

	resp, err := r.client.SecretGetOrCreate(ctx, remote.SecretGetOrCreateRequest{
		DeploymentName:     name,
		EnvironmentName:    r.environment(environment),
		ObjectCreationType: remote.ObjectCreationTypeCreateIfMissing,
		EnvDict:            env,
	})
	if err != nil {
		return nil, classify(fmt.Sprintf("secret %q", name), err)
	}

	r.logger.Debugf("Secret %s created with %d variables", name, len(env))

	return &model.Secret{ID: resp.SecretID}, nil
}

// SecretsFromNames resolves every named secret, in order.
func (r *Resolver) SecretsFromNames(ctx context.Context, names []string, environment string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, n := range names {
		s, err := r.SecretFromName(ctx, n, environment)
		if err != nil {
			return nil, err
		}
		ids = append(ids, s.ID)
	}

	return ids, nil
}

func classify(object string, err error) error {
	if remote.IsNotFound(err) {
		return fmt.Errorf("%s not found: %w: %w", object, model.ErrNotFound, err)
	}
	return fmt.Errorf("could not get %s: %w", object, err)
}
