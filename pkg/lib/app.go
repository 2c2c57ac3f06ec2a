package lib

import (
	"context"
	"fmt"

	"github.com/slok/rsbx/internal/image"
	"github.com/slok/rsbx/internal/resource"
)

func (c *Client) resolver() (*resource.Resolver, error) {
	r, err := resource.NewResolver(resource.ResolverConfig{
		Client:      c.remote,
		Environment: c.environment,
		Logger:      c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create resolver: %w", err)
	}
	return r, nil
}

// LookupApp returns the app with the name. Pass nil opts to look up an existing app.
//
// Returns [ErrNotFound] if the app doesn't exist and it was not asked to be created.
func (c *Client) LookupApp(ctx context.Context, name string, opts *LookupAppOpts) (*App, error) {
	if opts == nil {
		opts = &LookupAppOpts{}
	}

	r, err := c.resolver()
	if err != nil {
		return nil, err
	}

	return r.LookupApp(ctx, name, resource.AppOpts{
		CreateIfMissing: opts.CreateIfMissing,
		Environment:     opts.Environment,
	})
}

// SecretFromName returns an existing secret. An empty environment uses the client one.
//
// Returns [ErrNotFound] if the secret doesn't exist.
func (c *Client) SecretFromName(ctx context.Context, name, environment string) (*Secret, error) {
	r, err := c.resolver()
	if err != nil {
		return nil, err
	}

	return r.SecretFromName(ctx, name, environment)
}

// SecretFromMap creates a secret holding the variables. An empty name generates a
// unique one.
func (c *Client) SecretFromMap(ctx context.Context, env map[string]string, name, environment string) (*Secret, error) {
	if len(env) == 0 {
		return nil, fmt.Errorf("secret variables are required: %w", ErrNotValid)
	}

	r, err := c.resolver()
	if err != nil {
		return nil, err
	}

	return r.SecretFromMap(ctx, env, name, environment)
}

// BuildImage builds an image in the app and waits for the build to finish.
//
// Returns [ErrBuild] matching errors when the build fails.
func (c *Client) BuildImage(ctx context.Context, app *App, opts BuildImageOpts) (*Image, error) {
	if app == nil || app.ID == "" {
		return nil, fmt.Errorf("app is required: %w", ErrNotValid)
	}

	set := 0
	for _, v := range []bool{opts.Registry != "", opts.AWSECR != "", opts.Dockerfile != "", len(opts.DockerfileCommands) > 0} {
		if v {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one image source must be set: %w", ErrNotValid)
	}

	b, err := image.NewBuilder(image.BuilderConfig{
		Client:         c.remote,
		BuilderVersion: c.builderVersion,
		Logger:         c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create image builder: %w", err)
	}

	buildOpts := image.BuildOpts{ForceBuild: opts.Force, SecretIDs: opts.SecretIDs}
	switch {
	case opts.Registry != "":
		return b.FromRegistry(ctx, app.ID, opts.Registry)
	case opts.AWSECR != "":
		if opts.AWSSecret == nil {
			return nil, fmt.Errorf("aws ecr images need a secret: %w", ErrNotValid)
		}
		return b.FromAWSECR(ctx, app.ID, opts.AWSECR, opts.AWSSecret.ID)
	case opts.Dockerfile != "":
		return b.FromDockerfile(ctx, app.ID, opts.Dockerfile, buildOpts)
	default:
		return b.FromDockerfileCommands(ctx, app.ID, opts.DockerfileCommands, buildOpts)
	}
}
