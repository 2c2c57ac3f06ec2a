// Package image builds remote container images.
package image

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/poll"
	"github.com/slok/rsbx/internal/remote"
)

// BuildOpts are the options of an image build.
type BuildOpts struct {
	// ForceBuild ignores the cached images.
	ForceBuild bool
	SecretIDs  []string
	BuildArgs  map[string]string
}

// BuilderConfig is the image builder configuration.
type BuilderConfig struct {
	Client remote.Client
	// BuilderVersion is the remote image builder version, empty uses the service default.
	BuilderVersion string
	// JoinTimeout is the server side timeout of each join call.
	JoinTimeout time.Duration
	// JoinInterval is the time between join calls without result.
	JoinInterval time.Duration
	// ErrorBackoff is the time waited after a failed join call.
	ErrorBackoff time.Duration
	// MaxWait bounds the build wait, zero waits until the context ends.
	MaxWait time.Duration
	Logger  log.Logger
}

func (c *BuilderConfig) defaults() error {
	if c.Client == nil {
		return fmt.Errorf("remote client is required")
	}

	if c.JoinTimeout <= 0 {
		c.JoinTimeout = 55 * time.Second
	}

	if c.JoinInterval <= 0 {
		c.JoinInterval = 2 * time.Second
	}

	if c.ErrorBackoff <= 0 {
		c.ErrorBackoff = 5 * time.Second
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "image.Builder"})

	return nil
}

// Builder builds images and waits for the build result.
type Builder struct {
	cfg    BuilderConfig
	logger log.Logger
}

// NewBuilder returns a new image builder.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	err := cfg.defaults()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &Builder{cfg: cfg, logger: cfg.Logger}, nil
}

// FromDockerfile builds an image from a local Dockerfile.
func (b *Builder) FromDockerfile(ctx context.Context, appID, dockerfilePath string, opts BuildOpts) (*model.Image, error) {
	path, err := filepath.Abs(dockerfilePath)
	if err != nil {
		return nil, fmt.Errorf("invalid dockerfile path %q: %w", dockerfilePath, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read dockerfile at %s: %w: %w", path, model.ErrNotValid, err)
	}

	return b.FromDockerfileCommands(ctx, appID, strings.Split(string(data), "\n"), opts)
}

// FromDockerfileCommands builds an image from Dockerfile commands.
func (b *Builder) FromDockerfileCommands(ctx context.Context, appID string, commands []string, opts BuildOpts) (*model.Image, error) {
	if len(commands) == 0 {
		return nil, fmt.Errorf("dockerfile commands are required: %w", model.ErrNotValid)
	}

	return b.build(ctx, remote.ImageGetOrCreateRequest{
		AppID:              appID,
		DockerfileCommands: commands,
		BuildArgs:          opts.BuildArgs,
		SecretIDs:          opts.SecretIDs,
		BuilderVersion:     b.cfg.BuilderVersion,
		ForceBuild:         opts.ForceBuild,
	})
}

// FromRegistry builds an image from a public registry image tag.
func (b *Builder) FromRegistry(ctx context.Context, appID, tag string) (*model.Image, error) {
	return b.fromRegistry(ctx, appID, tag, nil)
}

// FromAWSECR builds an image from an AWS ECR private image, the secret must hold the AWS
// credentials.
func (b *Builder) FromAWSECR(ctx context.Context, appID, tag, secretID string) (*model.Image, error) {
	if secretID == "" {
		return nil, fmt.Errorf("a secret with the AWS credentials is required: %w", model.ErrNotValid)
	}

	return b.fromRegistry(ctx, appID, tag, &remote.ImageRegistryConfig{
		AuthType: remote.RegistryAuthTypeAWS,
		SecretID: secretID,
	})
}

func (b *Builder) fromRegistry(ctx context.Context, appID, tag string, registry *remote.ImageRegistryConfig) (*model.Image, error) {
	if tag == "" {
		return nil, fmt.Errorf("image tag is required: %w", model.ErrNotValid)
	}

	return b.build(ctx, remote.ImageGetOrCreateRequest{
		AppID:              appID,
		DockerfileCommands: []string{"FROM " + tag},
		RegistryConfig:     registry,
		BuilderVersion:     b.cfg.BuilderVersion,
	})
}

func (b *Builder) build(ctx context.Context, req remote.ImageGetOrCreateRequest) (*model.Image, error) {
	resp, err := b.cfg.Client.ImageGetOrCreate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("could not start image build: %w", err)
	}
	imageID := resp.ImageID
	logger := b.logger.WithValues(log.Kv{"image-id": imageID})

	poller, err := poll.New(poll.Config{
		Kind:         model.OperationKindBuild,
		Operation:    "image build",
		ID:           imageID,
		CallTimeout:  b.cfg.JoinTimeout,
		Interval:     b.cfg.JoinInterval,
		ErrorBackoff: b.cfg.ErrorBackoff,
		MaxWait:      b.cfg.MaxWait,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	if !resp.Result.IsTerminal() {
		logger.Infof("Building image %s...", imageID)
	}

	res, err := poller.JoinStream(ctx, resp.Result, func(ctx context.Context, lastEntryID string, timeout time.Duration) (string, *model.OperationResult, error) {
		jr, err := b.cfg.Client.ImageJoinStreaming(ctx, remote.ImageJoinStreamingRequest{
			ImageID:     imageID,
			LastEntryID: lastEntryID,
			Timeout:     timeout,
		})
		if err != nil {
			return "", nil, err
		}
		return jr.EntryID, jr.Result, nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not wait for image %s build: %w", imageID, err)
	}

	err = poll.CheckResult(model.OperationKindBuild, "image build", imageID, res)
	if err != nil {
		return nil, err
	}
	logger.Debugf("image built")

	return &model.Image{ID: imageID}, nil
}
