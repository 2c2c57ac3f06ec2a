package lib

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"k8s.io/client-go/util/homedir"

	"github.com/slok/rsbx/internal/config"
	"github.com/slok/rsbx/internal/conventions"
	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/remote"
	remotegrpc "github.com/slok/rsbx/internal/remote/grpc"
	"github.com/slok/rsbx/internal/storage"
	"github.com/slok/rsbx/internal/storage/sqlite"
)

// Config configures the SDK client.
//
// All fields are optional. An empty Config{} loads the active profile of ~/.rsbx.yaml
// (or the RSBX_* environment variables) and uses ~/.rsbx/rsbx.db as the local registry.
type Config struct {
	// ConfigPath is the profiles file.
	// Default: ~/.rsbx.yaml.
	ConfigPath string

	// Profile selects the profile of the profiles file.
	// Default: RSBX_PROFILE, the file active profile or "default".
	Profile string

	// ServerURL, TokenID and TokenSecret override the profile values.
	ServerURL   string
	TokenID     string
	TokenSecret string

	// Environment is the environment apps and secrets are looked up in.
	// Default: the profile environment or "main".
	Environment string

	// DataDir is the base directory for rsbx local data.
	// Default: ~/.rsbx.
	DataDir string

	// DBPath is the SQLite registry of the sandboxes created by this client.
	// Default: <DataDir>/rsbx.db.
	DBPath string

	// Logger receives structured log output from the SDK.
	// Default: noop (silent). See the log sub-package for the interface.
	Logger log.Logger
}

func (c *Config) defaults() error {
	if c.DataDir == "" {
		c.DataDir = filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir)
	}

	if c.DBPath == "" {
		c.DBPath = conventions.RegistryDBPath(c.DataDir)
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}

	return nil
}

// Client is the main SDK entry point.
//
// Create a Client with [New] and release its resources with [Client.Close].
// A Client is safe for concurrent use.
type Client struct {
	remote         remote.Client
	repo           storage.Repository
	environment    string
	builderVersion string
	logger         log.Logger
	closers        []io.Closer
}

// New creates a new SDK client connected to the service of the selected profile.
//
// The caller must call [Client.Close] when done:
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	profile, err := config.Load(config.LoadOpts{Path: cfg.ConfigPath, Profile: cfg.Profile})
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	if cfg.ServerURL != "" {
		profile.ServerURL = cfg.ServerURL
	}
	if cfg.TokenID != "" {
		profile.TokenID = cfg.TokenID
	}
	if cfg.TokenSecret != "" {
		profile.TokenSecret = cfg.TokenSecret
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	rc, err := remotegrpc.NewClient(remotegrpc.ClientConfig{
		ServerURL:   profile.ServerURL,
		TokenID:     profile.TokenID,
		TokenSecret: profile.TokenSecret,
		Logger:      cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create remote client: %w", err)
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: cfg.DBPath,
		Logger: cfg.Logger,
	})
	if err != nil {
		rc.Close()
		return nil, fmt.Errorf("could not create repository: %w", err)
	}

	c := newClient(rc, repo, profile.EnvironmentName(cfg.Environment), cfg.Logger)
	c.builderVersion = profile.ImageBuilderVersion
	c.closers = []io.Closer{repo, rc}

	return c, nil
}

func newClient(rc remote.Client, repo storage.Repository, environment string, logger log.Logger) *Client {
	return &Client{
		remote:      rc,
		repo:        repo,
		environment: environment,
		logger:      logger,
	}
}

// Close releases the service connection and the registry.
// After Close returns, the client must not be used.
func (c *Client) Close() error {
	var firstErr error
	for _, cl := range c.closers {
		if err := cl.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Environment returns the environment used when an operation doesn't set one.
func (c *Client) Environment() string { return c.environment }
