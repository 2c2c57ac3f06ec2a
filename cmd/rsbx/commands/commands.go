package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"golang.org/x/term"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/rsbx/internal/config"
	"github.com/slok/rsbx/internal/conventions"
	"github.com/slok/rsbx/internal/log"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/printer"
	"github.com/slok/rsbx/internal/remote"
	"github.com/slok/rsbx/internal/resource"
	remotegrpc "github.com/slok/rsbx/internal/remote/grpc"
	"github.com/slok/rsbx/internal/sandbox"
	"github.com/slok/rsbx/internal/storage"
	"github.com/slok/rsbx/internal/storage/sqlite"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// ExitCodeError ends the application with the exit code of a remote command.
type ExitCodeError struct {
	Code int
}

func (e ExitCodeError) Error() string { return fmt.Sprintf("exit code %d", e.Code) }

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug       bool
	NoLog       bool
	NoColor     bool
	LoggerType  string
	ConfigPath  string
	Profile     string
	Environment string
	DBPath      string

	// Global instances.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger log.Logger

	profile *config.Config
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)
	app.Flag("config", "Path to the profiles file.").Default(config.DefaultPath()).StringVar(&c.ConfigPath)
	app.Flag("profile", "Profile of the profiles file to use.").StringVar(&c.Profile)
	app.Flag("environment", "Environment of the apps and secrets, overrides the profile one.").StringVar(&c.Environment)

	defaultDBPath := conventions.RegistryDBPath(filepath.Join(homedir.HomeDir(), conventions.DefaultDataDir))
	app.Flag("db-path", "Path to the SQLite sandbox registry.").Envar("RSBX_DB_PATH").Default(defaultDBPath).StringVar(&c.DBPath)

	return c
}

// Config returns the loaded profile, it's loaded once.
func (r *RootCommand) Config() (*config.Config, error) {
	if r.profile != nil {
		return r.profile, nil
	}

	cfg, err := config.Load(config.LoadOpts{Path: r.ConfigPath, Profile: r.Profile})
	if err != nil {
		return nil, fmt.Errorf("could not load configuration: %w", err)
	}
	r.profile = cfg

	return cfg, nil
}

// EnvironmentName returns the environment selected by the flags or the profile.
func (r *RootCommand) EnvironmentName() string {
	cfg, err := r.Config()
	if err != nil {
		return config.DefaultEnvironment
	}
	return cfg.EnvironmentName(r.Environment)
}

// RemoteClient returns a client of the profile service. The returned func closes it.
func (r *RootCommand) RemoteClient() (remote.Client, func(), error) {
	cfg, err := r.Config()
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	c, err := remotegrpc.NewClient(remotegrpc.ClientConfig{
		ServerURL:   cfg.ServerURL,
		TokenID:     cfg.TokenID,
		TokenSecret: cfg.TokenSecret,
		Logger:      r.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create remote client: %w", err)
	}

	return c, func() {
		if err := c.Close(); err != nil {
			r.Logger.Warningf("Could not close remote client: %s", err)
		}
	}, nil
}

// Repository opens the sandbox registry. The returned func closes it.
func (r *RootCommand) Repository(ctx context.Context) (*sqlite.Repository, func(), error) {
	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: r.DBPath,
		Logger: r.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create repository: %w", err)
	}

	return repo, func() {
		if err := repo.Close(); err != nil {
			r.Logger.Warningf("Could not close repository: %s", err)
		}
	}, nil
}

// Printer returns the output printer of the format.
func (r *RootCommand) Printer(format string) printer.Printer {
	if format == formatJSON {
		return printer.NewJSONPrinter(r.Stdout)
	}
	return printer.NewTablePrinter(r.Stdout)
}

// StderrIsTerminal returns true when progress can be drawn on stderr.
func (r *RootCommand) StderrIsTerminal() bool {
	f, ok := r.Stderr.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func addFormatFlag(cmd *kingpin.CmdClause, format *string) {
	cmd.Flag("format", "Output format (table, json).").Default(formatTable).EnumVar(format, formatTable, formatJSON)
}

// IsExitCode returns the exit code carried by the error, if any.
func IsExitCode(err error) (int, bool) {
	var e ExitCodeError
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

// parseStatus parses a sandbox status filter, empty returns nil.
func parseStatus(s string) (*model.SandboxStatus, error) {
	if s == "" {
		return nil, nil
	}

	status := model.SandboxStatus(strings.ToLower(s))
	switch status {
	case model.SandboxStatusRunning, model.SandboxStatusFinished, model.SandboxStatusTerminated:
		return &status, nil
	}
	return nil, fmt.Errorf("invalid status filter: %s (must be: running, finished, terminated): %w", s, model.ErrNotValid)
}

// SandboxHandle returns a handle to the sandbox of the reference, a registered name or a
// sandbox id. The returned func closes the opened resources.
func (r *RootCommand) SandboxHandle(ctx context.Context, ref string) (*sandbox.Sandbox, func(), error) {
	client, closeClient, err := r.RemoteClient()
	if err != nil {
		return nil, nil, err
	}

	repo, closeRepo, err := r.Repository(ctx)
	if err != nil {
		closeClient()
		return nil, nil, err
	}
	closeAll := func() {
		closeRepo()
		closeClient()
	}

	id, err := storage.ResolveSandboxID(ctx, repo, ref)
	if err != nil {
		closeAll()
		return nil, nil, err
	}

	sb, err := sandbox.New(sandbox.Config{Client: client, SandboxID: id, Logger: r.Logger})
	if err != nil {
		closeAll()
		return nil, nil, fmt.Errorf("could not create sandbox handle: %w", err)
	}

	return sb, closeAll, nil
}

func (r *RootCommand) resolver() (*resource.Resolver, remote.Client, func(), error) {
	client, closeClient, err := r.RemoteClient()
	if err != nil {
		return nil, nil, nil, err
	}

	res, err := resource.NewResolver(resource.ResolverConfig{
		Client:      client,
		Environment: r.EnvironmentName(),
		Logger:      r.Logger,
	})
	if err != nil {
		closeClient()
		return nil, nil, nil, fmt.Errorf("could not create resolver: %w", err)
	}

	return res, client, closeClient, nil
}
