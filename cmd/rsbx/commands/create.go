package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/docker/go-units"

	"github.com/slok/rsbx/internal/app/create"
	"github.com/slok/rsbx/internal/image"
	"github.com/slok/rsbx/internal/model"
	storageio "github.com/slok/rsbx/internal/storage/io"
	"github.com/slok/rsbx/internal/utils/env"
)

type CreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	file        string
	name        string
	appName     string
	imageID     string
	registry    string
	awsECR      string
	awsSecret   string
	dockerfile  string
	command     []string
	timeout     time.Duration
	cpu         float64
	memory      string
	workdir     string
	ports       []string
	secrets     []string
	envs        []string
	envFile     string
	format      string
	waitTunnels bool
}

// NewCreateCommand returns the sandbox create command.
func NewCreateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *CreateCommand {
	c := &CreateCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("create", "Create a sandbox.")
	c.Cmd.Flag("file", "Path to a YAML sandbox definition, flags override its values.").Short('f').StringVar(&c.file)
	c.Cmd.Flag("name", "Sandbox name, defaults to the sandbox id.").StringVar(&c.name)
	c.Cmd.Flag("app", "App that owns the sandbox, it's created if missing.").StringVar(&c.appName)
	c.Cmd.Flag("image", "Id of an already built image.").StringVar(&c.imageID)
	c.Cmd.Flag("registry", "Public registry image tag (e.g. python:3.12-slim).").StringVar(&c.registry)
	c.Cmd.Flag("aws-ecr", "AWS ECR image tag.").StringVar(&c.awsECR)
	c.Cmd.Flag("aws-secret", "Secret with the AWS credentials to pull the ECR image.").StringVar(&c.awsSecret)
	c.Cmd.Flag("dockerfile", "Local Dockerfile to build the image from.").StringVar(&c.dockerfile)
	c.Cmd.Flag("command", "Sandbox entrypoint argument, repeatable.").StringsVar(&c.command)
	c.Cmd.Flag("timeout", "Sandbox lifetime (e.g. 10m, 1h).").DurationVar(&c.timeout)
	c.Cmd.Flag("cpu", "CPU request in cores (e.g. 0.5).").Float64Var(&c.cpu)
	c.Cmd.Flag("memory", "Memory request (e.g. 512MiB, 2GiB).").StringVar(&c.memory)
	c.Cmd.Flag("workdir", "Sandbox working directory.").StringVar(&c.workdir)
	c.Cmd.Flag("port", "Port to expose, repeatable (PORT, PORT/unencrypted or PORT/h2).").StringsVar(&c.ports)
	c.Cmd.Flag("secret", "Secret name to inject, repeatable.").StringsVar(&c.secrets)
	c.Cmd.Flag("env", "Environment variable (KEY=VALUE or KEY from the host), repeatable.").Short('e').StringsVar(&c.envs)
	c.Cmd.Flag("env-file", "YAML file with environment variables.").StringVar(&c.envFile)
	c.Cmd.Flag("wait-tunnels", "Wait for the tunnels of the exposed ports and print them.").BoolVar(&c.waitTunnels)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c CreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c CreateCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	spec, err := c.sandboxSpec(ctx)
	if err != nil {
		return err
	}
	if spec.Environment == "" {
		spec.Environment = c.rootCmd.EnvironmentName()
	}

	cfg, err := c.rootCmd.Config()
	if err != nil {
		return err
	}

	client, closeClient, err := c.rootCmd.RemoteClient()
	if err != nil {
		return err
	}
	defer closeClient()

	repo, closeRepo, err := c.rootCmd.Repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	svc, err := create.NewService(create.ServiceConfig{
		Client:      client,
		Repository:  repo,
		Environment: spec.Environment,
		Image:       image.BuilderConfig{BuilderVersion: cfg.ImageBuilderVersion},
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Create(ctx, spec)
	if err != nil {
		return fmt.Errorf("could not create sandbox: %w", err)
	}

	p := c.rootCmd.Printer(c.format)
	if err := p.PrintSandbox(res.Record); err != nil {
		return fmt.Errorf("could not print sandbox: %w", err)
	}

	if c.waitTunnels && len(spec.Config.Ports) > 0 {
		tunnels, err := res.Sandbox.Tunnels(ctx, 0)
		if err != nil {
			return fmt.Errorf("could not get tunnels: %w", err)
		}
		if err := p.PrintTunnels(tunnels); err != nil {
			return fmt.Errorf("could not print tunnels: %w", err)
		}
	}

	return nil
}

// sandboxSpec returns the definition file spec with the flags applied on top.
func (c CreateCommand) sandboxSpec(ctx context.Context) (model.SandboxSpec, error) {
	spec := model.SandboxSpec{}
	if c.file != "" {
		dir, name := splitPath(c.file)
		s, err := storageio.NewSandboxSpecYAMLRepository(os.DirFS(dir)).GetSandboxSpec(ctx, name)
		if err != nil {
			return spec, fmt.Errorf("could not load sandbox definition: %w", err)
		}
		spec = s
	}

	if c.name != "" {
		spec.Name = c.name
	}
	if c.appName != "" {
		spec.AppName = c.appName
	}
	if c.rootCmd.Environment != "" {
		spec.Environment = c.rootCmd.Environment
	}

	img := model.ImageSource{
		ID:            c.imageID,
		Registry:      c.registry,
		AWSECR:        c.awsECR,
		AWSSecretName: c.awsSecret,
		Dockerfile:    c.dockerfile,
	}
	if img != (model.ImageSource{}) {
		spec.Image = img
	}

	if len(c.command) > 0 {
		spec.Config.Command = c.command
	}
	if c.timeout != 0 {
		spec.Config.Timeout = c.timeout
	}
	if c.cpu != 0 {
		spec.Config.Resources.CPU = c.cpu
	}
	if c.memory != "" {
		mb, err := parseMemoryMB(c.memory)
		if err != nil {
			return spec, err
		}
		spec.Config.Resources.MemoryMB = mb
	}
	if c.workdir != "" {
		spec.Config.Workdir = c.workdir
	}
	for _, p := range c.ports {
		ps, err := parsePortSpec(p)
		if err != nil {
			return spec, err
		}
		spec.Config.Ports = append(spec.Config.Ports, ps)
	}
	spec.SecretNames = append(spec.SecretNames, c.secrets...)

	vars, err := loadEnv(c.envs, c.envFile)
	if err != nil {
		return spec, err
	}
	if len(vars) > 0 {
		spec.Env = env.MergeMaps(spec.Env, vars)
	}

	return spec, nil
}

func parseMemoryMB(s string) (int, error) {
	b, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid memory %q: %w: %w", s, model.ErrNotValid, err)
	}
	if b <= 0 {
		return 0, fmt.Errorf("memory must be positive, got %q: %w", s, model.ErrNotValid)
	}

	mb := b / units.MiB
	if b%units.MiB != 0 {
		mb++
	}
	return int(mb), nil
}

func parsePortSpec(s string) (model.PortSpec, error) {
	portStr, kind, _ := strings.Cut(s, "/")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return model.PortSpec{}, fmt.Errorf("invalid port %q: %w", s, model.ErrNotValid)
	}

	ps := model.PortSpec{Port: port}
	switch kind {
	case "":
	case "unencrypted":
		ps.Unencrypted = true
	case "h2":
		ps.TunnelType = model.TunnelTypeH2
	default:
		return model.PortSpec{}, fmt.Errorf("invalid port kind %q (must be: unencrypted, h2): %w", kind, model.ErrNotValid)
	}

	return ps, nil
}

// loadEnv merges the env file variables with the env flags, the flags win.
func loadEnv(specs []string, file string) (map[string]string, error) {
	vars := map[string]string{}
	if file != "" {
		dir, name := splitPath(file)
		fileVars, err := env.LoadFile(os.DirFS(dir), name)
		if err != nil {
			return nil, fmt.Errorf("could not load env file: %w", err)
		}
		vars = fileVars
	}

	flagVars, err := env.ParseSpecs(specs)
	if err != nil {
		return nil, fmt.Errorf("invalid env: %w", err)
	}

	return env.MergeMaps(vars, flagVars), nil
}

// splitPath splits a host path into an fs.FS root and a valid fs.FS path.
func splitPath(path string) (dir, name string) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Dir(path), filepath.Base(path)
	}
	return filepath.Dir(abs), filepath.Base(abs)
}
