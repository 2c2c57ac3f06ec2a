package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/rsbx/internal/image"
	"github.com/slok/rsbx/internal/model"
	"github.com/slok/rsbx/internal/resource"
)

type AppLookupCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	name   string
	create bool
}

// NewAppLookupCommand returns the app lookup command.
func NewAppLookupCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *AppLookupCommand {
	c := &AppLookupCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("lookup", "Show the id of an app.")
	c.Cmd.Arg("name", "App name.").Required().StringVar(&c.name)
	c.Cmd.Flag("create", "Create the app when it's missing.").BoolVar(&c.create)

	return c
}

func (c AppLookupCommand) Name() string { return c.Cmd.FullCommand() }

func (c AppLookupCommand) Run(ctx context.Context) error {
	resolver, _, closeClient, err := c.rootCmd.resolver()
	if err != nil {
		return err
	}
	defer closeClient()

	app, err := resolver.LookupApp(ctx, c.name, resource.AppOpts{CreateIfMissing: c.create})
	if err != nil {
		return fmt.Errorf("could not lookup app: %w", err)
	}

	return c.rootCmd.Printer(formatTable).PrintMessage(app.ID)
}

type SecretCreateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	name    string
	envs    []string
	envFile string
}

// NewSecretCreateCommand returns the secret create command.
func NewSecretCreateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *SecretCreateCommand {
	c := &SecretCreateCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("create", "Create a secret with environment variables, an existing one is reused.")
	c.Cmd.Arg("name", "Secret name, a unique one is generated when missing.").StringVar(&c.name)
	c.Cmd.Flag("env", "Environment variable (KEY=VALUE or KEY from the host), repeatable.").Short('e').StringsVar(&c.envs)
	c.Cmd.Flag("env-file", "YAML file with environment variables.").StringVar(&c.envFile)

	return c
}

func (c SecretCreateCommand) Name() string { return c.Cmd.FullCommand() }

func (c SecretCreateCommand) Run(ctx context.Context) error {
	vars, err := loadEnv(c.envs, c.envFile)
	if err != nil {
		return err
	}
	if len(vars) == 0 {
		return fmt.Errorf("at least one environment variable is required: %w", model.ErrNotValid)
	}

	resolver, _, closeClient, err := c.rootCmd.resolver()
	if err != nil {
		return err
	}
	defer closeClient()

	secret, err := resolver.SecretFromMap(ctx, vars, c.name, "")
	if err != nil {
		return fmt.Errorf("could not create secret: %w", err)
	}

	return c.rootCmd.Printer(formatTable).PrintMessage(secret.ID)
}

type ImageBuildCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	appName    string
	registry   string
	awsECR     string
	awsSecret  string
	dockerfile string
	secrets    []string
	force      bool
}

// NewImageBuildCommand returns the image build command.
func NewImageBuildCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *ImageBuildCommand {
	c := &ImageBuildCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("build", "Build an image and show its id.")
	c.Cmd.Flag("app", "App that owns the image, it's created if missing.").Required().StringVar(&c.appName)
	c.Cmd.Flag("registry", "Public registry image tag (e.g. python:3.12-slim).").StringVar(&c.registry)
	c.Cmd.Flag("aws-ecr", "AWS ECR image tag.").StringVar(&c.awsECR)
	c.Cmd.Flag("aws-secret", "Secret with the AWS credentials to pull the ECR image.").StringVar(&c.awsSecret)
	c.Cmd.Flag("dockerfile", "Local Dockerfile to build the image from.").StringVar(&c.dockerfile)
	c.Cmd.Flag("secret", "Secret name available to the Dockerfile build, repeatable.").StringsVar(&c.secrets)
	c.Cmd.Flag("force", "Ignore the cached images.").BoolVar(&c.force)

	return c
}

func (c ImageBuildCommand) Name() string { return c.Cmd.FullCommand() }

func (c ImageBuildCommand) Run(ctx context.Context) error {
	src := model.ImageSource{
		Registry:      c.registry,
		AWSECR:        c.awsECR,
		AWSSecretName: c.awsSecret,
		Dockerfile:    c.dockerfile,
	}
	if err := src.Validate(); err != nil {
		return err
	}

	cfg, err := c.rootCmd.Config()
	if err != nil {
		return err
	}

	resolver, client, closeClient, err := c.rootCmd.resolver()
	if err != nil {
		return err
	}
	defer closeClient()

	app, err := resolver.LookupApp(ctx, c.appName, resource.AppOpts{CreateIfMissing: true})
	if err != nil {
		return fmt.Errorf("could not lookup app: %w", err)
	}

	builder, err := image.NewBuilder(image.BuilderConfig{
		Client:         client,
		BuilderVersion: cfg.ImageBuilderVersion,
		Logger:         c.rootCmd.Logger,
	})
	if err != nil {
		return fmt.Errorf("could not create image builder: %w", err)
	}

	var img *model.Image
	switch {
	case src.Registry != "":
		img, err = builder.FromRegistry(ctx, app.ID, src.Registry)
	case src.AWSECR != "":
		secret, serr := resolver.SecretFromName(ctx, src.AWSSecretName, "")
		if serr != nil {
			return fmt.Errorf("could not resolve secret: %w", serr)
		}
		img, err = builder.FromAWSECR(ctx, app.ID, src.AWSECR, secret.ID)
	default:
		secretIDs, serr := resolver.SecretsFromNames(ctx, c.secrets, "")
		if serr != nil {
			return fmt.Errorf("could not resolve secrets: %w", serr)
		}
		img, err = builder.FromDockerfile(ctx, app.ID, src.Dockerfile, image.BuildOpts{ForceBuild: c.force, SecretIDs: secretIDs})
	}
	if err != nil {
		return fmt.Errorf("could not build image: %w", err)
	}

	return c.rootCmd.Printer(formatTable).PrintMessage(img.ID)
}
