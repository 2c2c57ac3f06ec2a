package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/rsbx/internal/app/copy"
	"github.com/slok/rsbx/internal/printer"
)

type CpCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	source      string
	destination string
	archive     bool
	extract     bool
}

// NewCpCommand returns the cp command.
func NewCpCommand(rootCmd *RootCommand, app *kingpin.Application) *CpCommand {
	c := &CpCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("cp", "Copy files between host and sandbox.")
	c.Cmd.Arg("source", "Source path (local path or sandbox:/path).").Required().StringVar(&c.source)
	c.Cmd.Arg("destination", "Destination path (local path or sandbox:/path).").Required().StringVar(&c.destination)
	c.Cmd.Flag("archive", "Download the sandbox path as a gzipped tarball.").Short('a').BoolVar(&c.archive)
	c.Cmd.Flag("extract", "Unpack the downloaded tarball in the destination directory.").Short('x').BoolVar(&c.extract)

	return c
}

func (c CpCommand) Name() string { return c.Cmd.FullCommand() }

func (c CpCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	parsed, err := copy.ParseCopyArgs(c.source, c.destination)
	if err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
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

	svc, err := copy.NewService(copy.ServiceConfig{
		Client:     client,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	n, err := svc.Run(ctx, copy.Request{
		Source:      c.source,
		Destination: c.destination,
		Archive:     c.archive,
		Extract:     c.extract,
	})
	if err != nil {
		return err
	}

	var msg string
	if parsed.ToSandbox {
		msg = fmt.Sprintf("Copied %s to %s:%s (%s)", parsed.LocalPath, parsed.SandboxID, parsed.RemotePath, printer.FormatBytes(int64(n)))
	} else {
		msg = fmt.Sprintf("Copied %s:%s to %s (%s)", parsed.SandboxID, parsed.RemotePath, parsed.LocalPath, printer.FormatBytes(int64(n)))
	}

	return c.rootCmd.Printer(formatTable).PrintMessage(msg)
}
