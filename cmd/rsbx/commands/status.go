package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/rsbx/internal/app/status"
)

type StatusCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref    string
	format string
}

// NewStatusCommand returns the sandbox status command.
func NewStatusCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *StatusCommand {
	c := &StatusCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("status", "Show the refreshed status of a registered sandbox.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c StatusCommand) Name() string { return c.Cmd.FullCommand() }

func (c StatusCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

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

	svc, err := status.NewService(status.ServiceConfig{
		Client:     client,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	res, err := svc.Run(ctx, status.Request{Ref: c.ref})
	if err != nil {
		return fmt.Errorf("could not get sandbox status: %w", err)
	}

	p := c.rootCmd.Printer(c.format)
	if err := p.PrintSandbox(res.Record); err != nil {
		return fmt.Errorf("could not print status: %w", err)
	}
	if res.ReturnCode != nil {
		if err := p.PrintExit(res.Record.ID, *res.ReturnCode); err != nil {
			return fmt.Errorf("could not print status: %w", err)
		}
	}

	return nil
}
