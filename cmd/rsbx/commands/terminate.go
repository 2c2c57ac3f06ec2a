package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/rsbx/internal/app/terminate"
)

type TerminateCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref string
}

// NewTerminateCommand returns the sandbox terminate command.
func NewTerminateCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TerminateCommand {
	c := &TerminateCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("terminate", "Terminate a sandbox, the record is kept.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)

	return c
}

func (c TerminateCommand) Name() string { return c.Cmd.FullCommand() }

func (c TerminateCommand) Run(ctx context.Context) error {
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

	svc, err := terminate.NewService(terminate.ServiceConfig{
		Client:     client,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	rec, err := svc.Run(ctx, terminate.Request{Ref: c.ref})
	if err != nil {
		return fmt.Errorf("could not terminate sandbox: %w", err)
	}

	return c.rootCmd.Printer(formatTable).PrintMessage(fmt.Sprintf("Terminated sandbox %s (%s)", rec.Name, rec.ID))
}
