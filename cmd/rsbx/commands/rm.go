package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/rsbx/internal/app/remove"
)

type RemoveCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref   string
	force bool
}

// NewRemoveCommand returns the sandbox rm command.
func NewRemoveCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *RemoveCommand {
	c := &RemoveCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("rm", "Remove a sandbox from the local registry.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)
	c.Cmd.Flag("force", "Terminate the sandbox first when it's running.").Short('f').BoolVar(&c.force)

	return c
}

func (c RemoveCommand) Name() string { return c.Cmd.FullCommand() }

func (c RemoveCommand) Run(ctx context.Context) error {
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

	svc, err := remove.NewService(remove.ServiceConfig{
		Client:     client,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	rec, err := svc.Run(ctx, remove.Request{Ref: c.ref, Force: c.force})
	if err != nil {
		return fmt.Errorf("could not remove sandbox: %w", err)
	}

	return c.rootCmd.Printer(formatTable).PrintMessage(fmt.Sprintf("Removed sandbox %s (%s)", rec.Name, rec.ID))
}
