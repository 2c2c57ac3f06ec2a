package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/rsbx/internal/app/list"
	"github.com/slok/rsbx/internal/app/status"
)

type ListCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	statusFilter string
	refresh      bool
	format       string
}

// NewListCommand returns the sandbox list command.
func NewListCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *ListCommand {
	c := &ListCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("list", "List the registered sandboxes.").Alias("ls")
	c.Cmd.Flag("status", "Filter by status (running, finished, terminated).").StringVar(&c.statusFilter)
	c.Cmd.Flag("refresh", "Refresh the status of the running sandboxes from the service.").BoolVar(&c.refresh)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c ListCommand) Name() string { return c.Cmd.FullCommand() }

func (c ListCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	statusFilter, err := parseStatus(c.statusFilter)
	if err != nil {
		return err
	}

	repo, closeRepo, err := c.rootCmd.Repository(ctx)
	if err != nil {
		return err
	}
	defer closeRepo()

	cfg := list.ServiceConfig{
		Repository: repo,
		Logger:     logger,
	}

	// Only refreshing needs the service.
	if c.refresh {
		client, closeClient, err := c.rootCmd.RemoteClient()
		if err != nil {
			return err
		}
		defer closeClient()

		statusSvc, err := status.NewService(status.ServiceConfig{
			Client:     client,
			Repository: repo,
			Logger:     logger,
		})
		if err != nil {
			return fmt.Errorf("could not create status service: %w", err)
		}
		cfg.Status = statusSvc
	}

	svc, err := list.NewService(cfg)
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	sandboxes, err := svc.Run(ctx, list.Request{
		StatusFilter: statusFilter,
		Refresh:      c.refresh,
	})
	if err != nil {
		return fmt.Errorf("could not list sandboxes: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintSandboxList(sandboxes); err != nil {
		return fmt.Errorf("could not print list: %w", err)
	}

	return nil
}
