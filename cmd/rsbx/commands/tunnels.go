package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"
)

type TunnelsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref     string
	timeout time.Duration
	format  string
}

// NewTunnelsCommand returns the sandbox tunnels command.
func NewTunnelsCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *TunnelsCommand {
	c := &TunnelsCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("tunnels", "Show the tunnels of the sandbox exposed ports.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)
	c.Cmd.Flag("timeout", "Time to wait for the tunnels to be ready.").Default("50s").DurationVar(&c.timeout)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c TunnelsCommand) Name() string { return c.Cmd.FullCommand() }

func (c TunnelsCommand) Run(ctx context.Context) error {
	sb, closeAll, err := c.rootCmd.SandboxHandle(ctx, c.ref)
	if err != nil {
		return err
	}
	defer closeAll()

	tunnels, err := sb.Tunnels(ctx, c.timeout)
	if err != nil {
		return fmt.Errorf("could not get tunnels: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintTunnels(tunnels); err != nil {
		return fmt.Errorf("could not print tunnels: %w", err)
	}

	return nil
}
