package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type WaitCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref    string
	format string
}

// NewWaitCommand returns the sandbox wait command.
func NewWaitCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *WaitCommand {
	c := &WaitCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("wait", "Wait for a sandbox to finish and exit with its return code.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c WaitCommand) Name() string { return c.Cmd.FullCommand() }

func (c WaitCommand) Run(ctx context.Context) error {
	sb, closeAll, err := c.rootCmd.SandboxHandle(ctx, c.ref)
	if err != nil {
		return err
	}
	defer closeAll()

	code, err := sb.Wait(ctx)
	if err != nil {
		return fmt.Errorf("could not wait for sandbox: %w", err)
	}

	if err := c.rootCmd.Printer(c.format).PrintExit(sb.ID(), code); err != nil {
		return fmt.Errorf("could not print result: %w", err)
	}

	if code != 0 {
		return ExitCodeError{Code: code}
	}
	return nil
}
