package commands

import (
	"context"
	"fmt"
	"sync"

	"github.com/alecthomas/kingpin/v2"
)

type LogsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref string
}

// NewLogsCommand returns the sandbox logs command.
func NewLogsCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *LogsCommand {
	c := &LogsCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("logs", "Follow the entrypoint output of a sandbox until it finishes.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)

	return c
}

func (c LogsCommand) Name() string { return c.Cmd.FullCommand() }

func (c LogsCommand) Run(ctx context.Context) error {
	sb, closeAll, err := c.rootCmd.SandboxHandle(ctx, c.ref)
	if err != nil {
		return err
	}
	defer closeAll()

	stdio, err := sb.Stdio(ctx)
	if err != nil {
		return fmt.Errorf("could not get sandbox stdio: %w", err)
	}

	var (
		wg                   sync.WaitGroup
		stdoutErr, stderrErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, stdoutErr = stdio.Stdout.CopyTo(ctx, c.rootCmd.Stdout)
	}()
	go func() {
		defer wg.Done()
		_, stderrErr = stdio.Stderr.CopyTo(ctx, c.rootCmd.Stderr)
	}()
	wg.Wait()

	if stdoutErr != nil {
		return fmt.Errorf("could not read stdout: %w", stdoutErr)
	}
	if stderrErr != nil {
		return fmt.Errorf("could not read stderr: %w", stderrErr)
	}

	return nil
}
