package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/alecthomas/kingpin/v2"

	"github.com/slok/rsbx/internal/app/exec"
	"github.com/slok/rsbx/internal/model"
)

type ExecCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref         string
	command     []string
	workingDir  string
	timeout     time.Duration
	interactive bool
}

// NewExecCommand returns the exec command.
func NewExecCommand(rootCmd *RootCommand, app *kingpin.Application) *ExecCommand {
	c := &ExecCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("exec", "Execute a command in a running sandbox, exits with its code.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)
	c.Cmd.Arg("command", "Command to execute (use -- before command).").Required().StringsVar(&c.command)
	c.Cmd.Flag("workdir", "Working directory for command execution.").Short('w').StringVar(&c.workingDir)
	c.Cmd.Flag("timeout", "Command timeout, whole seconds (e.g. 30s, 5m).").DurationVar(&c.timeout)
	c.Cmd.Flag("interactive", "Send the standard input to the command.").Short('i').BoolVar(&c.interactive)

	return c
}

func (c ExecCommand) Name() string { return c.Cmd.FullCommand() }

func (c ExecCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	if c.timeout < 0 || c.timeout%time.Second != 0 {
		return fmt.Errorf("timeout must be a positive whole number of seconds, got %s: %w", c.timeout, model.ErrNotValid)
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

	svc, err := exec.NewService(exec.ServiceConfig{
		Client:     client,
		Repository: repo,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("could not create service: %w", err)
	}

	req := exec.Request{
		Ref:     c.ref,
		Command: c.command,
		Opts: model.ExecOpts{
			WorkingDir:  c.workingDir,
			TimeoutSecs: int(c.timeout / time.Second),
		},
		Stdout: c.rootCmd.Stdout,
		Stderr: c.rootCmd.Stderr,
	}
	if c.interactive {
		req.Stdin = c.rootCmd.Stdin
	}

	code, err := svc.Run(ctx, req)
	if err != nil {
		return err
	}
	if code != 0 {
		return ExitCodeError{Code: code}
	}

	return nil
}
