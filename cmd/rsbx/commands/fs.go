package commands

import (
	"context"
	"fmt"

	"github.com/alecthomas/kingpin/v2"
)

type LsCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref    string
	path   string
	format string
}

// NewLsCommand returns the fs ls command.
func NewLsCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *LsCommand {
	c := &LsCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("ls", "List a sandbox directory.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)
	c.Cmd.Arg("path", "Directory path in the sandbox.").Default("/").StringVar(&c.path)
	addFormatFlag(c.Cmd, &c.format)

	return c
}

func (c LsCommand) Name() string { return c.Cmd.FullCommand() }

func (c LsCommand) Run(ctx context.Context) error {
	sb, closeAll, err := c.rootCmd.SandboxHandle(ctx, c.ref)
	if err != nil {
		return err
	}
	defer closeAll()

	paths, err := sb.Ls(ctx, c.path)
	if err != nil {
		return fmt.Errorf("could not list %s: %w", c.path, err)
	}

	if err := c.rootCmd.Printer(c.format).PrintPaths(paths); err != nil {
		return fmt.Errorf("could not print paths: %w", err)
	}

	return nil
}

type CatCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref  string
	path string
}

// NewCatCommand returns the fs cat command.
func NewCatCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *CatCommand {
	c := &CatCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("cat", "Print a sandbox file.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)
	c.Cmd.Arg("path", "File path in the sandbox.").Required().StringVar(&c.path)

	return c
}

func (c CatCommand) Name() string { return c.Cmd.FullCommand() }

func (c CatCommand) Run(ctx context.Context) error {
	logger := c.rootCmd.Logger

	sb, closeAll, err := c.rootCmd.SandboxHandle(ctx, c.ref)
	if err != nil {
		return err
	}
	defer closeAll()

	f, err := sb.Open(ctx, c.path, "rb")
	if err != nil {
		return fmt.Errorf("could not open %s: %w", c.path, err)
	}
	defer func() {
		if err := f.Close(context.WithoutCancel(ctx)); err != nil {
			logger.Warningf("Could not close %s: %s", c.path, err)
		}
	}()

	data, err := f.Read(ctx)
	if err != nil {
		return fmt.Errorf("could not read %s: %w", c.path, err)
	}

	_, err = c.rootCmd.Stdout.Write(data)
	return err
}

type MkdirCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref     string
	path    string
	parents bool
}

// NewMkdirCommand returns the fs mkdir command.
func NewMkdirCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *MkdirCommand {
	c := &MkdirCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("mkdir", "Create a sandbox directory.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)
	c.Cmd.Arg("path", "Directory path in the sandbox.").Required().StringVar(&c.path)
	c.Cmd.Flag("parents", "Create the missing parents.").Short('p').BoolVar(&c.parents)

	return c
}

func (c MkdirCommand) Name() string { return c.Cmd.FullCommand() }

func (c MkdirCommand) Run(ctx context.Context) error {
	sb, closeAll, err := c.rootCmd.SandboxHandle(ctx, c.ref)
	if err != nil {
		return err
	}
	defer closeAll()

	if err := sb.Mkdir(ctx, c.path, c.parents); err != nil {
		return fmt.Errorf("could not create %s: %w", c.path, err)
	}
	return nil
}

type RmPathCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	ref       string
	path      string
	recursive bool
}

// NewRmPathCommand returns the fs rm command.
func NewRmPathCommand(rootCmd *RootCommand, parent *kingpin.CmdClause) *RmPathCommand {
	c := &RmPathCommand{rootCmd: rootCmd}

	c.Cmd = parent.Command("rm", "Remove a sandbox path.")
	c.Cmd.Arg("sandbox", "Sandbox name or id.").Required().StringVar(&c.ref)
	c.Cmd.Arg("path", "Path in the sandbox.").Required().StringVar(&c.path)
	c.Cmd.Flag("recursive", "Remove directories and their content.").Short('r').BoolVar(&c.recursive)

	return c
}

func (c RmPathCommand) Name() string { return c.Cmd.FullCommand() }

func (c RmPathCommand) Run(ctx context.Context) error {
	sb, closeAll, err := c.rootCmd.SandboxHandle(ctx, c.ref)
	if err != nil {
		return err
	}
	defer closeAll()

	if err := sb.Rm(ctx, c.path, c.recursive); err != nil {
		return fmt.Errorf("could not remove %s: %w", c.path, err)
	}
	return nil
}
