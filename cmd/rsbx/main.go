package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/oklog/run"
	"github.com/sirupsen/logrus"

	"github.com/slok/rsbx/cmd/rsbx/commands"
	"github.com/slok/rsbx/internal/log"
	loglogrus "github.com/slok/rsbx/internal/log/logrus"
)

const (
	// Version is the application version (set via ldflags).
	Version = "dev"
)

// Run runs the main application.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (err error) {
	app := kingpin.New("rsbx", "Remote sandbox client.")
	app.DefaultEnvars()
	rootCmd := commands.NewRootCommand(app)

	// Setup commands (registers flags).
	sandboxCmd := app.Command("sandbox", "Manage sandboxes.").Alias("sb")
	createCmd := commands.NewCreateCommand(rootCmd, sandboxCmd)
	listCmd := commands.NewListCommand(rootCmd, sandboxCmd)
	statusCmd := commands.NewStatusCommand(rootCmd, sandboxCmd)
	terminateCmd := commands.NewTerminateCommand(rootCmd, sandboxCmd)
	removeCmd := commands.NewRemoveCommand(rootCmd, sandboxCmd)
	waitCmd := commands.NewWaitCommand(rootCmd, sandboxCmd)
	tunnelsCmd := commands.NewTunnelsCommand(rootCmd, sandboxCmd)
	logsCmd := commands.NewLogsCommand(rootCmd, sandboxCmd)

	execCmd := commands.NewExecCommand(rootCmd, app)
	cpCmd := commands.NewCpCommand(rootCmd, app)

	fsCmd := app.Command("fs", "Manage sandbox files.")
	lsCmd := commands.NewLsCommand(rootCmd, fsCmd)
	catCmd := commands.NewCatCommand(rootCmd, fsCmd)
	mkdirCmd := commands.NewMkdirCommand(rootCmd, fsCmd)
	rmPathCmd := commands.NewRmPathCommand(rootCmd, fsCmd)

	appCmd := app.Command("app", "Manage apps.")
	appLookupCmd := commands.NewAppLookupCommand(rootCmd, appCmd)

	secretCmd := app.Command("secret", "Manage secrets.")
	secretCreateCmd := commands.NewSecretCreateCommand(rootCmd, secretCmd)

	imageCmd := app.Command("image", "Manage images.")
	imageBuildCmd := commands.NewImageBuildCommand(rootCmd, imageCmd)

	blobCmd := app.Command("blob", "Manage blobs.")
	blobUploadCmd := commands.NewBlobUploadCommand(rootCmd, blobCmd)
	blobDownloadCmd := commands.NewBlobDownloadCommand(rootCmd, blobCmd)

	cmds := map[string]commands.Command{
		createCmd.Name():       createCmd,
		listCmd.Name():         listCmd,
		statusCmd.Name():       statusCmd,
		terminateCmd.Name():    terminateCmd,
		removeCmd.Name():       removeCmd,
		waitCmd.Name():         waitCmd,
		tunnelsCmd.Name():      tunnelsCmd,
		logsCmd.Name():         logsCmd,
		execCmd.Name():         execCmd,
		cpCmd.Name():           cpCmd,
		lsCmd.Name():           lsCmd,
		catCmd.Name():          catCmd,
		mkdirCmd.Name():        mkdirCmd,
		rmPathCmd.Name():       rmPathCmd,
		appLookupCmd.Name():    appLookupCmd,
		secretCreateCmd.Name(): secretCreateCmd,
		imageBuildCmd.Name():   imageBuildCmd,
		blobUploadCmd.Name():   blobUploadCmd,
		blobDownloadCmd.Name(): blobDownloadCmd,
	}

	// Parse command.
	cmdName, err := app.Parse(args[1:])
	if err != nil {
		return fmt.Errorf("invalid command configuration: %w", err)
	}

	// Set standard input/output.
	rootCmd.Stdin = stdin
	rootCmd.Stdout = stdout
	rootCmd.Stderr = stderr

	// Commands whose standard output is data are kept free of logs unless debugging.
	printerCommands := map[string]bool{
		listCmd.Name():         true,
		statusCmd.Name():       true,
		tunnelsCmd.Name():      true,
		logsCmd.Name():         true,
		execCmd.Name():         true,
		lsCmd.Name():           true,
		catCmd.Name():          true,
		appLookupCmd.Name():    true,
		secretCreateCmd.Name(): true,
		imageBuildCmd.Name():   true,
		blobDownloadCmd.Name(): true,
	}
	if printerCommands[cmdName] && !rootCmd.Debug {
		rootCmd.NoLog = true
	}

	// Set logger.
	rootCmd.Logger = getLogger(*rootCmd)

	var g run.Group

	// OS signals.
	{
		signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer signalCancel()

		g.Add(
			func() error {
				<-signalCtx.Done()
				rootCmd.Logger.Debugf("Termination signal received")
				return nil
			},
			func(_ error) {
				signalCancel()
			},
		)
	}

	// Execute command.
	{
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		g.Add(
			func() error {
				err := cmds[cmdName].Run(ctx)
				if err != nil {
					if _, ok := commands.IsExitCode(err); ok {
						return err
					}
					return fmt.Errorf("%q command failed: %w", cmdName, err)
				}
				return nil
			},
			func(_ error) {
				cancel()
			},
		)
	}

	return g.Run()
}

// getLogger returns the application logger.
func getLogger(config commands.RootCommand) log.Logger {
	if config.NoLog {
		return log.Noop
	}

	// If logger not disabled use logrus logger.
	logrusLog := logrus.New()
	logrusLog.Out = config.Stderr // By default logger goes to stderr (so it can split stdout prints).
	logrusLogEntry := logrus.NewEntry(logrusLog)

	if config.Debug {
		logrusLogEntry.Logger.SetLevel(logrus.DebugLevel)
	}

	// Log format.
	switch config.LoggerType {
	case commands.LoggerTypeDefault:
		logrusLogEntry.Logger.SetFormatter(&logrus.TextFormatter{
			ForceColors:   !config.NoColor,
			DisableColors: config.NoColor,
		})
	case commands.LoggerTypeJSON:
		logrusLogEntry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}

	logger := loglogrus.NewLogrus(logrusLogEntry).WithValues(log.Kv{
		"version": Version,
	})

	logger.Debugf("Debug level is enabled") // Will log only when debug enabled.

	return logger
}

func main() {
	ctx := context.Background()
	err := Run(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr)
	if err != nil {
		if code, ok := commands.IsExitCode(err); ok {
			os.Exit(code)
		}
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
