package main

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/BegaDeveloper/tasksh/internal/executor"
	"github.com/BegaDeveloper/tasksh/internal/logger"
	"github.com/BegaDeveloper/tasksh/internal/runtimeconfig"
)

var version = "dev"

const rootLongDesc = `Generate safe shell commands from natural language prompts.

Describe a task in plain words and task asks an OpenAI-compatible model for a
single command, screens it against built-in and project safety rules, shows it
and runs it only after you confirm.

EXAMPLES:
  task gen "list large files" --shell zsh -v
  echo "list staged changes" | task gen --verbose

CONFIG:
  ~/.task.toml    Default configuration file.
  --config         Override configuration path.

ENVIRONMENT:
  OPENAI_API_KEY           Required for live command generation
  TASK_SH_FAKE_RESPONSE    Optional testing override.`

// app carries the terminal streams and the global flags shared by the
// subcommands.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	stdinInteractive bool
	stderrTerminal   bool
	readSecret       func() (string, error)
	dotEnvPath       string
	runner           *executor.Runner

	configPath string
	debug      bool
	verbose    bool
}

func newTerminalApp() *app {
	return &app{
		in:               os.Stdin,
		out:              os.Stdout,
		errOut:           os.Stderr,
		stdinInteractive: executor.IsInteractive(),
		stderrTerminal:   term.IsTerminal(int(os.Stderr.Fd())),
		readSecret:       readHiddenLine,
		dotEnvPath:       runtimeconfig.DotEnvFile,
		runner:           executor.NewRunner(),
	}
}

func newRootCmd(app *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "task",
		Short:         "Generate safe shell commands from natural language prompts",
		Long:          rootLongDesc,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetIn(app.in)
	rootCmd.SetOut(app.out)
	rootCmd.SetErr(app.errOut)

	rootCmd.PersistentFlags().StringVar(&app.configPath, "config", "", "Path to a configuration file (default ~/.task.toml)")
	rootCmd.PersistentFlags().BoolVarP(&app.debug, "debug", "d", false, "Enable debug logging")

	rootCmd.AddCommand(newGenCmd(app))
	rootCmd.AddCommand(newCompletionsCmd())
	rootCmd.AddCommand(newDoctorCmd(app))
	return rootCmd
}

// logger honours --debug first, then TASK_SH_LOG_LEVEL.
func (app *app) logger(settings runtimeconfig.Settings) *slog.Logger {
	options := []logger.Option{
		logger.WithWriter(app.errOut),
		logger.WithPrefix("task"),
	}
	if settings.LogLevel != "" {
		if level, levelError := logger.ParseLevel(settings.LogLevel); levelError == nil {
			options = append(options, logger.WithLevel(level))
		}
	}
	options = append(options, logger.WithDebug(app.debug))
	return logger.New(options...)
}

func readHiddenLine() (string, error) {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		return string(secret), err
	}

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()), nil
	}
	return "", scanner.Err()
}
