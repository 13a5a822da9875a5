package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/creack/pty"
	"golang.org/x/term"
)

type Result struct {
	ExitCode int
	Skipped  bool
}

// Runner executes a confirmed command with shell -c. Interactive sessions get a
// pty so colors and prompts behave as in the user's terminal; find commands are
// captured instead so their output can be annotated.
type Runner struct {
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
	Interactive bool
}

func NewRunner() *Runner {
	return &Runner{
		Stdin:       os.Stdin,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Interactive: IsInteractive(),
	}
}

func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (runner *Runner) Run(ctx context.Context, shell string, command string) (Result, error) {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return Result{Skipped: true}, nil
	}
	if !runner.Interactive {
		fmt.Fprintln(runner.Stdout, "Non-interactive session detected; skipping execution.")
		return Result{Skipped: true}, nil
	}

	execCommand := exec.CommandContext(ctx, shell, "-c", command)
	var runError error
	if isFindCommand(trimmed) {
		runError = runner.runCaptured(execCommand, command)
	} else {
		runError = runner.runPTY(execCommand)
	}
	if runError == nil {
		return Result{ExitCode: 0}, nil
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		return Result{ExitCode: 130}, context.Canceled
	}
	var exitError *exec.ExitError
	if errors.As(runError, &exitError) {
		if statusCode := exitError.ExitCode(); statusCode >= 0 {
			return Result{ExitCode: statusCode}, nil
		}
	}
	return Result{ExitCode: 1}, runError
}

func (runner *Runner) runCaptured(execCommand *exec.Cmd, command string) error {
	var stdout bytes.Buffer
	execCommand.Stdin = runner.Stdin
	execCommand.Stdout = &stdout
	execCommand.Stderr = runner.Stderr

	runError := execCommand.Run()
	if stdout.Len() > 0 {
		resolved := EnrichFindOutput(command, stdout.Bytes())
		if !strings.HasSuffix(resolved, "\n") {
			resolved += "\n"
		}
		if _, writeError := io.WriteString(runner.Stdout, resolved); writeError != nil && runError == nil {
			return fmt.Errorf("write command output: %w", writeError)
		}
	}
	return runError
}

func (runner *Runner) runPTY(execCommand *exec.Cmd) error {
	ptyFile, startError := pty.Start(execCommand)
	if startError != nil {
		return fmt.Errorf("start command in pty: %w", startError)
	}
	defer ptyFile.Close()

	if stdinFile, ok := runner.Stdin.(*os.File); ok {
		_ = pty.InheritSize(stdinFile, ptyFile)
	}
	if runner.Stdin != nil {
		// Not joined: a blocked stdin read cannot be interrupted.
		go func() { _, _ = io.Copy(ptyFile, runner.Stdin) }()
	}

	// Reading the pty master fails with EIO once the child exits on Linux.
	_, _ = io.Copy(runner.Stdout, ptyFile)
	return execCommand.Wait()
}

func isFindCommand(command string) bool {
	fields := strings.Fields(command)
	return len(fields) > 0 && fields[0] == "find"
}
