package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/BegaDeveloper/tasksh/internal/ai"
	"github.com/BegaDeveloper/tasksh/internal/cliui"
	"github.com/BegaDeveloper/tasksh/internal/runtimeconfig"
)

const (
	exitSuccess = 0
	exitFailure = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	if dotEnvError := runtimeconfig.LoadDotEnv(runtimeconfig.DotEnvFile); dotEnvError != nil {
		fmt.Fprintln(os.Stderr, cliui.WarningStyle.Render(fmt.Sprintf("Ignoring %s: %v", runtimeconfig.DotEnvFile, dotEnvError)))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newTerminalApp()
	rootCmd := newRootCmd(app)
	if executeError := rootCmd.ExecuteContext(ctx); executeError != nil {
		reportError(app, executeError)
		return exitFailure
	}
	return exitSuccess
}

// reportError prints the failure and, in verbose or debug mode, the model reply
// that could not be used.
func reportError(app *app, err error) {
	fmt.Fprintln(app.errOut, cliui.ErrorStyle.Render("Error: "+err.Error()))
	if !app.verbose && !app.debug {
		return
	}
	if raw, ok := ai.DebugRawResponseFromError(err); ok {
		fmt.Fprintln(app.errOut, cliui.MutedStyle.Render("Raw model response:"))
		fmt.Fprintln(app.errOut, raw)
	}
}
