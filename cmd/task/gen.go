package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/BegaDeveloper/tasksh/internal/ai"
	"github.com/BegaDeveloper/tasksh/internal/cliui"
	"github.com/BegaDeveloper/tasksh/internal/executor"
	"github.com/BegaDeveloper/tasksh/internal/generator"
	"github.com/BegaDeveloper/tasksh/internal/runtimeconfig"
	"github.com/BegaDeveloper/tasksh/internal/security"
)

const genLongDesc = `Generate a shell command from a natural language description.

The description is taken from the argument, or read from stdin when the
argument is missing and stdin is not a terminal. The suggested command is
screened by the safety filter and any .task-policy.yaml found from the current
directory upward, then shown for confirmation before it runs.`

type genFlags struct {
	shell        string
	verbose      bool
	systemPrompt string
	model        string
	noSpinner    bool
}

// genOptions is the merge of flags, config file and environment.
type genOptions struct {
	description  string
	shell        ai.Shell
	verbose      bool
	spinner      bool
	systemPrompt string
	model        string
}

func newGenCmd(app *app) *cobra.Command {
	flags := &genFlags{}

	cmd := &cobra.Command{
		Use:   "gen [description]",
		Short: "Generate a shell command from a description",
		Long:  genLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := ""
			if len(args) > 0 {
				description = args[0]
			}
			return runGen(cmd.Context(), app, flags, description)
		},
	}

	cmd.Flags().StringVar(&flags.shell, "shell", "", "Target shell: bash or zsh (default from config, then bash)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show the raw model response and explanation")
	cmd.Flags().StringVar(&flags.systemPrompt, "system-prompt", "", "Override the system prompt")
	cmd.Flags().StringVar(&flags.model, "model", "", "Override the model name")
	cmd.Flags().BoolVar(&flags.noSpinner, "no-spinner", false, "Disable the progress spinner")
	return cmd
}

func runGen(ctx context.Context, app *app, flags *genFlags, description string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fileConfig, configError := runtimeconfig.Load(app.configPath)
	if configError != nil {
		return configError
	}
	options, optionsError := resolveGenOptions(app, flags, fileConfig, description)
	if optionsError != nil {
		return optionsError
	}
	app.verbose = options.verbose

	settings := runtimeconfig.LoadSettings()
	settings, keyError := ensureAPIKey(app, settings)
	if keyError != nil {
		return keyError
	}
	log := app.logger(settings)

	filter, policy, policyError := loadProjectFilter()
	if policyError != nil {
		return policyError
	}

	commandGenerator := generator.New(generator.Config{
		APIKey:                settings.APIKey,
		BaseURL:               settings.BaseURL,
		FakeResponse:          settings.FakeResponse,
		HasFakeResponse:       settings.HasFakeResponse,
		DisableMachineContext: settings.DisableMachineContext,
	}, generator.WithFilter(filter), generator.WithLogger(log))

	request := generator.Request{
		Description:  options.description,
		Shell:        options.shell,
		SystemPrompt: options.systemPrompt,
		Model:        options.model,
	}

	var generated generator.GeneratedCommand
	generate := func() error {
		var generateError error
		generated, generateError = commandGenerator.Generate(ctx, request)
		return generateError
	}
	var generateError error
	if options.spinner && app.stderrTerminal {
		generateError = cliui.Step(app.errOut, "Generating command...", generate)
	} else {
		generateError = generate()
	}
	if generateError != nil {
		if errors.Is(generateError, generator.ErrMissingAPIKey) {
			return generateError
		}
		return fmt.Errorf("failed to generate command for description: %w", generateError)
	}

	printSuggestion(app.out, options, generated)
	return confirmAndRun(ctx, app, options.shell, generated, filter, policy)
}

func resolveGenOptions(app *app, flags *genFlags, fileConfig runtimeconfig.FileConfig, description string) (genOptions, error) {
	shell := ai.ShellBash
	if strings.TrimSpace(flags.shell) != "" {
		parsed, parseError := ai.ParseShell(flags.shell)
		if parseError != nil {
			return genOptions{}, parseError
		}
		shell = parsed
	} else if configured, parseError := ai.ParseShell(runtimeconfig.ResolveString(fileConfig.DefaultShell, "")); parseError == nil {
		shell = configured
	}

	if strings.TrimSpace(description) == "" && !app.stdinInteractive {
		piped, readError := io.ReadAll(app.in)
		if readError != nil {
			return genOptions{}, fmt.Errorf("read description from stdin: %w", readError)
		}
		description = string(piped)
	}

	return genOptions{
		description:  strings.TrimSpace(description),
		shell:        shell,
		verbose:      flags.verbose || runtimeconfig.ResolveBool(fileConfig.Verbose, false),
		spinner:      !flags.noSpinner && runtimeconfig.ResolveBool(fileConfig.Spinner, true),
		systemPrompt: firstNonBlank(flags.systemPrompt, runtimeconfig.ResolveString(fileConfig.SystemPrompt, "")),
		model:        firstNonBlank(flags.model, runtimeconfig.ResolveString(fileConfig.Model, "")),
	}, nil
}

// ensureAPIKey asks for a key on first use in an interactive session and saves
// it to the dotenv file. A fixture response makes the key unnecessary.
func ensureAPIKey(app *app, settings runtimeconfig.Settings) (runtimeconfig.Settings, error) {
	if settings.APIKey != "" {
		return settings, nil
	}
	if settings.HasFakeResponse {
		fmt.Fprintln(app.out, cliui.MutedStyle.Render("Using TASK_SH_FAKE_RESPONSE for deterministic output."))
		return settings, nil
	}
	if !app.stdinInteractive {
		return settings, errors.New("OPENAI_API_KEY is not set. Provide it via environment, .env, or use TASK_SH_FAKE_RESPONSE for testing.")
	}

	fmt.Fprintln(app.out, cliui.InfoStyle.Render("task.sh hasn't been connected to OpenAI yet. Let's add your API key."))
	fmt.Fprintln(app.out, cliui.MutedStyle.Render("You can generate one at https://platform.openai.com/api-keys"))
	fmt.Fprint(app.out, cliui.PromptStyle.Render("API key: "))
	secret, readError := app.readSecret()
	fmt.Fprintln(app.out)
	if readError != nil {
		return settings, fmt.Errorf("read API key: %w", readError)
	}
	apiKey := strings.TrimSpace(secret)
	if apiKey == "" {
		return settings, errors.New("no API key entered")
	}

	if saveError := runtimeconfig.SaveDotEnv(app.dotEnvPath, runtimeconfig.EnvAPIKey, apiKey); saveError != nil {
		return settings, fmt.Errorf("save API key: %w", saveError)
	}
	if setError := os.Setenv(runtimeconfig.EnvAPIKey, apiKey); setError != nil {
		return settings, fmt.Errorf("export API key: %w", setError)
	}
	fmt.Fprintln(app.out, cliui.SuccessStyle.Render("API key saved to "+app.dotEnvPath))

	settings.APIKey = apiKey
	return settings, nil
}

// loadProjectFilter returns the filter with any project deny rules added. The
// policy is nil when no policy file exists.
func loadProjectFilter() (*security.Filter, *security.Policy, error) {
	cwd, cwdError := os.Getwd()
	if cwdError != nil {
		return security.NewFilter(nil), nil, nil
	}
	policy, policyError := security.LoadPolicy(cwd)
	if policyError != nil {
		return nil, nil, policyError
	}
	return security.NewFilter(policy), policy, nil
}

func printSuggestion(out io.Writer, options genOptions, generated generator.GeneratedCommand) {
	fmt.Fprintln(out, cliui.SuccessStyle.Render(fmt.Sprintf("Suggested command (%s):", options.shell)))
	if generated.IsGuidance() {
		fmt.Fprintln(out, cliui.WarningStyle.Render(generated.Command))
	} else {
		fmt.Fprintln(out, cliui.CommandStyle.Render(generated.Command))
	}

	if !options.verbose {
		return
	}
	if generated.RawResponse != nil {
		fmt.Fprintln(out, cliui.InfoStyle.Render("\nRaw response:"))
		fmt.Fprintln(out, *generated.RawResponse)
	}
	fmt.Fprintln(out, cliui.InfoStyle.Render("\nExplanation:"))
	fmt.Fprintln(out, generated.Explanation)
}

func confirmAndRun(ctx context.Context, app *app, shell ai.Shell, generated generator.GeneratedCommand, filter *security.Filter, policy *security.Policy) error {
	options := executor.CommandOptions(generated.Command, generated.Alternatives)
	if len(options) == 0 {
		if generated.IsGuidance() {
			fmt.Fprintln(app.out, cliui.WarningStyle.Render("The assistant provided guidance only; no command will be executed."))
		}
		fmt.Fprintln(app.out, cliui.NoticeStyle.Render("No runnable commands were produced. The request may be unclear; try adding more detail."))
		return nil
	}

	prompter := executor.NewPrompter(app.in, app.out)
	command := options[0]
	if len(options) > 1 {
		fmt.Fprintln(app.out, cliui.InfoStyle.Render("\nCommand options:"))
		for index, option := range options {
			fmt.Fprintf(app.out, "  %d. %s\n", index+1, option)
		}
		fmt.Fprintln(app.out, cliui.WarningStyle.Render("Multiple possible commands detected. Choose one to run:"))

		selected, ok, selectError := prompter.SelectCommand(options)
		if selectError != nil {
			return selectError
		}
		if !ok {
			fmt.Fprintln(app.out, cliui.NoticeStyle.Render("No command selected; exiting."))
			return nil
		}
		command = selected
	} else if generated.Confidence == ai.NeedsConfirmation {
		fmt.Fprintln(app.out, cliui.WarningStyle.Render("AI is unsure about this command; review carefully before running."))
	}

	if enforceError := filter.Enforce(command); enforceError != nil {
		return enforceError
	}
	assessment, assessError := security.AssessCommand(command)
	if assessError != nil {
		return assessError
	}
	if assessment.RequiresConfirmation {
		fmt.Fprintln(app.out, cliui.WarningStyle.Render(fmt.Sprintf("Risk (%s): %s", assessment.Level, assessment.Reason)))
	}
	if riskError := policy.CheckRisk(assessment); riskError != nil {
		return riskError
	}

	confirmed, confirmError := prompter.ConfirmExecution(string(shell), command)
	if confirmError != nil {
		return confirmError
	}
	if !confirmed {
		fmt.Fprintln(app.out, cliui.NoticeStyle.Render("Command not executed."))
		return nil
	}

	result, runError := app.runner.Run(ctx, string(shell), command)
	if runError != nil {
		return fmt.Errorf("execute command: %w", runError)
	}
	switch {
	case result.Skipped:
	case result.ExitCode == 0:
		fmt.Fprintln(app.out, cliui.SuccessStyle.Render("Command completed successfully."))
	default:
		fmt.Fprintln(app.out, cliui.ErrorStyle.Render(fmt.Sprintf("Command exited with status: %d", result.ExitCode)))
	}
	return nil
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
