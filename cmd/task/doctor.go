package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/BegaDeveloper/tasksh/internal/ai"
	"github.com/BegaDeveloper/tasksh/internal/cliui"
	"github.com/BegaDeveloper/tasksh/internal/runtimeconfig"
	"github.com/BegaDeveloper/tasksh/internal/security"
)

const backendCheckTimeout = 3 * time.Second

type doctorCheck struct {
	name    string
	ok      bool
	details string
}

func newDoctorCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the API key, configuration files and backend connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(app, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runDoctor(app *app, output io.Writer, errorOutput io.Writer) error {
	settings := runtimeconfig.LoadSettings()

	checks := []doctorCheck{
		checkAPIKey(settings),
		checkConfigFile(app.configPath),
		checkProjectPolicy(),
		checkBackend(settings),
	}

	hasFailure := false
	for _, check := range checks {
		status := cliui.SuccessStyle.Render("PASS")
		if !check.ok {
			status = cliui.ErrorStyle.Render("FAIL")
			hasFailure = true
		}
		fmt.Fprintf(output, "[%s] %s: %s\n", status, check.name, check.details)
	}
	if hasFailure {
		fmt.Fprintln(errorOutput, "")
		fmt.Fprintln(errorOutput, "task doctor found configuration issues.")
		fmt.Fprintln(errorOutput, "Fix the failing checks and rerun: task doctor")
		return fmt.Errorf("one or more doctor checks failed")
	}
	fmt.Fprintln(output, "")
	fmt.Fprintln(output, "task doctor passed: API key, configuration and backend look good.")
	return nil
}

func checkAPIKey(settings runtimeconfig.Settings) doctorCheck {
	if settings.APIKey != "" {
		return doctorCheck{name: "api key", ok: true, details: runtimeconfig.EnvAPIKey + " is configured"}
	}
	if settings.HasFakeResponse {
		return doctorCheck{name: "api key", ok: true, details: runtimeconfig.EnvFakeResponse + " is set; live generation is bypassed"}
	}
	return doctorCheck{
		name:    "api key",
		ok:      false,
		details: runtimeconfig.EnvAPIKey + " is empty (export it or add it to .env)",
	}
}

func checkConfigFile(userPath string) doctorCheck {
	if _, err := runtimeconfig.Load(userPath); err != nil {
		return doctorCheck{name: "config file", ok: false, details: err.Error()}
	}
	path := strings.TrimSpace(userPath)
	if path == "" {
		defaultPath, err := runtimeconfig.DefaultConfigPath()
		if err != nil {
			return doctorCheck{name: "config file", ok: true, details: "no home directory; using defaults"}
		}
		path = defaultPath
	}
	if _, err := os.Stat(path); err != nil {
		return doctorCheck{name: "config file", ok: true, details: fmt.Sprintf("%s not found; using defaults", path)}
	}
	return doctorCheck{name: "config file", ok: true, details: fmt.Sprintf("%s parsed", path)}
}

func checkProjectPolicy() doctorCheck {
	cwd, err := os.Getwd()
	if err != nil {
		return doctorCheck{name: "project policy", ok: false, details: err.Error()}
	}
	policy, err := security.LoadPolicy(cwd)
	if err != nil {
		return doctorCheck{name: "project policy", ok: false, details: err.Error()}
	}
	if policy == nil {
		return doctorCheck{name: "project policy", ok: true, details: "no " + security.PolicyFileName + " found; built-in rules only"}
	}
	return doctorCheck{name: "project policy", ok: true, details: fmt.Sprintf("%s loaded", policy.Path())}
}

func checkBackend(settings runtimeconfig.Settings) doctorCheck {
	if settings.APIKey == "" {
		if settings.HasFakeResponse {
			return doctorCheck{name: "backend", ok: true, details: "skipped while " + runtimeconfig.EnvFakeResponse + " is set"}
		}
		return doctorCheck{name: "backend", ok: false, details: "skipped: no API key"}
	}

	baseURL := strings.TrimRight(settings.BaseURL, "/")
	if baseURL == "" {
		baseURL = ai.DefaultBaseURL
	}
	request, err := http.NewRequest(http.MethodGet, baseURL+"/models", nil)
	if err != nil {
		return doctorCheck{name: "backend", ok: false, details: err.Error()}
	}
	request.Header.Set("Authorization", "Bearer "+settings.APIKey)

	client := &http.Client{Timeout: backendCheckTimeout}
	response, err := client.Do(request)
	if err != nil {
		return doctorCheck{
			name:    "backend",
			ok:      false,
			details: fmt.Sprintf("cannot reach %s (%v)", baseURL, err),
		}
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return doctorCheck{
			name:    "backend",
			ok:      false,
			details: fmt.Sprintf("%s/models returned HTTP %d", baseURL, response.StatusCode),
		}
	}
	return doctorCheck{name: "backend", ok: true, details: fmt.Sprintf("%s is reachable", baseURL)}
}
