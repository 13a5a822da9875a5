package runtimeconfig

import (
	"strings"

	"github.com/spf13/viper"
)

const (
	EnvAPIKey                = "OPENAI_API_KEY"
	EnvBaseURL               = "OPENAI_BASE_URL"
	EnvFakeResponse          = "TASK_SH_FAKE_RESPONSE"
	EnvDisableMachineContext = "TASK_SH_DISABLE_MACHINE_CONTEXT"
	EnvLogLevel              = "TASK_SH_LOG_LEVEL"
)

// Settings is the environment as read once at startup.
type Settings struct {
	APIKey       string
	BaseURL      string
	FakeResponse string
	// HasFakeResponse is true even when the fixture variable is empty.
	HasFakeResponse       bool
	DisableMachineContext bool
	LogLevel              string
}

var settingsBindings = map[string]string{
	"api_key":                 EnvAPIKey,
	"base_url":                EnvBaseURL,
	"fake_response":           EnvFakeResponse,
	"disable_machine_context": EnvDisableMachineContext,
	"log_level":               EnvLogLevel,
}

func LoadSettings() Settings {
	v := viper.New()
	v.AllowEmptyEnv(true)
	for key, envName := range settingsBindings {
		_ = v.BindEnv(key, envName)
	}

	return Settings{
		APIKey:                strings.TrimSpace(v.GetString("api_key")),
		BaseURL:               strings.TrimSpace(v.GetString("base_url")),
		FakeResponse:          v.GetString("fake_response"),
		HasFakeResponse:       v.IsSet("fake_response"),
		DisableMachineContext: v.IsSet("disable_machine_context"),
		LogLevel:              strings.TrimSpace(v.GetString("log_level")),
	}
}
