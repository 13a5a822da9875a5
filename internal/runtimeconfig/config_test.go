package runtimeconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
}

func TestLoadFrom_UserPath(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	userPath := filepath.Join(tempDir, "custom.toml")
	writeFile(t, userPath, "default_shell = \"zsh\"\nmodel = \"gpt-4o-mini\"\nverbose = true\nspinner = false\n")

	config, loadError := LoadFrom(userPath, filepath.Join(tempDir, "missing.toml"))
	require.NoError(t, loadError)

	require.NotNil(t, config.DefaultShell)
	assert.Equal(t, "zsh", *config.DefaultShell)
	assert.Equal(t, "gpt-4o-mini", ResolveString(config.Model, "gpt-3.5-turbo"))
	assert.True(t, ResolveBool(config.Verbose, false))
	assert.False(t, ResolveBool(config.Spinner, true))
	assert.Nil(t, config.SystemPrompt)
}

func TestLoadFrom_PopulatedUserPathWinsAlone(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	userPath := filepath.Join(tempDir, "user.toml")
	defaultPath := filepath.Join(tempDir, "default.toml")
	writeFile(t, userPath, "model = \"gpt-4o\"\n")
	writeFile(t, defaultPath, "default_shell = \"zsh\"\nverbose = true\n")

	config, loadError := LoadFrom(userPath, defaultPath)
	require.NoError(t, loadError)

	assert.Equal(t, "gpt-4o", ResolveString(config.Model, ""))
	assert.Nil(t, config.DefaultShell)
	assert.Nil(t, config.Verbose)
}

func TestLoadFrom_EmptyUserPathFallsBackToDefault(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	userPath := filepath.Join(tempDir, "user.toml")
	defaultPath := filepath.Join(tempDir, "default.toml")
	writeFile(t, userPath, "# nothing here\n")
	writeFile(t, defaultPath, "default_shell = \"zsh\"\nsystem_prompt = \"Be brief.\"\n")

	config, loadError := LoadFrom(userPath, defaultPath)
	require.NoError(t, loadError)

	assert.Equal(t, "zsh", ResolveString(config.DefaultShell, "bash"))
	assert.Equal(t, "Be brief.", ResolveString(config.SystemPrompt, ""))
	assert.True(t, config.IsPopulated())
}

func TestLoadFrom_NoFiles(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	config, loadError := LoadFrom("", filepath.Join(tempDir, "absent.toml"))
	require.NoError(t, loadError)

	assert.False(t, config.IsPopulated())
	assert.Equal(t, "bash", ResolveString(config.DefaultShell, "bash"))
	assert.True(t, ResolveBool(config.Spinner, true))
}

func TestLoadFrom_InvalidToml(t *testing.T) {
	t.Parallel()

	tempDir := t.TempDir()
	userPath := filepath.Join(tempDir, "broken.toml")
	writeFile(t, userPath, "default_shell = \n")

	_, loadError := LoadFrom(userPath, "")
	require.Error(t, loadError)
	assert.Contains(t, loadError.Error(), "parse config file")
}

func TestLoadSettings(t *testing.T) {
	t.Setenv(EnvAPIKey, "  sk-env  ")
	t.Setenv(EnvBaseURL, "http://localhost:8080/v1")
	t.Setenv(EnvFakeResponse, "")
	t.Setenv(EnvDisableMachineContext, "")
	t.Setenv(EnvLogLevel, "debug")

	settings := LoadSettings()
	assert.Equal(t, "sk-env", settings.APIKey)
	assert.Equal(t, "http://localhost:8080/v1", settings.BaseURL)
	assert.True(t, settings.HasFakeResponse, "an empty fixture still counts as present")
	assert.Equal(t, "", settings.FakeResponse)
	assert.True(t, settings.DisableMachineContext)
	assert.Equal(t, "debug", settings.LogLevel)
}

func TestLoadSettings_Unset(t *testing.T) {
	for _, envName := range []string{EnvAPIKey, EnvBaseURL, EnvFakeResponse, EnvDisableMachineContext, EnvLogLevel} {
		t.Setenv(envName, "")
		require.NoError(t, os.Unsetenv(envName))
	}

	settings := LoadSettings()
	assert.Equal(t, Settings{}, settings)
}

func TestSaveDotEnv(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DotEnvFile)
	writeFile(t, path, "OTHER=keep\nOPENAI_API_KEY=old\n")

	require.NoError(t, SaveDotEnv(path, "OPENAI_API_KEY", "sk-new"))
	require.NoError(t, SaveDotEnv(path, "TASK_SH_LOG_LEVEL", "warn"))

	values, readError := godotenv.Read(path)
	require.NoError(t, readError)
	assert.Equal(t, map[string]string{
		"OTHER":             "keep",
		"OPENAI_API_KEY":    "sk-new",
		"TASK_SH_LOG_LEVEL": "warn",
	}, values)

	info, statError := os.Stat(path)
	require.NoError(t, statError)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Error(t, SaveDotEnv(path, " ", "x"))
}

func TestSaveDotEnv_CreatesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DotEnvFile)
	require.NoError(t, SaveDotEnv(path, "OPENAI_API_KEY", "sk-first"))

	values, readError := godotenv.Read(path)
	require.NoError(t, readError)
	assert.Equal(t, "sk-first", values["OPENAI_API_KEY"])
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), DotEnvFile)
	writeFile(t, path, "TASK_SH_LOG_LEVEL=error\nOPENAI_BASE_URL=http://from-file\n")

	t.Setenv("OPENAI_BASE_URL", "http://from-env")
	t.Setenv("TASK_SH_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("TASK_SH_LOG_LEVEL"))

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "error", os.Getenv("TASK_SH_LOG_LEVEL"))
	assert.Equal(t, "http://from-env", os.Getenv("OPENAI_BASE_URL"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}
