package detector

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectActiveShell(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "absolute path", input: "/bin/zsh", expected: "zsh"},
		{name: "nested path", input: "/usr/local/bin/bash", expected: "bash"},
		{name: "bare name", input: "fish", expected: "fish"},
		{name: "empty", input: "", expected: "unknown"},
		{name: "whitespace", input: "   ", expected: "unknown"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.expected, detectActiveShell(testCase.input))
		})
	}
}

func TestDetectHost_UsesRuntimeAndShellEnv(t *testing.T) {
	t.Setenv("SHELL", "/opt/homebrew/bin/zsh")

	host := DetectHost()
	assert.Equal(t, runtime.GOOS, host.OS)
	assert.Equal(t, runtime.GOARCH, host.Arch)
	assert.Equal(t, "zsh", host.Shell)
}
