package executor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmExecution(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "yes", input: "y\n", expected: true},
		{name: "full yes", input: " YES \n", expected: true},
		{name: "no", input: "n\n", expected: false},
		{name: "default", input: "\n", expected: false},
		{name: "end of input", input: "", expected: false},
		{name: "yes without newline", input: "y", expected: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			prompter := NewPrompter(strings.NewReader(testCase.input), &out)

			confirmed, confirmError := prompter.ConfirmExecution("bash", "ls -la")
			require.NoError(t, confirmError)
			assert.Equal(t, testCase.expected, confirmed)
			assert.Contains(t, out.String(), "The following command will be executed:")
			assert.Contains(t, out.String(), "bash -c 'ls -la'")
			assert.Contains(t, out.String(), "Proceed with execution? [y/N]")
		})
	}
}

func TestSelectCommand(t *testing.T) {
	t.Parallel()

	options := []string{"ls -la", "ls -A"}

	testCases := []struct {
		name           string
		input          string
		expectedChoice string
		expectedOK     bool
		expectRetry    bool
	}{
		{name: "first", input: "1\n", expectedChoice: "ls -la", expectedOK: true},
		{name: "second", input: "2\n", expectedChoice: "ls -A", expectedOK: true},
		{name: "cancel", input: "0\n", expectedOK: false},
		{name: "default cancels", input: "\n", expectedOK: false},
		{name: "invalid then valid", input: "7\nabc\n2\n", expectedChoice: "ls -A", expectedOK: true, expectRetry: true},
		{name: "invalid then end of input", input: "9\n", expectedOK: false, expectRetry: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			prompter := NewPrompter(strings.NewReader(testCase.input), &out)

			choice, ok, selectError := prompter.SelectCommand(options)
			require.NoError(t, selectError)
			assert.Equal(t, testCase.expectedOK, ok)
			assert.Equal(t, testCase.expectedChoice, choice)
			assert.Contains(t, out.String(), "  1) ls -la")
			assert.Contains(t, out.String(), "  0) Cancel")
			assert.Equal(t, testCase.expectRetry, strings.Contains(out.String(), "Invalid selection, please try again."))
		})
	}
}

func TestDisplayCommand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "bash -c 'ls -la'", DisplayCommand("bash", "ls -la"))

	quoted := DisplayCommand("zsh", "echo 'hi' $HOME")
	assert.True(t, strings.HasPrefix(quoted, "zsh -c "))
	assert.NotEqual(t, "zsh -c echo 'hi' $HOME", quoted)
}

func TestCommandOptions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"ls", "ls -la"}, CommandOptions(" ls ", []string{"ls", "ls -la", "# note", "  ", "ls -la"}))
	assert.Empty(t, CommandOptions("# Please provide more details.", nil))
	assert.Equal(t, []string{"df -h"}, CommandOptions("# guidance", []string{"df -h"}))
}

func TestExecutableCommand(t *testing.T) {
	t.Parallel()

	command, ok := ExecutableCommand("  git status ")
	assert.True(t, ok)
	assert.Equal(t, "git status", command)

	_, ok = ExecutableCommand("# only advice")
	assert.False(t, ok)
}
