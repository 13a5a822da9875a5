package ai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BegaDeveloper/tasksh/internal/detector"
)

func TestBuildChatRequest_Defaults(t *testing.T) {
	t.Parallel()

	request := BuildChatRequest(PromptInput{Description: "show disk usage", Shell: ShellZsh})

	assert.Equal(t, DefaultModel, request.Model)
	assert.InDelta(t, 0.2, request.Temperature, 0.0001)
	require.Len(t, request.Messages, 2)

	systemMessage := request.Messages[0]
	assert.Equal(t, RoleSystem, systemMessage.Role)
	assert.True(t, strings.HasPrefix(systemMessage.Content, "You are an expert zsh assistant."))
	assert.Contains(t, systemMessage.Content, "Task: show disk usage")
	assert.Contains(t, systemMessage.Content, "Command: <single zsh command>")
	assert.Contains(t, systemMessage.Content, "Commands:")
	assert.Contains(t, systemMessage.Content, "uname -a")
	assert.Contains(t, systemMessage.Content, "Guidance-only responses must start with '#'.")
	assert.NotContains(t, systemMessage.Content, "Host context")

	assert.Equal(t, ChatMessage{Role: RoleUser, Content: "Description: show disk usage"}, request.Messages[1])
}

func TestBuildChatRequest_Overrides(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		input          PromptInput
		expectedModel  string
		expectedSystem string
	}{
		{
			name:           "system prompt and model",
			input:          PromptInput{Description: "list files", Shell: ShellBash, SystemPrompt: "Be terse.", Model: "gpt-4o-mini"},
			expectedModel:  "gpt-4o-mini",
			expectedSystem: "Be terse.",
		},
		{
			name:           "blank override uses template",
			input:          PromptInput{Description: "list files", Shell: ShellBash, SystemPrompt: "  ", Model: "  "},
			expectedModel:  DefaultModel,
			expectedSystem: defaultSystemPrompt(ShellBash, "list files"),
		},
		{
			name: "host context appended to override",
			input: PromptInput{
				Description:  "list files",
				Shell:        ShellBash,
				SystemPrompt: "Be terse.",
				Host:         &detector.Host{OS: "linux", Arch: "amd64", Shell: "bash"},
			},
			expectedModel:  DefaultModel,
			expectedSystem: "Be terse.\n\nHost context: os=linux, arch=amd64, shell=bash.",
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			request := BuildChatRequest(testCase.input)
			assert.Equal(t, testCase.expectedModel, request.Model)
			require.Len(t, request.Messages, 2)
			assert.Equal(t, testCase.expectedSystem, request.Messages[0].Content)
		})
	}
}
