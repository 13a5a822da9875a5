package ai

import (
	"fmt"
	"strings"

	"github.com/BegaDeveloper/tasksh/internal/detector"
)

const defaultTemperature = 0.2

type PromptInput struct {
	Description  string
	Shell        Shell
	SystemPrompt string
	Model        string
	// Host is nil when machine context is disabled.
	Host *detector.Host
}

func BuildChatRequest(input PromptInput) ChatRequest {
	model := strings.TrimSpace(input.Model)
	if model == "" {
		model = DefaultModel
	}

	systemPrompt := input.SystemPrompt
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = defaultSystemPrompt(input.Shell, input.Description)
	}
	systemPrompt = appendHostContext(systemPrompt, input.Host)

	return ChatRequest{
		Model:       model,
		Temperature: defaultTemperature,
		Messages: []ChatMessage{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: "Description: " + input.Description},
		},
	}
}

func defaultSystemPrompt(shell Shell, description string) string {
	return fmt.Sprintf(`You are an expert %[1]s assistant.
Task: %[2]s
Requirements:
1. When confident, reply using:
   Command: <single %[1]s command>
   Explanation: <short justification>
2. When unsure or multiple safe approaches exist, reply using:
   Commands:
   - <command option 1>
   - <command option 2>
   Explanation: <how to choose / warnings>
3. Never fabricate output (avoid echoing statements unless the user explicitly wants a literal message).
4. Prefer real inspection commands (e.g., hostname, uname -a, sysctl, system_profiler) for environment questions.
5. Guidance-only responses must start with '#'.`, shell, description)
}

func appendHostContext(prompt string, host *detector.Host) string {
	if host == nil {
		return prompt
	}
	return fmt.Sprintf("%s\n\nHost context: os=%s, arch=%s, shell=%s.", prompt, host.OS, host.Arch, host.Shell)
}
