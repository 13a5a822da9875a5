package ai

import (
	"fmt"
	"strings"
)

type Shell string

const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
)

func ParseShell(value string) (Shell, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case string(ShellBash):
		return ShellBash, nil
	case string(ShellZsh):
		return ShellZsh, nil
	default:
		return "", fmt.Errorf("unsupported shell %q (expected bash|zsh)", value)
	}
}

type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []ChatMessage `json:"messages"`
}

type ToolCall struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Function struct {
		Name      string `json:"name"`
		Arguments string `json:"arguments"`
	} `json:"function"`
}

type ChoiceMessage struct {
	Role      string     `json:"role"`
	Content   *string    `json:"content"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChatCompletion struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

type apiErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Confidence tells the caller whether a command can be offered as-is or needs a
// human to look at it first.
type Confidence int

const (
	Certain Confidence = iota
	NeedsConfirmation
)

func (confidence Confidence) String() string {
	switch confidence {
	case Certain:
		return "certain"
	case NeedsConfirmation:
		return "needs_confirmation"
	default:
		return "unknown"
	}
}

type ParsedDraft struct {
	Command      string
	Explanation  string
	Alternatives []string
	Confidence   Confidence
}
