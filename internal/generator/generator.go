// Package generator turns a task description into a vetted shell command. It
// owns input validation, the offline fixture path and the final safety check;
// transport, parsing and retries live in package ai.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/BegaDeveloper/tasksh/internal/ai"
	"github.com/BegaDeveloper/tasksh/internal/detector"
	"github.com/BegaDeveloper/tasksh/internal/security"
)

const (
	GuidanceCommand = "# Please provide more details."

	explanationEmpty = "Description was empty or ambiguous."
	explanationShort = "Description appears too short or ambiguous."
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY missing; set it as an environment variable or in your .env file")

// Config is read from the environment once by the caller.
type Config struct {
	APIKey  string
	BaseURL string
	// HasFakeResponse is true whenever the fixture variable is set, even to an
	// empty string.
	FakeResponse          string
	HasFakeResponse       bool
	DisableMachineContext bool
	// Host overrides detection; nil means detect at request time.
	Host *detector.Host
}

type Request struct {
	Description  string
	Shell        ai.Shell
	SystemPrompt string
	Model        string
}

type GeneratedCommand struct {
	Command      string
	Explanation  string
	RawResponse  *string
	Confidence   ai.Confidence
	Alternatives []string
}

// IsGuidance reports whether the command is advice rather than something to run.
func (generated GeneratedCommand) IsGuidance() bool {
	return strings.HasPrefix(strings.TrimSpace(generated.Command), "#")
}

type Generator struct {
	config         Config
	completer      ai.Completer
	filter         *security.Filter
	retrierOptions []ai.RetrierOption
	logger         *slog.Logger
}

type Option func(*Generator)

func WithCompleter(completer ai.Completer) Option {
	return func(generator *Generator) {
		generator.completer = completer
	}
}

func WithFilter(filter *security.Filter) Option {
	return func(generator *Generator) {
		if filter != nil {
			generator.filter = filter
		}
	}
}

func WithRetrierOptions(options ...ai.RetrierOption) Option {
	return func(generator *Generator) {
		generator.retrierOptions = append(generator.retrierOptions, options...)
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(generator *Generator) {
		if logger != nil {
			generator.logger = logger
		}
	}
}

func New(config Config, options ...Option) *Generator {
	generator := &Generator{
		config: config,
		filter: security.NewFilter(nil),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(generator)
	}
	return generator
}

func (generator *Generator) Generate(ctx context.Context, request Request) (GeneratedCommand, error) {
	logger := generator.logger.With("request_id", uuid.NewString())
	if request.Shell == "" {
		request.Shell = ai.ShellBash
	}
	logger.Debug("starting command generation", "shell", request.Shell)

	trimmed := strings.TrimSpace(request.Description)
	if trimmed == "" {
		logger.Warn("received empty description")
		return guidance(explanationEmpty), nil
	}
	if len(strings.Fields(trimmed)) < 2 {
		logger.Warn("description appears ambiguous", "description", trimmed)
		return guidance(explanationShort), nil
	}

	if generator.config.HasFakeResponse {
		logger.Debug("using fixture response")
		return generator.finalize(logger, generator.config.FakeResponse)
	}

	if strings.TrimSpace(generator.config.APIKey) == "" {
		return GeneratedCommand{}, ErrMissingAPIKey
	}

	completer := generator.completer
	if completer == nil {
		completer = ai.NewClient(generator.config.BaseURL, generator.config.APIKey)
	}
	retrierOptions := append([]ai.RetrierOption{ai.WithRetrierLogger(logger)}, generator.retrierOptions...)
	retrier := ai.NewRetrier(completer, retrierOptions...)

	promptInput := ai.PromptInput{
		Description:  request.Description,
		Shell:        request.Shell,
		SystemPrompt: request.SystemPrompt,
		Model:        request.Model,
		Host:         generator.hostContext(),
	}
	raw, retryError := retrier.Do(ctx, func() ai.ChatRequest {
		return ai.BuildChatRequest(promptInput)
	})
	if retryError != nil {
		return GeneratedCommand{}, retryError
	}

	return generator.finalize(logger, raw)
}

func (generator *Generator) finalize(logger *slog.Logger, raw string) (GeneratedCommand, error) {
	draft, parseError := ai.ParseCompletion(raw)
	if parseError != nil {
		return GeneratedCommand{}, fmt.Errorf("parse model response: %w", parseError)
	}

	if enforceError := generator.filter.Enforce(draft.Command); enforceError != nil {
		logger.Warn("blocked unsafe command", "command", draft.Command, "error", enforceError)
		return GeneratedCommand{}, enforceError
	}

	logger.Debug("generated command candidate", "command", draft.Command, "confidence", draft.Confidence)
	rawResponse := raw
	return GeneratedCommand{
		Command:      draft.Command,
		Explanation:  draft.Explanation,
		RawResponse:  &rawResponse,
		Confidence:   draft.Confidence,
		Alternatives: generator.safeAlternatives(logger, draft.Alternatives),
	}, nil
}

// safeAlternatives drops every alternative the filter rejects, so a blocked
// option is never offered for selection.
func (generator *Generator) safeAlternatives(logger *slog.Logger, alternatives []string) []string {
	allowed := make([]string, 0, len(alternatives))
	for _, alternative := range alternatives {
		if enforceError := generator.filter.Enforce(alternative); enforceError != nil {
			logger.Warn("dropped unsafe alternative", "command", alternative, "error", enforceError)
			continue
		}
		allowed = append(allowed, alternative)
	}
	return allowed
}

func (generator *Generator) hostContext() *detector.Host {
	if generator.config.DisableMachineContext {
		return nil
	}
	if generator.config.Host != nil {
		return generator.config.Host
	}
	host := detector.DetectHost()
	return &host
}

func guidance(explanation string) GeneratedCommand {
	return GeneratedCommand{
		Command:      GuidanceCommand,
		Explanation:  explanation,
		Confidence:   ai.Certain,
		Alternatives: []string{},
	}
}
