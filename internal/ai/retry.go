package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	MaxRetries     = 3
	RequestTimeout = 30 * time.Second

	rateLimitBaseDelay = 1000 * time.Millisecond
	defaultBaseDelay   = 300 * time.Millisecond
)

var ErrRequestTimeout = errors.New("request timed out")

var errNoChoices = errors.New("chat response did not contain any choices")

// RetryError is returned once every attempt against the backend failed. Cause is
// the failure of the final attempt.
type RetryError struct {
	Attempts int
	Cause    error
}

func (retryError *RetryError) Error() string {
	if retryError == nil || retryError.Cause == nil {
		return "failed to generate command after multiple attempts"
	}
	return fmt.Sprintf("failed to generate command after multiple attempts: %v", retryError.Cause)
}

func (retryError *RetryError) Unwrap() error {
	if retryError == nil {
		return nil
	}
	return retryError.Cause
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeRetryable
	outcomeTerminal
)

type attemptOutcome struct {
	kind    outcomeKind
	content string
	err     error
}

type retryResult struct {
	content string
	err     error
}

type Retrier struct {
	completer   Completer
	maxAttempts int
	timeout     time.Duration
	backoff     func(err error, attempt int) time.Duration
	logger      *slog.Logger
}

type RetrierOption func(*Retrier)

func WithMaxAttempts(maxAttempts int) RetrierOption {
	return func(retrier *Retrier) {
		if maxAttempts > 0 {
			retrier.maxAttempts = maxAttempts
		}
	}
}

func WithRequestTimeout(timeout time.Duration) RetrierOption {
	return func(retrier *Retrier) {
		if timeout > 0 {
			retrier.timeout = timeout
		}
	}
}

func WithBackoff(backoff func(err error, attempt int) time.Duration) RetrierOption {
	return func(retrier *Retrier) {
		if backoff != nil {
			retrier.backoff = backoff
		}
	}
}

func WithRetrierLogger(logger *slog.Logger) RetrierOption {
	return func(retrier *Retrier) {
		if logger != nil {
			retrier.logger = logger
		}
	}
}

func NewRetrier(completer Completer, options ...RetrierOption) *Retrier {
	retrier := &Retrier{
		completer:   completer,
		maxAttempts: MaxRetries,
		timeout:     RequestTimeout,
		backoff:     computeBackoffDelay,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, option := range options {
		option(retrier)
	}
	return retrier
}

// Do runs the attempt loop on its own goroutine and waits for it or for ctx.
// build is called once per attempt.
func (retrier *Retrier) Do(ctx context.Context, build func() ChatRequest) (string, error) {
	resultChannel := make(chan retryResult, 1)
	go func() {
		content, runError := retrier.run(ctx, build)
		resultChannel <- retryResult{content: content, err: runError}
	}()

	select {
	case result := <-resultChannel:
		return result.content, result.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (retrier *Retrier) run(ctx context.Context, build func() ChatRequest) (string, error) {
	var lastError error
	for attempt := 0; attempt < retrier.maxAttempts; attempt++ {
		request := build()
		retrier.logger.Debug("dispatching chat completion request", "attempt", attempt, "model", request.Model)

		outcome := retrier.attempt(ctx, request)
		switch outcome.kind {
		case outcomeSuccess:
			retrier.logger.Debug("raw completion content", "attempt", attempt, "content", outcome.content)
			return outcome.content, nil
		case outcomeTerminal:
			return "", outcome.err
		}

		lastError = outcome.err
		if attempt+1 == retrier.maxAttempts {
			break
		}

		delay := retrier.backoff(outcome.err, attempt)
		retrier.logger.Warn("chat completion attempt failed, retrying", "attempt", attempt, "delay", delay, "error", outcome.err)
		if sleepError := sleepContext(ctx, delay); sleepError != nil {
			return "", sleepError
		}
	}

	if lastError == nil {
		lastError = errors.New("unknown error while calling chat backend")
	}
	return "", &RetryError{Attempts: retrier.maxAttempts, Cause: lastError}
}

func (retrier *Retrier) attempt(ctx context.Context, request ChatRequest) attemptOutcome {
	attemptContext, cancel := context.WithTimeout(ctx, retrier.timeout)
	defer cancel()

	completion, completionError := retrier.completer.CreateChatCompletion(attemptContext, request)
	if completionError != nil {
		if ctx.Err() != nil {
			return attemptOutcome{kind: outcomeTerminal, err: ctx.Err()}
		}
		if errors.Is(completionError, context.DeadlineExceeded) || errors.Is(attemptContext.Err(), context.DeadlineExceeded) {
			return attemptOutcome{kind: outcomeRetryable, err: ErrRequestTimeout}
		}
		return attemptOutcome{kind: outcomeRetryable, err: completionError}
	}

	content, contentError := completionContent(completion)
	if contentError != nil {
		return attemptOutcome{kind: outcomeTerminal, err: contentError}
	}
	return attemptOutcome{kind: outcomeSuccess, content: content}
}

// completionContent reads the first choice. Models sometimes answer only through
// tool calls, so empty text falls back to the joined call arguments.
func completionContent(completion ChatCompletion) (string, error) {
	if len(completion.Choices) == 0 {
		return "", errNoChoices
	}
	message := completion.Choices[0].Message

	content := ""
	if message.Content != nil {
		content = *message.Content
	}
	if strings.TrimSpace(content) != "" || len(message.ToolCalls) == 0 {
		return content, nil
	}

	arguments := make([]string, 0, len(message.ToolCalls))
	for _, toolCall := range message.ToolCalls {
		arguments = append(arguments, toolCall.Function.Arguments)
	}
	if fallback := strings.Join(arguments, "\n"); strings.TrimSpace(fallback) != "" {
		return fallback, nil
	}
	return content, nil
}

func computeBackoffDelay(err error, attempt int) time.Duration {
	baseDelay := defaultBaseDelay
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "rate limit") {
		baseDelay = rateLimitBaseDelay
	}
	return baseDelay * time.Duration(attempt+1)
}

func sleepContext(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
