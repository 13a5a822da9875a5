package ai

import (
	"regexp"
	"strings"
)

var sentenceOpeners = map[string]bool{
	"the":   true,
	"this":  true,
	"that":  true,
	"these": true,
	"those": true,
	"it":    true,
}

var incompletePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(the|this|that|those|it)\b`),
	regexp.MustCompile(`(?i)\buse\s+the\b`),
	regexp.MustCompile(`(?i)\bcommand\b`),
}

// CoerceCommand turns a raw command candidate into something safe to show and
// decides how much the model can be trusted. Sentence detection runs before the
// incomplete-reference check, and inline code is pulled from the full reply only
// when the candidate reads like prose.
func CoerceCommand(candidate string, raw string) (string, Confidence) {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return "", NeedsConfirmation
	}
	if strings.HasPrefix(trimmed, "#") {
		return trimmed, Certain
	}
	if inline, ok := extractInlineCode(trimmed); ok {
		return inline, Certain
	}

	if looksLikeSentence(trimmed) {
		if inline, ok := extractInlineCode(raw); ok {
			return inline, Certain
		}
		return "# " + trimmed, NeedsConfirmation
	}

	for _, pattern := range incompletePatterns {
		if pattern.MatchString(trimmed) {
			return trimmed, NeedsConfirmation
		}
	}
	return trimmed, Certain
}

// extractInlineCode returns the first backtick-delimited span with non-blank
// content.
func extractInlineCode(input string) (string, bool) {
	start := -1
	for index, character := range input {
		if character != '`' {
			continue
		}
		if start < 0 {
			start = index + 1
			continue
		}
		begin := start
		start = -1
		if begin < index {
			if snippet := strings.TrimSpace(input[begin:index]); snippet != "" {
				return snippet, true
			}
		}
	}
	return "", false
}

func looksLikeSentence(value string) bool {
	if strings.Contains(value, "\n") {
		return false
	}
	trimmed := strings.TrimSpace(value)
	fields := strings.Fields(trimmed)
	if len(fields) == 0 {
		return false
	}
	if sentenceOpeners[strings.ToLower(fields[0])] {
		return true
	}
	return strings.HasSuffix(trimmed, ".")
}
