package ai

import (
	"errors"
	"fmt"
	"strings"
)

const (
	maxDebugRawRunes = 2000
	truncatedSuffix  = "...<truncated>"
	emptyRawResponse = "<empty>"
)

// ParseStage names the step of reply parsing that gave up.
type ParseStage string

const (
	// StageExtract covers locating a command candidate in the reply text.
	StageExtract ParseStage = "command extraction"
	// StageCoerce covers cleaning the candidate into something runnable.
	StageCoerce ParseStage = "command coercion"
)

// ParseError reports a reply that arrived intact but held nothing usable as a
// command. It is never retried.
type ParseError struct {
	Stage       ParseStage
	Cause       error
	RawResponse string
}

func (parseError *ParseError) Error() string {
	if parseError == nil {
		return "model reply unusable"
	}
	stage := parseError.Stage
	if stage == "" {
		stage = StageExtract
	}
	if parseError.Cause == nil {
		return fmt.Sprintf("model reply unusable at %s", stage)
	}
	return fmt.Sprintf("model reply unusable at %s: %v", stage, parseError.Cause)
}

func (parseError *ParseError) Unwrap() error {
	if parseError == nil {
		return nil
	}
	return parseError.Cause
}

// DebugRawResponseFromError returns the reply behind a parse failure anywhere in
// err's chain, flattened to one printable line.
func DebugRawResponseFromError(err error) (string, bool) {
	var parseError *ParseError
	if !errors.As(err, &parseError) {
		return "", false
	}
	return sanitizeDebugRawResponse(parseError.RawResponse), true
}

// sanitizeDebugRawResponse escapes line breaks and tabs, blanks other control
// characters and caps the result at maxDebugRawRunes runes.
func sanitizeDebugRawResponse(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return emptyRawResponse
	}

	var sanitized strings.Builder
	runeCount := 0
	for _, character := range trimmed {
		if runeCount == maxDebugRawRunes {
			sanitized.WriteString(truncatedSuffix)
			break
		}
		runeCount++

		switch {
		case character == '\r':
			sanitized.WriteString(`\r`)
		case character == '\n':
			sanitized.WriteString(`\n`)
		case character == '\t':
			sanitized.WriteString(`\t`)
		case character < 32 || character == 127:
			sanitized.WriteByte(' ')
		default:
			sanitized.WriteRune(character)
		}
	}
	return sanitized.String()
}
