package ai

import (
	"errors"
	"regexp"
	"strings"
)

const codeFence = "```"

var errMissingCommandLine = errors.New("model response missing 'Command:' line")

var numberedListItemPattern = regexp.MustCompile(`^(\d+)[).]\s+(?P<cmd>.+)$`)

// fillerWords never start a runnable command; list items opening with one of
// them are prose. Matching ignores case, so "Use grep" is prose too.
var fillerWords = map[string]bool{
	"the":     true,
	"this":    true,
	"that":    true,
	"those":   true,
	"uses":    true,
	"use":     true,
	"command": true,
}

type replyScanner struct {
	command         *string
	explanation     *string
	explanationLine string
	bodyLines       []string
	codeBuffer      []string
	inCodeBlock     bool
	collectingList  bool
	alternatives    []string
}

// ParseCompletion recovers a command, an explanation and alternative commands
// from free-form model text.
func ParseCompletion(raw string) (ParsedDraft, error) {
	scanner := &replyScanner{}
	for _, rawLine := range strings.Split(raw, "\n") {
		scanner.scanLine(strings.TrimSpace(rawLine))
	}

	candidate, resolveError := scanner.resolveCommand()
	if resolveError != nil {
		return ParsedDraft{}, &ParseError{Stage: StageExtract, Cause: resolveError, RawResponse: raw}
	}

	explanation := strings.Join(scanner.bodyLines, " ")
	if scanner.explanation != nil {
		explanation = *scanner.explanation
	}

	command, confidence := CoerceCommand(candidate, raw)
	if command == "" {
		return ParsedDraft{}, &ParseError{Stage: StageCoerce, Cause: errMissingCommandLine, RawResponse: raw}
	}

	return ParsedDraft{
		Command:      command,
		Explanation:  explanation,
		Alternatives: dedupeAlternatives(command, scanner.alternatives),
		Confidence:   confidence,
	}, nil
}

func (scanner *replyScanner) scanLine(line string) {
	if strings.HasPrefix(line, codeFence) {
		scanner.toggleCodeBlock()
		return
	}
	if scanner.inCodeBlock {
		scanner.codeBuffer = append(scanner.codeBuffer, line)
		return
	}
	if line == "" {
		scanner.collectingList = false
		return
	}

	if value, ok := valueAfterPrefix(line, "command:"); ok {
		scanner.command = &value
		return
	}
	if value, ok := valueAfterPrefix(line, "explanation:"); ok {
		scanner.explanationLine = line
		scanner.explanation = &value
		scanner.collectingList = false
		return
	}
	if strings.EqualFold(line, "commands:") {
		scanner.collectingList = true
		return
	}

	if scanner.collectingList {
		if candidate, ok := parseListCommand(line); ok {
			scanner.alternatives = append(scanner.alternatives, candidate)
		}
		return
	}
	scanner.bodyLines = append(scanner.bodyLines, line)
}

func (scanner *replyScanner) toggleCodeBlock() {
	scanner.inCodeBlock = !scanner.inCodeBlock
	if scanner.inCodeBlock || len(scanner.codeBuffer) == 0 {
		return
	}

	joined := strings.Join(scanner.codeBuffer, "\n")
	if scanner.command == nil {
		scanner.command = &joined
	} else {
		scanner.bodyLines = append(scanner.bodyLines, joined)
	}
	scanner.codeBuffer = nil
}

func (scanner *replyScanner) resolveCommand() (string, error) {
	if scanner.command != nil {
		return *scanner.command, nil
	}
	if len(scanner.codeBuffer) > 0 {
		return strings.Join(scanner.codeBuffer, "\n"), nil
	}
	if len(scanner.bodyLines) > 0 {
		first := scanner.bodyLines[0]
		scanner.bodyLines = scanner.bodyLines[1:]
		return first, nil
	}
	if scanner.explanationLine != "" {
		return scanner.explanationLine, nil
	}
	return "", errMissingCommandLine
}

// valueAfterPrefix matches prefix case-insensitively and returns the non-empty
// text after the first colon.
func valueAfterPrefix(line string, prefix string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(line), prefix) {
		return "", false
	}
	_, tail, found := strings.Cut(line, ":")
	if !found {
		return "", false
	}
	value := strings.TrimSpace(tail)
	return value, value != ""
}

func parseListCommand(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}

	if candidate, found := strings.CutPrefix(trimmed, "- "); found {
		candidate = strings.TrimSpace(candidate)
		if looksLikeCommand(candidate) {
			return candidate, true
		}
	}

	matches := numberedListItemPattern.FindStringSubmatch(trimmed)
	if matches == nil {
		return "", false
	}
	candidate := strings.TrimSpace(matches[numberedListItemPattern.SubexpIndex("cmd")])
	if looksLikeCommand(candidate) {
		return candidate, true
	}
	return "", false
}

func looksLikeCommand(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return false
	}
	head := strings.Fields(trimmed)[0]
	return !fillerWords[strings.ToLower(head)]
}

func dedupeAlternatives(command string, alternatives []string) []string {
	seen := map[string]bool{}
	unique := make([]string, 0, len(alternatives))
	for _, alternative := range alternatives {
		if strings.EqualFold(alternative, command) {
			continue
		}
		key := strings.ToLower(alternative)
		if seen[key] {
			continue
		}
		seen[key] = true
		if looksLikeCommand(alternative) {
			unique = append(unique, alternative)
		}
	}
	return unique
}
