package security

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrBlocked matches every BlockedError through errors.Is.
var ErrBlocked = errors.New("generated command was blocked by safety rules")

type BlockedError struct {
	Command string
	Reason  string
}

func (blockedError *BlockedError) Error() string {
	if blockedError == nil || blockedError.Reason == "" {
		return ErrBlocked.Error() + "; please refine your description"
	}
	return fmt.Sprintf("%s (%s); please refine your description", ErrBlocked.Error(), blockedError.Reason)
}

func (blockedError *BlockedError) Is(target error) bool {
	return target == ErrBlocked
}

type blockRule struct {
	reason string
	regex  *regexp.Regexp
}

// Order matters: the first matching rule names the reason.
var blockedPatterns = []blockRule{
	{reason: "recursive force delete", regex: regexp.MustCompile(`(?i)rm\s+-rf`)},
	{reason: "privilege escalation", regex: regexp.MustCompile(`(?i)\bsudo\b`)},
	{reason: "raw disk write", regex: regexp.MustCompile(`(?i)dd\s+.*of=`)},
	{reason: "download piped to shell", regex: regexp.MustCompile(`(?i)curl\s+[^|]+\|\s*sh`)},
	{reason: "world-writable permissions", regex: regexp.MustCompile(`(?i)chmod\s+777`)},
	{reason: "filesystem format", regex: regexp.MustCompile(`(?i)mkfs\.\w*`)},
	{reason: "recursive remote copy", regex: regexp.MustCompile(`(?i)scp\s+-r`)},
	{reason: "shutdown command", regex: regexp.MustCompile(`(?i)shutdown`)},
	{reason: "reboot command", regex: regexp.MustCompile(`(?i)reboot`)},
	{reason: "poweroff command", regex: regexp.MustCompile(`(?i)poweroff`)},
}

// Filter applies the built-in block table followed by any project deny rules.
// Project rules can only add restrictions.
type Filter struct {
	denyRules []commandRule
}

func NewFilter(policy *Policy) *Filter {
	filter := &Filter{}
	if policy != nil {
		filter.denyRules = policy.denyRules
	}
	return filter
}

func (filter *Filter) Enforce(command string) error {
	for _, blockedPattern := range blockedPatterns {
		if blockedPattern.regex.MatchString(command) {
			return &BlockedError{Command: command, Reason: blockedPattern.reason}
		}
	}
	if filter == nil {
		return nil
	}

	normalizedCommand := strings.TrimSpace(command)
	for _, rule := range filter.denyRules {
		if rule.matches(normalizedCommand) {
			return &BlockedError{Command: command, Reason: "denied by project policy: " + rule.String()}
		}
	}
	return nil
}

// Enforce checks command against the built-in table only.
func Enforce(command string) error {
	return (*Filter)(nil).Enforce(command)
}
