package security

import (
	"fmt"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

func ParseRiskLevel(value string) (RiskLevel, error) {
	switch RiskLevel(strings.ToLower(strings.TrimSpace(value))) {
	case RiskLow:
		return RiskLow, nil
	case RiskMedium:
		return RiskMedium, nil
	case RiskHigh:
		return RiskHigh, nil
	default:
		return "", fmt.Errorf("invalid risk level %q (expected low|medium|high)", value)
	}
}

func (level RiskLevel) rank() int {
	switch level {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	default:
		return 1
	}
}

// Assessment is advisory. Commands reaching it already passed the block table;
// the CLI shows the reason before asking to run.
type Assessment struct {
	RequiresConfirmation bool
	Level                RiskLevel
	Reason               string
}

var suspiciousPatterns = []struct {
	reason    string
	riskLevel RiskLevel
	regex     *regexp.Regexp
}{
	{reason: "recursive delete", riskLevel: RiskHigh, regex: regexp.MustCompile(`(?i)\brm\s+-[a-z]*r`)},
	{reason: "git hard reset", riskLevel: RiskHigh, regex: regexp.MustCompile(`(?i)\bgit\s+reset\s+--hard\b`)},
	{reason: "git clean", riskLevel: RiskHigh, regex: regexp.MustCompile(`(?i)\bgit\s+clean\s+-[a-z]*f`)},
	{reason: "recursive permission change", riskLevel: RiskMedium, regex: regexp.MustCompile(`(?i)\bch(mod|own)\s+-R\b`)},
	{reason: "process kill", riskLevel: RiskMedium, regex: regexp.MustCompile(`(?i)\b(kill|pkill|killall)\b`)},
	{reason: "in-place edit", riskLevel: RiskMedium, regex: regexp.MustCompile(`(?i)\bsed\s+(-[a-z]*\s+)*-i\b`)},
}

func AssessCommand(command string) (Assessment, error) {
	normalizedCommand := strings.TrimSpace(command)
	if normalizedCommand == "" {
		return Assessment{}, fmt.Errorf("empty command")
	}

	assessment := Assessment{Level: RiskLow}
	if strings.HasPrefix(normalizedCommand, "#") {
		return assessment, nil
	}

	for _, suspiciousPattern := range suspiciousPatterns {
		if suspiciousPattern.regex.MatchString(normalizedCommand) {
			assessment.RequiresConfirmation = true
			assessment.Level = maxRiskLevel(assessment.Level, suspiciousPattern.riskLevel)
			assessment.Reason = suspiciousPattern.reason
			break
		}
	}

	if astRiskReason, astRiskLevel := detectASTRisk(normalizedCommand); astRiskReason != "" {
		assessment.RequiresConfirmation = true
		assessment.Level = maxRiskLevel(assessment.Level, astRiskLevel)
		if assessment.Reason == "" {
			assessment.Reason = astRiskReason
		}
	}

	return assessment, nil
}

func detectASTRisk(command string) (string, RiskLevel) {
	parser := syntax.NewParser()
	file, parseError := parser.Parse(strings.NewReader(command), "")
	if parseError != nil {
		return "", RiskLow
	}

	riskReason := ""
	riskLevel := RiskLow
	flag := func(reason string) {
		if riskReason == "" {
			riskReason = reason
		}
		riskLevel = maxRiskLevel(riskLevel, RiskMedium)
	}

	syntax.Walk(file, func(node syntax.Node) bool {
		switch typedNode := node.(type) {
		case *syntax.Redirect:
			if isWriteRedirect(typedNode.Op) && typedNode.Word != nil && typedNode.Word.Lit() != "/dev/null" {
				flag("output redirection overwrites files")
			}
		case *syntax.Subshell:
			flag("subshell command detected")
		case *syntax.CmdSubst:
			flag("command substitution detected")
		case *syntax.BinaryCmd:
			if typedNode.Op == syntax.Pipe || typedNode.Op == syntax.PipeAll {
				flag("pipeline command detected")
			}
		}
		return true
	})

	return riskReason, riskLevel
}

func isWriteRedirect(operator syntax.RedirOperator) bool {
	switch operator {
	case syntax.RdrOut, syntax.AppOut, syntax.RdrAll, syntax.AppAll, syntax.ClbOut:
		return true
	}
	return false
}

func maxRiskLevel(left RiskLevel, right RiskLevel) RiskLevel {
	if right.rank() > left.rank() {
		return right
	}
	return left
}
