package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const PolicyFileName = ".task-policy.yaml"

// Policy is the optional per-project file that tightens what generated
// commands may do. It is looked up from the working directory upward.
type Policy struct {
	Version      int      `yaml:"version"`
	MaxRisk      string   `yaml:"max_risk"`
	DenyCommands []string `yaml:"deny_commands"`

	path      string
	denyRules []commandRule
}

type ruleKind string

const (
	ruleExact  ruleKind = "exact"
	rulePrefix ruleKind = "prefix"
	ruleRegex  ruleKind = "re"
)

type commandRule struct {
	kind  ruleKind
	value string
	regex *regexp.Regexp
}

func (rule commandRule) matches(command string) bool {
	switch rule.kind {
	case ruleExact:
		return command == rule.value
	case rulePrefix:
		return strings.HasPrefix(command, rule.value)
	case ruleRegex:
		return rule.regex != nil && rule.regex.MatchString(command)
	}
	return false
}

func (rule commandRule) String() string {
	return string(rule.kind) + ":" + rule.value
}

func FindPolicyFile(cwd string) string {
	current := cwd
	for {
		candidate := filepath.Join(current, PolicyFileName)
		if _, statError := os.Stat(candidate); statError == nil {
			return candidate
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}
	return ""
}

// LoadPolicy returns nil without error when no policy file exists above cwd.
func LoadPolicy(cwd string) (*Policy, error) {
	path := FindPolicyFile(cwd)
	if path == "" {
		return nil, nil
	}
	raw, readError := os.ReadFile(path)
	if readError != nil {
		return nil, fmt.Errorf("read %s: %w", PolicyFileName, readError)
	}
	policy, parseError := ParsePolicy(raw)
	if parseError != nil {
		return nil, fmt.Errorf("%s: %w", path, parseError)
	}
	policy.path = path
	return policy, nil
}

func ParsePolicy(raw []byte) (*Policy, error) {
	policy := &Policy{}
	if unmarshalError := yaml.Unmarshal(raw, policy); unmarshalError != nil {
		return nil, fmt.Errorf("invalid %s: %w", PolicyFileName, unmarshalError)
	}

	if strings.TrimSpace(policy.MaxRisk) != "" {
		if _, levelError := ParseRiskLevel(policy.MaxRisk); levelError != nil {
			return nil, fmt.Errorf("max_risk: %w", levelError)
		}
	}

	for index, rawRule := range policy.DenyCommands {
		trimmed := strings.TrimSpace(rawRule)
		if trimmed == "" {
			continue
		}
		rule, ruleError := parseCommandRule(trimmed)
		if ruleError != nil {
			return nil, fmt.Errorf("deny_commands[%d]: %w", index, ruleError)
		}
		policy.denyRules = append(policy.denyRules, rule)
	}
	return policy, nil
}

func (policy *Policy) Path() string {
	if policy == nil {
		return ""
	}
	return policy.path
}

// CheckRisk rejects an assessment above max_risk. A nil policy or an unset
// max_risk allows everything.
func (policy *Policy) CheckRisk(assessment Assessment) error {
	if policy == nil || strings.TrimSpace(policy.MaxRisk) == "" {
		return nil
	}
	maxLevel, levelError := ParseRiskLevel(policy.MaxRisk)
	if levelError != nil {
		return levelError
	}
	if assessment.Level.rank() > maxLevel.rank() {
		return &BlockedError{
			Reason: fmt.Sprintf("risk %s exceeds project max_risk %s: %s", assessment.Level, maxLevel, assessment.Reason),
		}
	}
	return nil
}

func parseCommandRule(line string) (commandRule, error) {
	if value, found := strings.CutPrefix(line, "exact:"); found {
		value = strings.TrimSpace(value)
		if value == "" {
			return commandRule{}, errors.New("empty exact rule")
		}
		return commandRule{kind: ruleExact, value: value}, nil
	}

	if value, found := strings.CutPrefix(line, "prefix:"); found {
		value = strings.TrimSpace(value)
		if value == "" {
			return commandRule{}, errors.New("empty prefix rule")
		}
		return commandRule{kind: rulePrefix, value: value}, nil
	}

	if value, found := strings.CutPrefix(line, "re:"); found {
		value = strings.TrimSpace(value)
		if value == "" {
			return commandRule{}, errors.New("empty regex rule")
		}
		compiled, compileError := regexp.Compile(value)
		if compileError != nil {
			return commandRule{}, fmt.Errorf("invalid regex: %w", compileError)
		}
		return commandRule{kind: ruleRegex, value: value, regex: compiled}, nil
	}

	return commandRule{kind: ruleExact, value: line}, nil
}
