package safety

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/shellpilot/assets"
	"github.com/doeshing/shellpilot/internal/domain"
)

// ruleSpec is the YAML schema for a single guardrail rule.
type ruleSpec struct {
	ID          string           `yaml:"id"`
	Pattern     string           `yaml:"pattern"`
	Rationale   string           `yaml:"rationale"`
	Alternative *alternativeSpec `yaml:"alternative"`
}

// alternativeSpec describes the safer rewrite for a matched command.
type alternativeSpec struct {
	Pattern string `yaml:"pattern"`
	Replace string `yaml:"replace"`
}

type rulesFile struct {
	Rules struct {
		Forbidden []ruleSpec `yaml:"forbidden"`
		Dangerous []ruleSpec `yaml:"dangerous"`
		Cautious  []ruleSpec `yaml:"cautious"`
	} `yaml:"rules"`
}

// Rule is an immutable, compiled guardrail rule.
type Rule struct {
	ID        string
	Level     domain.SafetyLevel
	Rationale string
	re        *regexp.Regexp
	altRe     *regexp.Regexp
	altRepl   string
}

// Alternative applies the rule's safer rewrite to command text. Returns ""
// when the rule carries no alternative or the rewrite changes nothing.
func (r Rule) Alternative(command string) string {
	if r.altRe == nil {
		return ""
	}
	rewritten := strings.TrimSpace(r.altRe.ReplaceAllString(command, r.altRepl))
	if rewritten == command {
		return ""
	}
	return rewritten
}

func loadRules(path string) (map[domain.SafetyLevel][]Rule, error) {
	data := assets.DefaultGuardrailYAML
	if path != "" {
		if fileData, err := os.ReadFile(expandPath(path)); err == nil {
			data = fileData
		}
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse guardrail rules: %w", err)
	}
	if len(file.Rules.Forbidden)+len(file.Rules.Dangerous)+len(file.Rules.Cautious) == 0 {
		if err := yaml.Unmarshal(assets.DefaultGuardrailYAML, &file); err != nil {
			return nil, err
		}
	}

	grouped := map[domain.SafetyLevel][]Rule{}
	for _, group := range []struct {
		level domain.SafetyLevel
		specs []ruleSpec
	}{
		{domain.SafetyForbidden, file.Rules.Forbidden},
		{domain.SafetyDangerous, file.Rules.Dangerous},
		{domain.SafetyCautious, file.Rules.Cautious},
	} {
		for _, spec := range group.specs {
			rule, err := compileRule(spec, group.level)
			if err != nil {
				return nil, err
			}
			grouped[group.level] = append(grouped[group.level], rule)
		}
	}
	return grouped, nil
}

func compileRule(spec ruleSpec, level domain.SafetyLevel) (Rule, error) {
	re, err := regexp.Compile("(?i)" + spec.Pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("guardrail rule %s: %w", spec.ID, err)
	}
	rule := Rule{ID: spec.ID, Level: level, Rationale: spec.Rationale, re: re}
	if spec.Alternative != nil {
		altRe, err := regexp.Compile("(?i)" + spec.Alternative.Pattern)
		if err != nil {
			return Rule{}, fmt.Errorf("guardrail rule %s alternative: %w", spec.ID, err)
		}
		rule.altRe = altRe
		rule.altRepl = spec.Alternative.Replace
	}
	return rule, nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
