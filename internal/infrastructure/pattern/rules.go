package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/shellpilot/assets"
)

// ruleSpec is the YAML schema for a single pattern rule.
type ruleSpec struct {
	Action      string            `yaml:"action"`
	Explanation string            `yaml:"explanation"`
	Confidence  float64           `yaml:"confidence"`
	Patterns    []string          `yaml:"patterns"`
	Defaults    map[string]string `yaml:"defaults"`
	Templates   map[string]string `yaml:"templates"`
	Tools       []toolTemplate    `yaml:"tools"`
}

// toolTemplate binds a command template to a required tool. Declaration
// order doubles as preference order.
type toolTemplate struct {
	Tool     string `yaml:"tool"`
	Template string `yaml:"template"`
}

type rulesFile struct {
	Rules []ruleSpec `yaml:"rules"`
}

// Rule is an immutable, compiled pattern rule. Rules are loaded once at
// process start and shared read-only across invocations.
type Rule struct {
	Action       string
	Explanation  string
	Confidence   float64
	alternatives []*regexp.Regexp
	defaults     map[string]string
	templates    map[string]string
	tools        []toolTemplate
}

func loadRules(path string) ([]Rule, error) {
	data := assets.DefaultPatternsYAML
	if path != "" {
		if fileData, err := os.ReadFile(expandPath(path)); err == nil {
			data = fileData
		}
	}

	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse pattern rules: %w", err)
	}
	if len(file.Rules) == 0 {
		if err := yaml.Unmarshal(assets.DefaultPatternsYAML, &file); err != nil {
			return nil, err
		}
	}

	return compileRules(file.Rules)
}

func compileRules(specs []ruleSpec) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		if spec.Action == "" || len(spec.Patterns) == 0 {
			return nil, fmt.Errorf("pattern rule missing action or patterns: %+v", spec)
		}
		rule := Rule{
			Action:      spec.Action,
			Explanation: spec.Explanation,
			Confidence:  spec.Confidence,
			defaults:    spec.Defaults,
			templates:   spec.Templates,
			tools:       spec.Tools,
		}
		if rule.Confidence <= 0 || rule.Confidence > 1 {
			rule.Confidence = 0.8
		}
		for _, expr := range spec.Patterns {
			re, err := regexp.Compile("(?i)" + expr)
			if err != nil {
				return nil, fmt.Errorf("pattern rule %s: %w", spec.Action, err)
			}
			rule.alternatives = append(rule.alternatives, re)
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
