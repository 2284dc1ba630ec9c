// Package pattern implements the offline, rule-driven command generator.
//
// The engine walks an ordered rule table and stops at the first rule whose
// regex alternatives match the normalized input: first-match-wins rather
// than best-match, which trades recall for predictability. A rule normally
// emits a single candidate; package-manager style rules emit one candidate
// per detected tool.
package pattern

import (
	"regexp"
	"strings"

	"github.com/doeshing/shellpilot/internal/domain"
	"github.com/doeshing/shellpilot/internal/ports"
)

// Engine implements the PatternMatcher port.
type Engine struct {
	rules []Rule
}

// NewEngine compiles the rule table from path, falling back to the
// embedded defaults when the file is missing or empty.
func NewEngine(path string) (*Engine, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}
	return &Engine{rules: rules}, nil
}

// RuleCount reports the size of the loaded table (used by doctor).
func (e *Engine) RuleCount() int {
	return len(e.rules)
}

// Match implements ports.PatternMatcher. The original input is never
// mutated; matching runs on a normalized copy.
func (e *Engine) Match(input string, snapshot domain.ContextSnapshot) []domain.CommandCandidate {
	normalized := normalize(input)
	if normalized == "" {
		return nil
	}

	for _, rule := range e.rules {
		for _, re := range rule.alternatives {
			match := re.FindStringSubmatch(normalized)
			if match == nil {
				continue
			}
			return rule.render(captures(re, match), snapshot)
		}
	}
	return nil
}

func normalize(input string) string {
	return strings.ToLower(strings.Join(strings.Fields(input), " "))
}

func captures(re *regexp.Regexp, match []string) map[string]string {
	values := map[string]string{}
	for i, name := range re.SubexpNames() {
		if name == "" || i >= len(match) || match[i] == "" {
			continue
		}
		values[name] = match[i]
	}
	return values
}

func (r Rule) render(captured map[string]string, snapshot domain.ContextSnapshot) []domain.CommandCandidate {
	if len(r.tools) > 0 {
		return r.renderTools(captured, snapshot)
	}

	template := r.templateFor(snapshot.OSFamily)
	if template == "" {
		return nil
	}
	return []domain.CommandCandidate{r.candidate(template, captured, snapshot)}
}

// renderTools emits one candidate per available tool; when none of the
// required tools were detected the first template is still offered as a
// best-effort suggestion.
func (r Rule) renderTools(captured map[string]string, snapshot domain.ContextSnapshot) []domain.CommandCandidate {
	var out []domain.CommandCandidate
	for _, tt := range r.tools {
		if snapshot.HasTool(tt.Tool) {
			out = append(out, r.candidate(tt.Template, captured, snapshot))
		}
	}
	if len(out) == 0 {
		out = append(out, r.candidate(r.tools[0].Template, captured, snapshot))
	}
	return out
}

func (r Rule) templateFor(family domain.OSFamily) string {
	if tpl, ok := r.templates[string(family)]; ok {
		return tpl
	}
	// generic Unix template covers unknown platforms too
	return r.templates["unix"]
}

func (r Rule) candidate(template string, captured map[string]string, snapshot domain.ContextSnapshot) domain.CommandCandidate {
	return domain.CommandCandidate{
		Text:        r.substitute(template, captured, snapshot),
		Confidence:  r.Confidence,
		Source:      domain.SourcePattern,
		Explanation: r.Explanation,
		OSFamily:    snapshot.OSFamily,
	}
}

var placeholderRe = regexp.MustCompile(`\{(\w+)\}`)

// substitute resolves {name} sites from captured groups, then context
// facts, then the rule's declared defaults.
func (r Rule) substitute(template string, captured map[string]string, snapshot domain.ContextSnapshot) string {
	result := placeholderRe.ReplaceAllStringFunc(template, func(site string) string {
		name := site[1 : len(site)-1]
		if value, ok := captured[name]; ok {
			return value
		}
		if name == "branch" && snapshot.Git != nil && snapshot.Git.Branch != "" {
			return snapshot.Git.Branch
		}
		if value, ok := r.defaults[name]; ok {
			return value
		}
		return ""
	})
	return strings.TrimSpace(strings.Join(strings.Fields(result), " "))
}

var _ ports.PatternMatcher = (*Engine)(nil)
