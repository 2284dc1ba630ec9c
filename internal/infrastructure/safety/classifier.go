// Package safety implements the four-level risk classifier.
//
// Rule groups are evaluated in strict severity order (Forbidden first);
// within a group, declaration order decides. The verdict comes from the
// first matching rule of the highest-severity group with any match, so
// severity never downgrades. Classification is pure and total: a command
// matching no rule is Safe.
package safety

import (
	"github.com/doeshing/shellpilot/internal/domain"
	"github.com/doeshing/shellpilot/internal/ports"
)

// Classifier implements the SafetyClassifier port.
type Classifier struct {
	groups map[domain.SafetyLevel][]Rule
}

// NewClassifier loads guardrail rules from path, falling back to the
// embedded defaults when the file is missing or empty.
func NewClassifier(path string) (*Classifier, error) {
	groups, err := loadRules(path)
	if err != nil {
		return nil, err
	}
	return &Classifier{groups: groups}, nil
}

// RuleCount reports the total number of loaded rules (used by doctor).
func (c *Classifier) RuleCount() int {
	total := 0
	for _, rules := range c.groups {
		total += len(rules)
	}
	return total
}

var severityOrder = []domain.SafetyLevel{
	domain.SafetyForbidden,
	domain.SafetyDangerous,
	domain.SafetyCautious,
}

// Classify implements ports.SafetyClassifier.
func (c *Classifier) Classify(commandText string) domain.SafetyVerdict {
	for _, level := range severityOrder {
		for _, rule := range c.groups[level] {
			if !rule.re.MatchString(commandText) {
				continue
			}
			verdict := domain.SafetyVerdict{
				Level:         level,
				MatchedRuleID: rule.ID,
				Rationale:     rule.Rationale,
			}
			if level == domain.SafetyDangerous || level == domain.SafetyCautious {
				verdict.SuggestedAlternative = rule.Alternative(commandText)
			}
			return verdict
		}
	}
	return domain.SafetyVerdict{Level: domain.SafetySafe}
}

var _ ports.SafetyClassifier = (*Classifier)(nil)
