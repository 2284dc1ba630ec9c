package domain

// SafetyLevel enumerates classifier outcomes, ordered by severity.
type SafetyLevel string

const (
	SafetySafe      SafetyLevel = "safe"
	SafetyCautious  SafetyLevel = "cautious"
	SafetyDangerous SafetyLevel = "dangerous"
	SafetyForbidden SafetyLevel = "forbidden"
)

// Severity maps a level to its rank for comparisons. Unknown levels rank
// as Safe so a corrupt rules file can never silently escalate.
func (l SafetyLevel) Severity() int {
	switch l {
	case SafetyCautious:
		return 1
	case SafetyDangerous:
		return 2
	case SafetyForbidden:
		return 3
	default:
		return 0
	}
}

// MoreSevere reports whether l outranks other.
func (l SafetyLevel) MoreSevere(other SafetyLevel) bool {
	return l.Severity() > other.Severity()
}

// SafetyVerdict is the risk classification attached to a candidate.
type SafetyVerdict struct {
	Level                SafetyLevel
	MatchedRuleID        string
	Rationale            string
	SuggestedAlternative string
}

// GateDecision is the confirmation gate outcome for a classified candidate.
type GateDecision string

const (
	GateProceed    GateDecision = "proceed"
	GatePromptUser GateDecision = "prompt_user"
	GateDeny       GateDecision = "deny"
)
