// Package gate decides whether a classified candidate may execute.
package gate

import "github.com/doeshing/shellpilot/internal/domain"

// Decide maps a safety level plus user intent to an execution decision.
// Forbidden always denies: no flag or configuration overrides it.
// Dangerous always prompts, even under auto-confirm; Cautious prompts
// unless auto-confirm is set; Safe proceeds. When userWantsExecute is
// false the decision is informational only: callers display the
// classification and never execute, independent of level.
func Decide(level domain.SafetyLevel, userWantsExecute bool, autoConfirm bool) domain.GateDecision {
	if level == domain.SafetyForbidden {
		return domain.GateDeny
	}
	switch level {
	case domain.SafetyDangerous:
		return domain.GatePromptUser
	case domain.SafetyCautious:
		if autoConfirm {
			return domain.GateProceed
		}
		return domain.GatePromptUser
	default:
		return domain.GateProceed
	}
}

// MayExecute reports whether a decision permits running the command right
// now (prompting handled by the caller).
func MayExecute(decision domain.GateDecision, userWantsExecute bool) bool {
	return userWantsExecute && decision == domain.GateProceed
}
