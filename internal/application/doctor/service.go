// Package doctor runs environment diagnostics.
package doctor

import (
	"context"
	"fmt"

	"github.com/doeshing/shellpilot/internal/domain"
	"github.com/doeshing/shellpilot/internal/ports"
)

// RuleCounter reports how many rules a table compiled. Both the pattern
// engine and the guardrail classifier satisfy it.
type RuleCounter interface {
	RuleCount() int
}

// CredentialChecker reports whether an AI provider is usable.
type CredentialChecker interface {
	Name() string
	HasCredentials() bool
}

// Service runs environment diagnostics. Patterns, Guardrail and AI may be
// nil when the corresponding adapter failed to construct; the report says
// so instead of crashing.
type Service struct {
	Config    ports.ConfigProvider
	Context   ports.ContextBuilder
	Patterns  RuleCounter
	Guardrail RuleCounter
	AI        CredentialChecker
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.Config.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	checks = append(checks, ok("Config file", fmt.Sprintf("loaded, format %s", cfg.ConfigFormatVersion)))

	if s.Patterns != nil {
		if n := s.Patterns.RuleCount(); n > 0 {
			checks = append(checks, ok("Pattern rules", fmt.Sprintf("%d rules compiled", n)))
		} else {
			checks = append(checks, warn("Pattern rules", "no rules compiled"))
		}
	} else {
		checks = append(checks, fail("Pattern rules", "pattern engine not initialized"))
	}

	if s.Guardrail != nil {
		if n := s.Guardrail.RuleCount(); n > 0 {
			checks = append(checks, ok("Guardrail", fmt.Sprintf("%d rules compiled", n)))
		} else {
			checks = append(checks, warn("Guardrail", "no rules compiled; every command classifies Safe"))
		}
	} else {
		checks = append(checks, fail("Guardrail", "safety classifier not initialized"))
	}

	switch {
	case !cfg.AI.Enabled:
		checks = append(checks, warn("AI provider", "disabled in config; pattern engine only"))
	case s.AI == nil:
		checks = append(checks, warn("AI provider", fmt.Sprintf("model %q not configured", cfg.AI.DefaultModel)))
	case !s.AI.HasCredentials():
		checks = append(checks, warn("AI provider", fmt.Sprintf("%s credentials missing", s.AI.Name())))
	default:
		checks = append(checks, ok("AI provider", fmt.Sprintf("%s ready (model %s)", s.AI.Name(), cfg.AI.DefaultModel)))
	}

	snapshot := s.Context.Build(ctx)
	checks = append(checks, ok("Context probes", fmt.Sprintf("os=%s shell=%s tools=%d",
		snapshot.OSFamily, snapshot.Shell, len(snapshot.AvailableTools))))
	if snapshot.Git != nil {
		checks = append(checks, ok("Git repository", fmt.Sprintf("branch %s", snapshot.Git.Branch)))
	}

	return domain.HealthReport{Checks: checks}, nil
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
