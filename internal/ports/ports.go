// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces allow the application to remain independent of specific
// implementations like databases, HTTP clients, or CLI frameworks.
package ports

import (
	"context"
	"time"

	"github.com/doeshing/shellpilot/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.shellpilot/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// ContextBuilder collects read-only environment facts once per invocation.
// Build never fails as a whole: each sub-probe degrades its field to
// unknown/absent on error or timeout.
type ContextBuilder interface {
	Build(context.Context) domain.ContextSnapshot
}

// PatternMatcher is the offline, rule-driven command generator. Match is
// deterministic, pure and restartable; an empty result is not an error.
type PatternMatcher interface {
	Match(input string, snapshot domain.ContextSnapshot) []domain.CommandCandidate
}

// SafetyClassifier assigns a risk level to arbitrary command text. It is
// total: commands matching no rule classify as Safe.
type SafetyClassifier interface {
	Classify(commandText string) domain.SafetyVerdict
}

// CandidateRequester asks an external language-model service for a
// candidate. Every failure is a *domain.AIServiceError with a closed kind;
// implementations must honor the timeout and be cancellable via ctx.
type CandidateRequester interface {
	Request(ctx context.Context, input string, snapshot domain.ContextSnapshot, timeout time.Duration) (domain.CommandCandidate, error)
}

// Explainer produces a natural-language explanation of literal command
// text. Optional capability of AI-backed requesters.
type Explainer interface {
	Explain(ctx context.Context, commandText string, snapshot domain.ContextSnapshot, timeout time.Duration) (string, error)
}

// CommandExecutor runs shell commands in the configured shell environment.
type CommandExecutor interface {
	Execute(ctx context.Context, command string) (domain.ExecutionResult, error)
}

// ConfirmationPrompter handles interactive user confirmations for risky
// operations when the gate returns PromptUser.
type ConfirmationPrompter interface {
	Confirm(candidate domain.ClassifiedCandidate) (bool, error)
	Enabled() bool
}

// HistoryRepository persists per-invocation outcomes.
type HistoryRepository interface {
	Save(record domain.HistoryRecord) error
	Records(limit int, search string) ([]domain.HistoryRecord, error)
	Clear() error
}

// CacheRepository stores AI responses keyed by prompt hash.
type CacheRepository interface {
	Get(key string) (domain.CacheEntry, bool, error)
	Set(entry domain.CacheEntry) error
	Clear() error
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
