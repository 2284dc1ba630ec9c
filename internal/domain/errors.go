package domain

import (
	"errors"
	"fmt"
)

// AIErrorKind is the closed failure taxonomy for the AI candidate requester.
type AIErrorKind string

const (
	AIErrTimeout            AIErrorKind = "timeout"
	AIErrAuthFailure        AIErrorKind = "auth_failure"
	AIErrRateLimited        AIErrorKind = "rate_limited"
	AIErrServiceUnavailable AIErrorKind = "service_unavailable"
	AIErrMalformedResponse  AIErrorKind = "malformed_response"
)

// AIServiceError wraps a provider failure. The orchestrator treats every
// kind as recoverable and falls back to pattern candidates.
type AIServiceError struct {
	Kind     AIErrorKind
	Provider string
	Err      error
}

func (e *AIServiceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("ai provider %s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("ai provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *AIServiceError) Unwrap() error {
	return e.Err
}

// NewAIServiceError builds a classified provider failure.
func NewAIServiceError(kind AIErrorKind, provider string, err error) *AIServiceError {
	return &AIServiceError{Kind: kind, Provider: provider, Err: err}
}

// NoCandidateError is terminal for a request: neither the pattern engine nor
// the AI requester produced a candidate. AIFailure carries the provider
// error when the AI path was attempted and failed.
type NoCandidateError struct {
	Input     string
	AIFailure *AIServiceError
}

func (e *NoCandidateError) Error() string {
	if e.AIFailure != nil {
		return fmt.Sprintf("no command candidate for %q (ai unavailable: %v)", e.Input, e.AIFailure)
	}
	return fmt.Sprintf("no command candidate for %q, try rephrasing", e.Input)
}

func (e *NoCandidateError) Unwrap() error {
	if e.AIFailure == nil {
		return nil
	}
	return e.AIFailure
}

// ForbiddenError is the deliberate denial of a Forbidden-classified command.
// It is not a generation failure; the pipeline completed and refused.
type ForbiddenError struct {
	Command   string
	Rationale string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("execution denied: %s (%s)", e.Command, e.Rationale)
}

// Process exit codes the CLI contract defines.
const (
	ExitOK          = 0
	ExitNoCandidate = 1
	ExitForbidden   = 2
	ExitAIService   = 3
)

// ExitCodeFor maps a pipeline error to the process exit code. An AI timeout
// with no fallback counts as exhaustion; other AI failure kinds surface as
// a service error.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var forbidden *ForbiddenError
	if errors.As(err, &forbidden) {
		return ExitForbidden
	}
	var noCandidate *NoCandidateError
	if errors.As(err, &noCandidate) {
		if noCandidate.AIFailure != nil && noCandidate.AIFailure.Kind != AIErrTimeout {
			return ExitAIService
		}
		return ExitNoCandidate
	}
	var aiErr *AIServiceError
	if errors.As(err, &aiErr) {
		return ExitAIService
	}
	return ExitNoCandidate
}
