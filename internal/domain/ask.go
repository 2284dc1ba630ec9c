package domain

import "context"

// AskRequest captures user intent originating from the CLI or the
// interactive loop.
type AskRequest struct {
	Context      context.Context
	Input        string
	Execute      bool
	Alternatives bool
	Debug        bool
}

// AskResponse is the canonical response propagated back to the CLI.
// Candidates is ranked: the primary candidate first.
type AskResponse struct {
	Input           string
	Candidates      []ClassifiedCandidate
	Decision        GateDecision
	Snapshot        ContextSnapshot
	ExecutionResult *ExecutionResult
	FromCache       bool
}

// Primary returns the top-ranked candidate.
func (r AskResponse) Primary() ClassifiedCandidate {
	if len(r.Candidates) == 0 {
		return ClassifiedCandidate{}
	}
	return r.Candidates[0]
}

// ExecutionResult wraps details from the command executor.
type ExecutionResult struct {
	Ran        bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
	Err        error
}

// ExplainRequest asks for a safety classification (and optional AI
// explanation) of literal command text. No generation happens.
type ExplainRequest struct {
	Context context.Context
	Command string
}

// ExplainResponse carries the verdict and, when AI is enabled and
// reachable, a natural-language explanation.
type ExplainResponse struct {
	Command     string
	Verdict     SafetyVerdict
	Explanation string
}
