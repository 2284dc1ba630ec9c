// Package domain defines core business entities and value objects for shellpilot.
//
// The domain layer is independent of infrastructure concerns and represents pure
// business logic and data structures.
package domain

// CandidateSource identifies which generator produced a candidate.
type CandidateSource string

const (
	SourcePattern CandidateSource = "pattern"
	SourceAI      CandidateSource = "ai"
)

// CommandCandidate is a generated shell command paired with provenance and
// confidence. Candidates are created fresh per invocation and never mutated
// after creation; the classifier annotates them via ClassifiedCandidate.
type CommandCandidate struct {
	Text        string
	Confidence  float64
	Source      CandidateSource
	Explanation string
	OSFamily    OSFamily
}

// ClassifiedCandidate pairs a candidate with its safety verdict. Every
// candidate handed to the confirmation gate carries exactly one verdict.
type ClassifiedCandidate struct {
	CommandCandidate
	Verdict SafetyVerdict
}
