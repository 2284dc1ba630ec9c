// Package ask orchestrates the natural-language-to-command pipeline:
// context snapshot, AI request with pattern fallback, safety
// classification, confirmation gate and optional execution.
package ask

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/shellpilot/internal/application/gate"
	"github.com/doeshing/shellpilot/internal/domain"
	"github.com/doeshing/shellpilot/internal/ports"
)

// Service orchestrates one generation request end-to-end. Requester,
// Prompter, History and Cache may be nil; the pipeline degrades without
// them.
type Service struct {
	ConfigProvider ports.ConfigProvider
	ContextBuilder ports.ContextBuilder
	Patterns       ports.PatternMatcher
	Classifier     ports.SafetyClassifier
	Requester      ports.CandidateRequester
	Executor       ports.CommandExecutor
	Prompter       ports.ConfirmationPrompter
	HistoryStore   ports.HistoryRepository
	CacheStore     ports.CacheRepository
	Logger         ports.Logger
}

// Run executes the full pipeline for one request.
//
// Candidate order in the response is deterministic: the AI candidate (if
// any) first, then pattern candidates by descending confidence with rule
// order breaking ties. A Forbidden primary always yields a
// *domain.ForbiddenError; exhausting every generation path yields a
// *domain.NoCandidateError carrying the AI failure, if one happened.
func (s *Service) Run(req domain.AskRequest) (domain.AskResponse, error) {
	if s.ConfigProvider == nil || s.ContextBuilder == nil || s.Patterns == nil ||
		s.Classifier == nil || s.Executor == nil || s.Logger == nil {
		return domain.AskResponse{}, errors.New("ask.Service dependencies not satisfied")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.AskResponse{}, err
	}

	snapshot := s.ContextBuilder.Build(ctx)
	s.Logger.Debug("context snapshot ready", map[string]interface{}{
		"os":    snapshot.OSFamily,
		"shell": snapshot.Shell,
		"tools": len(snapshot.AvailableTools),
	})

	patternCandidates := s.Patterns.Match(req.Input, snapshot)

	aiCandidate, fromCache, aiFailure := s.requestAI(ctx, cfg, req.Input, snapshot)
	if aiFailure != nil {
		s.Logger.Warn("ai request failed, falling back to patterns", map[string]interface{}{
			"kind":     aiFailure.Kind,
			"provider": aiFailure.Provider,
			"fallback": len(patternCandidates),
		})
	}

	ranked := rank(aiCandidate, patternCandidates)
	if len(ranked) == 0 {
		return domain.AskResponse{}, &domain.NoCandidateError{
			Input:     req.Input,
			AIFailure: aiFailure,
		}
	}

	classified := s.classify(ranked)
	primary := classified[0]

	decision := gate.Decide(primary.Verdict.Level, req.Execute, cfg.Execution.AutoConfirm)
	if !cfg.Safety.Enabled && decision == domain.GatePromptUser {
		// With safety checks off only the Forbidden wall remains.
		decision = domain.GateProceed
	}

	resp := domain.AskResponse{
		Input:      req.Input,
		Candidates: classified,
		Decision:   decision,
		Snapshot:   snapshot,
		FromCache:  fromCache,
	}

	if primary.Verdict.Level == domain.SafetyForbidden {
		s.record(req, primary, nil)
		return resp, &domain.ForbiddenError{
			Command:   primary.Text,
			Rationale: primary.Verdict.Rationale,
		}
	}

	if req.Execute {
		result := s.maybeExecute(ctx, decision, primary)
		resp.ExecutionResult = result
		s.record(req, primary, result)
		return resp, nil
	}

	s.record(req, primary, nil)
	return resp, nil
}

// requestAI runs the cache lookup and, on miss, the live AI call. It
// returns the candidate (nil when AI is disabled, unconfigured or
// failing), whether it came from cache, and the classified failure.
func (s *Service) requestAI(ctx context.Context, cfg domain.Config, input string, snapshot domain.ContextSnapshot) (*domain.CommandCandidate, bool, *domain.AIServiceError) {
	if !cfg.AI.Enabled || s.Requester == nil {
		return nil, false, nil
	}

	key := domain.CacheKey(input, snapshot.OSFamily)
	if cfg.AI.CacheResponses && s.CacheStore != nil {
		if entry, ok, err := s.CacheStore.Get(key); err == nil && ok {
			s.Logger.Debug("ai cache hit", map[string]interface{}{"key": key})
			return &domain.CommandCandidate{
				Text:        entry.Command,
				Confidence:  domain.DefaultAIConfidence,
				Source:      domain.SourceAI,
				Explanation: entry.Explanation,
				OSFamily:    snapshot.OSFamily,
			}, true, nil
		}
	}

	candidate, err := s.Requester.Request(ctx, input, snapshot, cfg.AI.Timeout())
	if err != nil {
		var aiErr *domain.AIServiceError
		if errors.As(err, &aiErr) {
			return nil, false, aiErr
		}
		// Keep the closed-kind contract even for misbehaving requesters.
		return nil, false, domain.NewAIServiceError(domain.AIErrServiceUnavailable, "unknown", err)
	}

	if cfg.AI.CacheResponses && s.CacheStore != nil {
		entry := domain.CacheEntry{
			Key:         key,
			Command:     candidate.Text,
			Explanation: candidate.Explanation,
			Model:       cfg.AI.DefaultModel,
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.CacheStore.Set(entry); err != nil {
			s.Logger.Warn("caching ai response failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return &candidate, false, nil
}

// rank orders candidates: AI first, then pattern candidates by descending
// confidence. sort.SliceStable keeps rule order for equal confidence so
// repeated runs over the same rule table see the same order.
func rank(ai *domain.CommandCandidate, patterns []domain.CommandCandidate) []domain.CommandCandidate {
	out := make([]domain.CommandCandidate, 0, len(patterns)+1)
	if ai != nil {
		out = append(out, *ai)
	}
	rest := make([]domain.CommandCandidate, len(patterns))
	copy(rest, patterns)
	sort.SliceStable(rest, func(i, j int) bool {
		return rest[i].Confidence > rest[j].Confidence
	})
	return append(out, rest...)
}

// classify attaches a verdict to every candidate. The classifier runs even
// with safety checks disabled so Forbidden detection and display stay
// intact.
func (s *Service) classify(candidates []domain.CommandCandidate) []domain.ClassifiedCandidate {
	out := make([]domain.ClassifiedCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, domain.ClassifiedCandidate{
			CommandCandidate: c,
			Verdict:          s.Classifier.Classify(c.Text),
		})
	}
	return out
}

// maybeExecute resolves a PromptUser decision through the prompter and
// runs the command on approval. A declined or unpromptable confirmation
// skips execution without error.
func (s *Service) maybeExecute(ctx context.Context, decision domain.GateDecision, candidate domain.ClassifiedCandidate) *domain.ExecutionResult {
	switch decision {
	case domain.GateProceed:
	case domain.GatePromptUser:
		if s.Prompter == nil || !s.Prompter.Enabled() {
			s.Logger.Warn("confirmation required but no interactive prompt available", map[string]interface{}{
				"command": candidate.Text,
				"level":   candidate.Verdict.Level,
			})
			return &domain.ExecutionResult{Ran: false}
		}
		ok, err := s.Prompter.Confirm(candidate)
		if err != nil {
			s.Logger.Error("confirmation prompt failed", err, nil)
			return &domain.ExecutionResult{Ran: false, Err: err}
		}
		if !ok {
			return &domain.ExecutionResult{Ran: false}
		}
	default:
		return &domain.ExecutionResult{Ran: false}
	}

	result, err := s.Executor.Execute(ctx, candidate.Text)
	if err != nil && result.Err == nil {
		result.Err = err
	}
	return &result
}

// record persists the invocation outcome. History failures are logged and
// swallowed: bookkeeping never breaks the pipeline.
func (s *Service) record(req domain.AskRequest, primary domain.ClassifiedCandidate, result *domain.ExecutionResult) {
	if s.HistoryStore == nil {
		return
	}
	rec := domain.HistoryRecord{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Prompt:    req.Input,
		Command:   primary.Text,
		Source:    primary.Source,
		RiskLevel: primary.Verdict.Level,
	}
	if result != nil {
		rec.Executed = result.Ran
		rec.Success = result.Ran && result.ExitCode == 0
		rec.ExitCode = result.ExitCode
		rec.DurationMS = result.DurationMS
	}
	if err := s.HistoryStore.Save(rec); err != nil {
		s.Logger.Warn("saving history record failed", map[string]interface{}{"error": err.Error()})
	}
}
