// Package explain classifies literal command text without generating
// anything. When an AI explainer is available its prose is attached;
// the verdict never depends on it.
package explain

import (
	"context"
	"errors"

	"github.com/doeshing/shellpilot/internal/domain"
	"github.com/doeshing/shellpilot/internal/ports"
)

// Service implements the explain use case. Explainer may be nil.
type Service struct {
	ConfigProvider ports.ConfigProvider
	ContextBuilder ports.ContextBuilder
	Classifier     ports.SafetyClassifier
	Explainer      ports.Explainer
	Logger         ports.Logger
}

// Run classifies the literal command. A Forbidden verdict returns a
// *domain.ForbiddenError alongside the response; an unreachable AI only
// drops the prose, never the verdict.
func (s *Service) Run(req domain.ExplainRequest) (domain.ExplainResponse, error) {
	if s.ConfigProvider == nil || s.ContextBuilder == nil || s.Classifier == nil || s.Logger == nil {
		return domain.ExplainResponse{}, errors.New("explain.Service dependencies not satisfied")
	}

	ctx := req.Context
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.ExplainResponse{}, err
	}

	resp := domain.ExplainResponse{
		Command: req.Command,
		Verdict: s.Classifier.Classify(req.Command),
	}

	if cfg.AI.Enabled && s.Explainer != nil {
		snapshot := s.ContextBuilder.Build(ctx)
		prose, err := s.Explainer.Explain(ctx, req.Command, snapshot, cfg.AI.Timeout())
		switch {
		case err == nil:
			resp.Explanation = prose
		default:
			var aiErr *domain.AIServiceError
			fields := map[string]interface{}{"error": err.Error()}
			if errors.As(err, &aiErr) {
				fields = map[string]interface{}{"kind": aiErr.Kind, "provider": aiErr.Provider}
			}
			s.Logger.Warn("ai explanation unavailable", fields)
		}
	}

	if resp.Verdict.Level == domain.SafetyForbidden {
		return resp, &domain.ForbiddenError{
			Command:   req.Command,
			Rationale: resp.Verdict.Rationale,
		}
	}
	return resp, nil
}
