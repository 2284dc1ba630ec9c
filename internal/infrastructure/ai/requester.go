// Package ai implements the external AI candidate requester over the
// provider HTTP APIs (Anthropic, OpenAI-compatible, Ollama). Every failure
// is classified into the closed domain.AIErrorKind enum so the orchestrator
// can treat it as recoverable.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/doeshing/shellpilot/internal/domain"
	"github.com/doeshing/shellpilot/internal/ports"
)

// Requester implements the CandidateRequester and Explainer ports.
type Requester struct {
	name       string
	model      domain.ModelDefinition
	httpClient *http.Client
	adapter    providerAdapter
}

// NewRequester resolves the configured default model and builds the
// matching provider adapter.
func NewRequester(cfg domain.Config) (*Requester, error) {
	model, err := pickModel(cfg)
	if err != nil {
		return nil, err
	}

	name, adapter := adapterFor(model.Endpoint)
	return &Requester{
		name:       name,
		model:      model,
		httpClient: &http.Client{Timeout: domain.DefaultHTTPClientTimeout},
		adapter:    adapter,
	}, nil
}

// Name identifies the backing provider.
func (r *Requester) Name() string {
	return r.name
}

// HasCredentials reports whether the provider's auth env var is set.
// Ollama-style local endpoints need none.
func (r *Requester) HasCredentials() bool {
	return r.model.AuthEnvVar == "" || resolveAuth(r.model.AuthEnvVar) != ""
}

// Request implements ports.CandidateRequester. The call runs under its own
// deadline and is cancellable through ctx; a slow provider never blocks the
// fallback path past the timeout.
func (r *Requester) Request(ctx context.Context, input string, snapshot domain.ContextSnapshot, timeout time.Duration) (domain.CommandCandidate, error) {
	if timeout <= 0 {
		timeout = domain.DefaultAITimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	content, err := r.complete(cctx, commandMessages(r.model, input, snapshot))
	if err != nil {
		return domain.CommandCandidate{}, err
	}

	command := extractCommand(content)
	if command == "" {
		return domain.CommandCandidate{}, domain.NewAIServiceError(
			domain.AIErrMalformedResponse, r.name, errors.New("response contained no command"))
	}

	return domain.CommandCandidate{
		Text:        command,
		Confidence:  domain.DefaultAIConfidence,
		Source:      domain.SourceAI,
		Explanation: explanationFrom(content, command),
		OSFamily:    snapshot.OSFamily,
	}, nil
}

// Explain implements ports.Explainer.
func (r *Requester) Explain(ctx context.Context, commandText string, snapshot domain.ContextSnapshot, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = domain.DefaultAITimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	content, err := r.complete(cctx, explainMessages(r.model, commandText, snapshot))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return "", domain.NewAIServiceError(
			domain.AIErrMalformedResponse, r.name, errors.New("empty explanation"))
	}
	return strings.TrimSpace(content), nil
}

func pickModel(cfg domain.Config) (domain.ModelDefinition, error) {
	name := cfg.AI.DefaultModel
	if name == "" && len(cfg.Models) > 0 {
		return cfg.Models[0], nil
	}
	for _, model := range cfg.Models {
		if model.Name == name {
			return model, nil
		}
	}
	return domain.ModelDefinition{}, fmt.Errorf("model %s not configured", name)
}

var _ ports.CandidateRequester = (*Requester)(nil)
var _ ports.Explainer = (*Requester)(nil)
