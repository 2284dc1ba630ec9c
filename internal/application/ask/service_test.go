package ask

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/doeshing/shellpilot/internal/domain"
	"github.com/doeshing/shellpilot/internal/pkg/logger"
)

func testConfig() domain.Config {
	return domain.Config{
		AI: domain.AISettings{
			Enabled:        true,
			DefaultModel:   "claude-sonnet",
			TimeoutSeconds: 5,
		},
		Safety:    domain.SafetySettings{Enabled: true},
		Execution: domain.ExecutionSettings{Shell: "auto"},
	}
}

func newTestService(cfg domain.Config) (*Service, *stubExecutor, *memoryHistory) {
	executor := &stubExecutor{result: domain.ExecutionResult{Ran: true, ExitCode: 0}}
	history := &memoryHistory{}
	svc := &Service{
		ConfigProvider: stubConfig{cfg: cfg},
		ContextBuilder: stubContext{snapshot: domain.ContextSnapshot{OSFamily: domain.OSLinux}},
		Patterns:       stubMatcher{},
		Classifier:     stubClassifier{},
		Executor:       executor,
		Logger:         logger.NewStd(false),
		HistoryStore:   history,
	}
	return svc, executor, history
}

func TestRunPrefersAICandidate(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	svc.Requester = &stubRequester{candidate: domain.CommandCandidate{
		Text: "ls -la", Source: domain.SourceAI, Confidence: 0.75,
	}}
	svc.Patterns = stubMatcher{candidates: []domain.CommandCandidate{
		{Text: "ls", Source: domain.SourcePattern, Confidence: 0.9},
	}}

	resp, err := svc.Run(domain.AskRequest{Input: "list files"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if resp.Primary().Source != domain.SourceAI {
		t.Fatalf("AI candidate should rank first, got %+v", resp.Primary())
	}
	if len(resp.Candidates) != 2 {
		t.Fatalf("expected both candidates, got %d", len(resp.Candidates))
	}
}

func TestRunFallsBackToPatternsOnAIFailure(t *testing.T) {
	for _, kind := range []domain.AIErrorKind{
		domain.AIErrTimeout,
		domain.AIErrAuthFailure,
		domain.AIErrRateLimited,
		domain.AIErrServiceUnavailable,
		domain.AIErrMalformedResponse,
	} {
		svc, _, _ := newTestService(testConfig())
		svc.Requester = &stubRequester{err: domain.NewAIServiceError(kind, "stub", errors.New("down"))}
		svc.Patterns = stubMatcher{candidates: []domain.CommandCandidate{
			{Text: "ls -la", Source: domain.SourcePattern, Confidence: 0.9},
		}}

		resp, err := svc.Run(domain.AskRequest{Input: "list files"})
		if err != nil {
			t.Fatalf("kind %s: fallback should succeed, got %v", kind, err)
		}
		if resp.Primary().Source != domain.SourcePattern {
			t.Fatalf("kind %s: expected pattern fallback, got %+v", kind, resp.Primary())
		}
	}
}

func TestRunExhaustionReportsAIFailure(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	svc.Requester = &stubRequester{err: domain.NewAIServiceError(domain.AIErrAuthFailure, "stub", errors.New("401"))}

	_, err := svc.Run(domain.AskRequest{Input: "do something weird"})
	var noCandidate *domain.NoCandidateError
	if !errors.As(err, &noCandidate) {
		t.Fatalf("expected NoCandidateError, got %v", err)
	}
	if noCandidate.AIFailure == nil || noCandidate.AIFailure.Kind != domain.AIErrAuthFailure {
		t.Fatalf("AI failure should be preserved, got %+v", noCandidate.AIFailure)
	}
	if domain.ExitCodeFor(err) != domain.ExitAIService {
		t.Fatalf("auth failure with no fallback should exit %d", domain.ExitAIService)
	}
}

func TestRunExhaustionAfterTimeoutIsNoCandidate(t *testing.T) {
	svc, _, _ := newTestService(testConfig())
	svc.Requester = &stubRequester{err: domain.NewAIServiceError(domain.AIErrTimeout, "stub", context.DeadlineExceeded)}

	_, err := svc.Run(domain.AskRequest{Input: "do something weird"})
	if domain.ExitCodeFor(err) != domain.ExitNoCandidate {
		t.Fatalf("timeout with no fallback should exit %d, got %d",
			domain.ExitNoCandidate, domain.ExitCodeFor(err))
	}
}

func TestRunWithoutAIAndWithoutMatch(t *testing.T) {
	cfg := testConfig()
	cfg.AI.Enabled = false
	svc, _, _ := newTestService(cfg)

	_, err := svc.Run(domain.AskRequest{Input: "do something weird"})
	var noCandidate *domain.NoCandidateError
	if !errors.As(err, &noCandidate) {
		t.Fatalf("expected NoCandidateError, got %v", err)
	}
	if noCandidate.AIFailure != nil {
		t.Fatalf("no AI attempt happened, AIFailure should be nil: %+v", noCandidate.AIFailure)
	}
}

func TestRunForbiddenPrimaryIsDenied(t *testing.T) {
	svc, executor, _ := newTestService(testConfig())
	svc.Patterns = stubMatcher{candidates: []domain.CommandCandidate{
		{Text: "rm -rf /", Source: domain.SourcePattern, Confidence: 0.9},
	}}
	svc.Classifier = stubClassifier{verdicts: map[string]domain.SafetyVerdict{
		"rm -rf /": {Level: domain.SafetyForbidden, Rationale: "deletes the root filesystem"},
	}}

	resp, err := svc.Run(domain.AskRequest{Input: "delete everything", Execute: true})
	var forbidden *domain.ForbiddenError
	if !errors.As(err, &forbidden) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
	if executor.called {
		t.Fatal("forbidden command must never reach the executor")
	}
	if resp.Decision != domain.GateDeny {
		t.Fatalf("expected deny decision, got %s", resp.Decision)
	}
	if domain.ExitCodeFor(err) != domain.ExitForbidden {
		t.Fatalf("forbidden should exit %d", domain.ExitForbidden)
	}
}

func TestRunExecutesSafeCommand(t *testing.T) {
	svc, executor, history := newTestService(testConfig())
	svc.Patterns = stubMatcher{candidates: []domain.CommandCandidate{
		{Text: "ls -la", Source: domain.SourcePattern, Confidence: 0.9},
	}}

	resp, err := svc.Run(domain.AskRequest{Input: "list files", Execute: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !executor.called || executor.command != "ls -la" {
		t.Fatalf("expected executor to run ls -la, called=%v command=%q", executor.called, executor.command)
	}
	if resp.ExecutionResult == nil || !resp.ExecutionResult.Ran {
		t.Fatalf("expected execution result, got %+v", resp.ExecutionResult)
	}
	if len(history.records) != 1 || !history.records[0].Executed {
		t.Fatalf("expected executed history record, got %+v", history.records)
	}
}

func TestRunPreviewNeverExecutes(t *testing.T) {
	svc, executor, history := newTestService(testConfig())
	svc.Patterns = stubMatcher{candidates: []domain.CommandCandidate{
		{Text: "ls -la", Source: domain.SourcePattern, Confidence: 0.9},
	}}

	resp, err := svc.Run(domain.AskRequest{Input: "list files"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if executor.called {
		t.Fatal("preview mode must not execute")
	}
	if resp.ExecutionResult != nil {
		t.Fatalf("preview mode carries no execution result, got %+v", resp.ExecutionResult)
	}
	if len(history.records) != 1 || history.records[0].Executed {
		t.Fatalf("expected unexecuted history record, got %+v", history.records)
	}
}

func TestRunDangerousDeclinedByPrompter(t *testing.T) {
	svc, executor, _ := newTestService(testConfig())
	svc.Patterns = stubMatcher{candidates: []domain.CommandCandidate{
		{Text: "rm -rf /tmp/build", Source: domain.SourcePattern, Confidence: 0.8},
	}}
	svc.Classifier = stubClassifier{verdicts: map[string]domain.SafetyVerdict{
		"rm -rf /tmp/build": {Level: domain.SafetyDangerous, Rationale: "recursive delete"},
	}}
	svc.Prompter = &stubPrompter{enabled: true, answer: false}

	resp, err := svc.Run(domain.AskRequest{Input: "clean the build dir", Execute: true})
	if err != nil {
		t.Fatalf("declined confirmation is not an error: %v", err)
	}
	if executor.called {
		t.Fatal("declined command must not execute")
	}
	if resp.ExecutionResult == nil || resp.ExecutionResult.Ran {
		t.Fatalf("expected unran result, got %+v", resp.ExecutionResult)
	}
}

func TestRunDangerousApprovedByPrompter(t *testing.T) {
	svc, executor, _ := newTestService(testConfig())
	svc.Patterns = stubMatcher{candidates: []domain.CommandCandidate{
		{Text: "rm -rf /tmp/build", Source: domain.SourcePattern, Confidence: 0.8},
	}}
	svc.Classifier = stubClassifier{verdicts: map[string]domain.SafetyVerdict{
		"rm -rf /tmp/build": {Level: domain.SafetyDangerous, Rationale: "recursive delete"},
	}}
	svc.Prompter = &stubPrompter{enabled: true, answer: true}

	if _, err := svc.Run(domain.AskRequest{Input: "clean the build dir", Execute: true}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !executor.called {
		t.Fatal("approved command should execute")
	}
}

func TestRunNonInteractiveSkipsRiskyExecution(t *testing.T) {
	svc, executor, _ := newTestService(testConfig())
	svc.Patterns = stubMatcher{candidates: []domain.CommandCandidate{
		{Text: "sudo ls", Source: domain.SourcePattern, Confidence: 0.8},
	}}
	svc.Classifier = stubClassifier{verdicts: map[string]domain.SafetyVerdict{
		"sudo ls": {Level: domain.SafetyCautious, Rationale: "elevated privileges"},
	}}
	svc.Prompter = &stubPrompter{enabled: false}

	resp, err := svc.Run(domain.AskRequest{Input: "list as root", Execute: true})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if executor.called {
		t.Fatal("unconfirmable command must not execute")
	}
	if resp.ExecutionResult == nil || resp.ExecutionResult.Ran {
		t.Fatalf("expected unran result, got %+v", resp.ExecutionResult)
	}
}

func TestRunServesCachedAIResponse(t *testing.T) {
	cfg := testConfig()
	cfg.AI.CacheResponses = true
	svc, _, _ := newTestService(cfg)
	requester := &stubRequester{candidate: domain.CommandCandidate{Text: "ls", Source: domain.SourceAI}}
	svc.Requester = requester
	svc.CacheStore = &stubCache{entries: map[string]domain.CacheEntry{
		domain.CacheKey("list files", domain.OSLinux): {Command: "ls -la", CreatedAt: time.Now()},
	}}

	resp, err := svc.Run(domain.AskRequest{Input: "list files"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !resp.FromCache {
		t.Fatal("expected cache hit")
	}
	if requester.called {
		t.Fatal("cache hit must not call the provider")
	}
	if resp.Primary().Text != "ls -la" {
		t.Fatalf("expected cached command, got %q", resp.Primary().Text)
	}
}

func TestRunStoresAIResponseInCache(t *testing.T) {
	cfg := testConfig()
	cfg.AI.CacheResponses = true
	svc, _, _ := newTestService(cfg)
	svc.Requester = &stubRequester{candidate: domain.CommandCandidate{Text: "ls -la", Source: domain.SourceAI}}
	cache := &stubCache{entries: map[string]domain.CacheEntry{}}
	svc.CacheStore = cache

	if _, err := svc.Run(domain.AskRequest{Input: "list files"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	entry, ok := cache.entries[domain.CacheKey("list files", domain.OSLinux)]
	if !ok || entry.Command != "ls -la" {
		t.Fatalf("expected stored cache entry, got %+v (ok=%v)", entry, ok)
	}
}

func TestRunRanksPatternCandidatesByConfidence(t *testing.T) {
	cfg := testConfig()
	cfg.AI.Enabled = false
	svc, _, _ := newTestService(cfg)
	svc.Patterns = stubMatcher{candidates: []domain.CommandCandidate{
		{Text: "low", Source: domain.SourcePattern, Confidence: 0.5},
		{Text: "high", Source: domain.SourcePattern, Confidence: 0.9},
		{Text: "mid-a", Source: domain.SourcePattern, Confidence: 0.7},
		{Text: "mid-b", Source: domain.SourcePattern, Confidence: 0.7},
	}}

	resp, err := svc.Run(domain.AskRequest{Input: "anything"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	want := []string{"high", "mid-a", "mid-b", "low"}
	for i, w := range want {
		if resp.Candidates[i].Text != w {
			t.Fatalf("candidate %d = %q, want %q (stable order for ties)", i, resp.Candidates[i].Text, w)
		}
	}
}

// stubs

type stubConfig struct {
	cfg domain.Config
	err error
}

func (s stubConfig) Load(context.Context) (domain.Config, error) {
	return s.cfg, s.err
}

type stubContext struct {
	snapshot domain.ContextSnapshot
}

func (s stubContext) Build(context.Context) domain.ContextSnapshot {
	return s.snapshot
}

type stubMatcher struct {
	candidates []domain.CommandCandidate
}

func (s stubMatcher) Match(string, domain.ContextSnapshot) []domain.CommandCandidate {
	return s.candidates
}

type stubClassifier struct {
	verdicts map[string]domain.SafetyVerdict
}

func (s stubClassifier) Classify(commandText string) domain.SafetyVerdict {
	if verdict, ok := s.verdicts[commandText]; ok {
		return verdict
	}
	return domain.SafetyVerdict{Level: domain.SafetySafe}
}

type stubRequester struct {
	candidate domain.CommandCandidate
	err       error
	called    bool
}

func (s *stubRequester) Request(context.Context, string, domain.ContextSnapshot, time.Duration) (domain.CommandCandidate, error) {
	s.called = true
	if s.err != nil {
		return domain.CommandCandidate{}, s.err
	}
	return s.candidate, nil
}

type stubExecutor struct {
	result  domain.ExecutionResult
	called  bool
	command string
}

func (s *stubExecutor) Execute(_ context.Context, command string) (domain.ExecutionResult, error) {
	s.called = true
	s.command = command
	return s.result, nil
}

type stubPrompter struct {
	enabled bool
	answer  bool
}

func (s *stubPrompter) Enabled() bool { return s.enabled }

func (s *stubPrompter) Confirm(domain.ClassifiedCandidate) (bool, error) {
	return s.answer, nil
}

type memoryHistory struct {
	records []domain.HistoryRecord
}

func (m *memoryHistory) Save(record domain.HistoryRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memoryHistory) Records(int, string) ([]domain.HistoryRecord, error) {
	return m.records, nil
}

func (m *memoryHistory) Clear() error {
	m.records = nil
	return nil
}

type stubCache struct {
	entries map[string]domain.CacheEntry
}

func (s *stubCache) Get(key string) (domain.CacheEntry, bool, error) {
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *stubCache) Set(entry domain.CacheEntry) error {
	s.entries[entry.Key] = entry
	return nil
}

func (s *stubCache) Clear() error {
	s.entries = map[string]domain.CacheEntry{}
	return nil
}
