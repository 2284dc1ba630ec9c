package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/doeshing/shellpilot/internal/domain"
)

const testAuthVar = "SHELLPILOT_TEST_API_KEY"

func testRequester(t *testing.T, handler http.HandlerFunc) *Requester {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	t.Setenv(testAuthVar, "test-key")

	cfg := domain.Config{
		AI: domain.AISettings{Enabled: true, DefaultModel: "test"},
		Models: []domain.ModelDefinition{
			{Name: "test", Endpoint: server.URL, AuthEnvVar: testAuthVar, ModelID: "test-model"},
		},
	}
	requester, err := NewRequester(cfg)
	if err != nil {
		t.Fatalf("NewRequester error: %v", err)
	}
	return requester
}

func chatResponse(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
}

func TestRequestParsesFencedCommand(t *testing.T) {
	requester := testRequester(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatResponse("```bash\nls -la\n```\nLists all files including hidden ones."))
	})

	candidate, err := requester.Request(context.Background(), "list files",
		domain.ContextSnapshot{OSFamily: domain.OSLinux}, time.Second)
	if err != nil {
		t.Fatalf("Request error: %v", err)
	}
	if candidate.Text != "ls -la" {
		t.Fatalf("expected fenced command, got %q", candidate.Text)
	}
	if candidate.Source != domain.SourceAI {
		t.Fatalf("expected AI source, got %s", candidate.Source)
	}
	if candidate.Explanation == "" {
		t.Fatal("expected explanation from trailing prose")
	}
}

func TestRequestClassifiesHTTPStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   domain.AIErrorKind
	}{
		{http.StatusUnauthorized, domain.AIErrAuthFailure},
		{http.StatusForbidden, domain.AIErrAuthFailure},
		{http.StatusTooManyRequests, domain.AIErrRateLimited},
		{http.StatusInternalServerError, domain.AIErrServiceUnavailable},
		{http.StatusBadGateway, domain.AIErrServiceUnavailable},
	}
	for _, tt := range tests {
		requester := testRequester(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		})

		_, err := requester.Request(context.Background(), "x", domain.ContextSnapshot{}, time.Second)
		var aiErr *domain.AIServiceError
		if !errors.As(err, &aiErr) {
			t.Fatalf("status %d: expected AIServiceError, got %v", tt.status, err)
		}
		if aiErr.Kind != tt.kind {
			t.Fatalf("status %d: kind = %s, want %s", tt.status, aiErr.Kind, tt.kind)
		}
	}
}

func TestRequestTimesOut(t *testing.T) {
	requester := testRequester(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		fmt.Fprint(w, chatResponse("ls"))
	})

	_, err := requester.Request(context.Background(), "x", domain.ContextSnapshot{}, 20*time.Millisecond)
	var aiErr *domain.AIServiceError
	if !errors.As(err, &aiErr) {
		t.Fatalf("expected AIServiceError, got %v", err)
	}
	if aiErr.Kind != domain.AIErrTimeout {
		t.Fatalf("kind = %s, want timeout", aiErr.Kind)
	}
}

func TestRequestEmptyResponseIsMalformed(t *testing.T) {
	requester := testRequester(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatResponse(""))
	})

	_, err := requester.Request(context.Background(), "x", domain.ContextSnapshot{}, time.Second)
	var aiErr *domain.AIServiceError
	if !errors.As(err, &aiErr) {
		t.Fatalf("expected AIServiceError, got %v", err)
	}
	if aiErr.Kind != domain.AIErrMalformedResponse {
		t.Fatalf("kind = %s, want malformed_response", aiErr.Kind)
	}
}

func TestRequestInvalidJSONIsMalformed(t *testing.T) {
	requester := testRequester(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json at all")
	})

	_, err := requester.Request(context.Background(), "x", domain.ContextSnapshot{}, time.Second)
	var aiErr *domain.AIServiceError
	if !errors.As(err, &aiErr) || aiErr.Kind != domain.AIErrMalformedResponse {
		t.Fatalf("expected malformed_response, got %v", err)
	}
}

func TestExplainReturnsProse(t *testing.T) {
	requester := testRequester(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatResponse("Lists directory contents in long format."))
	})

	prose, err := requester.Explain(context.Background(), "ls -la", domain.ContextSnapshot{}, time.Second)
	if err != nil {
		t.Fatalf("Explain error: %v", err)
	}
	if prose != "Lists directory contents in long format." {
		t.Fatalf("unexpected prose: %q", prose)
	}
}

func TestHasCredentials(t *testing.T) {
	requester := testRequester(t, func(w http.ResponseWriter, r *http.Request) {})
	if !requester.HasCredentials() {
		t.Fatal("credentials are set via env, HasCredentials should be true")
	}

	t.Setenv(testAuthVar, "")
	if requester.HasCredentials() {
		t.Fatal("empty env var means no credentials")
	}
}

func TestPickModelUnknownName(t *testing.T) {
	cfg := domain.Config{
		AI:     domain.AISettings{Enabled: true, DefaultModel: "missing"},
		Models: []domain.ModelDefinition{{Name: "other", Endpoint: "http://localhost:11434"}},
	}
	if _, err := NewRequester(cfg); err == nil {
		t.Fatal("expected error for unknown default model")
	}
}

func TestExtractCommand(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"```bash\nls -la\n```", "ls -la"},
		{"```\ndf -h\n```\nShows disk usage.", "df -h"},
		{"command: git status", "git status"},
		{"Command: uname -a\nmore prose", "uname -a"},
		{"ps aux", "ps aux"},
		{"ls -la\nsecond line", "ls -la"},
	}
	for _, tt := range tests {
		if got := extractCommand(tt.content); got != tt.want {
			t.Fatalf("extractCommand(%q) = %q, want %q", tt.content, got, tt.want)
		}
	}
}
