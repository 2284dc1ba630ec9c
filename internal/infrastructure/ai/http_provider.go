package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/doeshing/shellpilot/internal/domain"
)

type providerAdapter struct {
	buildRequest  func(domain.ModelDefinition, []domain.PromptMessage) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, domain.ModelDefinition) error
}

func adapterFor(endpoint string) (string, providerAdapter) {
	switch {
	case strings.Contains(endpoint, "anthropic.com"):
		return "anthropic", anthropicAdapter()
	case strings.Contains(endpoint, "openai.com"):
		return "openai", openaiAdapter()
	case strings.Contains(endpoint, "11434"), strings.Contains(endpoint, "localhost"):
		return "ollama", ollamaAdapter()
	default:
		return "openai-compatible", openaiAdapter()
	}
}

// complete performs one chat completion round-trip and classifies any
// failure into the closed AIServiceError taxonomy.
func (r *Requester) complete(ctx context.Context, messages []domain.PromptMessage) (string, error) {
	body, err := r.adapter.buildRequest(r.model, messages)
	if err != nil {
		return "", domain.NewAIServiceError(domain.AIErrMalformedResponse, r.name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.model.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.NewAIServiceError(domain.AIErrServiceUnavailable, r.name, err)
	}
	httpReq.Header.Set("content-type", "application/json")
	if err := r.adapter.setHeaders(httpReq, r.model); err != nil {
		return "", domain.NewAIServiceError(domain.AIErrAuthFailure, r.name, err)
	}

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return "", r.classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", r.classifyStatus(resp.StatusCode)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewAIServiceError(domain.AIErrMalformedResponse, r.name, err)
	}

	content, err := r.adapter.parseResponse(responseBody)
	if err != nil {
		return "", domain.NewAIServiceError(domain.AIErrMalformedResponse, r.name, err)
	}
	return content, nil
}

func (r *Requester) classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return domain.NewAIServiceError(domain.AIErrTimeout, r.name, err)
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return domain.NewAIServiceError(domain.AIErrTimeout, r.name, err)
	}
	return domain.NewAIServiceError(domain.AIErrServiceUnavailable, r.name, err)
}

func (r *Requester) classifyStatus(status int) error {
	err := fmt.Errorf("http status %d", status)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewAIServiceError(domain.AIErrAuthFailure, r.name, err)
	case status == http.StatusTooManyRequests:
		return domain.NewAIServiceError(domain.AIErrRateLimited, r.name, err)
	default:
		return domain.NewAIServiceError(domain.AIErrServiceUnavailable, r.name, err)
	}
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func openaiAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setOpenAIHeaders,
	}
}

func ollamaAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    func(*http.Request, domain.ModelDefinition) error { return nil },
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

func buildAnthropicRequest(model domain.ModelDefinition, messages []domain.PromptMessage) ([]byte, error) {
	payload := anthropicRequest{
		Model:     model.ModelID,
		MaxTokens: maxTokens(model),
	}
	for _, msg := range messages {
		if msg.Role == "system" {
			payload.System = msg.Content
			continue
		}
		payload.Messages = append(payload.Messages, anthropicMessage{Role: msg.Role, Content: msg.Content})
	}
	return json.Marshal(payload)
}

func parseAnthropicResponse(data []byte) (string, error) {
	var decoded anthropicResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Content) == 0 {
		return "", errors.New("anthropic response has no content")
	}
	return decoded.Content[0].Text, nil
}

func setAnthropicHeaders(req *http.Request, model domain.ModelDefinition) error {
	key := resolveAuth(model.AuthEnvVar)
	if key == "" {
		return fmt.Errorf("missing api key (env %s)", model.AuthEnvVar)
	}
	req.Header.Set("x-api-key", key)
	req.Header.Set("anthropic-version", "2023-06-01")
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func buildChatCompletionRequest(model domain.ModelDefinition, messages []domain.PromptMessage) ([]byte, error) {
	payload := chatCompletionRequest{
		Model:       model.ModelID,
		MaxTokens:   maxTokens(model),
		Temperature: 0.1,
	}
	for _, msg := range messages {
		payload.Messages = append(payload.Messages, chatMessage{Role: msg.Role, Content: msg.Content})
	}
	return json.Marshal(payload)
}

func parseChatCompletionResponse(data []byte) (string, error) {
	var decoded chatCompletionResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("chat completion response has no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

func setOpenAIHeaders(req *http.Request, model domain.ModelDefinition) error {
	key := resolveAuth(model.AuthEnvVar)
	if key == "" {
		return fmt.Errorf("missing api key (env %s)", model.AuthEnvVar)
	}
	req.Header.Set("Authorization", "Bearer "+key)
	return nil
}

func resolveAuth(envVar string) string {
	if envVar == "" {
		return ""
	}
	return os.Getenv(envVar)
}

func maxTokens(model domain.ModelDefinition) int {
	if model.MaxTokens > 0 {
		return model.MaxTokens
	}
	return domain.DefaultMaxTokens
}
