// OpenAI chat-completions adapter.
// OpenAIProvider calls the OpenAI (or any OpenAI-compatible) REST API through go-openai.
// Endpoints used:
//   - POST /chat/completions  non-streaming chat completion
//   - GET  /models            health check (lists available models)
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultOpenAIBaseURL is the public OpenAI API root.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// ErrNoChoices is returned when the provider answers without any completion choice.
var ErrNoChoices = errors.New("no choices in response")

// OpenAIProvider implements LLMProvider against the OpenAI API.
// The API key travels with each request, so one provider serves every credential.
type OpenAIProvider struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIProvider creates an OpenAIProvider. httpClient carries the proxy/TLS settings;
// nil falls back to go-openai's default client.
func NewOpenAIProvider(baseURL, model string, httpClient *http.Client) *OpenAIProvider {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	return &OpenAIProvider{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
	}
}

func (p *OpenAIProvider) client(apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = p.baseURL
	if p.httpClient != nil {
		cfg.HTTPClient = p.httpClient
	}
	return openai.NewClientWithConfig(cfg)
}

// ChatCompletion performs a non-streaming chat via POST /chat/completions.
func (p *OpenAIProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}

	msgs := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	// go-openai omits a zero temperature; send the smallest nonzero value so 0 stays 0.
	temperature := req.Temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := p.client(req.APIKey).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai chat: %w", ErrNoChoices)
	}

	choice := resp.Choices[0]
	return &ChatResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Tokens:     resp.Usage.TotalTokens,
	}, nil
}

// ModelInfo returns static metadata for this provider/model.
func (p *OpenAIProvider) ModelInfo() ModelMeta {
	return ModelMeta{
		ID:        p.model,
		Provider:  "openai",
		Version:   "v1",
		MaxTokens: 128000,
	}
}

// HealthCheck lists models with apiKey: returns nil if the API accepts the key.
func (p *OpenAIProvider) HealthCheck(ctx context.Context, apiKey string) error {
	if _, err := p.client(apiKey).ListModels(ctx); err != nil {
		return fmt.Errorf("openai healthcheck: %w", err)
	}
	return nil
}

// StatusCode extracts the HTTP status carried by a go-openai error chain, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
