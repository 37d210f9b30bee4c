// LLMProvider interface.
// Adapters (OpenAI, Ollama) implement this interface so the application
// is never coupled to a specific LLM vendor.
package llm

import "context"

// LLMProvider is the model-agnostic interface for LLM operations.
// Streaming is deliberately absent: every call is a single request/response.
type LLMProvider interface {
	// ChatCompletion performs a non-streaming chat completion.
	ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// ModelInfo returns static metadata about the provider/model.
	ModelInfo() ModelMeta

	// HealthCheck returns nil if the provider is reachable with the given key.
	HealthCheck(ctx context.Context, apiKey string) error
}
