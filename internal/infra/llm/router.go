// Provider router.
// Router selects an LLMProvider at request time by the configured provider name.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"sort"
)

// Provider names accepted by LLM_PROVIDER.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Router selects a LLMProvider for each request.
type Router struct {
	providers       map[string]LLMProvider
	defaultProvider string
}

// NewRouter creates a Router with an initial set of providers and a default key.
func NewRouter(providers map[string]LLMProvider, defaultProvider string) *Router {
	ps := make(map[string]LLMProvider, len(providers))
	for k, v := range providers {
		ps[k] = v
	}
	return &Router{providers: ps, defaultProvider: defaultProvider}
}

// RouterConfig carries what NewDefaultRouter needs to build both adapters.
type RouterConfig struct {
	Default         string
	OpenAIBaseURL   string
	OpenAIModel     string
	OllamaBaseURL   string
	OllamaChatModel string
}

// NewDefaultRouter registers the OpenAI and Ollama adapters over one shared client.
func NewDefaultRouter(cfg RouterConfig, httpClient *http.Client) *Router {
	return NewRouter(map[string]LLMProvider{
		ProviderOpenAI: NewOpenAIProvider(cfg.OpenAIBaseURL, cfg.OpenAIModel, httpClient),
		ProviderOllama: NewOllamaProvider(cfg.OllamaBaseURL, cfg.OllamaChatModel, httpClient),
	}, cfg.Default)
}

// Register adds (or replaces) a provider under the given key.
func (r *Router) Register(key string, p LLMProvider) {
	r.providers[key] = p
}

// Route returns the provider for the current request.
// Returns an error if the default provider is not registered.
func (r *Router) Route(_ context.Context) (LLMProvider, error) {
	p, ok := r.providers[r.defaultProvider]
	if !ok {
		return nil, fmt.Errorf("llm router: provider %q not registered (available: %v)", r.defaultProvider, r.keys())
	}
	return p, nil
}

// keys returns the registered provider names, sorted (for error messages).
func (r *Router) keys() []string {
	out := make([]string, 0, len(r.providers))
	for k := range r.providers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
