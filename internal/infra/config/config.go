// Package config provides application-wide configuration loaded from env vars.
// All fields have safe defaults so the binary runs locally without any env setup;
// only the API key (resolved separately, see internal/domain/credential) is required to get answers.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Proxy holds the forward-proxy settings applied to outbound clients when the
// credential comes from the local environment.
type Proxy struct {
	HTTPProxy          string // HTTP_PROXY
	HTTPSProxy         string // HTTPS_PROXY
	InsecureSkipVerify bool   // TLS_INSECURE_SKIP_VERIFY
}

// Config holds runtime configuration for askexpert.
type Config struct {
	// LLM
	LLMProvider     string        // LLM_PROVIDER, default: "openai"
	OpenAIBaseURL   string        // OPENAI_BASE_URL, default: "https://api.openai.com/v1"
	OpenAIModel     string        // OPENAI_MODEL, default: "gpt-4o-mini"
	Temperature     float32       // OPENAI_TEMPERATURE, default: 0.7
	RequestTimeout  time.Duration // REQUEST_TIMEOUT, default: 30s
	OllamaBaseURL   string        // OLLAMA_BASE_URL, default: "http://localhost:11434"
	OllamaChatModel string        // OLLAMA_CHAT_MODEL, default: "llama3.2:3b"

	// Probe
	ProbeTimeout       time.Duration // PROBE_TIMEOUT, default: 10s
	ProbeBeforeRequest bool          // PROBE_BEFORE_REQUEST, default: true

	// Credential sources
	SecretsFile string // SECRETS_FILE, default: ".askexpert/secrets.yaml"

	Proxy Proxy

	// HTTP server
	ServerHost        string // SERVER_HOST, default: "0.0.0.0"
	ServerPort        int    // SERVER_PORT, default: 8080
	AccessTokenSecret string // ACCESS_TOKEN_SECRET, empty disables API auth

	LogLevel string // LOG_LEVEL, default: "info"
}

const (
	// EnvKeyAPIKey is the credential key name, looked up in the session store and the environment.
	EnvKeyAPIKey = "OPENAI_API_KEY"

	// EnvKeyDotEnvFile names the .env file loaded before Load runs.
	EnvKeyDotEnvFile = "DOTENV_FILE"

	envKeyLLMProvider        = "LLM_PROVIDER"
	envKeyOpenAIBaseURL      = "OPENAI_BASE_URL"
	envKeyOpenAIModel        = "OPENAI_MODEL"
	envKeyTemperature        = "OPENAI_TEMPERATURE"
	envKeyRequestTimeout     = "REQUEST_TIMEOUT"
	envKeyOllamaBaseURL      = "OLLAMA_BASE_URL"
	envKeyOllamaChatModel    = "OLLAMA_CHAT_MODEL"
	envKeyProbeTimeout       = "PROBE_TIMEOUT"
	envKeyProbeBeforeRequest = "PROBE_BEFORE_REQUEST"
	envKeySecretsFile        = "SECRETS_FILE"
	envKeyHTTPProxy          = "HTTP_PROXY"
	envKeyHTTPSProxy         = "HTTPS_PROXY"
	envKeyInsecureSkipVerify = "TLS_INSECURE_SKIP_VERIFY"
	envKeyServerHost         = "SERVER_HOST"
	envKeyServerPort         = "SERVER_PORT"
	envKeyAccessTokenSecret  = "ACCESS_TOKEN_SECRET"
	envKeyLogLevel           = "LOG_LEVEL"
)

const (
	DefaultTemperature    float32 = 0.7
	DefaultRequestTimeout         = 30 * time.Second
	DefaultProbeTimeout           = 10 * time.Second
	DefaultDotEnvFile             = ".env"
)

// Load reads configuration from environment variables, applying defaults for missing values.
// Malformed numeric, boolean or duration values fall back to their defaults.
func Load() Config {
	return Config{
		LLMProvider:     envOr(envKeyLLMProvider, "openai"),
		OpenAIBaseURL:   strings.TrimRight(envOr(envKeyOpenAIBaseURL, "https://api.openai.com/v1"), "/"),
		OpenAIModel:     envOr(envKeyOpenAIModel, "gpt-4o-mini"),
		Temperature:     envFloat32(envKeyTemperature, DefaultTemperature),
		RequestTimeout:  envDuration(envKeyRequestTimeout, DefaultRequestTimeout),
		OllamaBaseURL:   strings.TrimRight(envOr(envKeyOllamaBaseURL, "http://localhost:11434"), "/"),
		OllamaChatModel: envOr(envKeyOllamaChatModel, "llama3.2:3b"),

		ProbeTimeout:       envDuration(envKeyProbeTimeout, DefaultProbeTimeout),
		ProbeBeforeRequest: envBool(envKeyProbeBeforeRequest, true),

		SecretsFile: envOr(envKeySecretsFile, ".askexpert/secrets.yaml"),

		Proxy: Proxy{
			HTTPProxy:          strings.TrimSpace(os.Getenv(envKeyHTTPProxy)),
			HTTPSProxy:         strings.TrimSpace(os.Getenv(envKeyHTTPSProxy)),
			InsecureSkipVerify: envBool(envKeyInsecureSkipVerify, false),
		},

		ServerHost:        envOr(envKeyServerHost, "0.0.0.0"),
		ServerPort:        envInt(envKeyServerPort, 8080),
		AccessTokenSecret: os.Getenv(envKeyAccessTokenSecret),

		LogLevel: envOr(envKeyLogLevel, "info"),
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
// Surrounding whitespace is trimmed.
func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(envOr(key, ""))
	if err != nil {
		return fallback
	}
	return n
}

func envFloat32(key string, fallback float32) float32 {
	f, err := strconv.ParseFloat(envOr(key, ""), 32)
	if err != nil {
		return fallback
	}
	return float32(f)
}

func envBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(envOr(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

// envDuration accepts Go durations ("30s") or a bare number of seconds ("30").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := envOr(key, "")
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
