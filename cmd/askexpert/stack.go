package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/askexpert/internal/api"
	"github.com/matiasleandrokruk/askexpert/internal/domain/ask"
	"github.com/matiasleandrokruk/askexpert/internal/domain/credential"
	"github.com/matiasleandrokruk/askexpert/internal/domain/probe"
	"github.com/matiasleandrokruk/askexpert/internal/infra/config"
	"github.com/matiasleandrokruk/askexpert/internal/infra/httpclient"
	"github.com/matiasleandrokruk/askexpert/internal/infra/llm"
	"github.com/matiasleandrokruk/askexpert/internal/infra/secrets"
)

// stack is the wired application: one resolver, one outbound client, one service.
type stack struct {
	cfg      config.Config
	resolver *credential.Resolver
	network  httpclient.NetworkConfig
	prober   *probe.Prober
	service  *ask.Service
	logger   *zap.Logger
}

// loadConfig loads the .env file (never overriding the process environment) and then Config.
func loadConfig() (config.Config, error) {
	path := config.DefaultDotEnvFile
	if v, ok := lookupEnv(config.EnvKeyDotEnvFile); ok && v != "" {
		path = v
	}
	if err := config.LoadDotEnv(path); err != nil {
		return config.Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return config.Load(), nil
}

// buildStack wires the stack from cfg. The outbound network settings follow the
// provenance of the credential visible at startup.
func buildStack(cfg config.Config, logger *zap.Logger) (*stack, error) {
	store, err := secrets.LoadFile(cfg.SecretsFile)
	if err != nil {
		return nil, fmt.Errorf("secrets: %w", err)
	}
	resolver := credential.NewResolver(config.EnvKeyAPIKey, store, lookupEnv)

	cred, ok := resolver.Resolve()
	network := httpclient.NetworkConfig{}
	if ok {
		network = credential.Network(cred.Provenance, cfg.Proxy)
	}
	if err := network.Validate(); err != nil {
		return nil, fmt.Errorf("network: %w", err)
	}

	// Timeouts are bounded per call by context; the client itself has none.
	client, err := httpclient.New(network, 0)
	if err != nil {
		return nil, fmt.Errorf("http client: %w", err)
	}

	logger.Info("configuration loaded",
		zap.String("provider", cfg.LLMProvider),
		zap.String("base_url", cfg.OpenAIBaseURL),
		zap.Bool("credential_configured", ok),
		zap.String("provenance", string(cred.Provenance)),
		zap.String("secrets_file", store.Path()),
		zap.Int("secrets", store.Len()),
		zap.Bool("proxy", network.UsesProxy()),
	)

	prober := probe.New(cfg.OpenAIBaseURL, client, cfg.ProbeTimeout, logger)
	router := llm.NewDefaultRouter(llm.RouterConfig{
		Default:         cfg.LLMProvider,
		OpenAIBaseURL:   cfg.OpenAIBaseURL,
		OpenAIModel:     cfg.OpenAIModel,
		OllamaBaseURL:   cfg.OllamaBaseURL,
		OllamaChatModel: cfg.OllamaChatModel,
	}, client)

	service := ask.NewService(resolver, prober, router, ask.Config{
		Temperature: cfg.Temperature,
		Timeout:     cfg.RequestTimeout,
		ProbeFirst:  cfg.ProbeBeforeRequest,
	}, logger)

	return &stack{
		cfg:      cfg,
		resolver: resolver,
		network:  network,
		prober:   prober,
		service:  service,
		logger:   logger,
	}, nil
}

// handler returns the HTTP surface for the stack.
func (s *stack) handler() http.Handler {
	return api.NewRouter(api.Deps{
		Asker:             s.service,
		Credentials:       s.resolver,
		Prober:            s.prober,
		AccessTokenSecret: []byte(s.cfg.AccessTokenSecret),
		Logger:            s.logger,
	})
}
