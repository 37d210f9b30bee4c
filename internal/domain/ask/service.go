// Package ask sends a single question to the configured LLM under an expert persona
// and turns every outcome into display text.
//
// One call is one exchange: a system message carrying the persona instruction followed
// by the user's question. Nothing is retained between calls.
package ask

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/askexpert/internal/domain/credential"
	"github.com/matiasleandrokruk/askexpert/internal/domain/persona"
	"github.com/matiasleandrokruk/askexpert/internal/domain/probe"
	"github.com/matiasleandrokruk/askexpert/internal/infra/config"
	"github.com/matiasleandrokruk/askexpert/internal/infra/llm"
)

// User-facing messages.
const (
	MsgEmptyQuestion        = "Please enter a question."
	MsgCredentialMissing    = "credential not configured: set OPENAI_API_KEY in the secrets file or the environment."
	msgRequestFailedPrefix  = "The request to the AI failed"
	msgUnknownPersonaPrefix = "Unknown expert type"
)

// CredentialResolver supplies the provider credential for one request.
type CredentialResolver interface {
	Resolve() (credential.Credential, bool)
}

// Prober runs the diagnostic connectivity check.
type Prober interface {
	Probe(ctx context.Context, cred credential.Credential, ok bool) probe.Result
}

// ProviderRouter selects the LLM provider.
type ProviderRouter interface {
	Route(ctx context.Context) (llm.LLMProvider, error)
}

// Config holds the per-call completion parameters.
type Config struct {
	Model       string
	Temperature float32
	MaxTokens   int
	// Timeout bounds the completion call; <= 0 uses config.DefaultRequestTimeout.
	Timeout time.Duration
	// ProbeFirst runs the connectivity probe before every completion.
	ProbeFirst bool
}

// Service is the completion requester.
type Service struct {
	creds  CredentialResolver
	prober Prober
	router ProviderRouter
	cfg    Config
	logger *zap.Logger
}

// NewService wires a Service. prober may be nil, which disables probing regardless of cfg.
func NewService(creds CredentialResolver, prober Prober, router ProviderRouter, cfg Config, logger *zap.Logger) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultRequestTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		creds:  creds,
		prober: prober,
		router: router,
		cfg:    cfg,
		logger: logger.Named("ask"),
	}
}

// BuildExchange returns the ordered system + user message pair for one request.
func BuildExchange(p persona.Persona, question string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: p.Instruction()},
		{Role: llm.RoleUser, Content: question},
	}
}

// Submit is the entry point for the form: it never fails, returning either the answer
// or a message explaining why there is none. Empty questions are rejected before any
// credential lookup or network call.
func (s *Service) Submit(ctx context.Context, question, label string) string {
	if strings.TrimSpace(question) == "" {
		return MsgEmptyQuestion
	}
	p, err := persona.Parse(label)
	if err != nil {
		s.logger.Warn("unknown persona label", zap.String("label", label))
		return fmt.Sprintf("%s: %q", msgUnknownPersonaPrefix, label)
	}
	answer, err := s.RequestCompletion(ctx, question, p)
	if err != nil {
		return err.Error()
	}
	return answer
}

// RequestCompletion asks the routed provider to answer question as persona p.
// Every failure is an *Error whose message can be shown as-is.
func (s *Service) RequestCompletion(ctx context.Context, question string, p persona.Persona) (string, error) {
	if !p.Valid() {
		s.logger.Error("invalid persona", zap.Int("persona", int(p)))
		return "", &Error{Kind: InvalidPersona, Message: fmt.Sprintf("%s: %v", msgUnknownPersonaPrefix, p)}
	}
	if strings.TrimSpace(question) == "" {
		s.logger.Warn("empty question rejected", zap.String("persona", p.Label()))
		return "", &Error{Kind: EmptyQuestion, Message: MsgEmptyQuestion}
	}

	cred, ok := s.creds.Resolve()
	if !ok {
		s.logger.Warn("credential not configured")
		return "", &Error{Kind: ConfigurationMissing, Message: MsgCredentialMissing}
	}

	log := s.logger.With(
		zap.String("persona", p.Label()),
		zap.String("provenance", string(cred.Provenance)),
		zap.String("key_prefix", cred.Redacted()),
	)

	provider, err := s.router.Route(ctx)
	if err != nil {
		log.Error("no llm provider", zap.Error(err))
		return "", s.failure(err, nil)
	}
	providerName := provider.ModelInfo().Provider
	log = log.With(zap.String("provider", providerName))

	// The probe targets the OpenAI-compatible models endpoint; other providers skip it.
	var probed *probe.Result
	if s.cfg.ProbeFirst && s.prober != nil && providerName == llm.ProviderOpenAI {
		res := s.prober.Probe(ctx, cred, ok)
		res.Log(log)
		probed = &res
	}

	start := time.Now()
	answer, err := s.complete(ctx, provider, cred, BuildExchange(p, question))
	if err != nil {
		log.Error("completion failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return "", s.failure(err, probed)
	}

	if answer.Content == "" {
		log.Warn("provider returned an empty answer", zap.String("stop_reason", answer.StopReason))
	}
	log.Info("completion succeeded",
		zap.Int("tokens", answer.Tokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return answer.Content, nil
}

func (s *Service) complete(ctx context.Context, provider llm.LLMProvider, cred credential.Credential, msgs []llm.Message) (*llm.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	resp, err := provider.ChatCompletion(ctx, llm.ChatRequest{
		Model:       s.cfg.Model,
		APIKey:      cred.Value,
		Messages:    msgs,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, errors.New("provider returned no response")
	}
	return resp, nil
}

// failure builds the RequestFailed error. The message carries the underlying error and,
// when one applies, the probe's diagnosis of the same failure mode.
func (s *Service) failure(err error, probed *probe.Result) *Error {
	msg := msgRequestFailedPrefix
	if hint := diagnosis(err, probed); hint != "" {
		msg += " (" + hint + ")"
	}
	msg += ": " + s.describe(err)
	return &Error{Kind: RequestFailed, Message: msg, Err: err, Probe: probed}
}

// diagnosis prefers the probe outcome and falls back to classifying the status code
// carried by the completion error itself.
func diagnosis(err error, probed *probe.Result) string {
	if probed != nil {
		switch probed.Kind {
		case probe.AuthFailed, probe.NotFound, probe.NetworkError:
			return strings.TrimSuffix(probed.Message(), ".")
		}
	}
	if status := llm.StatusCode(err); status != 0 {
		switch res := probe.Classify(status, nil); res.Kind {
		case probe.AuthFailed, probe.NotFound:
			return strings.TrimSuffix(res.Message(), ".")
		}
	}
	return ""
}

func (s *Service) describe(err error) string {
	if isTimeout(err) {
		return fmt.Sprintf("timeout after %s: %v", s.cfg.Timeout, err)
	}
	return err.Error()
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
