// Package probe implements the pre-flight connectivity check against the provider's
// model-listing endpoint. Its outcome is diagnostic: it is logged and surfaced to users,
// never used to block a completion request.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/matiasleandrokruk/askexpert/internal/domain/credential"
)

// Kind classifies a probe outcome.
type Kind string

const (
	NotConfigured Kind = "not_configured"
	Success       Kind = "success"
	AuthFailed    Kind = "auth_failed"
	NotFound      Kind = "not_found"
	OtherStatus   Kind = "other_status"
	NetworkError  Kind = "network_error"
)

// DefaultTimeout bounds a single probe.
const DefaultTimeout = 10 * time.Second

// maxBodyBytes caps how much of a successful listing is kept.
const maxBodyBytes = 64 << 10

// Result is the outcome of one probe.
type Result struct {
	Kind       Kind   `json:"kind"`
	StatusCode int    `json:"status_code,omitempty"`
	Body       string `json:"body,omitempty"`
	Error      string `json:"error,omitempty"`
	Endpoint   string `json:"endpoint,omitempty"`
}

// Classify maps an HTTP status code or transport error to a Result.
// A non-nil err always wins over the status code.
func Classify(status int, err error) Result {
	switch {
	case err != nil:
		return Result{Kind: NetworkError, Error: err.Error()}
	case status == http.StatusOK:
		return Result{Kind: Success, StatusCode: status}
	case status == http.StatusUnauthorized:
		return Result{Kind: AuthFailed, StatusCode: status}
	case status == http.StatusNotFound:
		return Result{Kind: NotFound, StatusCode: status}
	default:
		return Result{Kind: OtherStatus, StatusCode: status}
	}
}

// Message returns the human-readable diagnostic line for r.
func (r Result) Message() string {
	switch r.Kind {
	case NotConfigured:
		return "API key is not configured. Set OPENAI_API_KEY in the secrets file or the environment."
	case Success:
		return "Connected to the provider endpoint successfully."
	case AuthFailed:
		return "Authentication failed. Check that the API key is correct."
	case NotFound:
		return "Endpoint not found. Check the provider base URL."
	case OtherStatus:
		return fmt.Sprintf("Connection to the provider endpoint failed with status code %d.", r.StatusCode)
	case NetworkError:
		return "Could not reach the provider endpoint: " + r.Error
	default:
		return "Unknown probe outcome."
	}
}

// OK reports whether the endpoint answered 200.
func (r Result) OK() bool { return r.Kind == Success }

// Prober issues GET {baseURL}/models with the credential as a bearer token.
type Prober struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// New returns a Prober. client carries the proxy/TLS settings; timeout <= 0 uses DefaultTimeout.
func New(baseURL string, client *http.Client, timeout time.Duration, logger *zap.Logger) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prober{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		timeout: timeout,
		logger:  logger.Named("probe"),
	}
}

// Endpoint returns the URL the prober hits.
func (p *Prober) Endpoint() string {
	return p.baseURL + "/models"
}

// Probe checks connectivity with cred. When ok is false no request is made.
func (p *Prober) Probe(ctx context.Context, cred credential.Credential, ok bool) Result {
	if !ok || cred.Value == "" {
		return Result{Kind: NotConfigured, Endpoint: p.Endpoint()}
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	res := p.do(ctx, cred)
	res.Endpoint = p.Endpoint()
	return res
}

func (p *Prober) do(ctx context.Context, cred credential.Credential) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint(), nil)
	if err != nil {
		return Classify(0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+cred.Value)

	resp, err := p.client.Do(req)
	if err != nil {
		return Classify(0, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	res := Classify(resp.StatusCode, nil)
	if res.Kind == Success {
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if readErr != nil {
			return Classify(0, fmt.Errorf("read body: %w", readErr))
		}
		res.Body = string(body)
	}
	return res
}

// Log writes r at a level matching its kind.
func (r Result) Log(logger *zap.Logger) {
	fields := []zap.Field{
		zap.String("kind", string(r.Kind)),
		zap.String("endpoint", r.Endpoint),
	}
	if r.StatusCode != 0 {
		fields = append(fields, zap.Int("status", r.StatusCode))
	}
	if r.Error != "" {
		fields = append(fields, zap.String("error", r.Error))
	}

	switch r.Kind {
	case Success:
		logger.Info(r.Message(), append(fields, zap.Int("body_bytes", len(r.Body)))...)
	case NotConfigured, NotFound, OtherStatus:
		logger.Warn(r.Message(), fields...)
	default:
		logger.Error(r.Message(), fields...)
	}
}
