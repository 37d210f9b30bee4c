// Package httpclient builds the outbound *http.Client shared by the probe and the
// completion call. Proxy and TLS settings are passed in explicitly through NetworkConfig;
// the process environment is never read or mutated here.
package httpclient

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// NetworkConfig describes how outbound requests reach the provider.
// The zero value means direct connections with TLS verification on.
type NetworkConfig struct {
	HTTPProxy          string
	HTTPSProxy         string
	InsecureSkipVerify bool
}

// UsesProxy reports whether any forward proxy is configured.
func (n NetworkConfig) UsesProxy() bool {
	return n.HTTPProxy != "" || n.HTTPSProxy != ""
}

// Validate checks that the proxy URLs parse and carry a scheme and host.
func (n NetworkConfig) Validate() error {
	for name, raw := range map[string]string{"http proxy": n.HTTPProxy, "https proxy": n.HTTPSProxy} {
		if raw == "" {
			continue
		}
		if _, err := parseProxy(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// New returns a client for cfg with the given overall timeout (0 means none).
func New(cfg NetworkConfig, timeout time.Duration) (*http.Client, error) {
	transport, err := NewTransport(cfg)
	if err != nil {
		return nil, err
	}
	return &http.Client{Transport: transport, Timeout: timeout}, nil
}

// NewTransport returns an *http.Transport whose proxy selection follows cfg:
// plain-http requests go through HTTPProxy, https requests through HTTPSProxy.
func NewTransport(cfg NetworkConfig) (*http.Transport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpProxy, _ := parseProxy(cfg.HTTPProxy)
	httpsProxy, _ := parseProxy(cfg.HTTPSProxy)

	return &http.Transport{
		Proxy: func(req *http.Request) (*url.URL, error) {
			if req.URL.Scheme == "https" {
				return httpsProxy, nil
			}
			return httpProxy, nil
		},
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec
			MinVersion:         tls.VersionTLS12,
		},
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
	}, nil
}

// parseProxy returns nil for an empty string.
func parseProxy(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("parse %q: scheme and host are required", raw)
	}
	return u, nil
}
