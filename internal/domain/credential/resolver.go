// Package credential resolves the provider API key from the session secret store or the
// process environment, and derives the outbound network settings that go with it.
package credential

import (
	"os"
	"strings"

	"github.com/matiasleandrokruk/askexpert/internal/infra/config"
	"github.com/matiasleandrokruk/askexpert/internal/infra/httpclient"
	"github.com/matiasleandrokruk/askexpert/internal/infra/secrets"
)

// Provenance records which configuration source supplied a credential.
type Provenance string

const (
	// Hosted means the key came from the session secret store.
	Hosted Provenance = "hosted"
	// Local means the key came from the process environment.
	Local Provenance = "local"
)

// redactedPrefixLen is how many leading characters Redacted keeps.
const redactedPrefixLen = 7

// Credential is an opaque provider secret plus where it came from.
type Credential struct {
	Value      string
	Provenance Provenance
}

// Redacted returns a short non-identifying prefix suitable for logs.
func (c Credential) Redacted() string {
	if c.Value == "" {
		return ""
	}
	if len(c.Value) <= redactedPrefixLen {
		return "***"
	}
	return c.Value[:redactedPrefixLen] + "..."
}

// String never returns the full secret.
func (c Credential) String() string {
	return c.Redacted()
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Resolver finds the credential under a fixed key name.
type Resolver struct {
	key     string
	session secrets.Store
	env     LookupFunc
}

// NewResolver returns a Resolver for key. A nil session store is treated as empty and a
// nil env defaults to os.LookupEnv.
func NewResolver(key string, session secrets.Store, env LookupFunc) *Resolver {
	if session == nil {
		session = secrets.MapStore{}
	}
	if env == nil {
		env = os.LookupEnv
	}
	return &Resolver{key: key, session: session, env: env}
}

// NewDefaultResolver resolves config.EnvKeyAPIKey from session, then os.LookupEnv.
func NewDefaultResolver(session secrets.Store) *Resolver {
	return NewResolver(config.EnvKeyAPIKey, session, nil)
}

// Key returns the credential key name.
func (r *Resolver) Key() string { return r.key }

// Resolve returns the credential and true, or the zero Credential and false when neither
// source holds a non-empty value. The session store always wins over the environment.
func (r *Resolver) Resolve() (Credential, bool) {
	if v, ok := r.session.Lookup(r.key); ok {
		if v = strings.TrimSpace(v); v != "" {
			return Credential{Value: v, Provenance: Hosted}, true
		}
	}
	if v, ok := r.env(r.key); ok {
		if v = strings.TrimSpace(v); v != "" {
			return Credential{Value: v, Provenance: Local}, true
		}
	}
	return Credential{}, false
}

// Network returns the outbound settings for a credential of the given provenance.
// Proxy settings only apply to local execution; hosted deployments connect directly.
func Network(p Provenance, proxy config.Proxy) httpclient.NetworkConfig {
	if p != Local {
		return httpclient.NetworkConfig{}
	}
	return httpclient.NetworkConfig{
		HTTPProxy:          proxy.HTTPProxy,
		HTTPSProxy:         proxy.HTTPSProxy,
		InsecureSkipVerify: proxy.InsecureSkipVerify,
	}
}
