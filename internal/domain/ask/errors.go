package ask

import (
	"errors"

	"github.com/matiasleandrokruk/askexpert/internal/domain/probe"
)

// Kind classifies why a completion was not produced.
type Kind string

const (
	// ConfigurationMissing: no credential in either source; no call was attempted.
	ConfigurationMissing Kind = "configuration_missing"
	// EmptyQuestion: the question was empty or whitespace; no call was attempted.
	EmptyQuestion Kind = "empty_question"
	// InvalidPersona: the persona is not in the registry; no call was attempted.
	InvalidPersona Kind = "invalid_persona"
	// RequestFailed: the completion call itself failed.
	RequestFailed Kind = "request_failed"
)

// Error is the only error type RequestCompletion returns. Its message is safe to show
// to end users as the answer text.
type Error struct {
	Kind    Kind
	Message string
	// Err is the underlying cause, if any.
	Err error
	// Probe is the connectivity check run for the same request, if one ran.
	Probe *probe.Result
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
