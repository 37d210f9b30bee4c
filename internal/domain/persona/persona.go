// Package persona defines the closed set of expert profiles a question can be asked to.
// Each persona carries the one-sentence system instruction sent ahead of the user's question.
package persona

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPersona is returned by Parse for labels outside the registry.
var ErrUnknownPersona = errors.New("unknown persona")

// Persona is one member of the fixed expert enumeration.
// The zero value is not a valid persona.
type Persona int

const (
	Medical Persona = iota + 1
	Legal
	IT
	Educator
)

type entry struct {
	label       string
	instruction string
}

// registry is indexed by Persona; index 0 is the invalid zero value.
var registry = [...]entry{
	{},
	Medical: {
		label:       "medical expert",
		instruction: "You are an expert in the medical field. Give explanations that are professional yet easy to understand.",
	},
	Legal: {
		label:       "legal expert",
		instruction: "You are an expert in the legal field. Explain clearly from a legal point of view.",
	},
	IT: {
		label:       "IT engineer",
		instruction: "You are an expert in the IT field. Explain in a technically accurate and easy-to-understand way.",
	},
	Educator: {
		label:       "educator",
		instruction: "You are an expert in education. Explain gently so that even beginners can understand.",
	},
}

// All returns every persona in display order.
func All() []Persona {
	return []Persona{Medical, Legal, IT, Educator}
}

// Labels returns the display labels of All, in the same order.
func Labels() []string {
	all := All()
	out := make([]string, len(all))
	for i, p := range all {
		out[i] = p.Label()
	}
	return out
}

// Parse returns the persona registered under label.
// Callers taking labels from untrusted input must go through Parse.
// Matching ignores surrounding whitespace but is otherwise exact.
func Parse(label string) (Persona, error) {
	label = strings.TrimSpace(label)
	for _, p := range All() {
		if registry[p].label == label {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPersona, label)
}

// Valid reports whether p is a registered persona.
func (p Persona) Valid() bool {
	return p > 0 && int(p) < len(registry)
}

// Label returns the human-readable label, or "" for an invalid persona.
func (p Persona) Label() string {
	if !p.Valid() {
		return ""
	}
	return registry[p].label
}

// Instruction returns the system-level instruction, or "" for an invalid persona.
func (p Persona) Instruction() string {
	if !p.Valid() {
		return ""
	}
	return registry[p].instruction
}

func (p Persona) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Persona(%d)", int(p))
	}
	return registry[p].label
}
