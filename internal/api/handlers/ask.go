// JSON endpoints for asking an expert, listing personas and running the probe.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/matiasleandrokruk/askexpert/internal/domain/ask"
	"github.com/matiasleandrokruk/askexpert/internal/domain/credential"
	"github.com/matiasleandrokruk/askexpert/internal/domain/persona"
	"github.com/matiasleandrokruk/askexpert/internal/domain/probe"
)

// Asker is the completion requester used by the handlers.
type Asker interface {
	RequestCompletion(ctx context.Context, question string, p persona.Persona) (string, error)
}

// CredentialResolver supplies the credential for an on-demand probe.
type CredentialResolver interface {
	Resolve() (credential.Credential, bool)
}

// Prober runs the connectivity check.
type Prober interface {
	Probe(ctx context.Context, cred credential.Credential, ok bool) probe.Result
}

// AskHandler serves POST /api/v1/ask.
type AskHandler struct {
	asker Asker
}

func NewAskHandler(asker Asker) *AskHandler {
	return &AskHandler{asker: asker}
}

type AskRequest struct {
	Question string `json:"question"`
	Persona  string `json:"persona"`
}

type AskResponse struct {
	Answer  string `json:"answer"`
	Persona string `json:"persona"`
}

type AskErrorResponse struct {
	Error string        `json:"error"`
	Kind  ask.Kind      `json:"kind"`
	Probe *probe.Result `json:"probe,omitempty"`
}

// Ask handles POST /api/v1/ask
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := persona.Parse(req.Persona)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, AskErrorResponse{
			Error: "unknown persona: " + req.Persona,
			Kind:  ask.InvalidPersona,
		})
		return
	}

	answer, err := h.asker.RequestCompletion(r.Context(), req.Question, p)
	if err != nil {
		writeAskError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AskResponse{Answer: answer, Persona: p.Label()})
}

func writeAskError(w http.ResponseWriter, err error) {
	var askErr *ask.Error
	if !errors.As(err, &askErr) {
		writeError(w, http.StatusInternalServerError, "ask failed")
		return
	}
	writeJSON(w, statusForKind(askErr.Kind), AskErrorResponse{
		Error: askErr.Message,
		Kind:  askErr.Kind,
		Probe: askErr.Probe,
	})
}

func statusForKind(k ask.Kind) int {
	switch k {
	case ask.EmptyQuestion, ask.InvalidPersona:
		return http.StatusBadRequest
	case ask.ConfigurationMissing:
		return http.StatusServiceUnavailable
	case ask.RequestFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type PersonaResponse struct {
	Label       string `json:"label"`
	Instruction string `json:"instruction"`
}

type ListPersonasResponse struct {
	Data []PersonaResponse `json:"data"`
}

// ListPersonas handles GET /api/v1/personas
func ListPersonas(w http.ResponseWriter, _ *http.Request) {
	all := persona.All()
	resp := ListPersonasResponse{Data: make([]PersonaResponse, 0, len(all))}
	for _, p := range all {
		resp.Data = append(resp.Data, PersonaResponse{Label: p.Label(), Instruction: p.Instruction()})
	}
	writeJSON(w, http.StatusOK, resp)
}

// ProbeHandler serves GET /api/v1/probe.
type ProbeHandler struct {
	creds  CredentialResolver
	prober Prober
}

func NewProbeHandler(creds CredentialResolver, prober Prober) *ProbeHandler {
	return &ProbeHandler{creds: creds, prober: prober}
}

// Probe handles GET /api/v1/probe. The outcome is always reported with 200;
// the kind field carries the classification.
func (h *ProbeHandler) Probe(w http.ResponseWriter, r *http.Request) {
	cred, ok := h.creds.Resolve()
	res := h.prober.Probe(r.Context(), cred, ok)
	writeJSON(w, http.StatusOK, probeResponse{Result: res, Message: res.Message()})
}

type probeResponse struct {
	probe.Result
	Message string `json:"message"`
}
