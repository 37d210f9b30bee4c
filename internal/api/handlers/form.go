// HTML form: persona radio list, question input and the rendered answer.
package handlers

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/matiasleandrokruk/askexpert/internal/domain/ask"
	"github.com/matiasleandrokruk/askexpert/internal/domain/persona"
)

//go:embed templates/form.html
var formHTML string

var formTemplate = template.Must(template.New("form").Parse(formHTML))

// FormView is the data rendered by the form template.
type FormView struct {
	Personas []string
	Selected string
	Question string
	Answer   string
	Warning  string
}

// FormHandler serves GET / and POST /.
type FormHandler struct {
	asker Asker
}

func NewFormHandler(asker Asker) *FormHandler {
	return &FormHandler{asker: asker}
}

// Show handles GET /
func (h *FormHandler) Show(w http.ResponseWriter, _ *http.Request) {
	renderForm(w, http.StatusOK, newFormView(""))
}

// Submit handles POST /. Every outcome re-renders the form: an empty question or an
// unknown persona comes back as a warning, a failed request as the answer text.
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		view := newFormView("")
		view.Warning = "The form could not be read."
		renderForm(w, http.StatusBadRequest, view)
		return
	}

	view := newFormView(r.PostFormValue("persona"))
	view.Question = r.PostFormValue("question")

	p, err := persona.Parse(view.Selected)
	if err != nil {
		view.Selected = persona.Labels()[0]
		view.Warning = "Please choose one of the listed experts."
		renderForm(w, http.StatusOK, view)
		return
	}

	if strings.TrimSpace(view.Question) == "" {
		view.Warning = ask.MsgEmptyQuestion
		renderForm(w, http.StatusOK, view)
		return
	}

	answer, err := h.asker.RequestCompletion(r.Context(), view.Question, p)
	if err != nil {
		view.Answer = err.Error()
	} else {
		view.Answer = answer
	}
	renderForm(w, http.StatusOK, view)
}

func newFormView(selected string) FormView {
	labels := persona.Labels()
	return FormView{Personas: labels, Selected: coalesce(selected, labels[0])}
}

func renderForm(w http.ResponseWriter, statusCode int, view FormView) {
	var buf bytes.Buffer
	if err := formTemplate.Execute(&buf, view); err != nil {
		http.Error(w, "failed to render form", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	w.Write(buf.Bytes()) //nolint:errcheck
}
