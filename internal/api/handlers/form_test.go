package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/matiasleandrokruk/askexpert/internal/domain/ask"
	"github.com/matiasleandrokruk/askexpert/internal/domain/persona"
)

func postForm(h http.HandlerFunc, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func TestFormHandler_Show_ListsEveryPersona(t *testing.T) {
	t.Parallel()

	h := NewFormHandler(&askerStub{})
	rr := httptest.NewRecorder()
	h.Show(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q; want text/html", ct)
	}
	body := rr.Body.String()
	for _, label := range persona.Labels() {
		if !strings.Contains(body, `value="`+label+`"`) {
			t.Errorf("form missing radio for %q", label)
		}
	}
	if !strings.Contains(body, `value="medical expert" checked`) {
		t.Error("first persona should be selected by default")
	}
}

func TestFormHandler_Submit_RendersAnswer(t *testing.T) {
	t.Parallel()

	stub := &askerStub{answer: "Use version control <always>."}
	h := NewFormHandler(stub)

	rr := postForm(h.Submit, url.Values{"persona": {"IT engineer"}, "question": {"How do I keep configs safe?"}})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rr.Code)
	}
	if stub.persona != persona.IT {
		t.Errorf("persona = %v; want IT", stub.persona)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Use version control &lt;always&gt;.") {
		t.Errorf("answer missing or not escaped: %s", body)
	}
	if !strings.Contains(body, `value="IT engineer" checked`) {
		t.Error("submitted persona should stay selected")
	}
}

func TestFormHandler_Submit_EmptyQuestionWarns(t *testing.T) {
	t.Parallel()

	stub := &askerStub{}
	h := NewFormHandler(stub)

	rr := postForm(h.Submit, url.Values{"persona": {"educator"}, "question": {" \t\n "}})

	if stub.calls != 0 {
		t.Errorf("service calls = %d; want 0 for a blank question", stub.calls)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `class="warning"`) || !strings.Contains(body, ask.MsgEmptyQuestion) {
		t.Errorf("expected empty-question warning, got: %s", body)
	}
	if strings.Contains(body, `class="answer"`) {
		t.Error("no answer block should render for an empty question")
	}
}

func TestFormHandler_Submit_FailureShownAsAnswer(t *testing.T) {
	t.Parallel()

	stub := &askerStub{err: &ask.Error{Kind: ask.ConfigurationMissing, Message: ask.MsgCredentialMissing}}
	h := NewFormHandler(stub)

	rr := postForm(h.Submit, url.Values{"persona": {"legal expert"}, "question": {"Can I break my lease?"}})

	body := rr.Body.String()
	if !strings.Contains(body, `class="answer"`) || !strings.Contains(body, "credential not configured") {
		t.Errorf("expected failure text in the answer block, got: %s", body)
	}
}

func TestFormHandler_Submit_UnknownPersona(t *testing.T) {
	t.Parallel()

	stub := &askerStub{}
	h := NewFormHandler(stub)

	rr := postForm(h.Submit, url.Values{"persona": {"astrologer"}, "question": {"hi"}})

	if stub.calls != 0 {
		t.Errorf("service calls = %d; want 0", stub.calls)
	}
	if !strings.Contains(rr.Body.String(), "Please choose one of the listed experts.") {
		t.Errorf("expected persona warning, got: %s", rr.Body.String())
	}
}
