package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/askexpert/internal/domain/persona"
)

type askerStub struct {
	answer string
	err    error
	got    persona.Persona
}

func (s *askerStub) RequestCompletion(_ context.Context, _ string, p persona.Persona) (string, error) {
	s.got = p
	return s.answer, s.err
}

// connect wires New(asker) to an in-memory client session.
func connect(t *testing.T, asker Asker) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := New(asker, nil).Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() }) //nolint:errcheck

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() }) //nolint:errcheck
	return session
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("result has no content")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("content[0] = %T; want *mcp.TextContent", res.Content[0])
	}
	return tc.Text
}

func TestServer_ListsTools(t *testing.T) {
	t.Parallel()

	session := connect(t, &askerStub{})
	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools() error = %v", err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{ToolAskExpert, ToolListPersonas} {
		if !names[want] {
			t.Errorf("tool %q not registered", want)
		}
	}
}

func TestAskExpert_ReturnsAnswer(t *testing.T) {
	t.Parallel()

	stub := &askerStub{answer: "Keep a regular sleep schedule."}
	session := connect(t, stub)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolAskExpert,
		Arguments: map[string]any{"question": "How do I study better?", "persona": "educator"},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", textOf(t, res))
	}
	if got := textOf(t, res); got != stub.answer {
		t.Errorf("answer = %q; want %q", got, stub.answer)
	}
	if stub.got != persona.Educator {
		t.Errorf("persona = %v; want Educator", stub.got)
	}
}

func TestAskExpert_FailureIsToolError(t *testing.T) {
	t.Parallel()

	session := connect(t, &askerStub{err: errors.New("The request to the AI failed: boom")})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolAskExpert,
		Arguments: map[string]any{"question": "q", "persona": "legal expert"},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("IsError = false; want true")
	}
	if got := textOf(t, res); !strings.Contains(got, "boom") {
		t.Errorf("text = %q; want failure message", got)
	}
}

func TestAskExpert_UnknownPersona(t *testing.T) {
	t.Parallel()

	stub := &askerStub{}
	session := connect(t, stub)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolAskExpert,
		Arguments: map[string]any{"question": "q", "persona": "astrologer"},
	})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}
	if !res.IsError {
		t.Fatal("IsError = false; want true")
	}
	if stub.got != 0 {
		t.Errorf("service should not be called, got persona %v", stub.got)
	}
}

func TestListPersonas(t *testing.T) {
	t.Parallel()

	session := connect(t, &askerStub{})
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{Name: ToolListPersonas, Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("CallTool() error = %v", err)
	}

	var out ListPersonasOutput
	if err := json.Unmarshal([]byte(textOf(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(out.Personas, ",") != strings.Join(persona.Labels(), ",") {
		t.Errorf("personas = %v; want %v", out.Personas, persona.Labels())
	}
}
