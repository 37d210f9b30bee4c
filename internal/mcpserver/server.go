// Package mcpserver exposes the expert Q&A as MCP tools so agent hosts can ask
// the same personas the web form offers.
package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/matiasleandrokruk/askexpert/internal/domain/persona"
	"github.com/matiasleandrokruk/askexpert/internal/version"
)

const (
	ServerName       = "askexpert"
	ToolAskExpert    = "ask_expert"
	ToolListPersonas = "list_personas"
)

// Asker is the completion requester behind ask_expert.
type Asker interface {
	RequestCompletion(ctx context.Context, question string, p persona.Persona) (string, error)
}

type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer"`
	Persona  string `json:"persona" jsonschema:"expert persona label, one of list_personas"`
}

type ListPersonasOutput struct {
	Personas []string `json:"personas"`
}

// New returns an MCP server exposing ask_expert and list_personas.
func New(asker Asker, logger *zap.Logger) *mcp.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("mcp")

	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version.Version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolAskExpert,
		Description: "Answer a question in the voice of an expert persona (" + strings.Join(persona.Labels(), ", ") + ").",
	}, askExpert(asker, logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolListPersonas,
		Description: "List the expert persona labels accepted by ask_expert.",
	}, listPersonas)

	return server
}

func askExpert(asker Asker, logger *zap.Logger) mcp.ToolHandlerFor[AskInput, any] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in AskInput) (*mcp.CallToolResult, any, error) {
		p, err := persona.Parse(in.Persona)
		if err != nil {
			logger.Warn("unknown persona label", zap.String("label", in.Persona))
			return toolError(fmt.Sprintf("unknown persona %q; use one of: %s", in.Persona, strings.Join(persona.Labels(), ", "))), nil, nil
		}

		answer, err := asker.RequestCompletion(ctx, in.Question, p)
		if err != nil {
			return toolError(err.Error()), nil, nil
		}
		return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: answer}}}, nil, nil
	}
}

func listPersonas(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, ListPersonasOutput, error) {
	return nil, ListPersonasOutput{Personas: persona.Labels()}, nil
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
	}
}

// ServeStdio runs server over stdin/stdout until ctx is done or the client disconnects.
func ServeStdio(ctx context.Context, server *mcp.Server) error {
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp stdio: %w", err)
	}
	return nil
}
