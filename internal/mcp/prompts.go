package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yule44ka/workflow-agent/internal/brief"
	"github.com/yule44ka/workflow-agent/internal/docs"
)

// DocsScheme prefixes the URIs of documentation resources.
const DocsScheme = "docs://"

func (s *Server) registerPrompts() {
	s.MCPServer.AddPrompt(&sdkmcp.Prompt{
		Name:        "diagnose_workflow",
		Description: "Investigate which enabled workflow rules explain a problem in a YouTrack project.",
		Arguments: []*sdkmcp.PromptArgument{
			{Name: "problem", Description: "what the user saw happen", Required: true},
			{Name: "project_id", Description: "project short name, e.g. DEMO", Required: true},
		},
	}, s.handleDiagnosePrompt)
}

func (s *Server) handleDiagnosePrompt(ctx context.Context, req *sdkmcp.GetPromptRequest) (*sdkmcp.GetPromptResult, error) {
	args := req.Params.Arguments
	problem, projectID := args["problem"], args["project_id"]
	s.logger.Info("prompt requested", "prompt", "diagnose_workflow", "project_id", projectID)
	if problem == "" {
		return nil, errors.New("problem is required")
	}
	if projectID == "" {
		return nil, errProjectRequired
	}

	rep, err := s.deps.Investigator.Investigate(ctx, projectID)
	if err != nil {
		return nil, err
	}
	b, err := brief.Build(brief.FromReport(problem, s.deps.Docs.Lookup(docs.DefaultName), rep))
	if err != nil {
		return nil, fmt.Errorf("build brief: %w", err)
	}
	return &sdkmcp.GetPromptResult{
		Description: fmt.Sprintf("Workflow diagnosis for %s (%d enabled rules)", projectID, len(rep.Records)),
		Messages: []*sdkmcp.PromptMessage{
			{Role: "user", Content: &sdkmcp.TextContent{Text: b.System}},
			{Role: "user", Content: &sdkmcp.TextContent{Text: b.User}},
		},
	}, nil
}

func (s *Server) registerResources() {
	for _, name := range s.deps.Docs.Names() {
		s.MCPServer.AddResource(&sdkmcp.Resource{
			URI:         DocsScheme + name,
			Name:        name,
			Description: "YouTrack workflow reference: " + name,
			MIMEType:    "text/markdown",
		}, s.handleReadDoc)
	}
}

func (s *Server) handleReadDoc(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	uri := req.Params.URI
	text := s.deps.Docs.Lookup(strings.TrimPrefix(uri, DocsScheme))
	if text == "" {
		return nil, sdkmcp.ResourceNotFoundError(uri)
	}
	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{{URI: uri, MIMEType: "text/markdown", Text: text}},
	}, nil
}
