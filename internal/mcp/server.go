// Package mcp exposes the investigation tools to an LLM host over the Model
// Context Protocol. The tool set is declared once in NewServer.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/yule44ka/workflow-agent/internal/docs"
	"github.com/yule44ka/workflow-agent/internal/evidence"
	"github.com/yule44ka/workflow-agent/internal/investigate"
	"github.com/yule44ka/workflow-agent/internal/logging"
	"github.com/yule44ka/workflow-agent/internal/youtrack"
)

// Projects answers project-level questions. *youtrack.Client satisfies it.
type Projects interface {
	LookupProject(ctx context.Context, projectID string) (*youtrack.Project, error)
	ListWorkflows(ctx context.Context, projectID string) ([]youtrack.Workflow, error)
}

// Deps are the collaborators the tools call into.
type Deps struct {
	Projects     Projects
	Investigator *investigate.Investigator
	Docs         *docs.Registry
	Version      string
	Logger       *slog.Logger
}

// Server wraps the MCP SDK server.
type Server struct {
	MCPServer *sdkmcp.Server

	deps   Deps
	logger *slog.Logger
}

// NewServer registers the tools, the diagnosis prompt and the documentation
// resources.
func NewServer(deps Deps) *Server {
	if deps.Docs == nil {
		deps.Docs = docs.Default()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.New("mcp")
	}
	s := &Server{deps: deps, logger: logger}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "workflow-agent", Version: deps.Version},
		nil,
	)
	s.registerTools()
	s.registerPrompts()
	s.registerResources()
	return s
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "validate_project",
		Description: "Validate that a YouTrack project exists, by short name (e.g. DEMO).",
	}, s.handleValidateProject)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_project_workflows",
		Description: "List the workflows attached to a YouTrack project.",
	}, s.handleGetProjectWorkflows)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_enabled_rules_for_workflow",
		Description: "Get the rules of one workflow that are enabled for a project, with their scripts.",
	}, s.handleGetEnabledRulesForWorkflow)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name: "get_enabled_rules_for_project",
		Description: "Get every workflow rule enabled for a project, across all of its workflows, with a link to each workflow. " +
			"Workflows that cannot be read are listed in failed_workflows and contribute no rules.",
	}, s.handleGetEnabledRulesForProject)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "read_workflow_documentation",
		Description: "Get reference documentation about YouTrack workflows.",
	}, s.handleReadWorkflowDocumentation)
}

// --- Tool input/output types ---

type projectInput struct {
	ProjectID string `json:"project_id" jsonschema:"project short name, e.g. DEMO"`
}

type validateProjectOutput struct {
	Exists  bool              `json:"exists"`
	Project *youtrack.Project `json:"project,omitempty"`
}

type getProjectWorkflowsOutput struct {
	Workflows []youtrack.Workflow `json:"workflows"`
	Error     string              `json:"error,omitempty"`
}

type workflowRulesInput struct {
	ProjectID    string `json:"project_id" jsonschema:"project short name, e.g. DEMO"`
	WorkflowID   string `json:"workflow_id" jsonschema:"workflow id from get_project_workflows"`
	WorkflowName string `json:"workflow_name,omitempty" jsonschema:"workflow name, copied into each rule"`
}

type rulesOutput struct {
	Rules []evidence.Record `json:"rules"`
	Error string            `json:"error,omitempty"`
}

type projectRulesInput struct {
	ProjectID string `json:"project_id" jsonschema:"project short name, e.g. DEMO"`
	Where     string `json:"where,omitempty" jsonschema:"optional CEL filter over rule, e.g. rule.ruleScript.contains(\"Assignee\")"`
}

type readDocumentationInput struct {
	Name string `json:"name,omitempty" jsonschema:"document name (default workflow_context.md)"`
}

type readDocumentationOutput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

var errProjectRequired = errors.New("project_id is required")

// --- Tool handlers ---

func (s *Server) handleValidateProject(ctx context.Context, _ *sdkmcp.CallToolRequest, input projectInput) (*sdkmcp.CallToolResult, validateProjectOutput, error) {
	s.logger.Info("tool called", "tool", "validate_project", "project_id", input.ProjectID)
	if input.ProjectID == "" {
		return nil, validateProjectOutput{}, errProjectRequired
	}
	p, err := s.deps.Projects.LookupProject(ctx, input.ProjectID)
	if err != nil {
		return nil, validateProjectOutput{}, fmt.Errorf("validate_project: %w", err)
	}
	return nil, validateProjectOutput{Exists: p != nil, Project: p}, nil
}

func (s *Server) handleGetProjectWorkflows(ctx context.Context, _ *sdkmcp.CallToolRequest, input projectInput) (*sdkmcp.CallToolResult, getProjectWorkflowsOutput, error) {
	s.logger.Info("tool called", "tool", "get_project_workflows", "project_id", input.ProjectID)
	if input.ProjectID == "" {
		return nil, getProjectWorkflowsOutput{}, errProjectRequired
	}
	out := getProjectWorkflowsOutput{Workflows: []youtrack.Workflow{}}
	wfs, err := s.deps.Projects.ListWorkflows(ctx, input.ProjectID)
	if err != nil {
		s.logger.Warn("workflow discovery failed", "project_id", input.ProjectID, "error", err)
		out.Error = err.Error()
		return nil, out, nil
	}
	if wfs != nil {
		out.Workflows = wfs
	}
	return nil, out, nil
}

func (s *Server) handleGetEnabledRulesForWorkflow(ctx context.Context, _ *sdkmcp.CallToolRequest, input workflowRulesInput) (*sdkmcp.CallToolResult, rulesOutput, error) {
	s.logger.Info("tool called", "tool", "get_enabled_rules_for_workflow", "project_id", input.ProjectID, "workflow_id", input.WorkflowID)
	if input.ProjectID == "" {
		return nil, rulesOutput{}, errProjectRequired
	}
	if input.WorkflowID == "" {
		return nil, rulesOutput{}, errors.New("workflow_id is required")
	}
	out := rulesOutput{Rules: []evidence.Record{}}
	wf := youtrack.Workflow{ID: input.WorkflowID, Name: input.WorkflowName}
	recs, err := s.deps.Investigator.RulesForWorkflow(ctx, input.ProjectID, wf)
	if err != nil {
		s.logger.Warn("workflow skipped", "workflow_id", wf.ID, "error", err)
		out.Error = err.Error()
		return nil, out, nil
	}
	if recs != nil {
		out.Rules = recs
	}
	return nil, out, nil
}

func (s *Server) handleGetEnabledRulesForProject(ctx context.Context, _ *sdkmcp.CallToolRequest, input projectRulesInput) (*sdkmcp.CallToolResult, investigate.Artifact, error) {
	s.logger.Info("tool called", "tool", "get_enabled_rules_for_project", "project_id", input.ProjectID)
	if input.ProjectID == "" {
		return nil, investigate.Artifact{}, errProjectRequired
	}
	var filter *evidence.Filter
	if input.Where != "" {
		f, err := evidence.CompileFilter(input.Where)
		if err != nil {
			return nil, investigate.Artifact{}, err
		}
		filter = f
	}

	rep, err := s.deps.Investigator.Investigate(ctx, input.ProjectID)
	if err != nil {
		return nil, investigate.Artifact{}, err
	}
	kept, err := filter.Apply(rep.Records)
	if err != nil {
		return nil, investigate.Artifact{}, fmt.Errorf("apply filter: %w", err)
	}
	rep.Records = kept
	return nil, rep.Artifact(), nil
}

func (s *Server) handleReadWorkflowDocumentation(_ context.Context, _ *sdkmcp.CallToolRequest, input readDocumentationInput) (*sdkmcp.CallToolResult, readDocumentationOutput, error) {
	name := input.Name
	if name == "" {
		name = docs.DefaultName
	}
	s.logger.Info("tool called", "tool", "read_workflow_documentation", "name", name)
	return nil, readDocumentationOutput{Name: name, Content: s.deps.Docs.Lookup(name)}, nil
}
