package youtracktest

import "github.com/yule44ka/workflow-agent/internal/youtrack"

// Demo fixture identifiers.
const (
	DemoProject       = "DEMO"
	DemoWorkflowA     = "72-1"
	DemoWorkflowAName = "demo-assignee"
	DemoWorkflowB     = "72-2"
	DemoWorkflowBName = "other-only"
	DemoRuleR1        = "73-1"
	DemoRuleR2        = "73-2"
)

func str(s string) *string { return &s }

// Binding is a shorthand for a usage of a rule in a project.
func Binding(shortName string, enabled bool) youtrack.Usage {
	return youtrack.Usage{
		Enabled:       enabled,
		Configuration: &youtrack.Configuration{Project: &youtrack.ProjectShort{ShortName: shortName}},
	}
}

// Rule builds a pluggable object with a script and the given usages.
func Rule(id, name, script string, usages ...youtrack.Usage) youtrack.PluggableObject {
	return youtrack.PluggableObject{
		ID:          id,
		Name:        name,
		Description: str(name + " rule"),
		Script:      &youtrack.Script{ID: id + "-s", Script: str(script)},
		Usages:      usages,
	}
}

// LoadDemo installs the DEMO project. Workflow A holds R1, enabled for DEMO.
// Workflow B holds R2, which is enabled only for OTHER and disabled for DEMO.
func (s *Server) LoadDemo() {
	s.Projects[DemoProject] = youtrack.Project{ID: "0-1", Name: "Demo project"}
	s.Projects["OTHER"] = youtrack.Project{ID: "0-2", Name: "Other project"}
	s.Workflows[DemoProject] = []youtrack.WorkflowUsage{
		{Workflow: &youtrack.Workflow{ID: DemoWorkflowA, Name: DemoWorkflowAName}},
		{Workflow: &youtrack.Workflow{ID: DemoWorkflowB, Name: DemoWorkflowBName}},
	}
	s.Apps[DemoWorkflowA] = youtrack.App{PluggableObjects: []youtrack.PluggableObject{
		Rule(DemoRuleR1, "R1", `exports.rule = entities.Issue.onChange({title: "R1"});`, Binding(DemoProject, true)),
	}}
	s.Apps[DemoWorkflowB] = youtrack.App{PluggableObjects: []youtrack.PluggableObject{
		Rule(DemoRuleR2, "R2", `exports.rule = entities.Issue.onChange({title: "R2"});`,
			Binding("OTHER", true), Binding(DemoProject, false)),
	}}
}
