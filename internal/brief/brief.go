// Package brief assembles the input handed to the reasoning step: who it is,
// what it must produce, the user's problem, the enabled rules found for the
// project, and the workflow reference text.
package brief

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/yule44ka/workflow-agent/internal/evidence"
	"github.com/yule44ka/workflow-agent/internal/investigate"
)

// NoEvidence is stated in place of the rules when none were found.
const NoEvidence = "No enabled workflow rules were found for this project."

// Input is everything a brief is built from.
type Input struct {
	Problem       string
	ProjectID     string
	BaseURL       string
	Documentation string
	Records       []evidence.Record
	// Failed lists workflows whose rules could not be read.
	Failed []investigate.FailedWorkflow
}

// Brief is a system and a user message for the reasoning step.
type Brief struct {
	System string
	User   string
}

const systemTemplate = `You are a YouTrack workflow specialist.
You help a user find the workflow rule that caused an action in YouTrack, based on the user's description.
Only the rules listed as evidence are enabled in project {{.ProjectID}}; do not blame any other rule.
Expected output: an explanation of why it happened, plus links to the workflow rules that could have led to this behaviour.
A workflow link looks like this: {{.LinkTemplate}}
{{- if .Links}}
Links for the workflows that have enabled rules:
{{- range .Links}}
- {{.}}
{{- end}}
{{- end}}`

const userTemplate = `Problem:
{{.Problem}}

Project: {{.ProjectID}}

Enabled workflow rules:
{{if .Records}}{{.Evidence}}{{else}}{{noEvidence}}{{end}}
{{- if .Failed}}

These workflows could not be read, so their rules are missing from the list above:
{{- range .Failed}}
- {{.Name}} ({{.ID}}): {{.Error}}
{{- end}}
{{- end}}
{{- if .Documentation}}

Workflow reference:
{{.Documentation}}
{{- end}}
`

var (
	funcs   = template.FuncMap{"noEvidence": func() string { return NoEvidence }}
	sysTmpl = template.Must(template.New("system").Funcs(funcs).Parse(systemTemplate))
	usrTmpl = template.Must(template.New("user").Funcs(funcs).Parse(userTemplate))
)

type params struct {
	Input
	LinkTemplate string
	Links        []string
	Evidence     string
}

// Build renders the brief for in.
func Build(in Input) (Brief, error) {
	data, err := evidence.Marshal(in.Records)
	if err != nil {
		return Brief{}, fmt.Errorf("encode evidence: %w", err)
	}
	p := params{
		Input:        in,
		LinkTemplate: investigate.WorkflowLink(linkBase(in.BaseURL), in.ProjectID, "") + "<workflowId>",
		Evidence:     string(data),
	}
	if in.BaseURL != "" {
		rep := &investigate.Report{Project: in.ProjectID, BaseURL: in.BaseURL, Records: in.Records}
		p.Links = rep.Links()
	}

	var sys, usr bytes.Buffer
	if err := sysTmpl.Execute(&sys, p); err != nil {
		return Brief{}, fmt.Errorf("execute template system: %w", err)
	}
	if err := usrTmpl.Execute(&usr, p); err != nil {
		return Brief{}, fmt.Errorf("execute template user: %w", err)
	}
	return Brief{System: sys.String(), User: strings.TrimRight(usr.String(), "\n") + "\n"}, nil
}

// FromReport fills an Input from a finished investigation.
func FromReport(problem, documentation string, rep *investigate.Report) Input {
	var failed []investigate.FailedWorkflow
	for _, f := range rep.Failed() {
		failed = append(failed, investigate.FailedWorkflow{ID: f.Workflow.ID, Name: f.Workflow.Name, Error: f.Err.Error()})
	}
	return Input{
		Problem:       problem,
		ProjectID:     rep.Project,
		BaseURL:       rep.BaseURL,
		Documentation: documentation,
		Records:       rep.Records,
		Failed:        failed,
	}
}

func linkBase(u string) string {
	if u == "" {
		return "<youtrack-url>"
	}
	return u
}
