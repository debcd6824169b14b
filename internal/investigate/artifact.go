package investigate

import (
	"encoding/json"

	"github.com/yule44ka/workflow-agent/internal/evidence"
)

// Artifact is the serialized form of a Report handed to the reasoning step
// and printed by the CLI.
type Artifact struct {
	InvestigationID string            `json:"investigation_id"`
	ProjectID       string            `json:"project_id"`
	Rules           []evidence.Record `json:"rules"`
	Links           []string          `json:"links"`
	FailedWorkflows []FailedWorkflow  `json:"failed_workflows,omitempty"`
	DiscoveryError  string            `json:"discovery_error,omitempty"`
}

// FailedWorkflow names a workflow whose rules could not be read.
type FailedWorkflow struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Artifact returns the serializable view of r. Rules and Links are never nil
// so they encode as arrays.
func (r *Report) Artifact() Artifact {
	a := Artifact{
		InvestigationID: r.InvestigationID,
		ProjectID:       r.Project,
		Rules:           r.Records,
		Links:           r.Links(),
	}
	if a.Rules == nil {
		a.Rules = []evidence.Record{}
	}
	if a.Links == nil {
		a.Links = []string{}
	}
	for _, f := range r.Failed() {
		a.FailedWorkflows = append(a.FailedWorkflows, FailedWorkflow{ID: f.Workflow.ID, Name: f.Workflow.Name, Error: f.Err.Error()})
	}
	if r.DiscoveryError != nil {
		a.DiscoveryError = r.DiscoveryError.Error()
	}
	return a
}

// MarshalIndent encodes the artifact the way evidence.Marshal encodes records.
func (a Artifact) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}
