package investigate

import (
	"github.com/yule44ka/workflow-agent/internal/evidence"
	"github.com/yule44ka/workflow-agent/internal/youtrack"
)

// Report is the merged outcome of one investigation.
type Report struct {
	// InvestigationID correlates the log lines of one run.
	InvestigationID string
	Project         string
	BaseURL         string

	// Workflows is the discovery order; Results and Records follow it.
	Workflows []youtrack.Workflow
	Results   []TaskResult
	Records   []evidence.Record

	// DiscoveryError is set when the workflow list itself could not be read.
	DiscoveryError error
}

// Failed returns the tasks that contributed nothing because of an error.
func (r *Report) Failed() []TaskResult {
	var out []TaskResult
	for _, res := range r.Results {
		if res.Failed() {
			out = append(out, res)
		}
	}
	return out
}

// Links returns one deep link per workflow implicated by the records, in
// record order. It is empty when the report has no base URL.
func (r *Report) Links() []string {
	if r.BaseURL == "" {
		return nil
	}
	seen := make(map[string]bool)
	var links []string
	for _, rec := range r.Records {
		if seen[rec.WorkflowID] {
			continue
		}
		seen[rec.WorkflowID] = true
		links = append(links, WorkflowLink(r.BaseURL, r.Project, rec.WorkflowID))
	}
	return links
}
