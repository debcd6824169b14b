package investigate

import (
	"context"
	"fmt"
	"strings"

	"github.com/yule44ka/workflow-agent/internal/evidence"
	"github.com/yule44ka/workflow-agent/internal/youtrack"
)

// EnabledFor reports whether obj has at least one usage that is switched on
// for projectID. Short names are compared case-insensitively.
func EnabledFor(obj youtrack.PluggableObject, projectID string) bool {
	for _, u := range obj.Usages {
		if !u.Enabled || u.Configuration == nil || u.Configuration.Project == nil {
			continue
		}
		if strings.EqualFold(u.Configuration.Project.ShortName, projectID) {
			return true
		}
	}
	return false
}

// ShapeRecord turns a rule into an evidence record that remembers its workflow.
func ShapeRecord(obj youtrack.PluggableObject, wf youtrack.Workflow) evidence.Record {
	rec := evidence.Record{
		RuleID:          obj.ID,
		RuleName:        obj.Name,
		RuleDescription: obj.Description,
		WorkflowID:      wf.ID,
		WorkflowName:    wf.Name,
	}
	if obj.Script != nil {
		rec.RuleScript = obj.Script.Script
	}
	return rec
}

// FilterEnabled keeps the rules of app that are enabled for projectID, in
// the order the app lists them.
func FilterEnabled(app *youtrack.App, projectID string, wf youtrack.Workflow) []evidence.Record {
	if app == nil {
		return nil
	}
	var records []evidence.Record
	for _, obj := range app.PluggableObjects {
		if EnabledFor(obj, projectID) {
			records = append(records, ShapeRecord(obj, wf))
		}
	}
	return records
}

// ResolveEnabledRules fetches one workflow's rules and returns those enabled
// for projectID. Fetch failures are returned so the caller can decide how to
// absorb them.
func (inv *Investigator) ResolveEnabledRules(ctx context.Context, projectID string, wf youtrack.Workflow) ([]evidence.Record, error) {
	app, err := inv.source.GetApp(ctx, wf.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve workflow %s (%s): %w", wf.ID, wf.Name, err)
	}
	return FilterEnabled(app, projectID, wf), nil
}
