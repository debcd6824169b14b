package format

import (
	"fmt"

	"github.com/yule44ka/workflow-agent/internal/evidence"
	"github.com/yule44ka/workflow-agent/internal/investigate"
)

// ScriptPreview is how many runes of a rule script the evidence table shows.
const ScriptPreview = 60

// EvidenceTable renders one row per record in record order.
func EvidenceTable(records []evidence.Record, m Mode) string {
	tb := NewTable(m)
	tb.Header("#", "Workflow", "Rule", "Description", "Script")
	for i, r := range records {
		tb.Row(i+1,
			fmt.Sprintf("%s (%s)", r.WorkflowName, r.WorkflowID),
			fmt.Sprintf("%s (%s)", r.RuleName, r.RuleID),
			Truncate(OneLine(r.Description()), ScriptPreview),
			Truncate(OneLine(r.Script()), ScriptPreview),
		)
	}
	tb.Footer("", "", fmt.Sprintf("%d rules", len(records)), "", "")
	tb.Columns(ColumnConfig{Number: 1, Align: AlignRight})
	return tb.String()
}

// OutcomeTable renders one row per resolved workflow: whether it was read,
// how many enabled rules it contributed, and how long it took.
func OutcomeTable(results []investigate.TaskResult, m Mode) string {
	tb := NewTable(m)
	tb.Header("Workflow", "OK", "Rules", "Elapsed", "Error")
	failed := 0
	for _, r := range results {
		errText := ""
		if r.Failed() {
			failed++
			errText = Truncate(OneLine(r.Err.Error()), ScriptPreview)
		}
		tb.Row(fmt.Sprintf("%s (%s)", r.Workflow.Name, r.Workflow.ID), BoolMark(!r.Failed()), len(r.Records), FmtElapsed(r.Elapsed), errText)
	}
	tb.Footer(fmt.Sprintf("%d workflows", len(results)), "", "", "", fmt.Sprintf("%d failed", failed))
	tb.Columns(ColumnConfig{Number: 3, Align: AlignRight}, ColumnConfig{Number: 4, Align: AlignRight})
	return tb.String()
}
