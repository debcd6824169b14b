package format_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yule44ka/workflow-agent/internal/evidence"
	"github.com/yule44ka/workflow-agent/internal/format"
	"github.com/yule44ka/workflow-agent/internal/investigate"
	"github.com/yule44ka/workflow-agent/internal/youtrack"
)

func TestASCII_BasicTable(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("ID", "Name")
	tb.Row("73-1", "require-assignee")
	out := tb.String()

	if !strings.Contains(out, "require-assignee") {
		t.Errorf("expected row in output:\n%s", out)
	}
	if !strings.Contains(out, "───") {
		t.Errorf("expected box-drawing characters in ASCII output:\n%s", out)
	}
}

func TestMarkdown_WithFooter(t *testing.T) {
	tb := format.NewTable(format.Markdown)
	tb.Header("Workflow", "Rules")
	tb.Row("assignee", 2)
	tb.Footer("TOTAL", 2)
	out := tb.String()

	for _, want := range []string{"| Workflow", "---", "TOTAL"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in markdown output:\n%s", want, out)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    format.Mode
		wantErr bool
	}{
		{"", format.ASCII, false},
		{"table", format.ASCII, false},
		{"Markdown", format.Markdown, false},
		{"md", format.Markdown, false},
		{"html", format.ASCII, true},
	}
	for _, tc := range tests {
		got, err := format.ParseMode(tc.in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("ParseMode(%q) = %v, %v", tc.in, got, err)
		}
	}
}

func strPtr(s string) *string { return &s }

func TestEvidenceTable(t *testing.T) {
	records := []evidence.Record{
		{RuleID: "73-1", RuleName: "require-assignee", RuleScript: strPtr("exports.rule = entities.Issue.onChange({\n  guard: (ctx) => true,\n});"), WorkflowID: "72-1", WorkflowName: "assignee"},
		{RuleID: "73-2", RuleName: "reminder", WorkflowID: "72-2", WorkflowName: "due-date"},
	}
	out := format.EvidenceTable(records, format.Markdown)
	for _, want := range []string{"assignee (72-1)", "require-assignee (73-1)", "reminder (73-2)", "2 rules", "exports.rule = entities.Issue.onChange({ guard"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestOutcomeTable(t *testing.T) {
	results := []investigate.TaskResult{
		{Workflow: youtrack.Workflow{ID: "72-1", Name: "assignee"}, Records: make([]evidence.Record, 3), Elapsed: 120 * time.Millisecond},
		{Workflow: youtrack.Workflow{ID: "72-2", Name: "broken"}, Err: errors.New("HTTP 500"), Elapsed: 2 * time.Second},
	}
	out := format.OutcomeTable(results, format.ASCII)
	for _, want := range []string{"assignee (72-1)", "✓", "✗", "120ms", "2.0s", "HTTP 500", "1 failed"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

// --- Helper tests ---

func TestFmtElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0ms"},
		{850 * time.Millisecond, "850ms"},
		{12300 * time.Millisecond, "12.3s"},
		{125 * time.Second, "2m 5s"},
	}
	for _, tc := range tests {
		if got := format.FmtElapsed(tc.in); got != tc.want {
			t.Errorf("FmtElapsed(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 8, "hello..."},
		{"abcdef", 3, "abc"},
		{"привет мир", 7, "прив..."},
	}
	for _, tc := range tests {
		if got := format.Truncate(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestOneLine(t *testing.T) {
	if got := format.OneLine("a\n  b\tc "); got != "a b c" {
		t.Errorf("OneLine = %q", got)
	}
}
