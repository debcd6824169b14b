package investigate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yule44ka/workflow-agent/internal/evidence"
	"github.com/yule44ka/workflow-agent/internal/youtrack"
	"github.com/yule44ka/workflow-agent/internal/youtrack/youtracktest"
)

func quiet() Option { return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))) }

// fakeSource serves workflows and apps from memory. Per-workflow delays,
// errors and panics are injected by id.
type fakeSource struct {
	workflows   []youtrack.Workflow
	listErr     error
	apps        map[string]*youtrack.App
	appErr      map[string]error
	delay       map[string]time.Duration
	panics      map[string]bool
	ignoreCtx   bool
	appCalls    atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func (f *fakeSource) ListWorkflows(_ context.Context, _ string) ([]youtrack.Workflow, error) {
	return f.workflows, f.listErr
}

func (f *fakeSource) GetApp(ctx context.Context, id string) (*youtrack.App, error) {
	f.appCalls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		m := f.maxInFlight.Load()
		if n <= m || f.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}

	if d := f.delay[id]; d > 0 {
		if f.ignoreCtx {
			time.Sleep(d)
		} else {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if f.panics[id] {
		panic("boom in " + id)
	}
	if err := f.appErr[id]; err != nil {
		return nil, err
	}
	return f.apps[id], nil
}

func strPtr(s string) *string { return &s }

func usage(short string, enabled bool) youtrack.Usage {
	return youtrack.Usage{Enabled: enabled, Configuration: &youtrack.Configuration{Project: &youtrack.ProjectShort{ShortName: short}}}
}

func oneRuleApp(ruleID string, usages ...youtrack.Usage) *youtrack.App {
	return &youtrack.App{PluggableObjects: []youtrack.PluggableObject{{ID: ruleID, Name: "rule-" + ruleID, Usages: usages}}}
}

func ruleIDs(recs []evidence.Record) []string {
	ids := []string{}
	for _, r := range recs {
		ids = append(ids, r.RuleID)
	}
	return ids
}

// --- Rule resolver ---

func TestEnabledFor(t *testing.T) {
	tests := []struct {
		name   string
		usages []youtrack.Usage
		want   bool
	}{
		{"no usages", nil, false},
		{"enabled for project", []youtrack.Usage{usage("DEMO", true)}, true},
		{"disabled for project", []youtrack.Usage{usage("DEMO", false)}, false},
		{"enabled for other project", []youtrack.Usage{usage("OTHER", true)}, false},
		{"mixed bindings", []youtrack.Usage{usage("OTHER", true), usage("DEMO", false), usage("DEMO", true)}, true},
		{"case-insensitive", []youtrack.Usage{usage("demo", true)}, true},
		{"missing configuration", []youtrack.Usage{{Enabled: true}}, false},
		{"missing project", []youtrack.Usage{{Enabled: true, Configuration: &youtrack.Configuration{}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj := youtrack.PluggableObject{ID: "1", Usages: tt.usages}
			if got := EnabledFor(obj, "DEMO"); got != tt.want {
				t.Errorf("EnabledFor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShapeRecord(t *testing.T) {
	obj := youtrack.PluggableObject{
		ID:          "73-1",
		Name:        "require-assignee",
		Description: strPtr("needs assignee"),
		Script:      &youtrack.Script{ID: "s", Script: strPtr("exports.rule = {}")},
	}
	got := ShapeRecord(obj, youtrack.Workflow{ID: "72-1", Name: "assignee"})
	want := evidence.Record{
		RuleID:          "73-1",
		RuleName:        "require-assignee",
		RuleDescription: strPtr("needs assignee"),
		RuleScript:      strPtr("exports.rule = {}"),
		WorkflowID:      "72-1",
		WorkflowName:    "assignee",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ShapeRecord mismatch (-want +got):\n%s", diff)
	}

	bare := ShapeRecord(youtrack.PluggableObject{ID: "x"}, youtrack.Workflow{ID: "w"})
	if bare.RuleScript != nil || bare.RuleDescription != nil {
		t.Errorf("expected nil optionals, got %+v", bare)
	}
}

func TestResolveEnabledRules_KeepsDetailOrder(t *testing.T) {
	src := &fakeSource{apps: map[string]*youtrack.App{
		"w": {PluggableObjects: []youtrack.PluggableObject{
			{ID: "c", Usages: []youtrack.Usage{usage("DEMO", true)}},
			{ID: "a", Usages: []youtrack.Usage{usage("DEMO", false)}},
			{ID: "b", Usages: []youtrack.Usage{usage("DEMO", true)}},
		}},
	}}
	got, err := New(src, quiet()).ResolveEnabledRules(context.Background(), "DEMO", youtrack.Workflow{ID: "w", Name: "W"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"c", "b"}, ruleIDs(got)); diff != "" {
		t.Errorf("ids (-want +got):\n%s", diff)
	}
	for _, r := range got {
		if r.WorkflowID != "w" || r.WorkflowName != "W" {
			t.Errorf("record lost its workflow: %+v", r)
		}
	}
}

func TestResolveEnabledRules_FetchErrorReturned(t *testing.T) {
	src := &fakeSource{appErr: map[string]error{"w": errors.New("connection reset")}}
	_, err := New(src, quiet()).ResolveEnabledRules(context.Background(), "DEMO", youtrack.Workflow{ID: "w"})
	if err == nil || !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("expected wrapped fetch error, got %v", err)
	}
}

// --- Aggregator ---

func TestInvestigate_EmptyProjectID(t *testing.T) {
	_, err := New(&fakeSource{}, quiet()).Investigate(context.Background(), "")
	if !errors.Is(err, ErrEmptyProjectID) {
		t.Errorf("err = %v, want ErrEmptyProjectID", err)
	}
}

func TestInvestigate_FailureIsolation(t *testing.T) {
	src := &fakeSource{
		workflows: []youtrack.Workflow{{ID: "w1"}, {ID: "w2"}, {ID: "w3"}},
		apps: map[string]*youtrack.App{
			"w1": oneRuleApp("r1", usage("DEMO", true)),
			"w3": oneRuleApp("r3", usage("DEMO", true)),
		},
		appErr: map[string]error{"w2": errors.New("HTTP 500")},
	}
	rep, err := New(src, quiet()).Investigate(context.Background(), "DEMO")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"r1", "r3"}, ruleIDs(rep.Records)); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
	failed := rep.Failed()
	if len(failed) != 1 || failed[0].Workflow.ID != "w2" {
		t.Errorf("failed = %+v, want only w2", failed)
	}
	if len(rep.Results) != 3 {
		t.Errorf("results = %d, want 3", len(rep.Results))
	}
}

func TestInvestigate_NoWorkflowsSkipsDetailFetches(t *testing.T) {
	src := &fakeSource{workflows: []youtrack.Workflow{}}
	rep, err := New(src, quiet()).Investigate(context.Background(), "DEMO")
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Records) != 0 {
		t.Errorf("records = %v, want none", rep.Records)
	}
	if n := src.appCalls.Load(); n != 0 {
		t.Errorf("GetApp called %d times, want 0", n)
	}
}

func TestInvestigate_DiscoveryFailureIsAbsorbed(t *testing.T) {
	src := &fakeSource{listErr: errors.New("HTTP 403")}
	rep, err := New(src, quiet()).Investigate(context.Background(), "DEMO")
	if err != nil {
		t.Fatalf("Investigate returned %v, want nil", err)
	}
	if rep.DiscoveryError == nil {
		t.Error("expected DiscoveryError to be set")
	}
	if len(rep.Records) != 0 || src.appCalls.Load() != 0 {
		t.Errorf("expected empty report without detail fetches, got %d records, %d calls", len(rep.Records), src.appCalls.Load())
	}
}

func TestInvestigate_DeterministicOrderUnderReversedCompletion(t *testing.T) {
	src := &fakeSource{
		workflows: []youtrack.Workflow{{ID: "w1"}, {ID: "w2"}, {ID: "w3"}},
		apps: map[string]*youtrack.App{
			"w1": oneRuleApp("r1", usage("DEMO", true)),
			"w2": oneRuleApp("r2", usage("DEMO", true)),
			"w3": oneRuleApp("r3", usage("DEMO", true)),
		},
		delay: map[string]time.Duration{"w1": 60 * time.Millisecond, "w2": 30 * time.Millisecond},
	}
	for i := 0; i < 3; i++ {
		rep, err := New(src, quiet()).Investigate(context.Background(), "DEMO")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"r1", "r2", "r3"}, ruleIDs(rep.Records)); diff != "" {
			t.Fatalf("run %d order (-want +got):\n%s", i, diff)
		}
	}
}

func TestInvestigate_RunsConcurrently(t *testing.T) {
	src := &fakeSource{
		workflows: []youtrack.Workflow{{ID: "w1"}, {ID: "w2"}, {ID: "w3"}, {ID: "w4"}},
		apps:      map[string]*youtrack.App{},
		delay: map[string]time.Duration{
			"w1": 50 * time.Millisecond, "w2": 50 * time.Millisecond,
			"w3": 50 * time.Millisecond, "w4": 50 * time.Millisecond,
		},
	}
	if _, err := New(src, quiet()).Investigate(context.Background(), "DEMO"); err != nil {
		t.Fatal(err)
	}
	if m := src.maxInFlight.Load(); m < 2 {
		t.Errorf("max in flight = %d, want concurrent fetches", m)
	}
}

func TestInvestigate_ParallelLimit(t *testing.T) {
	src := &fakeSource{
		workflows: []youtrack.Workflow{{ID: "w1"}, {ID: "w2"}, {ID: "w3"}, {ID: "w4"}},
		apps:      map[string]*youtrack.App{},
		delay: map[string]time.Duration{
			"w1": 20 * time.Millisecond, "w2": 20 * time.Millisecond,
			"w3": 20 * time.Millisecond, "w4": 20 * time.Millisecond,
		},
	}
	if _, err := New(src, quiet(), WithParallel(1)).Investigate(context.Background(), "DEMO"); err != nil {
		t.Fatal(err)
	}
	if m := src.maxInFlight.Load(); m != 1 {
		t.Errorf("max in flight = %d, want 1", m)
	}
	if n := src.appCalls.Load(); n != 4 {
		t.Errorf("GetApp calls = %d, want 4", n)
	}
}

func TestInvestigate_TimeoutCountsAsFailure(t *testing.T) {
	for _, ignoreCtx := range []bool{false, true} {
		src := &fakeSource{
			workflows: []youtrack.Workflow{{ID: "slow"}, {ID: "fast"}},
			apps: map[string]*youtrack.App{
				"slow": oneRuleApp("rs", usage("DEMO", true)),
				"fast": oneRuleApp("rf", usage("DEMO", true)),
			},
			delay:     map[string]time.Duration{"slow": 200 * time.Millisecond},
			ignoreCtx: ignoreCtx,
		}
		rep, err := New(src, quiet(), WithRuleSetTimeout(20*time.Millisecond)).Investigate(context.Background(), "DEMO")
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff([]string{"rf"}, ruleIDs(rep.Records)); diff != "" {
			t.Errorf("ignoreCtx=%v records (-want +got):\n%s", ignoreCtx, diff)
		}
		failed := rep.Failed()
		if len(failed) != 1 || !errors.Is(failed[0].Err, context.DeadlineExceeded) {
			t.Errorf("ignoreCtx=%v failed = %+v, want slow with deadline exceeded", ignoreCtx, failed)
		}
	}
}

func TestInvestigate_PanicCountsAsFailure(t *testing.T) {
	src := &fakeSource{
		workflows: []youtrack.Workflow{{ID: "bad"}, {ID: "good"}},
		apps:      map[string]*youtrack.App{"good": oneRuleApp("ok", usage("DEMO", true))},
		panics:    map[string]bool{"bad": true},
	}
	rep, err := New(src, quiet()).Investigate(context.Background(), "DEMO")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"ok"}, ruleIDs(rep.Records)); diff != "" {
		t.Errorf("records (-want +got):\n%s", diff)
	}
	failed := rep.Failed()
	if len(failed) != 1 || !strings.Contains(failed[0].Err.Error(), "panic") {
		t.Errorf("failed = %+v, want recovered panic", failed)
	}
}

func TestInvestigate_AssignsInvestigationID(t *testing.T) {
	inv := New(&fakeSource{}, quiet())
	a, _ := inv.Investigate(context.Background(), "DEMO")
	b, _ := inv.Investigate(context.Background(), "DEMO")
	if a.InvestigationID == "" || a.InvestigationID == b.InvestigationID {
		t.Errorf("ids %q and %q should be non-empty and distinct", a.InvestigationID, b.InvestigationID)
	}
}

func TestEnabledRules_NeverFails(t *testing.T) {
	src := &fakeSource{listErr: errors.New("down")}
	if got := New(src, quiet()).EnabledRules(context.Background(), "DEMO"); len(got) != 0 {
		t.Errorf("EnabledRules = %v, want empty", got)
	}
}

func TestRulesForWorkflow(t *testing.T) {
	src := &fakeSource{apps: map[string]*youtrack.App{"w": oneRuleApp("r", usage("DEMO", true))}}
	inv := New(src, quiet())
	got, err := inv.RulesForWorkflow(context.Background(), "DEMO", youtrack.Workflow{ID: "w"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"r"}, ruleIDs(got)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if _, err := inv.RulesForWorkflow(context.Background(), "", youtrack.Workflow{ID: "w"}); !errors.Is(err, ErrEmptyProjectID) {
		t.Errorf("err = %v, want ErrEmptyProjectID", err)
	}
}

// --- End to end over the fake YouTrack ---

func TestInvestigate_DemoEndToEnd(t *testing.T) {
	yt := youtracktest.New(t)
	yt.LoadDemo()
	client := yt.Client(t)

	rep, err := New(client, quiet(), WithBaseURL(yt.URL)).Investigate(context.Background(), youtracktest.DemoProject)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Records) != 1 {
		t.Fatalf("records = %+v, want exactly R1", rep.Records)
	}
	r := rep.Records[0]
	if r.RuleID != youtracktest.DemoRuleR1 || r.WorkflowID != youtracktest.DemoWorkflowA {
		t.Errorf("record = %+v, want R1 from workflow A", r)
	}
	if r.Script() == "" {
		t.Error("expected rule script in evidence")
	}
	wantLinks := []string{yt.URL + "/projects/DEMO?tab=workflow&selected=" + youtracktest.DemoWorkflowA}
	if diff := cmp.Diff(wantLinks, rep.Links()); diff != "" {
		t.Errorf("links (-want +got):\n%s", diff)
	}
}

// R2 must be excluded on either ground alone.
func TestInvestigate_DemoExclusionGroundsIndependently(t *testing.T) {
	tests := []struct {
		name   string
		usages []youtrack.Usage
	}{
		{"wrong project only", []youtrack.Usage{usage("OTHER", true)}},
		{"disabled only", []youtrack.Usage{usage("DEMO", false)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yt := youtracktest.New(t)
			yt.LoadDemo()
			app := yt.Apps[youtracktest.DemoWorkflowB]
			app.PluggableObjects[0].Usages = tt.usages
			yt.Apps[youtracktest.DemoWorkflowB] = app

			got := New(yt.Client(t), quiet()).EnabledRules(context.Background(), youtracktest.DemoProject)
			if diff := cmp.Diff([]string{youtracktest.DemoRuleR1}, ruleIDs(got)); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestInvestigate_DemoWorkflowServerError(t *testing.T) {
	yt := youtracktest.New(t)
	yt.LoadDemo()
	yt.FailPath("/api/admin/apps/"+youtracktest.DemoWorkflowA, http.StatusInternalServerError)

	rep, err := New(yt.Client(t), quiet()).Investigate(context.Background(), youtracktest.DemoProject)
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Records) != 0 {
		t.Errorf("records = %+v, want none", rep.Records)
	}
	failed := rep.Failed()
	if len(failed) != 1 || !youtrack.IsAPIError(failed[0].Err) {
		t.Errorf("failed = %+v, want one API error", failed)
	}
}

// --- Links ---

func TestWorkflowLink(t *testing.T) {
	tests := []struct {
		base, project, wf, want string
	}{
		{"https://acme.youtrack.cloud", "DEMO", "72-1", "https://acme.youtrack.cloud/projects/DEMO?tab=workflow&selected=72-1"},
		{"https://acme.youtrack.cloud/", "DEMO", "72-1", "https://acme.youtrack.cloud/projects/DEMO?tab=workflow&selected=72-1"},
		{"https://yt.example.com/youtrack", "A B", "x&y", "https://yt.example.com/youtrack/projects/A%20B?tab=workflow&selected=x%26y"},
	}
	for _, tt := range tests {
		if got := WorkflowLink(tt.base, tt.project, tt.wf); got != tt.want {
			t.Errorf("WorkflowLink(%q, %q, %q) = %q, want %q", tt.base, tt.project, tt.wf, got, tt.want)
		}
	}
}

func TestReport_LinksDeduplicateWorkflows(t *testing.T) {
	rep := &Report{
		Project: "DEMO",
		BaseURL: "https://yt",
		Records: []evidence.Record{
			{RuleID: "1", WorkflowID: "b"},
			{RuleID: "2", WorkflowID: "a"},
			{RuleID: "3", WorkflowID: "b"},
		},
	}
	want := []string{
		"https://yt/projects/DEMO?tab=workflow&selected=b",
		"https://yt/projects/DEMO?tab=workflow&selected=a",
	}
	if diff := cmp.Diff(want, rep.Links()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if (&Report{Records: rep.Records}).Links() != nil {
		t.Error("expected no links without a base URL")
	}
}

// --- Artifact ---

// BDD: Given a report with one failed workflow, When it is turned into an
// artifact, Then rules and links encode as arrays and the failure is named.
func TestReport_Artifact(t *testing.T) {
	rep := &Report{
		InvestigationID: "inv-1",
		Project:         "DEMO",
		Results: []TaskResult{
			{Workflow: youtrack.Workflow{ID: "w1", Name: "one"}, Err: errors.New("HTTP 500")},
		},
	}
	a := rep.Artifact()
	data, err := a.MarshalIndent()
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{`"rules": []`, `"links": []`, `"investigation_id": "inv-1"`, `"error": "HTTP 500"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "discovery_error") {
		t.Errorf("unexpected discovery_error in:\n%s", out)
	}
}
