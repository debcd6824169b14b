package investigate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yule44ka/workflow-agent/internal/evidence"
	"github.com/yule44ka/workflow-agent/internal/logging"
	"github.com/yule44ka/workflow-agent/internal/youtrack"
)

// ErrEmptyProjectID is returned when an investigation is started without a project.
var ErrEmptyProjectID = errors.New("investigate: project id is required")

// Investigator fans out one task per workflow of a project and merges the
// enabled rules they find.
type Investigator struct {
	source         Source
	logger         *slog.Logger
	parallel       int
	ruleSetTimeout time.Duration
	baseURL        string
}

// Option configures an Investigator.
type Option func(*Investigator)

// WithLogger sets the logger. The default is the "investigate" component logger.
func WithLogger(l *slog.Logger) Option {
	return func(inv *Investigator) {
		if l != nil {
			inv.logger = l
		}
	}
}

// WithParallel caps the number of workflows resolved at once. Zero or a
// negative value means no cap.
func WithParallel(n int) Option {
	return func(inv *Investigator) { inv.parallel = n }
}

// WithRuleSetTimeout bounds each workflow fetch. A task that runs out of time
// counts as failed. Zero disables the per-task bound.
func WithRuleSetTimeout(d time.Duration) Option {
	return func(inv *Investigator) { inv.ruleSetTimeout = d }
}

// WithBaseURL sets the YouTrack address used to build deep links in reports.
func WithBaseURL(u string) Option {
	return func(inv *Investigator) { inv.baseURL = u }
}

// New creates an Investigator reading from src.
func New(src Source, opts ...Option) *Investigator {
	inv := &Investigator{source: src}
	for _, o := range opts {
		o(inv)
	}
	if inv.logger == nil {
		inv.logger = logging.New("investigate")
	}
	return inv
}

// TaskResult is the outcome of resolving a single workflow.
type TaskResult struct {
	Workflow youtrack.Workflow
	Records  []evidence.Record
	Err      error
	Elapsed  time.Duration
}

// Failed reports whether the task contributed nothing because of an error.
func (r TaskResult) Failed() bool { return r.Err != nil }

// RulesForWorkflow resolves a single workflow on its own, outside a full
// investigation. The per-task timeout applies.
func (inv *Investigator) RulesForWorkflow(ctx context.Context, projectID string, wf youtrack.Workflow) ([]evidence.Record, error) {
	if projectID == "" {
		return nil, ErrEmptyProjectID
	}
	res := inv.runTask(ctx, projectID, wf)
	return res.Records, res.Err
}

// EnabledRules returns every rule enabled for projectID across all of the
// project's workflows. Remote failures are absorbed: the result may be empty
// but is never an error.
func (inv *Investigator) EnabledRules(ctx context.Context, projectID string) []evidence.Record {
	rep, err := inv.Investigate(ctx, projectID)
	if err != nil {
		return nil
	}
	return rep.Records
}

// Investigate lists the project's workflows, resolves each concurrently,
// and merges the enabled rules in discovery order. The only error returned
// is ErrEmptyProjectID.
func (inv *Investigator) Investigate(ctx context.Context, projectID string) (*Report, error) {
	if projectID == "" {
		return nil, ErrEmptyProjectID
	}

	rep := &Report{
		InvestigationID: uuid.NewString(),
		Project:         projectID,
		BaseURL:         inv.baseURL,
	}
	logger := inv.logger.With("investigation_id", rep.InvestigationID, "project_id", projectID)
	start := time.Now()

	workflows, err := inv.source.ListWorkflows(ctx, projectID)
	if err != nil {
		logger.Warn("workflow discovery failed", "error", err)
		rep.DiscoveryError = err
		return rep, nil
	}
	rep.Workflows = workflows
	if len(workflows) == 0 {
		logger.Info("no workflows attached")
		return rep, nil
	}

	logger.Info("resolving workflows", "workflows", len(workflows), "parallel", inv.parallel)

	results := make([]TaskResult, len(workflows))
	g, gctx := errgroup.WithContext(ctx)
	if inv.parallel > 0 {
		g.SetLimit(inv.parallel)
	}
	for i, wf := range workflows {
		g.Go(func() error {
			results[i] = inv.runTask(gctx, projectID, wf)
			return nil
		})
	}
	_ = g.Wait() // failures are carried in TaskResult.Err

	rep.Results = results
	for _, r := range results {
		if r.Failed() {
			logger.Warn("workflow skipped",
				"workflow_id", r.Workflow.ID, "workflow", r.Workflow.Name,
				"elapsed", r.Elapsed, "error", r.Err)
			continue
		}
		rep.Records = append(rep.Records, r.Records...)
	}

	logger.Info("investigation complete",
		"records", len(rep.Records), "failed", len(rep.Failed()), "elapsed", time.Since(start))
	return rep, nil
}

// runTask resolves one workflow, bounding it by the per-task timeout and
// turning a panic into a failed result.
func (inv *Investigator) runTask(ctx context.Context, projectID string, wf youtrack.Workflow) (res TaskResult) {
	res.Workflow = wf
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Records = nil
			res.Err = fmt.Errorf("resolve workflow %s (%s): panic: %v", wf.ID, wf.Name, p)
		}
		res.Elapsed = time.Since(start)
	}()

	if inv.ruleSetTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.ruleSetTimeout)
		defer cancel()
	}

	records, err := inv.ResolveEnabledRules(ctx, projectID, wf)
	if err == nil && ctx.Err() != nil {
		err = fmt.Errorf("resolve workflow %s (%s): %w", wf.ID, wf.Name, ctx.Err())
	}
	if err != nil {
		res.Err = err
		return res
	}
	res.Records = records
	return res
}
