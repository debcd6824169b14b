package investigate

import (
	"context"

	"github.com/yule44ka/workflow-agent/internal/youtrack"
)

// Source provides a project's workflows and each workflow's rules.
// *youtrack.Client satisfies it; tests use in-memory fakes.
type Source interface {
	ListWorkflows(ctx context.Context, projectID string) ([]youtrack.Workflow, error)
	GetApp(ctx context.Context, workflowID string) (*youtrack.App, error)
}

var _ Source = (*youtrack.Client)(nil)
