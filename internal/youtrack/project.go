package youtrack

import (
	"context"
	"fmt"
	"net/url"
)

// ProjectScope provides read operations on a single project.
type ProjectScope struct {
	client    *Client
	projectID string
}

// Project returns a scope for the project with the given id or short name.
func (c *Client) Project(projectID string) *ProjectScope {
	return &ProjectScope{client: c, projectID: projectID}
}

// Get returns the project's id and name.
func (p *ProjectScope) Get(ctx context.Context) (*Project, error) {
	u := fmt.Sprintf("%s/api/admin/projects/%s?fields=%s",
		p.client.baseURL, url.PathEscape(p.projectID), ProjectFields)

	var project Project
	if err := p.client.getJSON(ctx, u, "get project", &project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Workflows returns the raw workflow usages attached to the project.
func (p *ProjectScope) Workflows(ctx context.Context) ([]WorkflowUsage, error) {
	u := fmt.Sprintf("%s/api/admin/projects/%s/workflows?fields=%s",
		p.client.baseURL, url.PathEscape(p.projectID), WorkflowFields)

	var usages []WorkflowUsage
	if err := p.client.getJSON(ctx, u, "list project workflows", &usages); err != nil {
		return nil, err
	}
	return usages, nil
}

// LookupProject checks that a project exists. Any HTTP error status means
// the project is absent and yields (nil, nil); only transport and decoding
// failures are returned as errors.
func (c *Client) LookupProject(ctx context.Context, projectID string) (*Project, error) {
	project, err := c.Project(projectID).Get(ctx)
	if err != nil {
		if IsAPIError(err) {
			c.logger.DebugContext(ctx, "project absent", "project_id", projectID, "error", err)
			return nil, nil
		}
		return nil, err
	}
	return project, nil
}

// ListWorkflows returns the workflows attached to a project, in the order
// YouTrack lists them. Usages without a workflow reference are dropped.
func (c *Client) ListWorkflows(ctx context.Context, projectID string) ([]Workflow, error) {
	usages, err := c.Project(projectID).Workflows(ctx)
	if err != nil {
		return nil, err
	}
	workflows := make([]Workflow, 0, len(usages))
	for _, u := range usages {
		if u.Workflow == nil {
			continue
		}
		workflows = append(workflows, *u.Workflow)
	}
	return workflows, nil
}
