package youtrack

import (
	"context"
	"fmt"
	"net/url"
)

// AppScope provides read operations on a single workflow app.
type AppScope struct {
	client *Client
	appID  string
}

// App returns a scope for the workflow with the given id.
func (c *Client) App(appID string) *AppScope {
	return &AppScope{client: c, appID: appID}
}

// Get returns the workflow's rules with their scripts and usages.
func (a *AppScope) Get(ctx context.Context) (*App, error) {
	u := fmt.Sprintf("%s/api/admin/apps/%s?fields=%s",
		a.client.baseURL, url.PathEscape(a.appID), AppFields)

	var app App
	if err := a.client.getJSON(ctx, u, "get workflow app", &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// GetApp is shorthand for c.App(workflowID).Get(ctx).
func (c *Client) GetApp(ctx context.Context, workflowID string) (*App, error) {
	return c.App(workflowID).Get(ctx)
}
