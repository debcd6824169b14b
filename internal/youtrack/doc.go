// Package youtrack provides a read-only, scope-based client for the YouTrack
// admin REST API, limited to what workflow investigation needs.
//
// Usage:
//
//	client, err := youtrack.New("https://example.youtrack.cloud", token, youtrack.WithTimeout(30*time.Second))
//	project, err := client.Project("DEMO").Get(ctx)
//	usages, err := client.Project("DEMO").Workflows(ctx)
//	app, err := client.App("72-1").Get(ctx)
//
// The convenience methods LookupProject, ListWorkflows and GetApp wrap the
// scopes with the absence and unwrapping rules the investigator relies on.
package youtrack
