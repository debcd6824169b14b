package investigate

import (
	"net/url"
	"strings"
)

// WorkflowLink returns the YouTrack page that shows a workflow selected in
// a project's settings: {base}/projects/{project}?tab=workflow&selected={workflow}.
func WorkflowLink(baseURL, projectID, workflowID string) string {
	q := url.Values{}
	q.Set("tab", "workflow")
	q.Set("selected", workflowID)
	return strings.TrimRight(baseURL, "/") + "/projects/" + url.PathEscape(projectID) + "?" + encodeOrdered(q, "tab", "selected")
}

// encodeOrdered encodes q keeping the given key order, which url.Values.Encode
// would sort alphabetically.
func encodeOrdered(q url.Values, keys ...string) string {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(q.Get(k)))
	}
	return strings.Join(parts, "&")
}
