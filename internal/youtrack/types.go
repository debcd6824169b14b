package youtrack

// Field selections sent with each request. YouTrack only returns the
// attributes named here, so they must match the structs below.
const (
	ProjectFields  = "id,name"
	WorkflowFields = "workflow(id,name)"
	AppFields      = "pluggableObjects(id,name,description,script(id,script),usages(enabled,configuration(project(shortName))))"
)

// Project is a YouTrack project as returned by the admin projects endpoint.
type Project struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Workflow is a workflow (rule set) reference.
type Workflow struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// WorkflowUsage is one entry of a project's workflows list. Usages that
// point at no workflow are possible and carry a nil Workflow.
type WorkflowUsage struct {
	Workflow *Workflow `json:"workflow,omitempty"`
}

// App is the expanded view of a workflow: its pluggable objects (rules).
type App struct {
	PluggableObjects []PluggableObject `json:"pluggableObjects"`
}

// PluggableObject is one rule inside a workflow.
type PluggableObject struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Script      *Script `json:"script,omitempty"`
	Usages      []Usage `json:"usages"`
}

// Script holds a rule's source text.
type Script struct {
	ID     string  `json:"id"`
	Script *string `json:"script,omitempty"`
}

// Usage binds a rule to a project and says whether it is switched on there.
type Usage struct {
	Enabled       bool           `json:"enabled"`
	Configuration *Configuration `json:"configuration,omitempty"`
}

// Configuration is the project scope of a Usage.
type Configuration struct {
	Project *ProjectShort `json:"project,omitempty"`
}

// ProjectShort identifies a project by its short name (e.g. "DEMO").
type ProjectShort struct {
	ShortName string `json:"shortName"`
}

// ErrorResponse is the standard YouTrack error body.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e ErrorResponse) text() string {
	switch {
	case e.ErrorDescription != "" && e.Error != "":
		return e.Error + ": " + e.ErrorDescription
	case e.ErrorDescription != "":
		return e.ErrorDescription
	default:
		return e.Error
	}
}
