// Package youtracktest provides an in-process fake of the YouTrack admin
// endpoints read by workflow-agent.
package youtracktest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/yule44ka/workflow-agent/internal/youtrack"
)

// Token is the bearer token the fake accepts unless Server.Token is changed.
const Token = "perm:test-token"

// Server serves projects, project workflows and apps from in-memory maps.
// Populate the maps before issuing requests.
type Server struct {
	*httptest.Server

	Token     string
	Projects  map[string]youtrack.Project         // keyed by short name
	Workflows map[string][]youtrack.WorkflowUsage // keyed by project short name
	Apps      map[string]youtrack.App             // keyed by workflow id
	mu        sync.Mutex
	requests  []string
	fail      map[string]int
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		Token:     Token,
		Projects:  map[string]youtrack.Project{},
		Workflows: map[string][]youtrack.WorkflowUsage{},
		Apps:      map[string]youtrack.App{},
		fail:      map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Client returns a youtrack.Client pointed at the fake.
func (s *Server) Client(t testing.TB) *youtrack.Client {
	t.Helper()
	c, err := youtrack.New(s.URL, s.Token, youtrack.WithHTTPClient(s.Server.Client()))
	if err != nil {
		t.Fatalf("youtrack.New: %v", err)
	}
	return c
}

// FailPath makes requests for path answer with status instead of data.
// A zero status clears the failure.
func (s *Server) FailPath(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == 0 {
		delete(s.fail, path)
		return
	}
	s.fail[path] = status
}

// Requests returns the request paths seen so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// AppRequests counts requests for workflow details.
func (s *Server) AppRequests() int {
	n := 0
	for _, p := range s.Requests() {
		if strings.HasPrefix(p, "/api/admin/apps/") {
			n++
		}
	}
	return n
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.requests = append(s.requests, r.URL.Path)
	status, failing := s.fail[r.URL.Path]
	s.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+s.Token {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
		return
	}
	if failing {
		writeError(w, status, http.StatusText(status), "injected failure")
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, "/api/admin/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	parts := strings.Split(rest, "/")
	switch {
	case len(parts) == 2 && parts[0] == "projects":
		p, ok := s.Projects[parts[1]]
		if !ok {
			writeError(w, http.StatusNotFound, "Not Found", "Entity with id "+parts[1]+" not found")
			return
		}
		writeJSON(w, p)
	case len(parts) == 3 && parts[0] == "projects" && parts[2] == "workflows":
		if _, ok := s.Projects[parts[1]]; !ok {
			writeError(w, http.StatusNotFound, "Not Found", "Entity with id "+parts[1]+" not found")
			return
		}
		usages := s.Workflows[parts[1]]
		if usages == nil {
			usages = []youtrack.WorkflowUsage{}
		}
		writeJSON(w, usages)
	case len(parts) == 2 && parts[0] == "apps":
		app, ok := s.Apps[parts[1]]
		if !ok {
			writeError(w, http.StatusNotFound, "Not Found", "Entity with id "+parts[1]+" not found")
			return
		}
		writeJSON(w, app)
	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, short, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(youtrack.ErrorResponse{Error: short, ErrorDescription: desc})
}
