// Package docs serves the reference texts given to the reasoning step.
// Lookups are best-effort: a missing document yields an empty string.
package docs

import (
	"embed"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultName is the general workflow reference.
const DefaultName = "workflow_context.md"

//go:embed content/*.md
var embedded embed.FS

// Registry resolves documents by name. An override directory, when set, is
// consulted before the built-in texts.
type Registry struct {
	fsys fs.FS
	dir  string
}

// NewRegistry returns a registry over fsys. A nil fsys means the built-in texts.
func NewRegistry(fsys fs.FS) *Registry {
	if fsys == nil {
		sub, err := fs.Sub(embedded, "content")
		if err != nil {
			panic(err)
		}
		fsys = sub
	}
	return &Registry{fsys: fsys}
}

// Default returns the registry over the built-in texts.
func Default() *Registry { return NewRegistry(nil) }

// WithDir returns a copy of r that reads dir first. An empty dir disables it.
func (r *Registry) WithDir(dir string) *Registry {
	return &Registry{fsys: r.fsys, dir: dir}
}

// Lookup returns the named document, or "" when it is absent or unreadable.
// An empty name means DefaultName.
func (r *Registry) Lookup(name string) string {
	name = clean(name)
	if name == "" {
		return ""
	}
	if r.dir != "" {
		if data, err := os.ReadFile(filepath.Join(r.dir, name)); err == nil {
			return string(data)
		}
	}
	data, err := fs.ReadFile(r.fsys, name)
	if err != nil {
		return ""
	}
	return string(data)
}

// Names lists the documents Lookup can return, sorted.
func (r *Registry) Names() []string {
	seen := map[string]bool{}
	add := func(entries []fs.DirEntry) {
		for _, e := range entries {
			if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") && clean(e.Name()) == e.Name() {
				seen[e.Name()] = true
			}
		}
	}
	if entries, err := fs.ReadDir(r.fsys, "."); err == nil {
		add(entries)
	}
	if r.dir != "" {
		if entries, err := os.ReadDir(r.dir); err == nil {
			add(entries)
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// clean maps a requested name to a file name, rejecting paths and any name
// containing "..".
func clean(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultName
	}
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return ""
	}
	return name
}
