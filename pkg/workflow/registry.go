package workflow

import (
	"path/filepath"
	"sort"
	"strings"
)

// SnakeparseFinder locates the snakeparse file for a snakefile. The registry
// does not know how snakeparse files are discovered; the capability layer
// supplies this when workflows are registered from a bare snakefile path.
type SnakeparseFinder func(snakefile string) (string, error)

// Registry maps workflow names to workflows, plus group names to their
// display descriptions. Names are unique; ordering is applied only when
// listing for display.
type Registry struct {
	NameTransform    Transform
	ParentDirIsGroup bool
	FindSnakeparse   SnakeparseFinder

	byName map[string]*Workflow
	groups map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Workflow),
		groups: make(map[string]string),
	}
}

// Register adds the workflow. The workflow's files must exist and its name
// must not already be taken.
func (r *Registry) Register(wf *Workflow) error {
	if _, ok := r.byName[wf.Name]; ok {
		return &DuplicateNameError{Name: wf.Name}
	}
	if err := wf.CheckFiles(); err != nil {
		return err
	}
	r.byName[wf.Name] = wf
	if wf.Group != "" {
		r.AddGroup(wf.Group, "")
	}
	return nil
}

// RegisterSnakefile adds a new workflow for the given snakefile, deriving its
// name via the configured transform and locating its snakeparse file via the
// configured finder.
func (r *Registry) RegisterSnakefile(snakefile string) (*Workflow, error) {
	name := r.DeriveName(snakefile)
	if _, ok := r.byName[name]; ok {
		return nil, &DuplicateNameError{Name: name}
	}
	snakeparse, err := r.FindSnakeparse(snakefile)
	if err != nil {
		return nil, err
	}
	group := ""
	if r.ParentDirIsGroup {
		group = filepath.Base(filepath.Dir(snakefile))
	}
	wf := &Workflow{
		Name:       name,
		Snakefile:  snakefile,
		Snakeparse: snakeparse,
		Group:      group,
	}
	if err := r.Register(wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// Override adds the workflow, replacing any existing workflow with the same
// name. Configuration documents use this: their entries take precedence over
// workflows discovered earlier.
func (r *Registry) Override(wf *Workflow) error {
	if err := wf.CheckFiles(); err != nil {
		return err
	}
	r.byName[wf.Name] = wf
	if wf.Group != "" {
		r.AddGroup(wf.Group, "")
	}
	return nil
}

// DeriveName returns the canonical workflow name for a snakefile path: the
// base name without its extension, run through the name transform if set.
func (r *Registry) DeriveName(snakefile string) string {
	base := filepath.Base(snakefile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if r.NameTransform != nil {
		name = r.NameTransform(name)
	}
	return name
}

func (r *Registry) Lookup(name string) (*Workflow, bool) {
	wf, ok := r.byName[name]
	return wf, ok
}

func (r *Registry) Len() int {
	return len(r.byName)
}

// All returns the workflows ordered by (group, name). Ungrouped workflows
// sort before any named group.
func (r *Registry) All() []*Workflow {
	wfs := make([]*Workflow, 0, len(r.byName))
	for _, wf := range r.byName {
		wfs = append(wfs, wf)
	}
	sort.Slice(wfs, func(i, j int) bool {
		if wfs[i].Group != wfs[j].Group {
			return wfs[i].Group < wfs[j].Group
		}
		return wfs[i].Name < wfs[j].Name
	})
	return wfs
}

// AddGroup records a group name with its description. An empty description
// never overwrites one already recorded.
func (r *Registry) AddGroup(name, description string) {
	if _, ok := r.groups[name]; ok && description == "" {
		return
	}
	r.groups[name] = description
}

// GroupDescription returns the description recorded for a group.
func (r *Registry) GroupDescription(name string) string {
	return r.groups[name]
}

// GroupNames returns all recorded group names in sorted order.
func (r *Registry) GroupNames() []string {
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
