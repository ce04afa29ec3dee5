// Package config builds the workflow registry for one invocation from
// construction-time options and an optional configuration document, applying
// glob discovery of snakefiles and snakeparse files.
package config

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/nh13/snakeparse/pkg/capability"
	"github.com/nh13/snakeparse/pkg/workflow"
)

// Options are the construction-time settings, normally taken from the
// router's own command line options. Values present in the configuration
// document take precedence.
type Options struct {
	ConfigPath           string
	Prog                 string
	Snakemake            string
	NameTransform        string
	ParentDirIsGroupName bool
	SnakefileGlobs       []string
	SnakeparseGlobs      []string
}

// Config is the merged configuration: display name, engine executable, and
// the fully built workflow registry.
type Config struct {
	Prog      string
	Snakemake string
	Registry  *workflow.Registry
	Resolver  *capability.Resolver
}

// New merges the options with the configuration document (if any), expands
// the globs, registers the discovered and declared workflows, and back-fills
// group/description from each workflow's parser where unset.
func New(opts Options) (*Config, error) {
	doc := &document{}
	if opts.ConfigPath != "" {
		loaded, err := loadDocument(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		doc = loaded
	}

	cfg := &Config{Prog: opts.Prog, Snakemake: opts.Snakemake}
	if doc.Prog != nil {
		cfg.Prog = *doc.Prog
	}
	if cfg.Prog == "" {
		cfg.Prog = "snakeparse"
	}
	if doc.Snakemake != nil {
		cfg.Snakemake = *doc.Snakemake
	}

	transformKey := opts.NameTransform
	if doc.NameTransform != nil {
		transformKey = *doc.NameTransform
	}
	transform, err := workflow.TransformFromKey(transformKey)
	if err != nil {
		return nil, err
	}

	parentDirIsGroup := opts.ParentDirIsGroupName
	if doc.ParentDirIsGroupName.present {
		parentDirIsGroup = doc.ParentDirIsGroupName.value
	}

	// Snakeparse globs are expanded before snakefile globs so discovered
	// snakefiles can find their parsers among the globbed paths.
	searchPaths, err := expandGlobs(append(opts.SnakeparseGlobs, doc.SnakeparseGlobs...))
	if err != nil {
		return nil, err
	}
	cfg.Resolver = &capability.Resolver{SearchPaths: searchPaths}

	reg := workflow.NewRegistry()
	reg.NameTransform = transform
	reg.ParentDirIsGroup = parentDirIsGroup
	reg.FindSnakeparse = cfg.Resolver.Find
	cfg.Registry = reg

	snakefiles, err := expandGlobs(append(opts.SnakefileGlobs, doc.SnakefileGlobs...))
	if err != nil {
		return nil, err
	}
	for _, snakefile := range snakefiles {
		if _, err := reg.RegisterSnakefile(snakefile); err != nil {
			return nil, err
		}
	}

	if err := applyWorkflowDocs(reg, cfg.Resolver, doc, parentDirIsGroup); err != nil {
		return nil, err
	}

	for _, wf := range reg.All() {
		if !capability.ValidExtension(wf.Snakeparse) {
			return nil, fmt.Errorf(
				"snakeparse file %q for workflow %q is not a .go or .yaml file",
				wf.Snakeparse, wf.Name)
		}
	}

	if err := backfillMetadata(reg); err != nil {
		return nil, err
	}

	for name, description := range doc.Groups {
		reg.AddGroup(name, description)
	}
	return cfg, nil
}

// applyWorkflowDocs registers the workflows declared in the configuration
// document. A declared workflow overrides a same-named discovered one,
// falling back to the existing entry's fields where the document is silent.
func applyWorkflowDocs(reg *workflow.Registry, resolver *capability.Resolver, doc *document, parentDirIsGroup bool) error {
	names := make([]string, 0, len(doc.Workflows))
	for name := range doc.Workflows {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		wd := doc.Workflows[name]
		existing, _ := reg.Lookup(name)

		snakefile := wd.Snakefile
		if snakefile == "" && existing != nil {
			snakefile = existing.Snakefile
		}
		if snakefile == "" {
			return fmt.Errorf("no snakefile given for workflow %q", name)
		}

		snakeparse := wd.Snakeparse
		if snakeparse == "" && existing != nil {
			snakeparse = existing.Snakeparse
		}
		if snakeparse == "" {
			found, err := resolver.Find(snakefile)
			if err != nil {
				return err
			}
			snakeparse = found
		}

		group := wd.Group
		if group == "" && existing != nil {
			group = existing.Group
		}
		if group == "" && parentDirIsGroup {
			group = filepath.Base(filepath.Dir(snakefile))
		}

		description := wd.Description
		if description == "" && existing != nil {
			description = existing.Description
		}

		wf := &workflow.Workflow{
			Name:        name,
			Snakefile:   snakefile,
			Snakeparse:  snakeparse,
			Group:       group,
			Description: description,
		}
		if err := reg.Override(wf); err != nil {
			return err
		}
	}
	return nil
}

// backfillMetadata loads the parser for every workflow still missing a group
// or description and copies the parser's values in.
func backfillMetadata(reg *workflow.Registry) error {
	for _, wf := range reg.All() {
		if wf.Group != "" && wf.Description != "" {
			continue
		}
		p, err := capability.Load(wf.Snakeparse)
		if err != nil {
			return err
		}
		if wf.Group == "" && p.Group() != "" {
			wf.Group = p.Group()
			reg.AddGroup(wf.Group, "")
		}
		if wf.Description == "" {
			wf.Description = p.Description()
		}
	}
	return nil
}

// expandGlobs expands each pattern; a pattern matching nothing is an error
// naming the pattern.
func expandGlobs(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no paths found from glob %q", pattern)
		}
		paths = append(paths, matches...)
	}
	return paths, nil
}
