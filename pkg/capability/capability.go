// Package capability resolves the parser for a workflow from its snakeparse
// file. A snakeparse file is either a Go source file evaluated at runtime,
// declaring exactly one parser source, or a YAML file holding the parser
// spec directly.
package capability

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Snakeparse file extensions. A snakefile's parser definition lives beside
// it with the snakefile's extension replaced by one of these, the Go form
// first.
const (
	GoExtension   = "_snakeparser.go"
	YAMLExtension = "_snakeparser.yaml"
	YMLExtension  = "_snakeparser.yml"
)

// ResolutionError reports a snakeparse file that declared zero or multiple
// parser sources where exactly one is required.
type ResolutionError struct {
	Path   string
	Funcs  int
	Values int
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf(
		"found %d %s functions and %d %s values in %s; expected exactly one parser source",
		e.Funcs, parserFuncName, e.Values, parserSpecName, e.Path)
}

// Resolver locates snakeparse files for snakefiles. SearchPaths holds the
// files gathered from the configured snakeparse globs, checked when no
// sibling snakeparse file exists.
type Resolver struct {
	SearchPaths []string
}

// Find returns the snakeparse file for the given snakefile. It first looks
// beside the snakefile for the snakefile's stem with each snakeparse
// extension, then matches stems against the search paths.
func (r *Resolver) Find(snakefile string) (string, error) {
	stem := stemOf(snakefile)
	base := strings.TrimSuffix(snakefile, filepath.Ext(snakefile))

	var tried []string
	for _, ext := range []string{GoExtension, YAMLExtension, YMLExtension} {
		candidate := base + ext
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		tried = append(tried, candidate)
	}

	for _, path := range r.SearchPaths {
		if searchStem(path) == stem {
			return path, nil
		}
		tried = append(tried, path)
	}

	return "", fmt.Errorf("could not find snakeparse file for %s, tried:\n    %s",
		snakefile, strings.Join(tried, "\n    "))
}

// searchStem strips the snakeparse extension (or a bare source extension)
// from a search path's base name. Paths with other extensions cannot reach
// here; config validates them at construction time.
func searchStem(path string) string {
	name := filepath.Base(path)
	for _, ext := range []string{GoExtension, YAMLExtension, YMLExtension, ".go", ".yaml", ".yml"} {
		if strings.HasSuffix(name, ext) {
			return strings.TrimSuffix(name, ext)
		}
	}
	panic(fmt.Sprintf("bug: snakeparse search path without a recognized extension: %s", path))
}

func stemOf(snakefile string) string {
	base := filepath.Base(snakefile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ValidExtension reports whether path is an acceptable snakeparse file.
func ValidExtension(path string) bool {
	for _, ext := range []string{".go", ".yaml", ".yml"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
