// Package parser defines the workflow-side argument parser: the object that
// validates the tokens routed to a workflow before Snakemake ever runs, and
// that the snakefile re-uses to read the same arguments back from the args
// file.
package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// FromFilePrefix marks a token whose remainder is a path to a file holding
// additional tokens, one per line.
const FromFilePrefix = "@"

// ArgsFileConfigKey is the key injected into Snakemake's --config channel,
// holding the path to the args file for the selected workflow.
const ArgsFileConfigKey = "snakeparse_args_file"

// ErrHelpRequested is returned by ParseArgs when the token stream asks for
// help rather than supplying arguments.
var ErrHelpRequested = errors.New("help requested")

// Args holds the parsed workflow arguments keyed by option name.
type Args map[string]any

// Parser validates a workflow's argument list and reports its display
// metadata.
type Parser interface {
	// ParseArgs validates the tokens. It returns ErrHelpRequested when the
	// stream requests help and a *ValidationError when the arguments violate
	// the workflow's grammar.
	ParseArgs(tokens []string) (Args, error)

	// ParseArgsFile validates tokens read from a newline-delimited args file.
	ParseArgsFile(path string) (Args, error)

	// Help renders the workflow-specific help text.
	Help() string

	Group() string
	Description() string
}

// ValidationError reports a workflow argument list that violates the
// workflow's grammar.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ReadArgsFile reads a newline-delimited args file into tokens. A trailing
// newline does not produce an empty token.
func ReadArgsFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading args file %q: %w", path, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// WriteArgsFile writes tokens to path, one per line.
func WriteArgsFile(path string, tokens []string) error {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(tok)
		b.WriteString("\n")
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing args file %q: %w", path, err)
	}
	return nil
}

// expandFromFiles replaces every @file token with the tokens read from that
// file. Expansion is not recursive.
func expandFromFiles(tokens []string) ([]string, error) {
	expanded := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if !strings.HasPrefix(tok, FromFilePrefix) {
			expanded = append(expanded, tok)
			continue
		}
		fileTokens, err := ReadArgsFile(strings.TrimPrefix(tok, FromFilePrefix))
		if err != nil {
			return nil, validationErrorf("expanding %s: %v", tok, err)
		}
		expanded = append(expanded, fileTokens...)
	}
	return expanded, nil
}
