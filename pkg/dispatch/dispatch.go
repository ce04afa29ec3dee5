// Package dispatch decides which workflow an invocation targets and how the
// remaining tokens split between Snakemake and the workflow's own parser.
package dispatch

import (
	"github.com/nh13/snakeparse/pkg/workflow"
)

// Separator is the reserved literal partitioning Snakemake-directed tokens
// from workflow-directed tokens when present.
const Separator = "--"

// Snakefile option forms recognized before the separator.
var snakefileOptions = []string{"-s", "--snakefile"}

// Resolution is the outcome of dispatch: the chosen workflow and the two
// disjoint, order-preserving slices of the input stream around it. The
// workflow name token itself, when present, belongs to neither slice.
type Resolution struct {
	Workflow       *workflow.Workflow
	EngineTokens   []string
	WorkflowTokens []string

	// SnakefileExplicit records that the stream already carries a
	// -s/--snakefile option, so the orchestrator must not add one.
	SnakefileExplicit bool
}

// Resolve determines the workflow to run and the token split for the stream
// remaining after the router's own options.
//
// Resolution order: an explicit -s/--snakefile before any separator
// registers that snakefile ad hoc and selects it; with a separator, a
// registered name immediately after it wins, else a sole registered workflow
// is implicit; without a separator, the earliest token matching a registered
// name wins.
func Resolve(tokens []string, reg *workflow.Registry) (*Resolution, error) {
	sep := indexOf(tokens, Separator)
	end := len(tokens)
	if sep >= 0 {
		end = sep
	}

	res, err := resolveSnakefileOption(tokens, end, reg)
	if err != nil {
		return nil, err
	}

	if reg.Len() == 0 {
		return nil, &EmptyRegistryError{}
	}
	if res != nil {
		return res, nil
	}

	if sep >= 0 {
		return resolveWithSeparator(tokens, sep, reg)
	}
	return resolveByScan(tokens, reg)
}

// resolveSnakefileOption implements the explicit snakefile rule: the first
// -s/--snakefile with a value before the separator registers that snakefile
// (unless a workflow with the derived name already exists) and selects it.
// The split is computed by locating the derived name as a literal token.
func resolveSnakefileOption(tokens []string, end int, reg *workflow.Registry) (*Resolution, error) {
	snakefile := ""
	for _, option := range snakefileOptions {
		idx := indexOf(tokens[:end], option)
		if idx >= 0 && idx+1 < end {
			snakefile = tokens[idx+1]
			break
		}
	}
	if snakefile == "" {
		return nil, nil
	}

	wf, ok := reg.Lookup(reg.DeriveName(snakefile))
	if !ok {
		registered, err := reg.RegisterSnakefile(snakefile)
		if err != nil {
			return nil, err
		}
		wf = registered
	}

	nameIdx := indexOf(tokens, wf.Name)
	if nameIdx < 0 {
		return nil, &WorkflowNotFoundError{Name: wf.Name}
	}
	return &Resolution{
		Workflow:          wf,
		EngineTokens:      tokens[:nameIdx],
		WorkflowTokens:    tokens[nameIdx+1:],
		SnakefileExplicit: true,
	}, nil
}

// resolveWithSeparator handles streams containing the separator. A
// registered name immediately after the separator selects that workflow and
// consumes the name token, regardless of how many workflows are registered.
// Otherwise a sole registered workflow is selected implicitly with nothing
// consumed after the separator.
func resolveWithSeparator(tokens []string, sep int, reg *workflow.Registry) (*Resolution, error) {
	if sep+1 < len(tokens) {
		if wf, ok := reg.Lookup(tokens[sep+1]); ok {
			return &Resolution{
				Workflow:       wf,
				EngineTokens:   tokens[:sep],
				WorkflowTokens: tokens[sep+2:],
			}, nil
		}
	}
	if reg.Len() == 1 {
		return &Resolution{
			Workflow:       reg.All()[0],
			EngineTokens:   tokens[:sep],
			WorkflowTokens: tokens[sep+1:],
		}, nil
	}
	return nil, &NoWorkflowSpecifiedError{}
}

// resolveByScan handles separator-free streams: the earliest token whose
// literal value matches any registered workflow name wins, by stream
// position.
func resolveByScan(tokens []string, reg *workflow.Registry) (*Resolution, error) {
	for i, tok := range tokens {
		if wf, ok := reg.Lookup(tok); ok {
			return &Resolution{
				Workflow:       wf,
				EngineTokens:   tokens[:i],
				WorkflowTokens: tokens[i+1:],
			}, nil
		}
	}
	return nil, &NoWorkflowSpecifiedError{}
}

func indexOf(tokens []string, value string) int {
	for i, tok := range tokens {
		if tok == value {
			return i
		}
	}
	return -1
}
