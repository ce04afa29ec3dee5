package argbound

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// RouterOptions are the options snakeparse itself consumes before anything is
// handed to Snakemake or a workflow.
type RouterOptions struct {
	ConfigPath           string
	SnakefileGlobs       []string
	SnakeparseGlobs      []string
	Prog                 string
	Snakemake            string
	NameTransform        string
	ParentDirIsGroupName bool
	ExtraHelp            bool
}

// Grammar is the router's own option grammar. Validate classifies a prefix of
// the token stream against the declared flags; the most recent successful
// validation determines Options.
type Grammar struct {
	opts RouterOptions
}

func NewGrammar() *Grammar {
	g := &Grammar{}
	_, opts := newFlagSet()
	g.opts = *opts
	return g
}

// Options returns the options parsed by the last successful Validate call,
// or the defaults if none succeeded.
func (g *Grammar) Options() RouterOptions {
	return g.opts
}

// FlagUsage renders the flag help block for usage messages.
func (g *Grammar) FlagUsage() string {
	fs, _ := newFlagSet()
	return fs.FlagUsages()
}

// Validate walks the prefix token by token. Tokens that are not declared
// long flags (positionals, short flags, the bare separator, unknown flags)
// start the leftover. A declared flag at the end of the prefix with its value
// missing is an incomplete-prefix failure, not leftover: the value may arrive
// when the caller grows the prefix.
func (g *Grammar) Validate(tokens []string) ([]string, error) {
	fs, opts := newFlagSet()
	end := 0
	for end < len(tokens) {
		tok := tokens[end]
		if !strings.HasPrefix(tok, "--") || tok == "--" {
			break
		}
		name := strings.TrimPrefix(tok, "--")
		name, hasInlineValue := splitInlineValue(name)
		flag := fs.Lookup(name)
		if flag == nil {
			break
		}
		if hasInlineValue || flag.NoOptDefVal != "" {
			end++
			continue
		}
		if end+1 >= len(tokens) {
			return nil, fmt.Errorf("flag --%s requires a value", name)
		}
		end += 2
	}
	if err := fs.Parse(tokens[:end]); err != nil {
		return nil, fmt.Errorf("parsing snakeparse options: %w", err)
	}
	g.opts = *opts
	return tokens[end:], nil
}

func splitInlineValue(name string) (string, bool) {
	if i := strings.Index(name, "="); i >= 0 {
		return name[:i], true
	}
	return name, false
}

func newFlagSet() (*pflag.FlagSet, *RouterOptions) {
	opts := &RouterOptions{}
	fs := pflag.NewFlagSet("snakeparse", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.ConfigPath, "config", "",
		"The path to the snakeparse configuration file (can be JSON, YAML, or HOCON).")
	fs.StringArrayVar(&opts.SnakefileGlobs, "snakefile-globs", nil,
		"Glob specifying where Snakemake (snakefile) files can be found; may be repeated.")
	fs.StringArrayVar(&opts.SnakeparseGlobs, "snakeparse-globs", nil,
		"Glob specifying where snakeparse files can be found; may be repeated.")
	fs.StringVar(&opts.Prog, "prog", "snakeparse",
		"The name of the tool-chain to use on the command line.")
	fs.StringVar(&opts.Snakemake, "snakemake", "",
		"The path to the snakemake executable, otherwise it should be on the system path.")
	fs.StringVar(&opts.NameTransform, "name-transform", "snake_to_camel",
		"Transform workflow names from snake case to camel case (\"snake_to_camel\") or vice versa (\"camel_to_snake\").")
	fs.BoolVar(&opts.ParentDirIsGroupName, "parent-dir-is-group-name", false,
		"Use the parent directory of the snakefile as the workflow group name when no group is configured.")
	fs.BoolVar(&opts.ExtraHelp, "extra-help", false,
		"Produce help with extra debugging information.")
	return fs, opts
}
