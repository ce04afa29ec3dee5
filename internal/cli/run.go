// Package cli orchestrates one snakeparse invocation: split off the router's
// own options, build the workflow registry, resolve the workflow and token
// ranges, validate the workflow arguments, and hand off to Snakemake.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nh13/snakeparse/pkg/argbound"
	"github.com/nh13/snakeparse/pkg/capability"
	"github.com/nh13/snakeparse/pkg/config"
	"github.com/nh13/snakeparse/pkg/dispatch"
	"github.com/nh13/snakeparse/pkg/parser"
)

// Version of the snakeparse tool-chain.
const Version = "0.2.0"

// usageExitCode is returned for every usage, validation, and dispatch
// failure; Snakemake's own exit code is propagated otherwise.
const usageExitCode = 2

// App runs one invocation. RunEngine is replaceable for tests; by default it
// spawns Snakemake with inherited stdio and blocks until it exits.
type App struct {
	Logger    zerolog.Logger
	Stderr    io.Writer
	RunEngine func(name string, args []string) (int, error)
}

func New(logger zerolog.Logger) *App {
	return &App{
		Logger:    logger,
		Stderr:    os.Stderr,
		RunEngine: runSnakemake,
	}
}

// Run routes the raw argument list and returns the process exit code.
func (a *App) Run(args []string) int {
	grammar := argbound.NewGrammar()
	boundary := argbound.DetectBoundary(args, grammar)
	remaining := []string{}
	if boundary < len(args) {
		remaining = args[boundary:]
	}
	opts := grammar.Options()
	if opts.ExtraHelp {
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}
	a.Logger.Debug().Int("boundary", boundary).Strs("remaining", remaining).
		Msg("resolved snakeparse option boundary")

	if wantsHelp(args, remaining) {
		cfg, err := a.buildConfig(opts)
		a.usage(grammar, cfg, opts, errMessage(err))
		return usageExitCode
	}

	cfg, err := a.buildConfig(opts)
	if err != nil {
		a.usage(grammar, nil, opts, err.Error())
		return usageExitCode
	}

	res, err := dispatch.Resolve(remaining, cfg.Registry)
	if err != nil {
		a.usage(grammar, cfg, opts, err.Error())
		return usageExitCode
	}
	a.Logger.Debug().Str("workflow", res.Workflow.Name).
		Strs("snakemake_args", res.EngineTokens).
		Strs("workflow_args", res.WorkflowTokens).
		Msg("resolved workflow dispatch")

	argsFile := filepath.Join(os.TempDir(), fmt.Sprintf("snakeparse-%s.args.txt", uuid.New().String()))
	if err := parser.WriteArgsFile(argsFile, res.WorkflowTokens); err != nil {
		a.usage(grammar, cfg, opts, err.Error())
		return usageExitCode
	}
	defer func() {
		if err := os.Remove(argsFile); err != nil {
			a.Logger.Warn().Err(err).Msgf("Could not remove args file %q", argsFile)
		}
	}()

	p, err := capability.Load(res.Workflow.Snakeparse)
	if err != nil {
		a.usage(grammar, cfg, opts, err.Error())
		return usageExitCode
	}

	if _, err := p.ParseArgsFile(argsFile); err != nil {
		message := ""
		if !errors.Is(err, parser.ErrHelpRequested) {
			message = err.Error()
		}
		a.workflowUsage(grammar, cfg, opts, res, p, message)
		return usageExitCode
	}

	engineArgs := append([]string{}, res.EngineTokens...)
	engineArgs = append(engineArgs, "--config", parser.ArgsFileConfigKey+"="+argsFile)
	if !res.SnakefileExplicit {
		engineArgs = append(engineArgs, "--snakefile", absPath(res.Workflow.Snakefile))
	}

	snakemake := cfg.Snakemake
	if snakemake == "" {
		snakemake = "snakemake"
	}
	a.Logger.Debug().Str("snakemake", snakemake).Strs("args", engineArgs).
		Msg("invoking snakemake")

	code, err := a.RunEngine(snakemake, engineArgs)
	if err != nil {
		a.Logger.Error().Err(err).Msgf("Failed to run snakemake %q", snakemake)
		return 1
	}
	return code
}

// wantsHelp reports the help short-circuit: the only token left for
// dispatch asks for help, or the whole invocation was a single token.
func wantsHelp(args, remaining []string) bool {
	if len(remaining) == 1 && (remaining[0] == "--help" || remaining[0] == "-h") {
		return true
	}
	return len(args) == 1
}

func (a *App) buildConfig(opts argbound.RouterOptions) (*config.Config, error) {
	return config.New(config.Options{
		ConfigPath:           opts.ConfigPath,
		Prog:                 opts.Prog,
		Snakemake:            opts.Snakemake,
		NameTransform:        opts.NameTransform,
		ParentDirIsGroupName: opts.ParentDirIsGroupName,
		SnakefileGlobs:       opts.SnakefileGlobs,
		SnakeparseGlobs:      opts.SnakeparseGlobs,
	})
}

func (a *App) renderer(grammar *argbound.Grammar, cfg *config.Config, opts argbound.RouterOptions) *usageRenderer {
	prog := opts.Prog
	if cfg != nil && cfg.Prog != "" {
		prog = cfg.Prog
	}
	if prog == "" {
		prog = "snakeparse"
	}
	u := &usageRenderer{
		out:       a.Stderr,
		prog:      prog,
		flagUsage: grammar.FlagUsage(),
		extraHelp: opts.ExtraHelp,
	}
	if cfg != nil {
		u.registry = cfg.Registry
	}
	return u
}

func (a *App) usage(grammar *argbound.Grammar, cfg *config.Config, opts argbound.RouterOptions, message string) {
	a.renderer(grammar, cfg, opts).render(message)
}

func (a *App) workflowUsage(grammar *argbound.Grammar, cfg *config.Config, opts argbound.RouterOptions,
	res *dispatch.Resolution, p parser.Parser, message string) {
	a.renderer(grammar, cfg, opts).renderWorkflowHelp(res.Workflow, p, message)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// runSnakemake spawns the engine with inherited stdio and extracts its exit
// code. A non-exit error (e.g. the executable is missing) is returned as is.
func runSnakemake(name string, args []string) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}
