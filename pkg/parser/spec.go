package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Option types accepted in a parser spec.
const (
	TypeString  = "string"
	TypeInt     = "int"
	TypeFloat   = "float"
	TypeBool    = "bool"
	TypeStrings = "strings"
)

// Spec is the declarative description of a workflow's argument grammar,
// produced by the workflow's snakeparse file.
type Spec struct {
	Group       string       `yaml:"group,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Options     []OptionSpec `yaml:"options"`
}

// OptionSpec declares one workflow option.
type OptionSpec struct {
	Name     string   `yaml:"name"`
	Short    string   `yaml:"short,omitempty"`
	Type     string   `yaml:"type,omitempty"`
	Help     string   `yaml:"help,omitempty"`
	Required bool     `yaml:"required,omitempty"`
	Default  any      `yaml:"default,omitempty"`
	Choices  []string `yaml:"choices,omitempty"`
}

// Validate checks the spec for structural problems: missing or duplicate
// option names, unknown types, choices on a non-string option.
func (s *Spec) Validate() error {
	seen := make(map[string]bool)
	for i, opt := range s.Options {
		if opt.Name == "" {
			return fmt.Errorf("option %d is missing 'name'", i)
		}
		if seen[opt.Name] {
			return fmt.Errorf("duplicate option name: %q", opt.Name)
		}
		seen[opt.Name] = true
		switch opt.Type {
		case "", TypeString, TypeInt, TypeFloat, TypeBool, TypeStrings:
		default:
			return fmt.Errorf("option %q has invalid type %q", opt.Name, opt.Type)
		}
		if len(opt.Choices) > 0 && opt.Type != "" && opt.Type != TypeString {
			return fmt.Errorf("option %q: choices require a string option", opt.Name)
		}
		if len(opt.Short) > 1 {
			return fmt.Errorf("option %q: short form %q must be a single character", opt.Name, opt.Short)
		}
	}
	return nil
}

// SpecParser validates workflow arguments against a declarative Spec using a
// pflag flag set built on demand.
type SpecParser struct {
	spec Spec
}

// NewSpecParser builds a parser for the spec, validating it first.
func NewSpecParser(spec Spec) (*SpecParser, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid parser spec: %w", err)
	}
	return &SpecParser{spec: spec}, nil
}

func (p *SpecParser) Group() string       { return p.spec.Group }
func (p *SpecParser) Description() string { return p.spec.Description }

func (p *SpecParser) ParseArgs(tokens []string) (Args, error) {
	tokens, err := expandFromFiles(tokens)
	if err != nil {
		return nil, err
	}

	fs, getters, err := p.flagSet()
	if err != nil {
		return nil, err
	}
	if err := fs.Parse(tokens); err != nil {
		if err == pflag.ErrHelp {
			return nil, ErrHelpRequested
		}
		return nil, &ValidationError{Message: err.Error()}
	}
	if rest := fs.Args(); len(rest) > 0 {
		return nil, validationErrorf("unrecognized arguments: %s", strings.Join(rest, " "))
	}

	args := make(Args, len(p.spec.Options))
	for _, opt := range p.spec.Options {
		if opt.Required && !fs.Changed(opt.Name) {
			return nil, validationErrorf("the following arguments are required: --%s", opt.Name)
		}
		value := getters[opt.Name]()
		if len(opt.Choices) > 0 && fs.Changed(opt.Name) {
			if !containsString(opt.Choices, value.(string)) {
				return nil, validationErrorf("argument --%s: invalid choice %q (choose from %s)",
					opt.Name, value, strings.Join(opt.Choices, ", "))
			}
		}
		args[opt.Name] = value
	}
	return args, nil
}

func (p *SpecParser) ParseArgsFile(path string) (Args, error) {
	tokens, err := ReadArgsFile(path)
	if err != nil {
		return nil, err
	}
	return p.ParseArgs(tokens)
}

// Help renders the workflow's option help. Nothing is printed as a side
// effect of building a parser; callers decide when this text appears.
func (p *SpecParser) Help() string {
	var b strings.Builder
	if p.spec.Description != "" {
		b.WriteString(p.spec.Description)
		b.WriteString("\n\n")
	}
	b.WriteString("Optional options:\n")
	fs, _, err := p.flagSet()
	if err != nil {
		return b.String()
	}
	b.WriteString(fs.FlagUsages())
	return b.String()
}

// flagSet builds a fresh flag set for the spec together with one value
// getter per option.
func (p *SpecParser) flagSet() (*pflag.FlagSet, map[string]func() any, error) {
	fs := pflag.NewFlagSet("workflow", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	getters := make(map[string]func() any, len(p.spec.Options))
	for _, opt := range p.spec.Options {
		opt := opt
		switch opt.Type {
		case "", TypeString:
			def, err := defaultString(opt)
			if err != nil {
				return nil, nil, err
			}
			v := fs.StringP(opt.Name, opt.Short, def, opt.Help)
			getters[opt.Name] = func() any { return *v }
		case TypeInt:
			def, err := defaultInt(opt)
			if err != nil {
				return nil, nil, err
			}
			v := fs.IntP(opt.Name, opt.Short, def, opt.Help)
			getters[opt.Name] = func() any { return *v }
		case TypeFloat:
			def, err := defaultFloat(opt)
			if err != nil {
				return nil, nil, err
			}
			v := fs.Float64P(opt.Name, opt.Short, def, opt.Help)
			getters[opt.Name] = func() any { return *v }
		case TypeBool:
			def, err := defaultBool(opt)
			if err != nil {
				return nil, nil, err
			}
			v := fs.BoolP(opt.Name, opt.Short, def, opt.Help)
			getters[opt.Name] = func() any { return *v }
		case TypeStrings:
			var def []string
			if opt.Default != nil {
				s, err := defaultString(opt)
				if err != nil {
					return nil, nil, err
				}
				def = []string{s}
			}
			v := fs.StringArrayP(opt.Name, opt.Short, def, opt.Help)
			getters[opt.Name] = func() any { return *v }
		}
	}
	return fs, getters, nil
}

func defaultString(opt OptionSpec) (string, error) {
	switch v := opt.Default.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("option %q: unsupported default %v", opt.Name, opt.Default)
	}
}

func defaultInt(opt OptionSpec) (int, error) {
	switch v := opt.Default.(type) {
	case nil:
		return 0, nil
	case int:
		return v, nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("option %q: default %q is not an int", opt.Name, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("option %q: default %v is not an int", opt.Name, opt.Default)
	}
}

func defaultFloat(opt OptionSpec) (float64, error) {
	switch v := opt.Default.(type) {
	case nil:
		return 0, nil
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("option %q: default %q is not a float", opt.Name, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("option %q: default %v is not a float", opt.Name, opt.Default)
	}
}

func defaultBool(opt OptionSpec) (bool, error) {
	switch v := opt.Default.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("option %q: default %q is not a bool", opt.Name, v)
		}
		return b, nil
	default:
		return false, fmt.Errorf("option %q: default %v is not a bool", opt.Name, opt.Default)
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
