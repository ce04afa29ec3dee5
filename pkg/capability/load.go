package capability

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"gopkg.in/yaml.v3"

	"github.com/nh13/snakeparse/pkg/parser"
)

// Symbols a Go snakeparse file may declare. Exactly one of the two must be
// present: a function returning the spec, or the spec value itself.
const (
	parserFuncName = "Snakeparser"
	parserSpecName = "ParserSpec"
)

// Load builds the parser declared by the snakeparse file at path.
func Load(path string) (parser.Parser, error) {
	var (
		spec parser.Spec
		err  error
	)
	switch {
	case strings.HasSuffix(path, ".go"):
		spec, err = loadGoSpec(path)
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		spec, err = loadYAMLSpec(path)
	default:
		return nil, fmt.Errorf("don't know how to load snakeparse file %s", path)
	}
	if err != nil {
		return nil, err
	}
	p, err := parser.NewSpecParser(spec)
	if err != nil {
		return nil, fmt.Errorf("snakeparse file %s: %w", path, err)
	}
	return p, nil
}

// loadGoSpec evaluates a Go snakeparse file and extracts its parser spec.
// The file must declare exactly one of Snakeparser() or ParserSpec; zero or
// more than one candidate is a configuration error carrying both counts.
func loadGoSpec(path string) (parser.Spec, error) {
	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return parser.Spec{}, fmt.Errorf("snakeparse interpreter: %w", err)
	}
	if _, err := i.EvalPath(path); err != nil {
		return parser.Spec{}, fmt.Errorf("interpreting snakeparse file %s: %w", path, err)
	}

	funcs, values := 0, 0
	fnVal, fnErr := i.Eval(parserFuncName)
	if fnErr == nil && fnVal.IsValid() && fnVal.Kind() == reflect.Func {
		funcs = 1
	}
	specVal, specErr := i.Eval(parserSpecName)
	if specErr == nil && specVal.IsValid() && specVal.Kind() == reflect.Map {
		values = 1
	}
	if funcs+values != 1 {
		return parser.Spec{}, &ResolutionError{Path: path, Funcs: funcs, Values: values}
	}

	var raw map[string]any
	var err error
	switch {
	case funcs == 1:
		raw, err = invokeParserFunc(fnVal)
	case values == 1:
		raw, err = specValue(specVal)
	default:
		panic(fmt.Sprintf("bug: %d funcs and %d values after candidate check", funcs, values))
	}
	if err != nil {
		return parser.Spec{}, fmt.Errorf("snakeparse file %s: %w", path, err)
	}
	return specFromRaw(raw)
}

// invokeParserFunc calls Snakeparser(), accepting either a bare spec map or
// a (map, error) pair.
func invokeParserFunc(fn reflect.Value) (map[string]any, error) {
	if fn.Type().NumIn() != 0 {
		return nil, fmt.Errorf("%s must take no arguments", parserFuncName)
	}
	results := fn.Call(nil)
	if len(results) == 0 || len(results) > 2 {
		return nil, fmt.Errorf("%s must return (map[string]any[, error])", parserFuncName)
	}
	if len(results) == 2 && !results[1].IsNil() {
		if err, ok := results[1].Interface().(error); ok {
			return nil, err
		}
		return nil, fmt.Errorf("%s returned a non-error second value", parserFuncName)
	}
	raw, ok := results[0].Interface().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must return map[string]any, got %T", parserFuncName, results[0].Interface())
	}
	return raw, nil
}

func specValue(v reflect.Value) (map[string]any, error) {
	raw, ok := v.Interface().(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%s must be map[string]any, got %T", parserSpecName, v.Interface())
	}
	return raw, nil
}

// specFromRaw roundtrips the interpreted map through YAML into the typed
// spec, so Go and YAML snakeparse files share one schema.
func specFromRaw(raw map[string]any) (parser.Spec, error) {
	payload, err := yaml.Marshal(raw)
	if err != nil {
		return parser.Spec{}, fmt.Errorf("encoding parser spec: %w", err)
	}
	var spec parser.Spec
	if err := yaml.Unmarshal(payload, &spec); err != nil {
		return parser.Spec{}, fmt.Errorf("decoding parser spec: %w", err)
	}
	return spec, nil
}

func loadYAMLSpec(path string) (parser.Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return parser.Spec{}, fmt.Errorf("reading snakeparse file %s: %w", path, err)
	}
	var spec parser.Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return parser.Spec{}, fmt.Errorf("decoding snakeparse file %s: %w", path, err)
	}
	return spec, nil
}
