package workflow

import (
	"strings"
	"unicode"
)

// Transform rewrites the base name of a snakefile into the canonical workflow
// name shown on the command line.
type Transform func(string) string

// Built-in transform keys accepted in configuration.
const (
	TransformSnakeToCamel = "snake_to_camel"
	TransformCamelToSnake = "camel_to_snake"
)

// TransformFromKey resolves a built-in transform by key. An empty key means
// no transform.
func TransformFromKey(key string) (Transform, error) {
	switch key {
	case "":
		return nil, nil
	case TransformSnakeToCamel:
		return SnakeToCamel, nil
	case TransformCamelToSnake:
		return CamelToSnake, nil
	default:
		return nil, &UnknownTransformError{Key: key}
	}
}

// SnakeToCamel converts a string in snake case to camel case, e.g.
// "write_message" becomes "WriteMessage".
func SnakeToCamel(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	for _, seg := range strings.Split(s, "_") {
		for i, r := range seg {
			if i == 0 {
				b.WriteRune(unicode.ToUpper(r))
			} else {
				b.WriteRune(unicode.ToLower(r))
			}
		}
	}
	return b.String()
}

// CamelToSnake converts a string in camel case to snake case, e.g.
// "WriteMessage" becomes "write_message". Not the inverse of SnakeToCamel
// for runs of capitals: "ABCDE" becomes "a_b_c_d_e".
func CamelToSnake(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	var b strings.Builder
	b.WriteRune(unicode.ToLower(runes[0]))
	for _, r := range runes[1:] {
		if unicode.IsUpper(r) {
			b.WriteRune('_')
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
