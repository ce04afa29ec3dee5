package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gurkankaymak/hocon"
	"gopkg.in/yaml.v3"
)

// document is a parsed snakeparse configuration file. Pointer and flexBool
// fields distinguish "absent" from "zero": only keys present in the document
// override construction-time options.
type document struct {
	Snakemake            *string                `yaml:"snakemake" json:"snakemake"`
	Prog                 *string                `yaml:"prog" json:"prog"`
	NameTransform        *string                `yaml:"name_transform" json:"name_transform"`
	ParentDirIsGroupName flexBool               `yaml:"parent_dir_is_group_name" json:"parent_dir_is_group_name"`
	Workflows            map[string]workflowDoc `yaml:"workflows" json:"workflows"`
	Groups               map[string]string      `yaml:"groups" json:"groups"`
	SnakefileGlobs       []string               `yaml:"snakefile_globs" json:"snakefile_globs"`
	SnakeparseGlobs      []string               `yaml:"snakeparse_globs" json:"snakeparse_globs"`
}

// workflowDoc is one workflow entry in a configuration file. Only snakefile
// is required; the rest falls back to an already-registered workflow of the
// same name, then to discovery.
type workflowDoc struct {
	Snakefile   string `yaml:"snakefile" json:"snakefile"`
	Snakeparse  string `yaml:"snakeparse" json:"snakeparse"`
	Group       string `yaml:"group" json:"group"`
	Description string `yaml:"description" json:"description"`
}

// flexBool accepts booleans and the truthy strings true/t/yes/y
// (case-insensitive), remembering whether the key was present at all.
type flexBool struct {
	present bool
	value   bool
}

func (b *flexBool) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	b.present = true
	b.value = truthy(raw)
	return nil
}

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.present = true
	b.value = truthy(raw)
	return nil
}

func truthy(raw any) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(v) {
		case "true", "t", "yes", "y":
			return true
		}
	}
	return false
}

// loadDocument reads a configuration file, selecting the format by
// extension: JSON, YAML, or HOCON. Other extensions are an error; HOCON's
// parser is lenient enough to "accept" almost anything, so it is never tried
// as a fallback.
func loadDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	doc := &document{}
	switch {
	case strings.HasSuffix(path, ".json"):
		if err := json.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("parsing JSON config %q: %w", path, err)
		}
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, fmt.Errorf("parsing YAML config %q: %w", path, err)
		}
	case strings.HasSuffix(path, ".conf"), strings.HasSuffix(path, ".hocon"):
		conf, err := hocon.ParseString(string(data))
		if err != nil {
			return nil, fmt.Errorf("parsing HOCON config %q: %w", path, err)
		}
		doc = documentFromHOCON(conf)
	default:
		return nil, fmt.Errorf("don't know how to open a %s config file: %s", filepath.Ext(path), path)
	}
	return doc, nil
}

// documentFromHOCON maps a parsed HOCON tree onto the shared document shape.
func documentFromHOCON(conf *hocon.Config) *document {
	doc := &document{}
	if s, ok := hoconString(conf, "snakemake"); ok {
		doc.Snakemake = &s
	}
	if s, ok := hoconString(conf, "prog"); ok {
		doc.Prog = &s
	}
	if s, ok := hoconString(conf, "name_transform"); ok {
		doc.NameTransform = &s
	}
	if s, ok := hoconString(conf, "parent_dir_is_group_name"); ok {
		doc.ParentDirIsGroupName = flexBool{present: true, value: truthy(s)}
	}
	if obj := conf.GetObject("workflows"); obj != nil {
		doc.Workflows = make(map[string]workflowDoc, len(obj))
		for name, value := range obj {
			wfObj, ok := value.(hocon.Object)
			if !ok {
				continue
			}
			doc.Workflows[name] = workflowDoc{
				Snakefile:   objectString(wfObj, "snakefile"),
				Snakeparse:  objectString(wfObj, "snakeparse"),
				Group:       objectString(wfObj, "group"),
				Description: objectString(wfObj, "description"),
			}
		}
	}
	if obj := conf.GetObject("groups"); obj != nil {
		doc.Groups = make(map[string]string, len(obj))
		for name, value := range obj {
			doc.Groups[name] = hoconText(value)
		}
	}
	doc.SnakefileGlobs = hoconStrings(conf, "snakefile_globs")
	doc.SnakeparseGlobs = hoconStrings(conf, "snakeparse_globs")
	return doc
}

// hoconText renders a HOCON scalar as bare text. hocon.String values carry
// their source quotes in the parse tree and Value.String() re-quotes
// anything containing punctuation (so paths always come back quoted); go
// through the underlying string and strip the quotes instead.
func hoconText(value hocon.Value) string {
	if s, ok := value.(hocon.String); ok {
		return strings.Trim(string(s), `"`)
	}
	return value.String()
}

func hoconString(conf *hocon.Config, path string) (string, bool) {
	value := conf.Get(path)
	if value == nil {
		return "", false
	}
	return hoconText(value), true
}

func hoconStrings(conf *hocon.Config, path string) []string {
	array := conf.GetArray(path)
	if array == nil {
		return nil
	}
	values := make([]string, 0, len(array))
	for _, value := range array {
		values = append(values, hoconText(value))
	}
	return values
}

func objectString(obj hocon.Object, key string) string {
	value, ok := obj[key]
	if !ok {
		return ""
	}
	return hoconText(value)
}
