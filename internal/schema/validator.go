// Package schema validates extracted policy documents against the versioned
// JSON schema and reports required-but-absent field paths.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"policyscan/internal/policy"
)

// Result is the outcome of one validation call. Immutable after construction.
type Result struct {
	IsValid       bool     `json:"is_valid"`
	Errors        []string `json:"errors"`
	MissingFields []string `json:"missing_fields"`
}

// Validator holds a compiled schema plus its raw form for the
// missing-required-field scan. Compiled once, read-only afterwards.
type Validator struct {
	compiled *jsonschema.Schema
	raw      map[string]any
	logger   *slog.Logger
}

// NewValidator compiles a schema given as a generic map.
func NewValidator(schemaMap map[string]any, logger *slog.Logger) (*Validator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{compiled: compiled, raw: schemaMap, logger: logger}, nil
}

// NewValidatorFromFile loads a versioned schema document from disk.
func NewValidatorFromFile(path string, logger *slog.Logger) (*Validator, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode schema file: %w", err)
	}
	return NewValidator(m, logger)
}

// Validate runs structural validation and the independent missing-field scan.
// Both checks are cumulative: a structural violation does not abort the scan.
// Validation never panics out; an internal failure is converted to an invalid
// result with a generic error string.
func (v *Validator) Validate(doc policy.Document) (d policy.Document, res Result) {
	res = Result{IsValid: true, Errors: []string{}, MissingFields: []string{}}
	d = doc

	defer func() {
		if r := recover(); r != nil {
			v.logger.Error("schema.validate.panic", "panic", r)
			res.IsValid = false
			res.Errors = append(res.Errors, fmt.Sprintf("unexpected validation error: %v", r))
		}
	}()

	inst, err := toInstance(doc)
	if err != nil {
		res.IsValid = false
		res.Errors = append(res.Errors, fmt.Sprintf("unexpected validation error: %v", err))
		return d, res
	}

	if err := v.compiled.Validate(inst); err != nil {
		res.IsValid = false
		res.Errors = append(res.Errors, formatViolation(err))
		v.logger.Warn("schema.validate.violation", "error", res.Errors[0])
	}

	// The scan is independent of structural validation: it never changes
	// IsValid on its own, it only reports.
	v.checkMissingFields(inst, v.raw, "", &res.MissingFields)

	return d, res
}

// toInstance round-trips the document through JSON so the validator sees the
// same value shapes a consumer would (ints as numbers, nils as nulls).
func toInstance(doc policy.Document) (any, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var inst any
	if err := json.Unmarshal(b, &inst); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return inst, nil
}

// formatViolation renders one violation as "<dot-path-or-root>: <message>",
// using the deepest cause so the path points at the offending leaf.
func formatViolation(err error) string {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return "root: " + err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	path := strings.ReplaceAll(strings.TrimPrefix(ve.InstanceLocation, "/"), "/", ".")
	if path == "" {
		path = "root"
	}
	return path + ": " + ve.Message
}

// checkMissingFields walks the schema's declared required fields at every
// nesting level and records the dotted path of any required field that is
// absent or explicitly null, regardless of defaulting. Object-typed fields
// are recursed into only when the schema declares nested properties for them.
func (v *Validator) checkMissingFields(data any, schemaNode map[string]any, prefix string, missing *[]string) {
	props, ok := schemaNode["properties"].(map[string]any)
	if !ok {
		return
	}
	obj, _ := data.(map[string]any)

	required := map[string]bool{}
	if reqList, ok := schemaNode["required"].([]any); ok {
		for _, r := range reqList {
			if name, ok := r.(string); ok {
				required[name] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		current := name
		if prefix != "" {
			current = prefix + "." + name
		}

		var val any
		present := false
		if obj != nil {
			val, present = obj[name]
		}

		if required[name] && (!present || val == nil) {
			*missing = append(*missing, current)
		}

		if child, ok := val.(map[string]any); ok && present {
			if propSchema, ok := props[name].(map[string]any); ok {
				if _, hasProps := propSchema["properties"]; hasProps {
					v.checkMissingFields(child, propSchema, current, missing)
				}
			}
		}
	}
}
