package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const selectionSchemaName = "widget_selection.json"

// SelectionValidator gates the add-widget form before any request is issued.
type SelectionValidator interface {
	Validate(sel WidgetSelection) error
}

// JSONSchemaValidator compiles the selection schema once and validates
// normalized selections against it.
type JSONSchemaValidator struct {
	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{}
}

// Validate ensures title, data source, field and aggregation are present and
// that enumerated values are known.
func (v *JSONSchemaValidator) Validate(sel WidgetSelection) error {
	schema, err := v.schema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(sel.withDefaults())
	if err != nil {
		return fmt.Errorf("dashboard: marshal selection: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("dashboard: normalize selection: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, describeSchemaError(err))
	}
	return nil
}

func (v *JSONSchemaValidator) schema() (*jsonschema.Schema, error) {
	v.once.Do(func() {
		data, err := json.Marshal(selectionSchema())
		if err != nil {
			v.err = fmt.Errorf("dashboard: marshal selection schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(selectionSchemaName, bytes.NewReader(data)); err != nil {
			v.err = fmt.Errorf("dashboard: load selection schema: %w", err)
			return
		}
		v.compiled, v.err = compiler.Compile(selectionSchemaName)
		if v.err != nil {
			v.err = fmt.Errorf("dashboard: compile selection schema: %w", v.err)
		}
	})
	return v.compiled, v.err
}

func selectionSchema() map[string]any {
	nonBlank := map[string]any{"type": "string", "pattern": `\S`}
	types := make([]string, 0, 4)
	for _, t := range ChartTypes() {
		types = append(types, string(t))
	}
	operators := []string{""}
	for _, op := range filterOperators {
		operators = append(operators, op.Value)
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"title", "dataSource", "field", "aggregation"},
		"properties": map[string]any{
			"title":        nonBlank,
			"dataSource":   nonBlank,
			"field":        nonBlank,
			"aggregation":  map[string]any{"type": "string", "enum": Aggregations()},
			"type":         map[string]any{"type": "string", "enum": types},
			"metricSource": map[string]any{"type": "string"},
			"metric":       map[string]any{"type": "string"},
			"filters": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"field":    map[string]any{"type": "string"},
						"operator": map[string]any{"type": "string", "enum": operators},
						"value":    map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}

func describeSchemaError(err error) string {
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err.Error()
	}
	leaves := collectLeafErrors(verr)
	if len(leaves) == 0 {
		return verr.Message
	}
	return strings.Join(leaves, "; ")
}

func collectLeafErrors(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		location := strings.TrimPrefix(verr.InstanceLocation, "/")
		if location == "" {
			return []string{verr.Message}
		}
		return []string{location + ": " + verr.Message}
	}
	var out []string
	for _, cause := range verr.Causes {
		out = append(out, collectLeafErrors(cause)...)
	}
	return out
}
