package params

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks candidate parameter values against a JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles schema as a draft 7 JSON schema. definitions are
// made available to "#/definitions/..." references when the schema does
// not declare its own.
func NewValidator(schema any, definitions map[string]any) (*Validator, error) {
	if m, ok := schema.(map[string]any); ok && len(definitions) > 0 {
		if _, has := m["definitions"]; !has {
			withDefs := make(map[string]any, len(m)+1)
			for k, v := range m {
				withDefs[k] = v
			}
			withDefs["definitions"] = definitions
			schema = withDefs
		}
	}

	sl := gojsonschema.NewSchemaLoader()
	sl.Draft = gojsonschema.Draft7
	compiled, err := sl.Compile(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// ParseInput interprets raw input as JSON, falling back to a plain string.
func ParseInput(input string) any {
	var v any
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		return input
	}
	return v
}

// Validate reports every schema violation of value, one per line.
func (v *Validator) Validate(value any) error {
	result, err := v.schema.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}
	msg := []string{"Invalid input:"}
	for i, desc := range result.Errors() {
		msg = append(msg, fmt.Sprintf("cause %d: %s", i, desc.String()))
	}
	return errors.New(strings.Join(msg, "\n"))
}

// Check parses input and validates the resulting value.
func (v *Validator) Check(input string) (any, error) {
	value := ParseInput(input)
	if err := v.Validate(value); err != nil {
		return nil, err
	}
	return value, nil
}
