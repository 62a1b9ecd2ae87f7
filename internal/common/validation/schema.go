// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the errors into one line, sorted by field for stable messages.
func (r *ValidationResult) Summary() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// Validator is a compiled JSON schema, safe for concurrent use.
type Validator struct {
	schema *gojsonschema.Schema
}

// Compile parses a JSON schema held as a decoded map, as found in the activity registry.
func Compile(schema map[string]interface{}) (*Validator, error) {
	if len(schema) == 0 {
		return &Validator{}, nil
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks document against the schema. An empty schema accepts everything.
func (v *Validator) Validate(document interface{}) (*ValidationResult, error) {
	if v.schema == nil {
		return &ValidationResult{Valid: true}, nil
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(document))
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldOf(desc),
			Message: desc.Description(),
			Code:    strings.ToUpper(desc.Type()),
		})
	}
	return out, nil
}

// ValidateInput compiles schema and validates input in one call.
func ValidateInput(input map[string]interface{}, schema map[string]interface{}) (*ValidationResult, error) {
	v, err := Compile(schema)
	if err != nil {
		return nil, err
	}
	return v.Validate(input)
}

// fieldOf reports the offending property. Required errors are raised on the parent object,
// so the missing property name comes from the details.
func fieldOf(desc gojsonschema.ResultError) string {
	field := desc.Field()
	if prop, ok := desc.Details()["property"].(string); ok && prop != "" {
		if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY || field == "" || field == prop {
			return prop
		}
		if strings.HasSuffix(field, "."+prop) {
			return field
		}
		return field + "." + prop
	}
	return field
}
