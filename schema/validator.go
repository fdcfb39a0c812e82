// Package schema compiles JSON Schema documents and checks response bodies against them.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks documents against one compiled schema. It is safe for concurrent use.
type Validator struct {
	name   string
	schema *gojsonschema.Schema
}

// Violation describes one place where a document does not satisfy the schema.
type Violation struct {
	// Path is the location of the offending value, such as "data.0.last_name", or "(root)".
	Path string
	// Type is the kind of check that failed, such as "required", "invalid_type" or "format".
	Type        string
	Description string
	Value       interface{}
}

func (v Violation) String() string {
	value, err := json.Marshal(v.Value)
	if err != nil {
		value = []byte(fmt.Sprintf("%v", v.Value))
	}
	return fmt.Sprintf("%s: %s (actual value: %s)", v.Path, v.Description, value)
}

// Result is the outcome of one validation.
type Result struct {
	Valid      bool
	Violations []Violation
}

// String renders every violation on its own line.
func (r Result) String() string {
	if r.Valid {
		return "valid"
	}
	lines := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		lines = append(lines, v.String())
	}
	return strings.Join(lines, "\n")
}

// Compile builds a Validator from a schema document, which may be raw JSON bytes, a
// json.RawMessage, or a decoded Go value such as map[string]interface{}. The name is only used
// in error messages. Format keywords such as date-time and email are checked.
func Compile(name string, document interface{}) (*Validator, error) {
	var loader gojsonschema.JSONLoader
	switch d := document.(type) {
	case []byte:
		loader = gojsonschema.NewBytesLoader(d)
	case json.RawMessage:
		loader = gojsonschema.NewBytesLoader(d)
	case string:
		loader = gojsonschema.NewStringLoader(d)
	default:
		loader = gojsonschema.NewGoLoader(d)
	}
	s, err := gojsonschema.NewSchema(loader)
	if err != nil {
		return nil, fmt.Errorf("schema %q does not compile: %w", name, err)
	}
	return &Validator{name: name, schema: s}, nil
}

func (v *Validator) Name() string { return v.name }

// Validate checks a JSON document. The error is non-nil only if the document could not be
// parsed at all; schema violations are reported in the Result.
func (v *Validator) Validate(document []byte) (Result, error) {
	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return Result{}, fmt.Errorf("cannot validate against schema %q: %w", v.name, err)
	}
	return toResult(res), nil
}

func toResult(res *gojsonschema.Result) Result {
	if res.Valid() {
		return Result{Valid: true}
	}
	ret := Result{}
	for _, e := range res.Errors() {
		ret.Violations = append(ret.Violations, Violation{
			Path:        e.Field(),
			Type:        e.Type(),
			Description: e.Description(),
			Value:       e.Value(),
		})
	}
	return ret
}
