// Package jsonschema validates JSON response bodies against JSON Schema
// documents.
package jsonschema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationErrors represents a collection of validation errors
type ValidationErrors []error

// Error implements the error interface for ValidationErrors
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Schema is a compiled schema that can validate many bodies.
type Schema struct {
	schema *jsonschema.Schema
}

// Compile parses and compiles an inline schema document.
func Compile(schemaStr string) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(schemaStr)); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// CompileFile reads and compiles a schema document from disk.
func CompileFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return Compile(string(data))
}

// Validate checks body against the schema. It returns nil when the body is
// valid, and a ValidationErrors listing every violated keyword otherwise.
func (s *Schema) Validate(body []byte) error {
	var doc interface{}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return ValidationErrors{fmt.Errorf("invalid JSON: %w", err)}
	}

	err := s.schema.Validate(doc)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return extractValidationErrors(verr)
	}
	return ValidationErrors{err}
}

// Validate validates a JSON body against an inline JSON Schema.
// Schema problems are returned as a plain error; body violations as
// ValidationErrors.
func Validate(body []byte, schemaStr string) error {
	schema, err := Compile(schemaStr)
	if err != nil {
		return err
	}
	return schema.Validate(body)
}

// extractValidationErrors flattens a jsonschema.ValidationError tree,
// keeping only the leaves that carry a message.
func extractValidationErrors(err *jsonschema.ValidationError) ValidationErrors {
	var out ValidationErrors
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		return ValidationErrors{fmt.Errorf("validation error at %s: %s", location, err.Message)}
	}
	for _, child := range err.Causes {
		out = append(out, extractValidationErrors(child)...)
	}
	return out
}
