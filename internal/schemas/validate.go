// Package schemas checks the matcher's JSON datasets and reports against the
// JSON Schemas in the repository's schemas/ directory.
package schemas

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Schemas shipped with the matcher, relative to the repository root.
const (
	Dataset          = "schemas/dataset.schema.json"
	MatchResults     = "schemas/match_results.schema.json"
	SimilarityReport = "schemas/similarity_report.schema.json"
)

// searchDepth is how many parent directories Locate tries after the working directory.
const searchDepth = 2

// ErrNotFound is matched by errors.Is when a schema file cannot be located.
var ErrNotFound = errors.New("schema not found")

// LoadError reports a schema file that exists but does not compile.
type LoadError struct {
	Path  string
	Cause error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to compile schema %s: %v", e.Path, e.Cause)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Violation is one document field that breaks the schema.
type Violation struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in one document.
type ValidationError struct {
	Schema     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return fmt.Sprintf("document does not match %s: %s", e.Schema, strings.Join(parts, "; "))
}

// Locate resolves relativePath against the working directory and up to
// searchDepth parents, so commands and package tests find the same file.
func Locate(relativePath string) (string, error) {
	dir := ""
	for range searchDepth + 1 {
		candidate, err := filepath.Abs(filepath.Join(dir, relativePath))
		if err == nil {
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
		dir = filepath.Join(dir, "..")
	}
	return "", fmt.Errorf("%s: %w", relativePath, ErrNotFound)
}

// Schema is a compiled JSON Schema. It is safe for concurrent use.
type Schema struct {
	name   string
	schema *gojsonschema.Schema
}

// Load locates and compiles one of the shipped schemas.
func Load(relativePath string) (*Schema, error) {
	path, err := Locate(relativePath)
	if err != nil {
		return nil, err
	}
	return Compile(path)
}

// Compile compiles the schema file at path.
func Compile(path string) (*Schema, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve schema path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%s: %w", abs, ErrNotFound)
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewReferenceLoader("file://" + filepath.ToSlash(abs)))
	if err != nil {
		return nil, &LoadError{Path: abs, Cause: err}
	}
	return &Schema{name: filepath.Base(abs), schema: compiled}, nil
}

// Name returns the schema's file name.
func (s *Schema) Name() string {
	return s.name
}

// Document checks raw JSON bytes.
func (s *Schema) Document(data []byte) error {
	return s.check(gojsonschema.NewBytesLoader(data))
}

// Value checks a Go value as it would be encoded to JSON.
func (s *Schema) Value(value any) error {
	return s.check(gojsonschema.NewGoLoader(value))
}

func (s *Schema) check(document gojsonschema.JSONLoader) error {
	result, err := s.schema.Validate(document)
	if err != nil {
		return fmt.Errorf("failed to read document for %s: %w", s.name, err)
	}
	if result.Valid() {
		return nil
	}

	verr := &ValidationError{Schema: s.name, Violations: make([]Violation, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Violations = append(verr.Violations, Violation{Field: field, Message: desc.Description()})
	}
	return verr
}
