package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jonathan/candidate-matcher/internal/schemas"
)

// writeOutput writes v as indented JSON to path, or to w when path is empty,
// then validates it against the schema. Validation failures are warnings.
func writeOutput(w, warn io.Writer, path, schema string, v any) error {
	jsonOutput, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output to JSON: %w", err)
	}

	if path == "" {
		if _, err := fmt.Fprintln(w, string(jsonOutput)); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		// Ensure output directory exists
		outputDir := filepath.Dir(path)
		if outputDir != "" && outputDir != "." {
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
			}
		}
		if err := os.WriteFile(path, jsonOutput, 0644); err != nil {
			return fmt.Errorf("failed to write output file %s: %w", path, err)
		}
	}

	// Validate output against schema (optional - non-fatal)
	checkOutput(warn, schema, v)

	return nil
}

// checkOutput validates v against a shipped schema and prints any failure as a
// warning. A schema that cannot be found is skipped.
func checkOutput(warn io.Writer, schema string, v any) {
	s, err := schemas.Load(schema)
	if err != nil {
		if !errors.Is(err, schemas.ErrNotFound) {
			_, _ = fmt.Fprintf(warn, "Warning: %v\n", err)
		}
		return
	}
	if err := s.Value(v); err != nil {
		_, _ = fmt.Fprintf(warn, "Warning: Output validation failed: %v\n", err)
	}
}
