package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocate(t *testing.T) {
	path, err := Locate(MatchResults)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(path))
	assert.Equal(t, "match_results.schema.json", filepath.Base(path))

	_, err = Locate("schemas/nonexistent.schema.json")
	assert.ErrorIs(t, err, ErrNotFound)

	// Directories are not schemas.
	_, err = Locate("schemas")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_ShippedSchemas(t *testing.T) {
	for _, name := range []string{Dataset, MatchResults, SimilarityReport} {
		t.Run(name, func(t *testing.T) {
			s, err := Load(name)
			require.NoError(t, err)
			assert.Equal(t, filepath.Base(name), s.Name())
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(filepath.Join("testdata", "missing.schema.json"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Compile(filepath.Join("testdata", "broken.schema.json"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Contains(t, loadErr.Error(), "broken.schema.json")
}

func TestSchema_Value(t *testing.T) {
	s, err := Compile(filepath.Join("testdata", "score.schema.json"))
	require.NoError(t, err)

	type result struct {
		CandidateID string `json:"candidate_id"`
		Score       int    `json:"score"`
	}

	assert.NoError(t, s.Value(result{CandidateID: "alice", Score: 87}))

	err = s.Value(result{CandidateID: "alice", Score: 140})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, "score", verr.Violations[0].Field)
	assert.Equal(t, "score.schema.json", verr.Schema)
}

func TestSchema_Document(t *testing.T) {
	s, err := Compile(filepath.Join("testdata", "score.schema.json"))
	require.NoError(t, err)

	tests := []struct {
		name       string
		doc        string
		wantFields []string
	}{
		{"valid", `{"candidate_id": "alice", "score": 87}`, nil},
		{"missing field", `{"score": 87}`, []string{"(root)"}},
		{"wrong type", `{"candidate_id": "alice", "score": "high"}`, []string{"score"}},
		{"two violations", `{"candidate_id": 7, "score": -1}`, []string{"candidate_id", "score"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Document([]byte(tt.doc))
			if tt.wantFields == nil {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			fields := make([]string, 0, len(verr.Violations))
			for _, v := range verr.Violations {
				fields = append(fields, v.Field)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestSchema_DocumentMalformed(t *testing.T) {
	s, err := Compile(filepath.Join("testdata", "score.schema.json"))
	require.NoError(t, err)

	err = s.Document([]byte(`{"score": `))
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr), "malformed JSON is not a schema violation")
}

func TestDatasetSchema(t *testing.T) {
	s, err := Load(Dataset)
	require.NoError(t, err)

	tests := []struct {
		name    string
		file    string
		wantErr bool
	}{
		{"sample dataset", "../dataset/testdata/sample.json", false},
		{"candidate without name", "testdata/dataset_missing_name.json", true},
		{"organizations not an array", "testdata/dataset_wrong_type.json", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := os.ReadFile(tt.file)
			require.NoError(t, err)

			err = s.Document(data)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Violations)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Schema: "dataset.schema.json",
		Violations: []Violation{
			{Field: "candidates.0", Message: "name is required"},
			{Field: "histories.0.organizations", Message: "Invalid type. Expected: array, given: string"},
		},
	}
	assert.Equal(t,
		"document does not match dataset.schema.json: candidates.0: name is required; "+
			"histories.0.organizations: Invalid type. Expected: array, given: string",
		err.Error())
}
