package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/similarity"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Ranker ranks the candidate pool against a job.
type Ranker interface {
	RankCandidates(ctx context.Context, jobID string, opts ranking.Options) ([]types.MatchResult, error)
}

// SimilarityChecker finds stored histories resembling a target history.
type SimilarityChecker interface {
	DetectSimilarHistories(ctx context.Context, req types.SimilarityRequest) ([]types.SimilarityMatch, error)
	CheckCandidate(ctx context.Context, candidateID string) (*types.SimilarityReport, error)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleMatches ranks candidates for the job in the path.
func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	req := types.RankRequest{
		JobID:        r.PathValue("id"),
		MinThreshold: types.DefaultMinThreshold,
		Limit:        types.DefaultLimit,
	}

	if raw := r.URL.Query().Get("min_threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.writeError(w, r, &ErrValidation{Field: "min_threshold", Message: "must be a number"})
			return
		}
		req.MinThreshold = v
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, r, &ErrValidation{Field: "limit", Message: "must be an integer"})
			return
		}
		req.Limit = v
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	results, err := s.ranker.RankCandidates(r.Context(), req.JobID, ranking.Options{
		MinThreshold: req.MinThreshold,
		Limit:        req.Limit,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.RankingReport{
		JobID:        req.JobID,
		MinThreshold: req.MinThreshold,
		Limit:        req.Limit,
		Results:      results,
	})
}

// handleSimilarity compares the posted organizations and dates with every stored history.
func (s *Server) handleSimilarity(w http.ResponseWriter, r *http.Request) {
	var req types.SimilarityRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, r, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}

	matches, err := s.similarity.DetectSimilarHistories(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, similarity.NewReport(req.ExcludeCandidateID, matches))
}

// handleCandidateSimilarity compares a stored candidate's history with everyone else's.
func (s *Server) handleCandidateSimilarity(w http.ResponseWriter, r *http.Request) {
	report, err := s.similarity.CheckCandidate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, report)
}

// writeError maps err to a status code and writes it. Server errors are logged
// and their details withheld from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		message = http.StatusText(status)
	}
	s.errorResponse(w, status, message)
}
