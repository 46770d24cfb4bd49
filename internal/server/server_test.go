package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonathan/candidate-matcher/internal/dataset"
	"github.com/jonathan/candidate-matcher/internal/parsing"
	"github.com/jonathan/candidate-matcher/internal/ranking"
	"github.com/jonathan/candidate-matcher/internal/server/ratelimit"
	"github.com/jonathan/candidate-matcher/internal/similarity"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// fakeRanker records the options it was called with.
type fakeRanker struct {
	jobID   string
	opts    ranking.Options
	results []types.MatchResult
	err     error
}

func (f *fakeRanker) RankCandidates(_ context.Context, jobID string, opts ranking.Options) ([]types.MatchResult, error) {
	f.jobID = jobID
	f.opts = opts
	return f.results, f.err
}

type fakeChecker struct {
	matches []types.SimilarityMatch
	report  *types.SimilarityReport
	err     error
}

func (f *fakeChecker) DetectSimilarHistories(_ context.Context, req types.SimilarityRequest) ([]types.SimilarityMatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return f.matches, f.err
}

func (f *fakeChecker) CheckCandidate(_ context.Context, _ string) (*types.SimilarityReport, error) {
	return f.report, f.err
}

// newTestServer creates a server with rate limiting disabled.
func newTestServer(t *testing.T, ranker Ranker, checker SimilarityChecker) *Server {
	t.Helper()
	s, err := New(Config{
		Ranker:     ranker,
		Similarity: checker,
		Limiter:    ratelimit.NewLimiter(&ratelimit.Config{Enabled: false}),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func serve(s *Server, method, target string, body string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestNew_RequiresDependencies(t *testing.T) {
	if _, err := New(Config{Ranker: &fakeRanker{}}); err == nil {
		t.Error("expected error without a similarity checker")
	}
	if _, err := New(Config{Similarity: &fakeChecker{}}); err == nil {
		t.Error("expected error without a ranker")
	}
}

// TestHealthEndpoint tests the /health endpoint
func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &fakeRanker{}, &fakeChecker{})

	w := serve(s, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", resp["status"])
	}
}

func TestMatchesEndpoint_Defaults(t *testing.T) {
	ranker := &fakeRanker{results: []types.MatchResult{{CandidateID: "alice", Score: 80, Reasons: []string{}}}}
	s := newTestServer(t, ranker, &fakeChecker{})

	w := serve(s, http.MethodGet, "/jobs/job-1/matches", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if ranker.jobID != "job-1" {
		t.Errorf("expected job-1, got %q", ranker.jobID)
	}
	if ranker.opts.MinThreshold != types.DefaultMinThreshold || ranker.opts.Limit != types.DefaultLimit {
		t.Errorf("expected default options, got %+v", ranker.opts)
	}

	var report types.RankingReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if report.JobID != "job-1" || len(report.Results) != 1 || report.Results[0].CandidateID != "alice" {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestMatchesEndpoint_QueryParams(t *testing.T) {
	ranker := &fakeRanker{}
	s := newTestServer(t, ranker, &fakeChecker{})

	w := serve(s, http.MethodGet, "/jobs/job-1/matches?min_threshold=0.5&limit=3", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ranker.opts.MinThreshold != 0.5 || ranker.opts.Limit != 3 {
		t.Errorf("unexpected options %+v", ranker.opts)
	}
}

func TestMatchesEndpoint_InvalidParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{"threshold not a number", "min_threshold=high"},
		{"threshold above one", "min_threshold=1.5"},
		{"negative threshold", "min_threshold=-0.1"},
		{"limit not an integer", "limit=ten"},
		{"zero limit", "limit=0"},
		{"limit above cap", "limit=1001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranker := &fakeRanker{}
			s := newTestServer(t, ranker, &fakeChecker{})

			w := serve(s, http.MethodGet, "/jobs/job-1/matches?"+tt.query, "")

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
			if ranker.jobID != "" {
				t.Error("ranker should not be called for invalid input")
			}
		})
	}
}

func TestMatchesEndpoint_JobNotFound(t *testing.T) {
	s := newTestServer(t, &fakeRanker{err: &ranking.NotFoundError{JobID: "nope"}}, &fakeChecker{})

	w := serve(s, http.MethodGet, "/jobs/nope/matches", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestMatchesEndpoint_InternalErrorHidden(t *testing.T) {
	s := newTestServer(t, &fakeRanker{err: errors.New("password=secret")}, &fakeChecker{})

	w := serve(s, http.MethodGet, "/jobs/job-1/matches", "")

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "secret") {
		t.Error("internal error details should not reach the client")
	}
}

func TestSimilarityEndpoint(t *testing.T) {
	checker := &fakeChecker{matches: []types.SimilarityMatch{
		{CandidateID: "bob", Similarity: 100, HighSimilarity: true, IdenticalChronology: true},
	}}
	s := newTestServer(t, &fakeRanker{}, checker)

	w := serve(s, http.MethodPost, "/similarity",
		`{"organizations":["Acme"],"dates":["2019 - 2020"],"exclude_candidate_id":"alice"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var report types.SimilarityReport
	if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !report.Suspicious {
		t.Error("expected suspicious report")
	}
	if report.ExcludeCandidateID != "alice" {
		t.Errorf("expected exclude_candidate_id alice, got %q", report.ExcludeCandidateID)
	}
}

func TestSimilarityEndpoint_EmptyMatchesEncodeAsArray(t *testing.T) {
	s := newTestServer(t, &fakeRanker{}, &fakeChecker{})

	w := serve(s, http.MethodPost, "/similarity", `{"organizations":["Acme"]}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"matches":[]`) {
		t.Errorf("expected empty matches array, got %s", w.Body.String())
	}
}

func TestSimilarityEndpoint_BadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"invalid JSON", `{"organizations":`},
		{"nothing to compare", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, &fakeRanker{}, &fakeChecker{})

			w := serve(s, http.MethodPost, "/similarity", tt.body)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestCandidateSimilarityEndpoint_NotFound(t *testing.T) {
	s := newTestServer(t, &fakeRanker{}, &fakeChecker{err: &similarity.NotFoundError{CandidateID: "ghost"}})

	w := serve(s, http.MethodGet, "/candidates/ghost/similar", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, &fakeRanker{}, &fakeChecker{})

	w := serve(s, http.MethodGet, "/similarity", "")

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

// TestDatasetBackedServer runs the full stack over the sample dataset.
func TestDatasetBackedServer(t *testing.T) {
	store, err := dataset.Load("../dataset/testdata/sample.json")
	if err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}
	scorer, err := ranking.NewScorer(store, ranking.Config{})
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	s := newTestServer(t, scorer, similarity.NewService(store, parsing.FirstWordPolicy, nil))

	t.Run("matches", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/jobs/job-java/matches?min_threshold=0&limit=10", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var report types.RankingReport
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(report.Results) != 3 {
			t.Fatalf("expected 3 active candidates, got %d", len(report.Results))
		}
		for i, r := range report.Results {
			if r.CandidateID == "carol" {
				t.Error("invalidated candidate should not be ranked")
			}
			if i > 0 && r.Score > report.Results[i-1].Score {
				t.Errorf("results not sorted by score at %d", i)
			}
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/jobs/job-missing/matches", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("expected status 404, got %d", w.Code)
		}
	})

	t.Run("candidate similarity", func(t *testing.T) {
		w := serve(s, http.MethodGet, "/candidates/bob/similar", "")
		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}

		var report types.SimilarityReport
		if err := json.Unmarshal(w.Body.Bytes(), &report); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if !report.Suspicious || len(report.Matches) == 0 || report.Matches[0].CandidateID != "alice" {
			t.Errorf("expected bob to be flagged as a copy of alice, got %+v", report)
		}
	})
}

// TestCORSMiddleware tests CORS headers are set
func TestCORSMiddleware(t *testing.T) {
	s := newTestServer(t, &fakeRanker{}, &fakeChecker{})

	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header Access-Control-Allow-Origin: *")
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected CORS header Access-Control-Allow-Methods")
	}
}

// TestCORSMiddleware_OPTIONS tests OPTIONS preflight request
func TestCORSMiddleware_OPTIONS(t *testing.T) {
	s := newTestServer(t, &fakeRanker{}, &fakeChecker{})

	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("should not reach here")) //nolint:errcheck
	}))

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for OPTIONS, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Error("OPTIONS response should have empty body")
	}
}

// TestLoggingMiddleware tests that logging middleware passes through and tags requests
func TestLoggingMiddleware(t *testing.T) {
	s := newTestServer(t, &fakeRanker{}, &fakeChecker{})

	called := false
	handler := s.withLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("logging middleware should call next handler")
	}
	if w.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "abc")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-ID"); got != "abc" {
		t.Errorf("expected caller request ID to be kept, got %q", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.NewLimiter(&ratelimit.Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{},
		Blacklist:     map[string]bool{},
	})
	s, err := New(Config{Ranker: &fakeRanker{}, Similarity: &fakeChecker{}, Limiter: limiter})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer limiter.Stop()

	first := serve(s, http.MethodGet, "/jobs/job-1/matches", "")
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}
	if first.Header().Get("X-RateLimit-Limit") != "1" {
		t.Errorf("expected X-RateLimit-Limit 1, got %q", first.Header().Get("X-RateLimit-Limit"))
	}

	second := serve(s, http.MethodGet, "/jobs/job-1/matches", "")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}

	// Health checks are never limited.
	for range 3 {
		if w := serve(s, http.MethodGet, "/health", ""); w.Code != http.StatusOK {
			t.Errorf("expected health to pass, got %d", w.Code)
		}
	}
}

func TestExtractClientID(t *testing.T) {
	s := newTestServer(t, &fakeRanker{}, &fakeChecker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.7:5555"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")
	if got := s.extractClientID(req); got != "10.0.0.7" {
		t.Errorf("expected 10.0.0.7, got %q", got)
	}

	req.RemoteAddr = "no-port"
	if got := s.extractClientID(req); got != "no-port" {
		t.Errorf("expected raw RemoteAddr, got %q", got)
	}
}

func TestServe_GracefulShutdown(t *testing.T) {
	s := newTestServer(t, &fakeRanker{}, &fakeChecker{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	http.DefaultClient.CloseIdleConnections()
}
