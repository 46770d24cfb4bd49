// Package ranking ranks a candidate pool against a job opening by combining
// title, skill, location, client and seniority scores into one composite score.
package ranking

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-matcher/internal/catalog"
	"github.com/jonathan/candidate-matcher/internal/experience"
	"github.com/jonathan/candidate-matcher/internal/industry"
	"github.com/jonathan/candidate-matcher/internal/location"
	"github.com/jonathan/candidate-matcher/internal/skills"
	"github.com/jonathan/candidate-matcher/internal/titles"
	"github.com/jonathan/candidate-matcher/internal/types"
)

// scoreTolerance absorbs float noise when the integer score is compared with threshold x 100.
const scoreTolerance = 1e-9

// Stage is a step of a ranking pass.
type Stage string

// Ranking pass stages, in order.
const (
	StageIdle       Stage = "idle"
	StageExtracting Stage = "extracting"
	StageCombining  Stage = "combining"
	StageFiltering  Stage = "filtering"
	StageRanked     Stage = "ranked"
)

// Store is the read side of the record store used by a ranking pass.
// GetJob returns (nil, nil) when the job does not exist. ListCandidates must
// leave out invalidated candidates.
type Store interface {
	GetJob(ctx context.Context, id string) (*types.JobOpening, error)
	ListCandidates(ctx context.Context) ([]types.CandidateProfile, error)
	ListEmploymentHistories(ctx context.Context) ([]types.EmploymentHistory, error)
}

// Options control a single ranking pass.
type Options struct {
	MinThreshold float64 // composite cut-off in [0,1]
	Limit        int     // maximum number of results, at least 1
}

// DefaultOptions returns the default threshold and limit.
func DefaultOptions() Options {
	return Options{MinThreshold: types.DefaultMinThreshold, Limit: types.DefaultLimit}
}

// Validate checks the option ranges.
func (o Options) Validate() error {
	if o.Limit <= 0 {
		return &InvalidInputError{Field: "limit", Message: fmt.Sprintf("must be positive, got %d", o.Limit)}
	}
	if math.IsNaN(o.MinThreshold) || o.MinThreshold < 0 || o.MinThreshold > 1 {
		return &InvalidInputError{Field: "min_threshold", Message: fmt.Sprintf("must be within [0, 1], got %v", o.MinThreshold)}
	}
	return nil
}

// Config configures a Scorer. Zero values select defaults.
type Config struct {
	Weights Weights
	Workers int              // concurrent candidate extractions, defaults to GOMAXPROCS
	Catalog *catalog.Catalog // defaults to catalog.Default()
	Logger  *zap.Logger
	Now     func() time.Time // clock for years of experience
}

// extraction holds the per-dimension results for one candidate.
type extraction struct {
	title     types.TitleMatch
	skills    types.SkillMatch
	location  types.LocationMatch
	client    types.ClientMatch
	seniority types.SeniorityMatch
	failed    bool
}

type extractFunc func(job *types.JobOpening, targets []types.SkillTarget, c *types.CandidateProfile, h *types.EmploymentHistory) extraction

// Scorer ranks candidates for a job. It holds no per-pass state and is safe for concurrent use.
type Scorer struct {
	store   Store
	weights Weights
	workers int
	logger  *zap.Logger
	now     func() time.Time

	titles     *titles.Matcher
	skills     *skills.Matcher
	location   *location.Matcher
	industry   *industry.Matcher
	experience *experience.Matcher

	extract extractFunc
}

// NewScorer creates a Scorer reading from store.
func NewScorer(store Store, cfg Config) (*Scorer, error) {
	if store == nil {
		return nil, &InvalidInputError{Field: "store", Message: "is required"}
	}
	weights := cfg.Weights
	if weights.IsZero() {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	s := &Scorer{
		store:      store,
		weights:    weights,
		workers:    cfg.Workers,
		logger:     cfg.Logger,
		now:        cfg.Now,
		titles:     titles.NewMatcher(cfg.Catalog),
		skills:     skills.NewMatcher(cfg.Catalog),
		location:   location.NewMatcher(cfg.Catalog),
		industry:   industry.NewMatcher(cfg.Catalog),
		experience: experience.NewMatcher(cfg.Catalog),
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.extract = s.extractCandidate
	return s, nil
}

// Weights returns the weights in use.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// SkillTargets returns the weighted skills the job requires.
func (s *Scorer) SkillTargets(job *types.JobOpening) []types.SkillTarget {
	return s.skills.BuildSkillTargets(jobText(job), job.ClientFocus)
}

// RankCandidates scores every candidate in the pool against the job and returns
// those whose composite reaches opts.MinThreshold, best first, at most opts.Limit.
// Ties are broken by candidate ID. A candidate whose scoring panics is logged and
// scored zero instead of failing the pass.
func (s *Scorer) RankCandidates(ctx context.Context, jobID string, opts Options) ([]types.MatchResult, error) {
	log := s.logger.With(zap.String("job_id", jobID))
	log.Debug("ranking stage", zap.String("stage", string(StageIdle)))

	if strings.TrimSpace(jobID) == "" {
		return nil, &InvalidInputError{Field: "job_id", Message: "is required"}
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", jobID, err)
	}
	if job == nil {
		return nil, &NotFoundError{JobID: jobID}
	}

	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	histories, err := s.store.ListEmploymentHistories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employment histories: %w", err)
	}
	byCandidate := make(map[string]*types.EmploymentHistory, len(histories))
	for i := range histories {
		if _, seen := byCandidate[histories[i].CandidateID]; !seen {
			byCandidate[histories[i].CandidateID] = &histories[i]
		}
	}

	log.Debug("ranking stage",
		zap.String("stage", string(StageExtracting)),
		zap.Int("candidates", len(candidates)),
		zap.Int("workers", s.workers))
	extractions, err := s.extractAll(ctx, job, candidates, byCandidate)
	if err != nil {
		return nil, err
	}

	log.Debug("ranking stage", zap.String("stage", string(StageCombining)))
	results := make([]types.MatchResult, len(candidates))
	for i := range candidates {
		results[i] = s.combine(&candidates[i], extractions[i])
	}

	log.Debug("ranking stage", zap.String("stage", string(StageFiltering)), zap.Float64("min_threshold", opts.MinThreshold))
	filtered := filterResults(results, opts.MinThreshold)

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Composite != filtered[j].Composite {
			return filtered[i].Composite > filtered[j].Composite
		}
		return filtered[i].CandidateID < filtered[j].CandidateID
	})
	if len(filtered) > opts.Limit {
		filtered = filtered[:opts.Limit]
	}

	log.Info("ranking complete",
		zap.String("stage", string(StageRanked)),
		zap.Int("scored", len(results)),
		zap.Int("returned", len(filtered)))
	return filtered, nil
}

// extractAll runs the per-candidate extraction on a bounded worker group.
// Cancelling ctx stops scheduling further candidates.
func (s *Scorer) extractAll(
	ctx context.Context,
	job *types.JobOpening,
	candidates []types.CandidateProfile,
	histories map[string]*types.EmploymentHistory,
) ([]extraction, error) {
	targets := s.SkillTargets(job)
	out := make([]extraction, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := range candidates {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out[i] = s.safeExtract(job, targets, &candidates[i], histories[candidates[i].ID])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ranking interrupted: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ranking interrupted: %w", err)
	}
	return out, nil
}

// safeExtract degrades a panicking candidate to a zero extraction.
func (s *Scorer) safeExtract(
	job *types.JobOpening,
	targets []types.SkillTarget,
	c *types.CandidateProfile,
	h *types.EmploymentHistory,
) (ex extraction) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("candidate extraction failed",
				zap.String("job_id", job.ID),
				zap.String("candidate_id", c.ID),
				zap.Any("panic", r))
			ex = extraction{failed: true}
		}
	}()
	return s.extract(job, targets, c, h)
}

func (s *Scorer) extractCandidate(
	job *types.JobOpening,
	targets []types.SkillTarget,
	c *types.CandidateProfile,
	h *types.EmploymentHistory,
) extraction {
	if h == nil {
		h = &types.EmploymentHistory{CandidateID: c.ID}
	}
	return extraction{
		title:     s.titles.MatchTitle(job.Title, h.Titles),
		skills:    s.skills.MatchTargets(targets, h.Skills),
		location:  s.location.MatchLocation(job.City, job.State, job.Mode, c.Location),
		client:    s.industry.MatchClientExperience(job.ClientName, h.Organizations),
		seniority: s.experience.MatchSeniorityLevel(*job, h, c.YearsExperience, s.now()),
	}
}

// combine applies the weights to one candidate's extraction.
func (s *Scorer) combine(c *types.CandidateProfile, ex extraction) types.MatchResult {
	result := types.MatchResult{
		CandidateID:   c.ID,
		CandidateName: c.Name,
		Reasons:       []string{},
	}
	if ex.failed {
		result.Title.Outcome = types.OutcomeNone
		result.Skills.MatchedSkills = []string{}
		result.Location.Outcome = types.OutcomeNone
		return result
	}

	result.Title = ex.title
	result.Skills = ex.skills
	result.Location = ex.location
	result.Client = ex.client
	result.Seniority = ex.seniority
	result.SubScores = types.SubScores{
		Title:     clamp(ex.title.Score),
		Skill:     clamp(ex.skills.Score),
		Location:  clamp(ex.location.Score),
		Client:    clamp(ex.client.Score),
		Seniority: clamp(ex.seniority.Score),
	}
	result.Composite = s.weights.Composite(result.SubScores)
	result.Score = ToScore(result.Composite)
	result.Reasons = generateReasons(&result)
	return result
}

// filterResults keeps results at or above the threshold on both the composite
// and the rounded integer score.
func filterResults(results []types.MatchResult, threshold float64) []types.MatchResult {
	kept := make([]types.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Composite >= threshold && float64(r.Score) >= threshold*100-scoreTolerance {
			kept = append(kept, r)
		}
	}
	return kept
}

func jobText(job *types.JobOpening) string {
	return job.Title + "\n" + job.Description
}
