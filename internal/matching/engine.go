// Package matching scores candidate experts against an opportunity and
// produces a ranked, explained recommendation list.
package matching

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/common/metrics"
	"expert-matching/internal/common/observability"
	"expert-matching/internal/models"
	"expert-matching/internal/scoringconfig"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultChunkSize        = 64
	DefaultSlowRunThreshold = 500 * time.Millisecond
)

// Options tunes the engine's worker pool and run budget.
type Options struct {
	// Workers bounds concurrent chunk evaluation; 0 means runtime.NumCPU().
	Workers   int
	ChunkSize int
	// RunBudget is the wall-clock limit for one run; 0 disables it.
	RunBudget        time.Duration
	SlowRunThreshold time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	if o.SlowRunThreshold <= 0 {
		o.SlowRunThreshold = DefaultSlowRunThreshold
	}
	return o
}

// RunRequest is one opportunity snapshot, one candidate snapshot and either
// an explicit config or a version for the provider to resolve.
type RunRequest struct {
	Opportunity      *models.OpportunityRequirements
	Candidates       []models.CandidateProfile
	AlgorithmVersion string
	Config           *models.ScoringConfig
}

// Engine runs matching. It holds no state across runs.
type Engine struct {
	opts     Options
	provider scoringconfig.Provider
	logger   logger.Logger
	obs      *observability.Observability
}

func NewEngine(opts Options, provider scoringconfig.Provider, log logger.Logger, obs *observability.Observability) *Engine {
	if obs == nil {
		obs = observability.NewNoop()
	}
	return &Engine{
		opts:     opts.withDefaults(),
		provider: provider,
		logger:   log.WithFields(map[string]interface{}{"component": "matching-engine"}),
		obs:      obs,
	}
}

// evaluation is the per-candidate outcome. Each slot of the run's result
// slice is written by exactly one worker.
type evaluation struct {
	rec      models.Recommendation
	excluded bool
	invalid  bool
	skipped  int
}

// Run executes one matching run. Failures are reported in the returned
// result, never as a partial list.
func (e *Engine) Run(ctx context.Context, req RunRequest) *models.MatchResult {
	started := time.Now()

	opportunityID := ""
	if req.Opportunity != nil {
		opportunityID = req.Opportunity.ID
	}
	builder := NewResultBuilder(opportunityID, req.AlgorithmVersion, started)

	ctx, span := e.obs.StartSpan(ctx, "matching.run",
		attribute.String("opportunity.id", opportunityID),
		attribute.Int("candidates", len(req.Candidates)),
	)
	defer span.End()

	log := e.logger.WithFields(map[string]interface{}{"opportunityId": opportunityID})

	cfg, err := e.resolveConfig(ctx, req)
	if err != nil {
		return e.finish(ctx, log, builder.Failed(cfg, err, models.RunStatistics{}), started)
	}
	if req.Opportunity == nil {
		return e.finish(ctx, log, builder.Failed(cfg,
			apperrors.NewOpportunityInvalidError("opportunity requirements missing"), models.RunStatistics{}), started)
	}
	if err := req.Opportunity.Validate(); err != nil {
		return e.finish(ctx, log, builder.Failed(cfg,
			apperrors.NewOpportunityInvalidError(err.Error()), models.RunStatistics{}), started)
	}

	runCtx, cancel := e.withBudget(ctx)
	defer cancel()

	log.Debug("matching run started", map[string]interface{}{
		"candidates":       len(req.Candidates),
		"algorithmVersion": cfg.AlgorithmVersion,
		"workers":          e.opts.Workers,
	})

	evals, err := e.evaluateAll(runCtx, req.Opportunity, req.Candidates, cfg, log)
	stats := statistics(evals)
	if err != nil {
		return e.finish(ctx, log, builder.Failed(cfg, e.interruption(err), stats), started)
	}

	_, rankSpan := e.obs.StartSpan(ctx, "matching.rank")
	recs := make([]models.Recommendation, 0, len(evals))
	for i := range evals {
		if !evals[i].excluded && !evals[i].invalid {
			recs = append(recs, evals[i].rec)
		}
	}
	ranked := Rank(recs, cfg)
	rankSpan.End()

	return e.finish(ctx, log, builder.Completed(cfg, ranked, stats), started)
}

// Fail builds a failed result for errors raised before the engine could run,
// such as an opportunity or candidate lookup failing.
func (e *Engine) Fail(ctx context.Context, opportunityID, algorithmVersion string, started time.Time, err error) *models.MatchResult {
	log := e.logger.WithFields(map[string]interface{}{"opportunityId": opportunityID})
	builder := NewResultBuilder(opportunityID, algorithmVersion, started)
	return e.finish(ctx, log, builder.Failed(nil, err, models.RunStatistics{}), started)
}

func (e *Engine) resolveConfig(ctx context.Context, req RunRequest) (*models.ScoringConfig, error) {
	var cfg *models.ScoringConfig
	if req.Config != nil {
		c := req.Config.Clone()
		cfg = &c
	} else {
		if e.provider == nil {
			return nil, apperrors.NewConfigurationError("no scoring config provider")
		}
		c, err := e.provider.Get(ctx, req.AlgorithmVersion)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	if err := cfg.Validate(); err != nil {
		return cfg, apperrors.NewConfigurationError(err.Error())
	}
	return cfg, nil
}

func (e *Engine) withBudget(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.RunBudget <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.RunBudget)
}

// interruption maps a context error to the run's failure code.
func (e *Engine) interruption(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewMatchingTimeoutError(e.opts.RunBudget)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.NewMatchingCancelledError(err)
	}
	return err
}

// evaluateAll fans candidates out in chunks over a bounded pool and waits for
// every chunk before returning.
func (e *Engine) evaluateAll(ctx context.Context, opp *models.OpportunityRequirements, candidates []models.CandidateProfile, cfg *models.ScoringConfig, log logger.Logger) ([]evaluation, error) {
	evals := make([]evaluation, len(candidates))

	seen := make(map[string]struct{}, len(candidates))
	for i := range candidates {
		id := candidates[i].ID
		if _, dup := seen[id]; id == "" || dup {
			evals[i].invalid = true
			log.Debug("candidate skipped", map[string]interface{}{
				"candidateId": id,
				"reason":      "empty or duplicate id",
			})
			continue
		}
		seen[id] = struct{}{}
	}

	required := opp.Timeline.RequiredDays()
	skills := opp.AllSkills()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for lo := 0; lo < len(candidates); lo += e.opts.ChunkSize {
		if gctx.Err() != nil {
			break
		}
		lo := lo
		hi := min(lo+e.opts.ChunkSize, len(candidates))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if evals[i].invalid {
					continue
				}
				ev, err := evaluateCandidate(gctx, opp, &candidates[i], required, skills, cfg)
				if err != nil {
					return err
				}
				if ev.skipped > 0 {
					log.Debug("malformed availability ranges ignored", map[string]interface{}{
						"candidateId": candidates[i].ID,
						"skipped":     ev.skipped,
					})
				}
				evals[i] = ev
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return evals, err
	}
	if err := ctx.Err(); err != nil {
		return evals, err
	}
	return evals, nil
}

// evaluateCandidate runs the filter and scorers for one candidate, checking
// for cancellation between stages.
func evaluateCandidate(ctx context.Context, opp *models.OpportunityRequirements, c *models.CandidateProfile, required []models.Date, skills []models.SkillRequirement, cfg *models.ScoringConfig) (evaluation, error) {
	if err := ctx.Err(); err != nil {
		return evaluation{}, err
	}
	avail := EvaluateAvailability(c, opp.Timeline, required)
	if avail.Excluded {
		return evaluation{excluded: true, skipped: avail.SkippedRanges}, nil
	}

	if err := ctx.Err(); err != nil {
		return evaluation{}, err
	}
	skillOutcome := ScoreSkills(skills, c, cfg)

	if err := ctx.Err(); err != nil {
		return evaluation{}, err
	}
	langOutcome := ScoreLanguages(opp.RequiredLanguages, c, cfg)
	geo := ScoreGeography(opp.GeographicRequirement, c, cfg)

	scores := SubScores{
		Skills:       skillOutcome.Score,
		Availability: avail.Score,
		Language:     langOutcome.Score,
		Geographic:   geo,
	}
	return evaluation{
		rec:     newRecommendation(c.ID, scores, skillOutcome, langOutcome, avail, cfg),
		skipped: avail.SkippedRanges,
	}, nil
}

func statistics(evals []evaluation) models.RunStatistics {
	var s models.RunStatistics
	for i := range evals {
		switch {
		case evals[i].invalid:
			s.CandidatesInvalid++
		case evals[i].excluded:
			s.CandidatesEvaluated++
			s.CandidatesExcluded++
		case evals[i].rec.CandidateID != "":
			s.CandidatesEvaluated++
		}
	}
	return s
}

// finish records metrics and logs for a built result.
func (e *Engine) finish(ctx context.Context, log logger.Logger, result *models.MatchResult, started time.Time) *models.MatchResult {
	duration := time.Since(started)
	status := string(result.Status)
	stats := result.Statistics

	metrics.MatchingRuns.WithLabelValues(status, result.ErrorCode).Inc()
	metrics.MatchingRunDuration.WithLabelValues(status).Observe(duration.Seconds())
	e.obs.RecordRun(ctx, status, duration, stats.CandidatesEvaluated)

	fields := map[string]interface{}{
		"matchResultId":    result.ID,
		"status":           status,
		"algorithmVersion": result.AlgorithmVersion,
		"evaluated":        stats.CandidatesEvaluated,
		"excluded":         stats.CandidatesExcluded,
		"invalid":          stats.CandidatesInvalid,
		"belowThreshold":   stats.CandidatesBelowThreshold,
		"truncated":        stats.CandidatesTruncated,
		"recommendations":  len(result.Recommendations),
		"durationMs":       result.ProcessingTimeMs,
	}

	if result.Failed() {
		fields["errorCode"] = result.ErrorCode
		fields["errorMessage"] = result.ErrorMessage
		log.Error("matching run failed", fields)
		return result
	}

	metrics.MatchingCandidates.WithLabelValues(metrics.OutcomeExcluded).Add(float64(stats.CandidatesExcluded))
	metrics.MatchingCandidates.WithLabelValues(metrics.OutcomeBelowThreshold).Add(float64(stats.CandidatesBelowThreshold))
	metrics.MatchingCandidates.WithLabelValues(metrics.OutcomeTruncated).Add(float64(stats.CandidatesTruncated))
	metrics.MatchingCandidates.WithLabelValues(metrics.OutcomeRecommended).Add(float64(len(result.Recommendations)))
	metrics.MatchingRecommendations.Observe(float64(len(result.Recommendations)))

	log.Info("matching run completed", fields)

	if duration > e.opts.SlowRunThreshold {
		log.Warn(fmt.Sprintf("matching run exceeded %s", e.opts.SlowRunThreshold), map[string]interface{}{
			"matchResultId": result.ID,
			"durationMs":    duration.Milliseconds(),
		})
	}
	return result
}
