package store

import (
	"context"

	"expert-matching/internal/common/logger"
	"expert-matching/internal/models"
)

// CandidateIDSearcher is the optional search pre-filter.
type CandidateIDSearcher interface {
	SearchCandidateIDs(ctx context.Context, filter models.CandidateFilter) ([]string, error)
}

// CandidateRepository resolves a filter to full profiles. The search index
// narrows the id set when configured; PostgreSQL remains the source of
// truth for the profiles themselves.
type CandidateRepository struct {
	store  *CandidateStore
	search CandidateIDSearcher
	logger logger.Logger
}

// NewCandidateRepository accepts a nil search, in which case ids come from
// PostgreSQL only.
func NewCandidateRepository(store *CandidateStore, search CandidateIDSearcher, log logger.Logger) *CandidateRepository {
	return &CandidateRepository{
		store:  store,
		search: search,
		logger: log.WithFields(map[string]interface{}{"component": "candidate-repository"}),
	}
}

func (r *CandidateRepository) FindCandidates(ctx context.Context, filter models.CandidateFilter) ([]models.CandidateProfile, error) {
	ids, err := r.candidateIDs(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.CandidateProfile{}, nil
	}
	return r.store.LoadProfiles(ctx, ids)
}

func (r *CandidateRepository) candidateIDs(ctx context.Context, filter models.CandidateFilter) ([]string, error) {
	if r.search != nil {
		ids, err := r.search.SearchCandidateIDs(ctx, filter)
		if err == nil {
			return ids, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		r.logger.Warn("candidate search failed, falling back to postgres", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return r.store.FindCandidateIDs(ctx, filter)
}
