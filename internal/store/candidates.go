package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/models"

	"github.com/lib/pq"
)

const DefaultBatchSize = 500

const (
	queryProfiles = `SELECT id, display_name, remote_work_capability
  FROM candidate_profiles
 WHERE id = ANY($1)
 ORDER BY id`

	queryCandidateSkills = `SELECT candidate_id, skill_id, category, proficiency_level, years_of_experience
  FROM candidate_skills
 WHERE candidate_id = ANY($1)
 ORDER BY candidate_id, skill_id`

	queryCandidateLanguages = `SELECT candidate_id, language_id, proficiency_level
  FROM candidate_languages
 WHERE candidate_id = ANY($1)
 ORDER BY candidate_id, language_id`

	queryCandidateRegions = `SELECT candidate_id, region_id, is_willing_to_travel
  FROM candidate_regions
 WHERE candidate_id = ANY($1)
 ORDER BY candidate_id, region_id`

	queryCandidateAvailability = `SELECT candidate_id, start_date, end_date, recurrence, recur_until
  FROM candidate_availability
 WHERE candidate_id = ANY($1)
 ORDER BY candidate_id, start_date`
)

// CandidateStore reads candidate profiles from PostgreSQL.
type CandidateStore struct {
	db        *sql.DB
	batchSize int
	logger    logger.Logger
}

func NewCandidateStore(db *sql.DB, batchSize int, log logger.Logger) *CandidateStore {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &CandidateStore{
		db:        db,
		batchSize: batchSize,
		logger:    log.WithFields(map[string]interface{}{"component": "candidate-store"}),
	}
}

// buildCandidateIDQuery selects active candidates matching any populated
// filter field. An empty filter selects everyone.
func buildCandidateIDQuery(filter models.CandidateFilter) (string, []interface{}) {
	var (
		clauses []string
		args    []interface{}
	)
	next := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(filter.SkillIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM candidate_skills s WHERE s.candidate_id = p.id AND s.skill_id = ANY(%s))",
			next(pq.Array(filter.SkillIDs))))
	}
	if len(filter.LanguageIDs) > 0 {
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM candidate_languages l WHERE l.candidate_id = p.id AND l.language_id = ANY(%s))",
			next(pq.Array(filter.LanguageIDs))))
	}
	if filter.RegionID != "" {
		clauses = append(clauses, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM candidate_regions r WHERE r.candidate_id = p.id AND r.region_id = %s)",
			next(filter.RegionID)))
		if filter.IncludeRemoteCapable {
			clauses = append(clauses, "p.remote_work_capability = true")
		}
	}

	var b strings.Builder
	b.WriteString("SELECT p.id FROM candidate_profiles p WHERE p.is_active = true")
	if len(clauses) > 0 {
		b.WriteString(" AND (")
		b.WriteString(strings.Join(clauses, " OR "))
		b.WriteString(")")
	}
	b.WriteString(" ORDER BY p.id")
	if filter.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(next(filter.Limit))
	}
	return b.String(), args
}

// FindCandidateIDs returns ids of active candidates matching the filter.
func (s *CandidateStore) FindCandidateIDs(ctx context.Context, filter models.CandidateFilter) ([]string, error) {
	query, args := buildCandidateIDQuery(filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(string(models.QueryTypeCandidateIDs), err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError(string(models.QueryTypeCandidateIDs), err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError(string(models.QueryTypeCandidateIDs), err)
	}
	return ids, nil
}

// LoadProfiles loads full profiles for ids in batches, ordered by id. Ids
// without a profile row are dropped.
func (s *CandidateStore) LoadProfiles(ctx context.Context, ids []string) ([]models.CandidateProfile, error) {
	out := make([]models.CandidateProfile, 0, len(ids))
	for lo := 0; lo < len(ids); lo += s.batchSize {
		hi := min(lo+s.batchSize, len(ids))
		batch, err := s.loadBatch(ctx, ids[lo:hi])
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError(string(models.QueryTypeCandidateProfiles), err)
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (s *CandidateStore) loadBatch(ctx context.Context, ids []string) ([]models.CandidateProfile, error) {
	profiles, index, err := s.loadHeaders(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return profiles, nil
	}

	loaders := []func(context.Context, []string, []models.CandidateProfile, map[string]int) error{
		s.loadSkills,
		s.loadLanguages,
		s.loadRegions,
		s.loadAvailability,
	}
	for _, load := range loaders {
		if err := load(ctx, ids, profiles, index); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

func (s *CandidateStore) loadHeaders(ctx context.Context, ids []string) ([]models.CandidateProfile, map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, queryProfiles, pq.Array(ids))
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	profiles := make([]models.CandidateProfile, 0, len(ids))
	index := make(map[string]int, len(ids))
	for rows.Next() {
		var (
			p    models.CandidateProfile
			name sql.NullString
		)
		if err := rows.Scan(&p.ID, &name, &p.RemoteWorkCapability); err != nil {
			return nil, nil, fmt.Errorf("scan candidate profile: %w", err)
		}
		p.DisplayName = name.String
		p.TechnicalSkills = []models.CandidateSkill{}
		p.SoftSkills = []models.CandidateSkill{}
		p.Languages = []models.CandidateLanguage{}
		p.GeographicExpertise = []models.RegionExpertise{}
		p.Availability = []models.AvailabilityRange{}

		index[p.ID] = len(profiles)
		profiles = append(profiles, p)
	}
	return profiles, index, rows.Err()
}

func (s *CandidateStore) loadSkills(ctx context.Context, ids []string, profiles []models.CandidateProfile, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, queryCandidateSkills, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			candidateID string
			category    string
			years       sql.NullFloat64
			sk          models.CandidateSkill
		)
		if err := rows.Scan(&candidateID, &sk.SkillID, &category, &sk.ProficiencyLevel, &years); err != nil {
			return fmt.Errorf("scan candidate skill: %w", err)
		}
		i, ok := index[candidateID]
		if !ok {
			continue
		}
		sk.YearsOfExperience = years.Float64
		if category == CategorySoft {
			profiles[i].SoftSkills = append(profiles[i].SoftSkills, sk)
		} else {
			profiles[i].TechnicalSkills = append(profiles[i].TechnicalSkills, sk)
		}
	}
	return rows.Err()
}

func (s *CandidateStore) loadLanguages(ctx context.Context, ids []string, profiles []models.CandidateProfile, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, queryCandidateLanguages, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			candidateID string
			lang        models.CandidateLanguage
		)
		if err := rows.Scan(&candidateID, &lang.LanguageID, &lang.ProficiencyLevel); err != nil {
			return fmt.Errorf("scan candidate language: %w", err)
		}
		if i, ok := index[candidateID]; ok {
			profiles[i].Languages = append(profiles[i].Languages, lang)
		}
	}
	return rows.Err()
}

func (s *CandidateStore) loadRegions(ctx context.Context, ids []string, profiles []models.CandidateProfile, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, queryCandidateRegions, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			candidateID string
			region      models.RegionExpertise
		)
		if err := rows.Scan(&candidateID, &region.RegionID, &region.IsWillingToTravel); err != nil {
			return fmt.Errorf("scan candidate region: %w", err)
		}
		if i, ok := index[candidateID]; ok {
			profiles[i].GeographicExpertise = append(profiles[i].GeographicExpertise, region)
		}
	}
	return rows.Err()
}

// loadAvailability drops ranges that fail validation so malformed calendar
// rows never reach the engine.
func (s *CandidateStore) loadAvailability(ctx context.Context, ids []string, profiles []models.CandidateProfile, index map[string]int) error {
	rows, err := s.db.QueryContext(ctx, queryCandidateAvailability, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	rejected := 0
	for rows.Next() {
		var (
			candidateID string
			start, end  sql.NullTime
			recurrence  sql.NullString
			until       sql.NullTime
		)
		if err := rows.Scan(&candidateID, &start, &end, &recurrence, &until); err != nil {
			return fmt.Errorf("scan candidate availability: %w", err)
		}
		i, ok := index[candidateID]
		if !ok {
			continue
		}

		r := models.AvailabilityRange{Recurrence: models.Recurrence(recurrence.String)}
		if start.Valid {
			r.Start = models.DateOf(start.Time)
		}
		if end.Valid {
			r.End = models.DateOf(end.Time)
		}
		if until.Valid {
			r.RecurUntil = models.DateOf(until.Time)
		}

		if err := r.Validate(); err != nil {
			rejected++
			s.logger.Warn("availability range rejected", map[string]interface{}{
				"candidateId": candidateID,
				"error":       err.Error(),
			})
			continue
		}
		profiles[i].Availability = append(profiles[i].Availability, r)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if rejected > 0 {
		s.logger.Info("malformed availability ranges dropped", map[string]interface{}{
			"rejected": rejected,
		})
	}
	return nil
}
