// Package store loads read-only opportunity and candidate snapshots from
// PostgreSQL and Elasticsearch.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/models"

	"github.com/lib/pq"
)

const (
	queryOpportunity = `SELECT id, title, industry_knowledge, region_id, requires_physical_presence, allows_remote_work,
       expected_start_date, expected_end_date, is_flexible
  FROM opportunities
 WHERE id = $1`

	queryOpportunitySkills = `SELECT skill_id, name, category, importance_level, minimum_proficiency_level
  FROM opportunity_skills
 WHERE opportunity_id = $1
 ORDER BY position, skill_id`

	queryOpportunityLanguages = `SELECT language_id, importance_level, minimum_proficiency_level
  FROM opportunity_languages
 WHERE opportunity_id = $1
 ORDER BY position, language_id`

	queryOpportunityDays = `SELECT required_day
  FROM opportunity_required_days
 WHERE opportunity_id = $1
 ORDER BY required_day`
)

// Skill categories stored in opportunity_skills.category.
const (
	CategoryTechnical = "technical"
	CategorySoft      = "soft"
)

// OpportunityStore reads requirement snapshots.
type OpportunityStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewOpportunityStore(db *sql.DB, log logger.Logger) *OpportunityStore {
	return &OpportunityStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "opportunity-store"}),
	}
}

// GetOpportunity returns the requirements for id, or OPPORTUNITY_NOT_FOUND.
func (s *OpportunityStore) GetOpportunity(ctx context.Context, id string) (*models.OpportunityRequirements, error) {
	opp, err := s.loadHeader(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadSkills(ctx, opp); err != nil {
		return nil, queryFailed(err)
	}
	if err := s.loadLanguages(ctx, opp); err != nil {
		return nil, queryFailed(err)
	}
	if err := s.loadRequiredDays(ctx, opp); err != nil {
		return nil, queryFailed(err)
	}

	s.logger.Debug("opportunity loaded", map[string]interface{}{
		"opportunityId":  id,
		"skills":         len(opp.RequiredTechnicalSkills) + len(opp.RequiredSoftSkills),
		"languages":      len(opp.RequiredLanguages),
		"specificDays":   len(opp.Timeline.SpecificRequiredDays),
		"flexible":       opp.Timeline.IsFlexible,
		"hasGeoRequired": opp.GeographicRequirement != nil,
	})
	return opp, nil
}

func queryFailed(err error) error {
	return apperrors.NewQueryExecutionFailedError(string(models.QueryTypeOpportunity), err)
}

func (s *OpportunityStore) loadHeader(ctx context.Context, id string) (*models.OpportunityRequirements, error) {
	var (
		opp       models.OpportunityRequirements
		title     sql.NullString
		industry  []string
		regionID  sql.NullString
		presence  sql.NullBool
		remote    sql.NullBool
		startDate sql.NullTime
		endDate   sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, queryOpportunity, id).Scan(
		&opp.ID, &title, pq.Array(&industry), &regionID, &presence, &remote,
		&startDate, &endDate, &opp.Timeline.IsFlexible,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewOpportunityNotFoundError(id)
	}
	if err != nil {
		return nil, queryFailed(err)
	}

	opp.Title = title.String
	opp.RequiredIndustryKnowledge = industry
	if regionID.Valid && regionID.String != "" {
		opp.GeographicRequirement = &models.GeographicRequirement{
			RegionID:                 regionID.String,
			RequiresPhysicalPresence: presence.Bool,
			AllowsRemoteWork:         remote.Bool,
		}
	}
	if startDate.Valid {
		opp.Timeline.ExpectedStartDate = models.DateOf(startDate.Time)
	}
	if endDate.Valid {
		opp.Timeline.ExpectedEndDate = models.DateOf(endDate.Time)
	}
	return &opp, nil
}

func (s *OpportunityStore) loadSkills(ctx context.Context, opp *models.OpportunityRequirements) error {
	rows, err := s.db.QueryContext(ctx, queryOpportunitySkills, opp.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	opp.RequiredTechnicalSkills = []models.SkillRequirement{}
	opp.RequiredSoftSkills = []models.SkillRequirement{}

	for rows.Next() {
		var (
			req      models.SkillRequirement
			name     sql.NullString
			category string
		)
		if err := rows.Scan(&req.SkillID, &name, &category, &req.ImportanceLevel, &req.MinimumProficiencyLevel); err != nil {
			return fmt.Errorf("scan opportunity skill: %w", err)
		}
		req.Name = name.String

		switch category {
		case CategorySoft:
			opp.RequiredSoftSkills = append(opp.RequiredSoftSkills, req)
		default:
			opp.RequiredTechnicalSkills = append(opp.RequiredTechnicalSkills, req)
		}
	}
	return rows.Err()
}

func (s *OpportunityStore) loadLanguages(ctx context.Context, opp *models.OpportunityRequirements) error {
	rows, err := s.db.QueryContext(ctx, queryOpportunityLanguages, opp.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	opp.RequiredLanguages = []models.LanguageRequirement{}
	for rows.Next() {
		var req models.LanguageRequirement
		if err := rows.Scan(&req.LanguageID, &req.ImportanceLevel, &req.MinimumProficiencyLevel); err != nil {
			return fmt.Errorf("scan opportunity language: %w", err)
		}
		opp.RequiredLanguages = append(opp.RequiredLanguages, req)
	}
	return rows.Err()
}

func (s *OpportunityStore) loadRequiredDays(ctx context.Context, opp *models.OpportunityRequirements) error {
	rows, err := s.db.QueryContext(ctx, queryOpportunityDays, opp.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var d sql.NullTime
		if err := rows.Scan(&d); err != nil {
			return fmt.Errorf("scan required day: %w", err)
		}
		if d.Valid {
			opp.Timeline.SpecificRequiredDays = append(opp.Timeline.SpecificRequiredDays, models.DateOf(d.Time))
		}
	}
	return rows.Err()
}
