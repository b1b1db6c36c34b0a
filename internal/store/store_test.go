package store

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (sqlmock.Sqlmock, func() *OpportunityStore, func(batch int) *CandidateStore) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logger.NewTestLogger(t)
	return mock,
		func() *OpportunityStore { return NewOpportunityStore(db, log) },
		func(batch int) *CandidateStore { return NewCandidateStore(db, batch, log) }
}

func q(query string) string { return regexp.QuoteMeta(query) }

func codeOf(t *testing.T, err error) apperrors.ErrorCode {
	t.Helper()
	stdErr, ok := apperrors.AsStandardError(err)
	require.True(t, ok, "expected StandardError, got %v", err)
	return stdErr.Code
}

func utc(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ==========================
// Opportunities
// ==========================

func TestGetOpportunity_Success(t *testing.T) {
	mock, opps, _ := newMock(t)

	mock.ExpectQuery(q(queryOpportunity)).WithArgs("opp-1").WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "title", "industry_knowledge", "region_id", "requires_physical_presence",
			"allows_remote_work", "expected_start_date", "expected_end_date", "is_flexible",
		}).AddRow("opp-1", "Cloud migration", "{cloud,finance}", "EU", true, false,
			utc(2025, 3, 3), utc(2025, 3, 7), false))

	mock.ExpectQuery(q(queryOpportunitySkills)).WithArgs("opp-1").WillReturnRows(
		sqlmock.NewRows([]string{"skill_id", "name", "category", "importance_level", "minimum_proficiency_level"}).
			AddRow("aws", "AWS", "technical", "MustHave", "Advanced").
			AddRow("comm", nil, "soft", "NiceToHave", "Intermediate"))

	mock.ExpectQuery(q(queryOpportunityLanguages)).WithArgs("opp-1").WillReturnRows(
		sqlmock.NewRows([]string{"language_id", "importance_level", "minimum_proficiency_level"}).
			AddRow("en", "MustHave", "Fluent"))

	mock.ExpectQuery(q(queryOpportunityDays)).WithArgs("opp-1").WillReturnRows(
		sqlmock.NewRows([]string{"required_day"}))

	opp, err := opps().GetOpportunity(context.Background(), "opp-1")
	require.NoError(t, err)

	assert.Equal(t, "Cloud migration", opp.Title)
	assert.Equal(t, []string{"cloud", "finance"}, opp.RequiredIndustryKnowledge)
	require.NotNil(t, opp.GeographicRequirement)
	assert.Equal(t, "EU", opp.GeographicRequirement.RegionID)
	assert.True(t, opp.GeographicRequirement.RequiresPhysicalPresence)
	assert.False(t, opp.GeographicRequirement.AllowsRemoteWork)

	require.Len(t, opp.RequiredTechnicalSkills, 1)
	assert.Equal(t, models.MustHave, opp.RequiredTechnicalSkills[0].ImportanceLevel)
	assert.Equal(t, models.SkillAdvanced, opp.RequiredTechnicalSkills[0].MinimumProficiencyLevel)
	require.Len(t, opp.RequiredSoftSkills, 1)
	assert.Equal(t, "comm", opp.RequiredSoftSkills[0].SkillID)
	require.Len(t, opp.RequiredLanguages, 1)
	assert.Equal(t, models.LanguageFluent, opp.RequiredLanguages[0].MinimumProficiencyLevel)

	assert.Equal(t, models.NewDate(2025, time.March, 3), opp.Timeline.ExpectedStartDate)
	assert.Equal(t, models.NewDate(2025, time.March, 7), opp.Timeline.ExpectedEndDate)
	assert.Empty(t, opp.Timeline.SpecificRequiredDays)
	require.NoError(t, opp.Validate())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOpportunity_NoRegionLeavesGeographyUnset(t *testing.T) {
	mock, opps, _ := newMock(t)

	mock.ExpectQuery(q(queryOpportunity)).WithArgs("opp-2").WillReturnRows(
		sqlmock.NewRows([]string{
			"id", "title", "industry_knowledge", "region_id", "requires_physical_presence",
			"allows_remote_work", "expected_start_date", "expected_end_date", "is_flexible",
		}).AddRow("opp-2", nil, nil, nil, nil, nil, nil, nil, true))
	mock.ExpectQuery(q(queryOpportunitySkills)).WillReturnRows(
		sqlmock.NewRows([]string{"skill_id", "name", "category", "importance_level", "minimum_proficiency_level"}))
	mock.ExpectQuery(q(queryOpportunityLanguages)).WillReturnRows(
		sqlmock.NewRows([]string{"language_id", "importance_level", "minimum_proficiency_level"}))
	mock.ExpectQuery(q(queryOpportunityDays)).WillReturnRows(
		sqlmock.NewRows([]string{"required_day"}).
			AddRow(utc(2025, 4, 1)).
			AddRow(utc(2025, 4, 3)))

	opp, err := opps().GetOpportunity(context.Background(), "opp-2")
	require.NoError(t, err)

	assert.Nil(t, opp.GeographicRequirement)
	assert.True(t, opp.Timeline.IsFlexible)
	assert.NotNil(t, opp.RequiredTechnicalSkills)
	assert.NotNil(t, opp.RequiredLanguages)
	assert.Equal(t, []models.Date{
		models.NewDate(2025, time.April, 1),
		models.NewDate(2025, time.April, 3),
	}, opp.Timeline.SpecificRequiredDays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOpportunity_Failures(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock sqlmock.Sqlmock)
		wantCode apperrors.ErrorCode
	}{
		{
			name: "not found",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(q(queryOpportunity)).WillReturnRows(sqlmock.NewRows([]string{"id"}))
			},
			wantCode: apperrors.ErrCodeOpportunityNotFound,
		},
		{
			name: "header query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(q(queryOpportunity)).WillReturnError(errors.New("connection reset"))
			},
			wantCode: apperrors.ErrCodeQueryExecutionFailed,
		},
		{
			name: "skills query error",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(q(queryOpportunity)).WillReturnRows(
					sqlmock.NewRows([]string{
						"id", "title", "industry_knowledge", "region_id", "requires_physical_presence",
						"allows_remote_work", "expected_start_date", "expected_end_date", "is_flexible",
					}).AddRow("opp-3", "t", nil, nil, nil, nil, utc(2025, 1, 1), utc(2025, 1, 2), false))
				mock.ExpectQuery(q(queryOpportunitySkills)).WillReturnError(errors.New("timeout"))
			},
			wantCode: apperrors.ErrCodeQueryExecutionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, opps, _ := newMock(t)
			tt.setup(mock)

			_, err := opps().GetOpportunity(context.Background(), "opp-3")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, codeOf(t, err))
		})
	}
}

// ==========================
// Candidate ids
// ==========================

func TestBuildCandidateIDQuery(t *testing.T) {
	tests := []struct {
		name      string
		filter    models.CandidateFilter
		wantParts []string
		notParts  []string
		wantArgs  int
	}{
		{
			name:     "empty filter selects everyone",
			filter:   models.CandidateFilter{},
			notParts: []string{"EXISTS", "LIMIT"},
			wantArgs: 0,
		},
		{
			name:      "skills and languages are alternatives",
			filter:    models.CandidateFilter{SkillIDs: []string{"aws"}, LanguageIDs: []string{"en"}},
			wantParts: []string{"s.skill_id = ANY($1)", " OR ", "l.language_id = ANY($2)"},
			notParts:  []string{"remote_work_capability"},
			wantArgs:  2,
		},
		{
			name:      "region with remote capable and limit",
			filter:    models.CandidateFilter{RegionID: "EU", IncludeRemoteCapable: true, Limit: 10},
			wantParts: []string{"r.region_id = $1", "p.remote_work_capability = true", "LIMIT $2"},
			wantArgs:  2,
		},
		{
			name:     "remote capable alone is ignored without a region",
			filter:   models.CandidateFilter{IncludeRemoteCapable: true},
			notParts: []string{"remote_work_capability"},
			wantArgs: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildCandidateIDQuery(tt.filter)
			assert.Contains(t, query, "p.is_active = true")
			assert.Contains(t, query, "ORDER BY p.id")
			for _, part := range tt.wantParts {
				assert.Contains(t, query, part)
			}
			for _, part := range tt.notParts {
				assert.NotContains(t, query, part)
			}
			assert.Len(t, args, tt.wantArgs)
		})
	}
}

func TestFindCandidateIDs(t *testing.T) {
	mock, _, cands := newMock(t)

	filter := models.CandidateFilter{SkillIDs: []string{"aws", "gcp"}}
	query, _ := buildCandidateIDQuery(filter)
	mock.ExpectQuery(q(query)).WithArgs(sqlmock.AnyArg()).WillReturnRows(
		sqlmock.NewRows([]string{"id"}).AddRow("c-1").AddRow("c-2"))

	ids, err := cands(0).FindCandidateIDs(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1", "c-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindCandidateIDs_QueryError(t *testing.T) {
	mock, _, cands := newMock(t)
	mock.ExpectQuery("SELECT p.id").WillReturnError(errors.New("boom"))

	_, err := cands(0).FindCandidateIDs(context.Background(), models.CandidateFilter{})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, codeOf(t, err))
}

// ==========================
// Profiles
// ==========================

func expectProfileBatch(mock sqlmock.Sqlmock, headers *sqlmock.Rows, skills, langs, regions, avail *sqlmock.Rows) {
	mock.ExpectQuery(q(queryProfiles)).WithArgs(sqlmock.AnyArg()).WillReturnRows(headers)
	mock.ExpectQuery(q(queryCandidateSkills)).WithArgs(sqlmock.AnyArg()).WillReturnRows(skills)
	mock.ExpectQuery(q(queryCandidateLanguages)).WithArgs(sqlmock.AnyArg()).WillReturnRows(langs)
	mock.ExpectQuery(q(queryCandidateRegions)).WithArgs(sqlmock.AnyArg()).WillReturnRows(regions)
	mock.ExpectQuery(q(queryCandidateAvailability)).WithArgs(sqlmock.AnyArg()).WillReturnRows(avail)
}

func headerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "display_name", "remote_work_capability"})
}

func skillRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"candidate_id", "skill_id", "category", "proficiency_level", "years_of_experience"})
}

func languageRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"candidate_id", "language_id", "proficiency_level"})
}

func regionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"candidate_id", "region_id", "is_willing_to_travel"})
}

func availabilityRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"candidate_id", "start_date", "end_date", "recurrence", "recur_until"})
}

func TestLoadProfiles_AssemblesAndDropsMalformedRanges(t *testing.T) {
	mock, _, cands := newMock(t)

	expectProfileBatch(mock,
		headerRows().
			AddRow("c-1", "Ada", true).
			AddRow("c-2", nil, false),
		skillRows().
			AddRow("c-1", "aws", "technical", "Expert", 8.5).
			AddRow("c-1", "comm", "soft", "Advanced", nil).
			AddRow("ghost", "aws", "technical", "Expert", 1.0),
		languageRows().
			AddRow("c-2", "de", "Native"),
		regionRows().
			AddRow("c-1", "EU", true),
		availabilityRows().
			AddRow("c-1", utc(2025, 3, 3), utc(2025, 3, 7), "weekly", nil).
			AddRow("c-1", utc(2025, 3, 10), utc(2025, 3, 1), nil, nil).
			AddRow("c-2", utc(2025, 3, 3), utc(2025, 3, 31), "none", utc(2025, 12, 31)),
	)

	profiles, err := cands(0).LoadProfiles(context.Background(), []string{"c-1", "c-2", "c-missing"})
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	ada := profiles[0]
	assert.Equal(t, "c-1", ada.ID)
	assert.Equal(t, "Ada", ada.DisplayName)
	assert.True(t, ada.RemoteWorkCapability)
	require.Len(t, ada.TechnicalSkills, 1)
	assert.Equal(t, 8.5, ada.TechnicalSkills[0].YearsOfExperience)
	require.Len(t, ada.SoftSkills, 1)
	assert.Equal(t, models.SkillAdvanced, ada.SoftSkills[0].ProficiencyLevel)
	assert.Equal(t, []models.RegionExpertise{{RegionID: "EU", IsWillingToTravel: true}}, ada.GeographicExpertise)
	require.Len(t, ada.Availability, 1, "range ending before it starts is dropped")
	assert.Equal(t, models.RecurrenceWeekly, ada.Availability[0].Recurrence)

	other := profiles[1]
	assert.Empty(t, other.DisplayName)
	assert.NotNil(t, other.TechnicalSkills)
	assert.Empty(t, other.GeographicExpertise)
	assert.Equal(t, []models.CandidateLanguage{{LanguageID: "de", ProficiencyLevel: models.LanguageNative}}, other.Languages)
	require.Len(t, other.Availability, 1)
	assert.Equal(t, models.NewDate(2025, time.December, 31), other.Availability[0].RecurUntil)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadProfiles_Batches(t *testing.T) {
	mock, _, cands := newMock(t)

	expectProfileBatch(mock, headerRows().AddRow("c-1", "A", false),
		skillRows(), languageRows(), regionRows(), availabilityRows())
	expectProfileBatch(mock, headerRows().AddRow("c-2", "B", false),
		skillRows(), languageRows(), regionRows(), availabilityRows())

	profiles, err := cands(1).LoadProfiles(context.Background(), []string{"c-1", "c-2"})
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "c-2", profiles[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadProfiles_EmptyBatchSkipsDetailQueries(t *testing.T) {
	mock, _, cands := newMock(t)
	mock.ExpectQuery(q(queryProfiles)).WillReturnRows(headerRows())

	profiles, err := cands(0).LoadProfiles(context.Background(), []string{"gone"})
	require.NoError(t, err)
	assert.Empty(t, profiles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadProfiles_QueryError(t *testing.T) {
	mock, _, cands := newMock(t)
	mock.ExpectQuery(q(queryProfiles)).WillReturnRows(headerRows().AddRow("c-1", "A", false))
	mock.ExpectQuery(q(queryCandidateSkills)).WillReturnError(errors.New("disk full"))

	_, err := cands(0).LoadProfiles(context.Background(), []string{"c-1"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeQueryExecutionFailed, codeOf(t, err))
}

// ==========================
// Search
// ==========================

func newSearchServer(t *testing.T, status int, body string, captured *map[string]interface{}) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil && r.Body != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestBuildCandidateSearchQuery(t *testing.T) {
	body := buildCandidateSearchQuery(models.CandidateFilter{})
	assert.Contains(t, body["query"], "match_all")
	assert.Equal(t, false, body["_source"])

	body = buildCandidateSearchQuery(models.CandidateFilter{
		SkillIDs:             []string{"aws"},
		RegionID:             "EU",
		IncludeRemoteCapable: true,
	})
	boolQuery := body["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["should"], 3)
	assert.Equal(t, 1, boolQuery["minimum_should_match"])
}

func TestSearchCandidateIDs_Success(t *testing.T) {
	var captured map[string]interface{}
	client := newSearchServer(t, http.StatusOK,
		`{"hits":{"total":{"value":2},"hits":[{"_id":"c-1"},{"_id":"c-7"}]}}`, &captured)

	search := NewCandidateSearch(client, "candidates", 100, logger.NewTestLogger(t))
	ids, err := search.SearchCandidateIDs(context.Background(), models.CandidateFilter{LanguageIDs: []string{"en"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"c-1", "c-7"}, ids)
	assert.Contains(t, captured, "query")
}

func newPagedSearchServer(t *testing.T, ids []string, requests *[]map[string]interface{}) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		*requests = append(*requests, body)

		start := 0
		if after, ok := body["search_after"].([]interface{}); ok {
			for i, id := range ids {
				if id == after[0] {
					start = i + 1
				}
			}
		}
		end := start + int(body["size"].(float64))
		if end > len(ids) {
			end = len(ids)
		}

		hits := make([]map[string]interface{}, 0, end-start)
		for _, id := range ids[start:end] {
			hits = append(hits, map[string]interface{}{"_id": id, "sort": []string{id}})
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"hits": map[string]interface{}{"hits": hits}})
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestSearchCandidateIDs_PagesPastPageSize(t *testing.T) {
	var requests []map[string]interface{}
	client := newPagedSearchServer(t, []string{"c-1", "c-2", "c-3", "c-4", "c-5"}, &requests)

	search := NewCandidateSearch(client, "candidates", 2, logger.NewTestLogger(t))
	ids, err := search.SearchCandidateIDs(context.Background(), models.CandidateFilter{})
	require.NoError(t, err)

	assert.Equal(t, []string{"c-1", "c-2", "c-3", "c-4", "c-5"}, ids)
	require.Len(t, requests, 3)
	assert.NotContains(t, requests[0], "search_after")
	assert.Equal(t, []interface{}{"c-2"}, requests[1]["search_after"])
	assert.Equal(t, []interface{}{"c-4"}, requests[2]["search_after"])
}

func TestSearchCandidateIDs_StopsAtLimit(t *testing.T) {
	var requests []map[string]interface{}
	client := newPagedSearchServer(t, []string{"c-1", "c-2", "c-3", "c-4", "c-5"}, &requests)

	search := NewCandidateSearch(client, "candidates", 2, logger.NewTestLogger(t))
	ids, err := search.SearchCandidateIDs(context.Background(), models.CandidateFilter{Limit: 3})
	require.NoError(t, err)

	assert.Equal(t, []string{"c-1", "c-2", "c-3"}, ids)
	require.Len(t, requests, 2)
	assert.Equal(t, float64(1), requests[1]["size"])
}

func TestSearchCandidateIDs_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode apperrors.ErrorCode
	}{
		{"missing index", http.StatusNotFound, `{"error":{"type":"index_not_found_exception"}}`, apperrors.ErrCodeIndexNotFound},
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, apperrors.ErrCodeSearchQueryFailed},
		{"bad payload", http.StatusOK, `not json`, apperrors.ErrCodeSearchQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newSearchServer(t, tt.status, tt.body, nil)
			search := NewCandidateSearch(client, "candidates", 0, logger.NewTestLogger(t))

			_, err := search.SearchCandidateIDs(context.Background(), models.CandidateFilter{})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, codeOf(t, err))
		})
	}
}

// ==========================
// Repository
// ==========================

type stubSearch struct {
	ids   []string
	err   error
	calls int
}

func (s *stubSearch) SearchCandidateIDs(context.Context, models.CandidateFilter) ([]string, error) {
	s.calls++
	return s.ids, s.err
}

func TestCandidateRepository_UsesSearchIDs(t *testing.T) {
	mock, _, cands := newMock(t)
	search := &stubSearch{ids: []string{"c-1"}}

	expectProfileBatch(mock, headerRows().AddRow("c-1", "A", true),
		skillRows(), languageRows(), regionRows(), availabilityRows())

	repo := NewCandidateRepository(cands(0), search, logger.NewTestLogger(t))
	profiles, err := repo.FindCandidates(context.Background(), models.CandidateFilter{SkillIDs: []string{"aws"}})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, 1, search.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepository_FallsBackToPostgres(t *testing.T) {
	mock, _, cands := newMock(t)
	search := &stubSearch{err: apperrors.NewIndexNotFoundError("candidates")}

	mock.ExpectQuery("SELECT p.id").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("c-9"))
	expectProfileBatch(mock, headerRows().AddRow("c-9", "Z", false),
		skillRows(), languageRows(), regionRows(), availabilityRows())

	repo := NewCandidateRepository(cands(0), search, logger.NewTestLogger(t))
	profiles, err := repo.FindCandidates(context.Background(), models.CandidateFilter{})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "c-9", profiles[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCandidateRepository_NoMatchesSkipsProfileLoad(t *testing.T) {
	mock, _, cands := newMock(t)
	mock.ExpectQuery("SELECT p.id").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	repo := NewCandidateRepository(cands(0), nil, logger.NewTestLogger(t))
	profiles, err := repo.FindCandidates(context.Background(), models.CandidateFilter{RegionID: "EU"})
	require.NoError(t, err)
	assert.NotNil(t, profiles)
	assert.Empty(t, profiles)
	assert.NoError(t, mock.ExpectationsWereMet())
}
