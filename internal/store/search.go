package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const DefaultPageSize = 5000

// CandidateSearch pre-filters candidate ids against the candidate index.
// Documents are keyed by candidate id.
type CandidateSearch struct {
	client   *elasticsearch.Client
	index    string
	pageSize int
	logger   logger.Logger
}

func NewCandidateSearch(client *elasticsearch.Client, index string, pageSize int, log logger.Logger) *CandidateSearch {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &CandidateSearch{
		client:   client,
		index:    index,
		pageSize: pageSize,
		logger:   log.WithFields(map[string]interface{}{"component": "candidate-search", "index": index}),
	}
}

type searchHit struct {
	ID   string        `json:"_id"`
	Sort []interface{} `json:"sort"`
}

type searchResponse struct {
	Hits struct {
		Hits []searchHit `json:"hits"`
	} `json:"hits"`
}

// buildCandidateSearchQuery mirrors the SQL filter: any populated field may
// match.
func buildCandidateSearchQuery(filter models.CandidateFilter) map[string]interface{} {
	should := []interface{}{}

	if len(filter.SkillIDs) > 0 {
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{"skills.skillId": filter.SkillIDs},
		})
	}
	if len(filter.LanguageIDs) > 0 {
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{"languages.languageId": filter.LanguageIDs},
		})
	}
	if filter.RegionID != "" {
		should = append(should, map[string]interface{}{
			"term": map[string]interface{}{"regions.regionId": filter.RegionID},
		})
		if filter.IncludeRemoteCapable {
			should = append(should, map[string]interface{}{
				"term": map[string]interface{}{"remoteWorkCapability": true},
			})
		}
	}

	var query map[string]interface{}
	if len(should) == 0 {
		query = map[string]interface{}{"match_all": map[string]interface{}{}}
	} else {
		query = map[string]interface{}{
			"bool": map[string]interface{}{
				"should":               should,
				"minimum_should_match": 1,
			},
		}
	}

	return map[string]interface{}{
		"query":   query,
		"_source": false,
		"sort":    []interface{}{map[string]interface{}{"candidateId": "asc"}},
	}
}

// SearchCandidateIDs returns every id matching filter, up to filter.Limit
// when set. Results are paged by candidate id with search_after.
func (s *CandidateSearch) SearchCandidateIDs(ctx context.Context, filter models.CandidateFilter) ([]string, error) {
	ids := []string{}
	var after []interface{}
	pages := 0

	for {
		size := s.pageSize
		if filter.Limit > 0 {
			remaining := filter.Limit - len(ids)
			if remaining <= 0 {
				break
			}
			if remaining < size {
				size = remaining
			}
		}

		hits, err := s.searchPage(ctx, filter, size, after)
		if err != nil {
			return nil, err
		}
		pages++
		for _, hit := range hits {
			ids = append(ids, hit.ID)
		}

		if len(hits) < size {
			break
		}
		after = hits[len(hits)-1].Sort
		if len(after) == 0 {
			s.logger.Warn("search hits carry no sort values, result may be truncated", map[string]interface{}{
				"hits": len(ids),
			})
			break
		}
	}

	s.logger.Debug("candidate search completed", map[string]interface{}{
		"hits":  len(ids),
		"pages": pages,
	})
	return ids, nil
}

func (s *CandidateSearch) searchPage(ctx context.Context, filter models.CandidateFilter, size int, after []interface{}) ([]searchHit, error) {
	query := buildCandidateSearchQuery(filter)
	query["size"] = size
	if len(after) > 0 {
		query["search_after"] = after
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(string(models.QueryTypeCandidateSearch), err)
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, apperrors.NewSearchQueryFailedError(string(models.QueryTypeCandidateSearch), err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, apperrors.NewIndexNotFoundError(s.index)
	}
	if res.IsError() {
		return nil, apperrors.NewSearchQueryFailedError(
			string(models.QueryTypeCandidateSearch),
			fmt.Errorf("search returned %s", res.Status()),
		)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, apperrors.NewSearchQueryFailedError(string(models.QueryTypeCandidateSearch), err)
	}
	return parsed.Hits.Hits, nil
}
