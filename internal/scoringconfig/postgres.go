package scoringconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"expert-matching/internal/common/database"
	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/common/logger"
	"expert-matching/internal/common/metrics"
	"expert-matching/internal/models"
)

const (
	cacheKeyPrefix = "scoring:config:"

	queryByVersion = `SELECT algorithm_version, parameters FROM scoring_configs WHERE algorithm_version = $1`
	queryLatest    = `SELECT algorithm_version, parameters FROM scoring_configs WHERE is_active = true ORDER BY created_at DESC LIMIT 1`
)

// PostgresProvider reads configurations from the scoring_configs table.
// Named versions are immutable, so they are cached in process and in Redis;
// "latest" always goes to the database.
type PostgresProvider struct {
	db     *sql.DB
	cache  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger

	mu    sync.RWMutex
	local map[string]models.ScoringConfig
}

// NewPostgresProvider creates a provider. cache may be nil.
func NewPostgresProvider(db *sql.DB, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *PostgresProvider {
	return &PostgresProvider{
		db:     db,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "scoring-config-provider"}),
		local:  make(map[string]models.ScoringConfig),
	}
}

func (p *PostgresProvider) Get(ctx context.Context, version string) (*models.ScoringConfig, error) {
	if IsLatest(version) {
		cfg, err := p.load(ctx, LatestVersion, queryLatest)
		if err != nil {
			return nil, err
		}
		p.remember(cfg)
		return p.copyOf(cfg), nil
	}

	if cfg, ok := p.fromLocal(version); ok {
		metrics.ScoringConfigCache.WithLabelValues("local", "hit").Inc()
		return p.copyOf(cfg), nil
	}
	metrics.ScoringConfigCache.WithLabelValues("local", "miss").Inc()

	if cfg, ok := p.fromRedis(ctx, version); ok {
		p.remember(cfg)
		return p.copyOf(cfg), nil
	}

	cfg, err := p.load(ctx, version, queryByVersion, version)
	if err != nil {
		return nil, err
	}

	p.remember(cfg)
	if p.cache != nil {
		if err := p.cache.SetJSON(ctx, cacheKeyPrefix+version, cfg, p.ttl); err != nil {
			p.logger.Warn("failed to cache scoring config", map[string]interface{}{
				"algorithmVersion": version,
				"error":            err.Error(),
			})
		}
	}
	return p.copyOf(cfg), nil
}

func (p *PostgresProvider) load(ctx context.Context, version, query string, args ...interface{}) (models.ScoringConfig, error) {
	var (
		stored string
		raw    []byte
	)
	err := p.db.QueryRowContext(ctx, query, args...).Scan(&stored, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ScoringConfig{}, apperrors.NewConfigNotFoundError(version)
	}
	if err != nil {
		return models.ScoringConfig{}, apperrors.NewConfigQueryFailedError(version, err)
	}

	var cfg models.ScoringConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return models.ScoringConfig{}, apperrors.NewConfigurationError(
			fmt.Sprintf("algorithmVersion %s: decode parameters: %v", stored, err))
	}
	cfg.AlgorithmVersion = stored

	p.logger.Debug("scoring config loaded", map[string]interface{}{
		"requested":        version,
		"algorithmVersion": stored,
	})
	return cfg, nil
}

func (p *PostgresProvider) fromLocal(version string) (models.ScoringConfig, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cfg, ok := p.local[version]
	return cfg, ok
}

func (p *PostgresProvider) fromRedis(ctx context.Context, version string) (models.ScoringConfig, bool) {
	if p.cache == nil {
		return models.ScoringConfig{}, false
	}

	var cfg models.ScoringConfig
	err := p.cache.GetJSON(ctx, cacheKeyPrefix+version, &cfg)
	switch {
	case err == nil && cfg.AlgorithmVersion == version:
		metrics.ScoringConfigCache.WithLabelValues("redis", "hit").Inc()
		return cfg, true
	case err == nil, errors.Is(err, database.ErrCacheMiss):
		metrics.ScoringConfigCache.WithLabelValues("redis", "miss").Inc()
	default:
		metrics.ScoringConfigCache.WithLabelValues("redis", "error").Inc()
		p.logger.Warn("scoring config cache read failed", map[string]interface{}{
			"algorithmVersion": version,
			"error":            err.Error(),
		})
	}
	return models.ScoringConfig{}, false
}

func (p *PostgresProvider) remember(cfg models.ScoringConfig) {
	p.mu.Lock()
	p.local[cfg.AlgorithmVersion] = cfg
	p.mu.Unlock()
}

func (p *PostgresProvider) copyOf(cfg models.ScoringConfig) *models.ScoringConfig {
	out := cfg.Clone()
	return &out
}
