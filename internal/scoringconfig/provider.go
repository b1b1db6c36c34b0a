// Package scoringconfig supplies versioned, immutable scoring parameters.
package scoringconfig

import (
	"context"
	"sort"
	"sync"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/models"
)

// LatestVersion asks a provider for its newest active configuration.
const LatestVersion = "latest"

// Provider resolves an algorithm version to a ScoringConfig. Returned values
// are copies; callers may read them freely but must not expect writes to be
// seen by other runs.
type Provider interface {
	Get(ctx context.Context, version string) (*models.ScoringConfig, error)
}

// IsLatest reports whether version should resolve to the newest config.
func IsLatest(version string) bool {
	return version == "" || version == LatestVersion
}

// StaticProvider serves a fixed set of configurations held in memory.
type StaticProvider struct {
	mu      sync.RWMutex
	configs map[string]models.ScoringConfig
	latest  string
}

// NewStaticProvider registers configs by their AlgorithmVersion. The last
// config in the list answers "latest".
func NewStaticProvider(configs ...models.ScoringConfig) *StaticProvider {
	p := &StaticProvider{configs: make(map[string]models.ScoringConfig, len(configs))}
	for _, c := range configs {
		p.configs[c.AlgorithmVersion] = c.Clone()
		p.latest = c.AlgorithmVersion
	}
	return p
}

// NewDefaultProvider serves only DefaultScoringConfig.
func NewDefaultProvider() *StaticProvider {
	return NewStaticProvider(models.DefaultScoringConfig())
}

func (p *StaticProvider) Get(_ context.Context, version string) (*models.ScoringConfig, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if IsLatest(version) {
		version = p.latest
	}
	cfg, ok := p.configs[version]
	if !ok {
		return nil, apperrors.NewConfigNotFoundError(version)
	}
	out := cfg.Clone()
	return &out, nil
}

// Put adds or replaces cfg and makes it the latest version.
func (p *StaticProvider) Put(cfg models.ScoringConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.configs[cfg.AlgorithmVersion] = cfg.Clone()
	p.latest = cfg.AlgorithmVersion
}

// Versions lists the registered versions in lexical order.
func (p *StaticProvider) Versions() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]string, 0, len(p.configs))
	for v := range p.configs {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
