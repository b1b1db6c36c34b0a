// Package api exposes synchronous matching over HTTP.
package api

import (
	"context"
	"time"

	"expert-matching/internal/common/logger"
	"expert-matching/internal/matching"
	"expert-matching/internal/models"
	"expert-matching/internal/scoringconfig"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MatchingService is the slice of matching.Service the handlers call.
type MatchingService interface {
	MatchOpportunity(ctx context.Context, opportunityID, version string) *models.MatchResult
	Simulate(ctx context.Context, opportunityID string, cfg models.ScoringConfig) *models.MatchResult
	Evaluate(ctx context.Context, req matching.RunRequest) *models.MatchResult
}

// ReadinessCheck probes one backing dependency.
type ReadinessCheck struct {
	Name  string
	Probe func(ctx context.Context) error
}

type Dependencies struct {
	Service      MatchingService
	Configs      scoringconfig.Provider
	Checks       []ReadinessCheck
	Logger       logger.Logger
	Mode         string
	ReadyTimeout time.Duration
}

func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggingMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	handler := NewHandler(deps)

	r.GET("/health", handler.HealthCheck)
	r.GET("/ready", handler.ReadinessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	{
		v1.POST("/opportunities/:id/matches", handler.MatchOpportunity)
		v1.POST("/opportunities/:id/matches/simulate", handler.SimulateScoringConfig)
		v1.POST("/matches/evaluate", handler.EvaluateSnapshot)
		v1.GET("/scoring-configs/:version", handler.GetScoringConfig)
	}

	return r
}
