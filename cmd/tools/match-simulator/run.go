package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"expert-matching/internal/common/logger"
	"expert-matching/internal/common/observability"
	"expert-matching/internal/matching"
	"expert-matching/internal/models"
	"expert-matching/internal/scoringconfig"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Score a candidate snapshot against an opportunity",
	Long:  "Runs the matching engine over an OpportunityRequirements JSON file and a JSON array of CandidateProfile records, printing the MatchResult. Without --config the built-in default scoring config is used.",
	RunE:  runSimulation,
}

var (
	runOpportunity string
	runCandidates  string
	runConfig      string
	runOutput      string
	runBudget      time.Duration
	runWorkers     int
)

func init() {
	runCmd.Flags().StringVarP(&runOpportunity, "opportunity", "p", "", "Path to OpportunityRequirements JSON file (required)")
	runCmd.Flags().StringVarP(&runCandidates, "candidates", "c", "", "Path to CandidateProfile array JSON file (required)")
	runCmd.Flags().StringVar(&runConfig, "config", "", "Path to ScoringConfig JSON file")
	runCmd.Flags().StringVarP(&runOutput, "out", "o", "", "Path to output MatchResult JSON file (default stdout)")
	runCmd.Flags().DurationVar(&runBudget, "budget", 5*time.Second, "Run budget")
	runCmd.Flags().IntVar(&runWorkers, "workers", 0, "Scoring workers (0 means one per CPU)")

	if err := runCmd.MarkFlagRequired("opportunity"); err != nil {
		panic(fmt.Sprintf("failed to mark opportunity flag as required: %v", err))
	}
	if err := runCmd.MarkFlagRequired("candidates"); err != nil {
		panic(fmt.Sprintf("failed to mark candidates flag as required: %v", err))
	}

	rootCmd.AddCommand(runCmd)
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	log := logger.NewStructured(logLevel, "console", "stderr")

	req, err := loadRunRequest(runOpportunity, runCandidates, runConfig)
	if err != nil {
		return err
	}

	engine := matching.NewEngine(matching.Options{
		Workers:   runWorkers,
		RunBudget: runBudget,
	}, scoringconfig.NewDefaultProvider(), log, observability.NewNoop())

	result := engine.Run(contextOrBackground(cmd), req)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal match result: %w", err)
	}

	if runOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
	} else if err := writeFile(runOutput, out); err != nil {
		return err
	}

	if result.Failed() {
		return fmt.Errorf("matching failed: %s: %s", result.ErrorCode, result.ErrorMessage)
	}
	return nil
}

// loadRunRequest reads the snapshots. configPath may be empty.
func loadRunRequest(opportunityPath, candidatesPath, configPath string) (matching.RunRequest, error) {
	var req matching.RunRequest

	var opp models.OpportunityRequirements
	if err := readJSON(opportunityPath, &opp); err != nil {
		return req, fmt.Errorf("failed to load opportunity: %w", err)
	}
	req.Opportunity = &opp

	if err := readJSON(candidatesPath, &req.Candidates); err != nil {
		return req, fmt.Errorf("failed to load candidates: %w", err)
	}
	for i := range req.Candidates {
		if err := req.Candidates[i].Validate(); err != nil {
			return req, fmt.Errorf("invalid candidate in %s: %w", candidatesPath, err)
		}
	}

	if configPath != "" {
		cfg, err := loadScoringConfig(configPath)
		if err != nil {
			return req, err
		}
		req.Config = cfg
		req.AlgorithmVersion = cfg.AlgorithmVersion
	}

	return req, nil
}

func readJSON(path string, dest interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// contextOrBackground keeps run usable when invoked outside Execute.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
