package main

import (
	"fmt"
	"time"

	apperrors "expert-matching/internal/common/errors"
	"expert-matching/internal/common/validation"
	"expert-matching/internal/matching"
	"expert-matching/internal/models"
	"expert-matching/pkg/registry"

	"github.com/spf13/cobra"
)

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config <file>...",
	Short: "Check scoring config JSON files",
	Long:  "Parses each ScoringConfig file, applying defaults for omitted fields, and checks ranges and that the four weights sum to 1.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidateConfig,
}

var validateRegistryCmd = &cobra.Command{
	Use:   "validate-registry",
	Short: "Check the activity registry",
	Long:  "Checks the activity registry for duplicate or incomplete activities, unparseable timeouts, unknown error codes and input schemas that do not compile.",
	RunE:  runValidateRegistry,
}

var registryPath string

func init() {
	validateRegistryCmd.Flags().StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")

	rootCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(validateRegistryCmd)
}

func runValidateConfig(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		cfg, err := loadScoringConfig(path)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (version %q, weights %.2f)\n", path, cfg.AlgorithmVersion, cfg.WeightSum())
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scoring configs are invalid", failed, len(args))
	}
	return nil
}

// loadScoringConfig reads and validates one config. Configs without a
// version are labelled as simulations.
func loadScoringConfig(path string) (*models.ScoringConfig, error) {
	var cfg models.ScoringConfig
	if err := readJSON(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load scoring config: %w", err)
	}
	if cfg.AlgorithmVersion == "" {
		cfg.AlgorithmVersion = matching.SimulationVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scoring config: %w", err)
	}
	return &cfg, nil
}

func runValidateRegistry(cmd *cobra.Command, _ []string) error {
	reg, err := registry.LoadRegistry(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := validateRegistry(reg); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func validateRegistry(reg *registry.ActivityRegistry) error {
	if len(reg.Activities) == 0 {
		return fmt.Errorf("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, activity := range reg.Activities {
		if activity.ID == "" {
			return fmt.Errorf("activity missing required field: ID")
		}
		if ids[activity.ID] {
			return fmt.Errorf("duplicate activity ID: %s", activity.ID)
		}
		ids[activity.ID] = true

		if activity.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", activity.ID)
		}
		if activity.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", activity.ID)
		}
		if taskTypes[activity.TaskType] {
			return fmt.Errorf("duplicate task type: %s", activity.TaskType)
		}
		taskTypes[activity.TaskType] = true

		if activity.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", activity.ID)
		}
		if activity.Timeout != "" {
			if _, err := time.ParseDuration(activity.Timeout); err != nil {
				return fmt.Errorf("activity %s has invalid timeout %q: %w", activity.ID, activity.Timeout, err)
			}
		}
		for _, code := range activity.ErrorCodes {
			if _, ok := apperrors.BPMNErrorMapping[apperrors.ErrorCode(code)]; !ok {
				return fmt.Errorf("activity %s declares unknown error code %s", activity.ID, code)
			}
		}
	}

	if _, err := validation.NewSchemaValidator(reg); err != nil {
		return err
	}
	return nil
}
