package cli

import (
	"context"
	"fmt"

	"lettercraft/internal/ai"
	"lettercraft/internal/common"
	"lettercraft/internal/config"
	"lettercraft/internal/errors"
	"lettercraft/internal/formatters"
	"lettercraft/internal/types"
	"lettercraft/internal/usage"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// addOutputFlags registers -o and --format on cmd, with format completion
func addOutputFlags(cmd *cobra.Command, target *common.CommandConfig) {
	cmd.Flags().StringVarP(&target.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().StringVar(&target.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return formatters.GlobalRegistry.GetSupportedFormats(), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolveOutputFormat applies the configured default and checks the format is supported
func resolveOutputFormat(target *common.CommandConfig, cfg *config.Config) error {
	if target.OutputFormat == "" {
		target.OutputFormat = cfg.App.DefaultFormat
	}
	target.OutputFormat = common.NormalizeFormat(target.OutputFormat)
	return common.ValidateOutputFormat(target.OutputFormat, cfg.App.SupportedFormats)
}

// newLetterService builds the AI orchestrator for one CLI invocation. The
// returned func closes the usage store.
func newLetterService(ctx context.Context, cfg *config.Config, logger *errors.Logger) (*ai.Orchestrator, func(), error) {
	tracker, closeTracker, err := usage.NewTracker(ctx, cfg.Usage.DatabaseURL, cfg.Usage.EnsureSchema, logger)
	if err != nil {
		return nil, nil, err
	}

	prompts, err := config.NewPromptStore(cfg.AI.CustomPrompts)
	if err != nil {
		closeTracker()
		return nil, nil, err
	}

	orchestrator, err := ai.NewOrchestratorFromConfig(ctx, cfg.AI, prompts, tracker, nil, logger)
	if err != nil {
		closeTracker()
		return nil, nil, fmt.Errorf("failed to create AI service: %w", err)
	}
	return orchestrator, closeTracker, nil
}

// loadProfile reads a YAML (or JSON) candidate profile
func loadProfile(files *common.FileProcessor, path string) (types.CandidateProfile, error) {
	var profile types.CandidateProfile
	if path == "" {
		return profile, nil
	}
	content, err := files.ValidateAndRead(path)
	if err != nil {
		return profile, err
	}
	if err := yaml.Unmarshal([]byte(content), &profile); err != nil {
		return profile, errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to parse profile %s", path), err)
	}
	return profile, nil
}
