package cli

import (
	"context"
	"fmt"

	"lettercraft/internal/analysis"
	"lettercraft/internal/common"
	"lettercraft/internal/types"

	"github.com/spf13/cobra"
)

var improveCmd = &cobra.Command{
	Use:   "improve [letter-file]",
	Short: "Revise a cover letter from suggestions",
	Long: `Revise an existing cover letter with the primary AI provider.

Pass --suggestion once per change to request. Without suggestions the
improvements found by "lettercraft analyze" are used. With --reanalyze the
revised letter is scored again and the analysis is included in the output.`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(&improveConfig.CommandConfig, getConfigFromContext(cmd.Context()))
	},
	RunE: runImprove,
}

var improveConfig struct {
	common.CommandConfig
	suggestions []string
	reanalyze   bool
	user        string
}

func init() {
	improveCmd.Flags().StringArrayVarP(&improveConfig.suggestions, "suggestion", "s", nil, "Change to apply (repeatable)")
	improveCmd.Flags().BoolVar(&improveConfig.reanalyze, "reanalyze", false, "Analyze the revised letter")
	improveCmd.Flags().StringVar(&improveConfig.user, "user", "", "User id recorded with usage")
	addOutputFlags(improveCmd, &improveConfig.CommandConfig)
}

func runImprove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	letters, closeLetters, err := newLetterService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLetters()

	improveOne := func(ctx context.Context, filename, content string) (types.ImproveLetterOutput, error) {
		input := types.ImproveLetterInput{
			Content:     content,
			Suggestions: improveConfig.suggestions,
			Reanalyze:   improveConfig.reanalyze,
		}
		if err := input.Validate(); err != nil {
			return types.ImproveLetterOutput{}, err
		}
		if len(input.Suggestions) == 0 {
			input.Suggestions = analysis.Analyze(content, "").Improvements
		}

		logger.Info("Starting letter improvement",
			"file", filename,
			"suggestions", len(input.Suggestions),
			"output_format", improveConfig.OutputFormat)

		revised, err := letters.Improve(ctx, improveConfig.user, input.Content, input.Suggestions)
		if err != nil {
			return types.ImproveLetterOutput{}, fmt.Errorf("failed to improve letter: %w", err)
		}

		out := types.ImproveLetterOutput{Content: revised}
		if input.Reanalyze {
			report := letters.Analyze(ctx, improveConfig.user, revised, "")
			out.Analysis = &report
		}
		return out, nil
	}

	files := common.NewFileProcessor(logger).WithMaxSize(cfg.App.MaxFileSize)
	return common.RunFileCommand(ctx, logger, improveConfig.CommandConfig, files, args, 1, improveOne, nil)
}
