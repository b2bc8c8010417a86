package cli

import (
	"context"
	"path/filepath"

	"lettercraft/internal/analysis"
	"lettercraft/internal/common"
	"lettercraft/internal/jobsource"
	"lettercraft/internal/types"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [letter-file...]",
	Short: "Score cover letters for readability, keywords and structure",
	Long: `Analyze one or more cover letters without calling an AI provider.

Each letter gets an overall score with readability (Flesch), keyword
coverage against an optional job posting, sentiment and structure checks,
plus a list of strengths and improvements. Use "-" to read from stdin.
Several files are analyzed concurrently and reported together.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(&analyzeConfig.CommandConfig, getConfigFromContext(cmd.Context()))
	},
	RunE: runAnalyze,
}

var analyzeConfig struct {
	common.CommandConfig
	job         string
	concurrency int
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeConfig.job, "job", "j", "", "Job posting to match keywords against: URL, file path or text")
	analyzeCmd.Flags().IntVar(&analyzeConfig.concurrency, "concurrency", 4, "Maximum letters analyzed at once")
	addOutputFlags(analyzeCmd, &analyzeConfig.CommandConfig)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	var jobDescription string
	if analyzeConfig.job != "" {
		text, err := jobsource.NewResolver(cfg.JobSource, logger).Fetch(ctx, analyzeConfig.job)
		if err != nil {
			return err
		}
		jobDescription = text
	}

	logger.Info("Starting letter analysis",
		"files", len(args),
		"with_job", jobDescription != "",
		"output_format", analyzeConfig.OutputFormat)

	analyzeOne := func(_ context.Context, filename, content string) (types.LetterAnalysis, error) {
		logger.Debug("Analyzing letter", "file", filename, "chars", len(content))
		return analysis.Analyze(content, jobDescription), nil
	}

	files := common.NewFileProcessor(logger).WithMaxSize(cfg.App.MaxFileSize)
	return common.RunFileCommand(ctx, logger, analyzeConfig.CommandConfig, files, args,
		analyzeConfig.concurrency, analyzeOne, mergeReports)
}

// mergeReports pairs each analysis with the base name of its file
func mergeReports(filenames []string, results []types.LetterAnalysis) any {
	reports := make([]types.AnalysisReport, len(results))
	for i := range results {
		reports[i] = types.AnalysisReport{Source: filepath.Base(filenames[i]), Analysis: results[i]}
	}
	return reports
}
