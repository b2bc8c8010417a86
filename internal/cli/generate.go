package cli

import (
	"fmt"
	"strings"

	"lettercraft/internal/common"
	"lettercraft/internal/jobsource"
	"lettercraft/internal/types"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a cover letter for a job posting",
	Long: `Generate a cover letter tailored to a job posting and a candidate profile.

The job posting given with --job may be a URL, a path to a text file or the
text itself. The candidate profile is a YAML or JSON file with firstName,
lastName, title, experienceLevel, skills, careerObjectives and bio.

Use --interactive to be prompted for missing fields and to pick a tone.`,
	Args: cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return resolveOutputFormat(&generateConfig.CommandConfig, getConfigFromContext(cmd.Context()))
	},
	RunE: runGenerate,
}

var generateConfig struct {
	common.CommandConfig
	job         string
	title       string
	company     string
	tone        string
	industry    string
	profile     string
	notes       string
	user        string
	interactive bool
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&generateConfig.job, "job", "j", "", "Job posting: URL, file path or text")
	f.StringVarP(&generateConfig.title, "title", "t", "", "Job title")
	f.StringVarP(&generateConfig.company, "company", "c", "", "Company name")
	f.StringVar(&generateConfig.tone, "tone", "", "Tone: professional, enthusiastic, formal, creative or casual")
	f.StringVar(&generateConfig.industry, "industry", "", "Industry sector, adds sector specific guidance")
	f.StringVar(&generateConfig.profile, "profile", "", "Candidate profile file (YAML or JSON)")
	f.StringVar(&generateConfig.notes, "notes", "", "Personal notes to weave into the letter")
	f.StringVar(&generateConfig.user, "user", "", "User id recorded with usage")
	f.BoolVarP(&generateConfig.interactive, "interactive", "i", false, "Prompt for missing fields")
	addOutputFlags(generateCmd, &generateConfig.CommandConfig)

	_ = generateCmd.RegisterFlagCompletionFunc("tone", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		names := make([]string, len(types.Tones))
		for i, t := range types.Tones {
			names[i] = strings.ToLower(string(t))
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)

	if generateConfig.interactive {
		if err := promptMissingFields(); err != nil {
			return err
		}
	}

	files := common.NewFileProcessor(logger).WithMaxSize(cfg.App.MaxFileSize)
	profile, err := loadProfile(files, generateConfig.profile)
	if err != nil {
		return err
	}
	if generateConfig.user != "" {
		profile.UserID = generateConfig.user
	}

	jobDescription, err := jobsource.NewResolver(cfg.JobSource, logger).Fetch(ctx, generateConfig.job)
	if err != nil {
		return err
	}

	prompt, err := buildLetterPrompt(profile, jobDescription)
	if err != nil {
		return err
	}

	letters, closeLetters, err := newLetterService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLetters()

	logger.Info("Starting cover letter generation",
		"job_chars", len(jobDescription),
		"tone", prompt.Tone,
		"output_format", generateConfig.OutputFormat)

	letter, err := letters.Generate(ctx, prompt)
	if err != nil {
		return fmt.Errorf("failed to generate cover letter: %w", err)
	}

	if err := common.NewOutputHandler(logger).HandleOutput(letter, generateConfig.CommandConfig); err != nil {
		return err
	}
	logger.Info("Cover letter generated", "provider", letter.Provider, "words", letter.WordCount)
	return nil
}

// buildLetterPrompt assembles and validates the prompt from the generate flags
func buildLetterPrompt(profile types.CandidateProfile, jobDescription string) (types.LetterPrompt, error) {
	tone, err := types.ParseTone(generateConfig.tone)
	if err != nil {
		return types.LetterPrompt{}, err
	}
	prompt := types.LetterPrompt{
		JobTitle:       strings.TrimSpace(generateConfig.title),
		CompanyName:    strings.TrimSpace(generateConfig.company),
		JobDescription: jobDescription,
		Profile:        profile,
		Tone:           tone,
		PersonalNotes:  generateConfig.notes,
		Industry:       generateConfig.industry,
	}
	if err := prompt.Validate(); err != nil {
		return types.LetterPrompt{}, err
	}
	return prompt, nil
}

// promptMissingFields asks for the job fields left empty on the command line and for the tone
func promptMissingFields() error {
	required := func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("value is required")
		}
		return nil
	}

	ask := func(label string, target *string) error {
		if *target != "" {
			return nil
		}
		value, err := (&promptui.Prompt{Label: label, Validate: required}).Run()
		if err != nil {
			return fmt.Errorf("prompt %q: %w", label, err)
		}
		*target = value
		return nil
	}

	if err := ask("Job title", &generateConfig.title); err != nil {
		return err
	}
	if err := ask("Company", &generateConfig.company); err != nil {
		return err
	}
	if err := ask("Job posting (URL, file or text)", &generateConfig.job); err != nil {
		return err
	}

	if generateConfig.tone == "" {
		sel := promptui.Select{Label: "Tone", Items: types.Tones}
		_, choice, err := sel.Run()
		if err != nil {
			return fmt.Errorf("prompt %q: %w", "Tone", err)
		}
		generateConfig.tone = choice
	}
	return nil
}
