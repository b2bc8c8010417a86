package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PromptConfig holds configuration for customizable prompts. Inline values are
// used when no file is set; file content wins over inline values.
type PromptConfig struct {
	System            string `mapstructure:"system"`
	SystemFile        string `mapstructure:"systemFile"`
	User              string `mapstructure:"user"`
	UserFile          string `mapstructure:"userFile"`
	ImproveSystem     string `mapstructure:"improveSystem"`
	ImproveSystemFile string `mapstructure:"improveSystemFile"`
	Improve           string `mapstructure:"improve"`
	ImproveFile       string `mapstructure:"improveFile"`

	// Watch reloads prompt files when they change while serving
	Watch bool `mapstructure:"watch"`
}

// LoadedPrompts holds prompt overrides after files were read. Empty fields
// mean the built-in prompt applies.
type LoadedPrompts struct {
	System        string
	User          string
	ImproveSystem string
	Improve       string
}

// PromptStore serves the current prompt overrides and re-reads prompt files on demand
type PromptStore struct {
	cfg PromptConfig

	mu     sync.RWMutex
	loaded LoadedPrompts
}

// NewPromptStore loads the configured prompt overrides
func NewPromptStore(cfg PromptConfig) (*PromptStore, error) {
	s := &PromptStore{cfg: cfg}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Prompts returns a copy of the current overrides
func (s *PromptStore) Prompts() LoadedPrompts {
	if s == nil {
		return LoadedPrompts{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Files returns the prompt files backing the store
func (s *PromptStore) Files() []string {
	var files []string
	for _, f := range []string{s.cfg.SystemFile, s.cfg.UserFile, s.cfg.ImproveSystemFile, s.cfg.ImproveFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

// Reload re-reads all prompt files. On error the previous prompts are kept.
func (s *PromptStore) Reload() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	next := LoadedPrompts{
		System:        s.cfg.System,
		User:          s.cfg.User,
		ImproveSystem: s.cfg.ImproveSystem,
		Improve:       s.cfg.Improve,
	}

	targets := []struct {
		file, name string
		dst        *string
	}{
		{s.cfg.SystemFile, "system", &next.System},
		{s.cfg.UserFile, "user", &next.User},
		{s.cfg.ImproveSystemFile, "improve system", &next.ImproveSystem},
		{s.cfg.ImproveFile, "improve", &next.Improve},
	}
	for _, t := range targets {
		if t.file == "" {
			continue
		}
		content, err := loadPromptFromFile(t.file, t.name)
		if err != nil {
			return err
		}
		*t.dst = content
	}

	s.mu.Lock()
	s.loaded = next
	s.mu.Unlock()

	logPromptLoadingSummary(next)
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptName string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", promptName, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", promptName, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", promptName, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", promptName, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s prompt from file: %s (%d characters)",
		promptName, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptName string) {
		if filePath == "" {
			return
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", promptName, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", promptName, absPath))
		}
	}

	p := c.AI.CustomPrompts
	validateFile(p.SystemFile, "system")
	validateFile(p.UserFile, "user")
	validateFile(p.ImproveSystemFile, "improve system")
	validateFile(p.ImproveFile, "improve")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}

// logPromptLoadingSummary logs which prompts are overridden
func logPromptLoadingSummary(p LoadedPrompts) {
	log.Println("[CONFIG] === Custom Prompt Loading Summary ===")

	checks := []struct {
		content string
		name    string
	}{
		{p.System, "system"},
		{p.User, "user"},
		{p.ImproveSystem, "improve system"},
		{p.Improve, "improve"},
	}

	count := 0
	for _, check := range checks {
		if check.content != "" {
			log.Printf("[CONFIG] Custom %s prompt: loaded from config/file", check.name)
			count++
		}
	}

	if count == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", count)
	}

	log.Println("[CONFIG] ==========================================")
}
