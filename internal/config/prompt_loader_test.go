package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writePromptFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test prompt file: %v", err)
	}
	return path
}

func TestNewPromptStore(t *testing.T) {
	tempDir := t.TempDir()

	systemFile := writePromptFile(t, tempDir, "system.md", "  Tu es un rédacteur de lettres.\n")
	improveFile := writePromptFile(t, tempDir, "improve.md", "Améliore: {{.Content}}")

	store, err := NewPromptStore(PromptConfig{
		SystemFile:    systemFile,
		User:          "inline user prompt",
		ImproveSystem: "inline improve system",
		ImproveFile:   improveFile,
	})
	if err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	got := store.Prompts()
	if got.System != "Tu es un rédacteur de lettres." {
		t.Errorf("Expected trimmed system prompt from file, got '%s'", got.System)
	}
	if got.User != "inline user prompt" {
		t.Errorf("Expected inline user prompt, got '%s'", got.User)
	}
	if got.ImproveSystem != "inline improve system" {
		t.Errorf("Expected inline improve system prompt, got '%s'", got.ImproveSystem)
	}
	if got.Improve != "Améliore: {{.Content}}" {
		t.Errorf("Expected improve prompt from file, got '%s'", got.Improve)
	}

	if files := store.Files(); len(files) != 2 {
		t.Errorf("Expected 2 watched files, got %v", files)
	}
}

func TestPromptStoreFileWinsOverInline(t *testing.T) {
	tempDir := t.TempDir()
	userFile := writePromptFile(t, tempDir, "user.md", "from file")

	store, err := NewPromptStore(PromptConfig{User: "inline", UserFile: userFile})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if store.Prompts().User != "from file" {
		t.Errorf("Expected file content to win, got '%s'", store.Prompts().User)
	}
}

func TestPromptStoreReloadKeepsPreviousOnError(t *testing.T) {
	tempDir := t.TempDir()
	systemFile := writePromptFile(t, tempDir, "system.md", "version 1")

	store, err := NewPromptStore(PromptConfig{SystemFile: systemFile})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	writePromptFile(t, tempDir, "system.md", "version 2")
	if err := store.Reload(); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if store.Prompts().System != "version 2" {
		t.Errorf("Expected reloaded prompt, got '%s'", store.Prompts().System)
	}

	writePromptFile(t, tempDir, "system.md", "   ")
	if err := store.Reload(); err == nil {
		t.Error("Expected error for empty prompt file")
	}
	if store.Prompts().System != "version 2" {
		t.Errorf("Expected previous prompt to be kept, got '%s'", store.Prompts().System)
	}
}

func TestNilPromptStore(t *testing.T) {
	var store *PromptStore
	if got := store.Prompts(); got != (LoadedPrompts{}) {
		t.Errorf("Expected empty prompts from nil store, got %+v", got)
	}
}

func TestValidatePromptFiles(t *testing.T) {
	tempDir := t.TempDir()
	validFile := writePromptFile(t, tempDir, "valid.md", "Valid content")

	config := &Config{
		AI: AIConfig{
			CustomPrompts: PromptConfig{SystemFile: validFile},
		},
	}

	if err := config.validatePromptFiles(); err != nil {
		t.Errorf("Expected validation to pass for valid file, got error: %v", err)
	}

	config.AI.CustomPrompts.ImproveFile = filepath.Join(tempDir, "nonexistent.md")
	if err := config.validatePromptFiles(); err == nil {
		t.Error("Expected validation to fail for non-existent file")
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()

	content := "Test prompt content"
	testFile := writePromptFile(t, tempDir, "test.md", content)

	loadedContent, err := loadPromptFromFile(testFile, "system")
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}
	if loadedContent != content {
		t.Errorf("Expected content '%s', got '%s'", content, loadedContent)
	}

	emptyFile := writePromptFile(t, tempDir, "empty.md", "")
	if _, err = loadPromptFromFile(emptyFile, "system"); err == nil {
		t.Error("Expected error for empty file")
	}

	if _, err = loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md"), "system"); err == nil {
		t.Error("Expected error for non-existent file")
	}
}
