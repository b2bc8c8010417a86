package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"lettercraft/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches a set of files and calls back once per burst of changes
type FileWatcher struct {
	mu sync.Mutex

	name  string
	files []string

	lastModTime map[string]time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onChange func()
	logger   *errors.Logger

	running bool
}

// NewFileWatcher creates a watcher for files. name only labels log lines.
func NewFileWatcher(name string, files []string, debounceDelay time.Duration, onChange func(), logger *errors.Logger) *FileWatcher {
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}

	var watched []string
	for _, f := range files {
		if f == "" {
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			f = abs
		}
		watched = append(watched, f)
	}

	return &FileWatcher{
		name:          name,
		files:         watched,
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		onChange:      onChange,
		logger:        logger,
	}
}

// Start begins watching. It is an error to start a watcher twice.
func (fw *FileWatcher) Start() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.running {
		return fmt.Errorf("%s watcher is already running", fw.name)
	}
	if len(fw.files) == 0 {
		return fmt.Errorf("%s watcher has no files to watch", fw.name)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	fw.fsWatcher = watcher

	if err := fw.updateModTimes(); err != nil {
		_ = fw.fsWatcher.Close()
		return fmt.Errorf("failed to get initial file modification times: %w", err)
	}

	// Directories are watched so atomic renames (editors, kubelet secret updates) are seen.
	dirs := make(map[string]bool)
	for _, file := range fw.files {
		dirs[filepath.Dir(file)] = true
	}
	for dir := range dirs {
		if err := fw.fsWatcher.Add(dir); err != nil && fw.logger != nil {
			fw.logger.Warn("Failed to watch directory", "watcher", fw.name, "directory", dir, "error", err)
		}
	}

	fw.running = true
	go fw.watchLoop()

	if fw.logger != nil {
		fw.logger.Info("File watcher started",
			"watcher", fw.name,
			"files", fw.files,
			"debounce_delay", fw.debounceDelay)
	}
	return nil
}

// Stop stops the watcher. Stopping a stopped watcher is a no-op.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		return nil
	}

	close(fw.stopChan)
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.running = false
	fsWatcher := fw.fsWatcher
	fw.mu.Unlock()

	// closed outside the lock: watchLoop may be waiting on it in scheduleReload
	if err := fsWatcher.Close(); err != nil {
		if fw.logger != nil {
			fw.logger.LogError(err, "Failed to close file system watcher", "watcher", fw.name)
		}
		return err
	}

	if fw.logger != nil {
		fw.logger.Info("File watcher stopped", "watcher", fw.name)
	}
	return nil
}

// IsRunning returns whether the watcher is currently running
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}

// Files returns the absolute paths being watched
func (fw *FileWatcher) Files() []string {
	return slices.Clone(fw.files)
}

func (fw *FileWatcher) updateModTimes() error {
	for _, file := range fw.files {
		if stat, err := os.Stat(file); err == nil {
			fw.lastModTime[file] = stat.ModTime()
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat file %s: %w", file, err)
		}
	}
	return nil
}

// hasFileChanged is only called from watchLoop
func (fw *FileWatcher) hasFileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			if _, exists := fw.lastModTime[file]; exists {
				delete(fw.lastModTime, file)
				return true
			}
		}
		return false
	}

	lastMod, exists := fw.lastModTime[file]
	if !exists || !stat.ModTime().Equal(lastMod) {
		fw.lastModTime[file] = stat.ModTime()
		return true
	}
	return false
}

func (fw *FileWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-fw.fsWatcher.Events:
			if !ok {
				return
			}
			if fw.shouldProcessEvent(event) {
				fw.scheduleReload()
			}

		case err, ok := <-fw.fsWatcher.Errors:
			if !ok {
				return
			}
			if fw.logger != nil {
				fw.logger.LogError(err, "File watcher error", "watcher", fw.name)
			}

		case <-fw.reloadChan:
			changed := false
			for _, file := range fw.files {
				// every file is checked so all mod times are refreshed
				if fw.hasFileChanged(file) {
					changed = true
				}
			}
			if changed {
				if fw.logger != nil {
					fw.logger.Info("Watched files changed, reloading", "watcher", fw.name)
				}
				fw.onChange()
			}

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
		return false
	}
	name := filepath.Clean(event.Name)
	return slices.ContainsFunc(fw.files, func(file string) bool {
		return name == file
	})
}

func (fw *FileWatcher) scheduleReload() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.running {
		return
	}
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}

	fw.debounceTimer = time.AfterFunc(fw.debounceDelay, func() {
		select {
		case fw.reloadChan <- struct{}{}:
		default:
		}
	})
}

// WatchPrompts reloads store whenever one of its prompt files changes. It
// returns nil when the store has no files or watching is disabled.
func WatchPrompts(store *PromptStore, logger *errors.Logger) (*FileWatcher, error) {
	if store == nil || !store.cfg.Watch || len(store.Files()) == 0 {
		return nil, nil
	}

	watcher := NewFileWatcher("prompts", store.Files(), 500*time.Millisecond, func() {
		if err := store.Reload(); err != nil && logger != nil {
			logger.LogError(err, "Prompt reload failed, keeping previous prompts")
		}
	}, logger)

	if err := watcher.Start(); err != nil {
		return nil, err
	}
	return watcher, nil
}
