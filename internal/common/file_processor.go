package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lettercraft/internal/errors"
	"lettercraft/internal/utils"
)

// FileProcessor reads letters and job descriptions and writes rendered output
type FileProcessor struct {
	logger  *errors.Logger
	maxSize int64
	stdin   io.Reader
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	return &FileProcessor{logger: logger, stdin: os.Stdin}
}

// WithMaxSize rejects input files larger than size bytes. Zero disables the check.
func (fp *FileProcessor) WithMaxSize(size int64) *FileProcessor {
	fp.maxSize = size
	return fp
}

// ReadFile reads content from a file, or from standard input when filename is "-"
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	if filename == utils.StdinName {
		return fp.readAll(fp.stdin, "standard input")
	}

	file, err := os.Open(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil && fp.logger != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	return fp.readAll(file, filename)
}

func (fp *FileProcessor) readAll(r io.Reader, name string) (string, error) {
	if fp.maxSize > 0 {
		r = io.LimitReader(r, fp.maxSize+1)
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read content: %s", name), err)
	}
	if fp.maxSize > 0 && int64(len(content)) > fp.maxSize {
		return "", errors.NewValidationError(errors.ErrCodeFileTooLarge,
			fmt.Sprintf("%s exceeds %s", name, utils.FormatFileSize(fp.maxSize)), nil)
	}
	return string(content), nil
}

// WriteFile writes content to a file, creating parent directories
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError(errors.ErrCodeDirectoryCreate,
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError(errors.ErrCodeFileWrite,
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateAndReadFiles validates and reads multiple input files
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, len(filenames))

	for i, filename := range filenames {
		content, err := fp.ValidateAndRead(filename)
		if err != nil {
			return nil, err
		}
		contents[i] = content
	}

	return contents, nil
}

// ValidateAndRead validates and reads a single input file
func (fp *FileProcessor) ValidateAndRead(filename string) (string, error) {
	if err := utils.ValidateInputFile(filename, fp.maxSize); err != nil {
		return "", errors.NewValidationError(errors.ErrCodeInvalidInputFile,
			fmt.Sprintf("Invalid file %s", filename), err)
	}

	if filename != utils.StdinName && !utils.IsTextFile(filename) && fp.logger != nil {
		fp.logger.Warn("File may not be a text file", "filename", filename)
	}

	return fp.ReadFile(filename)
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidOutputFile,
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}
