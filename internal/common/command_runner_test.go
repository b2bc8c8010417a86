package common

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"lettercraft/internal/errors"
	"lettercraft/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLetters(t *testing.T, n int) []string {
	t.Helper()
	dir := t.TempDir()
	names := make([]string, n)
	for i := range names {
		names[i] = filepath.Join(dir, fmt.Sprintf("lettre-%d.txt", i))
		require.NoError(t, os.WriteFile(names[i], []byte(fmt.Sprintf("Lettre numéro %d", i)), 0o600))
	}
	return names
}

func TestProcessFilesKeepsOrderAndLimit(t *testing.T) {
	names := writeLetters(t, 6)
	var inFlight, peak atomic.Int32

	results, err := ProcessFiles(context.Background(), NewFileProcessor(nil), names, 2,
		func(ctx context.Context, filename, content string) (string, error) {
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return content, nil
		})
	require.NoError(t, err)

	require.Len(t, results, 6)
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("Lettre numéro %d", i), r)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestProcessFilesStopsOnError(t *testing.T) {
	names := writeLetters(t, 3)
	boom := fmt.Errorf("boom")

	_, err := ProcessFiles(context.Background(), NewFileProcessor(nil), names, 1,
		func(ctx context.Context, filename, content string) (int, error) {
			if strings.HasSuffix(filename, "lettre-1.txt") {
				return 0, boom
			}
			return len(content), nil
		})
	assert.ErrorIs(t, err, boom)
}

func TestProcessFilesMissingFile(t *testing.T) {
	_, err := ProcessFiles(context.Background(), NewFileProcessor(nil),
		[]string{filepath.Join(t.TempDir(), "absent.txt")}, 1,
		func(ctx context.Context, filename, content string) (int, error) { return 0, nil })
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidInputFile))
}

func TestRunFileCommandMergesResults(t *testing.T) {
	names := writeLetters(t, 2)
	out := filepath.Join(t.TempDir(), "report.json")

	err := RunFileCommand(context.Background(), nil, CommandConfig{OutputFile: out, OutputFormat: "json"},
		NewFileProcessor(nil), names, 2,
		func(ctx context.Context, filename, content string) (types.LetterAnalysis, error) {
			return types.LetterAnalysis{OverallScore: float64(len(content))}, nil
		},
		func(filenames []string, results []types.LetterAnalysis) any {
			reports := make([]types.AnalysisReport, len(results))
			for i := range results {
				reports[i] = types.AnalysisReport{Source: filepath.Base(filenames[i]), Analysis: results[i]}
			}
			return reports
		})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"source": "lettre-0.txt"`)
	assert.Contains(t, string(data), `"source": "lettre-1.txt"`)
}

func TestRunFileCommandNoFiles(t *testing.T) {
	err := RunFileCommand(context.Background(), nil, CommandConfig{OutputFormat: "json"},
		NewFileProcessor(nil), nil, 1,
		func(ctx context.Context, filename, content string) (int, error) { return 0, nil }, nil)
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestFileProcessorStdinAndLimit(t *testing.T) {
	fp := NewFileProcessor(nil).WithMaxSize(8)
	fp.stdin = strings.NewReader("court")

	content, err := fp.ReadFile("-")
	require.NoError(t, err)
	assert.Equal(t, "court", content)

	fp.stdin = strings.NewReader("beaucoup trop long")
	_, err = fp.ReadFile("-")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFileTooLarge))
}

func TestOutputHandlerWritesStdout(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandler(nil)
	oh.stdout = &buf

	err := oh.HandleOutput(types.ImproveLetterOutput{Content: "Madame, Monsieur,"}, CommandConfig{OutputFormat: "text"})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Madame, Monsieur,")

	err = oh.HandleOutput(types.ImproveLetterOutput{}, CommandConfig{OutputFormat: "xml"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}
