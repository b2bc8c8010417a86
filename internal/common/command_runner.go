package common

import (
	"context"

	"lettercraft/internal/errors"

	"golang.org/x/sync/errgroup"
)

// FileOperationFunc processes the content of one input file
type FileOperationFunc[Output any] func(ctx context.Context, filename, content string) (Output, error)

// ProcessFiles reads every file and runs op on it with at most limit operations
// in flight. Results keep the order of filenames; the first error cancels the rest.
func ProcessFiles[Output any](
	ctx context.Context,
	files *FileProcessor,
	filenames []string,
	limit int,
	op FileOperationFunc[Output],
) ([]Output, error) {
	contents, err := files.ValidateAndReadFiles(filenames...)
	if err != nil {
		return nil, err
	}

	results := make([]Output, len(filenames))
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range filenames {
		g.Go(func() error {
			out, err := op(gctx, filenames[i], contents[i])
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunFileCommand runs op over the given files and writes the rendered result.
// A single file yields a single result; several files are combined by merge.
func RunFileCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	cmdConfig CommandConfig,
	files *FileProcessor,
	filenames []string,
	limit int,
	op FileOperationFunc[Output],
	merge func(filenames []string, results []Output) any,
) error {
	if len(filenames) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidInputFile, "No input files given", nil)
	}
	results, err := ProcessFiles(ctx, files, filenames, limit, op)
	if err != nil {
		return err
	}

	var out any
	if len(results) == 1 || merge == nil {
		out = results[0]
	} else {
		out = merge(filenames, results)
	}

	if logger != nil {
		logger.Debug("Processed input files", "count", len(filenames), "format", cmdConfig.OutputFormat)
	}
	return NewOutputHandler(logger).HandleOutput(out, cmdConfig)
}
