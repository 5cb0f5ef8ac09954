// Package processor orchestrates per-file comment stripping: read, strip,
// write, and the batch fan-out over many files.
package processor

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/pystrip/pkg/strip"
	"github.com/walteh/pystrip/pkg/writer"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// Processor runs the strip pipeline over individual files. The strip core
// is stateless and reentrant, so a single Processor may be used from many
// goroutines on independent files.
type Processor struct {
	fs   afero.Fs
	out  *writer.OutputWriter
	opts strip.Options
}

// New creates a Processor.
func New(fs afero.Fs, out *writer.OutputWriter, opts strip.Options) *Processor {
	return &Processor{fs: fs, out: out, opts: opts}
}

// ProcessFile reads, strips, and writes a single file, returning the
// destination path ("" for stdout). Failures never leave a partial result
// for the file: the output is written only after stripping succeeded.
func (p *Processor) ProcessFile(ctx context.Context, path string, place writer.Placement) (string, error) {
	src, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return "", errors.Errorf("reading %s: %w", path, err)
	}

	cleaned, err := strip.Strip(src, p.opts)
	if err != nil {
		return "", errors.Errorf("stripping %s: %w", path, err)
	}

	dest, err := p.out.Write(ctx, cleaned, path, place)
	if err != nil {
		return "", err
	}

	// In-place compression writes <file>.py<ext>; the plain original is
	// then redundant and removed, matching the uncompressed in-place
	// behavior of replacing the file.
	if place.InPlace && place.Codec != nil && dest != path {
		if err := p.fs.Remove(path); err != nil {
			zerolog.Ctx(ctx).Warn().Str("path", path).Err(err).
				Msg("could not remove original after in-place compression")
		}
	}

	zerolog.Ctx(ctx).Info().Str("action", actionLabel(place)).Str("file", path).
		Str("output", destLabel(dest)).Msg("processed file")
	return dest, nil
}

// Result aggregates a batch run. Err collects the per-file failures.
type Result struct {
	Succeeded int
	Failed    int
	Err       error
}

// ProcessAll strips every file, running at most jobs files concurrently.
// One file's failure never aborts the batch: failures are logged, counted,
// and collected into Result.Err. When the placement streams to stdout the
// batch runs sequentially so outputs do not interleave.
func (p *Processor) ProcessAll(ctx context.Context, files []string, place writer.Placement, jobs int) Result {
	if jobs < 1 || place.Stdout() {
		jobs = 1
	}

	var (
		mu  sync.Mutex
		res Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, file := range files {
		file := file
		g.Go(func() error {
			_, err := p.ProcessFile(gctx, file, place)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				zerolog.Ctx(ctx).Error().Str("file", file).Err(err).Msg("failed to process file")
				res.Failed++
				res.Err = multierror.Append(res.Err, err)
				return nil
			}
			res.Succeeded++
			return nil
		})
	}
	_ = g.Wait()

	return res
}

func actionLabel(place writer.Placement) string {
	switch {
	case place.Codec != nil:
		return "compressed"
	case place.InPlace:
		return "modified"
	default:
		return "written"
	}
}

func destLabel(dest string) string {
	if dest == "" {
		return "stdout"
	}
	return dest
}
