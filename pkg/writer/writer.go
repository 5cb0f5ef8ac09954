// Package writer computes output destinations and persists result bytes:
// in place, mirrored into an output directory, or streamed to stdout,
// optionally compressed.
package writer

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/walteh/pystrip/pkg/compress"
	"gitlab.com/tozd/go/errors"
)

// Placement describes where results go.
type Placement struct {
	// InPlace overwrites each input file. With a Codec set, the compressed
	// result is written next to the input with the codec extension
	// appended and the original is removed by the processor.
	InPlace bool

	// OutputDir mirrors results under this directory, preserving each
	// input's path relative to BaseDir. Empty means no output directory.
	OutputDir string

	// BaseDir is the common base of all inputs, used for mirroring.
	BaseDir string

	// Codec compresses the result when non-nil.
	Codec compress.Codec
}

// Stdout reports whether results stream to standard output.
func (p Placement) Stdout() bool {
	return !p.InPlace && p.OutputDir == ""
}

// Destination returns the final output path for inputPath, or "" when the
// result goes to stdout.
func (p Placement) Destination(inputPath string) string {
	switch {
	case p.InPlace:
		dest := inputPath
		if p.Codec != nil {
			dest += p.Codec.Extension()
		}
		return dest
	case p.OutputDir != "":
		rel, err := filepath.Rel(p.BaseDir, inputPath)
		if err != nil || strings.HasPrefix(rel, "..") {
			// Input outside the common base: fall back to its basename.
			rel = filepath.Base(inputPath)
		}
		dest := filepath.Join(p.OutputDir, rel)
		if p.Codec != nil {
			dest += p.Codec.Extension()
		}
		return dest
	default:
		return ""
	}
}

// OutputWriter persists result bytes to a filesystem or a stdout stream.
type OutputWriter struct {
	fs     afero.Fs
	stdout io.Writer
}

// NewOutputWriter creates an OutputWriter. stdout is the stream used when a
// placement resolves to standard output.
func NewOutputWriter(fs afero.Fs, stdout io.Writer) *OutputWriter {
	return &OutputWriter{fs: fs, stdout: stdout}
}

// Write persists data for inputPath according to place and returns the
// destination path ("" when written to stdout). Parent directories are
// created as needed.
func (w *OutputWriter) Write(ctx context.Context, data []byte, inputPath string, place Placement) (string, error) {
	dest := place.Destination(inputPath)
	if dest == "" {
		if err := w.writeStream(w.stdout, data, place.Codec); err != nil {
			return "", errors.Errorf("writing to stdout: %w", err)
		}
		return "", nil
	}

	if dir := filepath.Dir(dest); dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return "", errors.Errorf("creating directory for %s: %w", dest, err)
		}
	}

	file, err := w.fs.Create(dest)
	if err != nil {
		return "", errors.Errorf("creating %s: %w", dest, err)
	}
	if err := w.writeStream(file, data, place.Codec); err != nil {
		file.Close()
		return "", errors.Errorf("writing %s: %w", dest, err)
	}
	if err := file.Close(); err != nil {
		return "", errors.Errorf("closing %s: %w", dest, err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", dest).Int("bytes", len(data)).Msg("wrote output")
	return dest, nil
}

func (w *OutputWriter) writeStream(dst io.Writer, data []byte, codec compress.Codec) error {
	if codec != nil {
		return compress.Compress(codec, dst, data)
	}
	_, err := dst.Write(data)
	return err
}
