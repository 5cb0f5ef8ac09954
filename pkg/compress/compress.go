// Package compress provides the output compression codecs and their fixed
// filename-extension conventions.
package compress

import (
	"io"
	"sort"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"gitlab.com/tozd/go/errors"
)

// ErrUnknownAlgorithm is returned by Lookup for algorithm names that have no
// registered codec.
var ErrUnknownAlgorithm = errors.New("unknown compression algorithm")

// DefaultAlgorithm is the codec used when compression is requested without
// an explicit algorithm.
const DefaultAlgorithm = "gzip"

// Codec compresses output bytes and names the filename extension appended
// to compressed files.
type Codec interface {
	Name() string
	Extension() string
	// NewWriter wraps dst; the caller must Close the returned writer to
	// flush the stream.
	NewWriter(dst io.Writer) (io.WriteCloser, error)
}

var codecs = map[string]Codec{
	"gzip":   gzipCodec{},
	"zstd":   zstdCodec{},
	"snappy": snappyCodec{},
}

// Lookup returns the codec registered under name.
func Lookup(name string) (Codec, error) {
	codec, ok := codecs[name]
	if !ok {
		return nil, errors.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}
	return codec, nil
}

// Names returns the registered algorithm names, sorted.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compress writes src through codec into dst, closing the codec stream.
func Compress(codec Codec, dst io.Writer, src []byte) error {
	w, err := codec.NewWriter(dst)
	if err != nil {
		return errors.Errorf("creating %s writer: %w", codec.Name(), err)
	}
	if _, err := w.Write(src); err != nil {
		w.Close()
		return errors.Errorf("compressing with %s: %w", codec.Name(), err)
	}
	if err := w.Close(); err != nil {
		return errors.Errorf("flushing %s stream: %w", codec.Name(), err)
	}
	return nil
}

type gzipCodec struct{}

func (gzipCodec) Name() string      { return "gzip" }
func (gzipCodec) Extension() string { return ".gz" }
func (gzipCodec) NewWriter(dst io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(dst, gzip.DefaultCompression)
}

type zstdCodec struct{}

func (zstdCodec) Name() string      { return "zstd" }
func (zstdCodec) Extension() string { return ".zst" }
func (zstdCodec) NewWriter(dst io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(dst)
}

type snappyCodec struct{}

func (snappyCodec) Name() string      { return "snappy" }
func (snappyCodec) Extension() string { return ".sz" }
func (snappyCodec) NewWriter(dst io.Writer) (io.WriteCloser, error) {
	return snappy.NewBufferedWriter(dst), nil
}
