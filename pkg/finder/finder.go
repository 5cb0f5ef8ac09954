// Package finder resolves input paths (files, directories, glob patterns)
// into the list of Python source files to process.
package finder

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// SourceFinder is responsible for finding Python source files from a set of
// path arguments.
type SourceFinder interface {
	// FindSources resolves the given paths (files, directories searched
	// recursively, or glob patterns) into a sorted, de-duplicated list of
	// .py files. Paths that do not exist or are not Python files are
	// logged and skipped, not treated as errors.
	FindSources(ctx context.Context, paths []string) ([]string, error)
}

// DefaultFinder is the default implementation of SourceFinder.
type DefaultFinder struct {
	fs afero.Fs
}

// NewDefaultFinder creates a new DefaultFinder over the given filesystem.
func NewDefaultFinder(fs afero.Fs) *DefaultFinder {
	return &DefaultFinder{fs: fs}
}

// FindSources implements SourceFinder.
func (f *DefaultFinder) FindSources(ctx context.Context, paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, path := range paths {
		targets, err := f.expand(path)
		if err != nil {
			return nil, errors.Errorf("expanding pattern %q: %w", path, err)
		}
		for _, target := range targets {
			f.collect(ctx, target, seen)
		}
	}

	files := make([]string, 0, len(seen))
	for file := range seen {
		files = append(files, file)
	}
	sort.Strings(files)
	zerolog.Ctx(ctx).Debug().Int("count", len(files)).Msg("gathered python files")
	return files, nil
}

// expand resolves a glob pattern into concrete paths. A path without glob
// metacharacters, or a pattern with no matches, is returned as-is so that
// collect can report it as missing.
func (f *DefaultFinder) expand(path string) ([]string, error) {
	if !strings.ContainsAny(path, "*?[{") {
		return []string{path}, nil
	}

	base, pattern := doublestar.SplitPattern(filepath.ToSlash(path))
	fsys := afero.NewIOFS(afero.NewBasePathFs(f.fs, base))
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return []string{path}, nil
	}

	resolved := make([]string, 0, len(matches))
	for _, m := range matches {
		resolved = append(resolved, filepath.Join(base, m))
	}
	return resolved, nil
}

// collect adds a single resolved target to seen: directories are searched
// recursively for .py files, regular files must carry the .py extension.
func (f *DefaultFinder) collect(ctx context.Context, target string, seen map[string]struct{}) {
	log := zerolog.Ctx(ctx)

	info, err := f.fs.Stat(target)
	if err != nil {
		log.Warn().Str("path", target).Msg("path does not exist, skipping")
		return
	}

	if info.IsDir() {
		walkErr := afero.Walk(f.fs, target, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				log.Warn().Str("path", path).Err(err).Msg("error walking directory")
				return nil
			}
			if !fi.IsDir() && filepath.Ext(path) == ".py" {
				seen[filepath.Clean(path)] = struct{}{}
			}
			return nil
		})
		if walkErr != nil {
			log.Warn().Str("path", target).Err(walkErr).Msg("error searching directory")
		}
		return
	}

	if filepath.Ext(target) != ".py" {
		log.Warn().Str("path", target).Msg("skipping non-python file")
		return
	}
	seen[filepath.Clean(target)] = struct{}{}
}

// CommonBase returns the deepest directory containing every given file,
// used to preserve relative structure when mirroring into an output
// directory. With no files it returns ".", with one file its directory.
func CommonBase(files []string) string {
	if len(files) == 0 {
		return "."
	}

	base := filepath.Dir(files[0])
	for _, file := range files[1:] {
		dir := filepath.Dir(file)
		for base != dir && !isAncestor(base, dir) {
			parent := filepath.Dir(base)
			if parent == base {
				break
			}
			base = parent
		}
	}
	return base
}

func isAncestor(base, dir string) bool {
	rel, err := filepath.Rel(base, dir)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}
