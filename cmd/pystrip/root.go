package main

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"runtime"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/pystrip/pkg/compress"
	"github.com/walteh/pystrip/pkg/finder"
	"github.com/walteh/pystrip/pkg/processor"
	"github.com/walteh/pystrip/pkg/strip"
	"github.com/walteh/pystrip/pkg/writer"
	"gitlab.com/tozd/go/errors"
)

// usageError marks argument problems that should exit with code 2 rather
// than 1.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

type Handler struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	inPlace        bool
	outputDir      string
	compress       bool
	algorithm      string
	keepPattern    string
	noKeep         bool
	keepEmptyLines bool
	jobs           int
	quiet          bool
	verbose        bool
}

func NewRootCommand(fs afero.Fs, stdout, stderr io.Writer) *cobra.Command {
	me := &Handler{fs: fs, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:   "pystrip [flags] PATH...",
		Short: "Strip comments from Python source files",
		Long: `pystrip removes comments from Python source files while keeping lint and
type-checker directives, optionally collapsing emptied lines and compressing
the output. Paths may be files, directories (searched recursively for .py
files), or glob patterns (** is supported).`,
		Example: `  pystrip script.py
  pystrip -i project_dir
  pystrip -o cleaned_dir script1.py script2.py
  pystrip "src/**/*.py"
  pystrip -o cleaned_dir -z -a zstd project_dir`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return &usageError{err: errors.New("requires at least one path argument")}
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&me.inPlace, "in-place", "i", false, "modify files in place, overrides --output-dir")
	cmd.Flags().StringVarP(&me.outputDir, "output-dir", "o", "", "directory to save processed files into")
	cmd.Flags().BoolVarP(&me.compress, "compress", "z", false, "compress output files")
	cmd.Flags().StringVarP(&me.algorithm, "algorithm", "a", compress.DefaultAlgorithm,
		fmt.Sprintf("compression algorithm %v", compress.Names()))
	cmd.Flags().StringVar(&me.keepPattern, "keep-pattern", "", "regexp of comments to keep, matched at the start of the comment")
	cmd.Flags().BoolVar(&me.noKeep, "no-keep", false, "strip every comment, including lint directives")
	cmd.Flags().BoolVar(&me.keepEmptyLines, "keep-empty-lines", false, "keep lines that become empty after stripping")
	cmd.Flags().IntVarP(&me.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "number of files to process in parallel")
	cmd.Flags().BoolVarP(&me.quiet, "quiet", "q", false, "suppress info messages")
	cmd.Flags().BoolVarP(&me.verbose, "verbose", "v", false, "show debug messages")

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context(), args)
	}

	return cmd
}

func (h *Handler) Run(ctx context.Context, paths []string) error {
	ctx = h.setupLogging(ctx)
	log := zerolog.Ctx(ctx)

	opts, err := h.stripOptions()
	if err != nil {
		return err
	}

	var codec compress.Codec
	if h.compress {
		codec, err = compress.Lookup(h.algorithm)
		if err != nil {
			return &usageError{err: err}
		}
	}

	files, err := finder.NewDefaultFinder(h.fs).FindSources(ctx, paths)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return errors.New("no python files found matching the specified paths")
	}
	log.Info().Int("count", len(files)).Msg("found python files to process")

	place, err := h.placement(ctx, files, codec)
	if err != nil {
		return err
	}

	proc := processor.New(h.fs, writer.NewOutputWriter(h.fs, h.stdout), opts)
	res := proc.ProcessAll(ctx, files, place, h.jobs)

	if !h.quiet {
		h.printSummary(res)
	}
	if res.Failed > 0 {
		return errors.Errorf("%d file(s) failed", res.Failed)
	}
	return nil
}

func (h *Handler) setupLogging(ctx context.Context) context.Context {
	level := zerolog.InfoLevel
	if h.quiet {
		level = zerolog.WarnLevel
	}
	if h.verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: h.stderr}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger.WithContext(ctx)
}

func (h *Handler) stripOptions() (strip.Options, error) {
	opts := strip.DefaultOptions()
	if h.keepEmptyLines {
		opts.RemoveEmptyLines = false
	}
	switch {
	case h.noKeep:
		opts.KeepPattern = nil
	case h.keepPattern != "":
		re, err := regexp.Compile(h.keepPattern)
		if err != nil {
			return strip.Options{}, &usageError{err: errors.Errorf("invalid keep pattern: %w", err)}
		}
		opts.KeepPattern = re
	}
	return opts, nil
}

func (h *Handler) placement(ctx context.Context, files []string, codec compress.Codec) (writer.Placement, error) {
	log := zerolog.Ctx(ctx)

	outputDir := h.outputDir
	if h.inPlace && outputDir != "" {
		log.Warn().Msg("--in-place overrides --output-dir, output directory will be ignored")
		outputDir = ""
	}
	if outputDir != "" {
		if err := h.fs.MkdirAll(outputDir, 0o755); err != nil {
			return writer.Placement{}, errors.Errorf("could not create output directory %s: %w", outputDir, err)
		}
	}

	return writer.Placement{
		InPlace:   h.inPlace,
		OutputDir: outputDir,
		BaseDir:   finder.CommonBase(files),
		Codec:     codec,
	}, nil
}

func (h *Handler) printSummary(res processor.Result) {
	okColor := color.New(color.FgGreen)
	failColor := color.New(color.FgRed)
	if res.Failed == 0 {
		fmt.Fprintf(h.stderr, "%s %d file(s) succeeded, %d failed\n",
			okColor.Sprint("done:"), res.Succeeded, res.Failed)
		return
	}
	fmt.Fprintf(h.stderr, "%s %d file(s) succeeded, %s\n",
		okColor.Sprint("done:"), res.Succeeded, failColor.Sprintf("%d failed", res.Failed))
}
