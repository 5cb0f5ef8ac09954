package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], afero.NewOsFs(), os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, fs afero.Fs, stdout, stderr io.Writer) int {
	root := NewRootCommand(fs, stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(stderr, err.Error())
	var uerr *usageError
	if errors.As(err, &uerr) {
		fmt.Fprintln(stderr, root.UsageString())
		return exitUsage
	}
	return exitError
}
