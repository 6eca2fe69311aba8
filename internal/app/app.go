// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"tirmite-core/hit"
	"tirmite-core/index"
	"tirmite/internal/appcore"
	"tirmite/internal/cli"
	"tirmite/internal/config"
	"tirmite/internal/logger"
	"tirmite/internal/writers"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitUsage     = 2 // bad arguments or malformed input
	ExitIO        = 3 // I/O or external tool failure
	ExitCancelled = 130
)

// RunContext parses argv, runs the selected command and maps the outcome to
// an exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	return RunWith(parent, argv, stdout, stderr, appcore.Deps{})
}

// RunWith is RunContext with injectable collaborators.
func RunWith(parent context.Context, argv []string, stdout, stderr io.Writer, deps appcore.Deps) int {
	defer logger.Reset()
	logger.SetOutput(stderr)

	var (
		ran  bool
		opts config.Options
	)
	root := cli.NewRoot(stdout, stderr, func(ctx context.Context, o config.Options) error {
		ran, opts = true, o
		return appcore.Execute(ctx, stdout, o, deps)
	})
	root.SetArgs(argv)

	err := root.ExecuteContext(parent)
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled) || parent.Err() != nil:
		return ExitCancelled
	case errors.Is(err, index.ErrNoHits):
		logger.Warnf("%v", err)
		return opts.NoHitsExitCode
	case writers.IsBrokenPipe(err):
		return ExitOK
	}

	fmt.Fprintln(stderr, "error:", err)
	var ue *cli.UsageError
	var mh *hit.MalformedHitError
	switch {
	case errors.As(err, &ue) || !ran:
		fmt.Fprintln(stderr, "Run 'tirmite --help' for usage.")
		return ExitUsage
	case errors.As(err, &mh):
		return ExitUsage
	}
	return ExitIO
}

// Run is RunContext with a background context.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}
