// Package appshell wires a command's Run function to the process: signals,
// arguments, standard streams and the exit code.
package appshell

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// RunFunc is the signature of app.RunContext.
type RunFunc func(context.Context, []string, io.Writer, io.Writer) int

// Main runs run with SIGINT/SIGTERM cancellation and exits with its code.
func Main(run RunFunc) {
	os.Exit(Exec(context.Background(), run, os.Args[1:], os.Stdout, os.Stderr))
}

// Exec runs run under a signal-aware context. An empty argv shows help; a
// cancelled run that reported success exits 130.
func Exec(parent context.Context, run RunFunc, argv []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(argv) == 0 {
		argv = []string{"--help"}
	}
	code := run(ctx, argv, stdout, stderr)
	if ctx.Err() != nil && code == 0 {
		code = 130
	}
	return code
}
