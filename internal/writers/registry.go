// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"tirmite-core/element"
)

// Options shared by the stdout writers.
type Options struct {
	Header       bool     // TSV header row
	SuppressMeta bool     // drop evalue/score, as for mapped-read runs
	HitNames     []string // hit names by id, for member lists
}

// WriteFunc drains in and serializes every feature to w.
type WriteFunc func(w io.Writer, in <-chan element.Feature, o Options) error

// Writer registry (format → handler). Populated in init() by each format file.
var registry = map[string]WriteFunc{}

// Register adds or replaces a format handler (last wins).
func Register(format string, fn WriteFunc) { registry[format] = fn }

// Formats lists the registered format names.
func Formats() []string {
	out := make([]string, 0, len(registry))
	for f := range registry {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the handler for format.
func Lookup(format string) (WriteFunc, error) {
	fn, ok := registry[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (no writer registered)", format)
	}
	return fn, nil
}

// StartWriter spins up a writer goroutine for format. Unknown formats fail
// immediately on the error channel after the input is drained.
func StartWriter(out io.Writer, format string, o Options, bufSize int) (chan<- element.Feature, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan element.Feature, bufSize)
	errCh := make(chan error, 1)

	go func() {
		fn, err := Lookup(format)
		if err != nil {
			for range in {
			}
			errCh <- err
			return
		}
		err = fn(out, in, o)
		// keep draining so senders never block on a failed writer
		for range in {
		}
		errCh <- IgnoreBrokenPipe(err)
	}()
	return in, errCh
}

// WriteAll is StartWriter for an in-memory list.
func WriteAll(out io.Writer, format string, o Options, fs []element.Feature) error {
	in, done := StartWriter(out, format, o, len(fs))
	for _, f := range fs {
		in <- f
	}
	close(in)
	return <-done
}

// Flatten lists features in report order: each element followed by its arms
// when withArms is set, then the standalone hits.
func Flatten(elems []element.Feature, withArms bool, hits []element.Feature) []element.Feature {
	out := make([]element.Feature, 0, len(elems)*3+len(hits))
	for _, e := range elems {
		out = append(out, e)
		if withArms {
			out = append(out, e.Arms...)
		}
	}
	return append(out, hits...)
}
