// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"tirmite-core/element"
	"tirmite-core/fasta"
	"tirmite-core/hit"
	"tirmite-core/index"
	"tirmite-core/pairing"
	"tirmite/internal/config"
	"tirmite/internal/hitio"
	"tirmite/internal/logger"
	"tirmite/internal/report"
	"tirmite/internal/search"
	"tirmite/internal/writers"
)

// Deps are the collaborators a run needs besides its options.
type Deps struct {
	Runner search.Runner // external tool runner for "run"
}

// Execute performs one run or pair invocation. stdout receives the feature
// report. index.ErrNoHits is returned when the inputs contain no hits.
func Execute(ctx context.Context, stdout io.Writer, o config.Options, d Deps) error {
	logger.SetVerbose(o.Verbose)
	logger.SetQuiet(o.Quiet)
	if d.Runner == nil {
		d.Runner = search.ExecRunner{}
	}
	if o.Pairing.Threads <= 0 {
		o.Pairing.Threads = runtime.NumCPU()
	}
	if err := os.MkdirAll(o.Outdir, 0o755); err != nil {
		return err
	}

	srcs, cleanup, err := hitSources(ctx, o, d.Runner)
	if cleanup != nil {
		defer cleanup()
	}
	if err != nil {
		return err
	}

	logger.Section("Hits")
	recs, err := hitio.Load(ctx, srcs)
	if err != nil {
		return err
	}
	idx, err := index.Build(recs)
	if err != nil {
		return err
	}
	logger.Info("%d hits in %d model/chromosome groups", idx.Len(), len(idx.Keys()))
	names := element.HitNames(idx.Hits(), o.Prefix)

	var g *fasta.Genome
	if o.Genome != "" && !o.NoFASTA {
		if g, err = loadGenome(ctx, o.Genome); err != nil {
			return err
		}
	}

	out := output{o: o, stdout: stdout, genome: g, recs: idx.Hits(), names: names}
	if o.NoPairing {
		hits := element.Hits(idx.Hits(), names, o.Threshold)
		if len(hits) == 0 {
			return filteredOut(idx.Len())
		}
		logger.Info("pairing off: reporting %d hits", len(hits))
		return out.write(ctx, element.Set{Hits: hits, Unpaired: hits, HitNames: names}, nil)
	}

	logger.Section("Pairing")
	if err := idx.FindCandidates(o.MaxDist); err != nil {
		return err
	}
	eng := pairing.New(o.Pairing)
	res, err := eng.Run(idx)
	if err != nil {
		return err
	}
	set, err := element.Extract(idx, res, element.Options{Prefix: o.Prefix, Report: o.Report, Threshold: o.Threshold})
	if err != nil {
		return err
	}
	sum := report.FromResult(idx.Len(), len(set.Hits), eng.Config(), res)
	sum.Log()
	if o.Summary != "" {
		if err := sum.WriteFile(o.Summary); err != nil {
			return err
		}
	}
	if len(set.Elements) == 0 && len(set.Hits) == 0 {
		return filteredOut(idx.Len())
	}

	elems := set.Elements
	if elems == nil {
		elems = []element.Feature{}
	}
	return out.write(ctx, set, elems)
}

// filteredOut reports a run whose n hits all failed the output threshold
// and that paired none of them.
func filteredOut(n int) error {
	return fmt.Errorf("%w: all %d hits fail --max-eval/--min-score", index.ErrNoHits, n)
}

// hitSources runs the search tools (run) or lists the given files (pair).
func hitSources(ctx context.Context, o config.Options, r search.Runner) ([]hitio.Source, func(), error) {
	if o.Mode == config.ModePair {
		srcs := make([]hitio.Source, 0, len(o.Hits))
		for _, p := range o.Hits {
			m := o.Model
			if m == "" {
				m = hitio.ModelFromPath(p)
			}
			srcs = append(srcs, hitio.Source{Path: p, Format: o.HitsFormat, Model: m})
		}
		return srcs, nil, nil
	}

	logger.Section("Search")
	tools := o.Tools
	if o.UseBowtie2 {
		tools.NHMMER, tools.HMMBuild = "", ""
	} else {
		tools.Bowtie2, tools.Bowtie2Build = "", ""
		if o.AlnDir == "" && o.AlnFile == "" {
			tools.HMMBuild = ""
		}
	}
	if missing := search.MissingTools(tools); len(missing) > 0 {
		logger.Warnf("some tools required by tirmite could not be found: %v", missing)
	}

	tmp, cleanup, err := search.TempDir(o.Outdir, o.KeepTemp)
	if err != nil {
		return nil, nil, err
	}
	req := search.Request{
		Genome:    o.Genome,
		AlnFormat: o.AlnFormat,
		NHMMER:    search.NHMMEROptions{Cores: o.Cores, NoBias: o.NoBias, Matrix: o.Matrix},
		Tools:     o.Tools,
		TempDir:   tmp,
	}
	if o.UseBowtie2 {
		req.BowtieTIR = o.BtTIR
	} else {
		if req.HMMFiles, err = inputs(o.HMMDir, o.HMMFile, ".hmm"); err != nil {
			return nil, cleanup, err
		}
		if req.AlnFiles, err = inputs(o.AlnDir, o.AlnFile); err != nil {
			return nil, cleanup, err
		}
	}
	srcs, err := search.Search(ctx, r, req)
	return srcs, cleanup, err
}

func inputs(dir, file string, exts ...string) ([]string, error) {
	switch {
	case dir != "":
		return search.Expand(dir, exts...)
	case file != "":
		if _, err := os.Stat(file); err != nil {
			return nil, err
		}
		return []string{file}, nil
	}
	return nil, nil
}

func loadGenome(ctx context.Context, path string) (*fasta.Genome, error) {
	g, err := fasta.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("loading genome: %w", err)
	}
	var total int64
	for _, id := range g.IDs() {
		total += int64(g.Len(id))
	}
	logger.Info("genome %s: %d sequences, %s", path, len(g.IDs()), report.Size(total))
	return g, nil
}

// output writes every configured report of one run.
type output struct {
	o      config.Options
	stdout io.Writer
	genome *fasta.Genome
	recs   []hit.Record
	names  []string
}

// write emits the stdout report, the GFF3 file, the FASTA files and the
// SQLite export. elems is nil in hits-only mode.
func (w output) write(ctx context.Context, set element.Set, elems []element.Feature) error {
	o := w.o
	opts := writers.Options{Header: o.Header(), SuppressMeta: o.SuppressMeta(), HitNames: set.HitNames}
	rows := writers.Flatten(elems, o.Report.WithArms(), set.Unpaired)

	if o.Output != config.OutputNone {
		bw := bufio.NewWriter(w.stdout)
		if err := writers.WriteAll(bw, o.Output, opts, rows); err != nil {
			return err
		}
		if err := writers.IgnoreBrokenPipe(bw.Flush()); err != nil {
			return err
		}
	}
	if o.GFFOut != "" {
		p := filepath.Join(o.Outdir, o.GFFOut)
		if err := writers.WriteFile(p, writers.FormatGFF3, opts, rows); err != nil {
			return err
		}
		logger.Info("wrote %s", p)
	}
	if w.genome != nil {
		paths, err := writers.WriteFASTAFiles(o.Outdir, element.NewNamer(o.Prefix), w.genome, elems, set.Hits, o.SuppressMeta())
		if err != nil {
			return err
		}
		for _, p := range paths {
			logger.Info("wrote %s", p)
		}
	}
	if o.SQLite != "" {
		if err := writers.ExportSQLite(ctx, o.SQLite, w.recs, w.names, elems, o.SuppressMeta()); err != nil {
			return err
		}
		logger.Info("wrote %s", o.SQLite)
	}
	return nil
}
