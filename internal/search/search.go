// Package search composes and runs the external tools that produce hits:
// hmmbuild and nhmmer for profile searches, bowtie2-build and bowtie2 for
// short read mapping.
package search

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"tirmite/internal/hitio"
	"tirmite/internal/logger"
)

// Tools holds the executable names or paths.
type Tools struct {
	NHMMER       string `mapstructure:"nhmmer"`
	HMMBuild     string `mapstructure:"hmmbuild"`
	Bowtie2      string `mapstructure:"bowtie2"`
	Bowtie2Build string `mapstructure:"bowtie2-build"`
}

// DefaultTools resolves everything from PATH.
var DefaultTools = Tools{NHMMER: "nhmmer", HMMBuild: "hmmbuild", Bowtie2: "bowtie2", Bowtie2Build: "bowtie2-build"}

// Cmd is one external command.
type Cmd struct {
	Name string
	Args []string
}

func (c Cmd) String() string { return strings.Join(append([]string{c.Name}, c.Args...), " ") }

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, c Cmd) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, c Cmd) error {
	logger.Debug("exec: %s", c)
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %w: %s", c.Name, err, msg)
		}
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

// MissingTools returns the tools that cannot be found.
func MissingTools(t Tools) []string {
	var missing []string
	for _, name := range []string{t.NHMMER, t.HMMBuild, t.Bowtie2, t.Bowtie2Build} {
		if name == "" {
			continue
		}
		if _, err := exec.LookPath(name); err != nil {
			missing = append(missing, name)
		}
	}
	return missing
}

// alnFormats are the alignment formats hmmbuild reads via --informat.
var alnFormats = map[string]string{
	"fasta":     "afa",
	"afa":       "afa",
	"clustal":   "clustal",
	"stockholm": "stockholm",
	"phylip":    "phylip",
	"phylips":   "phylips",
	"selex":     "selex",
	"a2m":       "a2m",
	"psiblast":  "psiblast",
}

// InFormat maps an alignment format name to hmmbuild's --informat value.
func InFormat(f string) (string, error) {
	v, ok := alnFormats[strings.ToLower(f)]
	if !ok {
		keys := make([]string, 0, len(alnFormats))
		for k := range alnFormats {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return "", fmt.Errorf("unsupported alignment format %q (want %s)", f, strings.Join(keys, "|"))
	}
	return v, nil
}

// HMMBuildCmd builds a DNA profile from an alignment.
func HMMBuildCmd(t Tools, aln, format, hmmOut string) (Cmd, error) {
	inf, err := InFormat(format)
	if err != nil {
		return Cmd{}, err
	}
	return Cmd{Name: t.HMMBuild, Args: []string{"--dna", "--informat", inf, hmmOut, aln}}, nil
}

// NHMMEROptions are the nhmmer knobs exposed on the command line.
type NHMMEROptions struct {
	Cores  int
	NoBias bool
	Matrix string
}

// NHMMERCmd searches genome with one profile, writing a tblout table.
func NHMMERCmd(t Tools, o NHMMEROptions, hmm, genome, tblout string) Cmd {
	args := []string{"--cpu", strconv.Itoa(max(o.Cores, 1))}
	if o.NoBias {
		args = append(args, "--nobias")
	}
	if o.Matrix != "" {
		args = append(args, "--mxfile", o.Matrix)
	}
	args = append(args, "--noali", "--tblout", tblout, hmm, genome)
	return Cmd{Name: t.NHMMER, Args: args}
}

// Bowtie2BuildCmd indexes the genome.
func Bowtie2BuildCmd(t Tools, genome, indexPrefix string) Cmd {
	return Cmd{Name: t.Bowtie2Build, Args: []string{"-f", genome, indexPrefix}}
}

// Bowtie2Cmd maps a TIR FASTA against the index, reporting all alignments.
func Bowtie2Cmd(t Tools, cores int, indexPrefix, tirFasta, samOut string) Cmd {
	return Cmd{Name: t.Bowtie2, Args: []string{
		"-a", "--end-to-end", "-f", "-p", strconv.Itoa(max(cores, 1)),
		"-x", indexPrefix, "-U", tirFasta, "-S", samOut,
	}}
}

// Request describes a search.
type Request struct {
	Genome    string
	HMMFiles  []string
	AlnFiles  []string
	AlnFormat string
	BowtieTIR string // FASTA with one TIR; selects the bowtie2 path
	NHMMER    NHMMEROptions
	Tools     Tools
	TempDir   string
}

// Search runs the tools for req and returns the hit files they produced.
func Search(ctx context.Context, r Runner, req Request) ([]hitio.Source, error) {
	if req.BowtieTIR != "" {
		return mapReads(ctx, r, req)
	}
	hmms := append([]string(nil), req.HMMFiles...)
	for _, aln := range req.AlnFiles {
		out := filepath.Join(req.TempDir, hitio.ModelFromPath(aln)+".hmm")
		c, err := HMMBuildCmd(req.Tools, aln, req.AlnFormat, out)
		if err != nil {
			return nil, err
		}
		if err := r.Run(ctx, c); err != nil {
			return nil, err
		}
		hmms = append(hmms, out)
	}
	if len(hmms) == 0 {
		return nil, fmt.Errorf("no profiles to search with")
	}
	var srcs []hitio.Source
	for i, h := range hmms {
		tbl := filepath.Join(req.TempDir, fmt.Sprintf("%03d_%s.tab", i, hitio.ModelFromPath(h)))
		if err := r.Run(ctx, NHMMERCmd(req.Tools, req.NHMMER, h, req.Genome, tbl)); err != nil {
			return nil, err
		}
		srcs = append(srcs, hitio.Source{Path: tbl, Format: hitio.FormatTblout})
	}
	return srcs, nil
}

func mapReads(ctx context.Context, r Runner, req Request) ([]hitio.Source, error) {
	if _, err := os.Stat(req.BowtieTIR); err != nil {
		return nil, err
	}
	idx := filepath.Join(req.TempDir, "genome_index")
	sam := filepath.Join(req.TempDir, "mapped.sam")
	for _, c := range []Cmd{
		Bowtie2BuildCmd(req.Tools, req.Genome, idx),
		Bowtie2Cmd(req.Tools, req.NHMMER.Cores, idx, req.BowtieTIR, sam),
	} {
		if err := r.Run(ctx, c); err != nil {
			return nil, err
		}
	}
	return []hitio.Source{{Path: sam, Format: hitio.FormatSAM, Model: hitio.ModelFromPath(req.BowtieTIR)}}, nil
}

// Expand lists the files in dir (sorted) whose extensions match exts, or
// every regular file when exts is empty.
func Expand(dir string, exts ...string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range ents {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if len(exts) > 0 && !hasExt(e.Name(), exts) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil, fmt.Errorf("no input files in %s", dir)
	}
	return out, nil
}

func hasExt(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}

// TempDir creates the scratch directory under outdir. The returned cleanup
// removes it unless keep is set.
func TempDir(outdir string, keep bool) (string, func(), error) {
	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return "", nil, err
	}
	dir, err := os.MkdirTemp(outdir, "tirmite_tmp_")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() {
		if keep {
			logger.Info("keeping temporary files in %s", dir)
			return
		}
		_ = os.RemoveAll(dir)
	}
	return dir, cleanup, nil
}
