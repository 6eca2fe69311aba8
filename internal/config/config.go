// Package config holds the options of a tirmite run, decoded by Viper from
// command-line flags, TIRMITE_* environment variables and an optional YAML
// config file (in that order of precedence).
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"tirmite-core/element"
	"tirmite-core/pairing"
	"tirmite/internal/hitio"
	"tirmite/internal/search"
	"tirmite/internal/writers"
)

// Commands that take options.
const (
	ModeRun  = "run"
	ModePair = "pair"
)

// EnvPrefix is the prefix of environment overrides, e.g. TIRMITE_MAX_EVAL.
const EnvPrefix = "TIRMITE"

// Options is the decoded configuration of one invocation.
type Options struct {
	// Config file, if any
	Config string `mapstructure:"config"`

	// Search input
	Genome     string `mapstructure:"genome"`
	HMMDir     string `mapstructure:"hmm-dir"`
	HMMFile    string `mapstructure:"hmm-file"`
	AlnDir     string `mapstructure:"aln-dir"`
	AlnFile    string `mapstructure:"aln-file"`
	AlnFormat  string `mapstructure:"aln-format"`
	UseBowtie2 bool   `mapstructure:"use-bowtie2"`
	BtTIR      string `mapstructure:"bt-tir"`

	search.Tools `mapstructure:",squash"`

	// Pre-computed hits
	Hits       []string `mapstructure:"hits"`
	HitsFormat string   `mapstructure:"hits-format"`
	Model      string   `mapstructure:"model"`

	// nhmmer
	Cores    int     `mapstructure:"cores"`
	NoBias   bool    `mapstructure:"no-bias"`
	Matrix   string  `mapstructure:"matrix"`
	MaxEval  float64 `mapstructure:"max-eval"`
	MinScore float64 `mapstructure:"min-score"`

	// Pairing
	MaxDist    int    `mapstructure:"max-dist"`
	StableReps int    `mapstructure:"stable-reps"`
	Metric     string `mapstructure:"metric"`
	Rank       string `mapstructure:"rank"`
	Prune      string `mapstructure:"prune"`
	Threads    int    `mapstructure:"threads"`
	NoPairing  bool   `mapstructure:"no-pairing"`

	// Output
	Outdir         string `mapstructure:"outdir"`
	Prefix         string `mapstructure:"prefix"`
	GFFOut         string `mapstructure:"gff-out"`
	ReportTIR      string `mapstructure:"report-tir"`
	Output         string `mapstructure:"output"`
	NoHeader       bool   `mapstructure:"no-header"`
	NoFASTA        bool   `mapstructure:"no-fasta"`
	SQLite         string `mapstructure:"sqlite"`
	Summary        string `mapstructure:"summary"`
	KeepTemp       bool   `mapstructure:"keep-temp"`
	Verbose        bool   `mapstructure:"verbose"`
	Quiet          bool   `mapstructure:"quiet"`
	NoHitsExitCode int    `mapstructure:"no-hits-exit-code"`

	// Resolved by Validate
	Mode      string            `mapstructure:"-"`
	Pairing   pairing.Config    `mapstructure:"-"`
	Report    element.Report    `mapstructure:"-"`
	Threshold element.Threshold `mapstructure:"-"`
}

// OutputNone disables the stdout report.
const OutputNone = "none"

// RegisterShared adds the flags common to run and pair.
func RegisterShared(fs *pflag.FlagSet) {
	fs.String("config", "", "YAML config file; flags and TIRMITE_* variables override it")
	fs.String("genome", "", "genome FASTA (gzip ok, '-' = stdin); needed for FASTA output")

	fs.Float64("max-eval", 0.001, "maximum e-value of reported hits (0 = off)")
	fs.Float64("min-score", 0, "minimum score of reported hits (0 = off)")
	fs.Int("max-dist", -1, "maximum gap between paired hits (-1 = unbounded)")
	fs.Int("stable-reps", 0, "extra rounds to continue after a round pairs nothing (only with --prune deferred)")
	fs.String("metric", "evalue", "hit quality metric: evalue | score")
	fs.String("rank", "quality,gap,id", "candidate ranking order over quality, gap, id")
	fs.String("prune", "eager", "taken-candidate pruning: eager | deferred")
	fs.Int("threads", 1, "groups paired concurrently (0 = all CPUs)")
	fs.Bool("no-pairing", false, "report hits only; do not pair")

	fs.String("outdir", ".", "directory for output files")
	fs.String("prefix", "", "prefix for feature names and output files")
	fs.String("gff-out", "", "GFF3 file name in outdir (not written if unset)")
	fs.String("report-tir", "all", "TIR features to report: all | paired | unpaired | none")
	fs.StringP("output", "o", writers.FormatText, "stdout report: "+strings.Join(writers.Formats(), " | ")+" | none")
	fs.Bool("no-header", false, "suppress header line in text output")
	fs.Bool("no-fasta", false, "do not write element and hit FASTA files")
	fs.String("sqlite", "", "also export hits and features to this SQLite database")
	fs.String("summary", "", "write a YAML run summary to this file")
	fs.BoolP("verbose", "v", false, "log progress and external commands")
	fs.BoolP("quiet", "q", false, "suppress warnings")
	fs.Int("no-hits-exit-code", 1, "exit code when there are no hits")
}

// RegisterRun adds the search flags of the run command.
func RegisterRun(fs *pflag.FlagSet) {
	fs.String("hmm-dir", "", "directory of TIR profile HMMs (*.hmm)")
	fs.String("hmm-file", "", "single TIR profile HMM")
	fs.String("aln-dir", "", "directory of TIR alignments to build profiles from")
	fs.String("aln-file", "", "single TIR alignment to build a profile from")
	fs.String("aln-format", "fasta", "alignment format passed to hmmbuild")
	fs.Bool("use-bowtie2", false, "map a short TIR with bowtie2 instead of nhmmer")
	fs.String("bt-tir", "", "FASTA with the single TIR mapped by bowtie2")
	fs.Int("cores", 1, "CPUs for nhmmer and bowtie2")
	fs.Bool("no-bias", false, "turn off nhmmer bias correction")
	fs.String("matrix", "", "custom DNA substitution matrix for nhmmer")
	fs.Bool("keep-temp", false, "keep the temporary directory")
	fs.String("nhmmer", search.DefaultTools.NHMMER, "nhmmer executable")
	fs.String("hmmbuild", search.DefaultTools.HMMBuild, "hmmbuild executable")
	fs.String("bowtie2", search.DefaultTools.Bowtie2, "bowtie2 executable")
	fs.String("bowtie2-build", search.DefaultTools.Bowtie2Build, "bowtie2-build executable")
}

// RegisterPair adds the hit input flags of the pair command.
func RegisterPair(fs *pflag.FlagSet) {
	fs.StringArray("hits", nil, "hit file (repeatable); positional arguments are added")
	fs.String("hits-format", hitio.FormatAuto, "hit file format: auto | tblout | bed | sam")
	fs.String("model", "", "model name for BED/SAM hits (default: file name)")
}

// Load decodes Options for mode from fs, the environment and the config file.
// Positional arguments of the pair command are appended to Hits.
func Load(v *viper.Viper, fs *pflag.FlagSet, mode string, positional []string) (Options, error) {
	if err := v.BindPFlags(fs); err != nil {
		return Options{}, err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if cfg := v.GetString("config"); cfg != "" {
		v.SetConfigFile(cfg)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Options{}, fmt.Errorf("reading config %s: %w", cfg, err)
		}
	}
	var o Options
	if err := v.Unmarshal(&o); err != nil {
		return Options{}, fmt.Errorf("decoding options: %w", err)
	}
	o.Mode = mode
	o.Hits = append(o.Hits, positional...)
	return o, o.Validate()
}

// Validate checks invariants and resolves the enum options.
func (o *Options) Validate() error {
	switch o.Mode {
	case ModeRun:
		if err := o.validateRun(); err != nil {
			return err
		}
	case ModePair:
		if len(o.Hits) == 0 {
			return errors.New("provide at least one hit file (--hits or positional)")
		}
		f, err := hitio.ParseFormat(o.HitsFormat)
		if err != nil {
			return err
		}
		o.HitsFormat = f
	default:
		return fmt.Errorf("unknown mode %q", o.Mode)
	}

	if o.MaxEval < 0 {
		return errors.New("--max-eval must be ≥ 0")
	}
	if o.MaxDist < -1 {
		return errors.New("--max-dist must be ≥ 0, or -1 for unbounded")
	}
	if o.StableReps < 0 {
		return errors.New("--stable-reps must be ≥ 0")
	}
	if o.Threads < 0 {
		return errors.New("--threads must be ≥ 0")
	}
	if o.Cores < 0 {
		return errors.New("--cores must be ≥ 0")
	}
	if o.Verbose && o.Quiet {
		return errors.New("--verbose conflicts with --quiet")
	}
	if o.Output != OutputNone {
		if _, err := writers.Lookup(o.Output); err != nil {
			return fmt.Errorf("invalid --output %q", o.Output)
		}
	}

	var err error
	if o.Report, err = element.ParseReport(o.ReportTIR); err != nil {
		return err
	}
	metric, err := pairing.ParseMetric(o.Metric)
	if err != nil {
		return err
	}
	ranking, err := pairing.ParseRanking(o.Rank)
	if err != nil {
		return err
	}
	pruning, err := pairing.ParsePruning(o.Prune)
	if err != nil {
		return err
	}
	o.Pairing = pairing.Config{
		StableReps: o.StableReps,
		Metric:     metric,
		Ranking:    ranking,
		Pruning:    pruning,
		Threads:    o.Threads,
	}
	o.Threshold = element.Threshold{MaxEValue: o.MaxEval, MinScore: o.MinScore}
	return nil
}

func (o *Options) validateRun() error {
	if o.Genome == "" {
		return errors.New("--genome is required")
	}
	if o.Genome == "-" {
		return errors.New("--genome must be a file for run: the search tools read it")
	}
	if o.UseBowtie2 {
		if o.BtTIR == "" {
			return errors.New("--use-bowtie2 requires --bt-tir")
		}
		return nil
	}
	if o.HMMDir != "" && o.HMMFile != "" {
		return errors.New("--hmm-dir conflicts with --hmm-file")
	}
	if o.AlnDir != "" && o.AlnFile != "" {
		return errors.New("--aln-dir conflicts with --aln-file")
	}
	if o.HMMDir == "" && o.HMMFile == "" && o.AlnDir == "" && o.AlnFile == "" {
		return errors.New("provide --hmm-dir, --hmm-file, --aln-dir or --aln-file (or --use-bowtie2)")
	}
	if o.AlnDir != "" || o.AlnFile != "" {
		if _, err := search.InFormat(o.AlnFormat); err != nil {
			return err
		}
	}
	return nil
}

// Header reports whether the text header row is printed.
func (o Options) Header() bool { return !o.NoHeader }

// SuppressMeta is set for mapped-read runs, whose scores are not e-values.
func (o Options) SuppressMeta() bool { return o.UseBowtie2 }
