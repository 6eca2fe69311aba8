package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tirmite-core/element"
	"tirmite-core/hit"
	"tirmite-core/pairing"
)

func load(t *testing.T, mode string, args ...string) (Options, error) {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterShared(fs)
	switch mode {
	case ModeRun:
		RegisterRun(fs)
	case ModePair:
		RegisterPair(fs)
	}
	require.NoError(t, fs.Parse(args))
	return Load(viper.New(), fs, mode, fs.Args())
}

func TestPairDefaults(t *testing.T) {
	o, err := load(t, ModePair, "a.tab", "--hits", "b.bed")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.bed", "a.tab"}, o.Hits)
	assert.Equal(t, "auto", o.HitsFormat)
	assert.Equal(t, -1, o.MaxDist)
	assert.Equal(t, 0.001, o.MaxEval)
	assert.Equal(t, 1, o.NoHitsExitCode)
	assert.Equal(t, element.ReportAll, o.Report)
	assert.Equal(t, pairing.PruneEager, o.Pairing.Pruning)
	assert.Equal(t, []pairing.Criterion{pairing.ByQuality, pairing.ByGap, pairing.ByID}, o.Pairing.Ranking)
	assert.True(t, o.Header())
}

func TestRunValidation(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"no genome", []string{"--hmm-file", "a.hmm"}, "--genome"},
		{"no profiles", []string{"--genome", "g.fa"}, "provide --hmm-dir"},
		{"hmm conflict", []string{"--genome", "g.fa", "--hmm-dir", "d", "--hmm-file", "f"}, "conflicts"},
		{"bowtie needs tir", []string{"--genome", "g.fa", "--use-bowtie2"}, "--bt-tir"},
		{"bad aln format", []string{"--genome", "g.fa", "--aln-file", "a", "--aln-format", "nexus"}, "alignment format"},
		{"bad report", []string{"--genome", "g.fa", "--hmm-file", "a", "--report-tir", "some"}, "report mode"},
		{"bad output", []string{"--genome", "g.fa", "--hmm-file", "a", "-o", "xml"}, "--output"},
		{"bad max-dist", []string{"--genome", "g.fa", "--hmm-file", "a", "--max-dist", "-5"}, "--max-dist"},
		{"bad rank", []string{"--genome", "g.fa", "--hmm-file", "a", "--rank", "gap,gap"}, "gap"},
		{"verbose and quiet", []string{"--genome", "g.fa", "--hmm-file", "a", "-v", "-q"}, "conflicts"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := load(t, ModeRun, tc.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestRunOK(t *testing.T) {
	o, err := load(t, ModeRun, "--genome", "g.fa", "--hmm-dir", "hmms", "--nhmmer", "/opt/nhmmer", "--prune", "deferred", "--stable-reps", "2")
	require.NoError(t, err)
	assert.Equal(t, "/opt/nhmmer", o.NHMMER)
	assert.Equal(t, "hmmbuild", o.HMMBuild)
	assert.Equal(t, pairing.PruneDeferred, o.Pairing.Pruning)
	assert.Equal(t, 2, o.Pairing.StableReps)
	assert.False(t, o.SuppressMeta())
}

func TestPairNeedsHits(t *testing.T) {
	_, err := load(t, ModePair)
	assert.ErrorContains(t, err, "hit file")
}

func TestEnvAndConfigFile(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "tirmite.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("max-dist: 5000\nprefix: fromfile\nmetric: score\n"), 0o644))
	t.Setenv("TIRMITE_PREFIX", "fromenv")

	o, err := load(t, ModePair, "--config", cfg, "h.tab", "--stable-reps", "3")
	require.NoError(t, err)
	assert.Equal(t, 5000, o.MaxDist)
	assert.Equal(t, "fromenv", o.Prefix, "environment overrides the config file")
	assert.Equal(t, pairing.MetricScore, o.Pairing.Metric)
	assert.Equal(t, 3, o.StableReps)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := load(t, ModePair, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "h.tab")
	assert.ErrorContains(t, err, "reading config")
}

func TestThresholdAndPatienceHelp(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterShared(fs)
	assert.Contains(t, fs.Lookup("max-eval").Usage, "0 = off")
	assert.Contains(t, fs.Lookup("min-score").Usage, "0 = off")
	assert.Contains(t, fs.Lookup("stable-reps").Usage, "--prune deferred")

	o, err := load(t, ModePair, "h.tab", "--max-eval", "0")
	require.NoError(t, err)
	assert.True(t, o.Threshold.Pass(hit.Record{EValue: 5, HasEValue: true}), "0 disables the e-value filter")
}
