package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"tirmite-core/index"
	"tirmite-core/pairing"
	"tirmite/internal/logger"
)

func sampleResult() pairing.Result {
	return pairing.Result{
		Pairs:    make([]pairing.Pair, 3),
		Unpaired: []int{7, 9},
		Groups: []pairing.GroupStats{
			{Key: index.Key{Model: "m", Chrom: "chr1"}, Hits: 4, Pairs: 2, Rounds: 2},
			{Key: index.Key{Model: "m", Chrom: "chr2"}, Hits: 4, Pairs: 1, Unpaired: 2, Rounds: 3, IdleRounds: 1},
		},
	}
}

func TestFromResult(t *testing.T) {
	s := FromResult(8, 6, pairing.Config{Pruning: pairing.PruneDeferred}, sampleResult())
	assert.Equal(t, 3, s.Pairs)
	assert.Equal(t, 2, s.Unpaired)
	assert.Equal(t, 2, s.Groups)
	assert.Equal(t, 3, s.Rounds)
	assert.Equal(t, "deferred", s.Pruning)
	require.Len(t, s.PerGroup, 2)
	assert.Equal(t, "chr2", s.PerGroup[1].Chrom)
	_, err := uuid.Parse(s.RunID)
	assert.NoError(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	s := FromResult(8, 6, pairing.Config{}, sampleResult())
	path := filepath.Join(t.TempDir(), "summary.yaml")
	require.NoError(t, s.WriteFile(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "idle_rounds: 1")

	var back Summary
	require.NoError(t, yaml.Unmarshal(raw, &back))
	assert.Equal(t, s, back)
}

func TestLogUsesHumanNumbers(t *testing.T) {
	defer logger.Reset()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)

	FromResult(12000, 10, pairing.Config{}, pairing.Result{Pairs: make([]pairing.Pair, 1500)}).Log()
	assert.Contains(t, buf.String(), "12,000 hits")
	assert.Contains(t, buf.String(), "1,500 elements")
	assert.Contains(t, buf.String(), "25% of hits paired")
	assert.Equal(t, "1.0 kB", Size(1000))
}
