package hitio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tirmite-core/hit"
)

const tblout = `# target name  accession  query name  accession  hmmfrom hmm to alifrom  ali to envfrom  env to  sq len strand   E-value  score  bias  description of target
#------------------- ---------- -------------------- ---------- ------- ------- ------- ------- ------- ------- ------- ------ --------- ------ ----- ---------------------
chr1                 -          DTA_TIR              -                1      30     101     130     100     131   50000    +     1.2e-09   38.1   0.4  -
chr1                 -          DTA_TIR              -                1      30     930     901     931     900   50000    -     3.1e-08   33.5   0.2  some description
`

func TestReadTblout(t *testing.T) {
	recs, err := Read(context.Background(), strings.NewReader(tblout), "x.tab", FormatTblout, "", 0)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "DTA_TIR", recs[0].Model)
	assert.Equal(t, "chr1", recs[0].Chrom)
	assert.Equal(t, 100, recs[0].Start)
	assert.Equal(t, 130, recs[0].End)
	assert.Equal(t, hit.Plus, recs[0].Strand)
	assert.True(t, recs[0].HasEValue)
	assert.InDelta(t, 1.2e-9, recs[0].EValue, 1e-15)
	assert.Equal(t, "x.tab:3", recs[0].Origin)

	assert.Equal(t, 900, recs[1].Start)
	assert.Equal(t, 930, recs[1].End)
	assert.Equal(t, hit.Minus, recs[1].Strand)
	assert.Equal(t, hit.SourceProfile, recs[1].Source)
}

func TestReadBED(t *testing.T) {
	in := "track name=x\nchr2\t10\t40\tread1\t42\t-\nchr2\t500\t530\tread2\t.\t+\n"
	recs, err := Read(context.Background(), strings.NewReader(in), "m.bed", FormatBED, "Tc1", 5)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Tc1", recs[0].Model)
	assert.Equal(t, hit.Minus, recs[0].Strand)
	assert.False(t, recs[0].HasEValue)
	assert.Equal(t, float64(42), recs[0].Score)
	assert.Equal(t, hit.SourceMapped, recs[1].Source)
}

func TestReadSAM(t *testing.T) {
	in := strings.Join([]string{
		"@HD\tVN:1.0",
		"@SQ\tSN:chr1\tLN:1000",
		"r1\t0\tchr1\t11\t42\t5M1D4M\t*\t0\t0\tACGTAACGT\tIIIIIIIII",
		"r2\t16\tchr1\t200\t30\t2S8M\t*\t0\t0\tACGTAACGTA\tIIIIIIIIII",
		"r3\t4\t*\t0\t0\t*\t*\t0\t0\tACGT\tIIII",
	}, "\n")
	recs, err := Read(context.Background(), strings.NewReader(in), "m.sam", FormatSAM, "tir", 0)
	require.NoError(t, err)
	require.Len(t, recs, 2, "unmapped read must be skipped")
	assert.Equal(t, 10, recs[0].Start)
	assert.Equal(t, 20, recs[0].End)
	assert.Equal(t, hit.Plus, recs[0].Strand)
	assert.Equal(t, 199, recs[1].Start)
	assert.Equal(t, 207, recs[1].End)
	assert.Equal(t, hit.Minus, recs[1].Strand)
}

const samHead = "@SQ\tSN:chr1\tLN:100\n"

func TestMalformedLinesNameFileAndLine(t *testing.T) {
	cases := []struct {
		name, format, model, in, want string
	}{
		{"short tblout", FormatTblout, "", "chr1 - m - 1 2 3\n", "x:1"},
		{"bad evalue", FormatTblout, "", "chr1 - m - 1 30 1 30 1 30 99 + nope 3 0 -\n", "bad E-value"},
		{"reversed plus", FormatTblout, "", "chr1 - m - 1 30 30 1 1 30 99 + 1e-3 3 0 -\n", "plus-strand"},
		{"bed no strand", FormatBED, "m", "chr1\t1\t5\tn\t0\n", "strand"},
		{"bed bad strand", FormatBED, "m", "chr1\t1\t5\tn\t0\t.\n", "x:1"},
		{"bed empty span", FormatBED, "m", "chr1\t5\t5\tn\t0\t+\n", "x:1"},
		{"sam bad cigar", FormatSAM, "m", samHead + "r\t0\tchr1\t1\t0\t3Z\t*\t0\t0\tA\tI\n", "x:2"},
		{"sam no cigar", FormatSAM, "m", samHead + "r\t0\tchr1\t1\t0\t*\t*\t0\t0\tA\tI\n", "x:2"},
		{"sam unknown reference", FormatSAM, "m", "r\t0\tchr9\t1\t0\t1M\t*\t0\t0\tA\tI\n", "bad SAM record"},
		{"sam late header", FormatSAM, "m", samHead + "r\t0\tchr1\t1\t0\t1M\t*\t0\t0\tA\tI\n@SQ\tSN:chr2\tLN:5\n", "x:3"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Read(context.Background(), strings.NewReader(tc.in), "x", tc.format, tc.model, 0)
			var mh *hit.MalformedHitError
			require.True(t, errors.As(err, &mh), "want MalformedHitError, got %v", err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMappedFormatsNeedModel(t *testing.T) {
	_, err := Read(context.Background(), strings.NewReader(""), "x.bed", FormatBED, "", 0)
	assert.Error(t, err)
}

func TestLoadDetectsAndCountsAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	tab := filepath.Join(dir, "hits.tab")
	bed := filepath.Join(dir, "more.bed")
	require.NoError(t, os.WriteFile(tab, []byte(tblout), 0o644))
	require.NoError(t, os.WriteFile(bed, []byte("chr1\t1\t5\tn\t0\t+\nchr1\t9\t5\tn\t0\t+\n"), 0o644))

	_, err := Load(context.Background(), []Source{{Path: tab}, {Path: bed, Model: "m"}})
	var mh *hit.MalformedHitError
	require.True(t, errors.As(err, &mh))
	assert.Equal(t, 3, mh.Index)
	assert.Equal(t, bed+":2", mh.Origin)
}

func TestDetect(t *testing.T) {
	for path, want := range map[string]string{"a.tab": FormatTblout, "a.TBLOUT": FormatTblout, "b.bed": FormatBED, "c.sam": FormatSAM} {
		got, err := Detect(path)
		require.NoError(t, err)
		assert.Equal(t, want, got, path)
	}
	_, err := Detect("a.bam")
	assert.Error(t, err)
	assert.Equal(t, "DTA1", ModelFromPath("/x/DTA1.fa"))
}
