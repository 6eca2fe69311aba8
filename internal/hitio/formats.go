package hitio

import (
	"fmt"
	"strconv"

	"tirmite-core/hit"
)

// nhmmer --tblout columns: target, acc, query, acc, hmmfrom, hmmto, alifrom,
// alito, envfrom, envto, sqlen, strand, E-value, score, bias, description.
const tbloutMinCols = 15

func parseTblout(f []string, _ string) (hit.Payload, bool, error) {
	if len(f) < tbloutMinCols {
		return nil, false, fmt.Errorf("want at least %d columns, got %d", tbloutMinCols, len(f))
	}
	from, err := atoi("alifrom", f[6])
	if err != nil {
		return nil, false, err
	}
	to, err := atoi("alito", f[7])
	if err != nil {
		return nil, false, err
	}
	ev, err := atof("E-value", f[12])
	if err != nil {
		return nil, false, err
	}
	sc, err := atof("score", f[13])
	if err != nil {
		return nil, false, err
	}
	bias, err := atof("bias", f[14])
	if err != nil {
		return nil, false, err
	}
	return hit.ProfileHit{
		Model: f[2], Chrom: f[0],
		AliFrom: from, AliTo: to, Strand: f[11],
		EValue: ev, Score: sc, Bias: bias,
	}, true, nil
}

// BED6: chrom start end name score strand. The name column is ignored; the
// model comes from the caller.
func parseBED(f []string, model string) (hit.Payload, bool, error) {
	if len(f) < 6 {
		return nil, false, fmt.Errorf("want 6 BED columns with strand, got %d", len(f))
	}
	start, err := atoi("start", f[1])
	if err != nil {
		return nil, false, err
	}
	end, err := atoi("end", f[2])
	if err != nil {
		return nil, false, err
	}
	var sc float64
	if f[4] != "." {
		if sc, err = atof("score", f[4]); err != nil {
			return nil, false, err
		}
	}
	return hit.MappedHit{Model: model, Chrom: f[0], Start: start, End: end, Strand: f[5], Score: sc}, true, nil
}

func atoi(name, s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", name, s)
	}
	return v, nil
}

func atof(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", name, s)
	}
	return v, nil
}
