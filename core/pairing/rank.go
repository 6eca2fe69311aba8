// core/pairing/rank.go
package pairing

import (
	"fmt"
	"strings"

	"tirmite-core/hit"
)

// Metric selects the quality measure used to rank candidates.
type Metric int

const (
	MetricEValue Metric = iota // lower is better
	MetricScore                // higher is better
)

func (m Metric) String() string {
	if m == MetricScore {
		return "score"
	}
	return "evalue"
}

// ParseMetric accepts "evalue" or "score".
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "evalue", "e-value":
		return MetricEValue, nil
	case "score", "bitscore":
		return MetricScore, nil
	}
	return 0, fmt.Errorf("unknown metric %q (want evalue|score)", s)
}

// Criterion is one key of the candidate ranking.
type Criterion int

const (
	ByQuality Criterion = iota
	ByGap
	ByID
)

func (c Criterion) String() string {
	switch c {
	case ByQuality:
		return "quality"
	case ByGap:
		return "gap"
	case ByID:
		return "id"
	}
	return fmt.Sprintf("criterion(%d)", int(c))
}

// DefaultRanking is quality, then gap, then id.
var DefaultRanking = []Criterion{ByQuality, ByGap, ByID}

// ParseRanking reads a comma separated criterion list such as "gap,quality".
// Duplicates are rejected; id is appended when missing so the order is total.
func ParseRanking(s string) ([]Criterion, error) {
	if strings.TrimSpace(s) == "" {
		return append([]Criterion(nil), DefaultRanking...), nil
	}
	var out []Criterion
	seen := map[Criterion]bool{}
	for _, f := range strings.Split(s, ",") {
		var c Criterion
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "quality", "q":
			c = ByQuality
		case "gap", "distance", "d":
			c = ByGap
		case "id":
			c = ByID
		default:
			return nil, fmt.Errorf("unknown ranking criterion %q (want quality|gap|id)", f)
		}
		if seen[c] {
			return nil, fmt.Errorf("ranking criterion %q repeated", f)
		}
		seen[c] = true
		out = append(out, c)
	}
	return normalizeRanking(out), nil
}

func normalizeRanking(r []Criterion) []Criterion {
	if len(r) == 0 {
		return append([]Criterion(nil), DefaultRanking...)
	}
	for _, c := range r {
		if c == ByID {
			return r
		}
	}
	return append(append([]Criterion(nil), r...), ByID)
}

// ranker orders the candidates of one viewing hit.
type ranker struct {
	metric   Metric
	criteria []Criterion
}

// better reports whether candidate a ranks above candidate b from the point
// of view of hit h.
func (r ranker) better(h, a, b hit.Record) bool {
	for _, c := range r.criteria {
		switch c {
		case ByQuality:
			if r.metric == MetricScore {
				if a.Score != b.Score {
					return a.Score > b.Score
				}
			} else if ea, eb := a.RankEValue(), b.RankEValue(); ea != eb {
				return ea < eb
			}
		case ByGap:
			if ga, gb := hit.Gap(h, a), hit.Gap(h, b); ga != gb {
				return ga < gb
			}
		case ByID:
			if a.ID != b.ID {
				return a.ID < b.ID
			}
		}
	}
	return false
}
