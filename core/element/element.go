// Package element turns resolved pairs and leftover hits into feature
// records for the serializers. All coordinates stay 0-based half-open;
// conversion to 1-based formats is the writer's job.
package element

import (
	"fmt"
	"sort"
	"strings"

	"tirmite-core/hit"
	"tirmite-core/index"
	"tirmite-core/pairing"
)

// Feature types, named after their Sequence Ontology terms.
const (
	TypeElement = "terminal_inverted_repeat_element"
	TypeTIR     = "terminal_inverted_repeat"
)

// Report selects which TIR hit features accompany the elements.
type Report int

const (
	ReportAll      Report = iota // arms of elements and unpaired hits
	ReportPaired                 // arms of elements only
	ReportUnpaired               // unpaired hits only
	ReportNone                   // elements only
)

func (r Report) String() string {
	switch r {
	case ReportAll:
		return "all"
	case ReportPaired:
		return "paired"
	case ReportUnpaired:
		return "unpaired"
	}
	return "none"
}

// ParseReport accepts all|paired|unpaired|none.
func ParseReport(s string) (Report, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "all", "":
		return ReportAll, nil
	case "paired":
		return ReportPaired, nil
	case "unpaired":
		return ReportUnpaired, nil
	case "none":
		return ReportNone, nil
	}
	return 0, fmt.Errorf("unknown report mode %q (want all|paired|unpaired|none)", s)
}

// WithArms reports whether element arms are emitted as features.
func (r Report) WithArms() bool { return r == ReportAll || r == ReportPaired }

// WithUnpaired reports whether unpaired hits are emitted as features.
func (r Report) WithUnpaired() bool { return r == ReportAll || r == ReportUnpaired }

// Threshold decides which hits are good enough to emit as hit features.
// Zero values disable the corresponding test.
type Threshold struct {
	MaxEValue float64 // hits with an e-value above this are dropped
	MinScore  float64 // hits scoring below this are dropped
}

// Pass reports whether r clears the threshold. Hits without an e-value are
// not tested against MaxEValue.
func (t Threshold) Pass(r hit.Record) bool {
	if t.MaxEValue > 0 && r.HasEValue && r.EValue > t.MaxEValue {
		return false
	}
	if t.MinScore != 0 && r.Score < t.MinScore {
		return false
	}
	return true
}

// Options controls extraction.
type Options struct {
	Prefix    string
	Report    Report
	Threshold Threshold
}

// Feature is one output record.
type Feature struct {
	Type        string
	ID          string
	Name        string
	Parent      string // element ID for arms
	Chrom       string
	Start       int // 0-based
	End         int // exclusive
	Strand      hit.Strand
	Orientation string // element only: five-prime strand then three-prime strand, e.g. "+-"
	Model       string
	Members     []int // hit ids
	EValue      float64
	HasEValue   bool
	Score       float64
	Arms        []Feature // element only: five-prime arm then three-prime arm
}

// Len is the feature span in bases.
func (f Feature) Len() int { return f.End - f.Start }

// Set is the extractor's output.
type Set struct {
	Elements []Feature // paired elements, numbered in chrom/position order
	Unpaired []Feature // unpaired hits passing the threshold (when reported)
	Hits     []Feature // every hit passing the threshold, for per-model FASTA
	HitNames []string  // name of every hit by id, for cross references
}

// Namer builds the sequential names used across all outputs.
type Namer struct{ prefix string }

// NewNamer returns a Namer; a non-empty prefix is joined with "_".
func NewNamer(prefix string) Namer {
	if prefix != "" && !strings.HasSuffix(prefix, "_") {
		prefix += "_"
	}
	return Namer{prefix: prefix}
}

func (n Namer) Element(i int) string { return fmt.Sprintf("%sElement_%d", n.prefix, i) }
func (n Namer) TIR(i int) string     { return fmt.Sprintf("%sTIR_%d", n.prefix, i) }

// File returns a file name carrying the prefix.
func (n Namer) File(base string) string { return n.prefix + base }

// Extract derives element and hit features. Element arms are always kept;
// the threshold only filters standalone hit features.
func Extract(idx *index.Index, res pairing.Result, opt Options) (Set, error) {
	if idx.Phase() != index.PhasePaired {
		return Set{}, fmt.Errorf("%w: extract needs a paired index, have %s", index.ErrPhase, idx.Phase())
	}
	nm := NewNamer(opt.Prefix)
	set := Set{HitNames: hitNames(idx.Hits(), nm)}

	pairs := append([]pairing.Pair(nil), res.Pairs...)
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i], pairs[j]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		return a.FivePrime < b.FivePrime
	})
	for i, p := range pairs {
		five, three := idx.Hit(p.FivePrime), idx.Hit(p.ThreePrime)
		el := Feature{
			Type:        TypeElement,
			ID:          nm.Element(i + 1),
			Name:        nm.Element(i + 1),
			Chrom:       p.Chrom,
			Start:       p.Start,
			End:         p.End,
			Strand:      five.Strand,
			Orientation: string(five.Strand) + string(three.Strand),
			Model:       p.Model,
			Members:     []int{five.ID, three.ID},
		}
		el.Arms = []Feature{
			hitFeature(five, set.HitNames[five.ID], el.ID),
			hitFeature(three, set.HitNames[three.ID], el.ID),
		}
		set.Elements = append(set.Elements, el)
	}

	if opt.Report.WithUnpaired() {
		for _, id := range res.Unpaired {
			r := idx.Hit(id)
			if opt.Threshold.Pass(r) {
				set.Unpaired = append(set.Unpaired, hitFeature(r, set.HitNames[id], ""))
			}
		}
		sortFeatures(set.Unpaired)
	}
	set.Hits = Hits(idx.Hits(), set.HitNames, opt.Threshold)
	return set, nil
}

// Hits returns a feature for every hit passing the threshold, in
// chrom/position order. It does not need a paired index and backs the
// hits-only mode.
func Hits(recs []hit.Record, names []string, th Threshold) []Feature {
	var out []Feature
	for _, r := range recs {
		if th.Pass(r) {
			out = append(out, hitFeature(r, names[r.ID], ""))
		}
	}
	sortFeatures(out)
	return out
}

// HitNames numbers every hit in chrom/start/end/model/id order, so a hit's
// name does not depend on how it was paired.
func HitNames(recs []hit.Record, prefix string) []string {
	return hitNames(recs, NewNamer(prefix))
}

func hitNames(recs []hit.Record, nm Namer) []string {
	order := make([]int, len(recs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := recs[order[i]], recs[order[j]]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		if a.Model != b.Model {
			return a.Model < b.Model
		}
		return a.ID < b.ID
	})
	names := make([]string, len(recs))
	for n, i := range order {
		names[recs[i].ID] = nm.TIR(n + 1)
	}
	return names
}

func hitFeature(r hit.Record, name, parent string) Feature {
	return Feature{
		Type:      TypeTIR,
		ID:        name,
		Name:      name,
		Parent:    parent,
		Chrom:     r.Chrom,
		Start:     r.Start,
		End:       r.End,
		Strand:    r.Strand,
		Model:     r.Model,
		Members:   []int{r.ID},
		EValue:    r.EValue,
		HasEValue: r.HasEValue,
		Score:     r.Score,
	}
}

func sortFeatures(fs []Feature) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Chrom != b.Chrom {
			return a.Chrom < b.Chrom
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Members[0] < b.Members[0]
	})
}
