// core/hit/hit.go
package hit

import (
	"fmt"
	"math"
)

// Strand is the reference strand a hit was reported on.
type Strand byte

const (
	Plus  Strand = '+'
	Minus Strand = '-'
)

func (s Strand) String() string { return string(s) }

// Valid reports whether s is '+' or '-'.
func (s Strand) Valid() bool { return s == Plus || s == Minus }

// Opposite returns the other strand.
func (s Strand) Opposite() Strand {
	if s == Plus {
		return Minus
	}
	return Plus
}

// ParseStrand accepts "+" or "-".
func ParseStrand(v string) (Strand, error) {
	switch v {
	case "+":
		return Plus, nil
	case "-":
		return Minus, nil
	}
	return 0, fmt.Errorf("bad strand %q", v)
}

// Source tags which search tool produced a hit.
type Source int

const (
	SourceProfile Source = iota // profile-HMM scan (nhmmer)
	SourceMapped                // short-read mapping (bowtie2)
)

func (s Source) String() string {
	switch s {
	case SourceProfile:
		return "profile-scan"
	case SourceMapped:
		return "short-read-map"
	}
	return fmt.Sprintf("source(%d)", int(s))
}

// Record is one positional hit. Coordinates are 0-based half-open and always
// on the plus strand of the reference, whatever the hit strand.
//
// Records are immutable once built; pairing state lives in the index.
type Record struct {
	ID     int
	Model  string
	Chrom  string
	Start  int
	End    int
	Strand Strand

	EValue    float64
	HasEValue bool
	Score     float64

	Source Source
	Origin string // "file:line" or "#index"; used in error messages only
}

// Len is the hit span in bases.
func (r Record) Len() int { return r.End - r.Start }

// RankEValue is the e-value used for ranking. Hits without one (mapped reads)
// rank as the best possible.
func (r Record) RankEValue() float64 {
	if !r.HasEValue {
		return 0
	}
	return r.EValue
}

// Validate checks the structural invariants the index relies on.
func (r Record) Validate() error {
	switch {
	case r.Model == "":
		return fmt.Errorf("empty model name")
	case r.Chrom == "":
		return fmt.Errorf("empty chromosome")
	case r.Start < 0:
		return fmt.Errorf("negative start %d", r.Start)
	case r.Start >= r.End:
		return fmt.Errorf("start %d not before end %d", r.Start, r.End)
	case !r.Strand.Valid():
		return fmt.Errorf("bad strand %q", byte(r.Strand))
	case r.HasEValue && (math.IsNaN(r.EValue) || r.EValue < 0):
		return fmt.Errorf("bad e-value %v", r.EValue)
	case math.IsNaN(r.Score):
		return fmt.Errorf("bad score")
	}
	return nil
}

// Gap is the distance between the nearer edges of a and b; 0 when they touch
// or overlap.
func Gap(a, b Record) int {
	lo := a.Start
	if b.Start > lo {
		lo = b.Start
	}
	hi := a.End
	if b.End < hi {
		hi = b.End
	}
	if d := lo - hi; d > 0 {
		return d
	}
	return 0
}
