// core/hit/payload.go
package hit

import "fmt"

// Payload is the raw shape of a hit as reported by one of the search tools.
// The set of payloads is closed: ProfileHit and MappedHit.
type Payload interface {
	source() Source
	record() (Record, error)
}

// ProfileHit is one row of nhmmer tabular output. AliFrom/AliTo are printed
// 1-based and inclusive; on the minus strand AliFrom > AliTo.
type ProfileHit struct {
	Model   string
	Chrom   string
	AliFrom int
	AliTo   int
	Strand  string
	EValue  float64
	Score   float64
	Bias    float64
}

func (ProfileHit) source() Source { return SourceProfile }

func (p ProfileHit) record() (Record, error) {
	st, err := ParseStrand(p.Strand)
	if err != nil {
		return Record{}, err
	}
	lo, hi := p.AliFrom, p.AliTo
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 1 {
		return Record{}, fmt.Errorf("ali coordinate %d below 1", lo)
	}
	switch {
	case st == Plus && p.AliFrom > p.AliTo:
		return Record{}, fmt.Errorf("plus-strand hit with ali from %d > to %d", p.AliFrom, p.AliTo)
	case st == Minus && p.AliFrom < p.AliTo:
		return Record{}, fmt.Errorf("minus-strand hit with ali from %d < to %d", p.AliFrom, p.AliTo)
	}
	return Record{
		Model:     p.Model,
		Chrom:     p.Chrom,
		Start:     lo - 1,
		End:       hi,
		Strand:    st,
		EValue:    p.EValue,
		HasEValue: true,
		Score:     p.Score,
	}, nil
}

// MappedHit is an aligned short read, already in 0-based half-open
// coordinates. Mapped hits carry no e-value.
type MappedHit struct {
	Model  string
	Chrom  string
	Start  int
	End    int
	Strand string
	Score  float64
}

func (MappedHit) source() Source { return SourceMapped }

func (m MappedHit) record() (Record, error) {
	st, err := ParseStrand(m.Strand)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Model:  m.Model,
		Chrom:  m.Chrom,
		Start:  m.Start,
		End:    m.End,
		Strand: st,
		Score:  m.Score,
	}, nil
}

// FromPayload converts either payload shape into a Record. origin is kept on
// the record and on any returned *MalformedHitError; index is the position in
// the caller's input stream.
func FromPayload(p Payload, origin string, index int) (Record, error) {
	r, err := p.record()
	if err == nil {
		r.Source = p.source()
		r.Origin = origin
		err = r.Validate()
	}
	if err != nil {
		return Record{}, &MalformedHitError{Origin: origin, Index: index, Reason: err.Error()}
	}
	return r, nil
}
