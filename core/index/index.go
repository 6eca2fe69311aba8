// Package index groups hits by (model, chromosome) and owns their pairing
// state. The index moves through three phases: Built, Candidates and Paired.
// Each mutating step checks the phase it expects, so a later step cannot run
// early and an earlier one cannot be replayed on a resolved index.
package index

import (
	"errors"
	"fmt"

	"tirmite-core/hit"
)

var (
	// ErrNoHits is returned by Build when there is nothing to index.
	ErrNoHits = errors.New("no hits to annotate")
	// ErrPhase is returned when a step runs against an index in the wrong phase.
	ErrPhase = errors.New("index is in the wrong phase for this step")
)

// None marks a hit without a partner.
const None = -1

// Key identifies a pairing group.
type Key struct {
	Model string
	Chrom string
}

func (k Key) String() string { return k.Model + "/" + k.Chrom }

// Status is a hit's pairing status.
type Status int

const (
	Unpaired Status = iota
	Paired
)

func (s Status) String() string {
	if s == Paired {
		return "paired"
	}
	return "unpaired"
}

// State is the mutable pairing state of one hit.
type State struct {
	Candidates []int // ids of compatible hits, ascending
	Partner    int   // hit id or None
	Status     Status
}

// Phase is the lifecycle stage of an index.
type Phase int

const (
	PhaseBuilt Phase = iota
	PhaseCandidates
	PhasePairing
	PhasePaired
)

func (p Phase) String() string {
	switch p {
	case PhaseBuilt:
		return "built"
	case PhaseCandidates:
		return "candidates"
	case PhasePairing:
		return "pairing"
	case PhasePaired:
		return "paired"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Index is the hit index shared by the pairing steps of one run.
type Index struct {
	hits   []hit.Record
	states []State
	groups map[Key][]int
	keys   []Key
	phase  Phase
}

// Build assigns ids in input order, groups hits by (model, chromosome) and
// initialises every hit as unpaired with no candidates. The first invalid
// record aborts the build with a *hit.MalformedHitError.
func Build(records []hit.Record) (*Index, error) {
	if len(records) == 0 {
		return nil, ErrNoHits
	}
	idx := &Index{
		hits:   make([]hit.Record, len(records)),
		states: make([]State, len(records)),
		groups: make(map[Key][]int),
	}
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, &hit.MalformedHitError{Origin: r.Origin, Index: i, Reason: err.Error()}
		}
		r.ID = i
		idx.hits[i] = r
		idx.states[i] = State{Partner: None, Status: Unpaired}
		k := Key{Model: r.Model, Chrom: r.Chrom}
		if _, ok := idx.groups[k]; !ok {
			idx.keys = append(idx.keys, k)
		}
		idx.groups[k] = append(idx.groups[k], i)
	}
	return idx, nil
}

// Phase returns the current lifecycle stage.
func (x *Index) Phase() Phase { return x.phase }

// Len is the number of indexed hits.
func (x *Index) Len() int { return len(x.hits) }

// Hit returns the record with the given id.
func (x *Index) Hit(id int) hit.Record { return x.hits[id] }

// Hits returns all records in id order. The slice must not be modified.
func (x *Index) Hits() []hit.Record { return x.hits }

// State returns a copy of the pairing state of a hit.
func (x *Index) State(id int) State {
	s := x.states[id]
	s.Candidates = append([]int(nil), s.Candidates...)
	return s
}

// Keys returns group keys in first-appearance order.
func (x *Index) Keys() []Key { return append([]Key(nil), x.keys...) }

// Group returns the hit ids of a group in id order.
func (x *Index) Group(k Key) []int { return append([]int(nil), x.groups[k]...) }

// GroupOf returns the key of the group a hit belongs to.
func (x *Index) GroupOf(id int) Key {
	r := x.hits[id]
	return Key{Model: r.Model, Chrom: r.Chrom}
}

func (x *Index) expect(p Phase) error {
	if x.phase != p {
		return fmt.Errorf("%w: at %s, want %s", ErrPhase, x.phase, p)
	}
	return nil
}
