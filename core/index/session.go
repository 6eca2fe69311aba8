package index

import (
	"fmt"
	"sort"

	"tirmite-core/hit"
)

// Session is the only handle through which pairing state may change. It is
// handed out by BeginPairing and closed by Finish.
//
// Commits touching different groups may run on different goroutines: each
// group's states are disjoint. Commits within one group must be serialised by
// the caller.
type Session struct {
	x      *Index
	closed bool
}

// BeginPairing moves the index from Candidates to Pairing.
func (x *Index) BeginPairing() (*Session, error) {
	if err := x.expect(PhaseCandidates); err != nil {
		return nil, err
	}
	x.phase = PhasePairing
	return &Session{x: x}, nil
}

// Hit returns the record with the given id.
func (s *Session) Hit(id int) hit.Record { return s.x.hits[id] }

// Candidates returns the candidate ids of a hit. The slice is shared with the
// index and must not be modified.
func (s *Session) Candidates(id int) []int { return s.x.states[id].Candidates }

// Taken reports whether a hit already has a partner.
func (s *Session) Taken(id int) bool { return s.x.states[id].Status == Paired }

// Commit pairs a and b. Both must be unpaired candidates of each other.
func (s *Session) Commit(a, b int) error {
	if s.closed {
		return fmt.Errorf("%w: session finished", ErrPhase)
	}
	sa, sb := &s.x.states[a], &s.x.states[b]
	switch {
	case a == b:
		return fmt.Errorf("cannot pair hit %d with itself", a)
	case sa.Status == Paired || sb.Status == Paired:
		return fmt.Errorf("hit %d or %d already paired", a, b)
	case !contains(sa.Candidates, b):
		return fmt.Errorf("hit %d is not a candidate of %d", b, a)
	}
	sa.Status, sa.Partner = Paired, b
	sb.Status, sb.Partner = Paired, a
	return nil
}

// Finish closes the session and moves the index to Paired.
func (s *Session) Finish() error {
	if s.closed {
		return fmt.Errorf("%w: session finished", ErrPhase)
	}
	s.closed = true
	s.x.phase = PhasePaired
	return nil
}

func contains(sorted []int, v int) bool {
	i := sort.SearchInts(sorted, v)
	return i < len(sorted) && sorted[i] == v
}

// Paired lists the partner of every paired hit as (lower id, higher id)
// tuples in ascending order. Valid once the index reached PhasePaired.
func (x *Index) Paired() ([][2]int, error) {
	if err := x.expect(PhasePaired); err != nil {
		return nil, err
	}
	var out [][2]int
	for id, st := range x.states {
		if st.Status == Paired && id < st.Partner {
			out = append(out, [2]int{id, st.Partner})
		}
	}
	return out, nil
}

// Unpaired lists unpaired hit ids in ascending order. Valid once the index
// reached PhasePaired.
func (x *Index) Unpaired() ([]int, error) {
	if err := x.expect(PhasePaired); err != nil {
		return nil, err
	}
	var out []int
	for id, st := range x.states {
		if st.Status == Unpaired {
			out = append(out, id)
		}
	}
	return out, nil
}
