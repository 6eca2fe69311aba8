// core/index/candidates.go
package index

import (
	"sort"

	"tirmite-core/hit"
)

// Unbounded disables the distance limit in FindCandidates.
const Unbounded = -1

// FindCandidates fills every hit's candidate set with the hits of its own
// group that sit on the opposite strand within maxDist bases (gap between
// nearer edges). A negative maxDist means no bound. The relation is
// symmetric; hits never list themselves.
func (x *Index) FindCandidates(maxDist int) error {
	if err := x.expect(PhaseBuilt); err != nil {
		return err
	}
	for _, k := range x.keys {
		x.findGroup(x.groups[k], maxDist)
	}
	for i := range x.states {
		sort.Ints(x.states[i].Candidates)
	}
	x.phase = PhaseCandidates
	return nil
}

func (x *Index) findGroup(ids []int, maxDist int) {
	byStart := append([]int(nil), ids...)
	sort.SliceStable(byStart, func(i, j int) bool {
		return x.hits[byStart[i]].Start < x.hits[byStart[j]].Start
	})
	for i, a := range byStart {
		ha := x.hits[a]
		for _, b := range byStart[i+1:] {
			hb := x.hits[b]
			// Starts only grow from here, so once hb begins past the reach of
			// ha's end no later hit can be in range either.
			if maxDist >= 0 && hb.Start-ha.End > maxDist {
				break
			}
			if ha.Strand == hb.Strand {
				continue
			}
			if maxDist >= 0 && hit.Gap(ha, hb) > maxDist {
				continue
			}
			x.states[a].Candidates = append(x.states[a].Candidates, b)
			x.states[b].Candidates = append(x.states[b].Candidates, a)
		}
	}
}
