// core/pairing/engine.go
package pairing

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"tirmite-core/hit"
	"tirmite-core/index"
)

// Pruning controls when hits taken by a pair vanish from other hits' views.
type Pruning int

const (
	// PruneEager drops taken hits from every view as soon as they are paired.
	// A round that pairs nothing leaves the state unchanged.
	PruneEager Pruning = iota
	// PruneDeferred drops a taken hit from a view only when that view's owner
	// finds it at the top of its list; the owner spends the round doing so.
	// Unproductive rounds can therefore still make progress, which is what
	// StableReps waits for.
	PruneDeferred
)

func (p Pruning) String() string {
	if p == PruneDeferred {
		return "deferred"
	}
	return "eager"
}

// ParsePruning accepts "eager" or "deferred".
func ParsePruning(s string) (Pruning, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "eager":
		return PruneEager, nil
	case "deferred", "lazy":
		return PruneDeferred, nil
	}
	return 0, fmt.Errorf("unknown pruning mode %q (want eager|deferred)", s)
}

// Config holds pairing parameters.
type Config struct {
	StableReps int         // extra unproductive rounds tolerated before a group is resolved
	Metric     Metric      // quality measure for ranking
	Ranking    []Criterion // candidate order; nil = DefaultRanking
	Pruning    Pruning
	Threads    int // groups resolved concurrently (<=1 = serial)
}

// Pair is two hits joined as the arms of one element. FivePrime is the arm
// with the lower start. Start/End is the merged 0-based half-open span.
type Pair struct {
	FivePrime  int
	ThreePrime int
	Model      string
	Chrom      string
	Start      int
	End        int
	Round      int // round in which the pair was committed
}

// GroupStats summarises how one (model, chromosome) group resolved.
type GroupStats struct {
	Key        index.Key
	Hits       int
	Pairs      int
	Unpaired   int
	Rounds     int // rounds run while some hit still had a candidate
	IdleRounds int // rounds among them that paired nothing
}

// Result partitions the indexed hits into pairs and unpaired hits.
type Result struct {
	Pairs    []Pair // ordered by chrom, start, end, model
	Unpaired []int  // ascending hit ids
	Groups   []GroupStats
}

// Engine resolves candidate sets into pairs by iterated mutual-best matching.
type Engine struct {
	cfg  Config
	rank ranker
}

// New creates a new Engine.
func New(c Config) *Engine {
	if c.StableReps < 0 {
		c.StableReps = 0
	}
	c.Ranking = normalizeRanking(c.Ranking)
	return &Engine{cfg: c, rank: ranker{metric: c.Metric, criteria: c.Ranking}}
}

// Config returns the effective configuration.
func (e *Engine) Config() Config { return e.cfg }

// Run pairs every group of idx. The index must have its candidates
// populated; on return it is in index.PhasePaired. Finding no pairs is not an
// error.
func (e *Engine) Run(idx *index.Index) (Result, error) {
	s, err := idx.BeginPairing()
	if err != nil {
		return Result{}, err
	}
	keys := idx.Keys()
	type groupOut struct {
		pairs []Pair
		stats GroupStats
		err   error
	}
	outs := make([]groupOut, len(keys))
	work := func(i int) {
		p, st, err := e.resolveGroup(s, keys[i], idx.Group(keys[i]))
		outs[i] = groupOut{pairs: p, stats: st, err: err}
	}

	thr := e.cfg.Threads
	if thr <= 1 || len(keys) < 2 {
		for i := range keys {
			work(i)
		}
	} else {
		if thr > len(keys) {
			thr = len(keys)
		}
		jobs := make(chan int, thr*2)
		var wg sync.WaitGroup
		wg.Add(thr)
		for w := 0; w < thr; w++ {
			go func() {
				defer wg.Done()
				for i := range jobs {
					work(i)
				}
			}()
		}
		for i := range keys {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	}

	var res Result
	for _, o := range outs {
		if o.err != nil {
			return Result{}, o.err
		}
		res.Pairs = append(res.Pairs, o.pairs...)
		res.Groups = append(res.Groups, o.stats)
	}
	if err := s.Finish(); err != nil {
		return Result{}, err
	}
	sort.SliceStable(res.Pairs, func(i, j int) bool { return lessPair(res.Pairs[i], res.Pairs[j]) })
	if res.Unpaired, err = idx.Unpaired(); err != nil {
		return Result{}, err
	}
	return res, nil
}

func lessPair(a, b Pair) bool {
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
}

// resolveGroup runs rounds over one group until it reaches a fixed point or
// runs out of patience.
func (e *Engine) resolveGroup(s *index.Session, key index.Key, ids []int) ([]Pair, GroupStats, error) {
	st := GroupStats{Key: key, Hits: len(ids)}

	// Rank each hit's candidates once; "best remaining" is then the first
	// entry at or after the hit's cursor that is still free.
	ordered := make(map[int][]int, len(ids))
	for _, h := range ids {
		list := append([]int(nil), s.Candidates(h)...)
		hr := s.Hit(h)
		sort.SliceStable(list, func(i, j int) bool {
			return e.rank.better(hr, s.Hit(list[i]), s.Hit(list[j]))
		})
		ordered[h] = list
	}
	cursor := make(map[int]int, len(ids))

	var pairs []Pair
	idle := 0
	for round := 1; ; round++ {
		best := make(map[int]int, len(ids))
		live := false
		for _, h := range ids {
			if s.Taken(h) {
				continue
			}
			list, i := ordered[h], cursor[h]
			if e.cfg.Pruning == PruneDeferred {
				if i >= len(list) {
					continue
				}
				live = true
				if s.Taken(list[i]) {
					cursor[h] = i + 1
					continue
				}
			} else {
				for i < len(list) && s.Taken(list[i]) {
					i++
				}
				cursor[h] = i
				if i >= len(list) {
					continue
				}
				live = true
			}
			best[h] = list[i]
		}
		if !live {
			break
		}
		st.Rounds = round

		made := 0
		for _, h := range ids {
			b, ok := best[h]
			if !ok || b < h {
				continue
			}
			if bb, ok := best[b]; !ok || bb != h {
				continue
			}
			if err := s.Commit(h, b); err != nil {
				return nil, st, fmt.Errorf("group %s round %d: %w", key, round, err)
			}
			pairs = append(pairs, newPair(s.Hit(h), s.Hit(b), round))
			made++
		}
		if made > 0 {
			idle = 0
			continue
		}
		st.IdleRounds++
		idle++
		if idle > e.cfg.StableReps {
			break
		}
	}

	st.Pairs = len(pairs)
	st.Unpaired = len(ids) - 2*len(pairs)
	return pairs, st, nil
}

func newPair(a, b hit.Record, round int) Pair {
	if b.Start < a.Start || (b.Start == a.Start && b.ID < a.ID) {
		a, b = b, a
	}
	end := a.End
	if b.End > end {
		end = b.End
	}
	return Pair{
		FivePrime:  a.ID,
		ThreePrime: b.ID,
		Model:      a.Model,
		Chrom:      a.Chrom,
		Start:      a.Start,
		End:        end,
		Round:      round,
	}
}
