package element

import (
	"errors"
	"reflect"
	"testing"

	"tirmite-core/hit"
	"tirmite-core/index"
	"tirmite-core/pairing"
)

func resolve(t *testing.T, recs []hit.Record) (*index.Index, pairing.Result) {
	t.Helper()
	idx, err := index.Build(recs)
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.FindCandidates(500); err != nil {
		t.Fatal(err)
	}
	res, err := pairing.New(pairing.Config{}).Run(idx)
	if err != nil {
		t.Fatal(err)
	}
	return idx, res
}

func sample() []hit.Record {
	return []hit.Record{
		{Model: "m", Chrom: "chr2", Start: 0, End: 20, Strand: hit.Plus, EValue: 1e-9, HasEValue: true},
		{Model: "m", Chrom: "chr2", Start: 200, End: 220, Strand: hit.Minus, EValue: 0.5, HasEValue: true},
		{Model: "m", Chrom: "chr1", Start: 50, End: 70, Strand: hit.Minus, EValue: 1e-7, HasEValue: true},
		{Model: "m", Chrom: "chr1", Start: 10, End: 30, Strand: hit.Plus, EValue: 1e-7, HasEValue: true},
		{Model: "m", Chrom: "chr3", Start: 5, End: 25, Strand: hit.Plus, EValue: 0.2, HasEValue: true},
		{Model: "m", Chrom: "chr3", Start: 40, End: 60, Strand: hit.Plus, EValue: 1e-4, HasEValue: true},
	}
}

func TestExtractElementsNamedInPositionOrder(t *testing.T) {
	idx, res := resolve(t, sample())
	set, err := Extract(idx, res, Options{Prefix: "run1", Threshold: Threshold{MaxEValue: 1e-3}})
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Elements) != 2 {
		t.Fatalf("want 2 elements, got %d", len(set.Elements))
	}
	e1, e2 := set.Elements[0], set.Elements[1]
	if e1.Name != "run1_Element_1" || e1.Chrom != "chr1" || e1.Start != 10 || e1.End != 70 {
		t.Fatalf("bad first element %+v", e1)
	}
	if e2.Name != "run1_Element_2" || e2.Chrom != "chr2" || e2.Orientation != "+-" || e2.Strand != hit.Plus {
		t.Fatalf("bad second element %+v", e2)
	}
	// Arms are kept even when they fail the threshold.
	if len(e2.Arms) != 2 || e2.Arms[1].EValue != 0.5 || e2.Arms[1].Parent != "run1_Element_2" {
		t.Fatalf("weak arm must stay on the element: %+v", e2.Arms)
	}
	if !reflect.DeepEqual(e1.Members, []int{3, 2}) {
		t.Fatalf("members should be five-prime then three-prime ids, got %v", e1.Members)
	}
}

func TestExtractThresholdFiltersHitsOnly(t *testing.T) {
	idx, res := resolve(t, sample())
	set, _ := Extract(idx, res, Options{Threshold: Threshold{MaxEValue: 1e-3}})
	if len(set.Unpaired) != 1 || set.Unpaired[0].Members[0] != 5 {
		t.Fatalf("only the strong unpaired hit should be reported, got %+v", set.Unpaired)
	}
	for _, f := range set.Hits {
		if f.EValue > 1e-3 {
			t.Fatalf("hit %s should have been filtered", f.Name)
		}
	}
	if len(set.Hits) != 4 {
		t.Fatalf("want 4 hits past the threshold, got %d", len(set.Hits))
	}
}

func TestExtractReportModes(t *testing.T) {
	idx, res := resolve(t, sample())
	set, _ := Extract(idx, res, Options{Report: ReportPaired})
	if len(set.Unpaired) != 0 {
		t.Fatalf("paired mode must not report unpaired hits")
	}
	if !ReportAll.WithArms() || ReportUnpaired.WithArms() || ReportNone.WithUnpaired() {
		t.Fatal("report mode predicates are wrong")
	}
	if _, err := ParseReport("some"); err == nil {
		t.Fatal("unknown report mode should fail")
	}
}

func TestHitNamesIndependentOfPairing(t *testing.T) {
	// Position order: chr1:10 (3), chr1:50 (2), chr2:0 (0), chr2:200 (1), chr3:5 (4), chr3:40 (5).
	want := []string{"TIR_3", "TIR_4", "TIR_2", "TIR_1", "TIR_5", "TIR_6"}
	recs := sample()
	for i := range recs {
		recs[i].ID = i
	}
	names := HitNames(recs, "")
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names=%v want %v", names, want)
	}
}

func TestExtractNeedsPairedIndex(t *testing.T) {
	idx, _ := index.Build(sample())
	if _, err := Extract(idx, pairing.Result{}, Options{}); !errors.Is(err, index.ErrPhase) {
		t.Fatalf("want ErrPhase, got %v", err)
	}
}

func TestDeterministicNaming(t *testing.T) {
	idx1, res1 := resolve(t, sample())
	idx2, res2 := resolve(t, sample())
	a, _ := Extract(idx1, res1, Options{Prefix: "x"})
	b, _ := Extract(idx2, res2, Options{Prefix: "x"})
	if !reflect.DeepEqual(a, b) {
		t.Fatal("extraction is not deterministic")
	}
}
