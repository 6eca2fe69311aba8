package fasta

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const plain = `>chr1 some description
ACGTac
gt
>chr2
NNnn
`

func writeGz(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genome.fa.gz")
	fh, err := os.Create(path)
	if err != nil {
		t.Fatalf("tmp: %v", err)
	}
	gw := gzip.NewWriter(fh)
	if _, err := gw.Write([]byte(data)); err != nil {
		t.Fatalf("write gz: %v", err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
	if err := fh.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func TestLoadGzip(t *testing.T) {
	g, err := Load(context.Background(), writeGz(t, plain))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ids := g.IDs(); len(ids) != 2 || ids[0] != "chr1" || ids[1] != "chr2" {
		t.Fatalf("ids=%v", ids)
	}
	s, err := g.Slice("chr1", 2, 8)
	if err != nil || string(s) != "GTACGT" {
		t.Fatalf("slice=%q err=%v", s, err)
	}
	if g.Len("chr2") != 4 || g.Len("nope") != -1 {
		t.Fatalf("bad lengths")
	}
}

func TestSliceBounds(t *testing.T) {
	g := FromRecords(Record{ID: "c", Seq: []byte("acgt")})
	if _, err := g.Slice("c", 2, 5); err == nil {
		t.Fatal("out of range slice should fail")
	}
	if _, err := g.Slice("x", 0, 1); err == nil {
		t.Fatal("unknown sequence should fail")
	}
	if s, _ := g.Slice("c", 0, 4); string(s) != "ACGT" {
		t.Fatalf("FromRecords should upper-case, got %q", s)
	}
}

func TestLoadDuplicateID(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "dup.fa")
	if err := os.WriteFile(fn, []byte(">a\nAC\n>a\nGT\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(context.Background(), fn); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("want duplicate id error, got %v", err)
	}
}

func TestScanCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n := 0
	err := Scan(ctx, strings.NewReader(plain), func(Record) error { n++; return nil })
	if err == nil || n != 0 {
		t.Fatalf("cancelled scan should stop early: n=%d err=%v", n, err)
	}
}

func TestScanRejectsHeaderless(t *testing.T) {
	if err := Scan(context.Background(), strings.NewReader("ACGT\n"), func(Record) error { return nil }); err == nil {
		t.Fatal("sequence before header should fail")
	}
}
