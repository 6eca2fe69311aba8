// core/fasta/genome.go
package fasta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
)

// Record is one parsed FASTA sequence.
type Record struct {
	ID  string
	Seq []byte
}

// Genome holds reference sequences by ID, upper-cased, in file order.
type Genome struct {
	ids  []string
	seqs map[string][]byte
}

// IDs returns the sequence IDs in file order.
func (g *Genome) IDs() []string { return append([]string(nil), g.ids...) }

// Len returns the length of a sequence, or -1 when it is unknown.
func (g *Genome) Len(id string) int {
	s, ok := g.seqs[id]
	if !ok {
		return -1
	}
	return len(s)
}

// Slice returns seq[start:end) of the named sequence (0-based half-open).
func (g *Genome) Slice(id string, start, end int) ([]byte, error) {
	s, ok := g.seqs[id]
	if !ok {
		return nil, fmt.Errorf("sequence %q not in genome", id)
	}
	if start < 0 || end > len(s) || start >= end {
		return nil, fmt.Errorf("span %s:%d-%d outside sequence of length %d", id, start, end, len(s))
	}
	return s[start:end], nil
}

// Load reads a whole FASTA file ("-" for stdin, gzip detected). Duplicate
// IDs are an error: features could not be placed unambiguously.
func Load(ctx context.Context, path string) (*Genome, error) {
	rc, err := open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	g := &Genome{seqs: make(map[string][]byte)}
	err = Scan(ctx, rc, func(r Record) error {
		if _, dup := g.seqs[r.ID]; dup {
			return fmt.Errorf("%s: duplicate sequence id %q", path, r.ID)
		}
		g.ids = append(g.ids, r.ID)
		g.seqs[r.ID] = r.Seq
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// FromRecords builds a Genome from in-memory records.
func FromRecords(recs ...Record) *Genome {
	g := &Genome{seqs: make(map[string][]byte, len(recs))}
	for _, r := range recs {
		if _, dup := g.seqs[r.ID]; !dup {
			g.ids = append(g.ids, r.ID)
		}
		g.seqs[r.ID] = bytes.ToUpper(r.Seq)
	}
	return g
}

// Scan parses FASTA from r and calls emit once per record. Cancellation via
// ctx is honoured between lines.
func Scan(ctx context.Context, r io.Reader, emit func(Record) error) error {
	sc := bufio.NewScanner(r)
	const maxLine = 64 * 1024 * 1024 // allow very long single-line sequences (64 MiB)
	buf := make([]byte, 64*1024)
	sc.Buffer(buf, maxLine)

	var (
		id   string
		have bool
		seq  = make([]byte, 0, 1<<20)
	)
	flush := func() error {
		if !have {
			return nil
		}
		return emit(Record{ID: id, Seq: append([]byte(nil), seq...)})
	}

	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			if err := flush(); err != nil {
				return err
			}
			id, have = parseHeaderID(line[1:]), true
			seq = seq[:0]
			continue
		}
		if !have {
			return fmt.Errorf("fasta: sequence data before first header")
		}
		seq = append(seq, bytes.ToUpper(bytes.TrimSpace(line))...)
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("fasta scan: %w", err)
	}
	return flush()
}

func parseHeaderID(hdr []byte) string {
	hdr = bytes.TrimSpace(hdr)
	if i := bytes.IndexAny(hdr, " \t"); i >= 0 {
		return string(hdr[:i])
	}
	return string(hdr)
}
