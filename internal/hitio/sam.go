package hitio

import (
	"bytes"
	"fmt"

	"github.com/biogo/hts/sam"

	"tirmite-core/hit"
)

// samParser reads bowtie2 SAM text one line at a time so errors keep their
// line numbers. Header lines are collected until the first alignment, which
// needs the @SQ lines to resolve its reference.
type samParser struct {
	head   bytes.Buffer
	header *sam.Header
}

// parse skips unmapped reads; the mapping quality becomes the score.
func (s *samParser) parse(line, model string) (hit.Payload, bool, error) {
	if line[0] == '@' {
		if s.header != nil {
			return nil, false, fmt.Errorf("SAM header line after alignments")
		}
		s.head.WriteString(line)
		s.head.WriteByte('\n')
		return nil, false, nil
	}
	if s.header == nil {
		var text []byte
		if s.head.Len() > 0 {
			text = s.head.Bytes()
		}
		h, err := sam.NewHeader(text, nil)
		if err != nil {
			return nil, false, fmt.Errorf("bad SAM header: %v", err)
		}
		s.header = h
	}

	var r sam.Record
	if err := r.UnmarshalSAM(s.header, []byte(line)); err != nil {
		return nil, false, fmt.Errorf("bad SAM record: %v", err)
	}
	if r.Flags&sam.Unmapped != 0 || r.Ref == nil {
		return nil, false, nil
	}
	span, _ := r.Cigar.Lengths()
	strand := "+"
	if r.Flags&sam.Reverse != 0 {
		strand = "-"
	}
	return hit.MappedHit{
		Model: model, Chrom: r.Ref.Name(),
		Start: r.Pos, End: r.Pos + span,
		Strand: strand, Score: float64(r.MapQ),
	}, true, nil
}
