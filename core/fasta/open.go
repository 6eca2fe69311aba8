// core/fasta/open.go
package fasta

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"
)

// source is an opened genome input and the closers behind it, innermost
// last.
type source struct {
	io.Reader
	closers []io.Closer
}

func (s *source) Close() error {
	var first error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// gzipMagic starts every gzip member.
var gzipMagic = []byte{0x1f, 0x8b}

// open returns a reader over path ("-" is stdin). Compressed input is
// recognised by its magic bytes or a .gz name, so piped gzip works too.
func open(path string) (*source, error) {
	s := &source{}
	if path == "-" {
		s.Reader = os.Stdin
	} else {
		fh, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		s.Reader, s.closers = fh, []io.Closer{fh}
	}
	br := bufio.NewReaderSize(s.Reader, 1<<16)
	s.Reader = br
	head, _ := br.Peek(len(gzipMagic))
	if string(head) == string(gzipMagic) || strings.HasSuffix(path, ".gz") {
		gr, err := gzip.NewReader(br)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.Reader = gr
		s.closers = append(s.closers, gr)
	}
	return s, nil
}
