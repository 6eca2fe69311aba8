// internal/writers/fasta.go
package writers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tirmite-core/element"
	"tirmite-core/fasta"
	"tirmite-core/hit"
)

// ElementsFile and hitsFileSuffix name the FASTA outputs (before the prefix).
const (
	ElementsFile   = "elements.fasta"
	hitsFileSuffix = "_hits.fasta"
)

// WriteElementsFASTA writes the plus-strand sequence of every element.
func WriteElementsFASTA(w io.Writer, g *fasta.Genome, elems []element.Feature) error {
	for _, e := range elems {
		seq, err := g.Slice(e.Chrom, e.Start, e.End)
		if err != nil {
			return fmt.Errorf("%s: %w", e.Name, err)
		}
		if _, err := fmt.Fprintf(w, ">%s %s:%d-%d orientation=%s model=%s\n%s\n",
			e.Name, e.Chrom, e.Start+1, e.End, e.Orientation, e.Model, seq,
		); err != nil {
			return err
		}
	}
	return nil
}

// WriteHitsFASTA writes hit sequences in motif orientation: reverse
// complemented for minus-strand hits.
func WriteHitsFASTA(w io.Writer, g *fasta.Genome, hits []element.Feature, suppressMeta bool) error {
	for _, h := range hits {
		span, err := g.Slice(h.Chrom, h.Start, h.End)
		if err != nil {
			return fmt.Errorf("%s: %w", h.Name, err)
		}
		meta := ""
		if !suppressMeta && h.HasEValue {
			meta = " evalue=" + fmtFloat(h.EValue)
		}
		if _, err := fmt.Fprintf(w, ">%s %s:%d-%d(%s)%s\n%s\n",
			h.Name, h.Chrom, h.Start+1, h.End, h.Strand, meta, hit.Oriented(span, h.Strand),
		); err != nil {
			return err
		}
	}
	return nil
}

// HitsFile is the per-model hit FASTA name.
func HitsFile(nm element.Namer, model string) string {
	return nm.File(safeName(model) + hitsFileSuffix)
}

// WriteFASTAFiles writes the elements file (unless elems is nil) and one hit
// file per model into dir. It returns the paths written.
func WriteFASTAFiles(dir string, nm element.Namer, g *fasta.Genome, elems, hits []element.Feature, suppressMeta bool) ([]string, error) {
	var written []string
	if elems != nil {
		p := filepath.Join(dir, nm.File(ElementsFile))
		if err := writeFile(p, func(w io.Writer) error { return WriteElementsFASTA(w, g, elems) }); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	byModel := map[string][]element.Feature{}
	for _, h := range hits {
		byModel[h.Model] = append(byModel[h.Model], h)
	}
	models := make([]string, 0, len(byModel))
	for m := range byModel {
		models = append(models, m)
	}
	sort.Strings(models)
	for _, m := range models {
		p := filepath.Join(dir, HitsFile(nm, m))
		list := byModel[m]
		if err := writeFile(p, func(w io.Writer) error { return WriteHitsFASTA(w, g, list, suppressMeta) }); err != nil {
			return written, err
		}
		written = append(written, p)
	}
	return written, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(fh)
	if err := fn(bw); err != nil {
		_ = fh.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

// WriteFile writes a feature report in format to path.
func WriteFile(path, format string, o Options, fs []element.Feature) error {
	return writeFile(path, func(w io.Writer) error { return WriteAll(w, format, o, fs) })
}

func safeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == ' ' {
			return '_'
		}
		return r
	}, s)
}
