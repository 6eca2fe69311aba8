// internal/writers/text.go
package writers

import (
	"bufio"
	"fmt"
	"io"

	"tirmite-core/element"
)

func init() { Register(FormatText, StreamText) }

// StreamText writes one TSV row per feature. Coordinates are 0-based
// half-open, as in BED.
func StreamText(w io.Writer, in <-chan element.Feature, o Options) error {
	bw := bufio.NewWriter(w)
	if o.Header {
		if _, err := fmt.Fprintln(bw, TSVHeader); err != nil {
			return err
		}
	}
	for f := range in {
		ev, sc := qualityCols(f, o)
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Type, f.ID, f.Name, dot(f.Parent), f.Chrom,
			f.Start, f.End, f.Len(), f.Strand, dot(f.Orientation), f.Model,
			ev, sc, joinNames(memberNames(f, o.HitNames)),
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}
