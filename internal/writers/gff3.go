// internal/writers/gff3.go
package writers

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tirmite-core/element"
)

// GFFSource is the GFF3 source column.
const GFFSource = "tirmite"

func init() { Register(FormatGFF3, StreamGFF3) }

// StreamGFF3 writes a GFF3 document with 1-based closed coordinates. Arms
// reference their element through Parent. Quality attributes are dropped
// when o.SuppressMeta is set.
func StreamGFF3(w io.Writer, in <-chan element.Feature, o Options) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintln(bw, "##gff-version 3"); err != nil {
		return err
	}
	for f := range in {
		if _, err := fmt.Fprintf(bw, "%s\t%s\t%s\t%d\t%d\t.\t%s\t.\t%s\n",
			gffEscape(f.Chrom), GFFSource, f.Type, f.Start+1, f.End, f.Strand, gffAttrs(f, o),
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func gffAttrs(f element.Feature, o Options) string {
	var kv []string
	add := func(k, v string) { kv = append(kv, k+"="+gffEscape(v)) }
	add("ID", f.ID)
	add("Name", f.Name)
	if f.Parent != "" {
		add("Parent", f.Parent)
	}
	add("model", f.Model)
	if f.Orientation != "" {
		add("orientation", f.Orientation)
	}
	if f.Type == element.TypeElement {
		kv = append(kv, "members="+strings.Join(escapeAll(memberNames(f, o.HitNames)), ","))
	}
	if isHit(f) && !o.SuppressMeta {
		if f.HasEValue {
			add("evalue", fmtFloat(f.EValue))
		}
		add("score", fmtFloat(f.Score))
	}
	return strings.Join(kv, ";")
}

// gffEscape percent-encodes the characters GFF3 reserves in columns and
// attribute values.
func gffEscape(s string) string {
	if !strings.ContainsAny(s, ";=&,\t\n\r%") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case ';', '=', '&', ',', '\t', '\n', '\r', '%':
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func escapeAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = gffEscape(s)
	}
	return out
}
