package writers

import (
	"strconv"
	"strings"

	"tirmite-core/element"
	"tirmite/pkg/api"
)

// TSVHeader is the canonical header row for text output.
const TSVHeader = "type\tid\tname\tparent\tchrom\tstart\tend\tlength\tstrand\torientation\tmodel\tevalue\tscore\tmembers"

func memberNames(f element.Feature, names []string) []string {
	out := make([]string, 0, len(f.Members))
	for _, id := range f.Members {
		if id >= 0 && id < len(names) {
			out = append(out, names[id])
		} else {
			out = append(out, strconv.Itoa(id))
		}
	}
	return out
}

// isHit is true for TIR hit features, which carry quality values.
func isHit(f element.Feature) bool { return f.Type == element.TypeTIR }

// ToAPI converts a feature to the v1 wire type.
func ToAPI(f element.Feature, o Options) api.FeatureV1 {
	v := api.FeatureV1{
		Type:        f.Type,
		ID:          f.ID,
		Name:        f.Name,
		Parent:      f.Parent,
		Chrom:       f.Chrom,
		Start:       f.Start,
		End:         f.End,
		Length:      f.Len(),
		Strand:      f.Strand.String(),
		Orientation: f.Orientation,
		Model:       f.Model,
		Members:     memberNames(f, o.HitNames),
	}
	if isHit(f) && !o.SuppressMeta {
		if f.HasEValue {
			ev := f.EValue
			v.EValue = &ev
		}
		sc := f.Score
		v.Score = &sc
	}
	return v
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

func dot(s string) string {
	if s == "" {
		return "."
	}
	return s
}

func qualityCols(f element.Feature, o Options) (ev, sc string) {
	ev, sc = ".", "."
	if !isHit(f) || o.SuppressMeta {
		return
	}
	if f.HasEValue {
		ev = fmtFloat(f.EValue)
	}
	return ev, fmtFloat(f.Score)
}

func joinNames(ns []string) string { return dot(strings.Join(ns, ",")) }
