// internal/writers/json.go
package writers

import (
	"encoding/json"
	"io"

	"tirmite-core/element"
	"tirmite/internal/jsonlutil"
	"tirmite/pkg/api"
)

// Output format names.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatGFF3  = "gff3"
)

func init() {
	Register(FormatJSON, WriteJSON)
	Register(FormatJSONL, StreamJSONL)
}

// WriteJSON collects every feature and writes one indented JSON array (v1).
func WriteJSON(w io.Writer, in <-chan element.Feature, o Options) error {
	list := make([]api.FeatureV1, 0, 64)
	for f := range in {
		list = append(list, ToAPI(f, o))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(list)
}

// StreamJSONL writes each feature as one JSON line (v1).
func StreamJSONL(w io.Writer, in <-chan element.Feature, o Options) error {
	return jsonlutil.Pipe(w, in, func(enc *json.Encoder, f element.Feature) error {
		return enc.Encode(ToAPI(f, o))
	}, IsBrokenPipe)
}
