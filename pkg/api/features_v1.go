// pkg/api/features_v1.go
package api

// FeatureV1 is the stable JSON/JSONL schema for elements and TIR hits.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
// Start is 0-based and End exclusive, as in BED.
type FeatureV1 struct {
	Type        string   `json:"type"` // "terminal_inverted_repeat_element" | "terminal_inverted_repeat"
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Parent      string   `json:"parent,omitempty"`
	Chrom       string   `json:"chrom"`
	Start       int      `json:"start"`
	End         int      `json:"end"`
	Length      int      `json:"length"`
	Strand      string   `json:"strand"`
	Orientation string   `json:"orientation,omitempty"`
	Model       string   `json:"model"`
	Members     []string `json:"members,omitempty"`
	EValue      *float64 `json:"evalue,omitempty"`
	Score       *float64 `json:"score,omitempty"`
}
