// Package writers turns element features into serialized outputs.
//
// Design:
//   - Writers own all presentation knowledge (TSV, GFF3, JSON/JSONL, FASTA, SQLite).
//   - The core module stays coordinate-only; 1-based conversion happens here.
//   - JSON/JSONL go through pkg/api (v1) for a stable wire format.
package writers
