// internal/writers/sqlite.go
package writers

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite" // SQLite driver

	"tirmite-core/element"
	"tirmite-core/hit"
)

const sqliteSchema = `
CREATE TABLE hits (
	id      INTEGER PRIMARY KEY,
	name    TEXT NOT NULL,
	model   TEXT NOT NULL,
	chrom   TEXT NOT NULL,
	chrom_start INTEGER NOT NULL,
	chrom_end   INTEGER NOT NULL,
	strand  TEXT NOT NULL,
	evalue  REAL,
	score   REAL,
	source  TEXT NOT NULL,
	element TEXT
);
CREATE TABLE features (
	id          TEXT PRIMARY KEY,
	type        TEXT NOT NULL,
	parent      TEXT,
	chrom       TEXT NOT NULL,
	chrom_start INTEGER NOT NULL,
	chrom_end   INTEGER NOT NULL,
	strand      TEXT NOT NULL,
	orientation TEXT,
	model       TEXT NOT NULL
);
CREATE INDEX idx_hits_model_chrom ON hits(model, chrom);
`

// ExportSQLite writes every hit, and every element with its arms, into a fresh SQLite
// database at path. Start coordinates are 0-based. An existing file is
// replaced.
func ExportSQLite(ctx context.Context, path string, recs []hit.Record, names []string, elems []element.Feature, suppressMeta bool) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("replacing database: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	owner := make(map[int]string, len(elems)*2)
	fst, err := tx.PrepareContext(ctx, `INSERT INTO features (id, type, parent, chrom, chrom_start, chrom_end, strand, orientation, model) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing feature insert: %w", err)
	}
	defer fst.Close()
	for _, e := range elems {
		for _, f := range append([]element.Feature{e}, e.Arms...) {
			var parent, orient any
			if f.Parent != "" {
				parent = f.Parent
			}
			if f.Orientation != "" {
				orient = f.Orientation
			}
			if _, err := fst.ExecContext(ctx, f.ID, f.Type, parent, f.Chrom, f.Start, f.End, f.Strand.String(), orient, f.Model); err != nil {
				return fmt.Errorf("inserting %s: %w", f.ID, err)
			}
		}
		for _, id := range e.Members {
			owner[id] = e.ID
		}
	}

	hst, err := tx.PrepareContext(ctx, `INSERT INTO hits (id, name, model, chrom, chrom_start, chrom_end, strand, evalue, score, source, element) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing hit insert: %w", err)
	}
	defer hst.Close()
	for _, r := range recs {
		var ev, sc, el any
		if !suppressMeta {
			if r.HasEValue {
				ev = r.EValue
			}
			sc = r.Score
		}
		if e, ok := owner[r.ID]; ok {
			el = e
		}
		if _, err := hst.ExecContext(ctx, r.ID, names[r.ID], r.Model, r.Chrom, r.Start, r.End, r.Strand.String(), ev, sc, r.Source.String(), el); err != nil {
			return fmt.Errorf("inserting hit %d: %w", r.ID, err)
		}
	}
	return tx.Commit()
}
