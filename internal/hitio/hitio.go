// Package hitio parses search tool output into hit records.
//
// Three formats are understood: nhmmer --tblout tables, BED6 intervals and
// bowtie2 SAM. Every bad line is reported as a *hit.MalformedHitError that
// names the file and line; nothing is dropped silently.
package hitio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"tirmite-core/hit"
)

// Format names.
const (
	FormatAuto   = "auto"
	FormatTblout = "tblout"
	FormatBED    = "bed"
	FormatSAM    = "sam"
)

// Source names one hit file.
type Source struct {
	Path   string
	Format string // FormatAuto resolves by extension
	Model  string // model name for BED and SAM, which do not carry one
}

// Detect maps a file extension to a format.
func Detect(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".tab", ".tbl", ".tblout", ".txt":
		return FormatTblout, nil
	case ".bed":
		return FormatBED, nil
	case ".sam":
		return FormatSAM, nil
	}
	return "", fmt.Errorf("cannot detect hit format of %s (use --hits-format)", path)
}

// ParseFormat validates a format name.
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatTblout, "tab", "nhmmer":
		return FormatTblout, nil
	case FormatBED, FormatSAM:
		return f, nil
	}
	return "", fmt.Errorf("unknown hit format %q (want auto|tblout|bed|sam)", s)
}

// ModelFromPath derives a model name from a file name, e.g. "DTA1.fa" -> "DTA1".
func ModelFromPath(path string) string {
	base := filepath.Base(path)
	for {
		ext := filepath.Ext(base)
		if ext == "" || ext == base {
			return base
		}
		base = strings.TrimSuffix(base, ext)
	}
}

// parser turns one data line into a payload. ok=false skips the line.
type parser func(line, model string) (p hit.Payload, ok bool, err error)

// byFields adapts a parser of whitespace-separated columns.
func byFields(p func(f []string, model string) (hit.Payload, bool, error)) parser {
	return func(line, model string) (hit.Payload, bool, error) { return p(strings.Fields(line), model) }
}

// Load reads every source in order and returns all records. Record indexes
// in errors count across sources.
func Load(ctx context.Context, srcs []Source) ([]hit.Record, error) {
	var out []hit.Record
	for _, s := range srcs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := s.Format
		if f == "" || f == FormatAuto {
			var err error
			if f, err = Detect(s.Path); err != nil {
				return nil, err
			}
		}
		recs, err := readFile(ctx, s.Path, f, s.Model, len(out))
		if err != nil {
			return nil, err
		}
		out = append(out, recs...)
	}
	return out, nil
}

func readFile(ctx context.Context, path, format, model string, base int) ([]hit.Record, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Read(ctx, fh, path, format, model, base)
}

// Read parses r in the given format. name labels error origins; base is the
// record index of the first record.
func Read(ctx context.Context, r io.Reader, name, format, model string, base int) ([]hit.Record, error) {
	var p parser
	switch format {
	case FormatTblout:
		p = byFields(parseTblout)
	case FormatBED:
		p = byFields(parseBED)
	case FormatSAM:
		p = new(samParser).parse
	default:
		return nil, fmt.Errorf("unknown hit format %q", format)
	}
	if format != FormatTblout && model == "" {
		return nil, fmt.Errorf("%s: %s input needs a model name (--model)", name, format)
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	var (
		out    []hit.Record
		lineNo int
	)
	for sc.Scan() {
		lineNo++
		if lineNo%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line := strings.TrimRight(sc.Text(), "\r")
		if line == "" || skipLine(format, line) {
			continue
		}
		origin := fmt.Sprintf("%s:%d", name, lineNo)
		idx := base + len(out)
		pl, ok, err := p(line, model)
		if err != nil {
			return nil, &hit.MalformedHitError{Origin: origin, Index: idx, Reason: err.Error()}
		}
		if !ok {
			continue
		}
		rec, err := hit.FromPayload(pl, origin, idx)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func skipLine(format, line string) bool {
	switch format {
	case FormatTblout:
		return line[0] == '#'
	case FormatBED:
		return line[0] == '#' || strings.HasPrefix(line, "track") || strings.HasPrefix(line, "browser")
	}
	return false
}
