// Package report summarizes a pairing run, as YAML for files and as
// human-readable log lines.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"tirmite-core/pairing"
	"tirmite/internal/logger"
)

// GroupSummary is one model/chromosome group.
type GroupSummary struct {
	Model      string `yaml:"model"`
	Chrom      string `yaml:"chrom"`
	Hits       int    `yaml:"hits"`
	Pairs      int    `yaml:"pairs"`
	Unpaired   int    `yaml:"unpaired"`
	Rounds     int    `yaml:"rounds"`
	IdleRounds int    `yaml:"idle_rounds"`
}

// Summary is the run-level view of a pairing result.
type Summary struct {
	RunID    string         `yaml:"run_id"`
	Hits     int            `yaml:"hits"`
	Reported int            `yaml:"reported_hits"`
	Groups   int            `yaml:"groups"`
	Pairs    int            `yaml:"pairs"`
	Unpaired int            `yaml:"unpaired"`
	Rounds   int            `yaml:"max_rounds"`
	Pruning  string         `yaml:"pruning"`
	PerGroup []GroupSummary `yaml:"per_group,omitempty"`
}

// FromResult builds a Summary. hits is the total hit count; reported is the
// number of hit features that passed the output threshold.
func FromResult(hits, reported int, cfg pairing.Config, res pairing.Result) Summary {
	s := Summary{
		RunID:    uuid.NewString(),
		Hits:     hits,
		Reported: reported,
		Groups:   len(res.Groups),
		Pairs:    len(res.Pairs),
		Unpaired: len(res.Unpaired),
		Pruning:  cfg.Pruning.String(),
	}
	for _, g := range res.Groups {
		s.PerGroup = append(s.PerGroup, GroupSummary{
			Model: g.Key.Model, Chrom: g.Key.Chrom,
			Hits: g.Hits, Pairs: g.Pairs, Unpaired: g.Unpaired,
			Rounds: g.Rounds, IdleRounds: g.IdleRounds,
		})
		if g.Rounds > s.Rounds {
			s.Rounds = g.Rounds
		}
	}
	return s
}

// WriteYAML encodes s to w.
func (s Summary) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return err
	}
	return enc.Close()
}

// WriteFile writes s as YAML to path.
func (s Summary) WriteFile(path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.WriteYAML(fh); err != nil {
		_ = fh.Close()
		return fmt.Errorf("writing summary: %w", err)
	}
	return fh.Close()
}

// Log prints s through the verbose logger.
func (s Summary) Log() {
	logger.Section("Summary")
	logger.Debug("run %s", s.RunID)
	logger.Info("%s hits in %s groups", humanize.Comma(int64(s.Hits)), humanize.Comma(int64(s.Groups)))
	logger.Info("%s elements, %s unpaired hits (%s pruning, up to %s rounds)",
		humanize.Comma(int64(s.Pairs)), humanize.Comma(int64(s.Unpaired)), s.Pruning, humanize.Comma(int64(s.Rounds)))
	if s.Hits > 0 {
		logger.Info("%s of hits paired", percent(2*s.Pairs, s.Hits))
	}
	logger.Info("%s hit features passed the output threshold", humanize.Comma(int64(s.Reported)))
}

// Size formats a byte count for log lines, e.g. "12 MB".
func Size(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func percent(n, d int) string {
	return humanize.FtoaWithDigits(100*float64(n)/float64(d), 1) + "%"
}
