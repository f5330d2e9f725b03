// Package counter tallies observed point mutations by sequence context.
package counter

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/polyctx/internal/genome"
	"github.com/inodb/polyctx/internal/mutctx"
	"github.com/inodb/polyctx/internal/vcf"
)

// ProgressInterval is the number of processed records between progress notes.
const ProgressInterval = 1000

// Anomaly kinds logged for records that are skipped.
const (
	AnomalyRefMatchesAlt  = "reference matches alternate"
	AnomalyUnresolvedBase = "N in reference genome"
	AnomalyUnsupportedAlt = "unsupported alternate allele"
	AnomalyOutOfRange     = "position outside reference"
)

// Stats summarizes a scan.
type Stats struct {
	Processed int
	Counted   int
	Anomalies map[string]int
}

// Skipped returns the total number of records skipped as anomalies.
func (s Stats) Skipped() int {
	n := 0
	for _, c := range s.Anomalies {
		n += c
	}
	return n
}

// Counter counts variants by canonical mutation context.
type Counter struct {
	ref    genome.Accessor
	table  *mutctx.Table[int64]
	stats  Stats
	logger *zap.Logger
}

// New creates a counter with an empty mutation table for the flank width.
func New(ref genome.Accessor, flank int) (*Counter, error) {
	table, err := mutctx.NewMutationTable[int64](flank)
	if err != nil {
		return nil, fmt.Errorf("init count table: %w", err)
	}
	return &Counter{
		ref:    ref,
		table:  table,
		stats:  Stats{Anomalies: make(map[string]int)},
		logger: zap.NewNop(),
	}, nil
}

// SetLogger sets the logger receiving anomaly records and progress notes.
func (c *Counter) SetLogger(l *zap.Logger) {
	c.logger = l
}

// Table returns the count table.
func (c *Counter) Table() *mutctx.Table[int64] {
	return c.table
}

// Flank returns the flank width.
func (c *Counter) Flank() int {
	return c.table.Flank()
}

// Stats returns totals since construction or the last Reset.
func (c *Counter) Stats() Stats {
	s := c.stats
	s.Anomalies = make(map[string]int, len(c.stats.Anomalies))
	for k, v := range c.stats.Anomalies {
		s.Anomalies[k] = v
	}
	return s
}

// Reset zeroes every count and the scan statistics so the counter can be
// reused for another scan.
func (c *Counter) Reset() {
	c.table.Reset()
	c.stats = Stats{Anomalies: make(map[string]int)}
}

// CountAll streams every variant from parser. Anomalous records are logged
// and skipped; reference access failures and table invariant violations
// abort the scan.
func (c *Counter) CountAll(parser vcf.VariantParser) error {
	for {
		v, err := parser.Next()
		if err != nil {
			return fmt.Errorf("read variant: %w", err)
		}
		if v == nil {
			break
		}
		if err := c.Count(v); err != nil {
			return err
		}
	}
	c.logger.Info("finished counting",
		zap.Int("processed", c.stats.Processed),
		zap.Int("counted", c.stats.Counted),
		zap.Int("skipped", c.stats.Skipped()))
	return nil
}

// Count classifies a single variant and increments its context.
func (c *Counter) Count(v *vcf.Variant) error {
	defer c.progress()
	c.stats.Processed++

	flank := c.table.Flank()
	seq, err := c.ref.Context(v.NormalizeChrom(), v.Pos, flank)
	if err != nil {
		if errors.Is(err, genome.ErrOutOfRange) {
			c.anomaly(AnomalyOutOfRange, v, "")
			return nil
		}
		return fmt.Errorf("reference context for %s:%d: %w", v.Chrom, v.Pos, err)
	}

	alt := v.AltBase()
	if _, ok := mutctx.Complement(alt); !ok || !v.IsSNV() {
		c.anomaly(AnomalyUnsupportedAlt, v, seq)
		return nil
	}
	if seq[flank] == alt {
		c.anomaly(AnomalyRefMatchesAlt, v, seq)
		return nil
	}
	if !mutctx.Resolved(seq) {
		c.anomaly(AnomalyUnresolvedBase, v, seq)
		return nil
	}

	key := mutctx.FormatKey(seq, alt)
	if err := c.table.Add(key, 1); err != nil {
		return fmt.Errorf("count %s at %s:%d: %w", key, v.Chrom, v.Pos, err)
	}
	c.stats.Counted++
	return nil
}

func (c *Counter) anomaly(kind string, v *vcf.Variant, context string) {
	c.stats.Anomalies[kind]++
	c.logger.Warn(kind,
		zap.String("context", context),
		zap.String("line", v.Line))
}

func (c *Counter) progress() {
	if c.stats.Processed%ProgressInterval == 0 {
		c.logger.Info("counted variants", zap.Int("processed", c.stats.Processed))
	}
}
