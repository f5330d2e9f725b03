// Package predict accumulates Poisson-binomial parameters for genomic
// regions from a per-context mutation probability model.
package predict

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/polyctx/internal/genome"
	"github.com/inodb/polyctx/internal/mutctx"
	"github.com/inodb/polyctx/internal/region"
)

// Param is one accumulated parameter: the mutation probability of the
// context centered on Pos.
type Param struct {
	Chrom   string
	Pos     int64 // 1-based
	Context string
	Prob    float64
}

// RegionReader yields regions; *region.Parser implements it.
type RegionReader interface {
	Next() (*region.Region, error)
}

// Reference is the accessor the predictor scans against. Switch loads a
// chromosome and must be a no-op for the resident one.
type Reference interface {
	genome.Accessor
	Switch(chrom string) error
	Chrom() string
}

// Predictor walks regions and looks up the probability of every position's
// sequence context.
type Predictor struct {
	ref     Reference
	prob    *mutctx.Table[float64]
	params  []float64
	sum     float64
	skipped int
	logger  *zap.Logger
}

// New creates a predictor over ref using the probability table prob.
func New(ref Reference, prob *mutctx.Table[float64]) *Predictor {
	return &Predictor{
		ref:    ref,
		prob:   prob,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for chromosome switches and skipped positions.
func (p *Predictor) SetLogger(l *zap.Logger) {
	p.logger = l
}

// Flank returns the flank width of the model.
func (p *Predictor) Flank() int {
	return p.prob.Flank()
}

// Params returns the accumulated parameters in scan order.
func (p *Predictor) Params() []float64 {
	return p.params
}

// Len returns the number of accumulated parameters.
func (p *Predictor) Len() int {
	return len(p.params)
}

// Sum returns the raw running sum of all parameters. It is not divided by
// the parameter count; see Mean.
func (p *Predictor) Sum() float64 {
	return p.sum
}

// Mean returns Sum divided by the number of parameters, or 0 when empty.
func (p *Predictor) Mean() float64 {
	if len(p.params) == 0 {
		return 0
	}
	return p.sum / float64(len(p.params))
}

// Skipped returns the number of positions skipped for unresolved bases or
// windows outside the chromosome.
func (p *Predictor) Skipped() int {
	return p.skipped
}

// Scan consumes every region from regions. fn, if non-nil, is called with
// each accumulated parameter; an error from fn aborts the scan.
func (p *Predictor) Scan(regions RegionReader, fn func(Param) error) error {
	for {
		r, err := regions.Next()
		if err != nil {
			return fmt.Errorf("read region: %w", err)
		}
		if r == nil {
			break
		}
		if err := p.ScanRegion(*r, fn); err != nil {
			return err
		}
	}
	p.logger.Info("finished scanning regions",
		zap.Int("params", len(p.params)),
		zap.Int("skipped", p.skipped),
		zap.Float64("sum", p.sum))
	return nil
}

// ScanRegion accumulates parameters for 1-based positions Start+1..End.
func (p *Predictor) ScanRegion(r region.Region, fn func(Param) error) error {
	chrom := r.NormalizeChrom()
	if chrom != p.ref.Chrom() {
		if err := p.ref.Switch(chrom); err != nil {
			return fmt.Errorf("switch to %s: %w", r.Chrom, err)
		}
	}

	flank := p.prob.Flank()
	for pos := r.Start + 1; pos <= r.End; pos++ {
		seq, err := p.ref.Context(chrom, pos, flank)
		if err != nil {
			if errors.Is(err, genome.ErrOutOfRange) {
				p.skipped++
				p.logger.Warn("context outside reference",
					zap.String("chrom", r.Chrom),
					zap.Int64("pos", pos))
				continue
			}
			return err
		}
		if !mutctx.Resolved(seq) {
			p.skipped++
			p.logger.Debug("skipping unresolved context",
				zap.String("chrom", r.Chrom),
				zap.Int64("pos", pos),
				zap.String("context", seq))
			continue
		}

		prob, err := p.prob.Get(seq)
		if err != nil {
			return fmt.Errorf("probability for %s at %s:%d: %w", seq, r.Chrom, pos, err)
		}
		p.params = append(p.params, prob)
		p.sum += prob

		if fn != nil {
			if err := fn(Param{Chrom: r.Chrom, Pos: pos, Context: seq, Prob: prob}); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reset clears the accumulated parameters and sum.
func (p *Predictor) Reset() {
	p.params = nil
	p.sum = 0
	p.skipped = 0
}
