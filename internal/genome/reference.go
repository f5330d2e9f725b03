// Package genome extracts fixed-width flanking sequence around genomic
// positions from per-chromosome reference files.
package genome

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultLineWidth is the number of sequence characters per line of a
// wrapped reference file (hg19 chr*.fa files wrap at 50).
const DefaultLineWidth = 50

// DefaultPattern maps a chromosome name such as "1" to its reference file.
const DefaultPattern = "chr%s.fa"

// ErrOutOfRange is returned when the requested window extends past either
// end of the chromosome.
var ErrOutOfRange = errors.New("context window outside reference")

// Accessor returns the uppercase sequence of length 2*flank+1 centered on a
// 1-based position.
type Accessor interface {
	Context(chrom string, pos int64, flank int) (string, error)
}

// Paths resolves chromosome names to reference file paths.
type Paths struct {
	Dir     string
	Pattern string // fmt pattern with one %s verb, e.g. "chr%s.fa"
}

// Path returns the reference file for chrom.
func (p Paths) Path(chrom string) string {
	pattern := p.Pattern
	if pattern == "" {
		pattern = DefaultPattern
	}
	return filepath.Join(p.Dir, fmt.Sprintf(pattern, chrom))
}

// Window returns the 0-based half-open sequence interval covered by the
// context of a 1-based position.
func Window(pos int64, flank int) (start, end int64) {
	start = pos - 1 - int64(flank)
	end = pos + int64(flank)
	return start, end
}

// NormalizeChrom strips a leading "chr" prefix.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

func outOfRange(chrom string, pos int64, flank int) error {
	return fmt.Errorf("%w: %s:%d (flank %d)", ErrOutOfRange, chrom, pos, flank)
}

func upper(s string) string {
	return strings.ToUpper(s)
}
