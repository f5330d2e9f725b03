package genome

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"go.uber.org/zap"

	"github.com/inodb/polyctx/internal/fileio"
)

// SequenceReference keeps one chromosome parsed in memory and slices
// contexts out of it by index. Loading a different chromosome replaces the
// resident one.
type SequenceReference struct {
	paths  Paths
	chrom  string
	seq    string
	loaded bool
	logger *zap.Logger
}

// NewSequenceReference creates an accessor with no chromosome resident.
func NewSequenceReference(paths Paths) *SequenceReference {
	return &SequenceReference{
		paths:  paths,
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for chromosome load messages.
func (r *SequenceReference) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Chrom returns the resident chromosome, or "" before the first load.
func (r *SequenceReference) Chrom() string {
	return r.chrom
}

// Len returns the length of the resident sequence.
func (r *SequenceReference) Len() int {
	return len(r.seq)
}

// Switch makes chrom the resident chromosome. Switching to the chromosome
// already loaded is a no-op.
func (r *SequenceReference) Switch(chrom string) error {
	if r.loaded && chrom == r.chrom {
		return nil
	}

	path := r.paths.Path(chrom)
	r.logger.Info("loading chromosome sequence",
		zap.String("chrom", chrom),
		zap.String("path", path))

	in, err := fileio.Open(path)
	if err != nil {
		return fmt.Errorf("open reference: %w", err)
	}
	defer in.Close()

	seq, err := readFirstSequence(in)
	if err != nil {
		return fmt.Errorf("parse reference %s: %w", path, err)
	}

	r.chrom = chrom
	r.seq = seq
	r.loaded = true
	return nil
}

// readFirstSequence parses the first FASTA record of rd.
func readFirstSequence(rd io.Reader) (string, error) {
	fr := fasta.NewReader(rd, linear.NewSeq("", nil, alphabet.DNA))
	s, err := fr.Read()
	if err != nil {
		if err == io.EOF {
			return "", fmt.Errorf("no sequence record")
		}
		return "", err
	}
	ls, ok := s.(*linear.Seq)
	if !ok {
		return "", fmt.Errorf("unexpected sequence type %T", s)
	}
	return string(ls.Seq), nil
}

// Context returns the uppercase window of 2*flank+1 bases centered on the
// 1-based position pos, loading chrom first if it is not resident.
func (r *SequenceReference) Context(chrom string, pos int64, flank int) (string, error) {
	if err := r.Switch(chrom); err != nil {
		return "", err
	}
	start, end := Window(pos, flank)
	if start < 0 || end > int64(len(r.seq)) {
		return "", outOfRange(chrom, pos, flank)
	}
	return upper(r.seq[start:end]), nil
}
