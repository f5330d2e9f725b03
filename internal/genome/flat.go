package genome

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrLineWidth is returned for layouts without a positive line width.
var ErrLineWidth = errors.New("reference line width must be positive")

// Layout describes a line-wrapped reference file: one header line of
// HeaderLen bytes (terminator included) followed by lines of LineWidth
// sequence characters, each terminated by EOLLen bytes ("\n" is 1, "\r\n"
// is 2; zero means 1).
type Layout struct {
	HeaderLen int64
	LineWidth int
	EOLLen    int
}

// ByteOffset maps a 0-based sequence offset to the file byte holding that
// character: every full line already passed contributes one terminator.
func (l Layout) ByteOffset(s int64) (int64, error) {
	if l.LineWidth <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrLineWidth, l.LineWidth)
	}
	eol := int64(l.EOLLen)
	if eol <= 0 {
		eol = 1
	}
	w := int64(l.LineWidth)
	return l.HeaderLen + s + (s/w)*eol, nil
}

// FlatReference reads contexts straight from wrapped reference files by byte
// offset. It keeps no file resident: every lookup opens the chromosome file,
// seeks and reads the window.
type FlatReference struct {
	paths     Paths
	lineWidth int
}

// NewFlatReference creates a reader for files resolved by paths. A lineWidth
// of zero selects DefaultLineWidth.
func NewFlatReference(paths Paths, lineWidth int) *FlatReference {
	if lineWidth <= 0 {
		lineWidth = DefaultLineWidth
	}
	return &FlatReference{paths: paths, lineWidth: lineWidth}
}

// LineWidth returns the wrap width used for offset arithmetic.
func (r *FlatReference) LineWidth() int {
	return r.lineWidth
}

// Context returns the uppercase window of 2*flank+1 bases centered on the
// 1-based position pos. Errors opening the file are returned wrapped;
// windows outside the chromosome return ErrOutOfRange.
func (r *FlatReference) Context(chrom string, pos int64, flank int) (string, error) {
	start, _ := Window(pos, flank)
	if start < 0 {
		return "", outOfRange(chrom, pos, flank)
	}

	path := r.paths.Path(chrom)
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open reference: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	header, err := br.ReadString('\n')
	if err != nil {
		if err == io.EOF {
			return "", outOfRange(chrom, pos, flank)
		}
		return "", fmt.Errorf("read reference header %s: %w", path, err)
	}

	// all lines share the header's terminator
	layout := Layout{HeaderLen: int64(len(header)), LineWidth: r.lineWidth, EOLLen: 1}
	if strings.HasSuffix(header, "\r\n") {
		layout.EOLLen = 2
	}
	off, err := layout.ByteOffset(start)
	if err != nil {
		return "", err
	}
	if _, err := f.Seek(off, io.SeekStart); err != nil {
		return "", fmt.Errorf("seek reference %s: %w", path, err)
	}
	br.Reset(f)

	return readWindow(br, 2*flank+1, chrom, pos, flank)
}

// readWindow reads n sequence characters, skipping line terminators.
func readWindow(br *bufio.Reader, n int, chrom string, pos int64, flank int) (string, error) {
	buf := make([]byte, 0, n)
	for len(buf) < n {
		b, err := br.ReadByte()
		if err != nil {
			if err == io.EOF {
				return "", outOfRange(chrom, pos, flank)
			}
			return "", fmt.Errorf("read reference: %w", err)
		}
		if b == '\n' || b == '\r' {
			continue
		}
		buf = append(buf, b)
	}
	return upper(string(buf)), nil
}
