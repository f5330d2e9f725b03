// Package region reads BED-style genomic intervals.
package region

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/polyctx/internal/fileio"
)

// Region is a 0-based half-open interval [Start, End) on Chrom.
type Region struct {
	Chrom string // as written, e.g. "chr12"
	Start int64
	End   int64
}

// Len returns the number of positions covered.
func (r Region) Len() int64 {
	return r.End - r.Start
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func (r Region) NormalizeChrom() string {
	return strings.TrimPrefix(r.Chrom, "chr")
}

// Parser reads regions line by line. Lines that do not start with "chr"
// (track lines, browser lines, comments) are skipped.
type Parser struct {
	in         *fileio.Reader
	lineNumber int
}

// NewParser opens a region file; gzip input is decompressed transparently.
func NewParser(path string) (*Parser, error) {
	in, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open region file: %w", err)
	}
	return &Parser{in: in}, nil
}

// NewParserFromReader creates a parser from an io.Reader.
func NewParserFromReader(r io.Reader) (*Parser, error) {
	in, err := fileio.FromReader(r)
	if err != nil {
		return nil, err
	}
	return &Parser{in: in}, nil
}

// Next returns the next region, or nil, nil at end of input.
func (p *Parser) Next() (*Region, error) {
	for {
		line, err := p.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read region line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if !strings.HasPrefix(line, "chr") {
			continue
		}
		return p.parseLine(line)
	}
}

func (p *Parser) parseLine(line string) (*Region, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < 3 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least 3 columns, found %d", len(fields)),
		}
	}

	start, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || start < 0 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid start: %s", fields[1]),
		}
	}
	end, err := strconv.ParseInt(strings.TrimSpace(fields[2]), 10, 64)
	if err != nil || end < start {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid end: %s", fields[2]),
		}
	}

	return &Region{Chrom: fields[0], Start: start, End: end}, nil
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	return p.in.Close()
}

// ParseError represents an error during region parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("region parse error at line %d: %s", e.Line, e.Message)
}
