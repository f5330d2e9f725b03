package vcf

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/polyctx/internal/fileio"
)

// Column positions used by the counter: CHROM, POS and ALT.
const (
	colChrom = 0
	colPos   = 1
	colRef   = 3
	colAlt   = 4
)

// Parser reads variants from a tab-delimited VCF-style file. Lines starting
// with '#' are comments; only CHROM, POS, REF and ALT are interpreted.
type Parser struct {
	in         *fileio.Reader
	lineNumber int
}

// NewParser creates a new parser for the given file.
// Supports both plain and gzipped (.vcf.gz) input; "-" reads stdin.
func NewParser(path string) (*Parser, error) {
	in, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
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

// Next reads the next variant, skipping comment and empty lines.
// Returns nil, nil when there are no more variants.
func (p *Parser) Next() (*Variant, error) {
	for {
		line, err := p.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("read variant line: %w", err)
		}
		p.lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return p.parseLine(line)
	}
}

// parseLine parses a single data line into a Variant.
func (p *Parser) parseLine(line string) (*Variant, error) {
	fields := strings.Split(line, "\t")
	if len(fields) <= colAlt {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("expected at least %d columns, found %d", colAlt+1, len(fields)),
		}
	}

	pos, err := strconv.ParseInt(fields[colPos], 10, 64)
	if err != nil || pos < 1 {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Message: fmt.Sprintf("invalid position: %s", fields[colPos]),
		}
	}

	return &Variant{
		Chrom: fields[colChrom],
		Pos:   pos,
		Ref:   strings.ToUpper(fields[colRef]),
		Alt:   strings.ToUpper(fields[colAlt]),
		Line:  line,
	}, nil
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Close closes the parser and underlying file.
func (p *Parser) Close() error {
	return p.in.Close()
}

// ParseError represents an error during VCF parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("vcf parse error at line %d: %s", e.Line, e.Message)
}
