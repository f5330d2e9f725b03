// Package model loads per-context mutation probabilities for the predictor.
package model

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/polyctx/internal/fileio"
	"github.com/inodb/polyctx/internal/mutctx"
)

// Mode selects which probability columns of a model row are summed.
type Mode int

const (
	// Cosmopolitan sums columns 1-3.
	Cosmopolitan Mode = 0
	// Private sums columns 4-6.
	Private Mode = 1
)

// ErrEmptyModel is returned when a model file has no data rows.
var ErrEmptyModel = errors.New("model has no context rows")

// ParseMode converts the CLI mode flag ("0" or "1").
func ParseMode(s string) (Mode, error) {
	switch s {
	case "0":
		return Cosmopolitan, nil
	case "1":
		return Private, nil
	}
	return 0, fmt.Errorf("invalid mode %q: expected 0 (cosmopolitan) or 1 (private)", s)
}

func (m Mode) String() string {
	if m == Private {
		return "private"
	}
	return "cosmopolitan"
}

// columns returns the half-open field range summed for the mode.
func (m Mode) columns() (int, int) {
	if m == Private {
		return 4, 7
	}
	return 1, 4
}

// Load reads a tab-delimited model file with a header row and returns a
// probability table over canonical sequence contexts. The flank width is
// derived from the first data row.
func Load(path string, mode Mode) (*mutctx.Table[float64], error) {
	in, err := fileio.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer in.Close()

	return Read(in, mode)
}

// Read parses model rows from r; see Load.
//
// Keys are either bare sequences ("ACG"), whose value is set, or mutation
// keys ("ACG->T"), whose values are summed onto their sequence context.
func Read(r io.Reader, mode Mode) (*mutctx.Table[float64], error) {
	in, err := fileio.FromReader(r)
	if err != nil {
		return nil, err
	}

	lo, hi := mode.columns()
	var table *mutctx.Table[float64]
	lineNumber := 0

	for {
		line, err := in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read model: %w", err)
		}
		lineNumber++

		line = strings.TrimRight(line, "\r\n")
		if lineNumber == 1 || line == "" {
			continue // header
		}

		fields := strings.Split(line, "\t")
		if len(fields) < hi {
			return nil, &ParseError{Line: lineNumber, Message: fmt.Sprintf("expected at least %d columns, found %d", hi, len(fields))}
		}

		key := fields[0]
		if table == nil {
			flank, err := mutctx.FlankOf(key)
			if err != nil {
				return nil, &ParseError{Line: lineNumber, Message: err.Error()}
			}
			if table, err = mutctx.NewSequenceTable[float64](flank); err != nil {
				return nil, &ParseError{Line: lineNumber, Message: err.Error()}
			}
		}

		var p float64
		for _, f := range fields[lo:hi] {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, &ParseError{Line: lineNumber, Message: fmt.Sprintf("invalid probability %q", f)}
			}
			p += v
		}

		seq := mutctx.SequenceOf(key)
		if seq == key {
			err = table.Set(seq, p)
		} else {
			err = table.Add(seq, p)
		}
		if err != nil {
			return nil, &ParseError{Line: lineNumber, Message: err.Error()}
		}
	}

	if table == nil {
		return nil, ErrEmptyModel
	}
	return table, nil
}

// ParseError represents an error in a model file with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("model parse error at line %d: %s", e.Line, e.Message)
}
