// Package output provides writers and readers for context count tables and
// predictor parameter lists.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/polyctx/internal/mutctx"
)

// CountColumns is the header of a count report.
var CountColumns = []string{"Context", "Count", "One_mer"}

// CountWriter writes context counts in tab-delimited format.
type CountWriter struct {
	w *bufio.Writer
}

// NewCountWriter creates a new count report writer.
func NewCountWriter(w io.Writer) *CountWriter {
	return &CountWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (cw *CountWriter) WriteHeader() error {
	_, err := cw.w.WriteString(strings.Join(CountColumns, "\t") + "\n")
	return err
}

// Write writes a single context row.
func (cw *CountWriter) Write(context string, count int64) error {
	oneMer, err := mutctx.OneMer(context)
	if err != nil {
		return err
	}
	_, err = cw.w.WriteString(context + "\t" + strconv.FormatInt(count, 10) + "\t" + oneMer + "\n")
	return err
}

// WriteTable writes the header and every canonical context of table, sorted
// by key, then flushes.
func (cw *CountWriter) WriteTable(table *mutctx.Table[int64]) error {
	if err := cw.WriteHeader(); err != nil {
		return err
	}
	for _, k := range table.Keys() {
		n, err := table.Value(k)
		if err != nil {
			return err
		}
		if err := cw.Write(k, n); err != nil {
			return fmt.Errorf("write %s: %w", k, err)
		}
	}
	return cw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (cw *CountWriter) Flush() error {
	return cw.w.Flush()
}

// CountRow is one parsed line of a count report.
type CountRow struct {
	Context string
	Count   int64
	OneMer  string
}

// ReadCounts parses a count report written by CountWriter.
func ReadCounts(r io.Reader) ([]CountRow, error) {
	scanner := bufio.NewScanner(r)
	var rows []CountRow
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := strings.TrimRight(scanner.Text(), "\r")
		if lineNumber == 1 {
			if line != strings.Join(CountColumns, "\t") {
				return nil, fmt.Errorf("line 1: unexpected header %q", line)
			}
			continue
		}
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != len(CountColumns) {
			return nil, fmt.Errorf("line %d: expected %d columns, found %d", lineNumber, len(CountColumns), len(fields))
		}
		n, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid count %q", lineNumber, fields[1])
		}
		rows = append(rows, CountRow{Context: fields[0], Count: n, OneMer: fields[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan counts: %w", err)
	}
	return rows, nil
}
