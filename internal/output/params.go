package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// ParamColumns is the header of a parameter list.
var ParamColumns = []string{"Chrom", "Pos", "Context", "Probability"}

// ParamWriter writes Poisson-binomial parameters, one scanned position per row.
type ParamWriter struct {
	w *bufio.Writer
}

// NewParamWriter creates a new parameter list writer.
func NewParamWriter(w io.Writer) *ParamWriter {
	return &ParamWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes the header line.
func (pw *ParamWriter) WriteHeader() error {
	_, err := pw.w.WriteString(strings.Join(ParamColumns, "\t") + "\n")
	return err
}

// Write writes a single parameter row.
func (pw *ParamWriter) Write(chrom string, pos int64, context string, p float64) error {
	values := []string{
		chrom,
		strconv.FormatInt(pos, 10),
		context,
		strconv.FormatFloat(p, 'g', -1, 64),
	}
	_, err := pw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (pw *ParamWriter) Flush() error {
	return pw.w.Flush()
}
