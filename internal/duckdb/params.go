package duckdb

import (
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/polyctx/internal/predict"
)

// ParamAppender streams predictor parameters into poibin_params. Its Append
// method matches the predictor's per-position callback.
type ParamAppender struct {
	runID    string
	next     int64
	appender *goduckdb.Appender
	closeFn  func() error
}

// BeginParams starts appending parameters for runID.
func (s *Store) BeginParams(runID string) (*ParamAppender, error) {
	appender, closeFn, err := s.appender("poibin_params")
	if err != nil {
		return nil, err
	}
	return &ParamAppender{runID: runID, appender: appender, closeFn: closeFn}, nil
}

// Append writes one parameter, numbering rows in emission order.
func (a *ParamAppender) Append(p predict.Param) error {
	if err := a.appender.AppendRow(a.runID, a.next, p.Chrom, p.Pos, p.Context, p.Prob); err != nil {
		return fmt.Errorf("append param: %w", err)
	}
	a.next++
	return nil
}

// Len returns the number of parameters appended so far.
func (a *ParamAppender) Len() int64 {
	return a.next
}

// Close flushes pending rows and releases the connection.
func (a *ParamAppender) Close() error {
	if err := a.appender.Flush(); err != nil {
		a.closeFn()
		return fmt.Errorf("flush params: %w", err)
	}
	return a.closeFn()
}

// ParamSummary aggregates a run's parameter list.
type ParamSummary struct {
	N    int64
	Sum  float64
	Mean float64
}

// SummarizeParams returns the size, sum and mean of a run's parameters.
func (s *Store) SummarizeParams(runID string) (ParamSummary, error) {
	var ps ParamSummary
	err := s.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(prob), 0), COALESCE(AVG(prob), 0)
		FROM poibin_params WHERE run_id=?`, runID).Scan(&ps.N, &ps.Sum, &ps.Mean)
	if err != nil {
		return ParamSummary{}, fmt.Errorf("summarize params: %w", err)
	}
	return ps, nil
}

// LookupParams returns a run's parameters in emission order.
func (s *Store) LookupParams(runID string) ([]predict.Param, error) {
	rows, err := s.db.Query(`SELECT chrom, pos, context, prob
		FROM poibin_params WHERE run_id=? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("query params: %w", err)
	}
	defer rows.Close()

	var out []predict.Param
	for rows.Next() {
		var p predict.Param
		if err := rows.Scan(&p.Chrom, &p.Pos, &p.Context, &p.Prob); err != nil {
			return nil, fmt.Errorf("scan param: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate params: %w", err)
	}
	return out, nil
}
