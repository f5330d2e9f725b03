package duckdb

import (
	"fmt"

	"github.com/inodb/polyctx/internal/mutctx"
)

// CountRow is one persisted context count.
type CountRow struct {
	Context string
	Count   int64
	OneMer  string
}

// WriteCounts batch-inserts every entry of table under runID using the
// Appender API. Entries are written in sorted key order, zero counts included.
func (s *Store) WriteCounts(runID string, table *mutctx.Table[int64]) error {
	appender, closeFn, err := s.appender("context_counts")
	if err != nil {
		return err
	}
	defer closeFn()

	for _, key := range table.Keys() {
		count, err := table.Value(key)
		if err != nil {
			return err
		}
		oneMer, err := mutctx.OneMer(key)
		if err != nil {
			return err
		}
		if err := appender.AppendRow(runID, key, count, oneMer); err != nil {
			return fmt.Errorf("append count: %w", err)
		}
	}

	return appender.Flush()
}

// LookupCounts returns the counts of a run in context order.
func (s *Store) LookupCounts(runID string) ([]CountRow, error) {
	rows, err := s.db.Query(`SELECT context, count, one_mer
		FROM context_counts WHERE run_id=? ORDER BY context`, runID)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	var out []CountRow
	for rows.Next() {
		var r CountRow
		if err := rows.Scan(&r.Context, &r.Count, &r.OneMer); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate counts: %w", err)
	}
	return out, nil
}

// CountsByOneMer aggregates a run's counts by single-base substitution class.
func (s *Store) CountsByOneMer(runID string) (map[string]int64, error) {
	rows, err := s.db.Query(`SELECT one_mer, SUM(count)::BIGINT
		FROM context_counts WHERE run_id=? GROUP BY one_mer`, runID)
	if err != nil {
		return nil, fmt.Errorf("query one-mer counts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var oneMer string
		var n int64
		if err := rows.Scan(&oneMer, &n); err != nil {
			return nil, fmt.Errorf("scan one-mer count: %w", err)
		}
		out[oneMer] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate one-mer counts: %w", err)
	}
	return out, nil
}

// ClearRun removes a run and everything recorded under it.
func (s *Store) ClearRun(runID string) error {
	for _, table := range []string{"context_counts", "poibin_params", "runs"} {
		if _, err := s.db.Exec("DELETE FROM "+table+" WHERE run_id=?", runID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
