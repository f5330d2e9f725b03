package duckdb

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
)

// FileFingerprint holds stat-based identity for a run's input file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Run describes one counter or predictor invocation.
type Run struct {
	ID        string
	Mode      string // "count", "predict-cosmopolitan", "predict-private"
	Flank     int
	Input     FileFingerprint
	CreatedAt time.Time
}

// NewRun creates a run record with a fresh ID.
func NewRun(mode string, flank int, input FileFingerprint) Run {
	return Run{
		ID:        uuid.NewString(),
		Mode:      mode,
		Flank:     flank,
		Input:     input,
		CreatedAt: time.Now().UTC(),
	}
}

// RecordRun inserts the run record.
func (s *Store) RecordRun(r Run) error {
	_, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Mode, int64(r.Flank), r.Input.Path, r.Input.Size, r.Input.ModTime, r.CreatedAt)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// GetRun returns the run with the given ID.
func (s *Store) GetRun(id string) (Run, error) {
	var r Run
	var flank int64
	err := s.db.QueryRow(`SELECT run_id, mode, flank, input_path, input_size, input_modtime, created_at
		FROM runs WHERE run_id=?`, id).
		Scan(&r.ID, &r.Mode, &flank, &r.Input.Path, &r.Input.Size, &r.Input.ModTime, &r.CreatedAt)
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	r.Flank = int(flank)
	return r, nil
}

// FindRuns returns the IDs of runs over the same input file contents,
// oldest first.
func (s *Store) FindRuns(mode string, input FileFingerprint) ([]string, error) {
	rows, err := s.db.Query(`SELECT run_id FROM runs
		WHERE mode=? AND input_path=? AND input_size=? AND input_modtime=?
		ORDER BY created_at`, mode, input.Path, input.Size, input.ModTime)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return ids, nil
}
