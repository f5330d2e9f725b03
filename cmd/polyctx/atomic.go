package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// outputFile is a destination that only becomes visible under its final name
// once Commit succeeds. Standard output is written through directly.
type outputFile struct {
	w     io.Writer
	tmp   *os.File
	final string
}

// createOutput opens a temporary file next to path, or wraps stdout when
// path is "" or "-".
func createOutput(path string) (*outputFile, error) {
	if path == "" || path == "-" {
		return &outputFile{w: os.Stdout}, nil
	}
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	return &outputFile{w: tmp, tmp: tmp, final: path}, nil
}

func (o *outputFile) Write(p []byte) (int, error) {
	return o.w.Write(p)
}

// Commit renames the temporary file to its final name.
func (o *outputFile) Commit() error {
	if o.tmp == nil {
		return nil
	}
	if err := o.tmp.Close(); err != nil {
		os.Remove(o.tmp.Name())
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Rename(o.tmp.Name(), o.final); err != nil {
		os.Remove(o.tmp.Name())
		return fmt.Errorf("rename output file: %w", err)
	}
	o.tmp = nil
	return nil
}

// Abort discards the temporary file. It is a no-op after Commit.
func (o *outputFile) Abort() {
	if o.tmp == nil {
		return
	}
	o.tmp.Close()
	os.Remove(o.tmp.Name())
	o.tmp = nil
}
