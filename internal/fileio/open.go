// Package fileio opens plain or gzip-compressed input files.
package fileio

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Reader is a buffered reader over a possibly decompressed file.
type Reader struct {
	*bufio.Reader
	file *os.File
	gz   *gzip.Reader
}

// Open opens path for reading. Gzip input is detected by its magic bytes
// (0x1f, 0x8b) and decompressed transparently. "-" reads stdin.
func Open(path string) (*Reader, error) {
	if path == "-" {
		return FromReader(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{file: file}
	br := bufio.NewReader(file)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		file.Close()
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		r.gz, err = gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		r.Reader = bufio.NewReader(r.gz)
	} else {
		r.Reader = br
	}

	return r, nil
}

// FromReader wraps an already open stream, detecting gzip the same way.
func FromReader(rd io.Reader) (*Reader, error) {
	br := bufio.NewReader(rd)
	magic, err := br.Peek(2)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		return &Reader{Reader: bufio.NewReader(gz), gz: gz}, nil
	}
	return &Reader{Reader: br}, nil
}

// Close releases the decompressor and the underlying file.
func (r *Reader) Close() error {
	if r.gz != nil {
		r.gz.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
