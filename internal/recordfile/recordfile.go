// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package recordfile implements the append-only CSV log of readings.
package recordfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/relabs-tech/depth_logger/internal/reading"
)

// tailWindow bounds how far back a partial row is searched for.
const tailWindow = 4096

// ErrNotFound is returned when the record file does not exist.
var ErrNotFound = errors.New("record file not found")

// File is an append-only CSV record file.
//
// The handle is opened lazily by Append. The header is written exactly when
// the file is opened missing or empty; rows appended to a non-empty file
// are never preceded by another header.
type File struct {
	path  string
	fsync bool

	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// New returns a File for path. When fsync is true every append is synced to
// stable storage, otherwise it is only flushed to the OS.
func New(path string, fsync bool) *File {
	return &File{path: path, fsync: fsync}
}

// Path returns the file location.
func (r *File) Path() string {
	return r.path
}

// Append writes one row, opening (and if needed creating with a header) the
// file first. On error the handle is dropped so the next call reopens.
func (r *File) Append(rd reading.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.f == nil {
		if err := r.open(); err != nil {
			return err
		}
	}

	if err := r.w.Write(rd.Record()); err != nil {
		r.closeLocked()
		return fmt.Errorf("write row: %w", err)
	}
	if err := r.flushLocked(); err != nil {
		r.closeLocked()
		return err
	}
	return nil
}

// open must be called with mu held.
func (r *File) open() error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create record dir: %w", err)
		}
	}

	f, err := os.OpenFile(r.path, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open record file: %w", err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat record file: %w", err)
	}
	size, err := trimPartialRow(f, st.Size())
	if err != nil {
		f.Close()
		return fmt.Errorf("repair record file tail: %w", err)
	}

	r.f = f
	r.w = csv.NewWriter(f)

	if size == 0 {
		if err := r.w.Write(reading.Header); err != nil {
			r.closeLocked()
			return fmt.Errorf("write header: %w", err)
		}
		if err := r.flushLocked(); err != nil {
			r.closeLocked()
			return err
		}
	}
	return nil
}

// trimPartialRow drops an unterminated last row, as left by a failed write,
// so the next row starts on its own line. It returns the resulting size.
func trimPartialRow(f *os.File, size int64) (int64, error) {
	if size == 0 {
		return 0, nil
	}
	n := min(int64(tailWindow), size)
	buf := make([]byte, n)
	if _, err := f.ReadAt(buf, size-n); err != nil {
		return size, err
	}
	if buf[n-1] == '\n' {
		return size, nil
	}

	i := bytes.LastIndexByte(buf, '\n')
	if i < 0 && n < size {
		// No line break in the window; terminate the line instead.
		if _, err := f.Write([]byte{'\n'}); err != nil {
			return size, err
		}
		return size + 1, nil
	}
	keep := size - n + int64(i) + 1
	return keep, f.Truncate(keep)
}

func (r *File) flushLocked() error {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return fmt.Errorf("flush record file: %w", err)
	}
	if r.fsync {
		if err := r.f.Sync(); err != nil {
			return fmt.Errorf("sync record file: %w", err)
		}
	}
	return nil
}

func (r *File) closeLocked() {
	if r.f != nil {
		r.f.Close()
	}
	r.f = nil
	r.w = nil
}

// Stat reports whether the file exists and its size.
func (r *File) Stat() (exists bool, size int64, err error) {
	st, err := os.Stat(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, err
	}
	return true, st.Size(), nil
}

// Open returns a reader over the current file contents, or ErrNotFound.
// Appends may continue while the reader is in use; the caller sees at least
// the rows flushed before Open returned.
func (r *File) Open() (io.ReadCloser, error) {
	f, err := os.Open(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open record file: %w", err)
	}
	return f, nil
}

// Remove deletes the file, or returns ErrNotFound. The next Append recreates
// it with a fresh header.
func (r *File) Remove() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeLocked()
	err := os.Remove(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("remove record file: %w", err)
	}
	return nil
}

// Close releases the handle. The File may still be appended to afterwards.
func (r *File) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.f == nil {
		return nil
	}
	err := r.f.Close()
	r.f = nil
	r.w = nil
	return err
}
