// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package fsutil holds the file operations used when relocating settings:
// copies that never overwrite, moves built on them, and flat directory copies.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// ErrDestinationExists is returned when a copy target is already present.
var ErrDestinationExists = errors.New("destination already exists")

// Exists reports whether path exists (following symlinks).
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsRegularFile returns nil when path is a regular file.
func IsRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: not a regular file", path)
	}
	return nil
}

// CopyFile copies src to dst without ever replacing dst. The source mode
// bits are kept. A partially written dst is removed on failure.
func CopyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy %s: not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("copy %s: %w", dst, ErrDestinationExists)
		}
		return fmt.Errorf("create destination: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close destination: %w", cerr)
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy data: %w", err)
	}
	return out.Sync()
}

// MoveFile copies src to dst and removes src once the copy succeeded.
// Failing to remove src is reported but dst is kept.
func MoveFile(src, dst string) error {
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("remove moved source: %w", err)
	}
	return nil
}

// FileError pairs a file name with the error that stopped its copy.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string { return e.Name + ": " + e.Err.Error() }

func (e FileError) Unwrap() error { return e.Err }

// CopyReport summarises a CopyDirFiles run.
type CopyReport struct {
	Copied  []string
	Skipped []string
	Failed  []FileError
}

// OK reports whether every file was copied or skipped.
func (r CopyReport) OK() bool { return len(r.Failed) == 0 }

// CopyDirFiles copies the regular files directly inside src into dst,
// creating dst. Subdirectories are not descended into. With skipExisting,
// names already present in dst are left alone and reported as skipped;
// otherwise they fail with ErrDestinationExists. A missing src is an empty
// report, not an error. One failed file does not stop the others.
func CopyDirFiles(src, dst string, skipExisting bool) (CopyReport, error) {
	var report CopyReport

	entries, err := os.ReadDir(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, nil
		}
		return report, fmt.Errorf("read source dir: %w", err)
	}
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return report, fmt.Errorf("create destination dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		name := e.Name()
		target := filepath.Join(dst, name)
		if skipExisting && Exists(target) {
			report.Skipped = append(report.Skipped, name)
			continue
		}
		if err := CopyFile(filepath.Join(src, name), target); err != nil {
			report.Failed = append(report.Failed, FileError{Name: name, Err: err})
			continue
		}
		report.Copied = append(report.Copied, name)
	}
	return report, nil
}
