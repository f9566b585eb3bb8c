// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package settings reads and writes the application's user settings file.
//
// The file is line oriented: a "[Group]" line opens a group and every
// following "item value" line belongs to it until the next group header.
// The value is everything after the first space. Order of groups and items
// is preserved across a load/save round trip.
package settings

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FileName is the settings file inside the settings directory.
const FileName = "mixxx.cfg"

type entry struct {
	key   Key
	value string
}

// Settings is an ordered (group, item) -> value store bound to a file path.
type Settings struct {
	path    string
	exists  bool
	dirty   bool
	entries []entry
	index   map[Key]int
}

// New returns empty settings bound to path. Nothing is read.
func New(path string) *Settings {
	return &Settings{path: path, index: make(map[Key]int)}
}

// Load reads the settings file at path. A missing file yields empty
// settings and no error; Exists reports which case applied.
func Load(path string) (*Settings, error) {
	s := New(path)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("open settings %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if err := s.decode(f); err != nil {
		return s, fmt.Errorf("read settings %s: %w", path, err)
	}
	s.exists = true
	s.dirty = false
	return s, nil
}

func (s *Settings) decode(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	group := ""
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			group = line
			continue
		}
		if group == "" {
			// items before the first group header have no address
			continue
		}
		item, value, _ := strings.Cut(line, " ")
		s.Set(NewKey(group, item), strings.TrimSpace(value))
	}
	return sc.Err()
}

// Encode writes the settings in file format.
func (s *Settings) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i, group := range s.Groups() {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%s\n", group); err != nil {
			return err
		}
		for _, e := range s.entries {
			if e.key.Group != group {
				continue
			}
			if _, err := fmt.Fprintf(bw, "%s %s\n", e.key.Item, e.value); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Bytes returns the encoded file content.
func (s *Settings) Bytes() []byte {
	var buf bytes.Buffer
	_ = s.Encode(&buf)
	return buf.Bytes()
}

// Path returns the file the settings are bound to.
func (s *Settings) Path() string { return s.path }

// Dir returns the settings directory.
func (s *Settings) Dir() string { return filepath.Dir(s.path) }

// Exists reports whether the settings were read from an existing file.
func (s *Settings) Exists() bool { return s.exists }

// Dirty reports whether a value changed since load or the last save.
func (s *Settings) Dirty() bool { return s.dirty }

// Len returns the number of stored values.
func (s *Settings) Len() int { return len(s.entries) }

// Groups returns group names in first-seen order.
func (s *Settings) Groups() []string {
	seen := make(map[string]struct{})
	var groups []string
	for _, e := range s.entries {
		if _, ok := seen[e.key.Group]; ok {
			continue
		}
		seen[e.key.Group] = struct{}{}
		groups = append(groups, e.key.Group)
	}
	return groups
}

// Keys returns all keys in insertion order.
func (s *Settings) Keys() []Key {
	keys := make([]Key, 0, len(s.entries))
	for _, e := range s.entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Get returns the raw value and whether the key is present.
func (s *Settings) Get(k Key) (string, bool) {
	i, ok := s.index[k]
	if !ok {
		return "", false
	}
	return s.entries[i].value, true
}

// GetString returns the value or "" when absent.
func (s *Settings) GetString(k Key) string {
	v, _ := s.Get(k)
	return v
}

// GetInt parses the value as an integer, returning def when the key is
// absent or not a number.
func (s *Settings) GetInt(k Key, def int) int {
	v, ok := s.Get(k)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// Set stores value under k. Setting an identical value does not mark the
// settings dirty.
func (s *Settings) Set(k Key, value string) {
	if i, ok := s.index[k]; ok {
		if s.entries[i].value == value {
			return
		}
		s.entries[i].value = value
		s.dirty = true
		return
	}
	s.index[k] = len(s.entries)
	s.entries = append(s.entries, entry{key: k, value: value})
	s.dirty = true
}

// SetInt stores an integer value.
func (s *Settings) SetInt(k Key, v int) {
	s.Set(k, strconv.Itoa(v))
}

// SetBool stores a boolean as 1 or 0.
func (s *Settings) SetBool(k Key, v bool) {
	if v {
		s.Set(k, "1")
		return
	}
	s.Set(k, "0")
}

// Save writes the settings atomically, creating the directory if needed.
func (s *Settings) Save() error {
	if err := os.MkdirAll(s.Dir(), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := writeAtomic(s.path, s.Bytes()); err != nil {
		return err
	}
	s.exists = true
	s.dirty = false
	return nil
}

// SaveIfDirty saves only when a value changed. It reports whether a write happened.
func (s *Settings) SaveIfDirty() (bool, error) {
	if !s.dirty {
		return false, nil
	}
	if err := s.Save(); err != nil {
		return false, err
	}
	return true, nil
}
