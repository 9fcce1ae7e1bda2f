// Package fileutil provides write-then-rename replacement of files so a
// target is either left untouched or replaced by complete content.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/heartmarshall/familytree-names/internal/domain"
)

// Staged is a fully written temporary file waiting to replace its target.
type Staged struct {
	target string
	temp   string
	done   bool
}

// Stage writes content produced by fill into a temporary file in the same
// directory as path. The target itself is not touched until Commit.
// Errors returned by fill are passed through unchanged; failures of the
// temporary file itself are wrapped with domain.ErrOutputWrite.
func Stage(path string, fill func(w io.Writer) error) (*Staged, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file for %s: %w: %w", path, domain.ErrOutputWrite, err)
	}
	s := &Staged{target: path, temp: tmp.Name()}

	if err := fill(tmp); err != nil {
		_ = tmp.Close()
		s.Discard()
		return nil, err
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		s.Discard()
		return nil, fmt.Errorf("sync %s: %w: %w", s.temp, domain.ErrOutputWrite, err)
	}
	if err := tmp.Close(); err != nil {
		s.Discard()
		return nil, fmt.Errorf("close %s: %w: %w", s.temp, domain.ErrOutputWrite, err)
	}

	// Keep the target's permissions; CreateTemp always uses 0600.
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(s.temp, mode); err != nil {
		s.Discard()
		return nil, fmt.Errorf("chmod %s: %w: %w", s.temp, domain.ErrOutputWrite, err)
	}

	return s, nil
}

// Target returns the path the staged file will replace.
func (s *Staged) Target() string { return s.target }

// Commit renames the staged file onto its target.
func (s *Staged) Commit() error {
	if s.done {
		return errors.New("staged file already committed or discarded")
	}
	if err := os.Rename(s.temp, s.target); err != nil {
		s.Discard()
		return fmt.Errorf("replace %s: %w: %w", s.target, domain.ErrOutputWrite, err)
	}
	s.done = true
	return nil
}

// Discard removes the staged file. It is safe to call more than once.
func (s *Staged) Discard() {
	if s.done {
		return
	}
	s.done = true
	_ = os.Remove(s.temp)
}

// WriteAtomic replaces path with the content produced by fill.
// On any failure the previous content of path (or its absence) is preserved.
func WriteAtomic(path string, fill func(w io.Writer) error) error {
	s, err := Stage(path, fill)
	if err != nil {
		return err
	}
	return s.Commit()
}
