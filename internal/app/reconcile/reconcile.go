// Package reconcile restricts several CSV datasets to the rows whose key
// (column 0) occurs in every one of them, rewriting the files in place.
// Row 0 of each file is a header and is always kept.
package reconcile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/heartmarshall/familytree-names/internal/domain"
	"github.com/heartmarshall/familytree-names/internal/fileutil"
)

// stage is replaced in tests to simulate write failures.
var stage = fileutil.Stage

// FileResult describes the rewrite of one dataset.
type FileResult struct {
	Path string
	Rows int // data rows before filtering
	Kept int // data rows after filtering
}

// Result summarizes a reconciliation run.
type Result struct {
	Common []string // sorted
	Files  []FileResult
}

// Reconcile computes the keys common to all files and rewrites each file to
// keep only its header and the rows with a common key, in original order.
//
// All files are read before anything is written. If the intersection is
// empty, domain.ErrEmptyIntersection is returned and no file is modified.
// Filtered content is staged for every file before any original is
// replaced; if staging fails for one file, none are replaced.
func Reconcile(paths ...string) (Result, error) {
	if len(paths) < 2 {
		return Result{}, fmt.Errorf("reconcile needs at least two files, got %d", len(paths))
	}

	var common map[string]struct{}
	for _, p := range paths {
		keys, err := ReadKeys(p)
		if err != nil {
			return Result{}, err
		}
		if common == nil {
			common = keys
		} else {
			common = intersect(common, keys)
		}
	}

	if len(common) == 0 {
		return Result{}, fmt.Errorf("%d files share no key: %w", len(paths), domain.ErrEmptyIntersection)
	}

	staged := make([]*fileutil.Staged, 0, len(paths))
	discardAll := func() {
		for _, s := range staged {
			s.Discard()
		}
	}

	files := make([]FileResult, 0, len(paths))
	for _, p := range paths {
		var fr FileResult
		s, err := stage(p, func(w io.Writer) error {
			var err error
			fr, err = filterFile(p, w, common)
			return err
		})
		if err != nil {
			discardAll()
			return Result{}, err
		}
		staged = append(staged, s)
		files = append(files, fr)
	}

	for i, s := range staged {
		if err := s.Commit(); err != nil {
			for _, rest := range staged[i+1:] {
				rest.Discard()
			}
			return Result{}, err
		}
	}

	return Result{Common: sortedKeys(common), Files: files}, nil
}

// ReadKeys returns the distinct column-0 values of every row after the header.
func ReadKeys(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, domain.ErrSourceNotFound, err)
	}
	defer f.Close()

	r := newReader(f)
	keys := make(map[string]struct{})

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return keys, nil
		}
		return nil, readError(path, err)
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, readError(path, err)
		}
		keys[record[0]] = struct{}{}
	}

	return keys, nil
}

// filterFile copies the header of path and every row whose key is in keep to w.
func filterFile(path string, w io.Writer, keep map[string]struct{}) (FileResult, error) {
	res := FileResult{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("open %s: %w: %w", path, domain.ErrSourceNotFound, err)
	}
	defer f.Close()

	r := newReader(f)
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return res, nil
	}
	if err != nil {
		return res, readError(path, err)
	}
	if err := cw.Write(header); err != nil {
		return res, fmt.Errorf("write header: %w: %w", domain.ErrOutputWrite, err)
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, readError(path, err)
		}
		res.Rows++

		if _, ok := keep[record[0]]; !ok {
			continue
		}
		if err := cw.Write(record); err != nil {
			return res, fmt.Errorf("write row: %w: %w", domain.ErrOutputWrite, err)
		}
		res.Kept++
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return res, fmt.Errorf("flush: %w: %w", domain.ErrOutputWrite, err)
	}
	return res, nil
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // allow variable column count
	cr.LazyQuotes = true    // O"Brien in an unquoted field is kept as is
	return cr
}

func readError(path string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &domain.ParseError{
			Path:    path,
			Line:    pe.Line,
			Column:  pe.Column,
			Message: pe.Err.Error(),
		}
	}
	return fmt.Errorf("read %s: %w: %w", path, domain.ErrSourceNotFound, err)
}

func intersect(a, b map[string]struct{}) map[string]struct{} {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[string]struct{}, len(a))
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
