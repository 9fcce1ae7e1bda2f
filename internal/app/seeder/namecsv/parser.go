// Package namecsv parses reconciled forename and surname CSV files into
// catalog records. Columns are located by header name, so both flattener
// layouts and extra columns are accepted.
// Pure function: file paths in, domain structs out. No database dependencies.
package namecsv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/heartmarshall/familytree-names/internal/domain"
)

// ParseForenamesFile opens path and parses it with ParseForenames.
func ParseForenamesFile(path string) ([]domain.Forename, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open forenames file: %w: %w", domain.ErrSourceNotFound, err)
	}
	defer f.Close()

	return ParseForenames(f)
}

// ParseSurnamesFile opens path and parses it with ParseSurnames.
func ParseSurnamesFile(path string) ([]domain.Surname, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open surnames file: %w: %w", domain.ErrSourceNotFound, err)
	}
	defer f.Close()

	return ParseSurnames(f)
}

// ParseForenames reads a forenames CSV. Required columns: country, name.
// Optional: region (default "Unknown"), gender, rank.
func ParseForenames(r io.Reader) ([]domain.Forename, error) {
	now := time.Now().UTC()
	var out []domain.Forename

	err := scan(r, "forenames", []string{"country", "name"}, func(row row) {
		region := row.get("region")
		if region == "" {
			region = domain.UnknownRegion
		}
		out = append(out, domain.Forename{
			ID:        uuid.New(),
			Country:   row.get("country"),
			Region:    region,
			Gender:    row.get("gender"),
			Rank:      row.atoi("rank"),
			Name:      row.name(),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("parse forenames: %w", err)
	}
	return out, nil
}

// ParseSurnames reads a surnames CSV. Required columns: country, name.
// Optional: rank, count.
func ParseSurnames(r io.Reader) ([]domain.Surname, error) {
	now := time.Now().UTC()
	var out []domain.Surname

	err := scan(r, "surnames", []string{"country", "name"}, func(row row) {
		out = append(out, domain.Surname{
			ID:        uuid.New(),
			Country:   row.get("country"),
			Rank:      row.atoi("rank"),
			Count:     row.atoi("count"),
			Name:      row.name(),
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("parse surnames: %w", err)
	}
	return out, nil
}

// row gives header-keyed access to one record.
type row struct {
	cols   map[string]int
	record []string
}

func (r row) get(col string) string {
	i, ok := r.cols[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// name returns the name column in Unicode NFC, so composed and decomposed
// spellings of the same name collide on the catalog's unique keys.
func (r row) name() string {
	return norm.NFC.String(r.get("name"))
}

// atoi parses an integer column; missing or unparsable values are 0.
func (r row) atoi(col string) int {
	n, err := strconv.Atoi(r.get(col))
	if err != nil {
		return 0
	}
	return n
}

// scan reads the header, checks required columns and calls fn for every data
// row that has a non-empty value in each required column.
func scan(r io.Reader, source string, required []string, fn func(row)) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return parseError(source, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, c := range required {
		if _, ok := cols[c]; !ok {
			return fmt.Errorf("missing column %q: %w", c, domain.ErrParse)
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return parseError(source, err)
		}

		rw := row{cols: cols, record: record}
		complete := true
		for _, c := range required {
			if rw.get(c) == "" {
				complete = false
				break
			}
		}
		if complete {
			fn(rw)
		}
	}
}

func parseError(source string, err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &domain.ParseError{Path: source, Line: pe.Line, Column: pe.Column, Message: pe.Err.Error()}
	}
	return fmt.Errorf("read: %w", err)
}
