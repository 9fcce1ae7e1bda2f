// Package flatten converts hierarchical name documents (JSON keyed by country
// code) into flat CSV files with every field quoted.
// Malformed nested data is skipped, never reported; only failures to read,
// parse or write whole files are errors.
package flatten

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/heartmarshall/familytree-names/internal/csvutil"
	"github.com/heartmarshall/familytree-names/internal/domain"
	"github.com/heartmarshall/familytree-names/internal/fileutil"
)

// Layout selects the shape of the source document.
type Layout string

const (
	// LayoutRegions: country -> [region block {region, names: [entry]}].
	LayoutRegions Layout = "regions"
	// LayoutEntries: country -> [entry]. Used by surname documents.
	LayoutEntries Layout = "entries"
)

// ParseLayout converts a configuration value to a Layout.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(s); l {
	case LayoutRegions, LayoutEntries:
		return l, nil
	}
	return "", fmt.Errorf("unknown layout %q", s)
}

// Header returns the CSV header row written for the layout.
func (l Layout) Header() []string {
	if l == LayoutEntries {
		return []string{"country", "rank", "count", "name"}
	}
	return []string{"country", "region", "gender", "rank", "name"}
}

// Stats counts what a conversion did with the document.
type Stats struct {
	Countries int // countries whose value was a sequence
	Entries   int // name entry positions visited
	Written   int // data rows written
	Skipped   int // malformed shapes and entries without a usable name
}

// Convert reads the document at srcPath and writes its flattened rows to
// dstPath. The output is created only if the document was read and parsed;
// it replaces dstPath atomically once fully written.
func Convert(srcPath, dstPath string, layout Layout) (Stats, error) {
	data, err := readSource(srcPath)
	if err != nil {
		return Stats{}, err
	}

	doc, err := parseDocument(srcPath, data)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	err = fileutil.WriteAtomic(dstPath, func(w io.Writer) error {
		cw := csvutil.NewQuoteAllWriter(w)
		cw.UseCRLF = true
		if err := cw.Write(layout.Header()); err != nil {
			return fmt.Errorf("write header: %w: %w", domain.ErrOutputWrite, err)
		}

		wk := &walker{layout: layout, emit: cw.Write}
		if err := wk.document(doc); err != nil {
			return fmt.Errorf("write row: %w: %w", domain.ErrOutputWrite, err)
		}
		stats = wk.stats

		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("flush %s: %w: %w", dstPath, domain.ErrOutputWrite, err)
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	return stats, nil
}

// readSource loads the whole document. A leading byte order mark is removed
// (and UTF-16 input transcoded) before parsing.
func readSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %w", path, domain.ErrSourceNotFound, err)
	}
	defer f.Close()

	r := transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", path, domain.ErrSourceNotFound, err)
	}
	return data, nil
}

// parseDocument validates data as JSON and requires a top-level object.
func parseDocument(path string, data []byte) (gjson.Result, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			return gjson.Result{}, domain.NewParseError(path, data, syntaxErr.Offset, syntaxErr.Error())
		}
		return gjson.Result{}, &domain.ParseError{Path: path, Message: err.Error()}
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return gjson.Result{}, &domain.ParseError{Path: path, Message: "top-level value is not an object"}
	}
	return doc, nil
}
