package flatten

import (
	"github.com/tidwall/gjson"

	"github.com/heartmarshall/familytree-names/internal/domain"
)

// walker visits a document in source order and emits one record per
// usable name entry.
type walker struct {
	layout Layout
	emit   func(record []string) error
	stats  Stats
}

func (w *walker) document(doc gjson.Result) error {
	var err error
	doc.ForEach(func(key, value gjson.Result) bool {
		err = w.country(key.String(), value)
		return err == nil
	})
	return err
}

func (w *walker) country(code string, value gjson.Result) error {
	if !value.IsArray() {
		w.stats.Skipped++
		return nil
	}
	w.stats.Countries++

	for _, item := range value.Array() {
		var err error
		if w.layout == LayoutEntries {
			err = w.entry(code, "", item)
		} else {
			err = w.block(code, item)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) block(code string, block gjson.Result) error {
	if !block.IsObject() {
		w.stats.Skipped++
		return nil
	}
	names := block.Get("names")
	if !names.IsArray() {
		w.stats.Skipped++
		return nil
	}

	region := regionLabel(block.Get("region"))
	for _, item := range names.Array() {
		if err := w.entry(code, region, item); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) entry(code, region string, item gjson.Result) error {
	w.stats.Entries++

	e, ok := readEntry(item)
	if !ok {
		w.stats.Skipped++
		return nil
	}

	var record []string
	if w.layout == LayoutEntries {
		record = []string{code, e.rank, e.count, e.name}
	} else {
		record = []string{code, region, e.gender, e.rank, e.name}
	}
	if err := w.emit(record); err != nil {
		return err
	}
	w.stats.Written++
	return nil
}

type nameEntry struct {
	gender string
	rank   string
	count  string
	name   string
}

// readEntry extracts a name entry. ok is false when item is not a record or
// has no usable label in romanized or localized.
func readEntry(item gjson.Result) (e nameEntry, ok bool) {
	if !item.IsObject() {
		return nameEntry{}, false
	}

	// A string romanized label wins even when empty; localized is only
	// consulted when romanized has no string first element.
	name, ok := firstLabel(item.Get("romanized"))
	if !ok {
		name, ok = firstLabel(item.Get("localized"))
	}
	if !ok || name == "" {
		return nameEntry{}, false
	}

	return nameEntry{
		gender: literal(item.Get("gender"), ""),
		rank:   literal(item.Get("rank"), "0"),
		count:  literal(item.Get("count"), "0"),
		name:   name,
	}, true
}

// firstLabel returns the first element of a label sequence when it is a
// string, possibly empty.
func firstLabel(v gjson.Result) (string, bool) {
	if !v.IsArray() {
		return "", false
	}
	items := v.Array()
	if len(items) == 0 || items[0].Type != gjson.String {
		return "", false
	}
	return items[0].Str, true
}

func regionLabel(v gjson.Result) string {
	if v.Type != gjson.String || v.Str == "" {
		return domain.UnknownRegion
	}
	return v.Str
}

// literal renders a present value as written in the document: strings
// unquoted, null as empty, anything else as its raw JSON text.
func literal(v gjson.Result, absent string) string {
	if !v.Exists() {
		return absent
	}
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}
