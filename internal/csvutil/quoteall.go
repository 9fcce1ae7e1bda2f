// Package csvutil holds CSV helpers not covered by encoding/csv.
package csvutil

import (
	"bufio"
	"io"
	"strings"
)

// QuoteAllWriter writes CSV records with every field enclosed in double
// quotes. Embedded quotes are doubled. Its surface mirrors csv.Writer.
type QuoteAllWriter struct {
	Comma   rune // Field delimiter (set to ',' by NewQuoteAllWriter)
	UseCRLF bool // True to use \r\n as the line terminator

	w *bufio.Writer
}

// NewQuoteAllWriter returns a new QuoteAllWriter that writes to w.
func NewQuoteAllWriter(w io.Writer) *QuoteAllWriter {
	return &QuoteAllWriter{
		Comma: ',',
		w:     bufio.NewWriter(w),
	}
}

// Write writes a single CSV record. Writes are buffered; call Flush.
func (q *QuoteAllWriter) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if _, err := q.w.WriteRune(q.Comma); err != nil {
				return err
			}
		}
		if err := q.w.WriteByte('"'); err != nil {
			return err
		}
		if _, err := q.w.WriteString(strings.ReplaceAll(field, `"`, `""`)); err != nil {
			return err
		}
		if err := q.w.WriteByte('"'); err != nil {
			return err
		}
	}

	var err error
	if q.UseCRLF {
		_, err = q.w.WriteString("\r\n")
	} else {
		err = q.w.WriteByte('\n')
	}
	return err
}

// Flush writes any buffered data to the underlying io.Writer.
// Use Error to check whether the flush succeeded.
func (q *QuoteAllWriter) Flush() {
	_ = q.w.Flush()
}

// Error reports any error that has occurred during a previous Write or Flush.
func (q *QuoteAllWriter) Error() error {
	_, err := q.w.Write(nil)
	return err
}
