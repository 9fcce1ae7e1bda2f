package domain

import (
	"bytes"
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrSourceNotFound    = errors.New("source not found")
	ErrParse             = errors.New("parse failure")
	ErrOutputWrite       = errors.New("output write failure")
	ErrEmptyIntersection = errors.New("no common keys")

	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
)

// ParseError describes a document that could not be decoded.
// Offset is the byte offset reported by the decoder; Line and Column are
// 1-based and derived from it.
type ParseError struct {
	Path    string
	Offset  int64
	Line    int
	Column  int
	Message string
}

func (e *ParseError) Error() string {
	switch {
	case e.Line == 0:
		return fmt.Sprintf("parse %s: %s", e.Path, e.Message)
	case e.Offset == 0:
		return fmt.Sprintf("parse %s: line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("parse %s: line %d, column %d (offset %d): %s", e.Path, e.Line, e.Column, e.Offset, e.Message)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// NewParseError builds a ParseError for data, resolving offset to a line and column.
func NewParseError(path string, data []byte, offset int64, message string) *ParseError {
	offset = max(0, min(offset, int64(len(data))))
	head := data[:offset]

	line := bytes.Count(head, []byte{'\n'}) + 1
	col := int(offset) - (bytes.LastIndexByte(head, '\n') + 1) + 1

	return &ParseError{
		Path:    path,
		Offset:  offset,
		Line:    line,
		Column:  col,
		Message: message,
	}
}
