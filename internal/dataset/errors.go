package dataset

import (
	"errors"
	"fmt"
)

// ParseError reports a dataset row that could not be split into a record.
type ParseError struct {
	LineNo int // 1-based; 0 when parsing a single line outside a file
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.LineNo > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.LineNo, e.Reason, e.Line)
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Line)
}

// MissingInputError reports that the CSV source does not exist.
type MissingInputError struct {
	Path string
	Err  error
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("dataset %s not found", e.Path)
}

func (e *MissingInputError) Unwrap() error {
	return e.Err
}

// ErrMemberNotFound is returned when an archive lacks the expected CSV member.
var ErrMemberNotFound = errors.New("csv member not found in archive")
