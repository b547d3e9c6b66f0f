// Package document splits mode and rule documents into a header and a body,
// and extracts scalar fields, list sections and key/value sections from the
// header with a small line-oriented grammar.
//
// A document looks like:
//
//	name: Reviewer
//	groups:
//	- read
//	restrictions:
//	- fileRegex: \.md$
//	---
//	free-form body text
//
// Everything before the first "---" is the header. Everything after it is the
// body, including any further "---" tokens.
package document

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Delimiter separates the header from the body. It is matched anywhere in the
// document, not only on a line of its own.
const Delimiter = "---"

var (
	// ErrInvalidFormat is returned when a document has no delimiter.
	ErrInvalidFormat = errors.New("missing '---' separator")
	// ErrMissingField matches any *MissingFieldError through errors.Is.
	ErrMissingField = errors.New("missing required field")
)

// MissingFieldError reports a required header field that none of the
// candidate keys provided.
type MissingFieldError struct {
	Field      string
	Candidates []string
}

func (e *MissingFieldError) Error() string {
	quoted := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		quoted = append(quoted, fmt.Sprintf("'%s'", c))
	}
	return fmt.Sprintf("missing required field %s: none of %s present", e.Field, strings.Join(quoted, ", "))
}

// Is makes errors.Is(err, ErrMissingField) hold for every MissingFieldError.
func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// Document is a split document.
type Document struct {
	Header Header
	// Body is the raw text after the first delimiter, untrimmed.
	Body string
}

// Split divides content at the first occurrence of Delimiter.
func Split(content string) (*Document, error) {
	header, body, found := strings.Cut(content, Delimiter)
	if !found {
		return nil, errors.WithStack(ErrInvalidFormat)
	}

	return &Document{
		Header: NewHeader(header),
		Body:   body,
	}, nil
}
