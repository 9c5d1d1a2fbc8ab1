package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedMarkup      = errors.New("malformed markup")
	ErrUnsupportedVersion   = errors.New("unsupported TS version")
	ErrMissingRequiredField = errors.New("missing required field")
)

// ParseKind classifies a ParseError.
type ParseKind string

const (
	MalformedMarkup      ParseKind = "malformed_markup"
	UnsupportedVersion   ParseKind = "unsupported_version"
	MissingRequiredField ParseKind = "missing_required_field"
)

// ParseError aborts Load; no partial catalog is returned with it.
type ParseError struct {
	Kind   ParseKind
	Line   int
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString("parse catalog")
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	b.WriteString(": ")
	b.WriteString(string(e.Kind))
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	switch e.Kind {
	case MalformedMarkup:
		return target == ErrMalformedMarkup
	case UnsupportedVersion:
		return target == ErrUnsupportedVersion
	case MissingRequiredField:
		return target == ErrMissingRequiredField
	}
	return false
}

// ValidationKind names one structural rule.
type ValidationKind string

const (
	EmptySource           ValidationKind = "empty_source"
	EmptyContextName      ValidationKind = "empty_context_name"
	DuplicateSource       ValidationKind = "duplicate_source"
	PluralFormCardinality ValidationKind = "plural_form_cardinality"
	PayloadShape          ValidationKind = "payload_shape"
)

// ValidationError is one structural defect. Source is empty when the
// message has no source text; Index then identifies it within Context.
type ValidationError struct {
	Context string         `json:"context"`
	Source  string         `json:"source,omitempty"`
	Index   int            `json:"index"`
	Kind    ValidationKind `json:"kind"`
	Detail  string         `json:"detail,omitempty"`
}

func (e ValidationError) Error() string {
	subject := fmt.Sprintf("%q", e.Source)
	if e.Source == "" {
		subject = fmt.Sprintf("#%d", e.Index)
	}
	if e.Detail != "" {
		return fmt.Sprintf("context %q message %s: %s: %s", e.Context, subject, e.Kind, e.Detail)
	}
	return fmt.Sprintf("context %q message %s: %s", e.Context, subject, e.Kind)
}

// ValidationErrors aggregates every defect found by Validate.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	switch len(errs) {
	case 0:
		return "no validation errors"
	case 1:
		return errs[0].Error()
	}
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, err.Error())
	}
	return fmt.Sprintf("%d validation errors: %s", len(errs), strings.Join(parts, "; "))
}

// Err returns nil for an empty list so callers can write `if err := errs.Err(); err != nil`.
func (errs ValidationErrors) Err() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Count returns how many errors are of kind.
func (errs ValidationErrors) Count(kind ValidationKind) int {
	n := 0
	for _, err := range errs {
		if err.Kind == kind {
			n++
		}
	}
	return n
}
