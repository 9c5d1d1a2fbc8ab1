package lookup

import (
	"errors"
	"fmt"
)

var (
	ErrNoCatalog              = errors.New("no catalog loaded")
	ErrMessageNotFound        = errors.New("message not found")
	ErrAmbiguousPluralRequest = errors.New("plural message requested without a count")
	ErrMissingSubstitution    = errors.New("missing substitution")
)

// Kind classifies a LookupError.
type Kind string

const (
	MessageNotFound        Kind = "message_not_found"
	AmbiguousPluralRequest Kind = "ambiguous_plural_request"
	MissingSubstitution    Kind = "missing_substitution"
)

// LookupError is a per-call failure. Callers usually fall back to the
// source text; see Service.TranslateOrSource.
type LookupError struct {
	Kind    Kind
	Context string
	Source  string
	Err     error
}

func (e *LookupError) Error() string {
	msg := fmt.Sprintf("lookup %q in context %q: %s", e.Source, e.Context, e.Kind)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

func (e *LookupError) Is(target error) bool {
	switch e.Kind {
	case MessageNotFound:
		return target == ErrMessageNotFound
	case AmbiguousPluralRequest:
		return target == ErrAmbiguousPluralRequest
	case MissingSubstitution:
		return target == ErrMissingSubstitution
	}
	return false
}
