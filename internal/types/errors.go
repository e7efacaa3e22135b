package types

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindConfiguration Kind = "configuration"
	KindValidation    Kind = "validation"
	KindResolution    Kind = "resolution"
	KindFetch         Kind = "fetch"
	KindExtraction    Kind = "extraction"
	KindTranscription Kind = "transcription"
	KindUnknown       Kind = "unknown"
)

// Error is the error type returned at every stage boundary.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Err.Error())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindFetch}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Err == nil && t.Kind == e.Kind
}

func newError(kind Kind, op string, err error) error {
	if err == nil {
		err = errors.New(string(kind) + " error")
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func ConfigurationError(op string, err error) error { return newError(KindConfiguration, op, err) }
func ValidationError(op string, err error) error    { return newError(KindValidation, op, err) }
func ResolutionError(op string, err error) error    { return newError(KindResolution, op, err) }
func FetchError(op string, err error) error         { return newError(KindFetch, op, err) }
func ExtractionError(op string, err error) error    { return newError(KindExtraction, op, err) }
func TranscriptionError(op string, err error) error { return newError(KindTranscription, op, err) }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
