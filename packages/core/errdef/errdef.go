// Package errdef defines the error kinds produced while rendering and
// executing apix manifests.
package errdef

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindTemplate
	KindParameter
	KindManifest
	KindIO
	KindHTTP
	KindSerialization
)

func (k Kind) String() string {
	switch k {
	case KindTemplate:
		return "template error"
	case KindParameter:
		return "parameter error"
	case KindManifest:
		return "manifest error"
	case KindIO:
		return "io error"
	case KindHTTP:
		return "http error"
	case KindSerialization:
		return "serialization error"
	default:
		return "error"
	}
}

// Error carries a kind, the subject it refers to (template name, parameter
// name, file path or URL) and the underlying cause.
type Error struct {
	Kind    Kind
	Subject string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Subject != "" && e.Err != nil:
		return fmt.Sprintf("%s in %q: %v", e.Kind, e.Subject, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Subject != "":
		return fmt.Sprintf("%s in %q", e.Kind, e.Subject)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and subject. A nil err yields a nil error.
func New(kind Kind, subject string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Subject: subject, Err: err}
}

// Newf builds an error of the given kind from a format string.
func Newf(kind Kind, subject, format string, args ...any) error {
	return &Error{Kind: kind, Subject: subject, Err: fmt.Errorf(format, args...)}
}

func Template(name string, err error) error      { return New(KindTemplate, name, err) }
func Parameter(name string, err error) error     { return New(KindParameter, name, err) }
func Manifest(subject string, err error) error   { return New(KindManifest, subject, err) }
func IO(path string, err error) error            { return New(KindIO, path, err) }
func HTTP(url string, err error) error           { return New(KindHTTP, url, err) }
func Serialization(what string, err error) error { return New(KindSerialization, what, err) }

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
