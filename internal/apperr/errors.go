// Package apperr defines the error taxonomy shared by the storage packages.
//
// Every failure surfaced by the asset store, the codec, and the show
// repository carries a Kind. Callers branch on kinds with errors.Is against
// the sentinel values or with KindOf:
//
//	show, err := repo.Load(ctx, "Spring Revue")
//	if errors.Is(err, apperr.ErrNotFound) {
//	    // offer to create it
//	}
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is reported for errors that did not originate in this module.
	KindUnknown Kind = iota

	// KindNotFound means a show, document, or source asset does not exist.
	KindNotFound

	// KindUnsupportedFormat means an asset extension is not on the allow-list.
	KindUnsupportedFormat

	// KindMalformedDocument means a show document has missing or mistyped fields.
	KindMalformedDocument

	// KindInvalidData means a value violates a model invariant.
	KindInvalidData

	// KindIOFailure means the operating system refused a copy, write, read, or delete.
	KindIOFailure

	// KindResourceExhausted means unique-name probing ran past its bound.
	KindResourceExhausted

	// KindAlreadyExists means the target of a create-only operation is taken.
	KindAlreadyExists
)

// Sentinel errors, one per kind.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMalformedDocument = errors.New("malformed document")
	ErrInvalidData       = errors.New("invalid data")
	ErrIOFailure         = errors.New("i/o failure")
	ErrResourceExhausted = errors.New("resource exhausted")
	ErrAlreadyExists     = errors.New("already exists")
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindMalformedDocument:
		return "MalformedDocument"
	case KindInvalidData:
		return "InvalidData"
	case KindIOFailure:
		return "IOFailure"
	case KindResourceExhausted:
		return "ResourceExhausted"
	case KindAlreadyExists:
		return "AlreadyExists"
	default:
		return "Unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindUnsupportedFormat:
		return ErrUnsupportedFormat
	case KindMalformedDocument:
		return ErrMalformedDocument
	case KindInvalidData:
		return ErrInvalidData
	case KindIOFailure:
		return ErrIOFailure
	case KindResourceExhausted:
		return ErrResourceExhausted
	case KindAlreadyExists:
		return ErrAlreadyExists
	default:
		return nil
	}
}

// Error is a classified failure.
type Error struct {
	Kind Kind   // failure class
	Op   string // operation in progress, e.g. "copy asset"
	Path string // file or show the operation touched, may be empty
	Err  error  // underlying cause, may be nil
}

// Error returns the error message.
func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg = fmt.Sprintf("%s %s", msg, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", msg, e.Kind.sentinel())
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// New creates a classified error.
func New(kind Kind, op, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// NotFound creates a KindNotFound error.
func NotFound(op, path string, err error) error {
	return New(KindNotFound, op, path, err)
}

// UnsupportedFormat creates a KindUnsupportedFormat error.
func UnsupportedFormat(op, path string, err error) error {
	return New(KindUnsupportedFormat, op, path, err)
}

// Malformed creates a KindMalformedDocument error.
func Malformed(op, path string, err error) error {
	return New(KindMalformedDocument, op, path, err)
}

// Invalid creates a KindInvalidData error.
func Invalid(op string, err error) error {
	return New(KindInvalidData, op, "", err)
}

// IO creates a KindIOFailure error.
func IO(op, path string, err error) error {
	return New(KindIOFailure, op, path, err)
}

// Exhausted creates a KindResourceExhausted error.
func Exhausted(op, path string, err error) error {
	return New(KindResourceExhausted, op, path, err)
}

// Exists creates a KindAlreadyExists error.
func Exists(op, path string) error {
	return New(KindAlreadyExists, op, path, nil)
}

// KindOf returns the kind of the first classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
