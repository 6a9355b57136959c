package quote

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags an Error with the failure class it belongs to.
type Kind uint8

const (
	// KindEndOfInput is returned for a block without any quote text.
	KindEndOfInput Kind = iota + 1

	// KindIO wraps a failed filesystem operation.
	KindIO

	// KindSerialize is returned when quotes cannot be encoded.
	KindSerialize

	// KindDeserialize is returned when a cache artifact cannot be decoded.
	KindDeserialize

	// KindEmptyCollection is returned when picking from zero quotes.
	KindEmptyCollection
)

// Sentinel errors, one per Kind, for use with errors.Is.
var (
	ErrEndOfInput      = errors.New("unexpected end of input")
	ErrIO              = errors.New("i/o failure")
	ErrSerialize       = errors.New("cannot encode quotes")
	ErrDeserialize     = errors.New("cannot decode quotes")
	ErrEmptyCollection = errors.New("no quotes available")
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindEndOfInput:
		return "EndOfInput"
	case KindIO:
		return "IO"
	case KindSerialize:
		return "Serialize"
	case KindDeserialize:
		return "Deserialize"
	case KindEmptyCollection:
		return "EmptyCollection"
	default:
		return "Unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindEndOfInput:
		return ErrEndOfInput
	case KindIO:
		return ErrIO
	case KindSerialize:
		return ErrSerialize
	case KindDeserialize:
		return ErrDeserialize
	case KindEmptyCollection:
		return ErrEmptyCollection
	default:
		return nil
	}
}

// Error is the single failure type surfaced by parsing, scanning, the
// cache store and the selector.
type Error struct {
	Kind Kind
	// Op is the operation that failed: parse, scan, save, load, choose.
	Op string
	// Path is the file the failure relates to, if any.
	Path string
	// Block is the 1-based index of the offending block within Path.
	Block int
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Block > 0 {
		fmt.Fprintf(&b, " block %d", e.Block)
	}
	b.WriteString(": ")

	switch {
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	case e.Kind.sentinel() != nil:
		b.WriteString(e.Kind.sentinel().Error())
	default:
		b.WriteString("unknown error")
	}
	return b.String()
}

// Unwrap exposes both the sentinel for the error's kind and the
// underlying cause, so errors.Is(err, ErrIO) and
// errors.Is(err, fs.ErrNotExist) both hold for a missing cache file.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind of the first *Error in err's chain, or zero.
func KindOf(err error) Kind {
	var qe *Error
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return 0
}
