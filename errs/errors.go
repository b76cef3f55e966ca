// Package errs defines the error values returned by bitpack.
//
// Every error caused by the content of a transmission matches ErrMalformedInput
// through errors.Is, together with the more specific sentinel that describes
// the violation. Errors that carry a bit position are *MalformedInputError
// values; use OffsetOf to recover the position.
package errs

import (
	"errors"
	"fmt"
)

// ErrMalformedInput is the umbrella kind matched by every input error.
var ErrMalformedInput = errors.New("bitpack: malformed input")

// Bit cursor and parser errors.
var (
	ErrInvalidHexCharacter       = errors.New("invalid hex character")
	ErrUnexpectedEndOfStream     = errors.New("unexpected end of stream")
	ErrMalformedLengthDescriptor = errors.New("malformed length descriptor")
	ErrWindowTooWide             = errors.New("bit window wider than 64 bits")
	ErrLiteralOverflow           = errors.New("literal value exceeds 64 bits")
	ErrTrailingData              = errors.New("trailing data after top-level packet")
	ErrEmptyOperator             = errors.New("operator packet without sub-packets")
	ErrMaxDepthExceeded          = errors.New("packet nesting exceeds maximum depth")
	ErrDescriptorOverflow        = errors.New("length descriptor does not fit its field")
)

// Evaluator errors.
var (
	ErrEvaluatorShapeMismatch = errors.New("evaluator shape mismatch")
	ErrMissingLiteralValue    = errors.New("literal packet without value")
	ErrPayloadMismatch        = errors.New("payload does not match type id")
	ErrArithmeticOverflow     = errors.New("arithmetic overflow")
	ErrUnknownTypeID          = errors.New("unknown type id")
)

// Host format errors.
var (
	ErrInvalidCapture     = errors.New("bitpack: invalid capture")
	ErrChecksumMismatch   = errors.New("bitpack: capture checksum mismatch")
	ErrInvalidExpression  = errors.New("bitpack: invalid expression")
	ErrUnsupportedVersion = errors.New("bitpack: unsupported capture version")
)

// MalformedInputError reports an input violation detected at a bit offset.
type MalformedInputError struct {
	// Kind is one of the sentinel errors of this package.
	Kind error
	// Offset is the bit position, or -1 when unknown.
	Offset int
	// Detail is an optional human-readable explanation.
	Detail string
}

// NewMalformed creates a MalformedInputError of the given kind at offset.
func NewMalformed(kind error, offset int, format string, args ...any) *MalformedInputError {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}

	return &MalformedInputError{Kind: kind, Offset: offset, Detail: detail}
}

func (e *MalformedInputError) Error() string {
	msg := "bitpack: " + e.Kind.Error()
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s at bit %d", msg, e.Offset)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}

	return msg
}

// Unwrap exposes both the specific kind and ErrMalformedInput.
func (e *MalformedInputError) Unwrap() []error {
	return []error{e.Kind, ErrMalformedInput}
}

// OffsetOf returns the bit offset carried by err, if any.
func OffsetOf(err error) (int, bool) {
	var mErr *MalformedInputError
	if errors.As(err, &mErr) && mErr.Offset >= 0 {
		return mErr.Offset, true
	}

	return 0, false
}

// ShapeError reports an operator packet whose child count does not fit its type.
type ShapeError struct {
	TypeID     uint8
	ChildCount int
	// Want describes the accepted child count, e.g. "exactly 2".
	Want string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("bitpack: %s: type %d has %d sub-packets, want %s",
		ErrEvaluatorShapeMismatch, e.TypeID, e.ChildCount, e.Want)
}

func (e *ShapeError) Unwrap() []error {
	return []error{ErrEvaluatorShapeMismatch, ErrMalformedInput}
}
