// Package mixererr defines the error kinds the mixer core can raise and the
// latch/propagation helpers described by the error handling design: most
// construction failures latch the mixer into an errored state rather than
// returning per-call errors, so callers query Is/String instead of checking
// every return value.
package mixererr

import "github.com/pkg/errors"

// Kind identifies one of the mixer's known failure categories.
type Kind int

const (
	// DeviceOpenFailed means the sink backend could not be opened.
	DeviceOpenFailed Kind = iota
	// NoOutputDevice means no playback device was available on this host.
	NoOutputDevice
	// FormatUnsupported means the sink only offers a non-float32 format.
	FormatUnsupported
	// ChannelLayoutUnsupported means the sink cannot provide stereo output.
	ChannelLayoutUnsupported
	// StreamUnrecoverable means the sink failed in a way that cannot be
	// retried within the current callback.
	StreamUnrecoverable
	// AllocationFailed means a required buffer could not be sized.
	AllocationFailed
	// SourceLoadFailed means create_source_from_* could not open a decoder.
	SourceLoadFailed
	// DecoderError is a transient per-block decode failure; it never latches
	// the mixer, it only zero-fills the current block.
	DecoderError
)

func (k Kind) String() string {
	switch k {
	case DeviceOpenFailed:
		return "device open failed"
	case NoOutputDevice:
		return "no output device"
	case FormatUnsupported:
		return "output format unsupported"
	case ChannelLayoutUnsupported:
		return "channel layout unsupported"
	case StreamUnrecoverable:
		return "stream unrecoverable"
	case AllocationFailed:
		return "allocation failed"
	case SourceLoadFailed:
		return "source load failed"
	case DecoderError:
		return "decoder error"
	default:
		return "unknown mixer error"
	}
}

// Error is a Kind carrying an optional wrapped cause.
type Error struct {
	Kind  Kind
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error with no underlying cause.
func New(kind Kind) *Error {
	return &Error{Kind: kind}
}

// Wrap attaches cause to kind the way the pack's driver-facing code does
// (errors.Wrap from github.com/pkg/errors preserves a stack trace for the
// first occurrence, which matters here because construction errors are
// latched and reported much later than where they occurred).
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, cause: errors.Wrap(cause, message)}
}

// Is reports whether err is a mixererr.Error of the given kind.
func Is(err error, kind Kind) bool {
	me, ok := err.(*Error)
	return ok && me.Kind == kind
}
