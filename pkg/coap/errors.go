package coap

import (
	"errors"
	"fmt"
)

var (
	// ErrBufferTooSmall indicates the message doesn't fit in the buffer.
	ErrBufferTooSmall = errors.New("buffer too small")
	// ErrBufferBusy indicates the static buffer is lent to another transaction.
	ErrBufferBusy = errors.New("buffer busy")
	// ErrOptionOrder indicates options are not appended in ascending order.
	ErrOptionOrder = errors.New("options out of order")
	// ErrPayloadStarted indicates options or marker are appended after payload marker.
	ErrPayloadStarted = errors.New("payload already started")
	// ErrNoPayloadMarker indicates payload is appended without a marker.
	ErrNoPayloadMarker = errors.New("payload marker missing")
	// ErrNotInitialized indicates the header is not written yet.
	ErrNotInitialized = errors.New("header not initialized")
	// ErrInvalidToken indicates an invalid token length.
	ErrInvalidToken = errors.New("invalid token length")
	// ErrTruncated indicates the message ends unexpectedly.
	ErrTruncated = errors.New("message truncated")
	// ErrInvalidVersion indicates an unsupported version.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrInvalidOption indicates a malformed option.
	ErrInvalidOption = errors.New("invalid option")
	// ErrEmptyPayload indicates a payload marker followed by nothing.
	ErrEmptyPayload = errors.New("payload marker without payload")
	// ErrEmptyDatagram indicates nothing is received.
	ErrEmptyDatagram = errors.New("empty datagram")
	// ErrShortWrite indicates the datagram is partially sent.
	ErrShortWrite = errors.New("short write")
	// ErrNotCancelable indicates a cancelable context is used with a
	// transport that supports neither read deadlines nor Close.
	ErrNotCancelable = errors.New("transport can't interrupt a pending read")
)

// ErrorKind classifies the failure of a transaction.
type ErrorKind int

// Error kinds.
const (
	KindAlloc ErrorKind = iota + 1
	KindEncode
	KindTransport
	KindTimeout
	KindParse
)

// String implements fmt.Stringer.
func (k ErrorKind) String() string {
	switch k {
	case KindAlloc:
		return "alloc"
	case KindEncode:
		return "encode"
	case KindTransport:
		return "transport"
	case KindTimeout:
		return "timeout"
	case KindParse:
		return "parse"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is the failure of one step of a transaction.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

// Error implements error.
func (e *Error) Error() string {
	return fmt.Sprintf("coap %s %s: %v", e.Kind, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind checks if err is an *Error of the kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// SentinelCode collapses a transaction result into a single code, 0 for
// any failure.
func SentinelCode(reply Reply, err error) Code {
	if err != nil {
		return Empty
	}
	return reply.Code
}
