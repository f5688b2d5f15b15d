package transport

import "errors"

var (
	// ErrTimeout is returned by reads after the deadline.
	ErrTimeout error = timeoutError{}
	// ErrUnsupportedScheme indicates the URL scheme has no transport.
	ErrUnsupportedScheme = errors.New("unsupported transport scheme")
	// ErrFrameTooLarge indicates a length prefix above MaxFrameLen.
	ErrFrameTooLarge = errors.New("frame too large")
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }
