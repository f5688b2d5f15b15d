// Package coaptest provides an in-memory datagram pipe and a simulated
// CoAP peer for tests.
package coaptest

import (
	"io"
	"sync"
	"time"
)

const queueSize = 16

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// Conn is one end of an in-memory datagram pipe.
// Datagrams written while the peer queue is full are dropped.
type Conn struct {
	in  chan []byte
	out chan []byte

	lock     sync.Mutex
	deadline time.Time
	changed  chan struct{}

	closed    chan struct{}
	closeOnce sync.Once
}

// Pipe creates two connected ends.
func Pipe() (*Conn, *Conn) {
	a2b, b2a := make(chan []byte, queueSize), make(chan []byte, queueSize)
	a := &Conn{in: b2a, out: a2b, changed: make(chan struct{}), closed: make(chan struct{})}
	b := &Conn{in: a2b, out: b2a, changed: make(chan struct{}), closed: make(chan struct{})}
	return a, b
}

// Write implements io.Writer, one call is one datagram.
func (c *Conn) Write(p []byte) (int, error) {
	select {
	case <-c.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	pkt := make([]byte, len(p))
	copy(pkt, p)
	select {
	case c.out <- pkt:
	default:
	}
	return len(p), nil
}

// Read implements io.Reader, one call receives one datagram which is
// truncated to len(p).
func (c *Conn) Read(p []byte) (int, error) {
	for {
		c.lock.Lock()
		deadline, changed := c.deadline, c.changed
		c.lock.Unlock()

		var expired <-chan time.Time
		if !deadline.IsZero() {
			d := time.Until(deadline)
			if d <= 0 {
				return 0, timeoutError{}
			}
			timer := time.NewTimer(d)
			defer timer.Stop()
			expired = timer.C
		}
		select {
		case pkt := <-c.in:
			return copy(p, pkt), nil
		case <-expired:
			return 0, timeoutError{}
		case <-changed:
		case <-c.closed:
			return 0, io.EOF
		}
	}
}

// SetReadDeadline sets the deadline for pending and future reads.
func (c *Conn) SetReadDeadline(t time.Time) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.deadline = t
	close(c.changed)
	c.changed = make(chan struct{})
	return nil
}

// Close implements io.Closer.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}
