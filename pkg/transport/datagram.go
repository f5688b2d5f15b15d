package transport

import (
	"io"
	"sync"
	"time"
)

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

type packet struct {
	data []byte
	err  error
}

// PacketConn adapts a PacketReadWriter to a Conn with read deadlines.
type PacketConn struct {
	rw     PacketReadWriter
	closer io.Closer

	startOnce sync.Once
	packetCh  chan packet

	lock     sync.Mutex
	deadline time.Time
	changed  chan struct{}
	err      error

	closed    chan struct{}
	closeOnce sync.Once
}

// Datagrams creates a PacketConn over rw, closer is closed with the conn.
func Datagrams(rw PacketReadWriter, closer io.Closer) *PacketConn {
	return &PacketConn{
		rw:       rw,
		closer:   closer,
		packetCh: make(chan packet, 1),
		changed:  make(chan struct{}),
		closed:   make(chan struct{}),
	}
}

func (c *PacketConn) receive() {
	for {
		data, err := c.rw.ReadPacket()
		select {
		case c.packetCh <- packet{data: data, err: err}:
		case <-c.closed:
			return
		}
		if err != nil {
			return
		}
	}
}

// Read implements io.Reader.
func (c *PacketConn) Read(p []byte) (int, error) {
	c.startOnce.Do(func() { go c.receive() })
	for {
		c.lock.Lock()
		deadline, changed, err := c.deadline, c.changed, c.err
		c.lock.Unlock()
		if err != nil {
			return 0, err
		}

		var timer *time.Timer
		var expired <-chan time.Time
		if !deadline.IsZero() {
			d := time.Until(deadline)
			if d <= 0 {
				return 0, ErrTimeout
			}
			timer = time.NewTimer(d)
			expired = timer.C
		}
		n, done, err := c.wait(p, expired, changed)
		if timer != nil {
			timer.Stop()
		}
		if done {
			return n, err
		}
	}
}

func (c *PacketConn) wait(p []byte, expired <-chan time.Time, changed <-chan struct{}) (int, bool, error) {
	select {
	case pkt := <-c.packetCh:
		if pkt.err != nil {
			c.lock.Lock()
			c.err = pkt.err
			c.lock.Unlock()
			return 0, true, pkt.err
		}
		return copy(p, pkt.data), true, nil
	case <-expired:
		return 0, true, ErrTimeout
	case <-changed:
		return 0, false, nil
	case <-c.closed:
		return 0, true, io.EOF
	}
}

// Write implements io.Writer.
func (c *PacketConn) Write(p []byte) (int, error) {
	select {
	case <-c.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	if err := c.rw.WritePacket(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// SetReadDeadline sets the deadline for pending and future reads.
func (c *PacketConn) SetReadDeadline(t time.Time) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.deadline = t
	close(c.changed)
	c.changed = make(chan struct{})
	return nil
}

// Close implements io.Closer.
func (c *PacketConn) Close() (err error) {
	c.closeOnce.Do(func() {
		close(c.closed)
		if c.closer != nil {
			err = c.closer.Close()
		}
	})
	return
}
