package coap

import (
	"bytes"
	"context"
	"io"
	"os"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/degu.go/pkg/framework"
)

// Request is the request of one transaction.
type Request struct {
	Method Code
	Path   string
	// Payload is only sent with POST and PUT.
	Payload []byte
}

// Reply is the reply of one transaction.
type Reply struct {
	Code Code
	// Payload is only filled for GET, it references the caller's buffer.
	Payload []byte
}

// Engine performs one transaction at a time over a datagram transport.
type Engine struct {
	// MaxMessageLen bounds both request and reply, MaxMessageLen if 0.
	MaxMessageLen int
	Allocator     Allocator
	IDs           IDSource
}

var defaultIDs = NewRandomIDs()

// NewEngine creates an Engine with heap buffers and random IDs.
func NewEngine() *Engine {
	return &Engine{
		MaxMessageLen: MaxMessageLen,
		Allocator:     HeapAllocator{},
		IDs:           NewRandomIDs(),
	}
}

type readDeadliner interface {
	SetReadDeadline(time.Time) error
}

// Exchange sends req as one datagram over conn and waits for exactly one
// reply datagram. For GET, the reply payload is copied into out, bounded by
// len(out). The receive is bounded only by ctx, without a deadline or
// cancellation it blocks until the peer replies.
//
// Cancellation interrupts the pending read by moving the read deadline of
// conn into the past, or by closing conn if no deadline is supported. A
// cancelable ctx is rejected up front when conn supports neither.
//
// Replies carrying a token other than the one of this request are late
// replies to earlier transactions, they are dropped and the receive goes on.
func (e *Engine) Exchange(ctx context.Context, conn io.ReadWriter, req *Request, out []byte) (reply Reply, err error) {
	if ctx.Done() != nil && !interruptible(conn) {
		return reply, failed(KindTransport, "receive", ErrNotCancelable)
	}
	size := e.MaxMessageLen
	if size <= 0 {
		size = MaxMessageLen
	}
	alloc := e.Allocator
	if alloc == nil {
		alloc = HeapAllocator{}
	}
	ids := e.IDs
	if ids == nil {
		ids = defaultIDs
	}

	buf, err := alloc.Alloc(size)
	if err != nil {
		return reply, failed(KindAlloc, "alloc", err)
	}
	defer alloc.Free(buf)

	b := NewBuilder(buf)
	token, msgID := ids.NextToken(), ids.NextMessageID()
	if err = b.Init(Header{Type: Confirmable, Code: req.Method, MessageID: msgID}, token[:]); err != nil {
		return reply, failed(KindEncode, "init", err)
	}
	if err = b.AppendOption(URIPath, []byte(req.Path)); err != nil {
		return reply, failed(KindEncode, "option", err)
	}
	if req.Method == POST || req.Method == PUT {
		if err = b.AppendPayloadMarker(); err != nil {
			return reply, failed(KindEncode, "marker", err)
		}
		if err = b.AppendPayload(req.Payload); err != nil {
			return reply, failed(KindEncode, "payload", err)
		}
	}

	glog.V(2).Infof("SND %s %q mid=%d len=%d", req.Method, req.Path, msgID, b.Len())
	n, err := conn.Write(b.Bytes())
	if err == nil && n != b.Len() {
		err = ErrShortWrite
	}
	if err != nil {
		return reply, failed(KindTransport, "send", err)
	}

	var msg *Message
	for {
		if n, err = receive(ctx, conn, buf[:cap(buf)]); err != nil {
			return reply, err
		}
		if msg, err = Parse(buf[:n]); err != nil {
			return reply, failed(KindParse, "parse", err)
		}
		if bytes.Equal(msg.Token, token[:]) {
			break
		}
		glog.Warningf("coap: drop reply mid=%d with token %x, want %x", msg.MessageID, msg.Token, token[:])
	}
	glog.V(2).Infof("RCV %s mid=%d len=%d", msg.Code, msg.MessageID, n)

	if req.Method == GET {
		reply.Payload = out[:copy(out, msg.Payload)]
	}
	reply.Code = msg.Code
	return reply, nil
}

func receive(ctx context.Context, conn io.Reader, buf []byte) (n int, err error) {
	if ctx.Done() == nil {
		n, err = conn.Read(buf)
	} else {
		if d, ok := conn.(readDeadliner); ok {
			// zero when ctx has no deadline, which also clears a stale one.
			deadline, _ := ctx.Deadline()
			if err = d.SetReadDeadline(deadline); err != nil {
				return 0, failed(KindTransport, "receive", err)
			}
			defer func() {
				if derr := d.SetReadDeadline(time.Time{}); derr != nil {
					glog.Warningf("coap: clear read deadline failed: %v", derr)
				}
			}()
		}
		err = fx.RunWithContextCancel(ctx, func() { interrupt(conn) }, func() (rerr error) {
			n, rerr = conn.Read(buf)
			return
		})
	}
	switch {
	case err != nil && ctx.Err() != nil:
		return 0, failed(KindTimeout, "receive", ctx.Err())
	case err != nil && os.IsTimeout(err):
		return 0, failed(KindTimeout, "receive", err)
	case err != nil:
		return 0, failed(KindTransport, "receive", err)
	case n <= 0:
		return 0, failed(KindTransport, "receive", ErrEmptyDatagram)
	}
	return n, nil
}

func interruptible(conn io.Reader) bool {
	switch conn.(type) {
	case readDeadliner, io.Closer:
		return true
	}
	return false
}

func interrupt(conn io.Reader) {
	if d, ok := conn.(readDeadliner); ok {
		err := d.SetReadDeadline(time.Unix(1, 0))
		if err == nil {
			return
		}
		glog.Warningf("coap: interrupt read failed: %v", err)
	}
	if closer, ok := conn.(io.Closer); ok {
		closer.Close()
	}
}

func failed(kind ErrorKind, op string, err error) error {
	glog.Warningf("coap: %s failed: %v", op, err)
	return &Error{Kind: kind, Op: op, Err: err}
}
