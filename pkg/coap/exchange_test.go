package coap_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/degu.go/pkg/coap"
	"github.com/robotalks/degu.go/pkg/coap/coaptest"
)

var (
	testToken = coap.Token{0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17}
	errTest   = errors.New("test")
)

type fixedIDs struct{}

func (fixedIDs) NextToken() coap.Token  { return testToken }
func (fixedIDs) NextMessageID() uint16 { return 0x0102 }

type countingAllocator struct {
	err    error
	allocs int
	frees  int
}

func (a *countingAllocator) Alloc(size int) ([]byte, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.allocs++
	return make([]byte, size), nil
}

func (a *countingAllocator) Free([]byte) {
	a.frees++
}

type scriptedConn struct {
	writeErr error
	short    bool
	readErr  error
	written  [][]byte
}

func (c *scriptedConn) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.written = append(c.written, append([]byte(nil), p...))
	if c.short {
		return len(p) - 1, nil
	}
	return len(p), nil
}

func (c *scriptedConn) Read([]byte) (int, error) {
	return 0, c.readErr
}

func newEngine(alloc coap.Allocator) *coap.Engine {
	e := coap.NewEngine()
	e.IDs = fixedIDs{}
	if alloc != nil {
		e.Allocator = alloc
	}
	return e
}

func servePeer(handler coaptest.HandlerFunc) (*coaptest.Conn, *coaptest.Peer, func()) {
	client, server := coaptest.Pipe()
	peer := coaptest.NewPeer(server, handler)
	go peer.Serve()
	return client, peer, func() { server.Close() }
}

func requireKind(t *testing.T, err error, kind coap.ErrorKind, op string) {
	var cerr *coap.Error
	require.True(t, errors.As(err, &cerr), "%v", err)
	require.Equal(t, kind, cerr.Kind)
	require.Equal(t, op, cerr.Op)
	require.True(t, coap.IsKind(err, kind))
}

func TestExchangePost(t *testing.T) {
	conn, peer, stop := servePeer(func(req *coap.Message) (coap.Code, []byte) {
		return coap.Created, []byte("ignored")
	})
	defer stop()
	alloc := &countingAllocator{}
	reply, err := newEngine(alloc).Exchange(context.Background(), conn, &coap.Request{
		Method:  coap.POST,
		Path:    "thing",
		Payload: []byte(`{"x":1}`),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, coap.Created, reply.Code)
	require.Nil(t, reply.Payload)
	require.Equal(t, 1, alloc.allocs)
	require.Equal(t, 1, alloc.frees)

	received := peer.Received()
	require.Len(t, received, 1)
	req := received[0]
	require.Equal(t, coap.Confirmable, req.Type)
	require.Equal(t, coap.POST, req.Code)
	require.Equal(t, uint16(0x0102), req.MessageID)
	require.Equal(t, testToken[:], req.Token)
	require.Equal(t, "thing", req.Path())
	require.Equal(t, `{"x":1}`, string(req.Payload))
	require.Len(t, peer.ReceivedRaw()[0], 4+coap.TokenLen+1+5+1+7)
}

func TestExchangeGet(t *testing.T) {
	conn, peer, stop := servePeer(func(req *coap.Message) (coap.Code, []byte) {
		return coap.Content, []byte("hello")
	})
	defer stop()
	out := make([]byte, 64)
	reply, err := newEngine(nil).Exchange(context.Background(), conn, &coap.Request{
		Method:  coap.GET,
		Path:    "shadow",
		Payload: []byte("not sent"),
	}, out)
	require.NoError(t, err)
	require.Equal(t, coap.Content, reply.Code)
	require.Equal(t, "hello", string(reply.Payload))
	require.Len(t, reply.Payload, 5)
	require.Equal(t, "hello", string(out[:5]))

	raw := peer.ReceivedRaw()[0]
	require.Len(t, raw, 4+coap.TokenLen+1+6)
	require.Nil(t, peer.Received()[0].Payload)
	require.Equal(t, -1, bytes.IndexByte(raw, 0xff))
}

func TestExchangeGetTruncatesToBuffer(t *testing.T) {
	conn, _, stop := servePeer(func(req *coap.Message) (coap.Code, []byte) {
		return coap.Content, []byte("hello")
	})
	defer stop()
	reply, err := newEngine(nil).Exchange(context.Background(), conn, &coap.Request{Method: coap.GET, Path: "a"}, make([]byte, 3))
	require.NoError(t, err)
	require.Equal(t, "hel", string(reply.Payload))
}

func TestExchangeBinaryPayload(t *testing.T) {
	payload := []byte{0, 1, 0, 0xff, 0}
	conn, _, stop := servePeer(func(req *coap.Message) (coap.Code, []byte) {
		return coap.Content, payload
	})
	defer stop()
	reply, err := newEngine(nil).Exchange(context.Background(), conn, &coap.Request{Method: coap.GET, Path: "bin"}, make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, payload, reply.Payload)
}

func TestExchangeStaticAllocator(t *testing.T) {
	conn, _, stop := servePeer(func(req *coap.Message) (coap.Code, []byte) {
		return coap.Changed, nil
	})
	defer stop()
	alloc := coap.NewStaticAllocator(coap.MaxMessageLen)
	e := newEngine(alloc)
	for i := 0; i < 3; i++ {
		reply, err := e.Exchange(context.Background(), conn, &coap.Request{Method: coap.PUT, Path: "p", Payload: []byte("v")}, nil)
		require.NoError(t, err)
		require.Equal(t, coap.Changed, reply.Code)
		require.False(t, alloc.InUse())
	}
}

func TestExchangeAllocFailure(t *testing.T) {
	alloc := &countingAllocator{err: errTest}
	conn := &scriptedConn{}
	_, err := newEngine(alloc).Exchange(context.Background(), conn, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindAlloc, "alloc")
	require.True(t, errors.Is(err, errTest))
	require.Equal(t, 0, alloc.frees)
	require.Empty(t, conn.written)
}

func TestExchangeEncodeFailures(t *testing.T) {
	headerLen := 4 + coap.TokenLen
	cases := []struct {
		op     string
		maxLen int
	}{
		{op: "init", maxLen: headerLen - 1},
		{op: "option", maxLen: headerLen + 5},
		{op: "marker", maxLen: headerLen + 6},
		{op: "payload", maxLen: headerLen + 7},
	}
	for _, c := range cases {
		alloc := &countingAllocator{}
		conn := &scriptedConn{}
		e := newEngine(alloc)
		e.MaxMessageLen = c.maxLen
		_, err := e.Exchange(context.Background(), conn, &coap.Request{
			Method:  coap.POST,
			Path:    "thing",
			Payload: []byte("xy"),
		}, nil)
		requireKind(t, err, coap.KindEncode, c.op)
		require.True(t, errors.Is(err, coap.ErrBufferTooSmall), c.op)
		require.Empty(t, conn.written, c.op)
		require.Equal(t, 1, alloc.frees, c.op)
	}
}

func TestExchangeSendFailure(t *testing.T) {
	alloc := &countingAllocator{}
	_, err := newEngine(alloc).Exchange(context.Background(), &scriptedConn{writeErr: errTest}, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindTransport, "send")
	require.True(t, errors.Is(err, errTest))
	require.Equal(t, 1, alloc.frees)

	_, err = newEngine(nil).Exchange(context.Background(), &scriptedConn{short: true}, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindTransport, "send")
	require.True(t, errors.Is(err, coap.ErrShortWrite))
}

func TestExchangeReceiveFailure(t *testing.T) {
	alloc := &countingAllocator{}
	conn := &scriptedConn{readErr: io.ErrUnexpectedEOF}
	_, err := newEngine(alloc).Exchange(context.Background(), conn, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindTransport, "receive")
	require.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	require.Len(t, conn.written, 1)
	require.Equal(t, 1, alloc.frees)
}

func TestExchangeEmptyReply(t *testing.T) {
	client, server := coaptest.Pipe()
	defer server.Close()
	peer := coaptest.NewPeer(server, nil)
	peer.Raw = func([]byte) []byte { return []byte{} }
	go peer.Serve()
	_, err := newEngine(nil).Exchange(context.Background(), client, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindTransport, "receive")
	require.True(t, errors.Is(err, coap.ErrEmptyDatagram))
}

func TestExchangeParseFailure(t *testing.T) {
	client, server := coaptest.Pipe()
	defer server.Close()
	peer := coaptest.NewPeer(server, nil)
	peer.Raw = func([]byte) []byte { return []byte{0x80, 0x45, 0, 1} }
	go peer.Serve()
	alloc := &countingAllocator{}
	_, err := newEngine(alloc).Exchange(context.Background(), client, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindParse, "parse")
	require.True(t, errors.Is(err, coap.ErrInvalidVersion))
	require.Equal(t, 1, alloc.frees)
}

func TestExchangeTimeout(t *testing.T) {
	conn, _, stop := servePeer(nil)
	defer stop()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := newEngine(nil).Exchange(ctx, conn, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindTimeout, "receive")
}

func TestExchangeCancelClosesConn(t *testing.T) {
	client, server := coaptest.Pipe()
	defer server.Close()
	conn := struct{ io.ReadWriteCloser }{client}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	_, err := newEngine(nil).Exchange(ctx, conn, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindTimeout, "receive")
	_, err = client.Write([]byte{0})
	require.Equal(t, io.ErrClosedPipe, err)
}

func TestExchangeAfterTimeoutReusesConn(t *testing.T) {
	client, server := coaptest.Pipe()
	defer server.Close()
	e := newEngine(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := e.Exchange(ctx, client, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindTimeout, "receive")

	buf := make([]byte, 64)
	n, err := server.Read(buf)
	require.NoError(t, err)
	require.NotZero(t, n)
	go coaptest.NewPeer(server, func(*coap.Message) (coap.Code, []byte) {
		return coap.Valid, nil
	}).Serve()
	reply, err := e.Exchange(context.Background(), client, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	require.NoError(t, err)
	require.Equal(t, coap.Valid, reply.Code)
}

func TestExchangeAfterCancelReusesConn(t *testing.T) {
	client, server := coaptest.Pipe()
	defer server.Close()
	e := newEngine(nil)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	_, err := e.Exchange(ctx, client, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindTimeout, "receive")
	require.True(t, errors.Is(err, context.Canceled))

	buf := make([]byte, 64)
	n, err := server.Read(buf)
	require.NoError(t, err)
	require.NotZero(t, n)
	go coaptest.NewPeer(server, func(*coap.Message) (coap.Code, []byte) {
		return coap.Valid, nil
	}).Serve()
	reply, err := e.Exchange(context.Background(), client, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	require.NoError(t, err)
	require.Equal(t, coap.Valid, reply.Code)
}

func TestExchangeDropsLateReply(t *testing.T) {
	conn, _, stop := servePeer(func(req *coap.Message) (coap.Code, []byte) {
		time.Sleep(30 * time.Millisecond)
		return coap.Content, []byte(req.Path())
	})
	defer stop()
	e := coap.NewEngine()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := e.Exchange(ctx, conn, &coap.Request{Method: coap.GET, Path: "first"}, make([]byte, 16))
	requireKind(t, err, coap.KindTimeout, "receive")

	reply, err := e.Exchange(context.Background(), conn, &coap.Request{Method: coap.GET, Path: "second"}, make([]byte, 16))
	require.NoError(t, err)
	require.Equal(t, coap.Content, reply.Code)
	require.Equal(t, "second", string(reply.Payload))
}

func TestExchangeWithoutDeadlineBlocks(t *testing.T) {
	client, server := coaptest.Pipe()
	defer server.Close()
	peer := coaptest.Silent(server)
	go peer.Serve()

	done := make(chan error, 1)
	go func() {
		_, err := newEngine(nil).Exchange(context.Background(), client, &coap.Request{Method: coap.GET, Path: "a"}, nil)
		done <- err
	}()
	select {
	case err := <-done:
		t.Fatalf("exchange returned without reply: %v", err)
	case <-time.After(50 * time.Millisecond):
	}
	require.Len(t, peer.Received(), 1)

	client.Close()
	select {
	case err := <-done:
		requireKind(t, err, coap.KindTransport, "receive")
		require.True(t, errors.Is(err, io.EOF))
	case <-time.After(time.Second):
		t.Fatal("exchange not released by close")
	}
}

func TestExchangeRejectsUninterruptibleConn(t *testing.T) {
	alloc := &countingAllocator{}
	conn := &scriptedConn{}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err := newEngine(alloc).Exchange(ctx, conn, &coap.Request{Method: coap.GET, Path: "a"}, nil)
	requireKind(t, err, coap.KindTransport, "receive")
	require.True(t, errors.Is(err, coap.ErrNotCancelable))
	require.Empty(t, conn.written)
	require.Zero(t, alloc.allocs)
}
