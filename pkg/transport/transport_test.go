package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"github.com/robotalks/degu.go/pkg/coap"
)

type chanPackets struct {
	in  chan []byte
	out chan []byte
	err error
}

func newChanPackets() *chanPackets {
	return &chanPackets{in: make(chan []byte, 4), out: make(chan []byte, 4)}
}

func (c *chanPackets) ReadPacket() ([]byte, error) {
	pkt, ok := <-c.in
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

func (c *chanPackets) WritePacket(pkt []byte) error {
	if c.err != nil {
		return c.err
	}
	c.out <- pkt
	return nil
}

type closeCounter int

func (c *closeCounter) Close() error {
	*c++
	return nil
}

func TestStreamFraming(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf)
	require.NoError(t, s.WritePacket([]byte("abc")))
	require.NoError(t, s.WritePacket(nil))
	require.Equal(t, []byte{3, 0, 0, 0, 'a', 'b', 'c', 0, 0, 0, 0}, buf.Bytes())

	pkt, err := s.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), pkt)
	pkt, err = s.ReadPacket()
	require.NoError(t, err)
	require.Empty(t, pkt)
	_, err = s.ReadPacket()
	require.Equal(t, io.EOF, err)
}

func TestStreamFrameTooLarge(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0xff, 0xff, 0xff, 0x7f})
	_, err := NewStream(buf).ReadPacket()
	require.Equal(t, ErrFrameTooLarge, err)
	require.Equal(t, ErrFrameTooLarge, NewStream(buf).WritePacket(make([]byte, MaxFrameLen+1)))
}

func TestStreamTruncatedFrame(t *testing.T) {
	buf := bytes.NewBuffer([]byte{4, 0, 0, 0, 'a'})
	_, err := NewStream(buf).ReadPacket()
	require.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestDatagramsReadWrite(t *testing.T) {
	pkts := newChanPackets()
	conn := Datagrams(pkts, nil)
	n, err := conn.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, []byte("hello"), <-pkts.out)

	pkts.in <- []byte("world!")
	buf := make([]byte, 3)
	n, err = conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, []byte("wor"), buf)
}

func TestDatagramsDeadline(t *testing.T) {
	conn := Datagrams(newChanPackets(), nil)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(20*time.Millisecond)))
	start := time.Now()
	_, err := conn.Read(make([]byte, 8))
	require.True(t, os.IsTimeout(err))
	require.True(t, time.Since(start) >= 20*time.Millisecond)

	require.NoError(t, conn.SetReadDeadline(time.Unix(1, 0)))
	_, err = conn.Read(make([]byte, 8))
	require.Equal(t, ErrTimeout, err)
}

func TestDatagramsDeadlineInterruptsRead(t *testing.T) {
	conn := Datagrams(newChanPackets(), nil)
	errCh := make(chan error, 1)
	go func() {
		_, err := conn.Read(make([]byte, 8))
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, conn.SetReadDeadline(time.Unix(1, 0)))
	select {
	case err := <-errCh:
		require.Equal(t, ErrTimeout, err)
	case <-time.After(time.Second):
		t.Fatal("read not interrupted")
	}
}

func TestDatagramsReadAfterTimeout(t *testing.T) {
	pkts := newChanPackets()
	conn := Datagrams(pkts, nil)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Millisecond)))
	_, err := conn.Read(make([]byte, 8))
	require.Equal(t, ErrTimeout, err)

	require.NoError(t, conn.SetReadDeadline(time.Time{}))
	pkts.in <- []byte("late")
	buf := make([]byte, 8)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "late", string(buf[:n]))
}

func TestDatagramsStickyError(t *testing.T) {
	pkts := newChanPackets()
	close(pkts.in)
	conn := Datagrams(pkts, nil)
	_, err := conn.Read(make([]byte, 8))
	require.Equal(t, io.EOF, err)
	_, err = conn.Read(make([]byte, 8))
	require.Equal(t, io.EOF, err)
}

func TestDatagramsWriteError(t *testing.T) {
	pkts := newChanPackets()
	pkts.err = errors.New("down")
	_, err := Datagrams(pkts, nil).Write([]byte("x"))
	require.EqualError(t, err, "down")
}

func TestDatagramsClose(t *testing.T) {
	var closed closeCounter
	conn := Datagrams(newChanPackets(), &closed)
	errCh := make(chan error, 1)
	go func() {
		_, err := conn.Read(make([]byte, 8))
		errCh <- err
	}()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, conn.Close())
	require.NoError(t, conn.Close())
	require.Equal(t, closeCounter(1), closed)
	require.Equal(t, io.EOF, <-errCh)
	_, err := conn.Write([]byte("x"))
	require.Equal(t, io.ErrClosedPipe, err)
}

func TestSerialConfig(t *testing.T) {
	u, err := url.Parse("serial:///dev/ttyACM0?baud=9600")
	require.NoError(t, err)
	port, mode, err := SerialConfig(u)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyACM0", port)
	require.Equal(t, 9600, mode.BaudRate)
	require.Equal(t, 8, mode.DataBits)
	require.Equal(t, serial.NoParity, mode.Parity)

	u, _ = url.Parse("serial:COM3")
	port, mode, err = SerialConfig(u)
	require.NoError(t, err)
	require.Equal(t, "COM3", port)
	require.Equal(t, DefaultBaudRate, mode.BaudRate)

	u, _ = url.Parse("serial:///dev/ttyUSB0?baud=fast")
	_, _, err = SerialConfig(u)
	require.Error(t, err)

	u, _ = url.Parse("serial://")
	_, _, err = SerialConfig(u)
	require.Error(t, err)
}

func TestDialUnsupportedScheme(t *testing.T) {
	_, err := Dial(context.Background(), "gopher://localhost:70")
	require.True(t, errors.Is(err, ErrUnsupportedScheme))
}

func TestDialMQTTRequiresTopics(t *testing.T) {
	_, err := Dial(context.Background(), "mqtt://localhost:1883/degu/?sub=a")
	require.Error(t, err)
}

func serveCoAP(t *testing.T, pc net.PacketConn, code coap.Code, payload []byte) {
	buf := make([]byte, 2048)
	for {
		n, addr, err := pc.ReadFrom(buf)
		if err != nil {
			return
		}
		req, err := coap.Parse(buf[:n])
		if err != nil {
			continue
		}
		resp := &coap.Message{
			Type:      coap.Acknowledgement,
			Code:      code,
			MessageID: req.MessageID,
			Token:     req.Token,
			Payload:   payload,
		}
		data, err := resp.Encode(make([]byte, 2048))
		if err != nil {
			t.Error(err)
			return
		}
		pc.WriteTo(data, addr)
	}
}

func TestDialUDPExchange(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()
	go serveCoAP(t, pc, coap.Content, []byte(`{"state":1}`))

	conn, err := Dial(context.Background(), "udp://"+pc.LocalAddr().String())
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out := make([]byte, 64)
	reply, err := coap.NewEngine().Exchange(ctx, conn, &coap.Request{Method: coap.GET, Path: "shadow"}, out)
	require.NoError(t, err)
	require.Equal(t, coap.Content, reply.Code)
	require.Equal(t, `{"state":1}`, string(reply.Payload))
}

func TestDialUDPTimeout(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer pc.Close()

	conn, err := Dial(context.Background(), "udp://"+pc.LocalAddr().String())
	require.NoError(t, err)
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = coap.NewEngine().Exchange(ctx, conn, &coap.Request{Method: coap.POST, Path: "shadow", Payload: []byte("{}")}, nil)
	var cerr *coap.Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, coap.KindTimeout, cerr.Kind)
}

func TestDialTCPFramed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	go func() {
		c, err := ln.Accept()
		if err != nil {
			return
		}
		defer c.Close()
		s := NewStream(c)
		for {
			pkt, err := s.ReadPacket()
			if err != nil {
				return
			}
			if s.WritePacket(append([]byte("echo:"), pkt...)) != nil {
				return
			}
		}
	}()

	conn, err := Dial(context.Background(), "tcp://"+ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 32)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, "echo:ping", string(buf[:n]))
}
