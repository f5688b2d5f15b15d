package coaptest

import (
	"io"
	"sync"

	"github.com/robotalks/degu.go/pkg/coap"
)

// HandlerFunc answers a request with a response code and payload.
type HandlerFunc func(req *coap.Message) (coap.Code, []byte)

// Peer is a simulated CoAP server answering requests with piggybacked
// acknowledgements. A Peer without handlers never replies.
type Peer struct {
	Conn    io.ReadWriter
	Handler HandlerFunc
	// Raw, if set, takes precedence over Handler and returns the datagram
	// to send back as is, nil to stay silent.
	Raw func(req []byte) []byte

	lock     sync.Mutex
	received []*coap.Message
	raw      [][]byte
}

// NewPeer creates a Peer.
func NewPeer(conn io.ReadWriter, handler HandlerFunc) *Peer {
	return &Peer{Conn: conn, Handler: handler}
}

// Silent creates a Peer which records requests and never replies.
func Silent(conn io.ReadWriter) *Peer {
	return &Peer{Conn: conn}
}

// Serve answers requests until reading from Conn fails.
func (p *Peer) Serve() error {
	buf := make([]byte, 2048)
	for {
		n, err := p.Conn.Read(buf)
		if err != nil {
			return err
		}
		if err = p.handle(buf[:n]); err != nil {
			return err
		}
	}
}

func (p *Peer) handle(data []byte) error {
	pkt := make([]byte, len(data))
	copy(pkt, data)
	msg, _ := coap.Parse(pkt)
	p.lock.Lock()
	p.raw = append(p.raw, pkt)
	if msg != nil {
		p.received = append(p.received, msg)
	}
	p.lock.Unlock()

	var reply []byte
	switch {
	case p.Raw != nil:
		reply = p.Raw(pkt)
	case p.Handler != nil && msg != nil:
		code, payload := p.Handler(msg)
		resp := &coap.Message{
			Type:      coap.Acknowledgement,
			Code:      code,
			MessageID: msg.MessageID,
			Token:     msg.Token,
			Payload:   payload,
		}
		var err error
		if reply, err = resp.Encode(make([]byte, 2048)); err != nil {
			return err
		}
	}
	if reply == nil {
		return nil
	}
	_, err := p.Conn.Write(reply)
	return err
}

// Received returns the parsed requests received so far.
func (p *Peer) Received() []*coap.Message {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([]*coap.Message(nil), p.received...)
}

// ReceivedRaw returns the raw datagrams received so far.
func (p *Peer) ReceivedRaw() [][]byte {
	p.lock.Lock()
	defer p.lock.Unlock()
	return append([][]byte(nil), p.raw...)
}
