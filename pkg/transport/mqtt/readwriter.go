package mqtt

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
)

const packetQueueSize = 16

// ReadWriter carries packets over a pair of topics: it receives packets
// published to SubTopic and publishes packets to PubTopic.
// Packets arriving while the receive queue is full are dropped.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string
	QoS      byte

	lock     sync.Mutex
	sub      *Subscription
	packetCh chan []byte
	closed   bool
}

// NewPacketReadWriter creates the ReadWriter.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{Queue: q, packetCh: make(chan []byte, packetQueueSize)}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// Open subscribes SubTopic.
func (p *ReadWriter) Open(ctx context.Context) error {
	p.lock.Lock()
	if p.sub != nil || p.closed {
		p.lock.Unlock()
		return nil
	}
	p.sub = p.Queue.Sub(p.SubTopic, p.handleMsg)
	sub := p.sub
	p.lock.Unlock()
	return Wait(ctx, sub.Token)
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	pkt, ok := <-p.packetCh
	if !ok {
		return nil, io.EOF
	}
	return pkt, nil
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.PubWith(p.PubTopic, pkt, p.QoS, false)
	token.Wait()
	return token.Error()
}

// Close unsubscribes and ends pending reads.
func (p *ReadWriter) Close() error {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return nil
	}
	p.closed = true
	sub := p.sub
	close(p.packetCh)
	p.lock.Unlock()
	if sub != nil {
		return sub.Close()
	}
	return nil
}

// Run implements Runnable.
func (p *ReadWriter) Run(ctx context.Context) error {
	if err := p.Open(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	p.Close()
	return ctx.Err()
}

func (p *ReadWriter) handleMsg(topic string, payload []byte) {
	pkt := make([]byte, len(payload))
	copy(pkt, payload)
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.closed {
		return
	}
	select {
	case p.packetCh <- pkt:
	default:
		glog.Warningf("%s: receive queue full, packet dropped", topic)
	}
}

func timeUntil(t time.Time) time.Duration {
	if d := time.Until(t); d > 0 {
		return d
	}
	return 0
}
