package comm

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1/msgs"
)

// Pipe is a bi-directional pipe for typed messages.
type Pipe struct {
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	sendLock sync.Mutex
}

// NewPipe creates a Pipe with given PacketReadWriter.
func NewPipe(rw PacketReadWriter) *Pipe {
	return &Pipe{ReadWriter: rw}
}

// SendCommandMsg sends a command or a reply with the sequence.
func (p *Pipe) SendCommandMsg(msg fx.Message, seq uint32) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsCommand() {
		return fmt.Errorf("%s is not a command", msgs.Name(msg))
	}
	typed.Sequence = seq
	return p.SendTyped(typed)
}

// SendEventMsg sends a message which must be an event.
func (p *Pipe) SendEventMsg(msg fx.Message) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsEvent() {
		return fmt.Errorf("%s is not an event", msgs.Name(msg))
	}
	return p.SendTyped(typed)
}

// SendTyped sends a Typed message.
func (p *Pipe) SendTyped(typed *msgs.Typed) error {
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	p.sendLock.Lock()
	defer p.sendLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run implements Runnable. Messages are handled in the order they arrive.
// The ReadWriter is closed when Run returns.
func (p *Pipe) Run(ctx context.Context) error {
	return fx.RunWithContextCloser(ctx, p, func() error {
		for {
			pkt, err := p.ReadWriter.ReadPacket()
			if err != nil {
				return err
			}
			typed, err := msgs.DecodeTyped(pkt)
			if err != nil {
				glog.Warningf("drop malformed packet: %v", err)
				continue
			}
			msg, err := typed.Decode()
			if err != nil {
				// A command always gets a reply.
				if typed.IsCommand() && !typed.IsReply() {
					if err = p.SendCommandMsg(msgs.NewCommandErr(err), typed.Sequence); err != nil {
						return err
					}
				}
				continue
			}
			if h := p.Handler; h != nil {
				if err = h.HandleTypedMsg(ctx, msg, typed); err != nil {
					return err
				}
			}
		}
	})
}

// Close implements io.Closer.
func (p *Pipe) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
