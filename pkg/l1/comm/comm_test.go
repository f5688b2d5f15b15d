package comm

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1"
	"github.com/robotalks/degu.go/pkg/l1/msgs"
	pb "github.com/robotalks/degu.go/pkg/proto/degu/v1"
)

type packetEnd struct {
	in     <-chan []byte
	out    chan<- []byte
	closed chan struct{}
	once   sync.Once
}

func packetPipe() (*packetEnd, *packetEnd) {
	a2b, b2a := make(chan []byte, 16), make(chan []byte, 16)
	return &packetEnd{in: b2a, out: a2b, closed: make(chan struct{})},
		&packetEnd{in: a2b, out: b2a, closed: make(chan struct{})}
}

func (e *packetEnd) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-e.in:
		return pkt, nil
	case <-e.closed:
		return nil, io.EOF
	}
}

func (e *packetEnd) WritePacket(pkt []byte) error {
	select {
	case e.out <- pkt:
		return nil
	case <-e.closed:
		return io.ErrClosedPipe
	}
}

func (e *packetEnd) Close() error {
	e.once.Do(func() { close(e.closed) })
	return nil
}

type commTestEnv struct {
	t      *testing.T
	cancel func()
	runner *fx.Runner
	reg    *Registrar
	conn   *ControllerConn
}

func newCommTestEnv(t *testing.T, handler l1.CommandHandler) *commTestEnv {
	devEnd, ctlEnd := packetPipe()
	ctx, cancel := context.WithCancel(context.Background())
	env := &commTestEnv{t: t, cancel: cancel, reg: &Registrar{}, conn: &ControllerConn{}}
	env.reg.Init(devEnd, handler)
	env.conn.Init(ctlEnd)
	env.runner = fx.NewRunnerWith(ctx).Go(env.reg, env.conn)
	return env
}

func (e *commTestEnv) stop() {
	e.cancel()
	require.NoError(e.t, e.runner.Wait())
}

func (e *commTestEnv) do(msg fx.Message) l1.Result {
	select {
	case res := <-e.conn.DoCommand(msg).ResultChan():
		return res
	case <-time.After(time.Second):
		e.t.Fatal("command timeout")
	}
	return l1.Result{}
}

func TestRegistrarReplies(t *testing.T) {
	errBusy := errors.New("busy")
	env := newCommTestEnv(t, l1.HandleCommandFunc(func(ctx context.Context, msg fx.Message) (fx.Message, error) {
		switch m := msg.(type) {
		case *msgs.ShadowGet:
			reply := &msgs.Shadow{}
			reply.Code = 0x45
			reply.Document = []byte("hello")
			return reply, nil
		case *msgs.Suspend:
			if m.Seconds > 10 {
				return nil, errBusy
			}
			return nil, nil
		}
		return nil, msgs.ErrUnsupportedCommand
	}))
	defer env.stop()

	res := env.do(&msgs.ShadowGet{})
	require.NoError(t, res.Err)
	shadow, ok := res.Msg.(*msgs.Shadow)
	require.True(t, ok)
	require.Equal(t, "hello", string(shadow.Document))

	suspend := &msgs.Suspend{}
	suspend.Seconds = 1
	res = env.do(suspend)
	require.NoError(t, res.Err)
	require.IsType(t, &msgs.CommandOK{}, res.Msg)

	suspend.Seconds = 20
	res = env.do(suspend)
	require.Error(t, res.Err)
	require.Equal(t, "busy", res.Err.Error())

	res = env.do(&msgs.CheckUpdate{})
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), res.Err.Error())
}

func TestRegistrarWithoutHandler(t *testing.T) {
	env := newCommTestEnv(t, nil)
	defer env.stop()
	res := env.do(&msgs.CheckUpdate{})
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), res.Err.Error())
}

func TestRegistrarEvents(t *testing.T) {
	env := newCommTestEnv(t, nil)
	defer env.stop()
	event := &msgs.PowerEvent{}
	event.Phase = pb.PowerEvent_RESUMED
	event.Seconds = 3
	require.NoError(t, env.reg.SendEvent(context.Background(), event))
	select {
	case msg := <-env.conn.Events():
		require.Equal(t, pb.PowerEvent_RESUMED, msg.(*msgs.PowerEvent).Phase)
		require.Equal(t, uint32(3), msg.(*msgs.PowerEvent).Seconds)
	case <-time.After(time.Second):
		t.Fatal("no event")
	}
	require.Error(t, env.reg.SendEvent(context.Background(), &msgs.CommandOK{}))
}

func TestPipeRepliesUnknownCommand(t *testing.T) {
	devEnd, ctlEnd := packetPipe()
	ctx, cancel := context.WithCancel(context.Background())
	runner := fx.NewRunnerWith(ctx).Go(NewPipe(devEnd))
	defer func() {
		cancel()
		runner.Wait()
	}()

	typed := &msgs.Typed{Typed: pb.Typed{TypeId: msgs.GroupCustom | 1, Sequence: 7}}
	pkt, err := typed.Encode()
	require.NoError(t, err)
	require.NoError(t, ctlEnd.WritePacket([]byte{0xff, 0xff}))
	require.NoError(t, ctlEnd.WritePacket(pkt))
	reply, err := ctlEnd.ReadPacket()
	require.NoError(t, err)
	decoded, err := msgs.DecodeTyped(reply)
	require.NoError(t, err)
	require.Equal(t, msgs.CommandErrTypeID, decoded.TypeId)
	require.Equal(t, uint32(7), decoded.Sequence)
}

func TestControllerConnExpiration(t *testing.T) {
	_, ctlEnd := packetPipe()
	conn := &ControllerConn{}
	conn.Init(ctlEnd)
	conn.Expiration = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	runner := fx.NewRunnerWith(ctx).Go(conn)
	defer func() {
		cancel()
		runner.Wait()
	}()
	select {
	case res := <-conn.DoCommand(&msgs.CheckUpdate{}).ResultChan():
		require.Equal(t, context.DeadlineExceeded, res.Err)
	case <-time.After(time.Second):
		t.Fatal("command not expired")
	}
}

func TestControllerConnSendFailure(t *testing.T) {
	_, ctlEnd := packetPipe()
	ctlEnd.Close()
	conn := &ControllerConn{}
	conn.Init(ctlEnd)
	res := <-conn.DoCommand(&msgs.CheckUpdate{}).ResultChan()
	require.Equal(t, io.ErrClosedPipe, res.Err)
}

func TestRegistrarMux(t *testing.T) {
	var mux RegistrarMux
	a, b := &Registrar{}, &Registrar{}
	devA, ctlA := packetPipe()
	devB, ctlB := packetPipe()
	a.Init(devA, nil)
	b.Init(devB, nil)
	mux.Add(a, b)
	require.Len(t, mux.Runnables(), 2)
	event := &msgs.PowerEvent{}
	require.NoError(t, mux.SendEvent(context.Background(), event))
	for _, end := range []*packetEnd{ctlA, ctlB} {
		pkt, err := end.ReadPacket()
		require.NoError(t, err)
		typed, err := msgs.DecodeTyped(pkt)
		require.NoError(t, err)
		require.Equal(t, msgs.PowerEventTypeID, typed.TypeId)
	}
}
