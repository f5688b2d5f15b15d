package comm

import (
	"context"

	"github.com/golang/glog"

	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1"
	"github.com/robotalks/degu.go/pkg/l1/msgs"
)

// Registrar serves commands arriving on a Pipe with a CommandHandler.
type Registrar struct {
	pipe    Pipe
	handler l1.CommandHandler
}

// Init initializes the Registrar.
func (r *Registrar) Init(rw PacketReadWriter, handler l1.CommandHandler) {
	r.handler = handler
	r.pipe.ReadWriter = rw
	r.pipe.Handler = msgs.HandleTypedMsgFunc(r.handleTypedMsg)
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.pipe.SendEventMsg(msg)
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	return r.pipe.Run(ctx)
}

func (r *Registrar) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if !typed.IsCommand() || typed.IsReply() {
		glog.V(3).Infof("ignore %s", msgs.Name(msg))
		return nil
	}
	var reply fx.Message = msgs.NewCommandErr(msgs.ErrUnsupportedCommand)
	if r.handler != nil {
		res, err := r.handler.HandleCommand(ctx, msg)
		switch {
		case err != nil:
			glog.Warningf("command %s failed: %v", msgs.Name(msg), err)
			reply = msgs.NewCommandErr(err)
		case res != nil:
			reply = res
		default:
			reply = msgs.NewCommandOK()
		}
	}
	return r.pipe.SendCommandMsg(reply, typed.Sequence)
}

// RegistrarMux forwards events to multiple Registrars.
type RegistrarMux struct {
	Registrars []l1.Registrar
}

// SendEvent implements l1.Registrar.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// Add adds more registrars.
func (r *RegistrarMux) Add(regs ...l1.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// Runnables returns the registrars needing to run.
func (r *RegistrarMux) Runnables() []fx.Runnable {
	var runnables []fx.Runnable
	for _, reg := range r.Registrars {
		if runnable, ok := reg.(fx.Runnable); ok {
			runnables = append(runnables, runnable)
		}
	}
	return runnables
}
