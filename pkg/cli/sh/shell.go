// Package sh provides an interactive shell for driving degu devices
// remotely.
package sh

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	fx "github.com/robotalks/degu.go/pkg/framework"
	"github.com/robotalks/degu.go/pkg/l1"
	env "github.com/robotalks/degu.go/pkg/l1/env/connector"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive    bool
	OutputJSON     bool
	AutoConnect    bool
	CommandTimeout time.Duration

	Shell   *ishell.Shell
	Config  *env.Config
	Session *Session
}

// Session is a live connection to a device.
type Session struct {
	Ref    l1.ControllerRef
	Conn   l1.ControllerConn
	Cancel context.CancelFunc

	done chan struct{}
}

// ErrNotConnected indicates a command requires a connection.
var ErrNotConnected = errors.New("not connected")

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

var (
	evalOnly       bool
	outputJSON     bool
	commandTimeout = 30 * time.Second

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.DurationVar(&commandTimeout, "cmd-timeout", commandTimeout, "Time to wait for a command result.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive:    !evalOnly,
		OutputJSON:     outputJSON,
		CommandTimeout: commandTimeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Session == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// Do sends a command on the current session and waits for the result.
func (s *Shell) Do(msg fx.Message) (fx.Message, error) {
	if s.Session == nil {
		return nil, ErrNotConnected
	}
	f := s.Session.Conn.DoCommand(msg)
	timeout := time.NewTimer(s.CommandTimeout)
	defer timeout.Stop()
	select {
	case res, ok := <-f.ResultChan():
		if !ok {
			return nil, context.Canceled
		}
		return res.Msg, res.Err
	case <-timeout.C:
		return nil, fmt.Errorf("command timeout: %w", context.DeadlineExceeded)
	}
}

// DoCommand runs a command and prints the result.
func DoCommand(c *ishell.Context, msg fx.Message) error {
	s := ShellFrom(c)
	res, err := s.Do(msg)
	if err != nil {
		c.Err(err)
		return err
	}
	out, err := FormatResult(res, s.OutputJSON)
	if err != nil {
		c.Err(err)
		return err
	}
	c.Println(out)
	return nil
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// DiscoverControllers discovers devices.
func (s *Shell) DiscoverControllers(filter func(l1.ControllerInfo) bool) ([]l1.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	infoList, err := connector.Discover(context.Background())
	if err != nil {
		return nil, err
	}
	return FilterInfo(infoList, filter), nil
}

// SelectController discovers devices and asks for a choice.
func (s *Shell) SelectController(filter func(l1.ControllerInfo) bool) (*l1.ControllerInfo, error) {
	infoList, err := s.DiscoverControllers(filter)
	if err != nil || len(infoList) == 0 {
		return nil, err
	}
	var index int
	if len(infoList) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 devices discovered in non-interactive mode")
		}
		items := make([]string, len(infoList))
		for n, info := range infoList {
			items[n] = FormatInfo(info)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
		if index < 0 {
			return nil, nil
		}
	}
	return &infoList[index], nil
}

// Connect connects the device with ref, replacing the current session.
func (s *Shell) Connect(ref l1.ControllerRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		cancel()
		return err
	}
	s.Disconnect()
	sess := &Session{Ref: ref, Conn: conn, Cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(sess.done)
		if err := conn.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			glog.Warningf("%s: connection closed: %v", ref.Name(), err)
		}
	}()
	go s.printEvents(ctx, sess)
	s.Session = sess
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", ref.ID))
	return nil
}

func (s *Shell) printEvents(ctx context.Context, sess *Session) {
	events := sess.Conn.Events()
	if events == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-events:
			out, err := FormatResult(msg, s.OutputJSON)
			if err != nil {
				glog.Warningf("format %s: %v", FormatName(msg), err)
				continue
			}
			s.Shell.Println("EVENT " + out)
		}
	}
}

// Disconnect disconnects current device.
func (s *Shell) Disconnect() {
	if sess := s.Session; sess != nil {
		sess.Cancel()
		<-sess.done
		s.Session = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Disconnect()
	if s.AutoConnect && s.Config.Ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Ref.Name())
		}
		if err := s.Connect(s.Config.Ref); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Ref.Name(), err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

var (
	// DiscoverCmd discovers devices.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverControllers(nil)
			if err != nil {
				c.Err(err)
				return
			}
			out, err := FormatInfoList(infoList, s.OutputJSON)
			if err != nil {
				c.Err(err)
				return
			}
			c.Println(out)
		},
	}

	// ConnectCmd connects a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[ID]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ref := l1.ControllerRef{Type: l1.DeviceType}
			if len(c.Args) > 0 {
				ref.ID = c.Args[0]
			} else {
				info, err := s.SelectController(func(info l1.ControllerInfo) bool {
					return info.Ref.Type == l1.DeviceType
				})
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no device discovered"))
					return
				}
				ref = info.Ref
			}
			if err := s.Connect(ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	env.SetupFlags()
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
