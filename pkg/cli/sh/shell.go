// Package sh provides an interactive shell controlling a power supply.
package sh

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/dps.go/pkg/env"
	"github.com/robotalks/dps.go/pkg/monitor"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool

	CommandTimeout time.Duration
	ReportTimeout  time.Duration

	Shell   *ishell.Shell
	Config  *env.Config
	Session *Session
}

// Session is a running monitor on an opened device.
type Session struct {
	Ctx     context.Context
	Cancel  func()
	Device  string
	Monitor *monitor.Monitor

	doneCh chan struct{}
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "

	defaultCommandTimeout = time.Second
	defaultReportTimeout  = 3 * time.Second
	reportPollInterval    = 50 * time.Millisecond
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&ConnectCmd,
		&DisconnectCmd,
		&StatusCmd,
		&OnCmd,
		&OffCmd,
		&RefreshCmd,
		&BrightnessCmd,
		&VolumeCmd,
		&MeteringCmd,
		&InfoCmd,
		&StatsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		CommandTimeout: defaultCommandTimeout,
		ReportTimeout:  defaultReportTimeout,

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
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// Connect opens the device and starts monitoring it.
func (s *Shell) Connect(device string) error {
	conf := *s.Config
	if device != "" {
		conf.Device = device
	}
	s.Disconnect()
	m, err := conf.NewMonitor()
	if err != nil {
		return err
	}
	sess := &Session{Device: conf.Device, Monitor: m, doneCh: make(chan struct{})}
	sess.Ctx, sess.Cancel = context.WithCancel(context.Background())
	go func() {
		defer close(sess.doneCh)
		m.Run(sess.Ctx)
	}()
	s.Session = sess
	s.setPrompt(fmt.Sprintf("%s > ", conf.Device))
	return nil
}

// Disconnect stops the current session and closes the device.
func (s *Shell) Disconnect() {
	if s.Session != nil {
		s.Session.Cancel()
		<-s.Session.doneCh
		s.Session = nil
		s.setPrompt(unconnectedPrompt)
	}
}

func (s *Shell) setPrompt(prompt string) {
	if s.Shell != nil {
		s.Shell.SetPrompt(prompt)
	}
}

// WaitReport waits until the first report is available.
func (s *Shell) WaitReport() (monitor.Report, error) {
	deadline := time.Now().Add(s.ReportTimeout)
	for {
		r, err := s.Session.Monitor.Latest()
		if err != monitor.ErrNoReport || !time.Now().Before(deadline) {
			return r, err
		}
		time.Sleep(reportPollInterval)
	}
}

// Print prints v as JSON if OutputJSON is set, or the text otherwise.
func (s *Shell) Print(c *ishell.Context, v interface{}, text string) {
	if !s.OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// DoCommand runs a command on the monitor and waits for result.
func DoCommand(c *ishell.Context, fn func(context.Context) error) error {
	s := ShellFrom(c)
	if s.Session == nil {
		err := fmt.Errorf("not connected")
		c.Err(err)
		return err
	}
	ctx, cancel := context.WithTimeout(s.Session.Ctx, s.CommandTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		if err == context.DeadlineExceeded {
			err = fmt.Errorf("Command timeout")
		}
		c.Err(err)
		return err
	}
	s.Print(c, map[string]bool{"ok": true}, "OK")
	return nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Disconnect()
	if s.AutoConnect && s.Config.Device != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Device)
		}
		if err := s.Connect(""); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Device, err)
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

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.MustNewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}
