package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/dps.go/pkg/monitor"
	"github.com/robotalks/dps.go/pkg/telemetry"
)

// Commander executes commands received from the broker.
type Commander interface {
	Enable(context.Context) error
	Disable(context.Context) error
	Refresh(context.Context) error
}

// CommandTimeout bounds the execution of a remote command.
const CommandTimeout = 5 * time.Second

// Topics relative to <prefix><id>/
const (
	TopicState   = "state"
	TopicMeta    = "meta"
	TopicCommand = "cmd"
)

type meta struct {
	Session string `json:"session"`
	monitor.Info
}

// Publisher implements monitor.Sink.
// It publishes reports to <id>/state, identification to the retained
// <id>/meta and accepts on/off/refresh on <id>/cmd.
type Publisher struct {
	Queue     *Queue
	ID        string
	Format    telemetry.Format
	Commander Commander

	lock     sync.Mutex
	lastMeta string
}

// NewPublisher creates a Publisher connecting to brokerURL.
func NewPublisher(brokerURL, id string, format telemetry.Format) (*Publisher, error) {
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+id+"/"+TopicMeta, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("dps:" + id)
	}
	p := &Publisher{
		Queue:  NewQueue(opts, topicPrefix),
		ID:     id,
		Format: format,
	}
	p.Queue.OnConnect = func(*Queue) { p.republishMeta() }
	return p, nil
}

func (p *Publisher) topic(name string) string {
	return p.ID + "/" + name
}

// Name implements framework.Named.
func (p *Publisher) Name() string {
	return "mqtt"
}

// Run implements framework.Runnable.
func (p *Publisher) Run(ctx context.Context) error {
	token := p.Queue.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	sub := p.Queue.Sub(p.topic(TopicCommand), p.handleCommand)
	<-ctx.Done()
	sub.Close()
	p.Queue.PubWith(p.topic(TopicMeta), nil, 1, true).Wait()
	p.Queue.Close()
	return ctx.Err()
}

// Publish implements monitor.Sink.
func (p *Publisher) Publish(_ context.Context, r *monitor.Report) error {
	data, err := telemetry.Encode(r, p.Format)
	if err != nil {
		return err
	}
	p.Queue.Pub(p.topic(TopicState), data)

	m, err := json.Marshal(&meta{Session: r.Session, Info: r.Info})
	if err != nil {
		return err
	}
	p.lock.Lock()
	changed := p.lastMeta != string(m)
	p.lastMeta = string(m)
	p.lock.Unlock()
	if changed {
		p.Queue.PubWith(p.topic(TopicMeta), m, 1, true)
	}
	return nil
}

func (p *Publisher) republishMeta() {
	p.lock.Lock()
	m := p.lastMeta
	p.lock.Unlock()
	if m != "" {
		p.Queue.PubWith(p.topic(TopicMeta), []byte(m), 1, true)
	}
}

func (p *Publisher) handleCommand(_ string, payload []byte) {
	c := p.Commander
	if c == nil {
		return
	}
	var fn func(context.Context) error
	switch cmd := string(payload); cmd {
	case "on":
		fn = c.Enable
	case "off":
		fn = c.Disable
	case "refresh":
		fn = c.Refresh
	default:
		glog.Warningf("unknown command %q", cmd)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
	defer cancel()
	if err := fn(ctx); err != nil {
		glog.Errorf("command %q: %v", payload, err)
	}
}
