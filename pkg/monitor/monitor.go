package monitor

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"github.com/robotalks/dps.go/pkg/dps150"
	fx "github.com/robotalks/dps.go/pkg/framework"
)

// Defaults
const (
	DefaultRefreshInterval = 2 * time.Second
	DefaultRetryInterval   = 100 * time.Millisecond
)

// Monitor owns a Controller and drives it from a single goroutine:
// received bytes, queued requests and the refresh timer are handled
// in turn, so the Controller is never accessed concurrently.
type Monitor struct {
	ID              string
	Session         string
	RefreshInterval time.Duration
	RetryInterval   time.Duration
	Sinks           []Sink

	transport io.ReadWriter
	ctl       *dps150.Controller
	reqCh     chan *request

	lock    sync.RWMutex
	info    Info
	latest  Report
	updated bool
	stats   dps150.Stats
}

type request struct {
	fn     Request
	doneCh chan error
}

// New creates a Monitor over the transport.
// If transport is an io.Closer, it's closed when Run returns.
func New(id string, transport io.ReadWriter, opts ...dps150.Option) *Monitor {
	m := &Monitor{
		ID:              id,
		Session:         uuid.NewString(),
		RefreshInterval: DefaultRefreshInterval,
		RetryInterval:   DefaultRetryInterval,
		transport:       transport,
		reqCh:           make(chan *request),
	}
	opts = append(opts, dps150.WithInfoHandler(dps150.HandleInfoFunc(m.handleInfo)))
	m.ctl = dps150.NewController(transport, opts...)
	return m
}

// AddSinks appends sinks, must be called before Run.
func (m *Monitor) AddSinks(sinks ...Sink) *Monitor {
	m.Sinks = append(m.Sinks, sinks...)
	return m
}

// Name implements framework.Named.
func (m *Monitor) Name() string {
	return "monitor"
}

// Run implements framework.Runnable.
func (m *Monitor) Run(ctx context.Context) error {
	if closer, ok := m.transport.(io.Closer); ok {
		defer closer.Close()
	}
	if err := m.ctl.Initialize(); err != nil {
		glog.Warningf("initialize: %v", err)
	}

	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	chunkCh := make(chan []byte, 1)
	go m.readLoop(readCtx, chunkCh)

	var refreshCh <-chan time.Time
	if m.RefreshInterval > 0 {
		ticker := time.NewTicker(m.RefreshInterval)
		defer ticker.Stop()
		refreshCh = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			if err := m.ctl.Close(); err != nil {
				glog.Warningf("close session: %v", err)
			}
			return ctx.Err()
		case chunk := <-chunkCh:
			updated := m.ctl.Feed(chunk)
			m.lock.Lock()
			m.stats = m.ctl.Stats()
			m.lock.Unlock()
			if updated {
				m.publish(ctx)
			}
		case req := <-m.reqCh:
			req.doneCh <- req.fn(m.ctl)
		case <-refreshCh:
			if err := m.ctl.RequestAll(); err != nil {
				glog.Warningf("refresh: %v", err)
			}
		}
	}
}

func (m *Monitor) readLoop(ctx context.Context, chunkCh chan<- []byte) {
	buf := make([]byte, dps150.ReadBufferSize)
	for {
		n, err := m.transport.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case chunkCh <- chunk:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			glog.V(2).Infof("uart read: %v", err)
		}
		if n == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(m.RetryInterval):
			}
		}
	}
}

func (m *Monitor) publish(ctx context.Context) {
	m.lock.Lock()
	m.latest = Report{
		ID:      m.ID,
		Session: m.Session,
		Time:    time.Now(),
		State:   m.ctl.Snapshot(),
		Info:    m.info,
	}
	m.updated = true
	report := m.latest
	m.lock.Unlock()

	var errs fx.AggregatedError
	for _, sink := range m.Sinks {
		errs.Add(sink.Publish(ctx, &report))
	}
	if err := errs.Aggregate(); err != nil {
		glog.Warningf("publish: %v", err)
	}
}

func (m *Monitor) handleInfo(field dps150.Field, text string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	switch field {
	case dps150.FieldModelName:
		m.info.Model = text
	case dps150.FieldHardwareVersion:
		m.info.Hardware = text
	case dps150.FieldFirmwareVersion:
		m.info.Firmware = text
	}
}

// Latest returns the most recent report.
func (m *Monitor) Latest() (Report, error) {
	m.lock.RLock()
	defer m.lock.RUnlock()
	if !m.updated {
		return Report{}, ErrNoReport
	}
	return m.latest, nil
}

// Info returns identification strings received so far.
func (m *Monitor) Info() Info {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.info
}

// Stats returns decoder counters as of the last received chunk.
func (m *Monitor) Stats() dps150.Stats {
	m.lock.RLock()
	defer m.lock.RUnlock()
	return m.stats
}

// Do queues a request and waits for its result.
func (m *Monitor) Do(ctx context.Context, fn Request) error {
	req := &request{fn: fn, doneCh: make(chan error, 1)}
	select {
	case m.reqCh <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-req.doneCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enable turns on the output.
func (m *Monitor) Enable(ctx context.Context) error {
	return m.Do(ctx, (*dps150.Controller).Enable)
}

// Disable turns off the output.
func (m *Monitor) Disable(ctx context.Context) error {
	return m.Do(ctx, (*dps150.Controller).Disable)
}

// Refresh requests a full snapshot.
func (m *Monitor) Refresh(ctx context.Context) error {
	return m.Do(ctx, (*dps150.Controller).RequestAll)
}

// SetByte sets a single byte field.
func (m *Monitor) SetByte(ctx context.Context, field dps150.Field, val byte) error {
	return m.Do(ctx, func(c *dps150.Controller) error {
		return c.SetByte(field, val)
	})
}
