package monitor

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/dps.go/pkg/dps150"
)

type chanTransport struct {
	readCh chan []byte

	lock    sync.Mutex
	written bytes.Buffer
	closed  bool
}

func newChanTransport() *chanTransport {
	return &chanTransport{readCh: make(chan []byte)}
}

func (c *chanTransport) Read(p []byte) (int, error) {
	data, ok := <-c.readCh
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (c *chanTransport) Write(p []byte) (int, error) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.written.Write(p)
}

func (c *chanTransport) Close() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
	return nil
}

func (c *chanTransport) writtenBytes() []byte {
	c.lock.Lock()
	defer c.lock.Unlock()
	return append([]byte(nil), c.written.Bytes()...)
}

func reply(field dps150.Field, payload ...byte) []byte {
	b := []byte{byte(dps150.HeaderInput), byte(dps150.CmdGet), byte(field), byte(len(payload))}
	b = append(b, payload...)
	return append(b, dps150.Checksum(b[2:]...))
}

type monitorTestEnv struct {
	t         *testing.T
	transport *chanTransport
	monitor   *Monitor
	reportCh  chan *Report
	cancel    func()
	doneCh    chan error
}

func newMonitorTestEnv(t *testing.T) *monitorTestEnv {
	env := &monitorTestEnv{
		t:         t,
		transport: newChanTransport(),
		reportCh:  make(chan *Report, 16),
		doneCh:    make(chan error, 1),
	}
	env.monitor = New("test", env.transport)
	env.monitor.RefreshInterval = 0
	env.monitor.RetryInterval = time.Millisecond
	env.monitor.AddSinks(PublishFunc(func(_ context.Context, r *Report) error {
		env.reportCh <- r
		return nil
	}))
	var ctx context.Context
	ctx, env.cancel = context.WithCancel(context.Background())
	go func() {
		env.doneCh <- env.monitor.Run(ctx)
	}()
	return env
}

func (e *monitorTestEnv) feed(data []byte) {
	select {
	case e.transport.readCh <- data:
	case <-time.After(time.Second):
		e.t.Fatal("feed timeout")
	}
}

func (e *monitorTestEnv) expectReport() *Report {
	select {
	case r := <-e.reportCh:
		return r
	case <-time.After(time.Second):
		e.t.Fatal("report timeout")
	}
	return nil
}

func (e *monitorTestEnv) stop() {
	e.cancel()
	select {
	case err := <-e.doneCh:
		require.Equal(e.t, context.Canceled, err)
	case <-time.After(time.Second):
		e.t.Fatal("stop timeout")
	}
}

func TestMonitorReports(t *testing.T) {
	env := newMonitorTestEnv(t)
	_, err := env.monitor.Latest()
	require.Equal(t, ErrNoReport, err)

	model := reply(dps150.FieldModelName, []byte("DPS-150")...)
	env.feed(model)
	r := env.expectReport()
	require.Equal(t, "DPS-150", r.Info.Model)
	require.Equal(t, "test", r.ID)
	require.Equal(t, env.monitor.Session, r.Session)

	frame := reply(dps150.FieldInputVoltage, dps150.PutFloat32(19.5)...)
	env.feed(frame[:4])
	env.feed(frame[4:])
	r = env.expectReport()
	require.Equal(t, float32(19.5), r.State.InputVoltage)

	latest, err := env.monitor.Latest()
	require.NoError(t, err)
	require.Equal(t, float32(19.5), latest.State.InputVoltage)
	require.Equal(t, uint64(2), env.monitor.Stats().Frames)
	require.Equal(t, "DPS-150", env.monitor.Info().Model)
	env.stop()

	written := env.transport.writtenBytes()
	require.Equal(t, byte(0xf1), written[0])
	require.Equal(t, byte(dps150.CmdSession), written[1])
	closeFrame := dps150.Encode(dps150.HeaderOutput, dps150.CmdSession, 0, 0)
	require.Equal(t, closeFrame[:], written[len(written)-dps150.FrameSize:])
	require.True(t, env.transport.closed)
}

func TestMonitorStatsWithoutValidFrames(t *testing.T) {
	env := newMonitorTestEnv(t)
	defer env.stop()

	frame := reply(dps150.FieldInputVoltage, dps150.PutFloat32(19.5)...)
	frame[len(frame)-1]++
	env.feed(frame)
	env.feed(frame)

	deadline := time.Now().Add(time.Second)
	for env.monitor.Stats().ChecksumErrors == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	st := env.monitor.Stats()
	require.True(t, st.ChecksumErrors > 0)
	require.Equal(t, uint64(0), st.Frames)
	_, err := env.monitor.Latest()
	require.Equal(t, ErrNoReport, err)
}

func TestMonitorRequests(t *testing.T) {
	env := newMonitorTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.monitor.Enable(ctx))
	require.NoError(t, env.monitor.SetByte(ctx, dps150.FieldVolume, 2))
	require.NoError(t, env.monitor.Disable(ctx))
	require.NoError(t, env.monitor.Refresh(ctx))

	var expect []byte
	for _, f := range []dps150.Frame{
		dps150.Encode(dps150.HeaderOutput, dps150.CmdSet, dps150.FieldOutputEnable, 1),
		dps150.Encode(dps150.HeaderOutput, dps150.CmdSet, dps150.FieldVolume, 2),
		dps150.Encode(dps150.HeaderOutput, dps150.CmdSet, dps150.FieldOutputEnable, 0),
		dps150.Encode(dps150.HeaderOutput, dps150.CmdGet, dps150.FieldAll, 0),
	} {
		expect = append(expect, f[:]...)
	}
	written := env.transport.writtenBytes()
	require.Equal(t, expect, written[len(written)-len(expect):])
	env.stop()
}

func TestMonitorDoCanceled(t *testing.T) {
	m := New("idle", newChanTransport())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, m.Enable(ctx))
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	s := &WriterSink{W: &buf}
	require.NoError(t, s.Publish(context.Background(), &Report{State: dps150.Snapshot{Temperature: 30}}))
	require.Contains(t, buf.String(), "temperature:30.00")
}
