// Package websocket streams power supply telemetry to browsers.
package websocket

import (
	"context"
	"io"
	"io/ioutil"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/dps.go/pkg/framework"
	"github.com/robotalks/dps.go/pkg/monitor"
	"github.com/robotalks/dps.go/pkg/telemetry"
)

const clientBacklog = 4

// Server implements monitor.Sink. Every client connected to /ws gets
// the latest report on connect and all reports after that. GET /state
// returns the latest report.
type Server struct {
	Addr   string
	Format telemetry.Format

	lock    sync.RWMutex
	clients map[chan []byte]struct{}
	last    []byte
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, format telemetry.Format) *Server {
	return &Server{
		Addr:    addr,
		Format:  format,
		clients: make(map[chan []byte]struct{}),
	}
}

// Name implements framework.Named.
func (s *Server) Name() string {
	return "websocket"
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", websocket.Handler(s.serveConn))
	mux.HandleFunc("/state", s.serveState)
	return mux
}

// Run implements framework.Runnable.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.Addr, Handler: s.Handler()}
	glog.Infof("telemetry server listening on %s", s.Addr)
	return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
}

// Publish implements monitor.Sink.
func (s *Server) Publish(_ context.Context, r *monitor.Report) error {
	data, err := telemetry.Encode(r, s.Format)
	if err != nil {
		return err
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.last = data
	for ch := range s.clients {
		select {
		case ch <- data:
		default:
			glog.V(2).Info("websocket client lagging, report dropped")
		}
	}
	return nil
}

func (s *Server) serveState(w http.ResponseWriter, r *http.Request) {
	s.lock.RLock()
	last := s.last
	s.lock.RUnlock()
	if last == nil {
		http.Error(w, monitor.ErrNoReport.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", s.Format.ContentType())
	w.Write(last)
}

func (s *Server) serveConn(conn *websocket.Conn) {
	defer conn.Close()
	ch := make(chan []byte, clientBacklog)
	s.lock.Lock()
	s.clients[ch] = struct{}{}
	if s.last != nil {
		ch <- s.last
	}
	s.lock.Unlock()
	defer func() {
		s.lock.Lock()
		delete(s.clients, ch)
		s.lock.Unlock()
	}()

	closedCh := make(chan struct{})
	go func() {
		io.Copy(ioutil.Discard, conn)
		close(closedCh)
	}()

	for {
		select {
		case data := <-ch:
			if err := s.send(conn, data); err != nil {
				glog.V(2).Infof("websocket send: %v", err)
				return
			}
		case <-closedCh:
			return
		}
	}
}

func (s *Server) send(conn *websocket.Conn, data []byte) error {
	if s.Format == telemetry.FormatProto {
		return websocket.Message.Send(conn, data)
	}
	return websocket.Message.Send(conn, string(data))
}
