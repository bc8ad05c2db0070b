package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"os"

	"github.com/golang/glog"

	"github.com/robotalks/dps.go/pkg/env"
	fx "github.com/robotalks/dps.go/pkg/framework"
	"github.com/robotalks/dps.go/pkg/monitor"
	"github.com/robotalks/dps.go/pkg/telemetry/mqtt"
	"github.com/robotalks/dps.go/pkg/telemetry/websocket"
)

var quiet bool

func init() {
	env.SetupFlags()
	flag.BoolVar(&quiet, "q", quiet, "Don't print values on update.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.MustNewConfig()
	format, err := conf.Format()
	if err != nil {
		glog.Exit(err)
	}

	m := conf.MustNewMonitor()
	if !quiet {
		m.AddSinks(&monitor.WriterSink{W: os.Stdout})
	}
	runner := fx.NewRunner().HandleSignals()
	if conf.MQTTBrokerURL != "" {
		pub, err := mqtt.NewPublisher(conf.MQTTBrokerURL, conf.ID, format)
		if err != nil {
			glog.Exit(err)
		}
		pub.Commander = m
		m.AddSinks(pub)
		runner.Go(pub)
	}
	if conf.WebsocketAddr != "" {
		srv := websocket.NewServer(conf.WebsocketAddr, format)
		m.AddSinks(srv)
		runner.Go(srv)
	}
	if err := runner.Go(m).Wait(); err != nil {
		glog.Exit(err)
	}
}
