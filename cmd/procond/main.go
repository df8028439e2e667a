package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/tebeka/atexit"

	"github.com/robotalks/procon.go/pkg/config"
	"github.com/robotalks/procon.go/pkg/console"
	"github.com/robotalks/procon.go/pkg/env"
	fx "github.com/robotalks/procon.go/pkg/framework"
	"github.com/robotalks/procon.go/pkg/mqtt"
	"github.com/robotalks/procon.go/pkg/pipeline"
	"github.com/robotalks/procon.go/pkg/procon"
	"github.com/robotalks/procon.go/pkg/source"
)

const mqttConnectTimeout = 10 * time.Second

var quiet bool

func init() {
	config.SetupFlags()
	flag.BoolVar(&quiet, "q", quiet, "Don't print status lines.")
}

func main() {
	flag.Parse()
	atexit.Register(glog.Flush)

	conf, err := config.NewConfig()
	if err != nil {
		atexit.Fatalln(err)
	}
	if err := conf.Validate(); err != nil {
		atexit.Fatalln(err)
	}

	target, err := source.ParseURL(conf.Source, conf.SourceOptions())
	if err != nil {
		atexit.Fatalln(err)
	}
	sessionID := env.NewSessionID()
	capture := pipeline.NewCapture(procon.Decoder{})
	errSinks := pipeline.ErrorSinks{pipeline.LogErrors}
	if !quiet {
		printer := console.NewPrinter(os.Stdout, conf.OutputMode())
		printer.ErrW = os.Stderr
		capture.AddSink(printer)
		errSinks = append(errSinks, printer)
	}
	capture.Errors = errSinks

	runner := fx.NewRunner().HandleSignals()
	var runnables []fx.Runnable
	if conf.MQTT.URL != "" {
		pub, err := newPublisher(runner.Context, conf, sessionID, capture)
		if err != nil {
			atexit.Fatalf("mqtt %s: %v", conf.MQTT.URL, err)
		}
		pub.Source = target.String()
		capture.AddSink(pub)
		runnables = append(runnables, fx.NamedRun("mqtt", pub))
	}

	// opened last: from here on RunSource owns closing it.
	src, err := target.Open()
	if err != nil {
		atexit.Fatalf("open %s: %v", target, err)
	}
	runnables = append(runnables, fx.NamedRun("capture", fx.RunFunc(func(ctx context.Context) error {
		return pipeline.RunSource(ctx, src, capture)
	})))

	glog.Infof("session %s: capturing from %s", sessionID, target)
	err = runner.Go(runnables...).Wait()
	if err != nil && !endOfReplay(target, err) {
		glog.Errorf("capture stopped: %v", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func newPublisher(ctx context.Context, conf *config.Config, sessionID string, capture *pipeline.Capture) (*mqtt.Publisher, error) {
	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(conf.MQTT.URL)
	if err != nil {
		return nil, err
	}
	if opts.ClientID == "" {
		opts.SetClientID(env.ClientID("procond"))
	}
	q := mqtt.NewQueue(opts, topicPrefix)
	connCtx, cancel := context.WithTimeout(ctx, mqttConnectTimeout)
	defer cancel()
	if err := q.Connect(connCtx); err != nil {
		return nil, err
	}
	atexit.Register(func() { q.Close() })

	deviceID := conf.MQTT.DeviceID
	if deviceID == "" {
		deviceID = env.DeviceID()
	}
	glog.Infof("publishing to %s%s/", topicPrefix, deviceID)
	return mqtt.NewPublisher(q, deviceID, sessionID, capture), nil
}

// endOfReplay reports whether a recorded capture was simply consumed.
func endOfReplay(target *source.Target, err error) bool {
	switch target.Kind {
	case source.KindFile, source.KindStdin:
		return errors.Is(err, io.EOF)
	}
	return false
}
