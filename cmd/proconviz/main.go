package main

import (
	"context"
	"flag"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/golang/glog"
	"github.com/tebeka/atexit"

	"github.com/robotalks/procon.go/pkg/config"
	"github.com/robotalks/procon.go/pkg/pipeline"
	"github.com/robotalks/procon.go/pkg/procon"
	"github.com/robotalks/procon.go/pkg/source"
	"github.com/robotalks/procon.go/pkg/viz"
)

func init() {
	config.SetupFlags()
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
	src, err := target.Open()
	if err != nil {
		atexit.Fatalf("open %s: %v", target, err)
	}

	sink := &viz.Sink{}
	capture := pipeline.NewCapture(procon.Decoder{}, sink)
	capture.Errors = pipeline.ErrorSinks{pipeline.LogErrors, sink}
	program := tea.NewProgram(viz.NewModel(target.String(), capture.Tracker.Sample), tea.WithAltScreen())
	sink.Program = program

	ctx, cancel := context.WithCancel(context.Background())
	doneCh := make(chan error, 1)
	go func() {
		err := pipeline.RunSource(ctx, src, capture)
		program.Send(viz.StoppedMsg{Err: err})
		doneCh <- err
	}()

	_, err = program.Run()
	cancel()
	if captureErr := <-doneCh; captureErr != nil && captureErr != context.Canceled {
		glog.Warningf("capture stopped: %v", captureErr)
	}
	if err != nil {
		atexit.Fatalln(err)
	}
	atexit.Exit(0)
}
