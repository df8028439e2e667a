package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang/glog"
	"github.com/tebeka/atexit"

	"github.com/robotalks/procon.go/pkg/env"
	fx "github.com/robotalks/procon.go/pkg/framework"
	"github.com/robotalks/procon.go/pkg/msgs"
	"github.com/robotalks/procon.go/pkg/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/"
	filter  = "#"
)

func init() {
	if val := os.Getenv("PROCON_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&filter, "topic", filter, "Topic filter, relative to the URL prefix.")
}

func printMsg(topic string, payload []byte) {
	var text string
	switch {
	case strings.HasSuffix(topic, "/"+msgs.TopicState):
		msg, err := msgs.DecodeState(payload)
		if err != nil {
			text = fmt.Sprintf("bad state: %v", err)
		} else {
			text = fmt.Sprintf("#%d %s Freq %d Hz", msg.Seq, msg.State(), msg.Fps)
		}
	case strings.HasSuffix(topic, "/"+msgs.TopicStatus):
		msg, err := msgs.DecodeStatus(payload)
		if err != nil {
			text = fmt.Sprintf("bad status: %v", err)
		} else {
			text = msg.String()
		}
	default:
		text = string(payload)
	}
	fmt.Printf("%s %s: %s\n", time.Now().Format("15:04:05.000000"), topic, text)
}

func main() {
	flag.Parse()
	atexit.Register(glog.Flush)

	opts, topicPrefix, err := mqtt.ClientOptionsFromURL(mqttURL)
	if err != nil {
		atexit.Fatalln(err)
	}
	if opts.ClientID == "" {
		opts.SetClientID("proconmon:" + env.NewSessionID())
	}
	q := mqtt.NewQueue(opts, topicPrefix)

	runner := fx.NewRunner().HandleSignals()
	ctx, cancel := context.WithTimeout(runner.Context, 10*time.Second)
	err = q.Connect(ctx)
	cancel()
	if err != nil {
		atexit.Fatalf("connect %s: %v", mqttURL, err)
	}

	sub := q.Sub(filter, mqtt.Handler(printMsg))
	err = runner.Go(fx.RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})).Wait()
	sub.Close()
	q.Close()
	if err != nil {
		glog.Error(err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
