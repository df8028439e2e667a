package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"net"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/tebeka/atexit"

	fx "github.com/robotalks/procon.go/pkg/framework"
	"github.com/robotalks/procon.go/pkg/mock"
)

var (
	listenAddr  string
	frameRate   = 60
	count       int
	noiseProb   float64
	corruptProb float64
	seed        = time.Now().UnixNano()
)

func init() {
	flag.StringVar(&listenAddr, "listen", listenAddr, "Serve frames over TCP on this address instead of stdout.")
	flag.IntVar(&frameRate, "rate", frameRate, "Frames per second, 0 for as fast as possible.")
	flag.IntVar(&count, "n", count, "Number of frames, 0 for unlimited.")
	flag.Float64Var(&noiseProb, "noise", noiseProb, "Probability of noise bytes before a frame.")
	flag.Float64Var(&corruptProb, "corrupt", corruptProb, "Probability of a corrupted end marker.")
	flag.Int64Var(&seed, "seed", seed, "Random seed.")
}

func newGenerator() *mock.Generator {
	g := mock.NewGenerator(seed)
	g.NoiseProb, g.CorruptProb = noiseProb, corruptProb
	return g
}

// stream writes frames to w until count is reached, w fails or ctx is done.
func stream(ctx context.Context, w io.Writer) error {
	g := newGenerator()
	bw := bufio.NewWriter(w)
	var tickCh <-chan time.Time
	if frameRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(frameRate))
		defer ticker.Stop()
		tickCh = ticker.C
	}
	for n := 0; count == 0 || n < count; n++ {
		if tickCh != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-tickCh:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := g.WriteNext(bw); err != nil {
			return err
		}
		if tickCh != nil {
			if err := bw.Flush(); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	glog.Infof("serving frames on %s", ln.Addr())
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			glog.Infof("client %s connected", conn.RemoteAddr())
			go func(conn net.Conn) {
				err := fx.RunWithContextCloser(ctx, conn, func() error {
					return stream(ctx, conn)
				})
				glog.Infof("client %s done: %v", conn.RemoteAddr(), err)
			}(conn)
		}
	})
}

func main() {
	flag.Parse()
	atexit.Register(glog.Flush)

	runner := fx.NewRunner().HandleSignals()
	var run fx.RunFunc = func(ctx context.Context) error {
		return stream(ctx, os.Stdout)
	}
	if listenAddr != "" {
		run = serve
	}
	if err := runner.Go(fx.NamedRun("mock", run)).Wait(); err != nil {
		glog.Error(err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
