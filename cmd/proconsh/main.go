package main

//go-build: CGO_ENABLED=0

import (
	"github.com/golang/glog"
	"github.com/tebeka/atexit"

	"github.com/robotalks/procon.go/pkg/cli/sh"
)

func main() {
	atexit.Register(glog.Flush)
	sh.Main()
	atexit.Exit(0)
}
