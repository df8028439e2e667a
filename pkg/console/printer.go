// Package console prints capture events as status lines.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/robotalks/procon.go/pkg/pipeline"
)

// Mode selects what a status line shows.
type Mode string

// Modes.
const (
	ModeHex    Mode = "hex"
	ModeDecode Mode = "decode"
	ModeBoth   Mode = "both"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeHex, ModeDecode, ModeBoth:
		return m, nil
	}
	return "", fmt.Errorf("unknown output mode %q, expect hex, decode or both", s)
}

// Printer writes one line per event and one warning line per error.
// It implements pipeline.Sink and pipeline.ErrorSink.
type Printer struct {
	W io.Writer
	// ErrW receives warnings, W if nil.
	ErrW io.Writer
	Mode Mode

	lock sync.Mutex
}

// NewPrinter creates a Printer.
func NewPrinter(w io.Writer, mode Mode) *Printer {
	return &Printer{W: w, Mode: mode}
}

// HandleEvent implements pipeline.Sink.
func (p *Printer) HandleEvent(ctx context.Context, event *pipeline.Event) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if event.DecodeErr != nil {
		fmt.Fprintf(p.errWriter(), "Warning: %v\n", event.DecodeErr)
		if p.Mode == ModeDecode {
			return
		}
	}
	fmt.Fprintln(p.W, FormatLine(event, p.Mode))
}

// HandleError implements pipeline.ErrorSink.
func (p *Printer) HandleError(ctx context.Context, err error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	fmt.Fprintf(p.errWriter(), "Warning: %v\n", err)
}

func (p *Printer) errWriter() io.Writer {
	if p.ErrW != nil {
		return p.ErrW
	}
	return p.W
}

// FormatLine renders the status line of an event without newline.
func FormatLine(event *pipeline.Event, mode Mode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Freq %2d Hz %s", event.Metrics.FramesPerSecond, event.Metrics.Uptime())
	showHex := mode != ModeDecode || event.Decoded == nil
	if showHex {
		sb.WriteString(" Received ")
		sb.WriteString(fmt.Sprintf("%d bytes:", event.Frame.Len()))
		for _, b := range event.Frame.Payload {
			fmt.Fprintf(&sb, " %02x", b)
		}
	}
	if mode != ModeHex && event.Decoded != nil {
		if showHex {
			sb.WriteString(" |")
		}
		sb.WriteByte(' ')
		if s, ok := event.Decoded.(fmt.Stringer); ok {
			sb.WriteString(s.String())
		} else {
			fmt.Fprintf(&sb, "%v", event.Decoded)
		}
	}
	return sb.String()
}
