package console

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/procon.go/pkg/frame"
	"github.com/robotalks/procon.go/pkg/pipeline"
	"github.com/robotalks/procon.go/pkg/procon"
	"github.com/robotalks/procon.go/pkg/rate"
)

func testEvent() *pipeline.Event {
	return &pipeline.Event{
		Seq:   1,
		Frame: &frame.Frame{Payload: []byte{0x30, 0x8f, 0x91}},
		Metrics: rate.Metrics{
			FramesPerSecond: 60,
			Elapsed:         62 * time.Second,
		},
		Decoded: procon.State{
			Buttons: 1<<procon.ButtonA | 1<<procon.ButtonZR,
			Left:    procon.Stick{X: 2048, Y: 2031},
			Right:   procon.Stick{X: 1990, Y: 2100},
		},
	}
}

func TestFormatLine(t *testing.T) {
	ev := testEvent()
	require.Equal(t, "Freq 60 Hz 00:01:02 Received 3 bytes: 30 8f 91", FormatLine(ev, ModeHex))
	require.Equal(t, "Freq 60 Hz 00:01:02 buttons=[A ZR] L=(2048,2031) R=(1990,2100)", FormatLine(ev, ModeDecode))
	require.Equal(t, "Freq 60 Hz 00:01:02 Received 3 bytes: 30 8f 91 | buttons=[A ZR] L=(2048,2031) R=(1990,2100)", FormatLine(ev, ModeBoth))

	ev.Metrics.FramesPerSecond = 5
	ev.Decoded = nil
	require.Equal(t, "Freq  5 Hz 00:01:02 Received 3 bytes: 30 8f 91", FormatLine(ev, ModeDecode))

	ev.Frame.Payload = nil
	require.Equal(t, "Freq  5 Hz 00:01:02 Received 0 bytes:", FormatLine(ev, ModeHex))
}

func TestPrinter(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, ModeDecode)
	p.ErrW = &errOut

	ev := testEvent()
	p.HandleEvent(context.Background(), ev)
	p.HandleError(context.Background(), frame.ErrLengthTimeout)

	ev.Decoded = nil
	ev.DecodeErr = &procon.ShortPayloadError{Len: 3}
	p.HandleEvent(context.Background(), ev)

	require.Equal(t, "Freq 60 Hz 00:01:02 buttons=[A ZR] L=(2048,2031) R=(1990,2100)\n", out.String())
	require.Equal(t,
		"Warning: timed out waiting for length\n"+
			"Warning: "+ev.DecodeErr.Error()+"\n",
		errOut.String())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Both")
	require.NoError(t, err)
	require.Equal(t, ModeBoth, m)
	_, err = ParseMode("json")
	require.Error(t, err)
}
