// Package mock generates synthetic controller frames for testing without
// the capture hardware.
package mock

import (
	"io"
	"math"
	"math/rand"

	"github.com/robotalks/procon.go/pkg/frame"
	"github.com/robotalks/procon.go/pkg/procon"
)

// Payload layout of generated reports.
const (
	PayloadLen = 64
	ReportID   = 0x30
	InfoByte   = 0x91
)

// Generator produces a stream of frames carrying a slowly changing
// controller state. Noise and corruption can be injected to exercise
// the resynchronization of readers.
type Generator struct {
	Rand *rand.Rand
	// NoiseProb is the probability of inserting noise bytes before a frame.
	NoiseProb float64
	// CorruptProb is the probability of replacing the end marker.
	CorruptProb float64

	seq uint32
}

// NewGenerator creates a Generator with a seeded random source.
func NewGenerator(seed int64) *Generator {
	return &Generator{Rand: rand.New(rand.NewSource(seed))}
}

// StateAt returns the controller state of the n-th report: one button is
// held at a time and the sticks circle in opposite directions.
func StateAt(n uint32) procon.State {
	b := procon.Button((n / 30) % procon.NumButtons)
	for b.IsReserved() {
		b++
	}
	angle := float64(n%240) / 240 * 2 * math.Pi
	radius := float64(procon.AxisCenter - 256)
	return procon.State{
		Buttons: procon.Buttons(1) << b,
		Left: procon.Stick{
			X: uint16(procon.AxisCenter + radius*math.Cos(angle)),
			Y: uint16(procon.AxisCenter + radius*math.Sin(angle)),
		},
		Right: procon.Stick{
			X: uint16(procon.AxisCenter + radius*math.Cos(-angle)),
			Y: uint16(procon.AxisCenter + radius*math.Sin(-angle)),
		},
	}
}

// Encode packs a state into a report payload of PayloadLen bytes.
func Encode(timer byte, s procon.State) []byte {
	p := make([]byte, PayloadLen)
	p[0], p[1], p[2] = ReportID, timer, InfoByte
	putBE24(p[3:], uint32(s.Buttons))
	putBE24(p[6:], uint32(s.Left.X)<<12|uint32(s.Left.Y))
	putBE24(p[9:], uint32(s.Right.X)<<12|uint32(s.Right.Y))
	return p
}

func putBE24(b []byte, v uint32) {
	b[0], b[1], b[2] = byte(v>>16), byte(v>>8), byte(v)
}

// Next returns the next report payload and its state.
func (g *Generator) Next() ([]byte, procon.State) {
	s := StateAt(g.seq)
	p := Encode(byte(g.seq), s)
	g.seq++
	return p, s
}

// WriteNext writes the next frame, with injected noise or corruption.
// It returns whether the frame is intact.
func (g *Generator) WriteNext(w io.Writer) (bool, error) {
	payload, _ := g.Next()
	b, err := frame.Encode(payload)
	if err != nil {
		return false, err
	}
	if g.roll(g.NoiseProb) {
		noise := make([]byte, 1+g.Rand.Intn(8))
		for i := range noise {
			// keep the start marker out of the noise.
			noise[i] = byte(g.Rand.Intn(int(frame.StartMarker)))
		}
		if _, err := w.Write(noise); err != nil {
			return false, err
		}
	}
	intact := true
	if g.roll(g.CorruptProb) {
		b[len(b)-1] = 0x00
		intact = false
	}
	_, err = w.Write(b)
	return intact, err
}

func (g *Generator) roll(prob float64) bool {
	return prob > 0 && g.Rand.Float64() < prob
}
