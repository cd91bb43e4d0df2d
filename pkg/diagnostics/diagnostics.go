// Package diagnostics renders a PNG waveform trace of each APU
// channel's unmixed output over a span of ticks, for audio debugging
// outside the dependency-free engine package.
//
// New package: gomeboy carries gonum.org/v1/plot in go.mod but never
// imports it anywhere, so there is no source file to adapt — grounded
// instead on internal/apu's ChannelAmplitudes() shape (four
// independent float32 channel outputs sampled once per Tick call),
// which is what this package plots one line per channel for.
package diagnostics

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Source is the subset of internal/engine.Engine a Tracer samples.
type Source interface {
	ChannelAmplitudes() [4]float32
}

var channelNames = [4]string{"Pulse 1", "Pulse 2", "Wave", "Noise"}

// Tracer accumulates one (tick index, amplitude) point per channel on
// every Sample call, for later rendering via SavePNG.
type Tracer struct {
	points [4]plotter.XYs
	tick   int
}

// NewTracer constructs an empty Tracer.
func NewTracer() *Tracer {
	return &Tracer{}
}

// Sample records src's current channel amplitudes as the next point
// in each channel's trace. Call once per APU.Tick (or engine
// StepFrame, sampling at whatever granularity the caller wants).
func (t *Tracer) Sample(src Source) {
	amps := src.ChannelAmplitudes()
	for ch := range amps {
		t.points[ch] = append(t.points[ch], plotter.XY{X: float64(t.tick), Y: float64(amps[ch])})
	}
	t.tick++
}

// SavePNG renders all four channel traces as a multi-line plot and
// writes it to path.
func (t *Tracer) SavePNG(path string, width, height vg.Length) error {
	p := plot.New()
	p.Title.Text = "APU channel output"
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "amplitude"

	for ch, pts := range t.points {
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("diagnostics: channel %d line: %w", ch, err)
		}
		line.Color = plotter.DefaultLineStyle.Color
		p.Add(line)
		p.Legend.Add(channelNames[ch], line)
	}

	if err := p.Save(width, height, path); err != nil {
		return fmt.Errorf("diagnostics: save: %w", err)
	}
	return nil
}
