// Package apu implements the Game Boy's audio processing unit: two
// pulse channels, a user-waveform channel, a noise channel, a 512 Hz
// frame sequencer driving their length/envelope/sweep units, and a
// stereo mixer that downsamples straight to the host's sample rate via
// a ratio counter.
//
// Grounded on thelolagemann-gomeboy/internal/apu/apu.go's frame
// sequencer and TickM structure, with its direct SDL2 device-queue
// coupling removed: that concern belongs to pkg/audio, and this
// package only produces drained (int16, int16) sample pairs.
// Driven by Tick(cycles, bus) pulling NR1x-NR5x through bus.IO and
// reacting to bus.DrainTrigger, the same back-channel internal/bus
// documents for internal/ppu.
package apu

import "github.com/dmgcore/lr35902/internal/bus"

const cpuClockHz = 4194304.0

const frameSequencerPeriod = cpuClockHz / 512 // 8192 T-cycles

const (
	nr10Addr uint16 = 0xFF10
	nr11Addr uint16 = 0xFF11
	nr12Addr uint16 = 0xFF12
	nr13Addr uint16 = 0xFF13
	nr14Addr uint16 = 0xFF14

	nr21Addr uint16 = 0xFF16
	nr22Addr uint16 = 0xFF17
	nr23Addr uint16 = 0xFF18
	nr24Addr uint16 = 0xFF19

	nr30Addr uint16 = 0xFF1A
	nr31Addr uint16 = 0xFF1B
	nr32Addr uint16 = 0xFF1C
	nr33Addr uint16 = 0xFF1D
	nr34Addr uint16 = 0xFF1E

	nr41Addr uint16 = 0xFF20
	nr42Addr uint16 = 0xFF21
	nr43Addr uint16 = 0xFF22
	nr44Addr uint16 = 0xFF23

	nr50Addr uint16 = 0xFF24
	nr51Addr uint16 = 0xFF25
	nr52Addr uint16 = 0xFF26

	waveRAMBase uint16 = 0xFF30
)

// Sample is one drained stereo output frame, 16-bit signed PCM.
type Sample struct {
	Left, Right int16
}

// APU owns the four channels, the frame sequencer, and the output
// queue the engine drains once per StepFrame call.
type APU struct {
	ch1 *pulse
	ch2 *pulse
	ch3 *wave
	ch4 *noise

	masterEnable bool

	volLeft, volRight       uint8
	leftEnable, rightEnable [4]bool

	frameSeqCounter float64
	frameSeqStep    uint8
	firstHalfPeriod bool

	sampleRateHz    float64
	cyclesPerSample float64
	sampleAcc       float64

	out []Sample

	lastNR50, lastNR51 int16
}

const maxQueuedSamples = 1 << 14 // ~0.37s at 44.1kHz, generous slack against a slow drain

// New constructs an APU. Default host sample rate is 44100 Hz; call
// SetSampleRate to match the host audio device.
func New() *APU {
	a := &APU{
		ch1:             newPulse(true),
		ch2:             newPulse(false),
		ch3:             newWave(),
		ch4:             newNoise(),
		frameSeqCounter: frameSequencerPeriod,
		lastNR50:        -1,
		lastNR51:        -1,
	}
	a.SetSampleRate(44100)
	return a
}

// SetSampleRate changes the host output sample rate the mixer
// downsamples to.
func (a *APU) SetSampleRate(hz float64) {
	if hz <= 0 {
		hz = 44100
	}
	a.sampleRateHz = hz
	a.cyclesPerSample = cpuClockHz / hz
}

// ChannelAmplitudes returns each of the four channels' current
// unmixed amplitude (0 for a muted/disabled channel), in channel
// order 1-4. Exposed for diagnostic waveform tracing; the stereo
// mixer (mixSample) is the only consumer of these values on the
// normal sampling path.
func (a *APU) ChannelAmplitudes() [4]float32 {
	return [4]float32{
		a.ch1.amplitude(),
		a.ch2.amplitude(),
		a.ch3.amplitude(),
		a.ch4.amplitude(),
	}
}

// TakeSample drains the oldest queued stereo sample, if any.
func (a *APU) TakeSample() (Sample, bool) {
	if len(a.out) == 0 {
		return Sample{}, false
	}
	s := a.out[0]
	a.out = a.out[1:]
	return s, true
}

// Tick advances the APU by cycles master-clock ticks, stepping every
// channel's frequency timer, the frame sequencer, and the output
// ratio-counter resampler.
func (a *APU) Tick(cycles uint8, b *bus.Bus) {
	a.pullGlobalRegisters(b)
	a.pullChannelRegisters(b)

	for i := uint8(0); i < cycles; i++ {
		if a.masterEnable {
			a.frameSeqCounter--
			if a.frameSeqCounter <= 0 {
				a.frameSeqCounter += frameSequencerPeriod
				a.stepFrameSequencer()
			}
			a.ch1.step()
			a.ch2.step()
			a.ch3.step(b)
			a.ch4.step()
		}

		a.sampleAcc++
		if a.sampleAcc >= a.cyclesPerSample {
			a.sampleAcc -= a.cyclesPerSample
			a.mixSample()
		}
	}

	a.publishNR52(b)
}

func (a *APU) stepFrameSequencer() {
	a.firstHalfPeriod = a.frameSeqStep&1 == 0
	switch a.frameSeqStep {
	case 0, 4:
		a.clockLength()
	case 2, 6:
		a.clockLength()
		a.ch1.sweepClock()
	case 7:
		a.ch1.env.clock()
		a.ch2.env.clock()
		a.ch4.env.clock()
	}
	a.frameSeqStep = (a.frameSeqStep + 1) & 7
}

func (a *APU) clockLength() {
	a.ch1.length.clock(&a.ch1.enabled)
	a.ch2.length.clock(&a.ch2.enabled)
	a.ch3.length.clock(&a.ch3.enabled)
	a.ch4.length.clock(&a.ch4.enabled)
}

func (a *APU) mixSample() {
	amps := [4]float32{a.ch1.amplitude(), a.ch2.amplitude(), a.ch3.amplitude(), a.ch4.amplitude()}

	var left, right float32
	for i, amp := range amps {
		if a.leftEnable[i] {
			left += amp
		}
		if a.rightEnable[i] {
			right += amp
		}
	}
	left = (float32(a.volLeft) / 7) * left / 4
	right = (float32(a.volRight) / 7) * right / 4

	if len(a.out) >= maxQueuedSamples {
		a.out = a.out[1:] // drop the oldest rather than block or grow unbounded
	}
	a.out = append(a.out, Sample{
		Left:  int16(left * 32767),
		Right: int16(right * 32767),
	})
}

func (a *APU) pullGlobalRegisters(b *bus.Bus) {
	nr52 := b.IO(nr52Addr)
	wasEnabled := a.masterEnable
	a.masterEnable = nr52&0x80 != 0
	if wasEnabled && !a.masterEnable {
		a.ch1.enabled, a.ch2.enabled, a.ch3.enabled, a.ch4.enabled = false, false, false, false
	}
	if !wasEnabled && a.masterEnable {
		a.frameSeqStep = 0
	}
	if !a.masterEnable {
		return
	}

	nr50 := b.IO(nr50Addr)
	if int16(nr50) != a.lastNR50 {
		a.lastNR50 = int16(nr50)
		a.volRight = nr50 & 0x07
		a.volLeft = (nr50 >> 4) & 0x07
	}
	nr51 := b.IO(nr51Addr)
	if int16(nr51) != a.lastNR51 {
		a.lastNR51 = int16(nr51)
		for i := 0; i < 4; i++ {
			a.rightEnable[i] = nr51&(1<<i) != 0
			a.leftEnable[i] = nr51&(1<<(i+4)) != 0
		}
	}
}

func (a *APU) pullChannelRegisters(b *bus.Bus) {
	if !a.masterEnable {
		return
	}

	a.ch1.pullSweep(b.IO(nr10Addr))
	a.ch1.pullNR1(b.IO(nr11Addr))
	a.ch1.pullNR2(b.IO(nr12Addr))
	a.ch1.pullFreqAndControl(b.IO(nr13Addr), b.IO(nr14Addr))
	if b.DrainTrigger(0) {
		a.ch1.trigger()
	}

	a.ch2.pullNR1(b.IO(nr21Addr))
	a.ch2.pullNR2(b.IO(nr22Addr))
	a.ch2.pullFreqAndControl(b.IO(nr23Addr), b.IO(nr24Addr))
	if b.DrainTrigger(1) {
		a.ch2.trigger()
	}

	a.ch3.pullNR0(b.IO(nr30Addr))
	a.ch3.pullNR1(b.IO(nr31Addr))
	a.ch3.pullNR2(b.IO(nr32Addr))
	a.ch3.pullFreqAndControl(b.IO(nr33Addr), b.IO(nr34Addr))
	if b.DrainTrigger(2) {
		a.ch3.trigger()
	}

	a.ch4.pullNR1(b.IO(nr41Addr))
	a.ch4.pullNR2(b.IO(nr42Addr))
	a.ch4.pullNR3(b.IO(nr43Addr))
	a.ch4.pullControl(b.IO(nr44Addr))
	if b.DrainTrigger(3) {
		a.ch4.trigger()
	}
}

func (a *APU) publishNR52(b *bus.Bus) {
	v := uint8(0x70)
	if a.masterEnable {
		v |= 0x80
	}
	if a.ch1.enabled {
		v |= 1 << 0
	}
	if a.ch2.enabled {
		v |= 1 << 1
	}
	if a.ch3.enabled {
		v |= 1 << 2
	}
	if a.ch4.enabled {
		v |= 1 << 3
	}
	b.SetIO(nr52Addr, v)
}
