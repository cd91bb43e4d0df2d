// Package engine assembles the CPU, Bus, PPU and APU into the single
// frame-stepped machine the out-of-scope host shell drives: Load a ROM,
// call StepFrame repeatedly, read Framebuffer and drain TakeAudioSample
// after each call, and forward input via SetButtons.
//
// Grounded on thelolagemann-gomeboy/internal/gameboy/gameboy.go's
// NewGameBoy wiring and Frame method, and options.go's functional-options
// idiom, narrowed to a host-agnostic contract: no Run(window), no
// Logger, no accessories — those are pkg/ and cmd/ concerns, not the
// engine's.
package engine

import (
	"github.com/dmgcore/lr35902/internal/apu"
	"github.com/dmgcore/lr35902/internal/bus"
	"github.com/dmgcore/lr35902/internal/cartridge"
	"github.com/dmgcore/lr35902/internal/cpu"
	"github.com/dmgcore/lr35902/internal/ppu"
)

// Engine owns every machine subsystem and runs the core data-flow
// loop: CPU steps one instruction, Bus/PPU/APU each advance by the
// returned cycle count, until the PPU signals a completed frame.
type Engine struct {
	cpu *cpu.CPU
	bus *bus.Bus
	ppu *ppu.PPU
	apu *apu.APU
}

// Option configures an Engine at construction time, mirroring
// gomeboy's GameBoyOpt/Opt functional-options pattern.
type Option func(*Engine)

// WithBootROM overlays a 256-byte boot ROM at 0x0000-0x00FF and resets
// the CPU to start execution there, instead of the post-boot state Load
// otherwise establishes directly.
func WithBootROM(rom []byte) Option {
	return func(e *Engine) {
		e.bus = bus.New(e.bus.Cartridge(), rom)
		if len(rom) != 256 {
			return
		}
		e.cpu.PC = 0x0000
		e.cpu.SP = 0x0000
		e.cpu.A, e.cpu.F = 0x00, 0x00
		e.cpu.B, e.cpu.C = 0x00, 0x00
		e.cpu.D, e.cpu.E = 0x00, 0x00
		e.cpu.H, e.cpu.L = 0x00, 0x00
	}
}

// WithRTCMode selects MBC3's real-time-clock advancement strategy; a
// no-op on carts without an RTC.
func WithRTCMode(mode cartridge.RtcMode) Option {
	return func(e *Engine) {
		e.bus.Cartridge().SetRTCMode(mode)
	}
}

// WithSampleRate sets the host audio sample rate up front, equivalent
// to calling SetSampleRate immediately after Load.
func WithSampleRate(hz float64) Option {
	return func(e *Engine) {
		e.apu.SetSampleRate(hz)
	}
}

// postBootRegisters mirrors the values real DMG hardware leaves behind
// once its internal boot ROM finishes, for carts loaded without one —
// skipping these would leave every ROM that assumes post-boot state,
// i.e. nearly all of them, broken.
var postBootRegisters = map[uint16]uint8{
	0xFF10: 0x80, 0xFF11: 0xBF, 0xFF12: 0xF3, 0xFF14: 0xBF,
	0xFF16: 0x3F, 0xFF17: 0x00, 0xFF19: 0xBF,
	0xFF1A: 0x7F, 0xFF1B: 0xFF, 0xFF1C: 0x9F, 0xFF1D: 0xFF, 0xFF1E: 0xBF,
	0xFF20: 0xFF, 0xFF21: 0x00, 0xFF22: 0x00, 0xFF23: 0xBF,
	0xFF24: 0x77, 0xFF25: 0xF3, 0xFF26: 0xF1,
	0xFF40: 0x91, 0xFF41: 0x85, 0xFF47: 0xFC, 0xFF48: 0xFF, 0xFF49: 0xFF,
}

// Load parses rom's header, constructs its matching MBC, and returns a
// ready-to-step Engine in the post-boot-ROM state real hardware leaves
// behind. Pass WithBootROM to instead start execution at 0x0000 with a
// real boot ROM image.
func Load(rom []byte, opts ...Option) (*Engine, error) {
	cart, err := cartridge.FromBytes(rom)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cpu: cpu.New(),
		bus: bus.New(cart, nil),
		ppu: ppu.New(),
		apu: apu.New(),
	}

	e.cpu.PC = 0x0100
	e.cpu.SP = 0xFFFE
	e.cpu.A, e.cpu.F = 0x01, 0xB0
	e.cpu.B, e.cpu.C = 0x00, 0x13
	e.cpu.D, e.cpu.E = 0x00, 0xD8
	e.cpu.H, e.cpu.L = 0x01, 0x4D
	for addr, val := range postBootRegisters {
		e.bus.SetIO(addr, val)
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// StepFrame runs the CPU/Bus/PPU/APU loop until the PPU completes one
// frame, returning the total master-clock cycles executed.
func (e *Engine) StepFrame() (uint64, error) {
	var total uint64
	for {
		cycles, err := e.cpu.Step(e.bus)
		if err != nil {
			return total, err
		}
		total += uint64(cycles)

		e.bus.Tick(cycles)
		e.ppu.Tick(cycles, e.bus)
		e.apu.Tick(cycles, e.bus)

		if e.ppu.FrameReady() {
			return total, nil
		}
	}
}

// Framebuffer returns the 160x144 RGB framebuffer produced by the most
// recent StepFrame call. Valid until the next StepFrame call.
func (e *Engine) Framebuffer() *[ppu.ScreenHeight][ppu.ScreenWidth][3]uint8 {
	return &e.ppu.Framebuffer
}

// TakeAudioSample drains one resampled stereo frame, if one is queued.
func (e *Engine) TakeAudioSample() (int16, int16, bool) {
	s, ok := e.apu.TakeSample()
	return s.Left, s.Right, ok
}

// SetSampleRate changes the host sample rate the APU resamples to.
func (e *Engine) SetSampleRate(hz float64) { e.apu.SetSampleRate(hz) }

// ChannelAmplitudes exposes each APU channel's current unmixed
// amplitude, for a diagnostic waveform trace; no normal playback path
// needs this.
func (e *Engine) ChannelAmplitudes() [4]float32 { return e.apu.ChannelAmplitudes() }

// SetButtons replaces the held-button mask (bit layout matching
// internal/joypad's constants).
func (e *Engine) SetButtons(mask uint8) { e.bus.Joypad.SetButtons(mask) }

// CartridgeRAM exposes the cartridge's external RAM for an out-of-scope
// save manager to persist.
func (e *Engine) CartridgeRAM() []byte { return e.bus.Cartridge().RAM() }

// CartridgeRAMDirtyGeneration returns the monotone counter incremented
// on every guest RAM write since load (or since ClearCartridgeRAMDirty).
func (e *Engine) CartridgeRAMDirtyGeneration() uint64 {
	return e.bus.Cartridge().RAMDirtyGeneration()
}

// ClearCartridgeRAMDirty is called by an out-of-scope save manager once
// it has durably flushed cartridge RAM to disk.
func (e *Engine) ClearCartridgeRAMDirty() { e.bus.Cartridge().ClearRAMDirty() }

// LoadCartridgeRAM restores previously saved external RAM, e.g. on
// resume from a save file.
func (e *Engine) LoadCartridgeRAM(data []byte) { e.bus.Cartridge().LoadRAM(data) }
