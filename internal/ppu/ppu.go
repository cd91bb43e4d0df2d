// Package ppu converts VRAM tile data, tile maps, and OAM sprites into
// a 160x144 four-shade framebuffer, driving LY/STAT and the
// VBlank/STAT interrupts as it goes.
//
// Grounded on thelolagemann-gomeboy/internal/ppu's mode-schedule and
// STAT-interrupt-on-transition structure, stripped of its CGB tile
// banks/colour palettes/HDMA (out of scope) and adapted to a PPU/Bus
// back-channel: rather than holding a *mmu.MMU and registering
// hardware callbacks, this PPU is driven externally by Tick(cycles,
// bus) and pulls/pushes its registers through bus.IO/SetIO each call,
// so Bus stays the sole owner of memory.
package ppu

import (
	"github.com/dmgcore/lr35902/internal/bus"
	"github.com/dmgcore/lr35902/internal/interrupt"
)

const (
	vblankKind = interrupt.VBlank
	statKind   = interrupt.STAT
)

const (
	ScreenWidth  = 160
	ScreenHeight = 144

	dotsPerLine  = 456
	linesPerFrame = 154
	oamDots      = 80
	transferDots = 172
	// hblankDots = 456 - 80 - 172 = 204
)

const (
	lcdcAddr uint16 = 0xFF40
	statAddr uint16 = 0xFF41
	scyAddr  uint16 = 0xFF42
	scxAddr  uint16 = 0xFF43
	lyAddr   uint16 = 0xFF44
	lycAddr  uint16 = 0xFF45
	bgpAddr  uint16 = 0xFF47
	obp0Addr uint16 = 0xFF48
	obp1Addr uint16 = 0xFF49
	wyAddr   uint16 = 0xFF4A
	wxAddr   uint16 = 0xFF4B
)

// LCDC bit masks.
const (
	lcdcBGEnable       = 1 << 0
	lcdcObjEnable      = 1 << 1
	lcdcObjSize        = 1 << 2
	lcdcBGTileMap      = 1 << 3
	lcdcTileData       = 1 << 4
	lcdcWindowEnable   = 1 << 5
	lcdcWindowTileMap  = 1 << 6
	lcdcDisplayEnable  = 1 << 7
)

// Mode is the STAT mode number (bits 0-1 of STAT).
type Mode uint8

const (
	ModeHBlank Mode = iota
	ModeVBlank
	ModeOAMSearch
	ModeTransfer
)

// PPU owns the dot accumulator, the scanline-rendering state, and the
// output framebuffer. It never keeps a long-lived reference to Bus
// memory: VRAM/OAM bytes and every control register are re-read from
// Bus on demand each Tick.
type PPU struct {
	dot  uint16
	line uint8
	mode Mode

	windowLine uint8
	frameDone  bool

	Framebuffer [ScreenHeight][ScreenWidth][3]uint8
}

func New() *PPU { return &PPU{} }

// FrameReady reports (and clears) whether a full frame completed
// since the last call, for the engine's step_frame loop to detect.
func (p *PPU) FrameReady() bool {
	v := p.frameDone
	p.frameDone = false
	return v
}

func (p *PPU) lcdc(b *bus.Bus) uint8 { return b.IO(lcdcAddr) }

// Tick advances the PPU by cycles master-clock ticks.
func (p *PPU) Tick(cycles uint8, b *bus.Bus) {
	if p.lcdc(b)&lcdcDisplayEnable == 0 {
		p.disabledTick(b)
		return
	}

	for i := uint16(0); i < uint16(cycles); i++ {
		p.dot++
		if p.dot >= dotsPerLine {
			p.dot = 0
			p.nextLine(b)
		}
		p.applyModeForDot(b)
	}
}

func (p *PPU) disabledTick(b *bus.Bus) {
	p.dot, p.line = 0, 0
	p.mode = ModeHBlank
	b.SetIO(lyAddr, 0)
	p.publishSTAT(b, false)
}

// applyModeForDot enters whichever mode p.dot/p.line now calls for, if
// it isn't already the current mode. Boundaries are checked with >=
// rather than == so a single-dot-per-iteration Tick never skips one.
func (p *PPU) applyModeForDot(b *bus.Bus) {
	if p.line >= ScreenHeight {
		if p.mode != ModeVBlank {
			p.enterMode(b, ModeVBlank)
		}
		return
	}
	switch {
	case p.dot < oamDots:
		if p.mode != ModeOAMSearch {
			p.enterMode(b, ModeOAMSearch)
		}
	case p.dot < oamDots+transferDots:
		if p.mode != ModeTransfer {
			p.enterMode(b, ModeTransfer)
		}
	default:
		if p.mode != ModeHBlank {
			p.renderLine(b, p.line)
			p.enterMode(b, ModeHBlank)
		}
	}
}

func (p *PPU) nextLine(b *bus.Bus) {
	p.line++
	if p.line >= linesPerFrame {
		p.line = 0
		p.windowLine = 0
		p.frameDone = true
	}
	b.SetIO(lyAddr, p.line)
	p.checkLYC(b)
	if p.line == ScreenHeight {
		b.IRQ.Request(vblankKind)
	}
}

func (p *PPU) enterMode(b *bus.Bus, m Mode) {
	p.mode = m
	enableBit := uint8(0)
	switch m {
	case ModeHBlank:
		enableBit = 1 << 3
	case ModeVBlank:
		enableBit = 1 << 4
	case ModeOAMSearch:
		enableBit = 1 << 5
	}
	p.publishSTAT(b, b.IO(statAddr)&enableBit != 0 && m != ModeTransfer)
}

func (p *PPU) checkLYC(b *bus.Bus) {
	match := p.line == b.IO(lycAddr)
	statEnable := b.IO(statAddr)&(1<<6) != 0
	p.publishSTATWithCoincidence(b, match, match && statEnable)
}

func (p *PPU) publishSTAT(b *bus.Bus, raiseStat bool) {
	match := p.line == b.IO(lycAddr)
	p.publishSTATWithCoincidence(b, match, raiseStat)
}

func (p *PPU) publishSTATWithCoincidence(b *bus.Bus, coincidence bool, raiseStat bool) {
	stat := b.IO(statAddr) & 0xF8
	stat |= uint8(p.mode)
	if coincidence {
		stat |= 1 << 2
	}
	b.SetIO(statAddr, stat)
	if raiseStat {
		b.IRQ.Request(statKind)
	}
}
