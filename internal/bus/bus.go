// Package bus implements the Game Boy's 16-bit address decoder: the
// single arbiter of every mutable memory region, routing guest reads
// and writes to the boot ROM overlay, cartridge, VRAM, WRAM, OAM, the
// I/O register file, HRAM, and IE.
//
// Grounded on thelolagemann-gomeboy/internal/mmu/mmu.go's region
// layout and thelolagemann-gomeboy/internal/io/dma.go's instant OAM
// DMA copy. The PPU and APU never hold long-lived references into Bus
// memory: they pull their control registers and push their computed
// ones through IO/SetIO each tick, so Bus stays the one place guest
// memory actually lives.
package bus

import (
	"github.com/dmgcore/lr35902/internal/cartridge"
	"github.com/dmgcore/lr35902/internal/interrupt"
	"github.com/dmgcore/lr35902/internal/joypad"
	"github.com/dmgcore/lr35902/internal/timer"
)

const (
	vramSize = 0x2000
	wramSize = 0x2000
	oamSize  = 0xA0
	hramSize = 0x7F
	ioSize   = 0x80
)

// Bus owns every mutable memory region of the machine.
type Bus struct {
	vram [vramSize]byte
	wram [wramSize]byte
	oam  [oamSize]byte
	hram [hramSize]byte
	io   [ioSize]byte

	cart *cartridge.Cartridge

	Timer  *timer.Timer
	IRQ    *interrupt.Controller
	Joypad *joypad.Controller
	serial serialStub

	bootROM        []byte
	bootROMEnabled bool

	// apuTrigger latches a 1->write-with-bit7-set edge on NR14/24/34/44
	// so the APU can detect "channel retrigger" writes without Bus
	// importing the apu package. Drained (and cleared) by APU.Tick.
	apuTrigger [4]bool
}

// New constructs a Bus bound to cart. If bootROM is non-nil and
// exactly 256 bytes, it is overlaid on 0x0000-0x00FF until the guest
// writes a non-zero value to 0xFF50.
func New(cart *cartridge.Cartridge, bootROM []byte) *Bus {
	irq := interrupt.NewController()
	b := &Bus{
		cart:    cart,
		Timer:   timer.New(irq),
		IRQ:     irq,
		bootROM: bootROM,
	}
	b.Joypad = joypad.New(irq)
	b.bootROMEnabled = len(bootROM) == 256
	return b
}

func (b *Bus) Read(addr uint16) uint8 {
	switch {
	case addr <= 0x00FF && b.bootROMEnabled:
		return b.bootROM[addr]
	case addr <= 0x7FFF:
		return b.cart.ReadROM(addr)
	case addr <= 0x9FFF:
		return b.vram[addr-0x8000]
	case addr <= 0xBFFF:
		return b.cart.ReadRAM(addr)
	case addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr <= 0xFDFF:
		return b.wram[addr-0xE000]
	case addr <= 0xFE9F:
		return b.oam[addr-0xFE00]
	case addr <= 0xFEFF:
		return 0xFF // unusable region, open bus
	case addr == joypad.Register:
		return b.Joypad.Read(addr)
	case addr == 0xFF01 || addr == 0xFF02:
		return b.serial.Read(addr)
	case addr >= timer.DIVAddr && addr <= timer.TACAddr:
		return b.Timer.Read(addr)
	case addr == interrupt.FlagRegister:
		return b.IRQ.Read(addr)
	case addr <= 0xFF7F:
		return b.io[addr-0xFF00]
	case addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == interrupt.EnableRegister:
		return b.IRQ.Read(addr)
	}
	return 0xFF
}

func (b *Bus) Write(addr uint16, val uint8) {
	switch {
	case addr <= 0x7FFF:
		b.cart.WriteControl(addr, val)
	case addr <= 0x9FFF:
		b.vram[addr-0x8000] = val
	case addr <= 0xBFFF:
		b.cart.WriteRAM(addr, val)
	case addr <= 0xDFFF:
		b.wram[addr-0xC000] = val
	case addr <= 0xFDFF:
		b.wram[addr-0xE000] = val
	case addr <= 0xFE9F:
		b.oam[addr-0xFE00] = val
	case addr <= 0xFEFF:
		// unusable region, writes dropped
	case addr == joypad.Register:
		b.Joypad.Write(addr, val)
	case addr == 0xFF01 || addr == 0xFF02:
		b.serial.Write(addr, val)
	case addr == timer.DIVAddr || (addr >= timer.TIMAAddr && addr <= timer.TACAddr):
		b.Timer.Write(addr, val)
	case addr == interrupt.FlagRegister:
		b.IRQ.Write(addr, val)
	case addr == 0xFF46:
		b.dmaTransfer(val)
	case addr == 0xFF50:
		if val != 0 {
			b.bootROMEnabled = false
		}
	case isTriggerRegister(addr):
		b.io[addr-0xFF00] = val
		if val&0x80 != 0 {
			b.apuTrigger[triggerChannel(addr)] = true
		}
	case addr <= 0xFF7F:
		b.io[addr-0xFF00] = val
	case addr <= 0xFFFE:
		b.hram[addr-0xFF80] = val
	case addr == interrupt.EnableRegister:
		b.IRQ.Write(addr, val)
	}
}

func isTriggerRegister(addr uint16) bool {
	switch addr {
	case 0xFF14, 0xFF19, 0xFF1E, 0xFF23:
		return true
	}
	return false
}

func triggerChannel(addr uint16) int {
	switch addr {
	case 0xFF14:
		return 0
	case 0xFF19:
		return 1
	case 0xFF1E:
		return 2
	default:
		return 3
	}
}

// DrainTrigger reports and clears whether channel ch (0-3) was
// retriggered (NRx4 bit 7 written as 1) since the last call.
func (b *Bus) DrainTrigger(ch int) bool {
	v := b.apuTrigger[ch]
	b.apuTrigger[ch] = false
	return v
}

// dmaTransfer implements the 0xFF46 OAM DMA: 160 bytes are copied from
// value<<8 to OAM. This engine elides the 160-cycle stall real
// hardware imposes on other bus accesses during the transfer, since no
// ROM depends on its precise timing.
func (b *Bus) dmaTransfer(val uint8) {
	src := uint16(val) << 8
	for i := uint16(0); i < 0xA0; i++ {
		b.oam[i] = b.Read(src + i)
	}
}

// Tick advances DIV/TIMA, the cartridge's MBC3 RTC (a no-op for every
// other mapper), and the (stubbed) serial port by cycles master-clock
// ticks.
func (b *Bus) Tick(cycles uint8) {
	b.Timer.Tick(cycles)
	b.cart.Tick(cycles)
	b.serial.Tick(cycles)
}

// IO reads the raw byte backing a guest I/O address in 0xFF00-0xFF7F
// that isn't one of Bus's own typed registers (DIV/TIMA/TMA/TAC, IF,
// JOYP). PPU and APU use this to pull their control registers and
// push their computed ones, keeping Bus the sole owner of the
// underlying storage.
func (b *Bus) IO(addr uint16) uint8 {
	if addr < 0xFF00 || addr > 0xFF7F {
		return 0xFF
	}
	return b.io[addr-0xFF00]
}

// SetIO writes the raw byte backing a guest I/O address, bypassing the
// trigger-edge detection Write performs — used by PPU/APU to publish
// their computed register values (LY, STAT, NR52 status bits) without
// re-triggering their own side effects.
func (b *Bus) SetIO(addr uint16, val uint8) {
	if addr < 0xFF00 || addr > 0xFF7F {
		return
	}
	b.io[addr-0xFF00] = val
}

// VRAMByte reads VRAM at an offset relative to 0x8000 (i.e. in
// [0, 0x2000)), for the PPU's tile/tilemap fetches.
func (b *Bus) VRAMByte(offset uint16) uint8 {
	return b.vram[offset%vramSize]
}

// OAMByte reads OAM byte i (i in [0, 160)), for the PPU's sprite scan.
func (b *Bus) OAMByte(i int) uint8 {
	return b.oam[i]
}

// Cartridge exposes the loaded cartridge for engine-level accessors
// (CartridgeRAM, dirty generation) that don't belong on Bus itself.
func (b *Bus) Cartridge() *cartridge.Cartridge { return b.cart }

// serialStub models the serial port register pair (SB/SC) without
// performing any actual bit transfer: link-cable peripherals are out
// of scope. Writes are retained so games that poll SB/SC for
// presence-detection don't see an obviously broken bus.
type serialStub struct {
	sb, sc uint8
}

func (s *serialStub) Read(addr uint16) uint8 {
	if addr == 0xFF01 {
		return s.sb
	}
	return s.sc | 0x7E
}

func (s *serialStub) Write(addr uint16, val uint8) {
	if addr == 0xFF01 {
		s.sb = val
	} else {
		s.sc = val
	}
}

func (s *serialStub) Tick(uint8) {}
