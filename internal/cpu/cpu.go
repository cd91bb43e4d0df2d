// Package cpu implements the Sharp LR35902 instruction interpreter:
// registers, flags, the full unprefixed and CB-prefixed opcode tables,
// HALT/STOP, and interrupt servicing.
//
// Grounded on thelolagemann-gomeboy/internal/cpu (register-pair
// pointer aliasing, per-opcode-family file split, tickCycle-counts-
// machine-cycles accounting) adapted to an instruction-stepped model:
// Step returns the instruction's cycle count instead of ticking sibling
// components itself — the engine's loop owns feeding that count to
// Bus/PPU/APU.
package cpu

import (
	"fmt"

	"github.com/dmgcore/lr35902/internal/bus"
	"github.com/dmgcore/lr35902/internal/interrupt"
)

type mode uint8

const (
	modeNormal mode = iota
	modeHalted
	modeHaltBug
	modeStopped
)

// UnimplementedOpcode is returned when the guest executes one of the
// handful of bytes the LR35902 leaves truly undefined.
type UnimplementedOpcode struct{ Opcode uint8 }

func (e UnimplementedOpcode) Error() string {
	return fmt.Sprintf("cpu: unimplemented opcode 0x%02X", e.Opcode)
}

// UnimplementedCbOpcode is the CB-prefixed counterpart.
type UnimplementedCbOpcode struct{ Opcode uint8 }

func (e UnimplementedCbOpcode) Error() string {
	return fmt.Sprintf("cpu: unimplemented CB opcode 0x%02X", e.Opcode)
}

// CPU holds architectural state. It is never shared across goroutines:
// Step mutates registers and drives the bus directly.
type CPU struct {
	Registers
	PC, SP uint16

	mode mode
	cycles uint8
}

func New() *CPU {
	c := &CPU{}
	c.Registers.linkPairs()
	c.SP = 0xFFFE
	return c
}

// tick accounts one machine cycle (4 T-states) of work — a memory
// access or an internal-delay cycle — matching gomeboy's tickCycle
// bookkeeping, minus the sibling-component ticking the engine now
// owns.
func (c *CPU) tick() { c.cycles += 4 }

func (c *CPU) fetch(b *bus.Bus) uint8 {
	c.tick()
	v := b.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) readByte(b *bus.Bus, addr uint16) uint8 {
	c.tick()
	return b.Read(addr)
}

func (c *CPU) writeByte(b *bus.Bus, addr uint16, val uint8) {
	c.tick()
	b.Write(addr, val)
}

func (c *CPU) push16(b *bus.Bus, v uint16) {
	c.SP--
	c.writeByte(b, c.SP, uint8(v>>8))
	c.SP--
	c.writeByte(b, c.SP, uint8(v))
}

func (c *CPU) pop16(b *bus.Bus) uint16 {
	lo := c.readByte(b, c.SP)
	c.SP++
	hi := c.readByte(b, c.SP)
	c.SP++
	return uint16(hi)<<8 | uint16(lo)
}

// Step executes exactly one instruction (or one HALT/STOP-mode idle
// cycle, or one pending interrupt dispatch) and returns the number of
// master-clock cycles it consumed (4 per machine cycle).
func (c *CPU) Step(b *bus.Bus) (uint8, error) {
	c.cycles = 0

	// Advance a Pending EI delay before this step's fetch, so it only
	// ever promotes a delay armed by the *previous* instruction. The
	// instruction EI itself belongs to always runs with IME still off.
	b.IRQ.Advance()

	switch c.mode {
	case modeHalted:
		c.tick()
		if b.IRQ.Pending() {
			c.mode = modeNormal
			if b.IRQ.IME() {
				c.serviceInterrupt(b)
			}
		}
		return c.cycles, nil
	case modeStopped:
		c.tick()
		if b.IRQ.PendingKind(interrupt.Joypad) {
			c.mode = modeNormal
			if b.IRQ.IME() {
				c.serviceInterrupt(b)
			}
		}
		return c.cycles, nil
	}

	opcode := c.fetch(b)
	if c.mode == modeHaltBug {
		// the HALT bug fails to increment PC past the opcode that
		// follows a HALT executed with IME disabled and an interrupt
		// already pending: re-fetch the same byte next step.
		c.PC--
		c.mode = modeNormal
	}

	if opcode == 0xCB {
		cb := c.fetch(b)
		fn := cbTable[cb]
		if fn == nil {
			return c.cycles, UnimplementedCbOpcode{Opcode: cb}
		}
		fn(c, b)
	} else {
		fn := table[opcode]
		if fn == nil {
			return c.cycles, UnimplementedOpcode{Opcode: opcode}
		}
		fn(c, b)
	}

	if b.IRQ.IME() && b.IRQ.Pending() {
		c.serviceInterrupt(b)
	}

	return c.cycles, nil
}

func (c *CPU) serviceInterrupt(b *bus.Bus) {
	kind, ok := b.IRQ.NextToService()
	if !ok {
		return
	}
	c.tick()
	c.tick()
	c.push16(b, c.PC)
	b.IRQ.Service(kind)
	c.PC = kind.Vector()
	c.tick()
}

func (c *CPU) halt(b *bus.Bus) {
	if !b.IRQ.IME() && b.IRQ.Pending() {
		c.mode = modeHaltBug
		return
	}
	c.mode = modeHalted
}

func (c *CPU) stop(b *bus.Bus) {
	_ = c.fetch(b) // STOP consumes one more byte
	c.mode = modeStopped
}
