package cpu

import "github.com/dmgcore/lr35902/internal/bus"

// regPtr maps the standard 3-bit register encoding (0=B,1=C,2=D,3=E,
// 4=H,5=L,7=A) used throughout the opcode tables to a register
// pointer. Index 6 ((HL)) is not a plain register and is handled by
// callers via get8/set8 instead.
func (c *CPU) regPtr(idx uint8) *uint8 {
	switch idx {
	case 0:
		return &c.B
	case 1:
		return &c.C
	case 2:
		return &c.D
	case 3:
		return &c.E
	case 4:
		return &c.H
	case 5:
		return &c.L
	case 7:
		return &c.A
	}
	panic("cpu: regPtr called with (HL) index")
}

// get8 reads the 3-bit-encoded operand idx, fetching through (HL) via
// the bus when idx==6.
func (c *CPU) get8(b *bus.Bus, idx uint8) uint8 {
	if idx == 6 {
		return c.readByte(b, c.HL.Uint16())
	}
	return *c.regPtr(idx)
}

// set8 writes the 3-bit-encoded operand idx, storing through (HL) via
// the bus when idx==6.
func (c *CPU) set8(b *bus.Bus, idx uint8, val uint8) {
	if idx == 6 {
		c.writeByte(b, c.HL.Uint16(), val)
		return
	}
	*c.regPtr(idx) = val
}
