package cpu

import "github.com/dmgcore/lr35902/internal/bus"

// add8 computes a+v(+carry) and sets flags the LR35902 way: Z on
// result, N=0, H on low-nibble carry, C on byte overflow.
func (c *CPU) add8(a, v uint8, carryIn bool) uint8 {
	cin := uint8(0)
	if carryIn {
		cin = 1
	}
	result := uint16(a) + uint16(v) + uint16(cin)
	c.setFlag(FlagHalfCarry, (a&0xF)+(v&0xF)+cin > 0xF)
	c.setFlag(FlagCarry, result > 0xFF)
	c.setFlag(FlagSubtract, false)
	c.setZFromResult(uint8(result))
	return uint8(result)
}

// sub8 computes a-v(-borrow) and sets flags: Z on result, N=1, H on
// low-nibble borrow, C on byte borrow.
func (c *CPU) sub8(a, v uint8, borrowIn bool) uint8 {
	bin := uint8(0)
	if borrowIn {
		bin = 1
	}
	result := int16(a) - int16(v) - int16(bin)
	c.setFlag(FlagHalfCarry, int16(a&0xF)-int16(v&0xF)-int16(bin) < 0)
	c.setFlag(FlagCarry, result < 0)
	c.setFlag(FlagSubtract, true)
	c.setZFromResult(uint8(result))
	return uint8(result)
}

func (c *CPU) and8(a, v uint8) uint8 {
	r := a & v
	c.setFlag(FlagSubtract, false)
	c.setFlag(FlagHalfCarry, true)
	c.setFlag(FlagCarry, false)
	c.setZFromResult(r)
	return r
}

func (c *CPU) or8(a, v uint8) uint8 {
	r := a | v
	c.setFlag(FlagSubtract, false)
	c.setFlag(FlagHalfCarry, false)
	c.setFlag(FlagCarry, false)
	c.setZFromResult(r)
	return r
}

func (c *CPU) xor8(a, v uint8) uint8 {
	r := a ^ v
	c.setFlag(FlagSubtract, false)
	c.setFlag(FlagHalfCarry, false)
	c.setFlag(FlagCarry, false)
	c.setZFromResult(r)
	return r
}

// inc8 / dec8 implement INC r / DEC r: both leave C untouched.
func (c *CPU) inc8(v uint8) uint8 {
	r := v + 1
	c.setFlag(FlagHalfCarry, v&0xF == 0xF)
	c.setFlag(FlagSubtract, false)
	c.setZFromResult(r)
	return r
}

func (c *CPU) dec8(v uint8) uint8 {
	r := v - 1
	c.setFlag(FlagHalfCarry, v&0xF == 0)
	c.setFlag(FlagSubtract, true)
	c.setZFromResult(r)
	return r
}

// addHL16 implements ADD HL,rr: N=0, H on bit-11 carry, C on bit-15
// carry, Z preserved.
func (c *CPU) addHL16(v uint16) {
	hl := c.HL.Uint16()
	result := uint32(hl) + uint32(v)
	c.setFlag(FlagHalfCarry, (hl&0x0FFF)+(v&0x0FFF) > 0x0FFF)
	c.setFlag(FlagCarry, result > 0xFFFF)
	c.setFlag(FlagSubtract, false)
	c.HL.SetUint16(uint16(result))
}

// addSPr8 implements ADD SP,r8 and the SP-relative half of
// LD HL,SP+r8: Z=0, N=0, H/C computed as if adding the unsigned low
// byte (matches the documented LR35902 quirk).
func (c *CPU) addSPr8(b *bus.Bus) uint16 {
	offset := int8(c.fetch(b))
	sp := c.SP
	result := uint16(int32(sp) + int32(offset))
	c.setFlag(FlagZero, false)
	c.setFlag(FlagSubtract, false)
	c.setFlag(FlagHalfCarry, (sp&0xF)+(uint16(uint8(offset))&0xF) > 0xF)
	c.setFlag(FlagCarry, (sp&0xFF)+uint16(uint8(offset)) > 0xFF)
	return result
}

// daa implements DAA: after a BCD add/sub, adjusts A and C using N/H/C
// per the standard correction table.
func (c *CPU) daa() {
	a := c.A
	carry := c.flag(FlagCarry)
	if !c.flag(FlagSubtract) {
		if c.flag(FlagCarry) || a > 0x99 {
			a += 0x60
			carry = true
		}
		if c.flag(FlagHalfCarry) || a&0x0F > 0x09 {
			a += 0x06
		}
	} else {
		if c.flag(FlagCarry) {
			a -= 0x60
		}
		if c.flag(FlagHalfCarry) {
			a -= 0x06
		}
	}
	c.setFlag(FlagCarry, carry)
	c.setFlag(FlagHalfCarry, false)
	c.setZFromResult(a)
	c.A = a
}
