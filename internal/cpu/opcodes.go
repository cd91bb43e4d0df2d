package cpu

import "github.com/dmgcore/lr35902/internal/bus"

// table and cbTable are the unprefixed and CB-prefixed opcode
// dispatch tables. Regular families (LD r,r'; ALU A,r; INC/DEC r; all
// eight CB rotate/shift/bit/res/set families) are generated by the
// init() loops below, matching the *semantics* of gomeboy's 256-entry
// hand-written table without 256 near-duplicate literal cases.
// Irregular opcodes (loads with immediates, control flow, 16-bit
// arithmetic, the misc block) are listed individually, in gomeboy's
// per-instruction style.
var table [256]func(c *CPU, b *bus.Bus)
var cbTable [256]func(c *CPU, b *bus.Bus)

// dd-style register pair (BC, DE, HL, SP), used by LD rr,d16 / INC rr
// / DEC rr / ADD HL,rr.
func (c *CPU) ddGet(which uint8) uint16 {
	switch which {
	case 0:
		return c.BC.Uint16()
	case 1:
		return c.DE.Uint16()
	case 2:
		return c.HL.Uint16()
	default:
		return c.SP
	}
}

func (c *CPU) ddSet(which uint8, v uint16) {
	switch which {
	case 0:
		c.BC.SetUint16(v)
	case 1:
		c.DE.SetUint16(v)
	case 2:
		c.HL.SetUint16(v)
	default:
		c.SP = v
	}
}

func init() {
	// LD r,r' (0x40-0x7F), minus 0x76 (HALT).
	for dst := uint8(0); dst < 8; dst++ {
		for src := uint8(0); src < 8; src++ {
			op := 0x40 + dst*8 + src
			if op == 0x76 {
				continue
			}
			d, s := dst, src
			table[op] = func(c *CPU, b *bus.Bus) {
				c.set8(b, d, c.get8(b, s))
			}
		}
	}
	table[0x76] = func(c *CPU, b *bus.Bus) { c.halt(b) }

	// ALU A,r (0x80-0xBF): ADD,ADC,SUB,SBC,AND,XOR,OR,CP.
	aluOps := [8]func(c *CPU, v uint8){
		func(c *CPU, v uint8) { c.A = c.add8(c.A, v, false) },
		func(c *CPU, v uint8) { c.A = c.add8(c.A, v, c.flag(FlagCarry)) },
		func(c *CPU, v uint8) { c.A = c.sub8(c.A, v, false) },
		func(c *CPU, v uint8) { c.A = c.sub8(c.A, v, c.flag(FlagCarry)) },
		func(c *CPU, v uint8) { c.A = c.and8(c.A, v) },
		func(c *CPU, v uint8) { c.A = c.xor8(c.A, v) },
		func(c *CPU, v uint8) { c.A = c.or8(c.A, v) },
		func(c *CPU, v uint8) { c.sub8(c.A, v, false) }, // CP discards the result
	}
	for opIdx := uint8(0); opIdx < 8; opIdx++ {
		for r := uint8(0); r < 8; r++ {
			op := 0x80 + opIdx*8 + r
			fn, reg := aluOps[opIdx], r
			table[op] = func(c *CPU, b *bus.Bus) { fn(c, c.get8(b, reg)) }
		}
	}

	// INC r / DEC r (0x04+8k, 0x05+8k for k=0..7).
	for r := uint8(0); r < 8; r++ {
		reg := r
		table[0x04+reg*8] = func(c *CPU, b *bus.Bus) {
			c.set8(b, reg, c.inc8(c.get8(b, reg)))
		}
		table[0x05+reg*8] = func(c *CPU, b *bus.Bus) {
			c.set8(b, reg, c.dec8(c.get8(b, reg)))
		}
	}

	// LD r,d8 (0x06+8k).
	for r := uint8(0); r < 8; r++ {
		reg := r
		table[0x06+reg*8] = func(c *CPU, b *bus.Bus) {
			c.set8(b, reg, c.fetch(b))
		}
	}

	registerIrregularOpcodes()
	registerCBTable()
}

func registerIrregularOpcodes() {
	table[0x00] = func(c *CPU, b *bus.Bus) {}

	// 16-bit loads.
	for dd := uint8(0); dd < 4; dd++ {
		which := dd
		table[0x01+dd*0x10] = func(c *CPU, b *bus.Bus) { c.ddSet(which, c.fetchWord(b)) }
	}
	table[0x02] = func(c *CPU, b *bus.Bus) { c.writeByte(b, c.BC.Uint16(), c.A) }
	table[0x12] = func(c *CPU, b *bus.Bus) { c.writeByte(b, c.DE.Uint16(), c.A) }
	table[0x22] = func(c *CPU, b *bus.Bus) {
		c.writeByte(b, c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}
	table[0x32] = func(c *CPU, b *bus.Bus) {
		c.writeByte(b, c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}
	table[0x0A] = func(c *CPU, b *bus.Bus) { c.A = c.readByte(b, c.BC.Uint16()) }
	table[0x1A] = func(c *CPU, b *bus.Bus) { c.A = c.readByte(b, c.DE.Uint16()) }
	table[0x2A] = func(c *CPU, b *bus.Bus) {
		c.A = c.readByte(b, c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}
	table[0x3A] = func(c *CPU, b *bus.Bus) {
		c.A = c.readByte(b, c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}
	table[0x08] = func(c *CPU, b *bus.Bus) {
		addr := c.fetchWord(b)
		c.writeByte(b, addr, uint8(c.SP))
		c.writeByte(b, addr+1, uint8(c.SP>>8))
	}
	table[0xF9] = func(c *CPU, b *bus.Bus) { c.tick(); c.SP = c.HL.Uint16() }
	table[0xF8] = func(c *CPU, b *bus.Bus) {
		c.tick()
		c.HL.SetUint16(c.addSPr8(b))
	}
	table[0xE8] = func(c *CPU, b *bus.Bus) {
		c.SP = c.addSPr8(b)
		c.tick()
		c.tick()
	}

	// 16-bit INC/DEC (internal, untouched flags, one extra internal cycle).
	for dd := uint8(0); dd < 4; dd++ {
		which := dd
		table[0x03+dd*0x10] = func(c *CPU, b *bus.Bus) { c.tick(); c.ddSet(which, c.ddGet(which)+1) }
		table[0x0B+dd*0x10] = func(c *CPU, b *bus.Bus) { c.tick(); c.ddSet(which, c.ddGet(which)-1) }
		table[0x09+dd*0x10] = func(c *CPU, b *bus.Bus) { c.tick(); c.addHL16(c.ddGet(which)) }
	}

	// PUSH/POP (qq encoding: BC,DE,HL,AF).
	qqGet := func(c *CPU, which uint8) uint16 {
		switch which {
		case 0:
			return c.BC.Uint16()
		case 1:
			return c.DE.Uint16()
		case 2:
			return c.HL.Uint16()
		default:
			return c.AF.Uint16()
		}
	}
	qqSet := func(c *CPU, which uint8, v uint16) {
		switch which {
		case 0:
			c.BC.SetUint16(v)
		case 1:
			c.DE.SetUint16(v)
		case 2:
			c.HL.SetUint16(v)
		default:
			c.AF.SetUint16(v & 0xFFF0) // F's low 4 bits are always zero
		}
	}
	for qq := uint8(0); qq < 4; qq++ {
		which := qq
		table[0xC5+qq*0x10] = func(c *CPU, b *bus.Bus) { c.tick(); c.push16(b, qqGet(c, which)) }
		table[0xC1+qq*0x10] = func(c *CPU, b *bus.Bus) { qqSet(c, which, c.pop16(b)) }
	}

	// Rotates on A (always clear Z).
	table[0x07] = func(c *CPU, b *bus.Bus) { c.A = c.rlc(c.A); c.setFlag(FlagZero, false) }
	table[0x0F] = func(c *CPU, b *bus.Bus) { c.A = c.rrc(c.A); c.setFlag(FlagZero, false) }
	table[0x17] = func(c *CPU, b *bus.Bus) { c.A = c.rl(c.A); c.setFlag(FlagZero, false) }
	table[0x1F] = func(c *CPU, b *bus.Bus) { c.A = c.rr(c.A); c.setFlag(FlagZero, false) }

	table[0x27] = func(c *CPU, b *bus.Bus) { c.daa() }
	table[0x2F] = func(c *CPU, b *bus.Bus) {
		c.A = ^c.A
		c.setFlag(FlagSubtract, true)
		c.setFlag(FlagHalfCarry, true)
	}
	table[0x37] = func(c *CPU, b *bus.Bus) {
		c.setFlag(FlagSubtract, false)
		c.setFlag(FlagHalfCarry, false)
		c.setFlag(FlagCarry, true)
	}
	table[0x3F] = func(c *CPU, b *bus.Bus) {
		c.setFlag(FlagSubtract, false)
		c.setFlag(FlagHalfCarry, false)
		c.setFlag(FlagCarry, !c.flag(FlagCarry))
	}

	table[0x10] = func(c *CPU, b *bus.Bus) { c.stop(b) }
	table[0x18] = func(c *CPU, b *bus.Bus) { c.jr(b, true) }
	table[0x20] = func(c *CPU, b *bus.Bus) { c.jr(b, c.flagNZ()) }
	table[0x28] = func(c *CPU, b *bus.Bus) { c.jr(b, c.flagZ()) }
	table[0x30] = func(c *CPU, b *bus.Bus) { c.jr(b, c.flagNC()) }
	table[0x38] = func(c *CPU, b *bus.Bus) { c.jr(b, c.flagC()) }

	table[0xC3] = func(c *CPU, b *bus.Bus) { c.jp(b, true) }
	table[0xC2] = func(c *CPU, b *bus.Bus) { c.jp(b, c.flagNZ()) }
	table[0xCA] = func(c *CPU, b *bus.Bus) { c.jp(b, c.flagZ()) }
	table[0xD2] = func(c *CPU, b *bus.Bus) { c.jp(b, c.flagNC()) }
	table[0xDA] = func(c *CPU, b *bus.Bus) { c.jp(b, c.flagC()) }
	table[0xE9] = func(c *CPU, b *bus.Bus) { c.PC = c.HL.Uint16() }

	table[0xCD] = func(c *CPU, b *bus.Bus) { c.call(b, true) }
	table[0xC4] = func(c *CPU, b *bus.Bus) { c.call(b, c.flagNZ()) }
	table[0xCC] = func(c *CPU, b *bus.Bus) { c.call(b, c.flagZ()) }
	table[0xD4] = func(c *CPU, b *bus.Bus) { c.call(b, c.flagNC()) }
	table[0xDC] = func(c *CPU, b *bus.Bus) { c.call(b, c.flagC()) }

	table[0xC9] = func(c *CPU, b *bus.Bus) { c.ret(b, true) }
	table[0xC0] = func(c *CPU, b *bus.Bus) { c.retCond(b, c.flagNZ()) }
	table[0xC8] = func(c *CPU, b *bus.Bus) { c.retCond(b, c.flagZ()) }
	table[0xD0] = func(c *CPU, b *bus.Bus) { c.retCond(b, c.flagNC()) }
	table[0xD8] = func(c *CPU, b *bus.Bus) { c.retCond(b, c.flagC()) }
	table[0xD9] = func(c *CPU, b *bus.Bus) { c.reti(b) }

	for i := uint8(0); i < 8; i++ {
		vector := uint16(i) * 0x08
		table[0xC7+i*0x08] = func(c *CPU, b *bus.Bus) { c.rst(b, vector) }
	}

	// ALU A,d8 (0xC6/CE/D6/DE/E6/EE/F6/FE).
	aluImm := [8]func(c *CPU, v uint8){
		func(c *CPU, v uint8) { c.A = c.add8(c.A, v, false) },
		func(c *CPU, v uint8) { c.A = c.add8(c.A, v, c.flag(FlagCarry)) },
		func(c *CPU, v uint8) { c.A = c.sub8(c.A, v, false) },
		func(c *CPU, v uint8) { c.A = c.sub8(c.A, v, c.flag(FlagCarry)) },
		func(c *CPU, v uint8) { c.A = c.and8(c.A, v) },
		func(c *CPU, v uint8) { c.A = c.xor8(c.A, v) },
		func(c *CPU, v uint8) { c.A = c.or8(c.A, v) },
		func(c *CPU, v uint8) { c.sub8(c.A, v, false) },
	}
	for i := uint8(0); i < 8; i++ {
		fn := aluImm[i]
		table[0xC6+i*0x08] = func(c *CPU, b *bus.Bus) { fn(c, c.fetch(b)) }
	}

	table[0xE0] = func(c *CPU, b *bus.Bus) { c.writeByte(b, 0xFF00+uint16(c.fetch(b)), c.A) }
	table[0xF0] = func(c *CPU, b *bus.Bus) { c.A = c.readByte(b, 0xFF00+uint16(c.fetch(b))) }
	table[0xE2] = func(c *CPU, b *bus.Bus) { c.writeByte(b, 0xFF00+uint16(c.C), c.A) }
	table[0xF2] = func(c *CPU, b *bus.Bus) { c.A = c.readByte(b, 0xFF00+uint16(c.C)) }
	table[0xEA] = func(c *CPU, b *bus.Bus) { c.writeByte(b, c.fetchWord(b), c.A) }
	table[0xFA] = func(c *CPU, b *bus.Bus) { c.A = c.readByte(b, c.fetchWord(b)) }

	table[0xF3] = func(c *CPU, b *bus.Bus) { b.IRQ.DisableImmediate() }
	table[0xFB] = func(c *CPU, b *bus.Bus) { b.IRQ.RequestEnable() }
}

func registerCBTable() {
	unary := [8]func(c *CPU, v uint8) uint8{
		(*CPU).rlc, (*CPU).rrc, (*CPU).rl, (*CPU).rr,
		(*CPU).sla, (*CPU).sra, (*CPU).swap, (*CPU).srl,
	}
	for opIdx := uint8(0); opIdx < 8; opIdx++ {
		for r := uint8(0); r < 8; r++ {
			op := opIdx*8 + r
			fn, reg := unary[opIdx], r
			cbTable[op] = func(c *CPU, b *bus.Bus) {
				c.set8(b, reg, fn(c, c.get8(b, reg)))
			}
			// RLC/RRC/RL/RR/SLA/SRA/SRL/SWAP all set Z from the result,
			// unlike their non-prefixed accumulator-only counterparts.
		}
	}
	for n := uint8(0); n < 8; n++ {
		for r := uint8(0); r < 8; r++ {
			op := 0x40 + n*8 + r
			bitN, reg := n, r
			cbTable[op] = func(c *CPU, b *bus.Bus) { c.bit(bitN, c.get8(b, reg)) }
		}
	}
	for n := uint8(0); n < 8; n++ {
		for r := uint8(0); r < 8; r++ {
			op := 0x80 + n*8 + r
			bitN, reg := n, r
			cbTable[op] = func(c *CPU, b *bus.Bus) {
				c.set8(b, reg, resBit(bitN, c.get8(b, reg)))
			}
		}
	}
	for n := uint8(0); n < 8; n++ {
		for r := uint8(0); r < 8; r++ {
			op := 0xC0 + n*8 + r
			bitN, reg := n, r
			cbTable[op] = func(c *CPU, b *bus.Bus) {
				c.set8(b, reg, setBit(bitN, c.get8(b, reg)))
			}
		}
	}
}
