package cpu

import "github.com/dmgcore/lr35902/internal/bus"

func (c *CPU) jr(b *bus.Bus, taken bool) {
	offset := int8(c.fetch(b))
	if taken {
		c.tick()
		c.PC = uint16(int32(c.PC) + int32(offset))
	}
}

func (c *CPU) jp(b *bus.Bus, taken bool) {
	addr := c.fetchWord(b)
	if taken {
		c.tick()
		c.PC = addr
	}
}

func (c *CPU) call(b *bus.Bus, taken bool) {
	addr := c.fetchWord(b)
	if taken {
		c.tick()
		c.push16(b, c.PC)
		c.PC = addr
	}
}

func (c *CPU) ret(b *bus.Bus, taken bool) {
	if taken {
		c.tick()
		c.PC = c.pop16(b)
	}
}

func (c *CPU) retCond(b *bus.Bus, taken bool) {
	c.tick() // conditional RET always spends one internal cycle checking the flag
	c.ret(b, taken)
}

func (c *CPU) reti(b *bus.Bus) {
	c.PC = c.pop16(b)
	c.tick()
	b.IRQ.EnableImmediate()
}

func (c *CPU) rst(b *bus.Bus, vector uint16) {
	c.tick()
	c.push16(b, c.PC)
	c.PC = vector
}

func (c *CPU) fetchWord(b *bus.Bus) uint16 {
	lo := c.fetch(b)
	hi := c.fetch(b)
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) flagZ() bool  { return c.flag(FlagZero) }
func (c *CPU) flagNZ() bool { return !c.flag(FlagZero) }
func (c *CPU) flagC() bool  { return c.flag(FlagCarry) }
func (c *CPU) flagNC() bool { return !c.flag(FlagCarry) }
