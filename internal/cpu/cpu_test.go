package cpu

import (
	"testing"

	"github.com/dmgcore/lr35902/internal/bus"
	"github.com/dmgcore/lr35902/internal/cartridge"
	"github.com/dmgcore/lr35902/internal/interrupt"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *bus.Bus {
	t.Helper()
	rom := make([]byte, 32*1024) // cartridge type 0x00 = ROM ONLY
	cart, err := cartridge.FromBytes(rom)
	require.NoError(t, err)
	return bus.New(cart, nil)
}

// load writes program bytes starting at 0xC000. ROM space routes writes
// to the MBC rather than storing them, so tests execute out of WRAM
// instead, which the bus lets the CPU both read and write.
func load(b *bus.Bus, program ...uint8) {
	for i, v := range program {
		b.Write(0xC000+uint16(i), v)
	}
}

func newAt(t *testing.T, program ...uint8) (*CPU, *bus.Bus) {
	b := newTestBus(t)
	load(b, program...)
	c := New()
	c.PC = 0xC000
	return c, b
}

func TestADD_HalfCarry(t *testing.T) {
	c, b := newAt(t, 0x80) // ADD A,B
	c.A, c.B = 0x0F, 0x01
	_, err := c.Step(b)
	require.NoError(t, err)
	require.EqualValues(t, 0x10, c.A)
	require.False(t, c.flag(FlagZero))
	require.False(t, c.flag(FlagSubtract))
	require.True(t, c.flag(FlagHalfCarry))
	require.False(t, c.flag(FlagCarry))
}

func TestCallAndRet(t *testing.T) {
	// CALL 0xC005 at 0xC000-0xC002; 0xC005 holds RET.
	c, b := newAt(t, 0xCD, 0x05, 0xC0, 0x00, 0x00, 0xC9)
	c.SP = 0xFFFE

	_, err := c.Step(b) // CALL
	require.NoError(t, err)
	require.EqualValues(t, 0xC005, c.PC)
	require.EqualValues(t, 0xFFFC, c.SP)

	_, err = c.Step(b) // RET
	require.NoError(t, err)
	require.EqualValues(t, 0xC003, c.PC)
	require.EqualValues(t, 0xFFFE, c.SP)
}

func TestPushPopRoundTrip(t *testing.T) {
	c, b := newAt(t,
		0xC5, // PUSH BC
		0xD1, // POP DE
	)
	c.SP = 0xFFFE
	c.B, c.C = 0x12, 0x34

	_, err := c.Step(b)
	require.NoError(t, err)
	_, err = c.Step(b)
	require.NoError(t, err)

	require.EqualValues(t, 0x12, c.D)
	require.EqualValues(t, 0x34, c.E)
}

func TestPopAF_LowNibbleForcedZero(t *testing.T) {
	c, b := newAt(t, 0xF1) // POP AF
	c.SP = 0xFFFC
	b.Write(0xFFFC, 0xFF) // low byte (F) all ones
	b.Write(0xFFFD, 0x12)

	_, err := c.Step(b)
	require.NoError(t, err)
	require.EqualValues(t, 0xF0, c.F)
}

func TestEI_DelaysOneInstruction(t *testing.T) {
	c, b := newAt(t,
		0xFB, // EI
		0x00, // NOP
		0x00, // NOP
	)
	b.IRQ.Write(0xFFFF, 0x1F)

	_, err := c.Step(b) // EI itself: IME still not active
	require.NoError(t, err)
	require.False(t, b.IRQ.IME())

	_, err = c.Step(b) // the instruction right after EI
	require.NoError(t, err)
	require.True(t, b.IRQ.IME())
}

func TestDI_IsImmediate(t *testing.T) {
	c, b := newAt(t, 0xF3) // DI
	b.IRQ.EnableImmediate()
	_, err := c.Step(b)
	require.NoError(t, err)
	require.False(t, b.IRQ.IME())
}

func TestHALT_ServicesPendingInterruptWithoutExecutingNextInstruction(t *testing.T) {
	c, b := newAt(t,
		0x76, // HALT at 0xC000
		0x3C, // INC A at 0xC001 - must not run before the interrupt is serviced
	)
	c.SP = 0xFFFE
	b.IRQ.EnableImmediate()
	b.IRQ.Write(0xFFFF, 0x01) // IE: VBlank only

	_, err := c.Step(b) // HALT: no interrupt pending yet, just idles
	require.NoError(t, err)
	require.EqualValues(t, 0xC001, c.PC)

	b.IRQ.Request(interrupt.VBlank)

	_, err = c.Step(b) // wakes and services VBlank in the same Step
	require.NoError(t, err)
	require.EqualValues(t, interrupt.VBlank.Vector(), c.PC)
	require.EqualValues(t, 0, c.A, "INC A must not have executed before service")
	require.False(t, b.IRQ.IME())
	require.EqualValues(t, 0xFFFC, c.SP)

	lo := b.Read(0xFFFC)
	hi := b.Read(0xFFFD)
	require.EqualValues(t, 0xC001, uint16(hi)<<8|uint16(lo), "pushed return address must be right after HALT")
}

func TestUnimplementedOpcode(t *testing.T) {
	c, b := newAt(t, 0xD3) // undefined byte
	_, err := c.Step(b)
	require.Error(t, err)
	var uo UnimplementedOpcode
	require.ErrorAs(t, err, &uo)
	require.EqualValues(t, 0xD3, uo.Opcode)
}
