package interrupt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestController_RequestAndService(t *testing.T) {
	c := NewController()
	c.Write(EnableRegister, 0x1F)
	c.EnableImmediate()

	c.Request(Timer)
	k, ok := c.NextToService()
	require.True(t, ok)
	require.Equal(t, Timer, k)

	c.Service(k)
	require.False(t, c.IME())
	_, ok = c.NextToService()
	require.False(t, ok)
}

func TestController_PriorityOrder(t *testing.T) {
	c := NewController()
	c.Write(EnableRegister, 0x1F)
	c.Request(Joypad)
	c.Request(VBlank)
	c.Request(Timer)

	k, ok := c.NextToService()
	require.True(t, ok)
	require.Equal(t, VBlank, k)
}

func TestController_EIDelaysOneInstruction(t *testing.T) {
	c := NewController()
	c.RequestEnable()
	require.False(t, c.IME(), "IME must not be active until after the next instruction")

	c.Advance()
	require.True(t, c.IME())
}

func TestController_DIIsImmediate(t *testing.T) {
	c := NewController()
	c.EnableImmediate()
	require.True(t, c.IME())
	c.DisableImmediate()
	require.False(t, c.IME())
}

func TestController_IFReadHasFixedUpperBits(t *testing.T) {
	c := NewController()
	c.Write(FlagRegister, 0x00)
	require.EqualValues(t, 0xE0, c.Read(FlagRegister))
}

func TestController_PendingIgnoresIME(t *testing.T) {
	c := NewController()
	c.Write(EnableRegister, 0x01)
	c.Request(VBlank)
	require.True(t, c.Pending())
}
