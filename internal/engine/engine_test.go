package engine

import (
	"testing"

	"github.com/dmgcore/lr35902/internal/cartridge"
	"github.com/dmgcore/lr35902/internal/cpu"
	"github.com/stretchr/testify/require"
)

// romWithType mirrors internal/cartridge's own test helper: the
// smallest ROM image that satisfies a given header type.
func romWithType(typ cartridge.Type, romSize, ramSizeByte uint8) []byte {
	rom := make([]byte, (32*1024)<<romSize)
	if len(rom) < 0x150 {
		rom = make([]byte, 0x150)
	}
	rom[0x147] = uint8(typ)
	rom[0x148] = romSize
	rom[0x149] = ramSizeByte
	return rom
}

func TestLoad_PostBootDefaults(t *testing.T) {
	rom := romWithType(cartridge.ROM, 0, 0)
	e, err := Load(rom)
	require.NoError(t, err)

	require.EqualValues(t, 0x0100, e.cpu.PC)
	require.EqualValues(t, 0xFFFE, e.cpu.SP)
	require.EqualValues(t, 0x01, e.cpu.A)
	require.EqualValues(t, 0x91, e.bus.IO(0xFF40)) // LCDC on, per postBootRegisters
}

func TestLoad_WithBootROMStartsAtZero(t *testing.T) {
	rom := romWithType(cartridge.ROM, 0, 0)
	boot := make([]byte, 256)
	boot[0] = 0x00 // NOP

	e, err := Load(rom, WithBootROM(boot))
	require.NoError(t, err)

	require.EqualValues(t, 0x0000, e.cpu.PC)
	require.EqualValues(t, 0x00, e.cpu.A)
}

func TestLoad_UnsupportedCartridgeType(t *testing.T) {
	rom := romWithType(cartridge.Type(0x20), 0, 0)
	_, err := Load(rom)
	require.Error(t, err)
	var unsupported cartridge.ErrUnsupportedCartridgeType
	require.ErrorAs(t, err, &unsupported)
}

func TestLoad_HeaderTooSmall(t *testing.T) {
	_, err := Load(make([]byte, 16))
	require.Error(t, err)
	var tooSmall cartridge.ErrHeaderTooSmall
	require.ErrorAs(t, err, &tooSmall)
}

func TestWithRTCMode_NoOpOnNonMBC3(t *testing.T) {
	rom := romWithType(cartridge.ROM, 0, 0)
	e, err := Load(rom, WithRTCMode(cartridge.RtcWall))
	require.NoError(t, err)
	require.NotNil(t, e)
}

func TestStepFrame_CompletesAndAccumulatesCycles(t *testing.T) {
	rom := romWithType(cartridge.ROM, 0, 0)
	rom[0x100] = 0x18 // JR -2 (infinite loop at reset vector)
	rom[0x101] = 0xFE

	e, err := Load(rom)
	require.NoError(t, err)

	cycles, err := e.StepFrame()
	require.NoError(t, err)
	require.NotZero(t, cycles)

	fb := e.Framebuffer()
	require.NotNil(t, fb)
}

func TestStepFrame_PropagatesUnimplementedOpcode(t *testing.T) {
	rom := romWithType(cartridge.ROM, 0, 0)
	rom[0x100] = 0xFC // unassigned opcode on LR35902

	e, err := Load(rom)
	require.NoError(t, err)

	_, err = e.StepFrame()
	require.Error(t, err)
	var uo cpu.UnimplementedOpcode
	require.ErrorAs(t, err, &uo)
}

func TestSetButtons_ForwardsToJoypad(t *testing.T) {
	rom := romWithType(cartridge.ROM, 0, 0)
	e, err := Load(rom)
	require.NoError(t, err)

	e.bus.Write(0xFF00, 0x20) // JOYP: select the direction row
	e.SetButtons(0xFF)
	require.EqualValues(t, 0xE0, e.bus.Read(0xFF00)) // every direction bit reads low (pressed)
}

func TestCartridgeRAM_RoundTripAndDirtyGeneration(t *testing.T) {
	rom := romWithType(cartridge.MBC1RAMBATT, 0, 0x02) // 8KiB RAM
	e, err := Load(rom)
	require.NoError(t, err)

	require.EqualValues(t, 0, e.CartridgeRAMDirtyGeneration())

	saved := make([]byte, len(e.CartridgeRAM()))
	saved[0] = 0x7A
	e.LoadCartridgeRAM(saved)
	require.Equal(t, saved, e.CartridgeRAM())

	e.ClearCartridgeRAMDirty()
	require.EqualValues(t, 0, e.CartridgeRAMDirtyGeneration())
}

func TestTakeAudioSample_DrainsAfterStepping(t *testing.T) {
	rom := romWithType(cartridge.ROM, 0, 0)
	e, err := Load(rom, WithSampleRate(44100))
	require.NoError(t, err)

	e.bus.Write(0xFF26, 0x80) // NR52: power on
	e.bus.Write(0xFF25, 0xFF) // NR51: route every channel both sides
	e.bus.Write(0xFF24, 0x77) // NR50: max volume
	e.bus.Write(0xFF12, 0xF0) // NR12: max volume, no sweep
	e.bus.Write(0xFF14, 0x80) // NR14: trigger channel 1

	e.apu.Tick(200, e.bus)

	_, _, ok := e.TakeAudioSample()
	require.True(t, ok)
}

func TestChannelAmplitudes_ReflectsTriggeredChannel(t *testing.T) {
	rom := romWithType(cartridge.ROM, 0, 0)
	e, err := Load(rom)
	require.NoError(t, err)

	e.bus.Write(0xFF26, 0x80)
	e.bus.Write(0xFF12, 0xF0)
	e.bus.Write(0xFF14, 0x80)
	e.apu.Tick(4, e.bus)

	amps := e.ChannelAmplitudes()
	require.NotZero(t, amps[0])
}
