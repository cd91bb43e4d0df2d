package cartridge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func romWithType(t Type, romSize, ramSizeByte uint8) []byte {
	rom := make([]byte, (32*1024)<<romSize)
	if len(rom) < 0x150 {
		rom = make([]byte, 0x150)
	}
	rom[0x147] = uint8(t)
	rom[0x148] = romSize
	rom[0x149] = ramSizeByte
	return rom
}

func TestFromBytes_UnsupportedType(t *testing.T) {
	rom := romWithType(Type(0x20), 0, 0)
	_, err := FromBytes(rom)
	require.Error(t, err)
	var unsupported ErrUnsupportedCartridgeType
	require.ErrorAs(t, err, &unsupported)
}

func TestFromBytes_SizesRAM(t *testing.T) {
	rom := romWithType(MBC1RAMBATT, 0, 0x03) // 32KiB RAM
	cart, err := FromBytes(rom)
	require.NoError(t, err)
	require.Len(t, cart.RAM(), 32*1024)
	require.True(t, cart.HasRAM())
	require.True(t, cart.HasBattery())
}

func TestFromBytes_RoundTripRAM(t *testing.T) {
	rom := romWithType(MBC1RAMBATT, 0, 0x02) // 8KiB
	cart, err := FromBytes(rom)
	require.NoError(t, err)

	cart.WriteControl(0x0000, 0x0A) // enable RAM
	cart.WriteRAM(0xA000, 0x42)
	saved := append([]byte(nil), cart.RAM()...)

	reloaded, err := FromBytes(rom)
	require.NoError(t, err)
	reloaded.LoadRAM(saved)
	require.Equal(t, saved, reloaded.RAM())
}

func TestCartridge_RAMDirtyGeneration(t *testing.T) {
	rom := romWithType(MBC1RAMBATT, 0, 0x02)
	cart, err := FromBytes(rom)
	require.NoError(t, err)

	require.EqualValues(t, 0, cart.RAMDirtyGeneration())
	cart.WriteControl(0x0000, 0x0A)
	cart.WriteRAM(0xA000, 1)
	require.EqualValues(t, 1, cart.RAMDirtyGeneration())
	cart.WriteRAM(0xA001, 2)
	require.EqualValues(t, 2, cart.RAMDirtyGeneration())

	cart.ClearRAMDirty()
	require.EqualValues(t, 0, cart.RAMDirtyGeneration())
}

func TestCartridge_ROMOnlyPassthrough(t *testing.T) {
	rom := romWithType(ROM, 0, 0)
	rom[0x4000] = 0xAB
	cart, err := FromBytes(rom)
	require.NoError(t, err)
	require.EqualValues(t, 0xAB, cart.ReadROM(0x4000))
}
