package cartridge

// Cartridge owns the immutable ROM image and the mutable external RAM
// for a loaded game, and dispatches reads/writes through the header's
// matching MBC. Grounded on
// thelolagemann-gomeboy/internal/cartridge/cartridge.go's NewCartridge
// dispatch switch and RAMController interface.
type Cartridge struct {
	rom    []byte
	ram    []byte
	header Header
	mbc    MBC

	// ramDirtyGeneration increments on every guest RAM write, letting a
	// host-side save manager poll for changes without the engine
	// knowing anything about files or timers.
	ramDirtyGeneration uint64
}

// FromBytes parses rom's header and constructs a Cartridge with
// correctly sized, zeroed external RAM. It fails if the header can't be
// parsed or names an unsupported cartridge type.
func FromBytes(rom []byte) (*Cartridge, error) {
	header, err := ParseHeader(rom)
	if err != nil {
		return nil, err
	}

	ram := make([]byte, header.RAMSize)
	mbc, err := New(header, rom, ram)
	if err != nil {
		return nil, err
	}

	return &Cartridge{
		rom:    rom,
		ram:    ram,
		header: header,
		mbc:    mbc,
	}, nil
}

func (c *Cartridge) Header() Header    { return c.header }
func (c *Cartridge) ROM() []byte       { return c.rom }
func (c *Cartridge) RAM() []byte       { return c.ram }
func (c *Cartridge) HasRAM() bool      { return c.header.CartridgeType.HasRAM() || len(c.ram) > 0 }
func (c *Cartridge) HasBattery() bool  { return c.header.CartridgeType.HasBattery() }
func (c *Cartridge) HasTimer() bool    { return c.header.CartridgeType.HasTimer() }

// ReadROM reads a guest address in 0x0000-0x7FFF via the active MBC.
func (c *Cartridge) ReadROM(addr uint16) uint8 { return c.mbc.ReadROM(addr) }

// WriteControl writes a guest address in 0x0000-0x7FFF, which for every
// MBC variant means a bank-control register rather than actual ROM.
func (c *Cartridge) WriteControl(addr uint16, val uint8) { c.mbc.WriteControl(addr, val) }

// ReadRAM reads a guest address in 0xA000-0xBFFF via the active MBC.
func (c *Cartridge) ReadRAM(addr uint16) uint8 { return c.mbc.ReadRAM(addr) }

// WriteRAM writes a guest address in 0xA000-0xBFFF via the active MBC,
// bumping the dirty generation counter whenever RAM actually backs the
// mapper (writes to RTC registers on MBC3 do not count as RAM writes).
func (c *Cartridge) WriteRAM(addr uint16, val uint8) {
	c.mbc.WriteRAM(addr, val)
	if len(c.ram) == 0 {
		return
	}
	if m3, ok := c.mbc.(*mbc3); ok && m3.isRTCSelected() {
		return
	}
	c.ramDirtyGeneration++
}

// Tick advances mapper-internal state driven by elapsed cycles (MBC3's
// RTC; a no-op for every other mapper).
func (c *Cartridge) Tick(cycles uint8) { c.mbc.Tick(cycles) }

// LoadRAM overwrites the cartridge's external RAM with data, truncating
// to the existing RAM length; a save file larger or smaller than the
// cartridge's RAM is only ever partially applied, never resized.
func (c *Cartridge) LoadRAM(data []byte) {
	n := copy(c.ram, data)
	_ = n
}

// SetRTCMode switches an MBC3 cartridge's real-time clock between
// Deterministic and Wall advancement; a no-op for every other mapper,
// since only MBC3 carries an RTC.
func (c *Cartridge) SetRTCMode(mode RtcMode) {
	if m3, ok := c.mbc.(*mbc3); ok {
		m3.SetRTCMode(mode)
	}
}

// RAMDirtyGeneration returns the monotone counter incremented on every
// guest RAM write since the cartridge was loaded (or since the last
// ClearRAMDirty call).
func (c *Cartridge) RAMDirtyGeneration() uint64 { return c.ramDirtyGeneration }

// ClearRAMDirty is called by an out-of-scope save manager once it has
// durably flushed RAM to disk.
func (c *Cartridge) ClearRAMDirty() { c.ramDirtyGeneration = 0 }
