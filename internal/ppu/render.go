package ppu

import "github.com/dmgcore/lr35902/internal/bus"

// shades is the fixed four-level DMG grayscale palette, light to dark.
var shades = [4][3]uint8{
	{0xE0, 0xF8, 0xD0},
	{0x88, 0xC0, 0x70},
	{0x34, 0x68, 0x56},
	{0x08, 0x18, 0x20},
}

type spriteEntry struct {
	y, x, tile, attr uint8
	oamIndex         int
}

// renderLine renders one visible scanline (line < 144) into the
// framebuffer, compositing background, window, and sprites in
// priority order.
func (p *PPU) renderLine(b *bus.Bus, line uint8) {
	lcdc := p.lcdc(b)
	bgp := b.IO(bgpAddr)

	var bgColorIndex [ScreenWidth]uint8

	if lcdc&lcdcBGEnable != 0 {
		p.renderBackground(b, lcdc, line, &bgColorIndex)
	}
	if lcdc&lcdcWindowEnable != 0 {
		p.renderWindow(b, lcdc, line, &bgColorIndex)
	}

	for x := 0; x < ScreenWidth; x++ {
		shade := paletteLookup(bgp, bgColorIndex[x])
		p.Framebuffer[line][x] = shades[shade]
	}

	if lcdc&lcdcObjEnable != 0 {
		p.renderSprites(b, lcdc, line, &bgColorIndex)
	}
}

func paletteLookup(palette uint8, colorIndex uint8) uint8 {
	return (palette >> (colorIndex * 2)) & 0x03
}

func tilePixel(b *bus.Bus, tileDataBase uint16, tileID uint8, signedIDs bool, row uint8) [8]uint8 {
	var addr uint16
	if signedIDs {
		addr = uint16(int32(tileDataBase) + int32(int8(tileID))*16)
	} else {
		addr = tileDataBase + uint16(tileID)*16
	}
	addr += uint16(row) * 2
	lo := b.VRAMByte(addr - 0x8000)
	hi := b.VRAMByte(addr + 1 - 0x8000)

	var pixels [8]uint8
	for bit := 0; bit < 8; bit++ {
		shift := uint(7 - bit)
		l := (lo >> shift) & 1
		h := (hi >> shift) & 1
		pixels[bit] = h<<1 | l
	}
	return pixels
}

func (p *PPU) renderBackground(b *bus.Bus, lcdc uint8, line uint8, out *[ScreenWidth]uint8) {
	scy, scx := b.IO(scyAddr), b.IO(scxAddr)
	mapBase := uint16(0x9800)
	if lcdc&lcdcBGTileMap != 0 {
		mapBase = 0x9C00
	}
	dataBase, signed := tileDataBase(lcdc)

	y := scy + line
	tileRow := y / 8
	rowInTile := y % 8

	var rowPixels [8]uint8
	var lastCol uint8 = 0xFF

	for x := 0; x < ScreenWidth; x++ {
		bgX := scx + uint8(x)
		col := bgX / 8
		if col != lastCol {
			tileID := b.VRAMByte(mapBase - 0x8000 + uint16(tileRow)*32 + uint16(col))
			rowPixels = tilePixel(b, dataBase, tileID, signed, rowInTile)
			lastCol = col
		}
		out[x] = rowPixels[bgX%8]
	}
}

func (p *PPU) renderWindow(b *bus.Bus, lcdc uint8, line uint8, out *[ScreenWidth]uint8) {
	wy, wx := b.IO(wyAddr), b.IO(wxAddr)
	if line < wy {
		return
	}
	if wx > 166 {
		return
	}
	mapBase := uint16(0x9800)
	if lcdc&lcdcWindowTileMap != 0 {
		mapBase = 0x9C00
	}
	dataBase, signed := tileDataBase(lcdc)

	drew := false
	tileRow := p.windowLine / 8
	rowInTile := p.windowLine % 8

	for x := 0; x < ScreenWidth; x++ {
		wxPixel := int(x) - (int(wx) - 7)
		if wxPixel < 0 {
			continue
		}
		drew = true
		col := uint8(wxPixel) / 8
		tileID := b.VRAMByte(mapBase - 0x8000 + uint16(tileRow)*32 + uint16(col))
		pixels := tilePixel(b, dataBase, tileID, signed, rowInTile)
		out[x] = pixels[uint8(wxPixel)%8]
	}
	if drew {
		p.windowLine++
	}
}

func tileDataBase(lcdc uint8) (base uint16, signed bool) {
	if lcdc&lcdcTileData != 0 {
		return 0x8000, false
	}
	return 0x9000, true
}

func (p *PPU) renderSprites(b *bus.Bus, lcdc uint8, line uint8, bg *[ScreenWidth]uint8) {
	height := uint8(8)
	if lcdc&lcdcObjSize != 0 {
		height = 16
	}

	var selected []spriteEntry
	for i := 0; i < 40 && len(selected) < 10; i++ {
		base := i * 4
		y := b.OAMByte(base) - 16
		if line < y || line >= y+height {
			continue
		}
		selected = append(selected, spriteEntry{
			y:        y,
			x:        b.OAMByte(base+1) - 8,
			tile:     b.OAMByte(base + 2),
			attr:     b.OAMByte(base + 3),
			oamIndex: i,
		})
	}

	obp := [2]uint8{b.IO(obp0Addr), b.IO(obp1Addr)}

	for x := 0; x < ScreenWidth; x++ {
		var best *spriteEntry
		for i := range selected {
			s := &selected[i]
			if uint8(x) < s.x || uint8(x) >= s.x+8 {
				continue
			}
			if best == nil || s.x < best.x {
				best = s
			}
		}
		if best == nil {
			continue
		}

		row := line - best.y
		if best.attr&0x40 != 0 { // Y flip
			row = height - 1 - row
		}
		tileID := best.tile
		if height == 16 {
			tileID &^= 1
			if row >= 8 {
				tileID |= 1
				row -= 8
			}
		}
		pixels := tilePixel(b, 0x8000, tileID, false, row)
		col := uint8(x) - best.x
		if best.attr&0x20 != 0 { // X flip
			col = 7 - col
		}
		colorIndex := pixels[col]
		if colorIndex == 0 {
			continue // transparent
		}
		if best.attr&0x80 != 0 && bg[x] != 0 { // behind BG colors 1-3
			continue
		}
		palette := obp[(best.attr>>4)&1]
		p.Framebuffer[line][x] = shades[paletteLookup(palette, colorIndex)]
	}
}
