package ppu

const maxSpritesPerScanline = 8

// spriteUnit holds the secondary-OAM slots evaluated for the upcoming
// scanline: their fetched 8-pixel pattern data (already flip-adjusted),
// screen X, palette/priority attribute bits, and which slot (if any)
// corresponds to OAM sprite 0.
type spriteUnit struct {
	count int

	y, tile, attr, x [maxSpritesPerScanline]uint8
	isSprite0        [maxSpritesPerScanline]bool

	patternLo, patternHi [maxSpritesPerScanline]uint8
}

func (p *PPU) spriteHeight() int {
	if p.ctrl&ctrlSpriteHeight != 0 {
		return 16
	}
	return 8
}

// evaluateSpritesForNextScanline scans primary OAM for sprites visible
// on p.scanline+1 and copies up to 8 into the secondary-OAM-equivalent
// spriteUnit slots, in OAM order (so slot 0, if occupied by sprite 0,
// always wins sprite-0-hit priority ties).
//
// Past the 8th match it continues scanning with the real hardware's
// buggy "diagonal" overflow search: the evaluator reuses the same
// 2-bit byte-within-sprite counter for both found and not-found
// sprites, so it drifts off the Y byte and starts comparing attribute
// or X bytes against the in-range Y test. That drift is what makes
// sprite overflow both fire on boards that don't actually have 9+
// sprites on a line and fail to fire on some that do; it is reproduced
// here rather than replaced with an exact free-running counter.
func (p *PPU) evaluateSpritesForNextScanline() {
	p.spr = spriteUnit{}
	if !p.renderingEnabled() {
		return
	}
	targetLine := p.scanline + 1
	height := p.spriteHeight()

	n := 0
	for n < 64 && p.spr.count < maxSpritesPerScanline {
		y := int(p.oam[n*4])
		if targetLine >= y+1 && targetLine < y+1+height {
			slot := p.spr.count
			p.spr.y[slot] = p.oam[n*4]
			p.spr.tile[slot] = p.oam[n*4+1]
			p.spr.attr[slot] = p.oam[n*4+2]
			p.spr.x[slot] = p.oam[n*4+3]
			p.spr.isSprite0[slot] = n == 0
			p.spr.count++
		}
		n++
	}

	if n >= 64 {
		return
	}
	m := 0
	for n < 64 {
		y := int(p.oam[n*4+m])
		if targetLine >= y+1 && targetLine < y+1+height {
			p.status |= statusOverflow
			p.spriteOverflowFlag = true
			m = (m + 1) % 4
			if m == 0 {
				n++
			}
		} else {
			n++
			m = (m + 1) % 4
		}
	}
}

// fetchSpritePatterns loads the 8-pixel pattern rows for every evaluated
// sprite, applying vertical and horizontal flip and selecting the
// correct half of an 8x16 sprite's two tiles.
func (p *PPU) fetchSpritePatterns() {
	height := p.spriteHeight()
	for i := 0; i < p.spr.count; i++ {
		y := int(p.spr.y[i])
		row := p.scanline + 1 - (y + 1)
		flipV := p.spr.attr[i]&0x80 != 0
		flipH := p.spr.attr[i]&0x40 != 0
		if flipV {
			row = height - 1 - row
		}

		var table uint16
		var tile uint8
		if height == 16 {
			table = uint16(p.spr.tile[i]&0x01) * 0x1000
			tile = p.spr.tile[i] &^ 0x01
			if row >= 8 {
				tile++
				row -= 8
			}
		} else {
			if p.ctrl&ctrlSpritePatternTable != 0 {
				table = 0x1000
			}
			tile = p.spr.tile[i]
		}

		addr := table + uint16(tile)*16 + uint16(row)
		lo := p.ppuBusRead(addr)
		hi := p.ppuBusRead(addr + 8)
		if flipH {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}
		p.spr.patternLo[i] = lo
		p.spr.patternHi[i] = hi
	}
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}

// spritePixel returns the highest-priority (lowest OAM index) opaque
// sprite pixel covering screen column x, if any.
func (p *PPU) spritePixel(x int) (color, palette uint8, behind bool, isSprite0 bool) {
	if p.mask&maskShowSprites == 0 {
		return 0, 0, false, false
	}
	for i := 0; i < p.spr.count; i++ {
		offset := x - int(p.spr.x[i])
		if offset < 0 || offset > 7 {
			continue
		}
		bit := uint(7 - offset)
		lo := (p.spr.patternLo[i] >> bit) & 1
		hi := (p.spr.patternHi[i] >> bit) & 1
		c := hi<<1 | lo
		if c == 0 {
			continue
		}
		return c, p.spr.attr[i] & 0x03, p.spr.attr[i]&0x20 != 0, p.spr.isSprite0[i]
	}
	return 0, 0, false, false
}
