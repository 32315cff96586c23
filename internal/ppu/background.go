package ppu

// backgroundUnit holds the tile-fetch latches and the 16-bit shift
// registers the renderer samples one pixel at a time. The low byte of
// each shift register is reloaded every 8 dots with the tile fetched
// two tiles ahead, exactly as the real fetch pipeline overlaps fetch and
// shift. Each of the four fetch sub-steps (NT/AT/pattern-lo/pattern-hi)
// completes within a single dot here rather than being split across two
// dots the way the real PPU's address/read split works; this changes
// only which dot the mapper's CHR bus is touched on, not what ends up
// in the shift registers.
type backgroundUnit struct {
	shiftLo, shiftHi uint16
	attrLo, attrHi   uint16

	nextNT   uint8
	nextAT   uint8
	nextLo   uint8
	nextHi   uint8
}

func (p *PPU) bgPatternTableBase() uint16 {
	if p.ctrl&ctrlBGPatternTable != 0 {
		return 0x1000
	}
	return 0x0000
}

// fetchBGTile runs the 8-dot nametable/attribute/pattern fetch sequence
// and, on its last dot, reloads the shift registers and advances coarse
// X (with the standard nametable-horizontal wraparound).
func (p *PPU) fetchBGTile(phase int) {
	switch phase {
	case 0:
		p.bg.nextNT = p.ppuBusRead(0x2000 | (p.v & 0x0FFF))
	case 2:
		atAddr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
		raw := p.ppuBusRead(atAddr)
		shift := ((p.v >> 4) & 0x04) | (p.v & 0x02)
		p.bg.nextAT = (raw >> shift) & 0x03
	case 4:
		fineY := (p.v >> 12) & 0x07
		addr := p.bgPatternTableBase() + uint16(p.bg.nextNT)*16 + fineY
		p.bg.nextLo = p.ppuBusRead(addr)
	case 6:
		fineY := (p.v >> 12) & 0x07
		addr := p.bgPatternTableBase() + uint16(p.bg.nextNT)*16 + fineY + 8
		p.bg.nextHi = p.ppuBusRead(addr)
	case 7:
		p.reloadShiftRegisters()
		p.incrementCoarseX()
	}
}

func (p *PPU) reloadShiftRegisters() {
	p.bg.shiftLo = (p.bg.shiftLo & 0xFF00) | uint16(p.bg.nextLo)
	p.bg.shiftHi = (p.bg.shiftHi & 0xFF00) | uint16(p.bg.nextHi)
	var loFill, hiFill uint16
	if p.bg.nextAT&0x01 != 0 {
		loFill = 0xFF
	}
	if p.bg.nextAT&0x02 != 0 {
		hiFill = 0xFF
	}
	p.bg.attrLo = (p.bg.attrLo & 0xFF00) | loFill
	p.bg.attrHi = (p.bg.attrHi & 0xFF00) | hiFill
}

func (p *PPU) shiftBackground() {
	p.bg.shiftLo <<= 1
	p.bg.shiftHi <<= 1
	p.bg.attrLo <<= 1
	p.bg.attrHi <<= 1
}

// incrementCoarseX implements the loopy "increment hori(v)" operation:
// coarse X wraps at 32 and flips the horizontal nametable bit.
func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

// incrementY implements loopy "increment vert(v)": fine Y wraps into
// coarse Y, which itself wraps at 30 (the NES's 30-row nametable height,
// not 32) flipping the vertical nametable bit; row 31/baroque values
// wrap without flipping, matching documented PPU behavior for out-of-
// range coarse Y left by direct $2006 writes.
func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyHorizontalBits() {
	if !p.renderingEnabled() {
		return
	}
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

func (p *PPU) copyVerticalBits() {
	if !p.renderingEnabled() {
		return
	}
	p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
}

// bgPixel samples the current background pixel (color index 0-3 plus
// palette select 0-3) from the shift registers at the fine-X-selected
// bit, without mutating them.
func (p *PPU) bgPixel() (colorIdx, paletteIdx uint8) {
	if p.mask&maskShowBG == 0 {
		return 0, 0
	}
	sel := uint16(0x8000) >> p.x
	lo := uint8(0)
	if p.bg.shiftLo&sel != 0 {
		lo = 1
	}
	hi := uint8(0)
	if p.bg.shiftHi&sel != 0 {
		hi = 1
	}
	alo := uint8(0)
	if p.bg.attrLo&sel != 0 {
		alo = 1
	}
	ahi := uint8(0)
	if p.bg.attrHi&sel != 0 {
		ahi = 1
	}
	return hi<<1 | lo, ahi<<1 | alo
}

// renderStep runs the fetch/shift/output pipeline for one dot of a
// visible or pre-render scanline.
func (p *PPU) renderStep() {
	inFetchWindow := (p.dot >= 1 && p.dot <= 256) || (p.dot >= 321 && p.dot <= 336)
	if inFetchWindow {
		if p.renderingEnabled() {
			p.shiftBackground()
		}
		if p.dot >= 1 && p.dot <= 256 && p.scanline < 240 {
			p.outputPixel(p.dot - 1)
		}
		if p.renderingEnabled() {
			p.fetchBGTile((p.dot - 1) % 8)
		}
	}

	if p.dot == 256 && p.renderingEnabled() {
		p.incrementY()
	}
	if p.dot == 257 {
		p.copyHorizontalBits()
		if p.scanline < 240 {
			p.evaluateSpritesForNextScanline()
		}
	}
	if p.dot == 258 && p.renderingEnabled() {
		// Real hardware spreads these fetches across dots 257-320 (8 per
		// sprite); fetching the whole bank in one dot is a timing
		// simplification that does not change the pixels it produces.
		p.fetchSpritePatterns()
	}
	if p.scanline == 261 && p.dot >= 280 && p.dot <= 304 {
		p.copyVerticalBits()
	}
}

// outputPixel composites the background and sprite pixels for
// (x, p.scanline) and writes the result into the frame buffer,
// including sprite-0-hit detection.
func (p *PPU) outputPixel(x int) {
	bgColor, bgPal := p.bgPixel()
	if x < 8 && p.mask&maskShowBGLeft == 0 {
		bgColor = 0
	}

	sprColor, sprPal, sprBehind, isSprite0 := p.spritePixel(x)
	if x < 8 && p.mask&maskShowSpriteLeft == 0 {
		sprColor = 0
	}

	if bgColor != 0 && sprColor != 0 && isSprite0 && x != 255 &&
		p.mask&(maskShowBG|maskShowSprites) == maskShowBG|maskShowSprites {
		p.status |= statusSprite0
		p.sprite0HitFlag = true
	}

	var final uint8
	switch {
	case bgColor == 0 && sprColor == 0:
		final = p.palette[0]
	case bgColor == 0:
		final = p.palette[0x10+int(sprPal)*4+int(sprColor)]
	case sprColor == 0:
		final = p.palette[int(bgPal)*4+int(bgColor)]
	case sprBehind:
		final = p.palette[int(bgPal)*4+int(bgColor)]
	default:
		final = p.palette[0x10+int(sprPal)*4+int(sprColor)]
	}

	idx := p.scanline*256 + x
	if idx >= 0 && idx < len(p.FrameBuffer) {
		p.FrameBuffer[idx] = final & 0x3F
	}
}
