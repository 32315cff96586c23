package ppu

// Snapshot is the serializable form of all PPU state, used by
// internal/console's SaveState/LoadState.
type Snapshot struct {
	Ctrl, Mask, Status uint8
	OAMAddr            uint8
	OAM                [256]uint8
	V, T               uint16
	X                  uint8
	W                  bool
	ReadBuffer         uint8
	BusLatch           uint8
	BusDecay           [8]int32
	Nametables         [0x800]uint8
	Palette            [32]uint8
	FrameBuffer        [256 * 240]uint8
	Scanline, Dot      int
	Frame              uint64
	OddFrame           bool
	NMIOccurred        bool
	SuppressNMI        bool
	Sprite0Hit         bool
	SpriteOverflow     bool

	BGShiftLo, BGShiftHi   uint16
	BGAttrLo, BGAttrHi     uint16
	BGNextNT, BGNextAT     uint8
	BGNextLo, BGNextHi     uint8

	SprCount                int
	SprY, SprTile, SprAttr, SprX [maxSpritesPerScanline]uint8
	SprIsSprite0                 [maxSpritesPerScanline]bool
	SprPatternLo, SprPatternHi   [maxSpritesPerScanline]uint8
}

// Snapshot captures all PPU state.
func (p *PPU) Snapshot() Snapshot {
	return Snapshot{
		Ctrl: p.ctrl, Mask: p.mask, Status: p.status,
		OAMAddr: p.oamAddr, OAM: p.oam,
		V: p.v, T: p.t, X: p.x, W: p.w,
		ReadBuffer: p.readBuffer, BusLatch: p.busLatch, BusDecay: p.busDecay,
		Nametables: p.nametables, Palette: p.palette, FrameBuffer: p.FrameBuffer,
		Scanline: p.scanline, Dot: p.dot, Frame: p.Frame, OddFrame: p.oddFrame,
		NMIOccurred: p.nmiOccurred, SuppressNMI: p.suppressNMIThisVBlank,
		Sprite0Hit: p.sprite0HitFlag, SpriteOverflow: p.spriteOverflowFlag,
		BGShiftLo: p.bg.shiftLo, BGShiftHi: p.bg.shiftHi,
		BGAttrLo: p.bg.attrLo, BGAttrHi: p.bg.attrHi,
		BGNextNT: p.bg.nextNT, BGNextAT: p.bg.nextAT, BGNextLo: p.bg.nextLo, BGNextHi: p.bg.nextHi,
		SprCount: p.spr.count, SprY: p.spr.y, SprTile: p.spr.tile, SprAttr: p.spr.attr, SprX: p.spr.x,
		SprIsSprite0: p.spr.isSprite0, SprPatternLo: p.spr.patternLo, SprPatternHi: p.spr.patternHi,
	}
}

// Restore replaces all PPU state with a previously captured Snapshot.
// Mapper and NMI wiring are left untouched.
func (p *PPU) Restore(s Snapshot) {
	p.ctrl, p.mask, p.status = s.Ctrl, s.Mask, s.Status
	p.oamAddr, p.oam = s.OAMAddr, s.OAM
	p.v, p.t, p.x, p.w = s.V, s.T, s.X, s.W
	p.readBuffer, p.busLatch, p.busDecay = s.ReadBuffer, s.BusLatch, s.BusDecay
	p.nametables, p.palette, p.FrameBuffer = s.Nametables, s.Palette, s.FrameBuffer
	p.scanline, p.dot, p.Frame, p.oddFrame = s.Scanline, s.Dot, s.Frame, s.OddFrame
	p.nmiOccurred, p.suppressNMIThisVBlank = s.NMIOccurred, s.SuppressNMI
	p.sprite0HitFlag, p.spriteOverflowFlag = s.Sprite0Hit, s.SpriteOverflow
	p.bg = backgroundUnit{
		shiftLo: s.BGShiftLo, shiftHi: s.BGShiftHi, attrLo: s.BGAttrLo, attrHi: s.BGAttrHi,
		nextNT: s.BGNextNT, nextAT: s.BGNextAT, nextLo: s.BGNextLo, nextHi: s.BGNextHi,
	}
	p.spr = spriteUnit{
		count: s.SprCount, y: s.SprY, tile: s.SprTile, attr: s.SprAttr, x: s.SprX,
		isSprite0: s.SprIsSprite0, patternLo: s.SprPatternLo, patternHi: s.SprPatternHi,
	}
}
