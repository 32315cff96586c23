// Package ppu implements the NES Picture Processing Unit (2C02): the
// loopy v/t/x/w scroll registers, the background and sprite fetch
// pipelines, sprite evaluation (including the hardware's buggy overflow
// detection), NMI generation, and the CPU-visible open-bus decay on
// $2000-$2007.
package ppu

import "github.com/mikai233/nesium-sub002/internal/mapper"

const (
	ctrlNMIEnable       = 0x80
	ctrlSpriteHeight    = 0x20
	ctrlBGPatternTable  = 0x10
	ctrlSpritePatternTable = 0x08
	ctrlIncrement32     = 0x04

	maskGreyscale     = 0x01
	maskShowBGLeft    = 0x02
	maskShowSpriteLeft = 0x04
	maskShowBG        = 0x08
	maskShowSprites   = 0x10

	statusOverflow = 0x20
	statusSprite0  = 0x40
	statusVBlank   = 0x80
)

// PPU is the 2C02 core. It owns nametable VRAM and palette RAM directly
// and serves nametables from that 2KiB under the mapper's Mirroring;
// pattern-table accesses go through Mapper so that cartridge IRQ logic keyed off the PPU
// address bus (MMC3's A12 edge detector and kin) observes every fetch
// the rendering pipeline makes, exactly as on real hardware.
type PPU struct {
	Mapper mapper.Mapper

	ctrl   uint8
	mask   uint8
	status uint8

	oamAddr uint8
	oam     [256]uint8

	v, t uint16
	x    uint8
	w    bool

	readBuffer uint8

	busLatch uint8
	busDecay [8]int32 // frames-remaining before each open-bus bit decays to 0

	nametables [0x800]uint8
	palette    [32]uint8

	// FrameBuffer holds one NES palette index (0-63) per pixel; a front
	// end maps indices to RGB through Palette.
	FrameBuffer [256 * 240]uint8

	scanline int
	dot      int
	Frame    uint64
	oddFrame bool

	nmiOccurred  bool
	nmiPrevLine  bool
	suppressNMIThisVBlank bool

	bg  backgroundUnit
	spr spriteUnit

	sprite0HitFlag     bool
	spriteOverflowFlag bool

	NMI func()
}

func New() *PPU {
	p := &PPU{scanline: 261, dot: 0}
	for i := range p.busDecay {
		p.busDecay[i] = 0
	}
	return p
}

func (p *PPU) Reset() {
	m := p.Mapper
	nmi := p.NMI
	*p = PPU{Mapper: m, NMI: nmi, scanline: 261, dot: 0, status: 0}
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&(maskShowBG|maskShowSprites) != 0
}

// driveBus marks every currently-1 bit of the CPU-visible data bus latch
// as freshly driven (resetting its ~600ms decay window), modeling the
// 2C02's open-bus capacitance closely enough to fool probing games
// without simulating actual analog decay.
func (p *PPU) driveBus(value uint8) {
	p.busLatch = value
	for i := 0; i < 8; i++ {
		if value&(1<<uint(i)) != 0 {
			p.busDecay[i] = openBusDecayFrames
		}
	}
}

const openBusDecayFrames = 36 // ~600ms at 60Hz

// decayOpenBus is called once per frame (vblank start) to age out bits
// that haven't been driven recently.
func (p *PPU) decayOpenBus() {
	for i := 0; i < 8; i++ {
		if p.busDecay[i] > 0 {
			p.busDecay[i]--
		} else {
			p.busLatch &^= 1 << uint(i)
		}
	}
}

// ReadRegister services a CPU read of $2000-$2007 (mirrored every 8
// bytes through $3FFF).
func (p *PPU) ReadRegister(addr uint16) uint8 {
	switch addr & 0x2007 {
	case 0x2002:
		v := (p.status & 0xE0) | (p.busLatch & 0x1F)
		p.status &^= statusVBlank
		p.w = false
		if p.scanline == 241 && (p.dot == 0 || p.dot == 1) {
			p.suppressNMIThisVBlank = true
		}
		p.driveBus(v)
		return v
	case 0x2004:
		v := p.oam[p.oamAddr]
		p.driveBus(v)
		return v
	case 0x2007:
		v := p.readPPUData()
		p.driveBus(v)
		return v
	default:
		return p.busLatch
	}
}

// WriteRegister services a CPU write to $2000-$2007.
func (p *PPU) WriteRegister(addr uint16, value uint8) {
	p.driveBus(value)
	switch addr & 0x2007 {
	case 0x2000:
		wasNMIEnabled := p.ctrl&ctrlNMIEnable != 0
		p.ctrl = value
		p.t = (p.t &^ 0x0C00) | (uint16(value&0x03) << 10)
		if !wasNMIEnabled && p.ctrl&ctrlNMIEnable != 0 && p.nmiOccurred {
			p.fireNMI()
		}
	case 0x2001:
		p.mask = value
	case 0x2003:
		p.oamAddr = value
	case 0x2004:
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 0x2005:
		if !p.w {
			p.t = (p.t & 0xFFE0) | uint16(value>>3)
			p.x = value & 0x07
		} else {
			p.t = (p.t & 0x8C1F) | (uint16(value&0x07) << 12) | (uint16(value&0xF8) << 2)
		}
		p.w = !p.w
	case 0x2006:
		if !p.w {
			p.t = (p.t & 0x00FF) | (uint16(value&0x3F) << 8)
		} else {
			p.t = (p.t & 0xFF00) | uint16(value)
			p.v = p.t
		}
		p.w = !p.w
	case 0x2007:
		p.writePPUData(value)
	}
}

// WriteOAMDMA writes one byte during an OAM DMA transfer; the bus drives
// this 256 times in sequence starting at the current OAMADDR.
func (p *PPU) WriteOAMDMA(value uint8) {
	p.oam[p.oamAddr] = value
	p.oamAddr++
}

func (p *PPU) readPPUData() uint8 {
	addr := p.v & 0x3FFF
	var v uint8
	if addr < 0x3F00 {
		v = p.readBuffer
		p.readBuffer = p.ppuBusRead(addr)
	} else {
		v = p.paletteRead(addr)
		p.readBuffer = p.ppuBusRead(addr - 0x1000)
	}
	p.advanceVRAMAddr()
	return v
}

func (p *PPU) writePPUData(value uint8) {
	addr := p.v & 0x3FFF
	if addr < 0x3F00 {
		p.ppuBusWrite(addr, value)
	} else {
		p.paletteWrite(addr, value)
	}
	p.advanceVRAMAddr()
}

func (p *PPU) advanceVRAMAddr() {
	if p.ctrl&ctrlIncrement32 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
}

// ppuBusRead/ppuBusWrite route a PPU address to pattern-table CHR (via
// the mapper, so CHR-bank IRQ snoops see it) or to on-board nametable
// VRAM (mirrored per the mapper's current Mirroring mode).
func (p *PPU) ppuBusRead(addr uint16) uint8 {
	addr &= 0x3FFF
	if addr < 0x2000 {
		if p.Mapper != nil {
			return p.Mapper.PPURead(addr)
		}
		return 0
	}
	return p.nametables[p.nametableOffset(addr)]
}

func (p *PPU) ppuBusWrite(addr uint16, value uint8) {
	addr &= 0x3FFF
	if addr < 0x2000 {
		if p.Mapper != nil {
			p.Mapper.PPUWrite(addr, value)
		}
		return
	}
	p.nametables[p.nametableOffset(addr)] = value
}

func (p *PPU) nametableOffset(addr uint16) int {
	rel := (addr - 0x2000) & 0x0FFF
	ntIndex := int(rel / 0x400)
	mirror := mapper.MirrorHorizontal
	if p.Mapper != nil {
		mirror = p.Mapper.Mirroring()
	}
	base := mapper.NametableOffset(mirror, ntIndex)
	return (base + int(rel%0x400)) & 0x7FF
}

func (p *PPU) paletteRead(addr uint16) uint8 {
	return p.palette[paletteIndex(addr)]
}

func (p *PPU) paletteWrite(addr uint16, value uint8) {
	p.palette[paletteIndex(addr)] = value & 0x3F
}

func paletteIndex(addr uint16) int {
	idx := int(addr & 0x1F)
	if idx >= 16 && idx%4 == 0 {
		idx -= 16
	}
	return idx
}

// PaletteRAM returns a copy of the 32-byte palette RAM for introspection.
func (p *PPU) PaletteRAM() [32]uint8 { return p.palette }

// OAM returns a copy of the 256-byte object attribute memory.
func (p *PPU) OAM() [256]uint8 { return p.oam }

// Nametables returns a copy of the on-board 2KiB nametable VRAM.
func (p *PPU) Nametables() [0x800]uint8 { return p.nametables }

// DebugPatternByte reads one CHR byte through Mapper.PPURead for a
// pattern table viewer. Mappers that watch A12 see these reads just as
// they see rendering fetches, so callers should only use this outside an
// active frame.
func (p *PPU) DebugPatternByte(addr uint16) uint8 {
	if p.Mapper == nil {
		return 0
	}
	return p.Mapper.PPURead(addr & 0x1FFF)
}

// fireNMI invokes the CPU-side NMI hook exactly once per rising edge of
// (vblank flag set AND ctrl's NMI-enable bit).
func (p *PPU) fireNMI() {
	if p.NMI != nil {
		p.NMI()
	}
}

// Step advances the PPU by one PPU dot (the bus calls this three times
// per CPU cycle). It drives the full 341x262 scan cycle: visible
// scanlines 0-239, idle scanline 240, vblank 241-260, pre-render 261.
func (p *PPU) Step() {
	if p.scanline < 240 || p.scanline == 261 {
		p.renderStep()
	}

	if p.dot == 1 && p.scanline < 240 && p.renderingEnabled() && p.Mapper != nil {
		p.Mapper.NotifyScanline()
	}

	if p.scanline == 241 && p.dot == 1 {
		p.decayOpenBus()
		p.status |= statusVBlank
		p.nmiOccurred = true
		if !p.suppressNMIThisVBlank && p.ctrl&ctrlNMIEnable != 0 {
			p.fireNMI()
		}
		p.suppressNMIThisVBlank = false
	}

	if p.scanline == 261 && p.dot == 1 {
		p.status &^= statusVBlank | statusSprite0 | statusOverflow
		p.nmiOccurred = false
		p.sprite0HitFlag = false
		p.spriteOverflowFlag = false
	}

	p.dot++
	if p.scanline == 261 && p.dot == 340 && p.oddFrame && p.renderingEnabled() {
		p.dot = 341 // odd-frame skip: drop the idle pre-render dot
	}
	if p.dot > 340 {
		p.dot = 0
		p.scanline++
		if p.scanline > 261 {
			p.scanline = 0
			p.Frame++
			p.oddFrame = !p.oddFrame
		}
	}
}
