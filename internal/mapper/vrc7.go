package mapper

// VRC7 (mapper 85, Lagrange Point / Tiny Toon Adventures 2) banks three
// 8KiB PRG windows plus a fixed-last window, eight 1KiB CHR banks,
// mirroring, a VRC4-style scanline/cycle IRQ, and a six-channel OPLL-
// compatible FM synthesizer for expansion audio. The FM synth's full
// envelope/operator model is not implemented, unlike the VRC6 and MMC5
// expansion audio units; register writes are latched so probing games
// behave, but ExpansionAudioSample returns silence.
type vrc7 struct {
	cart      *Cart
	mirroring Mirroring

	prg0, prg1, prg2 uint8
	chr              [8]uint8
	ramEnabled       bool

	irqLatch   uint8
	irqCounter uint8
	irqEnabled bool
	irqAckMode bool
	irqPending bool
	prescaler  int

	audioAddress uint8
	audioRegs    [0x40]uint8
}

func newVRC7(cart *Cart, hdr Header) (Mapper, error) {
	return &vrc7{cart: cart, mirroring: hdr.Mirroring}, nil
}

func (m *vrc7) Reset() {
	*m = vrc7{cart: m.cart, mirroring: m.mirroring}
}

func (m *vrc7) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		if !m.ramEnabled {
			return 0, false
		}
		ram := prgRAM8K(m.cart)
		return ram[addr-0x6000], true
	case addr >= 0x8000 && addr < 0xA000:
		b := prgBank(m.cart.PRGROM, 0x2000, int(m.prg0))
		return b[addr-0x8000], true
	case addr >= 0xA000 && addr < 0xC000:
		b := prgBank(m.cart.PRGROM, 0x2000, int(m.prg1))
		return b[addr-0xA000], true
	case addr >= 0xC000 && addr < 0xE000:
		b := prgBank(m.cart.PRGROM, 0x2000, int(m.prg2))
		return b[addr-0xC000], true
	case addr >= 0xE000:
		last := len(m.cart.PRGROM)/0x2000 - 1
		b := prgBank(m.cart.PRGROM, 0x2000, last)
		return b[addr-0xE000], true
	default:
		return 0, false
	}
}

func (m *vrc7) CPUWrite(addr uint16, value uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		ram := prgRAM8K(m.cart)
		ram[addr-0x6000] = value
		return
	}
	reg := addr & 0xF010
	switch {
	case addr >= 0x8000 && addr < 0x9000:
		m.prg0 = value & 0x3F
	case reg == 0x9000:
		m.prg1 = value & 0x3F
	case reg == 0x9010:
		m.audioAddress = value & 0x3F
	case reg == 0x9030:
		m.audioRegs[m.audioAddress&0x3F] = value
	case addr >= 0xA000 && addr < 0xB000:
		m.prg2 = value & 0x3F
	case addr >= 0xB000 && addr < 0xE000:
		base := int((addr-0xB000)/0x1000) * 2
		if addr&0x10 == 0 {
			m.chr[base] = value
		} else {
			m.chr[base+1] = value
		}
	case addr >= 0xE000 && addr < 0xF000:
		if value&0x01 != 0 {
			m.mirroring = MirrorHorizontal
		} else {
			m.mirroring = MirrorVertical
		}
		m.ramEnabled = value&0x80 != 0
	case addr >= 0xF000:
		switch addr & 0x10 {
		case 0x00:
			m.irqLatch = value
		default:
			m.irqEnabled = value&0x02 != 0
			m.irqAckMode = value&0x01 != 0
			if m.irqEnabled {
				m.irqCounter = m.irqLatch
				m.prescaler = 341
			}
			m.irqPending = false
		}
	}
}

func (m *vrc7) PPURead(addr uint16) uint8 {
	if addr >= 0x2000 {
		return 0
	}
	mem, _ := chrStore(m.cart)
	bank := chrBank(mem, 0x400, int(m.chr[addr/0x400]))
	if bank == nil {
		return 0
	}
	off := int(addr) % 0x400
	if off < len(bank) {
		return bank[off]
	}
	return 0
}

func (m *vrc7) PPUWrite(addr uint16, value uint8) {
	_, writable := chrStore(m.cart)
	if !writable || addr >= 0x2000 {
		return
	}
	bank := chrBank(m.cart.CHRRAM, 0x400, int(m.chr[addr/0x400]))
	off := int(addr) % 0x400
	if bank != nil && off < len(bank) {
		bank[off] = value
	}
}

func (m *vrc7) Mirroring() Mirroring { return m.mirroring }

func (m *vrc7) OnCPUCycle() {
	if !m.irqEnabled {
		return
	}
	m.prescaler -= 3
	if m.prescaler <= 0 {
		m.prescaler += 341
		if m.irqCounter == 0xFF {
			m.irqCounter = m.irqLatch
			m.irqPending = true
		} else {
			m.irqCounter++
		}
	}
}

func (m *vrc7) NotifyScanline()             {}
func (m *vrc7) IRQLine() bool               { return m.irqPending }
func (m *vrc7) ExpansionAudioSample() int16 { return 0 }

func init() {
	RegisterAny(85, newVRC7)
}
