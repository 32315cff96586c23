package mapper

// mmc2or4 implements both MMC2 (mapper 9, Punch-Out!!) and MMC4 (mapper
// 10, Fire Emblem / Famicom Wars): both use a pair of tile-fetch-triggered
// latches per 4KiB CHR window to flip between two CHR banks, differing
// only in PRG banking granularity (MMC2: 8KiB switchable + three fixed
// 8KiB banks; MMC4: 16KiB switchable + one fixed 16KiB bank).
type mmc2or4 struct {
	cart   *Cart
	isMMC4 bool

	prgBank  uint8
	chr0FD   uint8
	chr0FE   uint8
	chr1FD   uint8
	chr1FE   uint8
	latch0   uint8 // 0xFD or 0xFE, selects chr0FD/chr0FE
	latch1   uint8

	mirroring Mirroring
}

func newMMC2(cart *Cart, hdr Header) (Mapper, error) {
	return &mmc2or4{cart: cart, mirroring: hdr.Mirroring, latch0: 0xFE, latch1: 0xFE}, nil
}

func newMMC4(cart *Cart, hdr Header) (Mapper, error) {
	return &mmc2or4{cart: cart, isMMC4: true, mirroring: hdr.Mirroring, latch0: 0xFE, latch1: 0xFE}, nil
}

func (m *mmc2or4) Reset() {
	m.prgBank = 0
	m.chr0FD, m.chr0FE, m.chr1FD, m.chr1FE = 0, 0, 0, 0
	m.latch0, m.latch1 = 0xFE, 0xFE
}

func (m *mmc2or4) CPURead(addr uint16) (uint8, bool) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		ram := prgRAM8K(m.cart)
		return ram[addr-0x6000], true
	case addr >= 0x8000:
		if m.isMMC4 {
			if addr < 0xC000 {
				b := prgBank(m.cart.PRGROM, 0x4000, int(m.prgBank))
				return b[addr-0x8000], true
			}
			last := len(m.cart.PRGROM)/0x4000 - 1
			b := prgBank(m.cart.PRGROM, 0x4000, last)
			return b[addr-0xC000], true
		}
		banks8k := len(m.cart.PRGROM) / 0x2000
		window := int(addr-0x8000) / 0x2000
		var bank int
		if window == 0 {
			bank = int(m.prgBank)
		} else {
			bank = banks8k - (4 - window)
		}
		b := prgBank(m.cart.PRGROM, 0x2000, bank)
		off := int(addr) & 0x1FFF
		return b[off], true
	default:
		return 0, false
	}
}

func (m *mmc2or4) CPUWrite(addr uint16, value uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		ram := prgRAM8K(m.cart)
		ram[addr-0x6000] = value
	case addr >= 0xA000 && addr < 0xB000:
		if m.isMMC4 {
			m.prgBank = value & 0x0F
		} else {
			m.prgBank = value & 0x0F
		}
	case addr >= 0xB000 && addr < 0xC000:
		m.chr0FD = value & 0x1F
	case addr >= 0xC000 && addr < 0xD000:
		m.chr0FE = value & 0x1F
	case addr >= 0xD000 && addr < 0xE000:
		m.chr1FD = value & 0x1F
	case addr >= 0xE000 && addr < 0xF000:
		m.chr1FE = value & 0x1F
	case addr >= 0xF000:
		if value&0x01 != 0 {
			m.mirroring = MirrorHorizontal
		} else {
			m.mirroring = MirrorVertical
		}
	}
}

func (m *mmc2or4) PPURead(addr uint16) uint8 {
	mem, _ := chrStore(m.cart)
	bank, off := m.chrBankFor(addr)
	start := int(bank) * 0x1000
	m.updateLatch(addr)
	if start+off < len(mem) {
		return mem[start+off]
	}
	return 0
}

func (m *mmc2or4) PPUWrite(addr uint16, value uint8) {
	mem, writable := chrStore(m.cart)
	bank, off := m.chrBankFor(addr)
	start := int(bank) * 0x1000
	m.updateLatch(addr)
	if writable && start+off < len(mem) {
		mem[start+off] = value
	}
}

func (m *mmc2or4) chrBankFor(addr uint16) (bank uint8, off int) {
	if addr < 0x1000 {
		if m.latch0 == 0xFD {
			return m.chr0FD, int(addr)
		}
		return m.chr0FE, int(addr)
	}
	off = int(addr - 0x1000)
	if m.latch1 == 0xFD {
		return m.chr1FD, off
	}
	return m.chr1FE, off
}

// updateLatch flips the FD/FE latch when the pattern fetch address lands
// on the designated trigger tiles, as real MMC2/4 boards do by decoding
// the low byte of the address during a fetch.
func (m *mmc2or4) updateLatch(addr uint16) {
	switch {
	case addr == 0x0FD8:
		m.latch0 = 0xFD
	case addr == 0x0FE8:
		m.latch0 = 0xFE
	case addr >= 0x1FD8 && addr <= 0x1FDF:
		m.latch1 = 0xFD
	case addr >= 0x1FE8 && addr <= 0x1FEF:
		m.latch1 = 0xFE
	}
}

func (m *mmc2or4) Mirroring() Mirroring         { return m.mirroring }
func (m *mmc2or4) OnCPUCycle()                  {}
func (m *mmc2or4) NotifyScanline()              {}
func (m *mmc2or4) IRQLine() bool                { return false }
func (m *mmc2or4) ExpansionAudioSample() int16  { return 0 }

func init() {
	RegisterAny(9, newMMC2)
	RegisterAny(10, newMMC4)
}
