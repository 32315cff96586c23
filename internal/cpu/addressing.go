package cpu

// Each addressing-mode helper issues exactly the bus reads real hardware
// issues to resolve an effective address, including the dummy reads
// bus analyzers are known to observe (zero-page-indexed wraparound,
// the page-cross-or-write-penalty extra read, and JMP (ind)'s page-wrap
// bug). alwaysPenalize selects between a RMW/store instruction (which
// always pays the extra cycle reading the uncorrected address) and a
// load instruction (which only pays it when the index crossed a page).

func (c *CPU) fetchImmediate() uint8 {
	v := c.read(c.PC)
	c.PC++
	return v
}

func (c *CPU) addrZeroPage() uint16 {
	addr := uint16(c.read(c.PC))
	c.PC++
	return addr
}

func (c *CPU) addrZeroPageIndexed(index uint8) uint16 {
	base := c.read(c.PC)
	c.PC++
	c.read(uint16(base)) // dummy read before indexing wraps within zero page
	return uint16(base + index)
}

func (c *CPU) addrAbsolute() uint16 {
	lo := uint16(c.read(c.PC))
	c.PC++
	hi := uint16(c.read(c.PC))
	c.PC++
	return hi<<8 | lo
}

func (c *CPU) addrAbsoluteIndexed(index uint8, alwaysPenalize bool) uint16 {
	lo := uint16(c.read(c.PC))
	c.PC++
	hi := uint16(c.read(c.PC))
	c.PC++
	base := hi<<8 | lo
	addr := base + uint16(index)
	crossed := addr&0xFF00 != base&0xFF00
	if crossed || alwaysPenalize {
		// Hardware always reads the (possibly wrong-page) uncorrected
		// address first; the result is discarded unless a page boundary
		// wasn't actually crossed, in which case it IS the final read.
		uncorrected := (base & 0xFF00) | (addr & 0x00FF)
		c.read(uncorrected)
	}
	return addr
}

// addrIndirectJMP resolves JMP (ind), including the famous page-wrap
// bug: if the pointer's low byte is $FF, the high byte is fetched from
// the start of the same page rather than the next one.
func (c *CPU) addrIndirectJMP() uint16 {
	lo := uint16(c.read(c.PC))
	c.PC++
	hi := uint16(c.read(c.PC))
	c.PC++
	ptr := hi<<8 | lo
	loByte := uint16(c.read(ptr))
	var hiPtr uint16
	if ptr&0x00FF == 0x00FF {
		hiPtr = ptr & 0xFF00
	} else {
		hiPtr = ptr + 1
	}
	hiByte := uint16(c.read(hiPtr))
	return hiByte<<8 | loByte
}

func (c *CPU) addrIndexedIndirect() uint16 {
	zp := c.read(c.PC)
	c.PC++
	c.read(uint16(zp)) // dummy read of the unindexed pointer
	ptr := zp + c.X
	lo := uint16(c.read(uint16(ptr)))
	hi := uint16(c.read(uint16(ptr + 1)))
	return hi<<8 | lo
}

func (c *CPU) addrIndirectIndexed(alwaysPenalize bool) uint16 {
	zp := c.read(c.PC)
	c.PC++
	lo := uint16(c.read(uint16(zp)))
	hi := uint16(c.read(uint16(zp + 1)))
	base := hi<<8 | lo
	addr := base + uint16(c.Y)
	crossed := addr&0xFF00 != base&0xFF00
	if crossed || alwaysPenalize {
		uncorrected := (base & 0xFF00) | (addr & 0x00FF)
		c.read(uncorrected)
	}
	return addr
}

func (c *CPU) fetchRelative() int8 {
	v := c.read(c.PC)
	c.PC++
	return int8(v)
}
