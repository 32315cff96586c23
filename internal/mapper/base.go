package mapper

// prgBank returns the PRG ROM bytes for the bankSize-sized bank numbered
// bankIndex, wrapping by the number of banks actually present so a
// smaller-than-expected ROM mirrors rather than going out of bounds.
func prgBank(prg []uint8, bankSize, bankIndex int) []uint8 {
	if len(prg) == 0 || bankSize <= 0 {
		return nil
	}
	banks := len(prg) / bankSize
	if banks == 0 {
		return nil
	}
	bankIndex = ((bankIndex % banks) + banks) % banks
	start := bankIndex * bankSize
	return prg[start : start+bankSize]
}

func chrBank(chr []uint8, bankSize, bankIndex int) []uint8 {
	return prgBank(chr, bankSize, bankIndex)
}

// chrStore returns whichever of CHR ROM or CHR RAM backs pattern-table
// storage for this cartridge, and whether writes to it should be honored.
func chrStore(c *Cart) (mem []uint8, writable bool) {
	if len(c.CHRRAM) > 0 {
		return c.CHRRAM, true
	}
	return c.CHRROM, false
}

// prgRAM8K returns an 8KiB PRG RAM window at the given bus offset
// ($6000-$7FFF typically), growing PRGRAM lazily if the header under-
// reported its size (some test ROMs rely on a full 8KiB being present).
func prgRAM8K(c *Cart) []uint8 {
	if len(c.PRGRAM) < 0x2000 {
		grown := make([]uint8, 0x2000)
		copy(grown, c.PRGRAM)
		c.PRGRAM = grown
	}
	return c.PRGRAM
}
